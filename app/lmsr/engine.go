package lmsr

import (
	"github.com/joefazee/marketcore/internal/fixedpoint"
	"github.com/joefazee/marketcore/models"
)

// lmsrEngine implements the Engine interface.
type lmsrEngine struct {
	config *Config
}

// NewEngine creates a new LMSR engine.
func NewEngine(config *Config) Engine {
	return &lmsrEngine{
		config: config,
	}
}

// Cost computes b * ln(e^(qYes/b) + e^(qNo/b)) through the log-sum-exp
// form, which never materializes either exponential on its own.
func (e *lmsrEngine) Cost(qYes, qNo, b fixedpoint.Value) (fixedpoint.Value, error) {
	if b < e.config.MinB {
		return 0, models.ErrInvalidBParameter
	}

	x, err := fixedpoint.Div(qYes, b)
	if err != nil {
		return 0, err
	}
	y, err := fixedpoint.Div(qNo, b)
	if err != nil {
		return 0, err
	}

	logSum, err := fixedpoint.LogSumExp(x, y)
	if err != nil {
		return 0, err
	}
	return fixedpoint.Mul(b, logSum)
}

// PriceYes computes P(YES) = e^(qYes/b) / (e^(qYes/b) + e^(qNo/b))
// in the softmax form, branching on the larger side so the exponent
// handed to Exp is always the non-negative difference.
func (e *lmsrEngine) PriceYes(qYes, qNo, b fixedpoint.Value) (fixedpoint.Value, error) {
	if b < e.config.MinB {
		return 0, models.ErrInvalidBParameter
	}

	if qYes >= qNo {
		// YES is favored: P = e^(d/b) / (e^(d/b) + 1)
		ratio, err := fixedpoint.Div(qYes-qNo, b)
		if err != nil {
			return 0, err
		}
		expRatio, err := fixedpoint.Exp(ratio)
		if err != nil {
			return 0, err
		}
		denom, err := fixedpoint.Add(expRatio, fixedpoint.Scale)
		if err != nil {
			return 0, err
		}
		return fixedpoint.Div(expRatio, denom)
	}

	// NO is favored: P = 1 / (1 + e^(d/b))
	ratio, err := fixedpoint.Div(qNo-qYes, b)
	if err != nil {
		return 0, err
	}
	expRatio, err := fixedpoint.Exp(ratio)
	if err != nil {
		return 0, err
	}
	denom, err := fixedpoint.Add(fixedpoint.Scale, expRatio)
	if err != nil {
		return 0, err
	}
	return fixedpoint.Div(fixedpoint.Scale, denom)
}

// PriceNo is the exact complement of PriceYes, which makes the
// unit-sum invariant structural rather than approximate.
func (e *lmsrEngine) PriceNo(qYes, qNo, b fixedpoint.Value) (fixedpoint.Value, error) {
	yes, err := e.PriceYes(qYes, qNo, b)
	if err != nil {
		return 0, err
	}
	return fixedpoint.Sub(fixedpoint.Scale, yes)
}

// MaxLoss returns b * ln(2), the worst case for a binary market.
// The product cannot overflow: ln(2) < 1, so the result is below b.
func (e *lmsrEngine) MaxLoss(b fixedpoint.Value) fixedpoint.Value {
	loss, _ := fixedpoint.Mul(b, fixedpoint.LnTwo)
	return loss
}

// BForMaxLoss returns the b parameter whose bounded loss equals
// targetLoss, clamped up to the configured minimum.
func (e *lmsrEngine) BForMaxLoss(targetLoss fixedpoint.Value) (fixedpoint.Value, error) {
	b, err := fixedpoint.Div(targetLoss, fixedpoint.LnTwo)
	if err != nil {
		return 0, err
	}
	if b < e.config.MinB {
		return e.config.MinB, nil
	}
	return b, nil
}
