package lmsr

import (
	"github.com/joefazee/marketcore/internal/fixedpoint"
	"github.com/joefazee/marketcore/models"
)

// Engine defines the interface for core LMSR calculations. Every
// method is pure and deterministic: identical inputs always produce
// bit-identical outputs.
type Engine interface {
	// Cost evaluates the LMSR cost function b * ln(e^(qYes/b) + e^(qNo/b)).
	Cost(qYes, qNo, b fixedpoint.Value) (fixedpoint.Value, error)

	// PriceYes and PriceNo return the instantaneous outcome prices.
	// PriceYes + PriceNo == fixedpoint.Scale exactly, for all inputs.
	PriceYes(qYes, qNo, b fixedpoint.Value) (fixedpoint.Value, error)
	PriceNo(qYes, qNo, b fixedpoint.Value) (fixedpoint.Value, error)

	// MaxLoss returns the market maker's worst-case loss, b * ln(2).
	MaxLoss(b fixedpoint.Value) fixedpoint.Value

	// BForMaxLoss inverts MaxLoss, clamping the result to MinB.
	BForMaxLoss(targetLoss fixedpoint.Value) (fixedpoint.Value, error)

	// SharesForCost finds how many shares of side a spend of targetCost
	// buys, by binary search. Conservative: the returned quantity's
	// marginal cost never exceeds targetCost.
	SharesForCost(qYes, qNo, b fixedpoint.Value, side models.Outcome, targetCost fixedpoint.Value) (fixedpoint.Value, error)

	// Quote sizes a buy and returns the exact marginal cost of the
	// sized shares. Fails with ErrSlippageExceeded if that cost is
	// above maxCost.
	Quote(qYes, qNo, b fixedpoint.Value, side models.Outcome, targetCost, maxCost fixedpoint.Value) (cost, shares fixedpoint.Value, err error)

	// SellProceeds returns the proceeds from selling shares of side.
	// Fails with ErrInsufficientShares when the side's outstanding
	// quantity is too small and ErrSlippageExceeded when proceeds fall
	// below minProceeds.
	SellProceeds(qYes, qNo, b fixedpoint.Value, side models.Outcome, shares, minProceeds fixedpoint.Value) (fixedpoint.Value, error)
}
