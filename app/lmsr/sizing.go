package lmsr

import (
	"math"

	"github.com/joefazee/marketcore/internal/fixedpoint"
	"github.com/joefazee/marketcore/models"
)

// maxExpMultiple is MaxExp expressed in whole units: share quantities
// are capped at this multiple of b so q/b never leaves Exp's domain.
const maxExpMultiple = uint64(fixedpoint.MaxExp / fixedpoint.Scale)

// sideQuantities returns the (own, other) outstanding quantities for a
// trade side, rejecting anything but YES or NO.
func sideQuantities(qYes, qNo fixedpoint.Value, side models.Outcome) (own, other fixedpoint.Value, err error) {
	switch side {
	case models.OutcomeYes:
		return qYes, qNo, nil
	case models.OutcomeNo:
		return qNo, qYes, nil
	default:
		return 0, 0, models.ErrInvalidOutcome
	}
}

// applyToSide returns the new (qYes, qNo) pair after adding delta to
// the chosen side.
func applyToSide(qYes, qNo, delta fixedpoint.Value, side models.Outcome) (fixedpoint.Value, fixedpoint.Value, error) {
	if side == models.OutcomeYes {
		q, err := fixedpoint.Add(qYes, delta)
		return q, qNo, err
	}
	q, err := fixedpoint.Add(qNo, delta)
	return qYes, q, err
}

// SharesForCost converts a target spend into a share quantity by
// binary search over the marginal cost. The invariant maintained is
// that low's marginal cost never exceeds targetCost, so returning low
// is conservative: the caller is never sized beyond what they can pay.
// The search stops once the interval is within SearchTolerance or
// after SearchMaxIterations, whichever comes first, bounding the
// compute per call.
func (e *lmsrEngine) SharesForCost(qYes, qNo, b fixedpoint.Value, side models.Outcome, targetCost fixedpoint.Value) (fixedpoint.Value, error) {
	own, _, err := sideQuantities(qYes, qNo, side)
	if err != nil {
		return 0, err
	}

	costBefore, err := e.Cost(qYes, qNo, b)
	if err != nil {
		return 0, err
	}

	// Upper bound keeps (own+shares)/b inside the exponential's domain.
	maxSafe := fixedpoint.Value(math.MaxUint64)
	if uint64(b) <= math.MaxUint64/maxExpMultiple {
		maxSafe = fixedpoint.Value(maxExpMultiple) * b
	}
	if own >= maxSafe {
		return 0, nil
	}

	var low fixedpoint.Value
	high := maxSafe - own

	for i := 0; i < e.config.SearchMaxIterations && high-low > e.config.SearchTolerance; i++ {
		mid := low + (high-low)/2

		newYes, newNo, err := applyToSide(qYes, qNo, mid, side)
		if err != nil {
			return 0, err
		}
		costAfter, err := e.Cost(newYes, newNo, b)
		if err != nil {
			return 0, err
		}
		marginal, err := fixedpoint.Sub(costAfter, costBefore)
		if err != nil {
			return 0, err
		}

		if marginal <= targetCost {
			low = mid
		} else {
			high = mid
		}
	}

	return low, nil
}

// Quote sizes a buy for targetCost and re-prices it exactly. The
// binary search is approximate, so the exact marginal cost of the
// sized shares is recomputed and checked against the caller's
// slippage bound.
func (e *lmsrEngine) Quote(qYes, qNo, b fixedpoint.Value, side models.Outcome, targetCost, maxCost fixedpoint.Value) (fixedpoint.Value, fixedpoint.Value, error) {
	shares, err := e.SharesForCost(qYes, qNo, b, side, targetCost)
	if err != nil {
		return 0, 0, err
	}

	newYes, newNo, err := applyToSide(qYes, qNo, shares, side)
	if err != nil {
		return 0, 0, err
	}
	costBefore, err := e.Cost(qYes, qNo, b)
	if err != nil {
		return 0, 0, err
	}
	costAfter, err := e.Cost(newYes, newNo, b)
	if err != nil {
		return 0, 0, err
	}
	cost, err := fixedpoint.Sub(costAfter, costBefore)
	if err != nil {
		return 0, 0, err
	}

	if cost > maxCost {
		return 0, 0, models.ErrSlippageExceeded
	}
	return cost, shares, nil
}

// SellProceeds prices a sale of shares as C(q) - C(q - delta).
func (e *lmsrEngine) SellProceeds(qYes, qNo, b fixedpoint.Value, side models.Outcome, shares, minProceeds fixedpoint.Value) (fixedpoint.Value, error) {
	own, _, err := sideQuantities(qYes, qNo, side)
	if err != nil {
		return 0, err
	}
	remaining, err := fixedpoint.Sub(own, shares)
	if err != nil {
		return 0, models.ErrInsufficientShares
	}

	newYes, newNo := remaining, qNo
	if side == models.OutcomeNo {
		newYes, newNo = qYes, remaining
	}

	costBefore, err := e.Cost(qYes, qNo, b)
	if err != nil {
		return 0, err
	}
	costAfter, err := e.Cost(newYes, newNo, b)
	if err != nil {
		return 0, err
	}
	proceeds, err := fixedpoint.Sub(costBefore, costAfter)
	if err != nil {
		return 0, err
	}

	if proceeds < minProceeds {
		return 0, models.ErrSlippageExceeded
	}
	return proceeds, nil
}
