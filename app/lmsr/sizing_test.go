package lmsr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joefazee/marketcore/internal/fixedpoint"
	"github.com/joefazee/marketcore/models"
)

func TestEngine_SharesForCost(t *testing.T) {
	e := newTestEngine(t)
	b := fp(1000)

	t.Run("never sizes beyond the target spend", func(t *testing.T) {
		target := fp(100)
		shares, err := e.SharesForCost(0, 0, b, models.OutcomeYes, target)
		require.NoError(t, err)
		require.NotZero(t, shares)

		costBefore, err := e.Cost(0, 0, b)
		require.NoError(t, err)
		costAfter, err := e.Cost(shares, 0, b)
		require.NoError(t, err)
		cost := costAfter - costBefore

		assert.LessOrEqual(t, cost, target)
		// The undershoot is bounded by the search tolerance: prices
		// never exceed 1, so an interval of tolerance width cannot
		// hide more cost than that.
		assert.LessOrEqual(t, target-cost, GetDefaultConfig().SearchTolerance)
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := e.SharesForCost(fp(500), fp(200), b, models.OutcomeYes, fp(77))
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := e.SharesForCost(fp(500), fp(200), b, models.OutcomeYes, fp(77))
			require.NoError(t, err)
			require.Equal(t, first, again)
		}
	})

	t.Run("fresh market is side symmetric", func(t *testing.T) {
		yes, err := e.SharesForCost(0, 0, b, models.OutcomeYes, fp(50))
		require.NoError(t, err)
		no, err := e.SharesForCost(0, 0, b, models.OutcomeNo, fp(50))
		require.NoError(t, err)
		assert.Equal(t, yes, no)
	})

	t.Run("zero target buys nothing", func(t *testing.T) {
		shares, err := e.SharesForCost(0, 0, b, models.OutcomeYes, 0)
		require.NoError(t, err)
		assert.Zero(t, shares)
	})

	t.Run("rejects a resolution outcome as a side", func(t *testing.T) {
		_, err := e.SharesForCost(0, 0, b, models.OutcomeInvalid, fp(10))
		require.ErrorIs(t, err, models.ErrInvalidOutcome)
	})
}

func TestEngine_Quote(t *testing.T) {
	e := newTestEngine(t)
	b := fp(1000)

	t.Run("returns the exact cost of the sized shares", func(t *testing.T) {
		cost, shares, err := e.Quote(0, 0, b, models.OutcomeYes, fp(100), fp(100))
		require.NoError(t, err)
		require.NotZero(t, shares)

		costBefore, err := e.Cost(0, 0, b)
		require.NoError(t, err)
		costAfter, err := e.Cost(shares, 0, b)
		require.NoError(t, err)
		assert.Equal(t, costAfter-costBefore, cost)
		assert.LessOrEqual(t, cost, fp(100))
	})

	t.Run("slippage bound rejects", func(t *testing.T) {
		_, _, err := e.Quote(0, 0, b, models.OutcomeYes, fp(100), fp(1))
		require.ErrorIs(t, err, models.ErrSlippageExceeded)
	})
}

func TestEngine_SellProceeds(t *testing.T) {
	e := newTestEngine(t)
	b := fp(1000)

	t.Run("buy then sell round trips exactly", func(t *testing.T) {
		cost, shares, err := e.Quote(0, 0, b, models.OutcomeYes, fp(100), fp(100))
		require.NoError(t, err)

		proceeds, err := e.SellProceeds(shares, 0, b, models.OutcomeYes, shares, 0)
		require.NoError(t, err)
		assert.Equal(t, cost, proceeds)
	})

	t.Run("rejects selling more than outstanding", func(t *testing.T) {
		_, err := e.SellProceeds(fp(10), 0, b, models.OutcomeYes, fp(11), 0)
		require.ErrorIs(t, err, models.ErrInsufficientShares)
	})

	t.Run("minimum proceeds bound rejects", func(t *testing.T) {
		_, err := e.SellProceeds(fp(10), 0, b, models.OutcomeYes, fp(10), fp(1000))
		require.ErrorIs(t, err, models.ErrSlippageExceeded)
	})
}

// The market maker's loss is bounded by b*ln2 no matter what sequence
// of trades happens: worst-case payout minus collected cost never
// exceeds MaxLoss.
func TestEngine_BoundedLoss(t *testing.T) {
	e := newTestEngine(t)
	b := fp(1000)

	var qYes, qNo fixedpoint.Value
	var collected fixedpoint.Value
	trades := []struct {
		side  models.Outcome
		spend fixedpoint.Value
	}{
		{models.OutcomeYes, fp(300)},
		{models.OutcomeYes, fp(900)},
		{models.OutcomeNo, fp(150)},
		{models.OutcomeYes, fp(2500)},
		{models.OutcomeNo, fp(50)},
	}

	for _, tr := range trades {
		cost, shares, err := e.Quote(qYes, qNo, b, tr.side, tr.spend, tr.spend)
		require.NoError(t, err)
		if tr.side == models.OutcomeYes {
			qYes += shares
		} else {
			qNo += shares
		}
		collected += cost
	}

	worstPayout := qYes
	if qNo > worstPayout {
		worstPayout = qNo
	}
	require.Greater(t, worstPayout, collected)
	loss := worstPayout - collected
	assert.LessOrEqual(t, loss, e.MaxLoss(b))
}
