package market

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joefazee/marketcore/internal/fixedpoint"
)

func TestSplitFees(t *testing.T) {
	cfg := GetDefaultConfig()

	t.Run("default split", func(t *testing.T) {
		fee := cfg.SplitFees(100 * fixedpoint.Scale)
		assert.Equal(t, 3*fixedpoint.Scale, fee.Protocol)
		assert.Equal(t, 2*fixedpoint.Scale, fee.Resolver)
		assert.Equal(t, 5*fixedpoint.Scale, fee.LP)
		assert.Equal(t, 10*fixedpoint.Scale, fee.Total)
	})

	t.Run("parts always sum to the total", func(t *testing.T) {
		// Amounts chosen so the per-part divisions truncate differently.
		amounts := []fixedpoint.Value{1, 3, 7, 99, 10_001, 123_456_789, 999_999_999_999_999_999}
		for _, amount := range amounts {
			fee := cfg.SplitFees(amount)
			assert.Equal(t, fee.Total, fee.Protocol+fee.Resolver+fee.LP, "amount=%d", amount)
			assert.LessOrEqual(t, fee.Total, amount)
		}
	})

	t.Run("zero amount", func(t *testing.T) {
		fee := cfg.SplitFees(0)
		assert.Zero(t, fee.Total)
		assert.Zero(t, fee.LP)
	})

	t.Run("rounding dust lands on the LP share", func(t *testing.T) {
		// 9999 * 1000bps truncates to 999; a naive per-part split
		// would only account for 299 + 199 + 499 = 997.
		fee := cfg.SplitFees(9_999)
		assert.Equal(t, fixedpoint.Value(999), fee.Total)
		assert.Equal(t, fixedpoint.Value(299), fee.Protocol)
		assert.Equal(t, fixedpoint.Value(199), fee.Resolver)
		assert.Equal(t, fixedpoint.Value(501), fee.LP)
	})

	t.Run("no fees configured", func(t *testing.T) {
		free := *cfg
		free.ProtocolFeeBps, free.ResolverFeeBps, free.LPFeeBps = 0, 0, 0
		fee := free.SplitFees(100 * fixedpoint.Scale)
		assert.Zero(t, fee.Total)
	})
}
