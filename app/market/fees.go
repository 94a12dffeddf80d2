package market

import (
	"math/bits"

	"github.com/joefazee/marketcore/internal/fixedpoint"
)

const bpsDenominator = 10000

// FeeBreakdown is the split of the fee charged on one trade.
// Protocol + Resolver + LP always equals Total exactly.
type FeeBreakdown struct {
	Protocol fixedpoint.Value
	Resolver fixedpoint.Value
	LP       fixedpoint.Value
	Total    fixedpoint.Value
}

// takeBps returns amount * bps / 10000 with a 128-bit intermediate,
// truncated. The result never exceeds amount for bps <= 10000.
func takeBps(amount fixedpoint.Value, bps int) fixedpoint.Value {
	hi, lo := bits.Mul64(uint64(amount), uint64(bps))
	quo, _ := bits.Div64(hi, lo, bpsDenominator)
	return fixedpoint.Value(quo)
}

// SplitFees computes the fee taken on a gross trade amount. The total
// fee is computed first, then the protocol and resolver cuts; the
// remainder goes to the LP share so the three parts sum to the total
// with no rounding dust.
func (c *Config) SplitFees(amount fixedpoint.Value) FeeBreakdown {
	total := takeBps(amount, c.TotalFeeBps())
	protocol := takeBps(amount, c.ProtocolFeeBps)
	resolver := takeBps(amount, c.ResolverFeeBps)
	return FeeBreakdown{
		Protocol: protocol,
		Resolver: resolver,
		LP:       total - protocol - resolver,
		Total:    total,
	}
}
