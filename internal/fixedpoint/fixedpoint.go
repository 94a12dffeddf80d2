// Package fixedpoint implements deterministic scaled-integer arithmetic.
//
// All values are non-negative reals stored as uint64 with 9 decimal
// places (Scale = 1e9), matching the platform's smallest token unit.
// Every operation signals overflow/underflow explicitly instead of
// wrapping, and produces bit-identical results on every host: no
// hardware floating point is used anywhere in this package.
package fixedpoint

import (
	"errors"
	"math"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

// Value is a fixed-point number: the real value times Scale.
type Value uint64

// Scale is the fixed-point scaling factor (9 decimal places).
// 1.0 is represented as 1_000_000_000.
const Scale Value = 1_000_000_000

var (
	ErrOverflow       = errors.New("fixedpoint: overflow")
	ErrUnderflow      = errors.New("fixedpoint: underflow")
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
	ErrInvalidInput   = errors.New("fixedpoint: invalid input")
)

// Add returns a+b, or ErrOverflow if the sum exceeds the uint64 range.
func Add(a, b Value) (Value, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sub returns a-b, or ErrUnderflow if b > a.
func Sub(a, b Value) (Value, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}

// Mul returns (a*b)/Scale, computing the product in 128 bits.
func Mul(a, b Value) (Value, error) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi >= uint64(Scale) {
		// Quotient would not fit in 64 bits.
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, uint64(Scale))
	return Value(q), nil
}

// Div returns (a*Scale)/b, computing the numerator in 128 bits.
func Div(a, b Value) (Value, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	hi, lo := bits.Mul64(uint64(a), uint64(Scale))
	if hi >= uint64(b) {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, uint64(b))
	return Value(q), nil
}

// FromInt converts a whole number of units to a fixed-point value.
func FromInt(n uint64) (Value, error) {
	if n > math.MaxUint64/uint64(Scale) {
		return 0, ErrOverflow
	}
	return Value(n) * Scale, nil
}

// FromDecimal converts an external decimal amount to fixed-point,
// truncating anything finer than 9 decimal places. Negative amounts
// are rejected: the fixed-point domain is non-negative.
func FromDecimal(d decimal.Decimal) (Value, error) {
	if d.IsNegative() {
		return 0, ErrInvalidInput
	}
	scaled := d.Shift(9).Truncate(0).BigInt()
	if !scaled.IsUint64() {
		return 0, ErrOverflow
	}
	return Value(scaled.Uint64()), nil
}

// Decimal converts v back to a decimal amount for the API boundary.
func (v Value) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), -9)
}

func (v Value) String() string {
	return v.Decimal().String()
}
