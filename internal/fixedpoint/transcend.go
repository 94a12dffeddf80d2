package fixedpoint

import "errors"

// LnTwo is ln(2) ~= 0.693147180 in fixed-point.
const LnTwo Value = 693_147_180

// MaxExp is the largest exponent Exp accepts. e^20 ~= 4.85e8, which
// keeps the scaled result safely inside the uint64 range.
const MaxExp Value = 20 * Scale

// ErrExponentTooLarge is returned by Exp for arguments above MaxExp.
var ErrExponentTooLarge = errors.New("fixedpoint: exponent too large")

// Exp approximates e^x for x in [0, MaxExp] with relative error below
// 0.001%.
//
// The argument is first split as x = k*ln2 + r with r in [0, ln2), so
// the rational approximation only ever sees a small input and the 2^k
// factor is applied as an exact shift. The remainder is evaluated as
// pade(r/4) squared twice, keeping the approximation error of the
// Pade(2,2) form below the target across the whole domain.
func Exp(x Value) (Value, error) {
	if x > MaxExp {
		return 0, ErrExponentTooLarge
	}

	k := uint(uint64(x) / uint64(LnTwo))
	r := x - Value(k)*LnTwo

	e, err := padeExp(r / 4)
	if err != nil {
		return 0, err
	}
	if e, err = Mul(e, e); err != nil {
		return 0, err
	}
	if e, err = Mul(e, e); err != nil {
		return 0, err
	}

	// Exact scaling by 2^k. k <= 28 for x <= MaxExp.
	if uint64(e) > (1<<63)>>k {
		return 0, ErrOverflow
	}
	return e << k, nil
}

// padeExp is the Pade(2,2) rational approximation of e^x:
//
//	e^x ~= (1 + x/2 + x^2/12) / (1 - x/2 + x^2/12)
//
// The denominator is computed as (1 + x^2/12) - x/2 in a single guarded
// subtraction. The naive left-to-right form 1 - x/2 underflows as soon
// as x reaches 2.0; the reordered form stays positive for every x the
// range reduction can produce.
func padeExp(x Value) (Value, error) {
	x2, err := Mul(x, x)
	if err != nil {
		return 0, err
	}

	num, err := Add(Scale, x/2)
	if err != nil {
		return 0, err
	}
	if num, err = Add(num, x2/12); err != nil {
		return 0, err
	}

	denom, err := Add(Scale, x2/12)
	if err != nil {
		return 0, err
	}
	if denom, err = Sub(denom, x/2); err != nil {
		return 0, err
	}

	return Div(num, denom)
}

// ExpNeg returns e^(-x) = 1 / e^x.
func ExpNeg(x Value) (Value, error) {
	ex, err := Exp(x)
	if err != nil {
		return 0, err
	}
	return Div(Scale, ex)
}

// Ln approximates the natural logarithm of x.
//
// The input is reduced to [0.5, 2.0) by repeated halving or doubling
// while tracking the power-of-two exponent, then an atanh series in
// y = (x-1)/(x+1) is applied and k*ln2 added back. Ln(0) fails with
// ErrInvalidInput. Results below zero (arguments under 1.0) are not
// representable in the unsigned domain and fail with ErrUnderflow;
// the market engine only ever evaluates Ln on [1, 2].
func Ln(x Value) (Value, error) {
	if x == 0 {
		return 0, ErrInvalidInput
	}
	if x == Scale {
		return 0, nil
	}

	r := x
	exponent := int64(0)
	for r >= 2*Scale {
		r /= 2
		exponent++
	}
	for r < Scale/2 {
		r *= 2
		exponent--
	}

	// y = (r-1)/(r+1) for r >= 1; for r < 1 use y of 1/r, which gives
	// -ln(r), and flip the sign of the series.
	negative := r < Scale
	arg := r
	if negative {
		var err error
		if arg, err = Div(Scale, r); err != nil {
			return 0, err
		}
	}
	y, err := Div(arg-Scale, arg+Scale)
	if err != nil {
		return 0, err
	}

	y2, err := Mul(y, y)
	if err != nil {
		return 0, err
	}
	y3, err := Mul(y2, y)
	if err != nil {
		return 0, err
	}
	y5, err := Mul(y3, y2)
	if err != nil {
		return 0, err
	}
	y7, err := Mul(y5, y2)
	if err != nil {
		return 0, err
	}

	series := int64(2 * (y + y3/3 + y5/5 + y7/7))
	if negative {
		series = -series
	}

	total := series + exponent*int64(LnTwo)
	if total < 0 {
		return 0, ErrUnderflow
	}
	return Value(total), nil
}

// LogSumExp returns ln(e^x + e^y) without ever evaluating e^x + e^y
// directly:
//
//	ln(e^x + e^y) = max(x,y) + ln(1 + e^(-|x-y|))
//
// Factoring out the maximum keeps the exponent small, so the identity
// holds for arguments far beyond MaxExp's reach when combined naively.
func LogSumExp(x, y Value) (Value, error) {
	maxVal, diff := x, x-y
	if y > x {
		maxVal, diff = y, y-x
	}

	// Beyond MaxExp the e^(-diff) tail is under one fixed-point unit.
	if diff > MaxExp {
		return maxVal, nil
	}

	expNeg, err := ExpNeg(diff)
	if err != nil {
		return 0, err
	}
	onePlus, err := Add(Scale, expNeg)
	if err != nil {
		return 0, err
	}
	lnTerm, err := Ln(onePlus)
	if err != nil {
		return 0, err
	}
	return Add(maxVal, lnTerm)
}
