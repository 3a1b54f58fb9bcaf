package nss

import (
	"fmt"
	"math"
)

// Yield evaluates the Svensson zero-coupon yield at maturity t (years).
//
// The result is in percent (5.0 means 5%). A nil ParamSet propagates as an
// absent result. t must be strictly positive.
//
//	y = b0 + b1·(1−e^(−t/t1))/(t/t1)
//	       + b2·[(1−e^(−t/t1))/(t/t1) − e^(−t/t1)]
//	       + b3·[(1−e^(−t/t2))/(t/t2) − e^(−t/t2)]
//
// The fourth term is included only when |b3| exceeds a small epsilon and
// t2 > 0, so nominally three-factor rows with float-noise beta3 stay
// three-factor.
func Yield(t float64, p *ParamSet) (Value, error) {
	if t <= 0 {
		return NA(), &DomainError{Op: "nss.Yield", Msg: fmt.Sprintf("maturity must be strictly positive, got %g", t)}
	}
	if p == nil {
		return NA(), nil
	}

	b0, b1, b2, b3, tau1, tau2 := p.Effective()

	x1 := t / tau1
	e1 := math.Exp(-x1)
	slope := (1 - e1) / x1

	y := b0 + b1*slope + b2*(slope-e1)

	if math.Abs(b3) > beta3Epsilon && tau2 > 0 {
		x2 := t / tau2
		e2 := math.Exp(-x2)
		y += b3 * ((1-e2)/x2 - e2)
	}

	return Num(y), nil
}

// Price evaluates the discount-bond price at maturity t for the given
// face value, using continuous compounding of the Yield at t:
//
//	rate  = ln(1 + y/100)
//	price = face · e^(−rate·t)
//
// t and face must be strictly positive; absence propagates.
func Price(t float64, p *ParamSet, face float64) (Value, error) {
	if t <= 0 {
		return NA(), &DomainError{Op: "nss.Price", Msg: fmt.Sprintf("maturity must be strictly positive, got %g", t)}
	}
	if face <= 0 {
		return NA(), &DomainError{Op: "nss.Price", Msg: fmt.Sprintf("face value must be strictly positive, got %g", face)}
	}

	y, err := Yield(t, p)
	if err != nil {
		return NA(), err
	}
	if !y.Valid {
		return NA(), nil
	}

	rate := math.Log(1 + y.Float64/100)
	return Num(face * math.Exp(-rate*t)), nil
}

// ForwardRate evaluates the average forward rate (decimal, continuously
// compounded) between maturities t1 and t2, which must satisfy
// 0 < t1 < t2:
//
//	f = −ln(P(t2)/P(t1)) / (t2 − t1)
func ForwardRate(t1, t2 float64, p *ParamSet) (Value, error) {
	if t1 <= 0 || t2 <= t1 {
		return NA(), &DomainError{Op: "nss.ForwardRate", Msg: fmt.Sprintf("maturities must satisfy 0 < t1 < t2, got t1=%g t2=%g", t1, t2)}
	}

	p1, err := Price(t1, p, 1.0)
	if err != nil {
		return NA(), err
	}
	p2, err := Price(t2, p, 1.0)
	if err != nil {
		return NA(), err
	}
	if !p1.Valid || !p2.Valid {
		return NA(), nil
	}

	return Num(-math.Log(p2.Float64/p1.Float64) / (t2 - t1)), nil
}

// Yields evaluates Yield at each maturity in ts under one parameter set.
// Output order matches input order; maturities are independent.
func Yields(ts []float64, p *ParamSet) ([]Value, error) {
	out := make([]Value, len(ts))
	for i, t := range ts {
		y, err := Yield(t, p)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}

// Prices evaluates Price at each maturity in ts under one parameter set
// and face value. Output order matches input order.
func Prices(ts []float64, p *ParamSet, face float64) ([]Value, error) {
	out := make([]Value, len(ts))
	for i, t := range ts {
		v, err := Price(t, p, face)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// YieldFlat is Yield over six flat values instead of a ParamSet. Both
// entry points share the same formula path.
func YieldFlat(t float64, beta0, beta1, beta2, beta3, tau1, tau2 Value) (Value, error) {
	p, err := New(beta0, beta1, beta2, beta3, tau1, tau2)
	if err != nil {
		return NA(), err
	}
	return Yield(t, p)
}

// PriceFlat is Price over six flat values instead of a ParamSet.
func PriceFlat(t float64, beta0, beta1, beta2, beta3, tau1, tau2 Value, face float64) (Value, error) {
	p, err := New(beta0, beta1, beta2, beta3, tau1, tau2)
	if err != nil {
		return NA(), err
	}
	return Price(t, p, face)
}

// ForwardRateFlat is ForwardRate over six flat values instead of a
// ParamSet.
func ForwardRateFlat(t1, t2 float64, beta0, beta1, beta2, beta3, tau1, tau2 Value) (Value, error) {
	p, err := New(beta0, beta1, beta2, beta3, tau1, tau2)
	if err != nil {
		return NA(), err
	}
	return ForwardRate(t1, t2, p)
}
