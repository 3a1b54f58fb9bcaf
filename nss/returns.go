package nss

import (
	"fmt"
	"math"
)

// Frequency selects the time step between the two parameter observations
// of a return calculation. Steps use a 360-day-year convention.
type Frequency string

const (
	Daily   Frequency = "daily"
	Monthly Frequency = "monthly"
	Annual  Frequency = "annual"
)

// Step returns the year fraction for one period at this frequency.
func (f Frequency) Step() (float64, error) {
	switch f {
	case Daily:
		return 1.0 / 360.0, nil
	case Monthly:
		return 1.0 / 12.0, nil
	case Annual:
		return 1.0, nil
	default:
		return 0, &ArgumentError{Op: "nss.Frequency.Step", Msg: fmt.Sprintf("unrecognized frequency %q", string(f))}
	}
}

// LagDays returns the calendar offset used when looking up the prior
// panel observation for this frequency. Approximate by design: monthly is
// 30 days and annual 360, matching the 360-day-year step convention.
func (f Frequency) LagDays() (int, error) {
	switch f {
	case Daily:
		return 1, nil
	case Monthly:
		return 30, nil
	case Annual:
		return 360, nil
	default:
		return 0, &ArgumentError{Op: "nss.Frequency.LagDays", Msg: fmt.Sprintf("unrecognized frequency %q", string(f))}
	}
}

// Kind selects between log and arithmetic returns.
type Kind string

const (
	Log        Kind = "log"
	Arithmetic Kind = "arithmetic"
)

// Aged maturities are floored here so a bond held past its own maturity
// never prices at t <= 0.
const minAgedMaturity = 0.001

// Return computes the one-period return on a discount bond of the given
// original maturity (years), as a decimal.
//
// The bond is bought at maturity t under prev and sold one period later
// under now, aged by the frequency's time step:
//
//	p_now  = Price(max(t − Δt, 0.001), now)
//	p_prev = Price(t, prev)
//	log:        ln(p_now / p_prev)
//	arithmetic: (p_now − p_prev) / p_prev
//
// Either parameter set being nil propagates as an absent result.
func Return(t float64, now, prev *ParamSet, freq Frequency, kind Kind) (Value, error) {
	if t <= 0 {
		return NA(), &DomainError{Op: "nss.Return", Msg: fmt.Sprintf("maturity must be strictly positive, got %g", t)}
	}
	if kind != Log && kind != Arithmetic {
		return NA(), &ArgumentError{Op: "nss.Return", Msg: fmt.Sprintf("unrecognized return kind %q", string(kind))}
	}
	step, err := freq.Step()
	if err != nil {
		return NA(), err
	}

	aged := math.Max(t-step, minAgedMaturity)
	pNow, err := Price(aged, now, 1.0)
	if err != nil {
		return NA(), err
	}
	pPrev, err := Price(t, prev, 1.0)
	if err != nil {
		return NA(), err
	}
	if !pNow.Valid || !pPrev.Valid {
		return NA(), nil
	}

	if kind == Log {
		return Num(math.Log(pNow.Float64 / pPrev.Float64)), nil
	}
	return Num((pNow.Float64 - pPrev.Float64) / pPrev.Float64), nil
}

// ExcessReturn computes Return at maturity t minus Return at rfMaturity,
// the short-maturity risk-free proxy (conventionally 0.25, i.e. three
// months). Absent if either leg is absent.
func ExcessReturn(t float64, now, prev *ParamSet, rfMaturity float64, freq Frequency, kind Kind) (Value, error) {
	if rfMaturity <= 0 {
		return NA(), &DomainError{Op: "nss.ExcessReturn", Msg: fmt.Sprintf("risk-free maturity must be strictly positive, got %g", rfMaturity)}
	}

	bond, err := Return(t, now, prev, freq, kind)
	if err != nil {
		return NA(), err
	}
	rf, err := Return(rfMaturity, now, prev, freq, kind)
	if err != nil {
		return NA(), err
	}
	if !bond.Valid || !rf.Valid {
		return NA(), nil
	}
	return Num(bond.Float64 - rf.Float64), nil
}

// ReturnFlat is Return over two sets of six flat values instead of
// ParamSets.
func ReturnFlat(t float64,
	nb0, nb1, nb2, nb3, nt1, nt2 Value,
	pb0, pb1, pb2, pb3, pt1, pt2 Value,
	freq Frequency, kind Kind,
) (Value, error) {
	now, err := New(nb0, nb1, nb2, nb3, nt1, nt2)
	if err != nil {
		return NA(), err
	}
	prev, err := New(pb0, pb1, pb2, pb3, pt1, pt2)
	if err != nil {
		return NA(), err
	}
	return Return(t, now, prev, freq, kind)
}
