// Package nss evaluates Nelson-Siegel-Svensson yield curves: zero-coupon
// yields, discount-bond prices, instantaneous-average forward rates, and
// period-over-period returns implied by a dated set of curve parameters.
//
// All functions are pure and safe for concurrent use on independent inputs.
// Rates are in percent (5.0 means 5%) unless a doc comment says otherwise.
package nss

// Value is a nullable float64. The zero Value is absent.
//
// Absence is data, not an error: a Value built from a missing panel cell
// stays absent through every downstream computation, while contract
// violations (negative decay, non-positive maturity) surface as errors.
type Value struct {
	Float64 float64
	Valid   bool
}

// Num returns a present Value.
func Num(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// NA returns an absent Value.
func NA() Value {
	return Value{}
}

// Ptr converts a possibly-nil pointer (the usual missing-cell shape in
// tabular sources) into a Value.
func Ptr(p *float64) Value {
	if p == nil {
		return Value{}
	}
	return Value{Float64: *p, Valid: true}
}
