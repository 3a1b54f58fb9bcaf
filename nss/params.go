package nss

import "fmt"

// Epsilon below which a fourth-term loading is treated as zero. Upstream
// sources occasionally force beta3 to a tiny nonzero value during
// three-factor periods; without the guard those rows would pick up a
// spurious Svensson term from float noise.
const beta3Epsilon = 1e-10

// ParamSet is one Nelson-Siegel-Svensson parameter estimate at a point in
// time. Beta0 (level), Beta1 (slope), Beta2 (first curvature) and Tau1
// (first decay) are always present; Beta3 and Tau2 are present only for
// the four-factor (Svensson) form.
//
// A ParamSet is immutable once constructed. It has no independent
// persistence: it is a transient view over one panel row's six columns,
// rebuilt whenever a calculation needs it.
type ParamSet struct {
	Beta0 float64
	Beta1 float64
	Beta2 float64
	Beta3 Value
	Tau1  float64
	Tau2  Value
}

// New builds a ParamSet from six possibly-absent values.
//
// It returns (nil, nil) when any of beta0, beta1, beta2 or tau1 is absent:
// the whole parameter set is absent for that date, which is data, not an
// error. A present tau1 or tau2 that is not strictly positive is a
// *ValidationError regardless of whether the set would otherwise be
// absent.
func New(beta0, beta1, beta2, beta3, tau1, tau2 Value) (*ParamSet, error) {
	if tau1.Valid && tau1.Float64 <= 0 {
		return nil, &ValidationError{Op: "nss.New", Msg: fmt.Sprintf("tau1 must be strictly positive, got %g", tau1.Float64)}
	}
	if tau2.Valid && tau2.Float64 <= 0 {
		return nil, &ValidationError{Op: "nss.New", Msg: fmt.Sprintf("tau2 must be strictly positive, got %g", tau2.Float64)}
	}
	if !beta0.Valid || !beta1.Valid || !beta2.Valid || !tau1.Valid {
		return nil, nil
	}
	return &ParamSet{
		Beta0: beta0.Float64,
		Beta1: beta1.Float64,
		Beta2: beta2.Float64,
		Beta3: beta3,
		Tau1:  tau1.Float64,
		Tau2:  tau2,
	}, nil
}

// MustNew is New for literal parameter values known to be valid; it panics
// on a validation error or an absent set. Intended for tests and demos.
func MustNew(beta0, beta1, beta2 float64, beta3 Value, tau1 float64, tau2 Value) *ParamSet {
	p, err := New(Num(beta0), Num(beta1), Num(beta2), beta3, Num(tau1), tau2)
	if err != nil {
		panic(err)
	}
	if p == nil {
		panic("nss.MustNew: absent parameter set")
	}
	return p
}

// ThreeFactor reports whether the set degenerates to the Nelson-Siegel
// form, i.e. beta3 or tau2 is absent.
func (p *ParamSet) ThreeFactor() bool {
	return !p.Beta3.Valid || !p.Tau2.Valid
}

// Effective returns the six parameters with degeneration applied: an
// absent beta3 becomes 0 and an absent tau2 becomes tau1, which makes the
// fourth curve term vanish algebraically. Every formula in this package
// consumes effective parameters, so the three- and four-factor forms share
// one code path.
func (p *ParamSet) Effective() (beta0, beta1, beta2, beta3, tau1, tau2 float64) {
	beta0, beta1, beta2, tau1 = p.Beta0, p.Beta1, p.Beta2, p.Tau1
	beta3 = 0
	tau2 = tau1
	if p.Beta3.Valid {
		beta3 = p.Beta3.Float64
	}
	if p.Tau2.Valid {
		tau2 = p.Tau2.Float64
	}
	return
}
