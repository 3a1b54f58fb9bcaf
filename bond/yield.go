// Package bond solves the inverse bond-pricing problem: given a price,
// coupon and schedule, find the yield to maturity by root-finding.
package bond

import (
	"fmt"
	"math"

	"github.com/quantfin/termstruct/nss"
)

// ConvergenceError reports that the root-finder exhausted its bracket
// attempts or iterations without locating a yield.
type ConvergenceError struct {
	Op  string
	Msg string
}

func (e *ConvergenceError) Error() string {
	return e.Op + ": " + e.Msg
}

const (
	// Brent solve tolerance on the yield, and iteration cap.
	yieldTolerance = 1e-12
	yieldMaxIter   = 200

	// Initial yield bracket (annual nominal, decimal) and geometric
	// widening policy. The initial interval covers ordinary bonds; some
	// short-maturity deep-discount inputs put the root outside it, so the
	// upper bound doubles and the lower bound backs toward the discount
	// singularity for a fixed number of attempts before giving up.
	bracketLow      = -0.99
	bracketHigh     = 1.0
	bracketGrowth   = 2.0
	bracketAttempts = 8

	machineEpsilon = 2.220446049250313e-16
)

// Yield solves for the annual nominal yield to maturity y of a level
// coupon bond:
//
//	price = Σ_{k=1..n} c/(1+y/m)^k + face/(1+y/m)^n
//
// where m = periodsPerYear, c = couponRate·face/m, and
// n = round(years·m). Fractional period counts are rounded to the nearest
// whole period, an approximation for bonds between coupon dates.
//
// Both discount (price < face) and premium (price > face) bonds are
// handled. Returns *ConvergenceError when no root can be bracketed.
func Yield(price, face, couponRate, years float64, periodsPerYear int) (float64, error) {
	if price <= 0 {
		return 0, &nss.DomainError{Op: "bond.Yield", Msg: fmt.Sprintf("price must be strictly positive, got %g", price)}
	}
	if face <= 0 {
		return 0, &nss.DomainError{Op: "bond.Yield", Msg: fmt.Sprintf("face value must be strictly positive, got %g", face)}
	}
	if couponRate < 0 {
		return 0, &nss.DomainError{Op: "bond.Yield", Msg: fmt.Sprintf("coupon rate must be non-negative, got %g", couponRate)}
	}
	if years <= 0 {
		return 0, &nss.DomainError{Op: "bond.Yield", Msg: fmt.Sprintf("years to maturity must be strictly positive, got %g", years)}
	}
	if periodsPerYear <= 0 {
		return 0, &nss.DomainError{Op: "bond.Yield", Msg: fmt.Sprintf("periods per year must be strictly positive, got %d", periodsPerYear)}
	}

	m := float64(periodsPerYear)
	n := int(math.Round(years * m))
	if n < 1 {
		n = 1
	}
	coupon := couponRate * face / m

	return solveYield(price, coupon, face, n, m)
}

// solveYield finds the annual nominal yield equating the dirty price of a
// level-coupon schedule (coupon per period, redemption at period n) to
// target, discounting at y/m per period.
func solveYield(target, coupon, redemption float64, n int, m float64) (float64, error) {
	f := func(y float64) float64 {
		return schedulePrice(y, coupon, redemption, n, m) - target
	}

	// The price function is monotone decreasing in y on (-m, inf), so a
	// sign change over the bracket guarantees a single root.
	lo, hi := bracketLow, bracketHigh
	loFloor := -0.9999 * m

	var fLo, fHi float64
	bracketed := false
	for attempt := 0; attempt < bracketAttempts; attempt++ {
		fLo, fHi = f(lo), f(hi)
		if fLo == 0 {
			return lo, nil
		}
		if fHi == 0 {
			return hi, nil
		}
		if (fLo > 0) != (fHi > 0) {
			bracketed = true
			break
		}
		hi *= bracketGrowth
		lo = math.Max(lo*bracketGrowth, loFloor)
	}
	if !bracketed {
		return 0, &ConvergenceError{Op: "bond.Yield", Msg: fmt.Sprintf("no yield bracket found in [%g, %g] after %d attempts", lo, hi, bracketAttempts)}
	}

	return brent(f, lo, hi, fLo, fHi)
}

// schedulePrice is the dirty price of the level-coupon schedule at annual
// nominal yield y with m periods per year.
func schedulePrice(y, coupon, redemption float64, n int, m float64) float64 {
	disc := 1 + y/m
	var pv float64
	for k := 1; k <= n; k++ {
		pv += coupon / math.Pow(disc, float64(k))
	}
	return pv + redemption/math.Pow(disc, float64(n))
}

// brent runs Brent's method on f over a bracketing interval [a, b] with
// fa = f(a), fb = f(b) of opposite sign.
func brent(f func(float64) float64, a, b, fa, fb float64) (float64, error) {
	c, fc := a, fa
	d := b - a
	e := d

	for iter := 0; iter < yieldMaxIter; iter++ {
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2*machineEpsilon*math.Abs(b) + 0.5*yieldTolerance
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, nil
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// Inverse quadratic interpolation, secant when a == c.
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			if 2*p < math.Min(3*xm*q-math.Abs(tol1*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				// Interpolation rejected, bisect.
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
	}

	return b, &ConvergenceError{Op: "bond.Yield", Msg: fmt.Sprintf("did not converge after %d iterations", yieldMaxIter)}
}
