package bond

import (
	"fmt"
	"math"
	"time"

	"github.com/quantfin/termstruct/nss"
	"github.com/quantfin/termstruct/utils"
)

// YieldExcel computes a bond's annual yield to maturity from dates, in
// the manner of Excel's YIELD function.
//
// price and redemption are per 100 of face value (Excel convention);
// coupons accrue on par, so a redemption other than 100 changes only the
// final principal flow. couponRate is a decimal (0.0575 for 5.75%).
// frequency is coupons per year (1, 2 or 4) and basis is the Excel
// day-count code 0-4.
//
// Years to maturity come from the day-count basis and the period count is
// rounded to whole periods, so results match Excel within a few basis
// points rather than bit-exactly.
func YieldExcel(settlement, maturity time.Time, couponRate, price, redemption float64, frequency, basis int) (float64, error) {
	if !maturity.After(settlement) {
		return 0, &nss.DomainError{Op: "bond.YieldExcel", Msg: fmt.Sprintf("maturity %s must be after settlement %s",
			maturity.Format("2006-01-02"), settlement.Format("2006-01-02"))}
	}
	if price <= 0 {
		return 0, &nss.DomainError{Op: "bond.YieldExcel", Msg: fmt.Sprintf("price must be strictly positive, got %g", price)}
	}
	if redemption <= 0 {
		return 0, &nss.DomainError{Op: "bond.YieldExcel", Msg: fmt.Sprintf("redemption must be strictly positive, got %g", redemption)}
	}
	if couponRate < 0 {
		return 0, &nss.DomainError{Op: "bond.YieldExcel", Msg: fmt.Sprintf("coupon rate must be non-negative, got %g", couponRate)}
	}
	if frequency != 1 && frequency != 2 && frequency != 4 {
		return 0, &nss.ArgumentError{Op: "bond.YieldExcel", Msg: fmt.Sprintf("frequency must be 1, 2 or 4, got %d", frequency)}
	}

	convention, err := utils.BasisConvention(basis)
	if err != nil {
		return 0, &nss.ArgumentError{Op: "bond.YieldExcel", Msg: err.Error()}
	}

	m := float64(frequency)
	years := utils.YearFraction(settlement, maturity, convention)
	n := int(math.Round(years * m))
	if n < 1 {
		n = 1
	}
	coupon := couponRate * 100 / m

	return solveYield(price, coupon, redemption, n, m)
}
