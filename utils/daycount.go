package utils

import (
	"fmt"
	"time"
)

// YearFraction computes the year fraction between two dates under a day
// count convention.
//
// Supported conventions: ACT/360, ACT/365F, ACT/365, ACT/ACT, 30/360 (US
// NASD), 30E/360. ACT/ACT is approximated as actual days over 365.25,
// which matches the exact convention within a few basis points of yield
// for ordinary bond horizons. Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	switch convention {
	case "ACT/360":
		return Days(start, end) / 360.0
	case "ACT/365F", "ACT/365":
		return Days(start, end) / 365.0
	case "ACT/ACT":
		return Days(start, end) / 365.25
	case "30/360":
		// 30/360 US (NASD): D1 capped at 30; D2 capped at 30 only when
		// D1 is 30 or 31.
		d1, d2 := start.Day(), end.Day()
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	case "30E/360":
		// 30E/360 ISDA (Eurobond basis): D1 and D2 both capped at 30.
		d1, d2 := start.Day(), end.Day()
		if d1 > 30 {
			d1 = 30
		}
		if d2 > 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	default:
		return Days(start, end) / 365.0
	}
}

func thirty360(start, end time.Time, d1, d2 int) float64 {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
}

// BasisConvention maps an Excel day-count basis code (0-4, as used by
// YIELD and YEARFRAC) to a convention name for YearFraction.
func BasisConvention(basis int) (string, error) {
	switch basis {
	case 0:
		return "30/360", nil
	case 1:
		return "ACT/ACT", nil
	case 2:
		return "ACT/360", nil
	case 3:
		return "ACT/365", nil
	case 4:
		return "30E/360", nil
	default:
		return "", fmt.Errorf("BasisConvention: basis must be 0-4, got %d", basis)
	}
}
