package main

import (
	"fmt"

	"github.com/quantfin/termstruct/bond"
	"github.com/quantfin/termstruct/nss"
)

func main() {
	// Fed-style Svensson estimate for one date.
	today := nss.MustNew(4.0, -2.0, 1.5, nss.Num(0.8), 1.5, nss.Num(10.0))
	yesterday := nss.MustNew(4.1, -2.1, 1.6, nss.Num(0.9), 1.6, nss.Num(10.2))

	fmt.Println("zero-coupon curve (percent):")
	maturities := []float64{0.25, 1, 2, 5, 10, 30}
	yields, err := nss.Yields(maturities, today)
	if err != nil {
		panic(err)
	}
	for i, m := range maturities {
		fmt.Printf("  %5.2fy  %6.3f\n", m, yields[i].Float64)
	}

	price, _ := nss.Price(10, today, 100)
	fwd, _ := nss.ForwardRate(2, 5, today)
	ret, _ := nss.Return(10, today, yesterday, nss.Daily, nss.Log)
	fmt.Printf("\n10y discount price (face 100): %.4f\n", price.Float64)
	fmt.Printf("2y-5y forward rate (decimal):  %.5f\n", fwd.Float64)
	fmt.Printf("10y daily log return:          %.6f\n", ret.Float64)

	ytm, err := bond.Yield(950, 1000, 0.05, 3.5, 2)
	if err != nil {
		panic(err)
	}
	fmt.Printf("\nYTM of 3.5y 5%% bond at 950:    %.4f\n", ytm)
}
