package utils

import (
	"log"
	"math"
	"sort"
	"time"
)

// SortDates sorts a slice of time.Time in ascending order.
func SortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}

// SearchPrior returns the index of the last date at or before target in a
// sorted slice, or -1 when every date is after target.
//
// This is the lag lookup for irregularly spaced time series: "the
// observation one month ago" is the most recent row at or before
// date-30d, not the row thirty positions earlier.
func SearchPrior(target time.Time, dates []time.Time) int {
	// First index with dates[i] > target.
	i := sort.Search(len(dates), func(i int) bool {
		return dates[i].After(target)
	})
	return i - 1
}

// DateParser converts YYYY-MM-DD to time.Time or exits on error.
func DateParser(strDate string) time.Time {
	const layout = "2006-01-02"
	t, err := time.Parse(layout, strDate)
	if err != nil {
		log.Fatal(err)
	}
	return t
}

// Days returns the day count fraction in days between two dates.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
