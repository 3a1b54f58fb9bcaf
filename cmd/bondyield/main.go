// Command bondyield solves a bond's yield to maturity from JSON input.
//
// Two input forms are accepted: raw terms (price, face_value, coupon_rate,
// years_to_maturity, periods_per_year) or the Excel YIELD form
// (settlement, maturity, coupon_rate, price, redemption, frequency,
// basis). The Excel form is used when settlement is present.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfin/termstruct/bond"
)

type yieldInput struct {
	TaskID string `json:"task_id,omitempty"`

	Price      float64 `json:"price"`
	CouponRate float64 `json:"coupon_rate"`

	// Raw-terms form.
	FaceValue       float64 `json:"face_value,omitempty"`
	YearsToMaturity float64 `json:"years_to_maturity,omitempty"`
	PeriodsPerYear  int     `json:"periods_per_year,omitempty"`

	// Excel form.
	Settlement string  `json:"settlement,omitempty"`
	Maturity   string  `json:"maturity,omitempty"`
	Redemption float64 `json:"redemption,omitempty"`
	Frequency  int     `json:"frequency,omitempty"`
	Basis      int     `json:"basis,omitempty"`
}

type yieldOutput struct {
	TaskID string  `json:"task_id,omitempty"`
	Yield  float64 `json:"yield"`
	Error  string  `json:"error,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: bondyield -input <path>")
		fmt.Fprintln(os.Stderr, "Solve yield to maturity from raw bond terms or the Excel YIELD form.")
		return
	}

	raw, err := readInput(strings.TrimSpace(*inputPath))
	if err != nil {
		logger.Fatal().Err(err).Msg("read input")
	}

	var in yieldInput
	if err := json.Unmarshal(raw, &in); err != nil {
		logger.Fatal().Err(err).Msg("parse input")
	}

	out := yieldOutput{TaskID: in.TaskID}
	y, err := solve(in)
	if err != nil {
		out.Error = err.Error()
		logger.Error().Err(err).Msg("solve yield")
	} else {
		out.Yield = y
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal().Err(err).Msg("write output")
	}
	if out.Error != "" {
		os.Exit(1)
	}
}

func solve(in yieldInput) (float64, error) {
	if in.Settlement == "" {
		return bond.Yield(in.Price, in.FaceValue, in.CouponRate, in.YearsToMaturity, in.PeriodsPerYear)
	}

	settlement, err := time.Parse("2006-01-02", in.Settlement)
	if err != nil {
		return 0, fmt.Errorf("settlement: %w", err)
	}
	maturity, err := time.Parse("2006-01-02", in.Maturity)
	if err != nil {
		return 0, fmt.Errorf("maturity: %w", err)
	}
	return bond.YieldExcel(settlement, maturity, in.CouponRate, in.Price, in.Redemption, in.Frequency, in.Basis)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, os.Stdin); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return os.ReadFile(path)
}
