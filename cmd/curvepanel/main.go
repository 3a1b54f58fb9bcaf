// Command curvepanel derives yield, price and return columns from a CSV
// panel of NSS parameter estimates and writes the augmented panel as CSV
// on stdout.
//
// The input must carry a YYYY-MM-DD date column and the six parameter
// columns (level, slope, curvature1, curvature2, decay1, decay2 by
// default); empty cells are missing values. Example:
//
//	curvepanel -input params.csv -yields 1,2,5,10 -returns 10 -freq monthly
//	curvepanel -input params.csv -grid 0.5:30:60
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	dataframe "github.com/jdfergason/dataframe-go"
	"github.com/jdfergason/dataframe-go/exports"
	"github.com/jdfergason/dataframe-go/imports"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/quantfin/termstruct/nss"
	"github.com/quantfin/termstruct/panel"
)

func main() {
	inputPath := flag.String("input", "", "CSV input path (reads stdin if omitted)")
	dateCol := flag.String("date-col", "date", "Name of the date column")
	yieldList := flag.String("yields", "", "Comma-separated yield maturities in years, e.g. 1,2,5,10")
	gridSpec := flag.String("grid", "", "Yield maturity grid min:max:n, e.g. 0.5:30:60")
	priceList := flag.String("prices", "", "Comma-separated price maturities in years")
	face := flag.Float64("face", 1.0, "Face value for price columns")
	retMaturity := flag.Float64("returns", 0, "Return maturity in years (0 disables)")
	freq := flag.String("freq", "monthly", "Return frequency: daily, monthly or annual")
	kind := flag.String("kind", "log", "Return kind: log or arithmetic")
	rfMaturity := flag.Float64("rf", 0.25, "Risk-free proxy maturity for excess returns")
	excess := flag.Bool("excess", false, "Also write the excess-return column")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := context.Background()

	df, err := load(ctx, *inputPath, *dateCol)
	if err != nil {
		logger.Fatal().Err(err).Msg("load panel")
	}
	logger.Info().Int("rows", df.NRows()).Msg("panel loaded")

	cols := panel.DefaultColumns()
	cols.Date = *dateCol
	pnl, err := panel.New(df, cols)
	if err != nil {
		logger.Fatal().Err(err).Msg("wrap panel")
	}

	yields, err := maturities(*yieldList, *gridSpec)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse yield maturities")
	}
	if len(yields) > 0 {
		if err := pnl.AddYields(ctx, yields); err != nil {
			logger.Fatal().Err(err).Msg("add yields")
		}
		summarize(logger, df, "yield", yields)
	}

	if *priceList != "" {
		ms, err := maturities(*priceList, "")
		if err != nil {
			logger.Fatal().Err(err).Msg("parse price maturities")
		}
		if err := pnl.AddPrices(ctx, ms, *face); err != nil {
			logger.Fatal().Err(err).Msg("add prices")
		}
	}

	if *retMaturity > 0 {
		if err := pnl.AddReturns(ctx, *retMaturity, nss.Frequency(*freq), nss.Kind(*kind)); err != nil {
			logger.Fatal().Err(err).Msg("add returns")
		}
		if *excess {
			if err := pnl.AddExcessReturns(ctx, *retMaturity, *rfMaturity, nss.Frequency(*freq), nss.Kind(*kind)); err != nil {
				logger.Fatal().Err(err).Msg("add excess returns")
			}
		}
	}

	if err := exports.ExportToCSV(ctx, os.Stdout, df); err != nil {
		logger.Fatal().Err(err).Msg("write output")
	}
}

// load reads the CSV panel, dictating time for the date column and
// nullable floats for the NSS parameter columns.
func load(ctx context.Context, path, dateCol string) (*dataframe.DataFrame, error) {
	r := os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	types := map[string]interface{}{
		dateCol: imports.Converter{
			ConcreteType: time.Time{},
			ConverterFunc: func(in interface{}) (interface{}, error) {
				return time.Parse("2006-01-02", in.(string))
			},
		},
	}
	for _, name := range []string{"level", "slope", "curvature1", "curvature2", "decay1", "decay2"} {
		types[name] = float64(0)
	}

	nilValue := ""
	return imports.LoadFromCSV(ctx, r, imports.CSVLoadOptions{
		DictateDataType: types,
		NilValue:        &nilValue,
	})
}

// maturities parses either an explicit comma list or a min:max:n span.
func maturities(list, grid string) ([]float64, error) {
	if grid != "" {
		parts := strings.Split(grid, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("grid must be min:max:n, got %q", grid)
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, err
		}
		if n < 2 || hi <= lo {
			return nil, fmt.Errorf("grid needs n >= 2 and max > min, got %q", grid)
		}
		return floats.Span(make([]float64, n), lo, hi), nil
	}

	if list == "" {
		return nil, nil
	}
	var out []float64
	for _, s := range strings.Split(list, ",") {
		m, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// summarize logs the mean and standard deviation of each derived yield
// column, skipping missing cells.
func summarize(logger zerolog.Logger, df *dataframe.DataFrame, prefix string, ms []float64) {
	for _, m := range ms {
		label := strconv.FormatFloat(m, 'f', -1, 64)
		name := fmt.Sprintf("%s_%sy", prefix, label)
		idx, err := df.NameToColumn(name)
		if err != nil {
			continue
		}

		var vals []float64
		for row := 0; row < df.NRows(); row++ {
			if v, ok := df.Series[idx].Value(row).(float64); ok && !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			logger.Warn().Str("column", name).Msg("no observations")
			continue
		}
		logger.Info().
			Str("column", name).
			Int("n", len(vals)).
			Float64("mean", stat.Mean(vals, nil)).
			Float64("stddev", stat.StdDev(vals, nil)).
			Msg("column summary")
	}
}
