package panel_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	dataframe "github.com/jdfergason/dataframe-go"

	"github.com/quantfin/termstruct/nss"
	"github.com/quantfin/termstruct/panel"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testFrame builds a five-row panel of daily observations. Row 2 is a
// three-factor (Nelson-Siegel) estimate, row 3 has its core parameters
// missing, the rest are four-factor.
func testFrame() *dataframe.DataFrame {
	return dataframe.NewDataFrame(
		dataframe.NewSeriesTime("date", nil,
			day(2020, 1, 6), day(2020, 1, 7), day(2020, 1, 8), day(2020, 1, 9), day(2020, 1, 10)),
		dataframe.NewSeriesString("source", nil, "gsw", "gsw", "gsw", "gsw", "gsw"),
		dataframe.NewSeriesFloat64("level", nil, 4.0, 3.9, 3.8, nil, 3.7),
		dataframe.NewSeriesFloat64("slope", nil, -2.0, -1.9, -1.8, -1.7, -1.6),
		dataframe.NewSeriesFloat64("curvature1", nil, 1.5, 1.4, 1.3, 1.2, 1.1),
		dataframe.NewSeriesFloat64("curvature2", nil, 0.8, 0.7, nil, 0.5, 0.4),
		dataframe.NewSeriesFloat64("decay1", nil, 1.5, 1.4, 1.3, 1.2, 1.1),
		dataframe.NewSeriesFloat64("decay2", nil, 10.0, 9.5, nil, 8.5, 8.0),
	)
}

func paramsRow(level, slope, c1 float64, c2 nss.Value, d1 float64, d2 nss.Value) *nss.ParamSet {
	return nss.MustNew(level, slope, c1, c2, d1, d2)
}

func cell(t *testing.T, df *dataframe.DataFrame, col string, row int) (float64, bool) {
	t.Helper()
	idx, err := df.NameToColumn(col)
	if err != nil {
		t.Fatalf("column %q: %v", col, err)
	}
	v := df.Series[idx].Value(row)
	if v == nil {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("column %q row %d: unexpected cell type %T", col, row, v)
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func TestNew_MissingParameterColumn(t *testing.T) {
	t.Parallel()

	df := dataframe.NewDataFrame(
		dataframe.NewSeriesTime("date", nil, day(2020, 1, 6)),
		dataframe.NewSeriesFloat64("level", nil, 4.0),
	)
	_, err := panel.New(df, panel.DefaultColumns())
	var ve *nss.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestAddYields_MixedModelRows(t *testing.T) {
	t.Parallel()

	df := testFrame()
	p, err := panel.New(df, panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddYields(context.Background(), []float64{5, 0.5}); err != nil {
		t.Fatal(err)
	}

	// Four-factor row.
	got, ok := cell(t, df, "yield_5y", 0)
	if !ok {
		t.Fatal("yield_5y row 0: expected a value")
	}
	want, _ := nss.Yield(5, paramsRow(4.0, -2.0, 1.5, nss.Num(0.8), 1.5, nss.Num(10.0)))
	if math.Abs(got-want.Float64) > 1e-12 {
		t.Fatalf("yield_5y row 0 = %.12g, want %.12g", got, want.Float64)
	}

	// Three-factor row (curvature2/decay2 missing) still yields.
	got, ok = cell(t, df, "yield_5y", 2)
	if !ok {
		t.Fatal("yield_5y row 2: three-factor row must still yield")
	}
	want, _ = nss.Yield(5, paramsRow(3.8, -1.8, 1.3, nss.NA(), 1.3, nss.NA()))
	if math.Abs(got-want.Float64) > 1e-12 {
		t.Fatalf("yield_5y row 2 = %.12g, want %.12g", got, want.Float64)
	}

	// Absent-core row propagates a missing cell.
	if _, ok := cell(t, df, "yield_5y", 3); ok {
		t.Fatal("yield_5y row 3: expected missing cell for absent level")
	}

	// Fractional maturity label.
	if _, err := df.NameToColumn("yield_0.5y"); err != nil {
		t.Fatalf("expected column yield_0.5y: %v", err)
	}
}

func TestAddYields_Validation(t *testing.T) {
	t.Parallel()

	p, err := panel.New(testFrame(), panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}

	var de *nss.DomainError
	if err := p.AddYields(context.Background(), []float64{5, -1}); !errors.As(err, &de) {
		t.Fatalf("negative maturity: expected *DomainError, got %v", err)
	}

	var ve *nss.ValidationError
	if err := p.AddYields(context.Background(), []float64{5, 5.0}); !errors.As(err, &ve) {
		t.Fatalf("duplicate column name: expected *ValidationError, got %v", err)
	}
	if err := p.AddYields(context.Background(), nil); !errors.As(err, &ve) {
		t.Fatalf("no maturities: expected *ValidationError, got %v", err)
	}
}

func TestAddYields_InvalidDecayIsAnError(t *testing.T) {
	t.Parallel()

	df := dataframe.NewDataFrame(
		dataframe.NewSeriesTime("date", nil, day(2020, 1, 6)),
		dataframe.NewSeriesFloat64("level", nil, 4.0),
		dataframe.NewSeriesFloat64("slope", nil, -2.0),
		dataframe.NewSeriesFloat64("curvature1", nil, 1.5),
		dataframe.NewSeriesFloat64("curvature2", nil, 0.8),
		dataframe.NewSeriesFloat64("decay1", nil, -1.5),
		dataframe.NewSeriesFloat64("decay2", nil, 10.0),
	)
	p, err := panel.New(df, panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}

	// A present but negative decay must surface, never downgrade to a
	// missing cell.
	var ve *nss.ValidationError
	if err := p.AddYields(context.Background(), []float64{5}); !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError for negative decay, got %v", err)
	}
}

func TestAddPrices(t *testing.T) {
	t.Parallel()

	df := testFrame()
	p, err := panel.New(df, panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddPrices(context.Background(), []float64{10}, 100); err != nil {
		t.Fatal(err)
	}

	got, ok := cell(t, df, "price_10y", 0)
	if !ok {
		t.Fatal("price_10y row 0: expected a value")
	}
	want, _ := nss.Price(10, paramsRow(4.0, -2.0, 1.5, nss.Num(0.8), 1.5, nss.Num(10.0)), 100)
	if math.Abs(got-want.Float64) > 1e-12 {
		t.Fatalf("price_10y row 0 = %.12g, want %.12g", got, want.Float64)
	}

	var de *nss.DomainError
	if err := p.AddPrices(context.Background(), []float64{10}, 0); !errors.As(err, &de) {
		t.Fatalf("zero face: expected *DomainError, got %v", err)
	}
}

func TestAddReturns_DailyLag(t *testing.T) {
	t.Parallel()

	df := testFrame()
	p, err := panel.New(df, panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}

	before := len(df.Series)
	if err := p.AddReturns(context.Background(), 10, nss.Daily, nss.Log); err != nil {
		t.Fatal(err)
	}
	if len(df.Series) != before+1 {
		t.Fatalf("AddReturns added %d columns, want exactly 1", len(df.Series)-before)
	}

	// First row has no prior observation.
	if _, ok := cell(t, df, "ret_10y_daily", 0); ok {
		t.Fatal("first row must have a missing return")
	}

	// Row 1 lags to row 0.
	got, ok := cell(t, df, "ret_10y_daily", 1)
	if !ok {
		t.Fatal("ret_10y_daily row 1: expected a value")
	}
	now := paramsRow(3.9, -1.9, 1.4, nss.Num(0.7), 1.4, nss.Num(9.5))
	prev := paramsRow(4.0, -2.0, 1.5, nss.Num(0.8), 1.5, nss.Num(10.0))
	want, _ := nss.Return(10, now, prev, nss.Daily, nss.Log)
	if math.Abs(got-want.Float64) > 1e-15 {
		t.Fatalf("ret_10y_daily row 1 = %.15g, want %.15g", got, want.Float64)
	}

	// Row 3 has absent core parameters: missing return.
	if _, ok := cell(t, df, "ret_10y_daily", 3); ok {
		t.Fatal("row with absent parameters must have a missing return")
	}

	// Row 4's previous row (3) is absent: missing return too.
	if _, ok := cell(t, df, "ret_10y_daily", 4); ok {
		t.Fatal("row whose prior observation is absent must have a missing return")
	}

	// Column surfaced immediately after the date column.
	dateIdx, err := df.NameToColumn("date")
	if err != nil {
		t.Fatal(err)
	}
	retIdx, err := df.NameToColumn("ret_10y_daily")
	if err != nil {
		t.Fatal(err)
	}
	if retIdx != dateIdx+1 {
		t.Fatalf("return column at %d, want right after date column %d", retIdx, dateIdx)
	}
}

func TestAddReturns_SortsByDate(t *testing.T) {
	t.Parallel()

	// Rows deliberately out of order; 30-day spacing matches the monthly
	// calendar lag exactly.
	df := dataframe.NewDataFrame(
		dataframe.NewSeriesTime("date", nil, day(2020, 3, 1), day(2020, 1, 1), day(2020, 1, 31)),
		dataframe.NewSeriesFloat64("level", nil, 3.8, 4.0, 3.9),
		dataframe.NewSeriesFloat64("slope", nil, -1.8, -2.0, -1.9),
		dataframe.NewSeriesFloat64("curvature1", nil, 1.3, 1.5, 1.4),
		dataframe.NewSeriesFloat64("curvature2", nil, 0.6, 0.8, 0.7),
		dataframe.NewSeriesFloat64("decay1", nil, 1.3, 1.5, 1.4),
		dataframe.NewSeriesFloat64("decay2", nil, 9.0, 10.0, 9.5),
	)
	p, err := panel.New(df, panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddReturns(context.Background(), 10, nss.Monthly, nss.Log); err != nil {
		t.Fatal(err)
	}

	// After the call the frame is date-ascending.
	dateIdx, _ := df.NameToColumn("date")
	dates := df.Series[dateIdx].(*dataframe.SeriesTime).Values
	for i := 1; i < len(dates); i++ {
		if dates[i].Before(*dates[i-1]) {
			t.Fatal("panel must be sorted ascending by date after AddReturns")
		}
	}

	// Sorted row 1 (2020-01-31) lags to 2020-01-01; sorted row 2
	// (2020-03-01) lags to 2020-01-31.
	now := paramsRow(3.9, -1.9, 1.4, nss.Num(0.7), 1.4, nss.Num(9.5))
	prev := paramsRow(4.0, -2.0, 1.5, nss.Num(0.8), 1.5, nss.Num(10.0))
	want, _ := nss.Return(10, now, prev, nss.Monthly, nss.Log)
	got, ok := cell(t, df, "ret_10y_monthly", 1)
	if !ok {
		t.Fatal("ret_10y_monthly row 1: expected a value")
	}
	if math.Abs(got-want.Float64) > 1e-15 {
		t.Fatalf("ret_10y_monthly row 1 = %.15g, want %.15g", got, want.Float64)
	}

	if _, ok := cell(t, df, "ret_10y_monthly", 0); ok {
		t.Fatal("earliest row must have a missing return")
	}
}

func TestAddReturns_StructuralErrors(t *testing.T) {
	t.Parallel()

	var ve *nss.ValidationError

	// No date column.
	noDate := dataframe.NewDataFrame(
		dataframe.NewSeriesFloat64("level", nil, 4.0),
		dataframe.NewSeriesFloat64("slope", nil, -2.0),
		dataframe.NewSeriesFloat64("curvature1", nil, 1.5),
		dataframe.NewSeriesFloat64("curvature2", nil, 0.8),
		dataframe.NewSeriesFloat64("decay1", nil, 1.5),
		dataframe.NewSeriesFloat64("decay2", nil, 10.0),
	)
	p, err := panel.New(noDate, panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddReturns(context.Background(), 10, nss.Monthly, nss.Log); !errors.As(err, &ve) {
		t.Fatalf("missing date column: expected *ValidationError, got %v", err)
	}

	// Empty panel.
	empty := dataframe.NewDataFrame(
		dataframe.NewSeriesTime("date", nil),
		dataframe.NewSeriesFloat64("level", nil),
		dataframe.NewSeriesFloat64("slope", nil),
		dataframe.NewSeriesFloat64("curvature1", nil),
		dataframe.NewSeriesFloat64("curvature2", nil),
		dataframe.NewSeriesFloat64("decay1", nil),
		dataframe.NewSeriesFloat64("decay2", nil),
	)
	p, err = panel.New(empty, panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddReturns(context.Background(), 10, nss.Monthly, nss.Log); !errors.As(err, &ve) {
		t.Fatalf("empty panel: expected *ValidationError, got %v", err)
	}

	// Unsupported frequency and kind fail before any row work.
	full, err := panel.New(testFrame(), panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	var ae *nss.ArgumentError
	if err := full.AddReturns(context.Background(), 10, nss.Frequency("weekly"), nss.Log); !errors.As(err, &ae) {
		t.Fatalf("unknown frequency: expected *ArgumentError, got %v", err)
	}
	if err := full.AddReturns(context.Background(), 10, nss.Monthly, nss.Kind("geometric")); !errors.As(err, &ae) {
		t.Fatalf("unknown kind: expected *ArgumentError, got %v", err)
	}
}

func TestAddExcessReturns(t *testing.T) {
	t.Parallel()

	df := testFrame()
	p, err := panel.New(df, panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}

	before := len(df.Series)
	if err := p.AddExcessReturns(context.Background(), 10, 0.25, nss.Daily, nss.Log); err != nil {
		t.Fatal(err)
	}

	// Only the difference column is written; no intermediate columns.
	if len(df.Series) != before+1 {
		t.Fatalf("AddExcessReturns added %d columns, want exactly 1", len(df.Series)-before)
	}
	if _, err := df.NameToColumn("excess_ret_10y_daily"); err != nil {
		t.Fatalf("expected column excess_ret_10y_daily: %v", err)
	}

	got, ok := cell(t, df, "excess_ret_10y_daily", 1)
	if !ok {
		t.Fatal("excess_ret_10y_daily row 1: expected a value")
	}
	now := paramsRow(3.9, -1.9, 1.4, nss.Num(0.7), 1.4, nss.Num(9.5))
	prev := paramsRow(4.0, -2.0, 1.5, nss.Num(0.8), 1.5, nss.Num(10.0))
	want, _ := nss.ExcessReturn(10, now, prev, 0.25, nss.Daily, nss.Log)
	if math.Abs(got-want.Float64) > 1e-15 {
		t.Fatalf("excess_ret_10y_daily row 1 = %.15g, want %.15g", got, want.Float64)
	}

	if _, ok := cell(t, df, "excess_ret_10y_daily", 0); ok {
		t.Fatal("first row must have a missing excess return")
	}

	var de *nss.DomainError
	if err := p.AddExcessReturns(context.Background(), 10, 0, nss.Daily, nss.Log); !errors.As(err, &de) {
		t.Fatalf("zero risk-free maturity: expected *DomainError, got %v", err)
	}
}

func TestParamsAt(t *testing.T) {
	t.Parallel()

	p, err := panel.New(testFrame(), panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}

	ps, err := p.ParamsAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if ps == nil || ps.Beta0 != 4.0 || !ps.Beta3.Valid {
		t.Fatalf("row 0: unexpected parameter set %+v", ps)
	}

	ps, err = p.ParamsAt(2)
	if err != nil {
		t.Fatal(err)
	}
	if ps == nil || !ps.ThreeFactor() {
		t.Fatalf("row 2 must be a three-factor set, got %+v", ps)
	}

	ps, err = p.ParamsAt(3)
	if err != nil {
		t.Fatal(err)
	}
	if ps != nil {
		t.Fatalf("row 3 must be absent, got %+v", ps)
	}

	var ve *nss.ValidationError
	if _, err := p.ParamsAt(99); !errors.As(err, &ve) {
		t.Fatalf("out-of-range row: expected *ValidationError, got %v", err)
	}
}

func TestAdd_LeavesUnrelatedColumnsAlone(t *testing.T) {
	t.Parallel()

	df := testFrame()
	p, err := panel.New(df, panel.DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddYields(context.Background(), []float64{5}); err != nil {
		t.Fatal(err)
	}
	if err := p.AddReturns(context.Background(), 5, nss.Daily, nss.Log); err != nil {
		t.Fatal(err)
	}

	idx, err := df.NameToColumn("source")
	if err != nil {
		t.Fatalf("descriptive column lost: %v", err)
	}
	for row := 0; row < df.NRows(); row++ {
		if v := df.Series[idx].Value(row); v != "gsw" {
			t.Fatalf("descriptive column mutated at row %d: %v", row, v)
		}
	}
}
