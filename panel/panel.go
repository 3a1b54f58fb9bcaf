// Package panel applies the nss curve and return calculations across a
// date-indexed dataframe of parameter estimates, writing derived columns.
//
// A Panel wraps a caller-supplied *dataframe.DataFrame in place; derived
// columns are added (or replaced) without touching unrelated columns.
// Missing cells in the six parameter columns propagate as missing cells
// in every derived column for that row.
//
// Panels follow a single-writer discipline: two Add* calls must not run
// concurrently on the same Panel. Callers needing parallel derivation
// should compute into separate frames and merge.
package panel

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	dataframe "github.com/jdfergason/dataframe-go"

	"github.com/quantfin/termstruct/nss"
	"github.com/quantfin/termstruct/utils"
)

// Columns names the date column and the six parameter columns of a
// yield-curve panel.
type Columns struct {
	Date       string
	Level      string // beta0
	Slope      string // beta1
	Curvature1 string // beta2
	Curvature2 string // beta3 (optional per row)
	Decay1     string // tau1
	Decay2     string // tau2 (optional per row)
}

// DefaultColumns returns the conventional column names.
func DefaultColumns() Columns {
	return Columns{
		Date:       "date",
		Level:      "level",
		Slope:      "slope",
		Curvature1: "curvature1",
		Curvature2: "curvature2",
		Decay1:     "decay1",
		Decay2:     "decay2",
	}
}

// Panel is a dataframe of dated NSS parameter estimates plus any number
// of unrelated columns, which Add* operations leave untouched.
type Panel struct {
	df   *dataframe.DataFrame
	cols Columns
}

// New wraps df as a Panel. The six parameter columns must exist; the date
// column is only required by the return operations and is checked there.
func New(df *dataframe.DataFrame, cols Columns) (*Panel, error) {
	if df == nil {
		return nil, &nss.ValidationError{Op: "panel.New", Msg: "dataframe is nil"}
	}
	for _, name := range []string{cols.Level, cols.Slope, cols.Curvature1, cols.Curvature2, cols.Decay1, cols.Decay2} {
		if _, err := df.NameToColumn(name); err != nil {
			return nil, &nss.ValidationError{Op: "panel.New", Msg: fmt.Sprintf("parameter column %q not found", name)}
		}
	}
	return &Panel{df: df, cols: cols}, nil
}

// DataFrame returns the underlying frame.
func (p *Panel) DataFrame() *dataframe.DataFrame {
	return p.df
}

// AddYields writes one yield column per requested maturity, named
// yield_{maturity}y (integer maturities bare, fractional ones as minimal
// decimals: yield_5y, yield_0.5y). Rows whose parameter set is absent get
// a missing cell.
func (p *Panel) AddYields(ctx context.Context, maturities []float64) error {
	return p.addCurveColumns(ctx, "panel.AddYields", "yield", maturities, func(t float64, ps *nss.ParamSet) (nss.Value, error) {
		return nss.Yield(t, ps)
	})
}

// AddPrices writes one discount-bond price column per requested maturity,
// named price_{maturity}y, for the given face value.
func (p *Panel) AddPrices(ctx context.Context, maturities []float64, face float64) error {
	if face <= 0 {
		return &nss.DomainError{Op: "panel.AddPrices", Msg: fmt.Sprintf("face value must be strictly positive, got %g", face)}
	}
	return p.addCurveColumns(ctx, "panel.AddPrices", "price", maturities, func(t float64, ps *nss.ParamSet) (nss.Value, error) {
		return nss.Price(t, ps, face)
	})
}

func (p *Panel) addCurveColumns(ctx context.Context, op, prefix string, maturities []float64, eval func(float64, *nss.ParamSet) (nss.Value, error)) error {
	if len(maturities) == 0 {
		return &nss.ValidationError{Op: op, Msg: "no maturities requested"}
	}

	// Structural checks complete before any row is touched: positive
	// maturities and injective target column names.
	names := make([]string, len(maturities))
	seen := map[string]bool{}
	for i, t := range maturities {
		if t <= 0 {
			return &nss.DomainError{Op: op, Msg: fmt.Sprintf("maturity must be strictly positive, got %g", t)}
		}
		name := fmt.Sprintf("%s_%sy", prefix, maturityLabel(t))
		if seen[name] {
			return &nss.ValidationError{Op: op, Msg: fmt.Sprintf("duplicate derived column %q", name)}
		}
		seen[name] = true
		names[i] = name
	}

	idx, err := p.paramIndexes()
	if err != nil {
		return err
	}

	n := p.df.NRows()
	for i, t := range maturities {
		s := dataframe.NewSeriesFloat64(names[i], &dataframe.SeriesInit{Size: n})
		for row := 0; row < n; row++ {
			ps, err := p.paramsAt(row, idx)
			if err != nil {
				return err
			}
			v, err := eval(t, ps)
			if err != nil {
				return err
			}
			if v.Valid {
				s.Update(row, v.Float64)
			}
		}
		if err := p.replaceSeries(s, nil); err != nil {
			return err
		}
	}
	return nil
}

// AddReturns writes the one-period return column ret_{maturity}y_{freq}.
//
// The panel is sorted ascending by date in place first; that ordering is
// a precondition of the lag lookup, not a cosmetic step. The prior
// observation for each row is the most recent row at or before
// date − Δt (daily 1d, monthly 30d, annual 360d), so irregular spacing
// and gaps are handled; rows with no prior observation (always the first
// row) get a missing cell. The new column is inserted right after the
// date column.
func (p *Panel) AddReturns(ctx context.Context, maturity float64, freq nss.Frequency, kind nss.Kind) error {
	name := fmt.Sprintf("ret_%sy_%s", maturityLabel(maturity), string(freq))
	return p.addReturnColumn(ctx, "panel.AddReturns", name, maturity, freq, kind,
		func(t float64, now, prev *nss.ParamSet) (nss.Value, error) {
			return nss.Return(t, now, prev, freq, kind)
		})
}

// AddExcessReturns writes excess_ret_{maturity}y_{freq}: the bond return
// minus the return on the risk-free proxy maturity, computed row by row
// with the same lag lookup as AddReturns. Only the difference column is
// written; no intermediate columns are created.
func (p *Panel) AddExcessReturns(ctx context.Context, maturity, rfMaturity float64, freq nss.Frequency, kind nss.Kind) error {
	if rfMaturity <= 0 {
		return &nss.DomainError{Op: "panel.AddExcessReturns", Msg: fmt.Sprintf("risk-free maturity must be strictly positive, got %g", rfMaturity)}
	}
	name := fmt.Sprintf("excess_ret_%sy_%s", maturityLabel(maturity), string(freq))
	return p.addReturnColumn(ctx, "panel.AddExcessReturns", name, maturity, freq, kind,
		func(t float64, now, prev *nss.ParamSet) (nss.Value, error) {
			return nss.ExcessReturn(t, now, prev, rfMaturity, freq, kind)
		})
}

func (p *Panel) addReturnColumn(ctx context.Context, op, name string, maturity float64, freq nss.Frequency, kind nss.Kind, eval func(float64, *nss.ParamSet, *nss.ParamSet) (nss.Value, error)) error {
	if maturity <= 0 {
		return &nss.DomainError{Op: op, Msg: fmt.Sprintf("maturity must be strictly positive, got %g", maturity)}
	}
	if kind != nss.Log && kind != nss.Arithmetic {
		return &nss.ArgumentError{Op: op, Msg: fmt.Sprintf("unrecognized return kind %q", string(kind))}
	}
	lagDays, err := freq.LagDays()
	if err != nil {
		return err
	}

	n := p.df.NRows()
	if n == 0 {
		return &nss.ValidationError{Op: op, Msg: "panel is empty"}
	}
	if _, err := p.df.NameToColumn(p.cols.Date); err != nil {
		return &nss.ValidationError{Op: op, Msg: fmt.Sprintf("date column %q not found", p.cols.Date)}
	}

	p.df.Sort(ctx, []dataframe.SortKey{{Key: p.cols.Date}})

	dateIdx, err := p.df.NameToColumn(p.cols.Date)
	if err != nil {
		return &nss.ValidationError{Op: op, Msg: fmt.Sprintf("date column %q not found", p.cols.Date)}
	}
	dateSeries, ok := p.df.Series[dateIdx].(*dataframe.SeriesTime)
	if !ok {
		return &nss.ValidationError{Op: op, Msg: fmt.Sprintf("date column %q is not time-typed", p.cols.Date)}
	}

	idx, err := p.paramIndexes()
	if err != nil {
		return err
	}

	// Dated rows in sorted order; rows with a missing date cannot anchor
	// or serve a lag lookup.
	dates := make([]time.Time, 0, n)
	rowOf := make([]int, 0, n)
	for row := 0; row < n; row++ {
		if d := dateSeries.Values[row]; d != nil {
			dates = append(dates, *d)
			rowOf = append(rowOf, row)
		}
	}

	s := dataframe.NewSeriesFloat64(name, &dataframe.SeriesInit{Size: n})
	for k, d := range dates {
		row := rowOf[k]
		target := d.AddDate(0, 0, -lagDays)
		j := utils.SearchPrior(target, dates)
		if j < 0 {
			continue
		}

		now, err := p.paramsAt(row, idx)
		if err != nil {
			return err
		}
		prev, err := p.paramsAt(rowOf[j], idx)
		if err != nil {
			return err
		}
		v, err := eval(maturity, now, prev)
		if err != nil {
			return err
		}
		if v.Valid {
			s.Update(row, v.Float64)
		}
	}

	// Surface the return column immediately after the date column.
	at := dateIdx + 1
	return p.replaceSeries(s, &at)
}

// ParamsAt builds the parameter set for one row. A nil result means the
// row's core parameters are absent.
func (p *Panel) ParamsAt(row int) (*nss.ParamSet, error) {
	if row < 0 || row >= p.df.NRows() {
		return nil, &nss.ValidationError{Op: "panel.ParamsAt", Msg: fmt.Sprintf("row %d out of range", row)}
	}
	idx, err := p.paramIndexes()
	if err != nil {
		return nil, err
	}
	return p.paramsAt(row, idx)
}

// paramIndexes resolves the six parameter column positions. Resolved per
// operation since column insertion shifts positions.
func (p *Panel) paramIndexes() ([6]int, error) {
	var idx [6]int
	names := []string{p.cols.Level, p.cols.Slope, p.cols.Curvature1, p.cols.Curvature2, p.cols.Decay1, p.cols.Decay2}
	for i, name := range names {
		col, err := p.df.NameToColumn(name)
		if err != nil {
			return idx, &nss.ValidationError{Op: "panel", Msg: fmt.Sprintf("parameter column %q not found", name)}
		}
		idx[i] = col
	}
	return idx, nil
}

// paramsAt builds the row's parameter set. A nil result means the row's
// core parameters are absent; a present but non-positive decay is a
// validation error, never silently downgraded to a missing cell.
func (p *Panel) paramsAt(row int, idx [6]int) (*nss.ParamSet, error) {
	return nss.New(
		cellValue(p.df.Series[idx[0]].Value(row)),
		cellValue(p.df.Series[idx[1]].Value(row)),
		cellValue(p.df.Series[idx[2]].Value(row)),
		cellValue(p.df.Series[idx[3]].Value(row)),
		cellValue(p.df.Series[idx[4]].Value(row)),
		cellValue(p.df.Series[idx[5]].Value(row)),
	)
}

// replaceSeries adds s to the frame, dropping any existing column with
// the same name first so Add* operations are repeatable.
func (p *Panel) replaceSeries(s dataframe.Series, at *int) error {
	name := s.Name()
	if _, err := p.df.NameToColumn(name); err == nil {
		if err := p.df.RemoveSeries(name); err != nil {
			return err
		}
		if at != nil {
			// Recompute the insertion point: the removal may have
			// shifted the date column.
			dateIdx, err := p.df.NameToColumn(p.cols.Date)
			if err != nil {
				return &nss.ValidationError{Op: "panel", Msg: fmt.Sprintf("date column %q not found", p.cols.Date)}
			}
			pos := dateIdx + 1
			at = &pos
		}
	}
	return p.df.AddSeries(s, at)
}

// cellValue converts a dataframe cell into a nullable value. Nil and NaN
// cells are absent; non-numeric cells are treated as absent as well,
// since upstream loaders deliver parameter columns as nullable floats.
func cellValue(v interface{}) nss.Value {
	switch x := v.(type) {
	case nil:
		return nss.NA()
	case float64:
		if math.IsNaN(x) {
			return nss.NA()
		}
		return nss.Num(x)
	case int64:
		return nss.Num(float64(x))
	case int:
		return nss.Num(float64(x))
	default:
		return nss.NA()
	}
}

// maturityLabel renders a maturity for a column name: integers bare,
// fractions as minimal decimals ("5", "0.5", "2.75").
func maturityLabel(t float64) string {
	if t == math.Trunc(t) {
		return strconv.FormatInt(int64(t), 10)
	}
	return strconv.FormatFloat(t, 'f', -1, 64)
}
