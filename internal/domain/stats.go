package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds descriptive statistics for one numeric column. Fields
// are nil when undefined (empty column, or std of a single value).
type ColumnSummary struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"25%"`
	Q50    *float64 `json:"50%"`
	Q75    *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

// NullCount is the number of missing cells in one column.
type NullCount struct {
	Column string `json:"column"`
	Nulls  int    `json:"nulls"`
}

// ColumnInfo is one line of the schema summary.
type ColumnInfo struct {
	Column  string `json:"column"`
	NonNull int    `json:"non_null"`
	Dtype   string `json:"dtype"`
}

// Describe summarizes every numeric column of t in column order.
func Describe(t Table) []ColumnSummary {
	var out []ColumnSummary
	for _, col := range t.Columns {
		values, ok := t.NumericColumn(col)
		if !ok {
			continue
		}
		out = append(out, summarize(col, values))
	}
	return out
}

func summarize(col string, values []float64) ColumnSummary {
	s := ColumnSummary{Column: col, Count: len(values)}
	if len(values) == 0 {
		return s
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean = ptr(stat.Mean(sorted, nil))
	if len(sorted) > 1 {
		s.Std = ptr(stat.StdDev(sorted, nil))
	}
	s.Min = ptr(sorted[0])
	s.Q25 = ptr(quantileSorted(sorted, 0.25))
	s.Q50 = ptr(quantileSorted(sorted, 0.5))
	s.Q75 = ptr(quantileSorted(sorted, 0.75))
	s.Max = ptr(sorted[len(sorted)-1])
	return s
}

// NullCounts returns the number of missing cells per column, in column order.
func NullCounts(t Table) []NullCount {
	out := make([]NullCount, 0, len(t.Columns))
	for _, col := range t.Columns {
		out = append(out, NullCount{Column: col, Nulls: nulls(t, col)})
	}
	return out
}

// Schema returns the column name, non-null count and dtype of every column.
func Schema(t Table) []ColumnInfo {
	out := make([]ColumnInfo, 0, len(t.Columns))
	for _, col := range t.Columns {
		out = append(out, ColumnInfo{
			Column:  col,
			NonNull: len(t.Rows) - nulls(t, col),
			Dtype:   dtype(t, col),
		})
	}
	return out
}

// NumericColumn returns the non-missing values of a numeric column. ok is false
// for text columns and for extra columns holding any non-numeric cell.
func (t Table) NumericColumn(col string) (values []float64, ok bool) {
	values = make([]float64, 0, len(t.Rows))
	switch col {
	case ColLat, ColLon:
		for _, r := range t.Rows {
			if !r.Located {
				continue
			}
			if col == ColLat {
				values = append(values, r.Geo.Lat)
			} else {
				values = append(values, r.Geo.Lon)
			}
		}
		return values, true
	case ColYear:
		for _, r := range t.Rows {
			values = append(values, float64(r.Year))
		}
		return values, true
	case ColMaxPtlReleaseGallons:
		for _, r := range t.Rows {
			if !math.IsNaN(r.MaxPtlReleaseGallons) {
				values = append(values, r.MaxPtlReleaseGallons)
			}
		}
		return values, true
	case ColMeasureSkim, ColMeasureShore, ColMeasureBio, ColMeasureDisperse, ColMeasureBurn:
		for i := range t.Rows {
			if v := *t.Rows[i].measure(col); !math.IsNaN(v) {
				values = append(values, v)
			}
		}
		return values, true
	}
	cellOf := func(r Incident) string { return r.Extra[col] }
	if col == ColID {
		cellOf = func(r Incident) string { return r.ID }
	} else if recognized[col] {
		return nil, false
	}
	for _, r := range t.Rows {
		cell := strings.TrimSpace(cellOf(r))
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

func nulls(t Table, col string) int {
	n := 0
	for i := range t.Rows {
		r := &t.Rows[i]
		switch col {
		case ColLat, ColLon:
			if !r.Located {
				n++
			}
		case ColYear, ColOpenDate:
		case ColMaxPtlReleaseGallons:
			if math.IsNaN(r.MaxPtlReleaseGallons) {
				n++
			}
		case ColID:
			if r.ID == "" {
				n++
			}
		case ColName:
			if r.Name == "" {
				n++
			}
		default:
			if f := r.text(col); f != nil {
				if *f == "" {
					n++
				}
			} else if f := r.measure(col); f != nil {
				if math.IsNaN(*f) {
					n++
				}
			} else if strings.TrimSpace(r.Extra[col]) == "" {
				n++
			}
		}
	}
	return n
}

func dtype(t Table, col string) string {
	switch col {
	case ColOpenDate:
		return "datetime64[ns]"
	case ColYear:
		return "int32"
	case ColLat, ColLon, ColMaxPtlReleaseGallons,
		ColMeasureSkim, ColMeasureShore, ColMeasureBio, ColMeasureDisperse, ColMeasureBurn:
		return "float64"
	}
	if recognized[col] {
		if col == ColID && allIntegers(t, func(r Incident) string { return r.ID }) {
			return "int64"
		}
		return "object"
	}
	if _, ok := t.NumericColumn(col); !ok {
		return "object"
	}
	if allIntegers(t, func(r Incident) string { return r.Extra[col] }) {
		return "int64"
	}
	return "float64"
}

// allIntegers reports whether every cell is present and parses as an integer.
func allIntegers(t Table, cell func(Incident) string) bool {
	if len(t.Rows) == 0 {
		return false
	}
	for _, r := range t.Rows {
		if _, err := strconv.ParseInt(strings.TrimSpace(cell(r)), 10, 64); err != nil {
			return false
		}
	}
	return true
}

// Standardize rescales values to zero mean and unit population variance.
// When the variance is zero every result is 0.
func Standardize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// quantileSorted computes the p-quantile of sorted data using linear
// interpolation between closest ranks.
func quantileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func ptr(v float64) *float64 { return &v }
