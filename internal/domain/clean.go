package domain

import (
	"math"
	"sort"
)

// textDefaults maps each text column to the literal substituted for missing cells.
var textDefaults = []struct {
	column string
	value  string
}{
	{ColThreat, DefaultThreat},
	{ColLocation, DefaultLocation},
	{ColDescription, DefaultDescription},
	{ColCommodity, DefaultCommodity},
	{ColTags, DefaultTags},
}

// FillDefaults replaces missing text cells with their documented defaults and
// missing measure flags with 0.
func FillDefaults(t Table) Table {
	out := t.withRows()
	for i := range out.Rows {
		row := &out.Rows[i]
		for _, d := range textDefaults {
			if f := row.text(d.column); *f == "" {
				*f = d.value
				out.Report.Filled[d.column]++
			}
		}
		for _, col := range MeasureColumns {
			if f := row.measure(col); math.IsNaN(*f) {
				*f = 0
				out.Report.Filled[col]++
			}
		}
	}
	return out
}

// ImputeReleaseGallons fills missing max_ptl_release_gallons with the median of
// the observed values. The median is computed before any filling, so every
// imputed row receives the same value. With no observed values the median is 0.
func ImputeReleaseGallons(t Table) Table {
	observed := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if !math.IsNaN(row.MaxPtlReleaseGallons) {
			observed = append(observed, row.MaxPtlReleaseGallons)
		}
	}
	median := Median(observed)

	out := t.withRows()
	out.Report.GallonsMedian = median
	for i := range out.Rows {
		if math.IsNaN(out.Rows[i].MaxPtlReleaseGallons) {
			out.Rows[i].MaxPtlReleaseGallons = median
			out.Report.Filled[ColMaxPtlReleaseGallons]++
		}
	}
	return out
}

// DeriveYear sets Year to the calendar year of OpenDate.
func DeriveYear(t Table) Table {
	out := t.withRows()
	for i := range out.Rows {
		out.Rows[i].Year = out.Rows[i].OpenDate.Year()
	}
	return out
}

// Median returns the median of values, averaging the two middle elements for
// even lengths. It returns 0 for an empty slice. values is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, 0.5)
}
