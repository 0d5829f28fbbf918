package view

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/couchcryptid/oil-spill-dashboard/internal/config"
	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
)

func threatChart(rows []domain.Incident) *BarChart {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Threat]++
	}
	bars := make([]Bar, 0, len(counts))
	for label, n := range counts {
		bars = append(bars, Bar{Label: label, Count: n})
	}
	byFrequency(bars)
	return &BarChart{
		Title:         "Number of Incidents by Threat Type",
		XLabel:        "threat",
		YLabel:        "count",
		LabelRotation: 45,
		Width:         10,
		Height:        6,
		Bars:          bars,
	}
}

func yearlyChart(rows []domain.Incident, order string) *BarChart {
	counts := make(map[int]int)
	for _, r := range rows {
		counts[r.Year]++
	}
	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	slices.Sort(years)

	bars := make([]Bar, 0, len(years))
	for _, y := range years {
		bars = append(bars, Bar{Label: strconv.Itoa(y), Count: counts[y]})
	}
	if order != config.YearOrderChronological {
		// Stable sort keeps ascending years among equal counts.
		slices.SortStableFunc(bars, func(a, b Bar) int { return cmp.Compare(b.Count, a.Count) })
	}
	return &BarChart{
		Title:         "Number of Incidents by Year",
		XLabel:        "year",
		YLabel:        "count",
		LabelRotation: 90,
		Width:         14,
		Height:        8,
		Bars:          bars,
	}
}

// byFrequency orders bars by descending count, then label ascending.
func byFrequency(bars []Bar) {
	slices.SortFunc(bars, func(a, b Bar) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
}
