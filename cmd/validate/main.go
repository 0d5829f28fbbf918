// Command validate loads an incident dataset through the same preparation
// stages as the dashboard and checks the cleaning and rendering guarantees:
// no missing text or measure cells, gallons either observed or the median,
// year matching open_date, and chart and map totals matching the row count.
//
// Usage:
//
//	go run ./cmd/validate -dataset dataset/incidents.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/csvsource"
	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
	"github.com/couchcryptid/oil-spill-dashboard/internal/pipeline"
	"github.com/couchcryptid/oil-spill-dashboard/internal/view"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataset := flag.String("dataset", "dataset/incidents.csv", "path to the incident CSV file")
	flag.Parse()

	if code := run(*dataset); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	// Fixed clock so repeated runs print identical reports.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	fmt.Println("=== Incident Dataset Validation ===")
	fmt.Println()

	raw, err := csvsource.New(path).Extract(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	table, err := pipeline.NewPreparer(nil, logger).Prepare(ctx, raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: prepare: %v\n", err)
		return 1
	}
	renderer := view.NewRenderer(table, view.DefaultConfig(), nil, nil)

	phases := []*phase{
		validateCleaning(table),
		validateImputation(raw, table),
		validateYears(table),
		validateCharts(ctx, renderer, table),
		validateMaps(ctx, renderer, table),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d rows, %d columns, gallons median %.2f\n",
		table.Len(), len(table.Columns), table.Report.GallonsMedian)
	for _, col := range table.Columns {
		if n := table.Report.Filled[col]; n > 0 {
			fmt.Printf("  filled %-26s %d\n", col, n)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateCleaning(t domain.Table) *phase {
	p := &phase{name: "Text and measure columns have no gaps"}
	for _, n := range domain.NullCounts(t) {
		switch n.Column {
		case domain.ColThreat, domain.ColLocation, domain.ColDescription, domain.ColCommodity, domain.ColTags,
			domain.ColMeasureSkim, domain.ColMeasureShore, domain.ColMeasureBio, domain.ColMeasureDisperse,
			domain.ColMeasureBurn, domain.ColMaxPtlReleaseGallons:
			if n.Nulls != 0 {
				p.errorf("column %s: %d missing after cleaning", n.Column, n.Nulls)
			}
		}
	}
	return p
}

func validateImputation(raw domain.RawTable, t domain.Table) *phase {
	p := &phase{name: "Release gallons observed or median"}
	if len(raw.Records) != t.Len() {
		p.errorf("row count changed: %d raw, %d cleaned", len(raw.Records), t.Len())
		return p
	}
	for i, rec := range raw.Records {
		got := t.Rows[i].MaxPtlReleaseGallons
		cell := rec.Cells[domain.ColMaxPtlReleaseGallons]
		if cell == "" {
			if got != t.Report.GallonsMedian {
				p.errorf("line %d: imputed %v, median is %v", rec.Line, got, t.Report.GallonsMedian)
			}
			continue
		}
		want, err := strconv.ParseFloat(cell, 64)
		if err != nil || !floatEq(want, got) {
			p.errorf("line %d: source %q, cleaned %v", rec.Line, cell, got)
		}
	}
	return p
}

func validateYears(t domain.Table) *phase {
	p := &phase{name: "Year derived from open_date"}
	for _, r := range t.Rows {
		if r.Year != r.OpenDate.Year() {
			p.errorf("line %d: year %d, open_date %s", r.Line, r.Year, r.OpenDate.Format(time.DateOnly))
		}
	}
	return p
}

func validateCharts(ctx context.Context, r *view.Renderer, t domain.Table) *phase {
	p := &phase{name: "Chart counts cover every row"}
	for _, mode := range []view.Mode{view.ModeThreat, view.ModeYearly} {
		v, err := r.Render(ctx, view.State{Mode: mode})
		if err != nil {
			p.errorf("render %s: %v", mode, err)
			continue
		}
		total := 0
		for i, b := range v.Chart.Bars {
			total += b.Count
			if i > 0 && mode == view.ModeThreat && b.Count > v.Chart.Bars[i-1].Count {
				p.errorf("%s chart not in descending order at %q", mode, b.Label)
			}
		}
		if total != t.Len() {
			p.errorf("%s chart totals %d, dataset has %d rows", mode, total, t.Len())
		}
	}
	return p
}

func validateMaps(ctx context.Context, r *view.Renderer, t domain.Table) *phase {
	p := &phase{name: "Map layers account for every row in range"}
	cfg := r.Config()
	for _, mt := range view.MapTypes {
		v, err := r.Render(ctx, view.State{Mode: view.ModeGeo, MapType: mt})
		if err != nil {
			p.errorf("render %s map: %v", mt, err)
			continue
		}
		m := v.Map
		if m.Rows != t.Len() {
			p.errorf("%s map: full range has %d rows, dataset has %d", mt, m.Rows, t.Len())
		}
		if len(m.Layer.Points)+m.Skipped != m.Rows {
			p.errorf("%s map: %d points + %d skipped != %d rows", mt, len(m.Layer.Points), m.Skipped, m.Rows)
		}
		if mt != view.MapImpact {
			continue
		}
		for _, pt := range m.Layer.Points {
			if pt.Radius < cfg.ImpactMinRadius {
				p.errorf("impact map: %s radius %v below minimum %v", pt.Name, pt.Radius, cfg.ImpactMinRadius)
			}
		}
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
