// Command export runs the dashboard's preparation over a dataset and writes
// the results as static files: the cleaned table as JSON, the threat and
// yearly charts as PNG, and every map sub-mode as GeoJSON. It also prints a
// short breakdown of the cleaned data.
//
// Usage:
//
//	go run ./cmd/export \
//	  -dataset dataset/incidents.csv \
//	  -out build/export
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/csvsource"
	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/geojson"
	"github.com/couchcryptid/oil-spill-dashboard/internal/config"
	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
	"github.com/couchcryptid/oil-spill-dashboard/internal/pipeline"
	"github.com/couchcryptid/oil-spill-dashboard/internal/view"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dataset := flag.String("dataset", "dataset/incidents.csv", "path to the incident CSV file")
	outDir := flag.String("out", "", "output directory")
	yearOrder := flag.String("year-order", config.YearOrderFrequency, "yearly chart order: frequency or chronological")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	order, err := config.ParseYearOrder(*yearOrder)
	if err != nil {
		return fmt.Errorf("-year-order: %w", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", *outDir, err)
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	raw, err := csvsource.New(*dataset).Extract(ctx)
	if err != nil {
		return err
	}
	table, err := pipeline.NewPreparer(nil, logger).Prepare(ctx, raw)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}

	if err := writeJSON(filepath.Join(*outDir, "incidents.json"), table); err != nil {
		return err
	}

	cfg := view.DefaultConfig()
	cfg.YearOrder = order
	renderer := view.NewRenderer(table, cfg, nil, nil)

	for _, mode := range []view.Mode{view.ModeThreat, view.ModeYearly} {
		v, err := renderer.Render(ctx, view.State{Mode: mode})
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := chart.WritePNG(&buf, *v.Chart); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(*outDir, string(mode)+".png"), buf.Bytes()); err != nil {
			return err
		}
	}

	for _, mt := range view.MapTypes {
		v, err := renderer.Render(ctx, view.State{Mode: view.ModeGeo, MapType: mt})
		if err != nil {
			return err
		}
		body, err := geojson.Marshal(*v.Map)
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(*outDir, "map_"+string(mt)+".geojson"), body); err != nil {
			return err
		}
	}

	printStats(table)
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func printStats(t domain.Table) {
	bounds, _ := t.YearBounds()
	located := 0
	for _, r := range t.Rows {
		if r.Located {
			located++
		}
	}

	fmt.Println()
	fmt.Println("=== Dataset Stats ===")
	fmt.Printf("Rows:     %d\n", t.Len())
	fmt.Printf("Years:    %d-%d\n", bounds.From, bounds.To)
	fmt.Printf("Located:  %d (%d without coordinates)\n", located, t.Len()-located)
	fmt.Printf("Median gallons imputed: %.2f\n", t.Report.GallonsMedian)

	fmt.Println()
	fmt.Println("By threat:")
	counts := make(map[string]int)
	for _, r := range t.Rows {
		counts[r.Threat]++
	}
	for _, th := range domain.UniqueThreats(t.Rows) {
		fmt.Printf("  %-12s %d\n", th, counts[th])
	}
}
