package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
)

// Stage is one pure cleaning step: it takes a table and returns a new one.
type Stage struct {
	Name string
	Run  func(ctx context.Context, t domain.Table) domain.Table
}

// Preparer parses a raw table and runs the cleaning stages in order.
type Preparer struct {
	stages []Stage
	logger *slog.Logger
}

// NewPreparer creates a Preparer. Pass a nil geocoder to disable coordinate
// and location enrichment.
func NewPreparer(geocoder domain.Geocoder, logger *slog.Logger) *Preparer {
	stages := make([]Stage, 0, 4)
	if geocoder != nil {
		// Runs first so that missing locations are still visible.
		stages = append(stages, Stage{Name: "geocode", Run: func(ctx context.Context, t domain.Table) domain.Table {
			return domain.EnrichWithGeocoding(ctx, t, geocoder, logger)
		}})
	}
	stages = append(stages,
		pure("fill_defaults", domain.FillDefaults),
		pure("impute_release_gallons", domain.ImputeReleaseGallons),
		pure("derive_year", domain.DeriveYear),
	)
	return &Preparer{stages: stages, logger: logger}
}

// Stages returns the stage names in execution order.
func (p *Preparer) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Prepare parses raw and applies every stage.
func (p *Preparer) Prepare(ctx context.Context, raw domain.RawTable) (domain.Table, error) {
	t, err := domain.ParseRecords(raw)
	if err != nil {
		return domain.Table{}, err
	}
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return domain.Table{}, err
		}
		t = s.Run(ctx, t)
		p.logger.Debug("stage complete", "stage", s.Name, "rows", t.Len())
	}
	return t, nil
}

func pure(name string, fn func(domain.Table) domain.Table) Stage {
	return Stage{Name: name, Run: func(_ context.Context, t domain.Table) domain.Table { return fn(t) }}
}
