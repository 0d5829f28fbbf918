package view

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
	"github.com/couchcryptid/oil-spill-dashboard/internal/observability"
)

// Section texts shown above each view.
const (
	introOverview = "This section provides a comprehensive overview of the dataset, including a preview of the entire dataset, summary statistics, and null values in the dataset."
	introThreat   = "This section shows the distribution of incidents by threat type."
	introYearly   = "This section shows the number of incidents recorded each year, allowing us to observe trends over time."
	introGeo      = "This section provides geospatial visualizations of the incidents, including scatter plots and heatmaps, to show the geographical distribution of incidents."

	yearlyNarrative = `From this chart, we can observe trends over time.

Here are some key points:

- **Peak Years**: There is a noticeable peak in incidents during the years 2017, 2008, and 2016.
- **Recent Decline**: The number of incidents appears to decline in recent years, particularly after 2017.
- **Historical Data**: There are fewer recorded incidents before the 1980s, which could be due to less comprehensive reporting during those times.`
)

// Renderer turns a State into a View over a fixed, already prepared table.
// It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	table   domain.Table
	cfg     Config
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewRenderer creates a Renderer. A nil clock uses the real clock.
func NewRenderer(table domain.Table, cfg Config, clock clockwork.Clock, metrics *observability.Metrics) *Renderer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Renderer{table: table, cfg: cfg, clock: clock, metrics: metrics}
}

// Table returns the table the renderer draws from.
func (r *Renderer) Table() domain.Table { return r.table }

// Config returns the rendering parameters.
func (r *Renderer) Config() Config { return r.cfg }

// Render produces the view for state.
func (r *Renderer) Render(ctx context.Context, state State) (View, error) {
	start := r.clock.Now()
	state, err := state.Normalize()
	if err != nil {
		r.observe("invalid", "error", start)
		return View{}, err
	}
	if err := ctx.Err(); err != nil {
		r.observe(string(state.Mode), "error", start)
		return View{}, fmt.Errorf("render %s: %w", state.Mode, err)
	}

	v := View{Mode: state.Mode, Header: state.Mode.Label(), State: state}
	switch state.Mode {
	case ModeOverview:
		v.Intro = introOverview
		v.Overview = buildOverview(r.table)
	case ModeThreat:
		v.Intro = introThreat
		v.Chart = threatChart(r.table.Rows)
	case ModeYearly:
		v.Intro = introYearly
		v.Narrative = yearlyNarrative
		v.Chart = yearlyChart(r.table.Rows, r.cfg.YearOrder)
	case ModeGeo:
		v.Intro = introGeo
		v.Map = buildMap(r.table, state, r.cfg)
		yr := v.Map.YearRange
		v.State.YearRange = &yr
	}
	v.GeneratedAt = r.clock.Now()

	r.observe(string(state.Mode), "success", start)
	return v, nil
}

func (r *Renderer) observe(mode, outcome string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.Renders.WithLabelValues(mode, outcome).Inc()
	r.metrics.RenderDuration.WithLabelValues(mode).Observe(r.clock.Since(start).Seconds())
}
