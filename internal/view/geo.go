package view

import (
	"math"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
)

const threatTooltip = "{name}\nLocation: {location}\nThreat: {threat}"

func buildMap(t domain.Table, state State, cfg Config) *MapView {
	bounds, _ := t.YearBounds()
	selected := bounds
	if state.YearRange != nil {
		selected = state.YearRange.Clamp(bounds)
	}
	rows := domain.FilterYears(t.Rows, selected)

	m := &MapView{
		MapType:   state.MapType,
		Bounds:    bounds,
		YearRange: selected,
		Camera:    cfg.Camera,
		Width:     cfg.DeckWidth,
		Height:    cfg.DeckHeight,
		Rows:      len(rows),
	}

	switch state.MapType {
	case MapScatter:
		m.Layer = MapLayer{Kind: LayerScatterplot, Pickable: true}
		m.Layer.Points, m.Skipped = points(rows, func(_ int, _ domain.Incident, p *MapPoint) {
			p.Radius = cfg.ScatterRadius
			c := cfg.ScatterColor
			p.Color = &c
		})
	case MapHeatmap:
		m.Layer = MapLayer{Kind: LayerHeatmap, RadiusPixels: cfg.HeatmapRadius}
		m.Layer.Points, m.Skipped = points(rows, func(_ int, r domain.Incident, p *MapPoint) {
			p.Weight = r.MaxPtlReleaseGallons
		})
	case MapImpact:
		m.Layer = MapLayer{Kind: LayerScatterplot, Pickable: true, AutoHighlight: true}
		m.Layer.Points, m.Skipped = impactPoints(rows, cfg)
	case MapThreat:
		m.ThreatOptions = domain.UniqueThreats(rows)
		m.SelectedThreats = state.Threats
		if m.SelectedThreats == nil {
			m.SelectedThreats = m.ThreatOptions
		}
		// The threat deck is drawn at the host's default size.
		m.Width, m.Height = 0, 0
		m.Tooltip = threatTooltip
		m.Layer = MapLayer{Kind: LayerScatterplot, Pickable: true, AutoHighlight: true}
		m.Layer.Points, m.Skipped = points(domain.FilterThreats(rows, m.SelectedThreats), func(_ int, r domain.Incident, p *MapPoint) {
			p.Radius = cfg.ScatterRadius
			c := cfg.Palette.Color(r.Threat).WithAlpha(cfg.ThreatAlpha)
			p.Color = &c
		})
		if m.ThreatOptions == nil {
			m.ThreatOptions = []string{}
		}
		if m.SelectedThreats == nil {
			m.SelectedThreats = []string{}
		}
	}
	return m
}

// impactPoints sizes each point by its standardized release volume. The
// standardization spans every row in range, located or not. Negative and
// small radii are raised to the configured minimum.
func impactPoints(rows []domain.Incident, cfg Config) ([]MapPoint, int) {
	gallons := make([]float64, len(rows))
	for i, r := range rows {
		gallons[i] = r.MaxPtlReleaseGallons
	}
	z := domain.Standardize(gallons)

	return points(rows, func(i int, _ domain.Incident, p *MapPoint) {
		scaled := z[i] * cfg.ImpactMultiplier
		p.ScaledReleaseGallons = &scaled
		p.Radius = math.Max(scaled, cfg.ImpactMinRadius)
		c := cfg.ScatterColor
		p.Color = &c
	})
}

// points builds one MapPoint per located row, letting style set the
// sub-mode specific fields. It also returns the number of unlocated rows.
func points(rows []domain.Incident, style func(int, domain.Incident, *MapPoint)) ([]MapPoint, int) {
	out := make([]MapPoint, 0, len(rows))
	skipped := 0
	for i, r := range rows {
		if !r.Located {
			skipped++
			continue
		}
		p := MapPoint{
			Position: [2]float64{r.Geo.Lon, r.Geo.Lat},
			Name:     r.Name,
			Location: r.Location,
			Threat:   r.Threat,
			Year:     r.Year,
			Gallons:  r.MaxPtlReleaseGallons,
		}
		style(i, r, &p)
		out = append(out, p)
	}
	return out, skipped
}
