package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
)

func geoState(mapType MapType, yr *domain.YearRange) State {
	return State{Mode: ModeGeo, MapType: mapType, YearRange: yr}
}

func TestRender_ScatterMap(t *testing.T) {
	v := render(t, newTestRenderer(scenarioTable()), geoState(MapScatter, nil))

	require.NotNil(t, v.Map)
	m := v.Map
	assert.Equal(t, domain.YearRange{From: 2008, To: 2017}, m.Bounds)
	assert.Equal(t, m.Bounds, m.YearRange)
	assert.Equal(t, DefaultCamera(), m.Camera)
	assert.Equal(t, 800, m.Width)
	assert.Equal(t, 600, m.Height)
	assert.Equal(t, LayerScatterplot, m.Layer.Kind)
	assert.True(t, m.Layer.Pickable)
	require.Len(t, m.Layer.Points, 3)

	p := m.Layer.Points[0]
	assert.Equal(t, 50000.0, p.Radius)
	assert.Equal(t, &RGBA{200, 30, 0, 160}, p.Color)
	assert.InDelta(t, -90.2, p.Position[0], 1e-9)
	assert.InDelta(t, 29.2, p.Position[1], 1e-9)

	require.NotNil(t, v.State.YearRange)
	assert.Equal(t, m.YearRange, *v.State.YearRange)
}

func TestRender_FullRangeIsNoop(t *testing.T) {
	r := newTestRenderer(scenarioTable())
	all := render(t, r, geoState(MapScatter, nil))
	full := render(t, r, geoState(MapScatter, &domain.YearRange{From: 2008, To: 2017}))

	assert.Equal(t, all.Map.Layer.Points, full.Map.Layer.Points)
	assert.Equal(t, 3, full.Map.Rows)
}

func TestRender_YearRangeFilters(t *testing.T) {
	r := newTestRenderer(scenarioTable())

	v := render(t, r, geoState(MapScatter, &domain.YearRange{From: 2010, To: 2030}))
	assert.Equal(t, domain.YearRange{From: 2010, To: 2017}, v.Map.YearRange)
	require.Len(t, v.Map.Layer.Points, 1)
	assert.Equal(t, 2017, v.Map.Layer.Points[0].Year)

	v = render(t, r, geoState(MapScatter, &domain.YearRange{From: 2009, To: 2016}))
	assert.Empty(t, v.Map.Layer.Points)
	assert.Equal(t, 0, v.Map.Rows)
}

func TestRender_HeatmapWeightsByGallons(t *testing.T) {
	v := render(t, newTestRenderer(scenarioTable()), geoState(MapHeatmap, nil))

	assert.Equal(t, LayerHeatmap, v.Map.Layer.Kind)
	assert.Equal(t, 60, v.Map.Layer.RadiusPixels)
	require.Len(t, v.Map.Layer.Points, 3)
	assert.Equal(t, 100.0, v.Map.Layer.Points[0].Weight)
	assert.Equal(t, 300.0, v.Map.Layer.Points[1].Weight)
	assert.Nil(t, v.Map.Layer.Points[0].Color)
}

func TestRender_ImpactRadii(t *testing.T) {
	r := newTestRenderer(scenarioTable())
	v := render(t, r, geoState(MapImpact, &domain.YearRange{From: 2008, To: 2008}))

	assert.True(t, v.Map.Layer.AutoHighlight)
	pts := v.Map.Layer.Points
	require.Len(t, pts, 2)

	require.NotNil(t, pts[0].ScaledReleaseGallons)
	require.NotNil(t, pts[1].ScaledReleaseGallons)
	assert.InDelta(t, -10000, *pts[0].ScaledReleaseGallons, 1e-6)
	assert.InDelta(t, 10000, *pts[1].ScaledReleaseGallons, 1e-6)

	// Negative radii are raised to the minimum visible radius.
	assert.Equal(t, 1000.0, pts[0].Radius)
	assert.InDelta(t, 10000, pts[1].Radius, 1e-6)
}

func TestRender_ImpactZeroVariance(t *testing.T) {
	tbl := table(incident(2, 2000, "Oil", 50), incident(3, 2000, "Oil", 50))
	v := render(t, newTestRenderer(tbl), geoState(MapImpact, nil))

	for _, p := range v.Map.Layer.Points {
		assert.Equal(t, 0.0, *p.ScaledReleaseGallons)
		assert.Equal(t, 1000.0, p.Radius)
	}
}

func TestRender_ThreatMap(t *testing.T) {
	tbl := table(
		incident(2, 2008, "Oil", 100),
		incident(3, 2009, "Chemical", 100),
		incident(4, 2010, "Radioactive", 100),
	)
	r := newTestRenderer(tbl)

	v := render(t, r, geoState(MapThreat, nil))
	m := v.Map
	assert.Equal(t, []string{"Oil", "Chemical", "Radioactive"}, m.ThreatOptions)
	assert.Equal(t, m.ThreatOptions, m.SelectedThreats)
	assert.Equal(t, "{name}\nLocation: {location}\nThreat: {threat}", m.Tooltip)
	require.Len(t, m.Layer.Points, 3)
	assert.Equal(t, &RGBA{255, 0, 0, 150}, m.Layer.Points[0].Color)
	assert.Equal(t, &RGBA{0, 255, 0, 150}, m.Layer.Points[1].Color)
	assert.Equal(t, &RGBA{128, 128, 128, 150}, m.Layer.Points[2].Color)
	assert.Nil(t, v.State.Threats, "default selection stays implicit")

	s := geoState(MapThreat, nil)
	s.Threats = []string{"Chemical"}
	v = render(t, r, s)
	require.Len(t, v.Map.Layer.Points, 1)
	assert.Equal(t, "Chemical", v.Map.Layer.Points[0].Threat)

	s.Threats = []string{}
	v = render(t, r, s)
	assert.Empty(t, v.Map.Layer.Points)
	assert.Len(t, v.Map.ThreatOptions, 3)
}

func TestRender_ThreatOptionsFollowYearRange(t *testing.T) {
	tbl := table(incident(2, 2008, "Oil", 1), incident(3, 2017, "Chemical", 1))
	v := render(t, newTestRenderer(tbl), geoState(MapThreat, &domain.YearRange{From: 2017, To: 2017}))
	assert.Equal(t, []string{"Chemical"}, v.Map.ThreatOptions)
}

func TestRender_UnlocatedRowsSkipped(t *testing.T) {
	unlocated := incident(5, 2008, "Oil", 900)
	unlocated.Located = false
	unlocated.Geo = domain.Geo{}
	tbl := table(incident(2, 2008, "Oil", 100), unlocated)

	v := render(t, newTestRenderer(tbl), geoState(MapScatter, nil))
	assert.Equal(t, 2, v.Map.Rows)
	assert.Equal(t, 1, v.Map.Skipped)
	assert.Len(t, v.Map.Layer.Points, 1)

	// The unlocated row still takes part in standardization.
	v = render(t, newTestRenderer(tbl), geoState(MapImpact, nil))
	require.Len(t, v.Map.Layer.Points, 1)
	assert.InDelta(t, -10000, *v.Map.Layer.Points[0].ScaledReleaseGallons, 1e-6)
}

func TestRender_EmptyTable(t *testing.T) {
	v := render(t, newTestRenderer(table()), geoState(MapThreat, nil))
	assert.Empty(t, v.Map.Layer.Points)
	assert.Equal(t, []string{}, v.Map.ThreatOptions)
}
