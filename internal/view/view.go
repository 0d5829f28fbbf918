package view

import (
	"time"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
)

// View is the complete description of one rendered dashboard section. Exactly
// one of Overview, Chart and Map is set, matching Mode.
type View struct {
	Mode        Mode      `json:"mode"`
	Header      string    `json:"header"`
	Intro       string    `json:"intro"`
	State       State     `json:"state"`
	Overview    *Overview `json:"overview,omitempty"`
	Chart       *BarChart `json:"chart,omitempty"`
	Narrative   string    `json:"narrative,omitempty"`
	Map         *MapView  `json:"map,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Overview is the Data Overview section: the whole table plus its summaries.
type Overview struct {
	Rows    int                    `json:"rows"`
	Columns []string               `json:"columns"`
	Preview []domain.Incident      `json:"preview"`
	Summary []domain.ColumnSummary `json:"summary"`
	Nulls   []domain.NullCount     `json:"nulls"`
	Schema  []domain.ColumnInfo    `json:"schema"`
	Report  domain.CleaningReport  `json:"report"`
}

// Bar is one category of a count chart.
type Bar struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// BarChart is a count-per-category chart description. Width and Height are in
// inches, matching the figure sizes the charts were designed for.
type BarChart struct {
	Title         string  `json:"title"`
	XLabel        string  `json:"x_label"`
	YLabel        string  `json:"y_label"`
	LabelRotation float64 `json:"label_rotation"` // degrees
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Bars          []Bar   `json:"bars"`
}

// Counts returns the bars as a label to count map.
func (c BarChart) Counts() map[string]int {
	out := make(map[string]int, len(c.Bars))
	for _, b := range c.Bars {
		out[b.Label] = b.Count
	}
	return out
}

// Layer kinds understood by the map front end.
const (
	LayerScatterplot = "ScatterplotLayer"
	LayerHeatmap     = "HeatmapLayer"
)

// MapPoint is one incident placed on the map.
type MapPoint struct {
	Position [2]float64 `json:"position"` // lon, lat
	Name     string     `json:"name"`
	Location string     `json:"location"`
	Threat   string     `json:"threat"`
	Year     int        `json:"year"`
	Gallons  float64    `json:"max_ptl_release_gallons"`

	Radius float64 `json:"radius,omitempty"` // meters
	Weight float64 `json:"weight,omitempty"`
	Color  *RGBA   `json:"color,omitempty"`

	// ScaledReleaseGallons is the standardized gallons times the impact
	// multiplier, before clamping to the minimum radius. Impact maps only.
	ScaledReleaseGallons *float64 `json:"scaled_release_gallons,omitempty"`
}

// MapLayer is the single layer drawn for a map sub-mode.
type MapLayer struct {
	Kind          string     `json:"kind"`
	Pickable      bool       `json:"pickable"`
	AutoHighlight bool       `json:"auto_highlight"`
	RadiusPixels  int        `json:"radius_pixels,omitempty"`
	Points        []MapPoint `json:"points"`
}

// MapView is the Geospatial Visualization section.
type MapView struct {
	MapType   MapType          `json:"map_type"`
	Bounds    domain.YearRange `json:"bounds"`
	YearRange domain.YearRange `json:"year_range"`
	Camera    Camera           `json:"camera"`
	Width     int              `json:"width,omitempty"`
	Height    int              `json:"height,omitempty"`
	Layer     MapLayer         `json:"layer"`
	Tooltip   string           `json:"tooltip,omitempty"`

	ThreatOptions   []string `json:"threat_options,omitempty"`
	SelectedThreats []string `json:"selected_threats,omitempty"`

	Rows    int `json:"rows"`    // rows in the year range
	Skipped int `json:"skipped"` // rows in range without coordinates
}
