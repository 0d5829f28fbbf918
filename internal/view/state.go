package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
)

var (
	// ErrUnknownMode is returned for a view mode outside the four supported ones.
	ErrUnknownMode = errors.New("unknown view mode")
	// ErrUnknownMapType is returned for a map type outside the four supported ones.
	ErrUnknownMapType = errors.New("unknown map type")
)

// Mode selects one of the four mutually exclusive dashboard sections.
type Mode string

const (
	ModeOverview Mode = "overview"
	ModeThreat   Mode = "threat"
	ModeYearly   Mode = "yearly"
	ModeGeo      Mode = "geo"
)

// Modes lists the view modes in selector order.
var Modes = []Mode{ModeOverview, ModeThreat, ModeYearly, ModeGeo}

// Label returns the selector label for m.
func (m Mode) Label() string {
	switch m {
	case ModeOverview:
		return "Data Overview"
	case ModeThreat:
		return "Threat Analysis"
	case ModeYearly:
		return "Yearly Incidents"
	case ModeGeo:
		return "Geospatial Visualization"
	default:
		return string(m)
	}
}

// ParseMode accepts a mode identifier or its selector label, case-insensitively.
// An empty string selects the first mode.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ModeOverview, nil
	}
	for _, m := range Modes {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, m.Label()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MapType selects one of the four geospatial sub-modes.
type MapType string

const (
	MapScatter MapType = "scatter"
	MapHeatmap MapType = "heatmap"
	MapImpact  MapType = "impact"
	MapThreat  MapType = "threat"
)

// MapTypes lists the map types in selector order.
var MapTypes = []MapType{MapScatter, MapHeatmap, MapImpact, MapThreat}

// Label returns the selector label for t.
func (t MapType) Label() string {
	switch t {
	case MapScatter:
		return "Scatter Plot"
	case MapHeatmap:
		return "Heatmap"
	case MapImpact:
		return "Impact Analysis"
	case MapThreat:
		return "Threat Analysis"
	default:
		return string(t)
	}
}

// ParseMapType accepts a map type identifier or its selector label,
// case-insensitively. An empty string selects the scatter plot.
func ParseMapType(s string) (MapType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MapScatter, nil
	}
	for _, t := range MapTypes {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMapType, s)
}

// State is the complete set of user selections. It is the only input to a render.
type State struct {
	Mode      Mode              `json:"mode"`
	YearRange *domain.YearRange `json:"year_range,omitempty"` // nil: full observed range
	MapType   MapType           `json:"map_type,omitempty"`
	Threats   []string          `json:"threats"` // nil: every threat in range; empty: none
}

// Normalize fills defaults and validates the mode and map type.
func (s State) Normalize() (State, error) {
	mode, err := ParseMode(string(s.Mode))
	if err != nil {
		return State{}, err
	}
	mapType, err := ParseMapType(string(s.MapType))
	if err != nil {
		return State{}, err
	}
	s.Mode = mode
	s.MapType = mapType
	return s, nil
}

// Change is a partial update to a State. Unset fields keep their current value.
type Change struct {
	Mode       *Mode             `json:"mode,omitempty"`
	YearRange  *domain.YearRange `json:"year_range,omitempty"`
	FullRange  bool              `json:"full_range,omitempty"`
	MapType    *MapType          `json:"map_type,omitempty"`
	Threats    []string          `json:"threats,omitempty"`
	AllThreats bool              `json:"all_threats,omitempty"`
}

// Apply returns s with c merged in. A non-nil empty Threats selects no threats.
func (c Change) Apply(s State) State {
	if c.Mode != nil {
		s.Mode = *c.Mode
	}
	switch {
	case c.FullRange:
		s.YearRange = nil
	case c.YearRange != nil:
		r := *c.YearRange
		s.YearRange = &r
	}
	if c.MapType != nil {
		s.MapType = *c.MapType
	}
	switch {
	case c.AllThreats:
		s.Threats = nil
	case c.Threats != nil:
		s.Threats = append([]string{}, c.Threats...)
	}
	return s
}
