package view

import (
	"encoding/json"
	"image/color"

	"github.com/couchcryptid/oil-spill-dashboard/internal/config"
)

// RGB is an opaque color as used by deck.gl color accessors.
type RGB [3]uint8

// WithAlpha returns c with the given alpha channel.
func (c RGB) WithAlpha(a uint8) RGBA {
	return RGBA{c[0], c[1], c[2], a}
}

// MarshalJSON encodes c as a numeric array rather than base64.
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int{int(c[0]), int(c[1]), int(c[2])})
}

// RGBA is a color with alpha as used by deck.gl color accessors.
type RGBA [4]uint8

// MarshalJSON encodes c as a numeric array rather than base64.
func (c RGBA) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int{int(c[0]), int(c[1]), int(c[2]), int(c[3])})
}

// NRGBA converts c for use with image/color consumers.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// Palette maps threat categories to colors. Unknown categories get Fallback.
type Palette struct {
	Colors   map[string]RGB
	Fallback RGB
}

// DefaultPalette is the fixed threat color lookup.
func DefaultPalette() Palette {
	return Palette{
		Colors: map[string]RGB{
			"Oil":      {255, 0, 0},
			"Chemical": {0, 255, 0},
			"Other":    {0, 0, 255},
			"Unknown":  {128, 128, 128},
		},
		Fallback: RGB{128, 128, 128},
	}
}

// Color returns the color for threat, falling back to gray for unrecognized values.
func (p Palette) Color(threat string) RGB {
	if c, ok := p.Colors[threat]; ok {
		return c
	}
	return p.Fallback
}

// Camera is the initial map view state shared by every map sub-mode.
type Camera struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
}

// DefaultCamera centers on the US west coast at continental zoom with a tilt.
func DefaultCamera() Camera {
	return Camera{Latitude: 37.7749, Longitude: -122.4194, Zoom: 4, Pitch: 50}
}

// Config collects the fixed rendering parameters.
type Config struct {
	Palette Palette
	Camera  Camera

	DeckWidth  int
	DeckHeight int

	ScatterRadius float64 // meters
	ScatterColor  RGBA
	ThreatAlpha   uint8
	HeatmapRadius int // pixels

	ImpactMultiplier float64
	ImpactMinRadius  float64 // meters; standardized radii below this are raised to it

	YearOrder string // config.YearOrderFrequency or config.YearOrderChronological
}

// DefaultConfig returns the stock dashboard parameters.
func DefaultConfig() Config {
	return Config{
		Palette:          DefaultPalette(),
		Camera:           DefaultCamera(),
		DeckWidth:        800,
		DeckHeight:       600,
		ScatterRadius:    50000,
		ScatterColor:     RGBA{200, 30, 0, 160},
		ThreatAlpha:      150,
		HeatmapRadius:    60,
		ImpactMultiplier: 10000,
		ImpactMinRadius:  1000,
		YearOrder:        config.YearOrderFrequency,
	}
}

// ConfigFrom applies service settings on top of DefaultConfig.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	c.ImpactMinRadius = cfg.ImpactMinRadius
	c.YearOrder = cfg.YearOrder
	return c
}
