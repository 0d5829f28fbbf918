// Package geojson converts map layers into GeoJSON feature collections.
package geojson

import (
	"fmt"

	geo "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/oil-spill-dashboard/internal/view"
)

// FromMap builds a FeatureCollection with one Point feature per layer point.
// Style fields are carried as properties so a client can redraw the layer.
func FromMap(m view.MapView) *geo.FeatureCollection {
	fc := geo.NewFeatureCollection()
	for _, p := range m.Layer.Points {
		f := geo.NewPointFeature([]float64{p.Position[0], p.Position[1]})
		f.SetProperty("name", p.Name)
		f.SetProperty("location", p.Location)
		f.SetProperty("threat", p.Threat)
		f.SetProperty("year", p.Year)
		f.SetProperty("max_ptl_release_gallons", p.Gallons)
		f.SetProperty("layer", m.Layer.Kind)
		if p.Radius != 0 {
			f.SetProperty("radius", p.Radius)
		}
		if m.Layer.Kind == view.LayerHeatmap {
			f.SetProperty("weight", p.Weight)
		}
		if p.Color != nil {
			f.SetProperty("color", []int{int(p.Color[0]), int(p.Color[1]), int(p.Color[2]), int(p.Color[3])})
		}
		if p.ScaledReleaseGallons != nil {
			f.SetProperty("scaled_release_gallons", *p.ScaledReleaseGallons)
		}
		fc.AddFeature(f)
	}
	return fc
}

// Marshal encodes the layer of m as GeoJSON.
func Marshal(m view.MapView) ([]byte, error) {
	b, err := FromMap(m).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal geojson: %w", err)
	}
	return b, nil
}
