package domain

import (
	"context"
	"log/slog"
)

// Geo sources recorded on enriched incidents.
const (
	GeoSourceForward = "forward"
	GeoSourceReverse = "reverse"
	GeoSourceFailed  = "failed"
)

// EnrichWithGeocoding fills in what the source left out: rows with a location
// but no coordinates are forward geocoded, and rows with coordinates but no
// location are reverse geocoded. It must run before FillDefaults, which would
// otherwise mask missing locations. Failures leave the row as it was and set
// GeoSource to "failed" (graceful degradation). A nil geocoder returns t unchanged.
func EnrichWithGeocoding(ctx context.Context, t Table, geocoder Geocoder, logger *slog.Logger) Table {
	if geocoder == nil {
		return t
	}

	out := t.withRows()
	if out.Report.Geocoded == nil {
		out.Report.Geocoded = make(map[string]int)
	}
	for i := range out.Rows {
		if ctx.Err() != nil {
			break
		}
		row := &out.Rows[i]
		source := enrichIncident(ctx, row, geocoder, logger)
		if source != "" {
			row.GeoSource = source
			out.Report.Geocoded[source]++
		}
	}
	return out
}

func enrichIncident(ctx context.Context, row *Incident, geocoder Geocoder, logger *slog.Logger) string {
	switch {
	case !row.Located && row.Location != "":
		result, err := geocoder.ForwardGeocode(ctx, row.Location)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"line", row.Line,
				"location", row.Location,
				"error", err,
			)
			return GeoSourceFailed
		}
		if result.Lat == 0 && result.Lon == 0 {
			return ""
		}
		row.Geo = Geo{Lat: result.Lat, Lon: result.Lon}
		row.Located = true
		return GeoSourceForward

	case row.Located && row.Location == "":
		result, err := geocoder.ReverseGeocode(ctx, row.Geo.Lat, row.Geo.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"line", row.Line,
				"lat", row.Geo.Lat,
				"lon", row.Geo.Lon,
				"error", err,
			)
			return GeoSourceFailed
		}
		if result.FormattedAddress == "" {
			return ""
		}
		row.Location = result.FormattedAddress
		return GeoSourceReverse
	}
	return ""
}
