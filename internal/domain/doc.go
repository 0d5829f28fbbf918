// Package domain models oil and chemical spill incident records and the pure
// transformations that turn a raw CSV export into a cleaned, analysable table.
//
// # Data Source
//
// Incidents come from a NOAA Office of Response and Restoration style export:
// one CSV row per spill event, with a header row naming the columns. Columns
// the package does not recognize are carried through untouched in
// [Incident.Extra] so the overview can still show them.
//
// # Recognized Columns
//
//	open_date                 date the incident was opened (required, parsed)
//	location                  free-form place name, e.g. "Port Arthur, TX"
//	lat, lon                  WGS-84 coordinates in decimal degrees
//	threat                    hazard category: "Oil", "Chemical", "Other", ...
//	commodity                 spilled product, e.g. "Crude oil"
//	tags                      comma separated keywords
//	description               narrative text
//	measure_skim              response measures, 0 or 1
//	measure_shore
//	measure_bio
//	measure_disperse
//	measure_burn
//	max_ptl_release_gallons   maximum potential release volume
//
// The optional "id" and "name" columns are lifted into [Incident.ID] and
// [Incident.Name] because map tooltips reference them.
//
// # Missing Values
//
// An empty cell is a missing value. Cleaning replaces missing values with fixed
// defaults:
//
//	threat       "Unknown"
//	location     "Unknown Location"
//	description  "No description available"
//	commodity    "Unknown"
//	tags         "No tags"
//	measure_*    0
//	max_ptl_release_gallons  median of the observed values (0 if none observed)
//
// Missing coordinates are not imputed. Rows without both lat and lon are kept
// but marked unlocated and left out of map layers, unless geocoding enrichment
// resolves them from the location text.
//
// # Dates
//
// open_date accepts ISO dates ("2010-04-22"), ISO timestamps, RFC 3339, and US
// style "4/22/2010" with an optional "15:04" time. An empty or unparsable date
// fails the whole load; there is no partial table.
//
// # Pipeline
//
// Each stage takes a [Table] and returns a new one; the input is never
// modified. The stages, in order, are [ParseRecords], [EnrichWithGeocoding]
// (optional), [FillDefaults], [ImputeReleaseGallons], and [DeriveYear].
package domain
