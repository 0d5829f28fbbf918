package domain

import (
	"time"
)

// Column names recognized in the source CSV header.
const (
	ColID                   = "id"
	ColName                 = "name"
	ColOpenDate             = "open_date"
	ColLocation             = "location"
	ColLat                  = "lat"
	ColLon                  = "lon"
	ColThreat               = "threat"
	ColTags                 = "tags"
	ColCommodity            = "commodity"
	ColDescription          = "description"
	ColMeasureSkim          = "measure_skim"
	ColMeasureShore         = "measure_shore"
	ColMeasureBio           = "measure_bio"
	ColMeasureDisperse      = "measure_disperse"
	ColMeasureBurn          = "measure_burn"
	ColMaxPtlReleaseGallons = "max_ptl_release_gallons"

	// ColYear is derived from open_date and appended after the source columns.
	ColYear = "year"
)

// Default values substituted for missing cells.
const (
	DefaultThreat      = "Unknown"
	DefaultLocation    = "Unknown Location"
	DefaultDescription = "No description available"
	DefaultCommodity   = "Unknown"
	DefaultTags        = "No tags"
)

// RequiredColumns must all be present in the header; a missing one aborts the load.
var RequiredColumns = []string{
	ColOpenDate, ColLocation, ColLat, ColLon, ColThreat, ColTags, ColCommodity,
	ColDescription, ColMeasureSkim, ColMeasureShore, ColMeasureBio,
	ColMeasureDisperse, ColMeasureBurn, ColMaxPtlReleaseGallons,
}

// MeasureColumns are the 0/1 response measure flags.
var MeasureColumns = []string{
	ColMeasureSkim, ColMeasureShore, ColMeasureBio, ColMeasureDisperse, ColMeasureBurn,
}

// RawRecord holds the string cells of one CSV data row keyed by header name.
type RawRecord struct {
	Line  int
	Cells map[string]string
}

// RawTable is the unparsed content of a source file.
type RawTable struct {
	Source  string
	Header  []string
	Records []RawRecord
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Incident is one spill event after parsing. Before cleaning, missing text
// cells are empty strings and missing numeric cells are NaN.
type Incident struct {
	Line        int       `json:"-"`
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name,omitempty"`
	OpenDate    time.Time `json:"open_date"`
	Year        int       `json:"year"`
	Location    string    `json:"location"`
	Geo         Geo       `json:"geo"`
	Located     bool      `json:"located"`
	GeoSource   string    `json:"geo_source,omitempty"` // "forward", "reverse", "failed"
	Threat      string    `json:"threat"`
	Tags        string    `json:"tags"`
	Commodity   string    `json:"commodity"`
	Description string    `json:"description"`

	MeasureSkim     float64 `json:"measure_skim"`
	MeasureShore    float64 `json:"measure_shore"`
	MeasureBio      float64 `json:"measure_bio"`
	MeasureDisperse float64 `json:"measure_disperse"`
	MeasureBurn     float64 `json:"measure_burn"`

	MaxPtlReleaseGallons float64 `json:"max_ptl_release_gallons"`

	Extra map[string]string `json:"extra,omitempty"`
}

// measure returns a pointer to the named measure field.
func (i *Incident) measure(col string) *float64 {
	switch col {
	case ColMeasureSkim:
		return &i.MeasureSkim
	case ColMeasureShore:
		return &i.MeasureShore
	case ColMeasureBio:
		return &i.MeasureBio
	case ColMeasureDisperse:
		return &i.MeasureDisperse
	case ColMeasureBurn:
		return &i.MeasureBurn
	default:
		return nil
	}
}

// text returns a pointer to the named text field.
func (i *Incident) text(col string) *string {
	switch col {
	case ColThreat:
		return &i.Threat
	case ColLocation:
		return &i.Location
	case ColDescription:
		return &i.Description
	case ColCommodity:
		return &i.Commodity
	case ColTags:
		return &i.Tags
	default:
		return nil
	}
}

// CleaningReport records how many cells each cleaning stage filled, per column.
type CleaningReport struct {
	Filled        map[string]int `json:"filled"`
	GallonsMedian float64        `json:"gallons_median"`
	Geocoded      map[string]int `json:"geocoded,omitempty"` // keyed by geo source
}

func (r CleaningReport) clone() CleaningReport {
	out := CleaningReport{
		Filled:        make(map[string]int, len(r.Filled)),
		GallonsMedian: r.GallonsMedian,
	}
	for k, v := range r.Filled {
		out.Filled[k] = v
	}
	if r.Geocoded != nil {
		out.Geocoded = make(map[string]int, len(r.Geocoded))
		for k, v := range r.Geocoded {
			out.Geocoded[k] = v
		}
	}
	return out
}

// Table is an ordered set of incidents plus the source column order.
// Tables are treated as values: stages return a new Table.
type Table struct {
	Source   string         `json:"source"`
	Columns  []string       `json:"columns"`
	Rows     []Incident     `json:"rows"`
	Report   CleaningReport `json:"report"`
	LoadedAt time.Time      `json:"loaded_at"`
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// withRows returns a shallow copy of t carrying a private copy of its rows and report.
func (t Table) withRows() Table {
	rows := make([]Incident, len(t.Rows))
	copy(rows, t.Rows)
	t.Rows = rows
	t.Columns = append([]string(nil), t.Columns...)
	t.Report = t.Report.clone()
	return t
}
