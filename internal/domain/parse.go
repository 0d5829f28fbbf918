package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMissingColumn is returned when the source header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// openDateLayouts are tried in order when parsing open_date.
var openDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"01/02/2006",
}

// recognized lists the columns lifted into Incident fields; all others go to Extra.
var recognized = func() map[string]bool {
	m := map[string]bool{ColID: true, ColName: true}
	for _, c := range RequiredColumns {
		m[c] = true
	}
	return m
}()

// ParseRecords converts raw CSV rows into a Table. Missing text cells stay
// empty and missing numeric cells become NaN so later stages can fill them.
// An unparsable open_date or a malformed number aborts the whole parse.
func ParseRecords(raw RawTable) (Table, error) {
	present := make(map[string]bool, len(raw.Header))
	for _, h := range raw.Header {
		present[h] = true
	}
	for _, c := range RequiredColumns {
		if !present[c] {
			return Table{}, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	rows := make([]Incident, 0, len(raw.Records))
	for _, rec := range raw.Records {
		inc, err := parseIncident(raw.Header, rec)
		if err != nil {
			return Table{}, err
		}
		rows = append(rows, inc)
	}

	columns := make([]string, 0, len(raw.Header)+1)
	columns = append(columns, raw.Header...)
	columns = append(columns, ColYear)

	return Table{
		Source:   raw.Source,
		Columns:  columns,
		Rows:     rows,
		Report:   CleaningReport{Filled: map[string]int{}},
		LoadedAt: clock.Now(),
	}, nil
}

func parseIncident(header []string, rec RawRecord) (Incident, error) {
	cell := func(col string) string { return strings.TrimSpace(rec.Cells[col]) }

	openDate, err := parseOpenDate(cell(ColOpenDate))
	if err != nil {
		return Incident{}, fmt.Errorf("line %d: %w", rec.Line, err)
	}

	inc := Incident{
		Line:        rec.Line,
		ID:          cell(ColID),
		Name:        cell(ColName),
		OpenDate:    openDate,
		Location:    cell(ColLocation),
		Threat:      cell(ColThreat),
		Tags:        cell(ColTags),
		Commodity:   cell(ColCommodity),
		Description: cell(ColDescription),
	}

	for _, col := range MeasureColumns {
		v, err := parseOptionalFloat(cell(col))
		if err != nil {
			return Incident{}, fmt.Errorf("line %d: column %s: %w", rec.Line, col, err)
		}
		*inc.measure(col) = v
	}

	inc.MaxPtlReleaseGallons, err = parseOptionalFloat(cell(ColMaxPtlReleaseGallons))
	if err != nil {
		return Incident{}, fmt.Errorf("line %d: column %s: %w", rec.Line, ColMaxPtlReleaseGallons, err)
	}

	lat, err := parseOptionalFloat(cell(ColLat))
	if err != nil {
		return Incident{}, fmt.Errorf("line %d: column %s: %w", rec.Line, ColLat, err)
	}
	lon, err := parseOptionalFloat(cell(ColLon))
	if err != nil {
		return Incident{}, fmt.Errorf("line %d: column %s: %w", rec.Line, ColLon, err)
	}
	if !math.IsNaN(lat) && !math.IsNaN(lon) {
		inc.Geo = Geo{Lat: lat, Lon: lon}
		inc.Located = true
	}

	for _, h := range header {
		if recognized[h] {
			continue
		}
		if inc.Extra == nil {
			inc.Extra = make(map[string]string)
		}
		inc.Extra[h] = rec.Cells[h]
	}

	return inc, nil
}

// parseOpenDate tries each supported layout in turn.
func parseOpenDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("open_date is empty")
	}
	for _, layout := range openDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable open_date %q", s)
}

// parseOptionalFloat returns NaN for an empty cell and an error for a malformed one.
func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
