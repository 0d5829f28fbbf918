package view

import (
	"time"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
)

var testColumns = []string{
	domain.ColOpenDate, domain.ColLocation, domain.ColLat, domain.ColLon, domain.ColThreat,
	domain.ColTags, domain.ColCommodity, domain.ColDescription, domain.ColMaxPtlReleaseGallons,
	domain.ColYear,
}

// incident returns a cleaned, located incident.
func incident(line, year int, threat string, gallons float64) domain.Incident {
	return domain.Incident{
		Line:                 line,
		Name:                 "Incident " + threat,
		OpenDate:             time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC),
		Year:                 year,
		Location:             "Gulf of Mexico",
		Geo:                  domain.Geo{Lat: 29.0 + float64(line)/10, Lon: -90.0 - float64(line)/10},
		Located:              true,
		Threat:               threat,
		Tags:                 domain.DefaultTags,
		Commodity:            domain.DefaultCommodity,
		Description:          domain.DefaultDescription,
		MaxPtlReleaseGallons: gallons,
	}
}

func table(rows ...domain.Incident) domain.Table {
	return domain.Table{
		Source:  "test.csv",
		Columns: testColumns,
		Rows:    rows,
		Report:  domain.CleaningReport{Filled: map[string]int{domain.ColThreat: 1}},
	}
}

// scenarioTable is three incidents in 2008, 2008 and 2017; the last had no threat.
func scenarioTable() domain.Table {
	return table(
		incident(2, 2008, "Oil", 100),
		incident(3, 2008, "Oil", 300),
		incident(4, 2017, domain.DefaultThreat, 200),
	)
}
