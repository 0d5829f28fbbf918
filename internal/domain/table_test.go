package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func yearRows(years ...int) []Incident {
	rows := make([]Incident, len(years))
	for i, y := range years {
		rows[i] = Incident{Year: y}
	}
	return rows
}

func TestFilterYears(t *testing.T) {
	rows := yearRows(1999, 2005, 2008, 2008, 2017)

	got := FilterYears(rows, YearRange{From: 2005, To: 2008})
	assert.Len(t, got, 3)
	for _, r := range got {
		assert.True(t, r.Year >= 2005 && r.Year <= 2008)
	}

	// Full observed range is a no-op.
	bounds, ok := Table{Rows: rows}.YearBounds()
	assert.True(t, ok)
	assert.Equal(t, rows, FilterYears(rows, bounds))
}

func TestYearBounds_Empty(t *testing.T) {
	_, ok := Table{}.YearBounds()
	assert.False(t, ok)
}

func TestYearRange_Clamp(t *testing.T) {
	bounds := YearRange{From: 1970, To: 2020}

	tests := []struct {
		name     string
		input    YearRange
		expected YearRange
	}{
		{"inside", YearRange{1990, 2000}, YearRange{1990, 2000}},
		{"below", YearRange{1900, 1980}, YearRange{1970, 1980}},
		{"above", YearRange{2010, 2050}, YearRange{2010, 2020}},
		{"reversed", YearRange{2000, 1990}, YearRange{1990, 2000}},
		{"entirely outside", YearRange{2030, 2040}, YearRange{2020, 2020}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.Clamp(bounds))
		})
	}
}

func TestUniqueAndFilterThreats(t *testing.T) {
	rows := []Incident{{Threat: "Oil"}, {Threat: "Chemical"}, {Threat: "Oil"}, {Threat: "Unknown"}}

	assert.Equal(t, []string{"Oil", "Chemical", "Unknown"}, UniqueThreats(rows))
	assert.Len(t, FilterThreats(rows, []string{"Oil"}), 2)
	assert.Empty(t, FilterThreats(rows, []string{}))
}
