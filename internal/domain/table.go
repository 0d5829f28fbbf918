package domain

// YearRange is an inclusive range of calendar years.
type YearRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// Clamp limits r to bounds, swapping the ends first if they are reversed.
func (r YearRange) Clamp(bounds YearRange) YearRange {
	if r.From > r.To {
		r.From, r.To = r.To, r.From
	}
	r.From = min(max(r.From, bounds.From), bounds.To)
	r.To = max(min(r.To, bounds.To), bounds.From)
	return r
}

// YearBounds returns the smallest and largest year in t. ok is false for an
// empty table.
func (t Table) YearBounds() (bounds YearRange, ok bool) {
	if len(t.Rows) == 0 {
		return YearRange{}, false
	}
	bounds = YearRange{From: t.Rows[0].Year, To: t.Rows[0].Year}
	for _, r := range t.Rows[1:] {
		bounds.From = min(bounds.From, r.Year)
		bounds.To = max(bounds.To, r.Year)
	}
	return bounds, true
}

// FilterYears returns the rows whose year lies within r, preserving order.
func FilterYears(rows []Incident, r YearRange) []Incident {
	out := make([]Incident, 0, len(rows))
	for _, row := range rows {
		if r.Contains(row.Year) {
			out = append(out, row)
		}
	}
	return out
}

// UniqueThreats returns the distinct threat values of rows in first-seen order.
func UniqueThreats(rows []Incident) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.Threat] {
			seen[r.Threat] = true
			out = append(out, r.Threat)
		}
	}
	return out
}

// FilterThreats returns the rows whose threat is in threats, preserving order.
func FilterThreats(rows []Incident, threats []string) []Incident {
	want := make(map[string]bool, len(threats))
	for _, th := range threats {
		want[th] = true
	}
	out := make([]Incident, 0, len(rows))
	for _, r := range rows {
		if want[r.Threat] {
			out = append(out, r)
		}
	}
	return out
}
