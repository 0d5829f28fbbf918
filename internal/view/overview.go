package view

import "github.com/couchcryptid/oil-spill-dashboard/internal/domain"

func buildOverview(t domain.Table) *Overview {
	return &Overview{
		Rows:    t.Len(),
		Columns: t.Columns,
		Preview: t.Rows,
		Summary: domain.Describe(t),
		Nulls:   domain.NullCounts(t),
		Schema:  domain.Schema(t),
		Report:  t.Report,
	}
}
