package services

import (
	"slices"
	"time"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

const (
	dashDateLayout   = "2006-01-02"
	departmentColumn = "department"
)

// ResolveDateRange expands a filter-bar label into a from/to pair ending at
// now. 12m and unrecognised labels both mean one year back.
func ResolveDateRange(label string, now time.Time) models.DateRange {
	var from time.Time
	switch label {
	case models.DateRangeYTD:
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case models.DateRange1M:
		from = now.AddDate(0, -1, 0)
	case models.DateRange3M:
		from = now.AddDate(0, -3, 0)
	case models.DateRange6M:
		from = now.AddDate(0, -6, 0)
	default:
		from = now.AddDate(-1, 0, 0)
	}
	return models.DateRange{From: from.Format(dashDateLayout), To: now.Format(dashDateLayout)}
}

// MergeFilters combines the dashboard filter with a widget's own params.
// Widget settings always win: an explicit date range is kept as is, and the
// department filter is only added when the schema has a filterable
// department column the widget does not already filter on. params is not
// modified.
func MergeFilters(global *models.GlobalFilter, params *models.QueryParams, schema *models.Schema, now time.Time) models.QueryParams {
	var out models.QueryParams
	if params != nil {
		out = *params
		out.Filters = slices.Clone(params.Filters)
		if params.DateRange != nil {
			dr := *params.DateRange
			out.DateRange = &dr
		}
	}
	if global == nil {
		return out
	}

	if out.DateRange == nil && global.DateRange != "" {
		dr := ResolveDateRange(global.DateRange, now)
		out.DateRange = &dr
	}

	if global.Department != "" && global.Department != models.DepartmentAll {
		col, ok := schema.Column(departmentColumn)
		if ok && col.Filterable && !out.HasFilterOn(departmentColumn) {
			out.Filters = append(out.Filters, models.Filter{
				Column:   departmentColumn,
				Operator: models.OpEq,
				Value:    global.Department,
			})
		}
	}
	return out
}
