package customdata

import (
	"regexp"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

const sampleSize = 10

var datePrefix = regexp.MustCompile(`^\d{4}[-/]\d{2}`)

// InferSchema derives a column model from uploaded rows. Each column is typed
// from its first ten non-empty values: all numeric is a number measure, all
// YYYY-MM or YYYY/MM prefixed strings is a date dimension, anything else is a
// string dimension. Column order decides the defaults, so the first date,
// measure and dimension columns win. This is a heuristic, not a type system:
// a column of numeric strings is a string column.
func InferSchema(datasetID string, columns []string, rows []models.Row) models.Schema {
	n := min(len(rows), sampleSize)
	schema := models.Schema{ID: datasetID, Columns: make([]models.Column, 0, len(columns))}

	for _, key := range columns {
		samples := make([]any, 0, n)
		for _, r := range rows[:n] {
			samples = append(samples, r[key])
		}
		t := inferType(samples)
		numeric := t.Numeric()
		role := models.RoleDimension
		if numeric {
			role = models.RoleMeasure
		}
		schema.Columns = append(schema.Columns, models.Column{
			Key:          key,
			Label:        key,
			Type:         t,
			Role:         role,
			Aggregatable: numeric,
			Filterable:   true,
		})
	}

	for _, c := range schema.Columns {
		if schema.DefaultDateColumn == "" && c.Type == models.TypeDate {
			schema.DefaultDateColumn = c.Key
		}
		if schema.DefaultMeasure == "" && c.Role == models.RoleMeasure {
			schema.DefaultMeasure = c.Key
		}
		if schema.DefaultDimension == "" && c.Role == models.RoleDimension {
			schema.DefaultDimension = c.Key
		}
	}
	return schema
}

// inferType treats a column with no usable samples as numeric.
func inferType(samples []any) models.SemanticType {
	values := make([]any, 0, len(samples))
	for _, v := range samples {
		if v == nil || v == "" {
			continue
		}
		values = append(values, v)
	}

	allNumbers, allDates := true, true
	for _, v := range values {
		if _, ok := models.ToFloat(v); !ok {
			allNumbers = false
		}
		s, ok := v.(string)
		if !ok || !datePrefix.MatchString(s) {
			allDates = false
		}
	}
	switch {
	case allNumbers:
		return models.TypeNumber
	case allDates:
		return models.TypeDate
	default:
		return models.TypeString
	}
}
