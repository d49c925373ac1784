package customdata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

func TestInferSchemaClassifiesColumns(t *testing.T) {
	rows := []models.Row{
		{"date": "2025/01/03", "desk": "FX", "pnl": 1.5, "note": ""},
		{"date": "2025/01/04", "desk": "Rates", "pnl": -2.0, "note": nil},
	}
	s := InferSchema("custom-x", []string{"date", "desk", "pnl", "note"}, rows)

	assert.Equal(t, models.TypeDate, s.Columns[0].Type)
	assert.Equal(t, models.RoleDimension, s.Columns[0].Role)
	assert.Equal(t, models.TypeString, s.Columns[1].Type)
	assert.Equal(t, models.TypeNumber, s.Columns[2].Type)
	assert.Equal(t, models.RoleMeasure, s.Columns[2].Role)
	assert.True(t, s.Columns[2].Aggregatable)

	// no non-empty samples: treated as numeric
	assert.Equal(t, models.TypeNumber, s.Columns[3].Type)

	assert.Equal(t, "date", s.DefaultDateColumn)
	assert.Equal(t, "pnl", s.DefaultMeasure)
	assert.Equal(t, "date", s.DefaultDimension)
}

func TestInferSchemaSamplesOnlyFirstTenRows(t *testing.T) {
	rows := make([]models.Row, 0, 12)
	for i := 0; i < 10; i++ {
		rows = append(rows, models.Row{"v": float64(i)})
	}
	rows = append(rows, models.Row{"v": "n/a"}, models.Row{"v": "n/a"})

	s := InferSchema("custom-y", []string{"v"}, rows)
	assert.Equal(t, models.TypeNumber, s.Columns[0].Type)
}

func TestInferSchemaMixedValuesAreStrings(t *testing.T) {
	rows := []models.Row{{"v": "2025-01"}, {"v": 3.0}}
	s := InferSchema("custom-z", []string{"v"}, rows)
	assert.Equal(t, models.TypeString, s.Columns[0].Type)
	assert.Empty(t, s.DefaultMeasure)
}
