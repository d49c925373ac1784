package services

import "github.com/GregMSThompson/riskbi-backend/internal/models"

// Recommend ranks chart types for a schema by shape alone, best first. The
// result is never empty.
func Recommend(schema models.Schema) []models.ChartType {
	hasDate := schema.DefaultDateColumn != ""
	dims := len(schema.Dimensions())
	measures := len(schema.Measures())

	switch {
	case !hasDate && dims == 0:
		return []models.ChartType{models.ChartKPI, models.ChartTable, models.ChartBullet}
	case hasDate && measures >= 1:
		return []models.ChartType{models.ChartLine, models.ChartArea, models.ChartBar}
	case dims > 0 && measures >= 3:
		return []models.ChartType{models.ChartBar, models.ChartWaterfall, models.ChartPie}
	case dims > 0:
		return []models.ChartType{models.ChartBar, models.ChartPie}
	default:
		return []models.ChartType{models.ChartBar}
	}
}
