package models

import "strings"

type ChartType string

const (
	ChartLine      ChartType = "line"
	ChartArea      ChartType = "area"
	ChartBar       ChartType = "bar"
	ChartPie       ChartType = "pie"
	ChartScatter   ChartType = "scatter"
	ChartRadar     ChartType = "radar"
	ChartGauge     ChartType = "gauge"
	ChartTable     ChartType = "table"
	ChartKPI       ChartType = "kpi"
	ChartWaterfall ChartType = "waterfall"
	ChartBullet    ChartType = "bullet"
)

var chartTypes = map[ChartType]struct{}{
	ChartLine: {}, ChartArea: {}, ChartBar: {}, ChartPie: {}, ChartScatter: {}, ChartRadar: {},
	ChartGauge: {}, ChartTable: {}, ChartKPI: {}, ChartWaterfall: {}, ChartBullet: {},
}

func (c ChartType) Valid() bool {
	_, ok := chartTypes[c]
	return ok
}

type Category string

const (
	CategoryCredit    Category = "credit"
	CategoryMarket    Category = "market"
	CategoryLiquidity Category = "liquidity"
	CategoryCustom    Category = "custom"
)

// CustomDatasetPrefix marks dataset ids owned by the custom runtime.
const CustomDatasetPrefix = "custom-"

func IsCustomDataset(datasetID string) bool {
	return strings.HasPrefix(datasetID, CustomDatasetPrefix)
}

// DatasetMeta is the catalog-facing description of a dataset.
type DatasetMeta struct {
	ID               string      `firestore:"id" json:"id"`
	Label            string      `firestore:"label" json:"label"`
	Category         Category    `firestore:"category" json:"category"`
	CategoryLabel    string      `firestore:"categoryLabel" json:"categoryLabel"`
	Description      string      `firestore:"description" json:"description"`
	CompatibleCharts []ChartType `firestore:"compatibleCharts" json:"compatibleCharts"`
	DefaultChart     ChartType   `firestore:"defaultChart" json:"defaultChart"`
}
