package dto

import "github.com/GregMSThompson/riskbi-backend/internal/models"

// RenderStrategy names the dispatch tier that produced a plan.
type RenderStrategy string

const (
	StrategyCustom      RenderStrategy = "custom"
	StrategySpecialized RenderStrategy = "specialized"
	StrategyMapped      RenderStrategy = "mapped"
	StrategyBuiltin     RenderStrategy = "builtin"
	StrategyUnknown     RenderStrategy = "unknown"
)

type RenderKind string

const (
	KindPlaceholder RenderKind = "placeholder"
	KindTable       RenderKind = "table"
	KindChart       RenderKind = "chart"
	KindWaterfall   RenderKind = "waterfall"
	KindBullet      RenderKind = "bullet"
	KindKPI         RenderKind = "kpi"
	KindGauge       RenderKind = "gauge"
)

type PlaceholderReason string

const (
	ReasonSQLSaved        PlaceholderReason = "sql-saved"
	ReasonNoData          PlaceholderReason = "no-data"
	ReasonMappingRequired PlaceholderReason = "mapping-required"
	ReasonUnknownDataset  PlaceholderReason = "unknown-dataset"
)

// RenderPlan is everything a client needs to paint one widget. Exactly one
// of the payload fields is set, matching Kind.
type RenderPlan struct {
	Strategy    RenderStrategy   `json:"strategy"`
	Kind        RenderKind       `json:"kind"`
	DatasetID   string           `json:"datasetId"`
	ChartType   models.ChartType `json:"chartType,omitempty"`
	Hint        string           `json:"hint,omitempty"`
	Placeholder *Placeholder     `json:"placeholder,omitempty"`
	Chart       *ChartSpec       `json:"chart,omitempty"`
	Table       *TablePreview    `json:"table,omitempty"`
	Waterfall   []WaterfallBar   `json:"waterfall,omitempty"`
	Bullets     []BulletItem     `json:"bullets,omitempty"`
	KPIs        []KPICard        `json:"kpis,omitempty"`
	Gauges      []Gauge          `json:"gauges,omitempty"`
}

type Placeholder struct {
	Reason  PlaceholderReason `json:"reason"`
	Message string            `json:"message"`
}

type ChartSpec struct {
	Type           models.ChartType `json:"type"`
	XKey           string           `json:"xKey,omitempty"`
	Unit           string           `json:"unit,omitempty"`
	Stacked        bool             `json:"stacked,omitempty"`
	Horizontal     bool             `json:"horizontal,omitempty"`
	Max            float64          `json:"max,omitempty"`
	Series         []Series         `json:"series"`
	ReferenceLines []ReferenceLine  `json:"referenceLines,omitempty"`
}

type Series struct {
	Key    string           `json:"key"`
	Label  string           `json:"label"`
	Type   models.ChartType `json:"type,omitempty"`
	Color  string           `json:"color,omitempty"`
	Points []Point          `json:"points"`
}

// Point is one datum. X and Size are only set for scatter series.
type Point struct {
	Label string   `json:"label"`
	Value float64  `json:"value"`
	X     *float64 `json:"x,omitempty"`
	Size  *float64 `json:"size,omitempty"`
	Color string   `json:"color,omitempty"`
}

type ReferenceLine struct {
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
	Color string  `json:"color"`
}

type TablePreview struct {
	Columns   []string     `json:"columns"`
	Rows      []models.Row `json:"rows"`
	TotalRows int          `json:"totalRows"`
}

type WaterfallBar struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Base         float64 `json:"base"`
	DisplayValue float64 `json:"displayValue"`
	IsTotal      bool    `json:"isTotal"`
	Color        string  `json:"color"`
}

type BulletItem struct {
	Label  string   `json:"label"`
	Value  float64  `json:"value"`
	Target *float64 `json:"target,omitempty"`
	Low    float64  `json:"low"`
	Mid    float64  `json:"mid"`
	Max    float64  `json:"max"`
	Unit   string   `json:"unit,omitempty"`
	Color  string   `json:"color,omitempty"`
}

type KPICard struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	Severity string  `json:"severity,omitempty"`
}

type Gauge struct {
	Label    string    `json:"label"`
	Value    float64   `json:"value"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Ticks    []float64 `json:"ticks,omitempty"`
	Color    string    `json:"color"`
	Severity string    `json:"severity,omitempty"`
}
