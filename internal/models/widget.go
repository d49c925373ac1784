package models

import "github.com/GregMSThompson/riskbi-backend/pkg/helpers"

const (
	MinColSpan = 1
	MaxColSpan = 3
)

// Widget is one dataset bound to a chart on the builder canvas.
type Widget struct {
	ID           string        `firestore:"id" json:"id"`
	DatasetID    string        `firestore:"datasetId" json:"datasetId"`
	ChartType    ChartType     `firestore:"chartType" json:"chartType"`
	Title        string        `firestore:"title" json:"title"`
	ColSpan      int           `firestore:"colSpan" json:"colSpan"`
	QueryParams  *QueryParams  `firestore:"queryParams,omitempty" json:"queryParams,omitempty"`
	GlobalFilter *GlobalFilter `firestore:"globalFilter,omitempty" json:"globalFilter,omitempty"`
	AxisMapping  *AxisMapping  `firestore:"axisMapping,omitempty" json:"axisMapping,omitempty"`
	Thresholds   []Threshold   `firestore:"thresholds,omitempty" json:"thresholds,omitempty"`
}

// AxisMapping binds schema columns to chart axes. An empty Y means no mapping.
type AxisMapping struct {
	X       string   `firestore:"x,omitempty" json:"x,omitempty"`
	Y       []string `firestore:"y" json:"y"`
	GroupBy string   `firestore:"groupBy,omitempty" json:"groupBy,omitempty"`
}

// HasY reports whether m carries at least one Y column.
func (m *AxisMapping) HasY() bool {
	return m != nil && len(m.Y) > 0
}

type Threshold struct {
	ID    string  `firestore:"id" json:"id"`
	Value float64 `firestore:"value" json:"value"`
	Label string  `firestore:"label,omitempty" json:"label,omitempty"`
	Color string  `firestore:"color" json:"color"`
}

// Layout is a widget's slot on the grid, keyed by widget id in I.
type Layout struct {
	I string `firestore:"i" json:"i"`
	X int    `firestore:"x" json:"x"`
	Y int    `firestore:"y" json:"y"`
	W int    `firestore:"w" json:"w"`
	H int    `firestore:"h" json:"h"`
}

// ClampColSpan keeps a grid width inside the supported column range.
func ClampColSpan(w int) int {
	return helpers.Clamp(w, MinColSpan, MaxColSpan)
}
