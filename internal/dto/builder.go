package dto

import (
	"time"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

type AddWidgetRequest struct {
	DatasetID string           `json:"datasetId"`
	ChartType models.ChartType `json:"chartType,omitempty"`
	Title     string           `json:"title,omitempty"`
}

// UpdateWidgetSettingsRequest carries settings-panel edits. Nil fields are
// left unchanged; an axis mapping with no Y columns clears the mapping.
type UpdateWidgetSettingsRequest struct {
	ChartType   *models.ChartType   `json:"chartType,omitempty"`
	Title       *string             `json:"title,omitempty"`
	AxisMapping *models.AxisMapping `json:"axisMapping,omitempty"`
	Thresholds  *[]models.Threshold `json:"thresholds,omitempty"`
	QueryParams *models.QueryParams `json:"queryParams,omitempty"`
}

type UpdateLayoutRequest struct {
	X *int `json:"x,omitempty"`
	Y *int `json:"y,omitempty"`
	W *int `json:"w,omitempty"`
	H *int `json:"h,omitempty"`
}

type ReorderWidgetsRequest struct {
	WidgetIDs []string `json:"widgetIds"`
}

type RenameDashboardRequest struct {
	Name string `json:"name"`
}

type SaveDashboardRequest struct {
	Name string `json:"name,omitempty"`
}

// WidgetRenderResponse is one resolved widget. Stale is set when the
// widget's configuration changed while this resolution was running.
type WidgetRenderResponse struct {
	WidgetID   string      `json:"widgetId"`
	Query      QueryConfig `json:"query"`
	Meta       QueryMeta   `json:"meta"`
	Plan       RenderPlan  `json:"plan"`
	Stale      bool        `json:"stale,omitempty"`
	ResolvedAt time.Time   `json:"resolvedAt"`
}
