package dto

import (
	"time"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

type CatalogEntry struct {
	models.DatasetMeta
	Custom     bool              `json:"custom"`
	SourceType models.SourceType `json:"sourceType,omitempty"`
	CreatedAt  *time.Time        `json:"createdAt,omitempty"`
}

type AddCatalogRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Category    models.Category   `json:"category,omitempty"`
	SourceType  models.SourceType `json:"sourceType"`
	Query       string            `json:"query,omitempty"`
}

type RecommendationResponse struct {
	DatasetID string             `json:"datasetId"`
	Charts    []models.ChartType `json:"charts"`
}
