package dto

import (
	"encoding/json"
	"time"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

// QueryConfig is the fully resolved unit of work for the query engine.
type QueryConfig struct {
	DatasetID string            `json:"datasetId"`
	DateRange *models.DateRange `json:"dateRange,omitempty"`
	Filters   []models.Filter   `json:"filters,omitempty"`
	GroupBy   string            `json:"groupBy,omitempty"`
	Limit     int               `json:"limit,omitempty"`
}

// Key returns a canonical identity for the config. Two configs with equal
// keys resolve to the same rows.
func (c QueryConfig) Key() string {
	b, err := json.Marshal(c)
	if err != nil {
		return c.DatasetID
	}
	return string(b)
}

type QueryMeta struct {
	Total      int         `json:"total"`
	DatasetID  string      `json:"datasetId"`
	ExecutedAt time.Time   `json:"executedAt"`
	Params     QueryConfig `json:"params"`
}

type QueryResult struct {
	Data []models.Row `json:"data"`
	Meta QueryMeta    `json:"meta"`
}
