package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GregMSThompson/riskbi-backend/internal/datasets"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

type datasetRegistry interface {
	Lookup(datasetID string) (datasets.Entry, bool)
}

// customDatasets is the per-user runtime for uploaded and SQL datasets.
type customDatasets interface {
	customLoader
	Rows(uid, datasetID string) ([]models.Row, bool)
}

type customLoader interface {
	Schema(uid, datasetID string) (models.Schema, bool)
	Hydrated(uid string) bool
	Hydrate(ctx context.Context, uid string) error
}

// ensureCustom loads uid's custom datasets unless datasetID is already
// known here. Another instance may have added it since the last load.
func ensureCustom(ctx context.Context, c customLoader, uid, datasetID string) error {
	if c.Hydrated(uid) {
		if _, ok := c.Schema(uid, datasetID); ok {
			return nil
		}
	}
	return c.Hydrate(ctx, uid)
}

type queryEngine struct {
	registry datasetRegistry
	custom   customDatasets
	clockNow func() time.Time
}

func NewQueryEngine(registry datasetRegistry, custom customDatasets) *queryEngine {
	return &queryEngine{registry: registry, custom: custom, clockNow: time.Now}
}

// Execute resolves cfg against the built-in registry, then the caller's
// custom datasets. Unknown datasets yield an empty result, not an error.
// Custom datasets are returned unfiltered. GroupBy is accepted and ignored.
func (e *queryEngine) Execute(ctx context.Context, uid string, cfg dto.QueryConfig) (dto.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return dto.QueryResult{}, err
	}

	result := dto.QueryResult{
		Data: []models.Row{},
		Meta: dto.QueryMeta{
			DatasetID:  cfg.DatasetID,
			ExecutedAt: e.clockNow(),
			Params:     cfg,
		},
	}

	entry, ok := e.registry.Lookup(cfg.DatasetID)
	if !ok {
		if models.IsCustomDataset(cfg.DatasetID) && e.custom != nil {
			if err := ensureCustom(ctx, e.custom, uid, cfg.DatasetID); err != nil {
				return dto.QueryResult{}, err
			}
			if rows, ok := e.custom.Rows(uid, cfg.DatasetID); ok {
				result.Data = append(result.Data, rows...)
			}
			result.Meta.Total = len(result.Data)
			return result, nil
		}
		logger.FromContext(ctx).Debug("query for unknown dataset", "dataset_id", cfg.DatasetID)
		return result, nil
	}

	rows := entry.Rows()
	result.Meta.Total = len(rows)

	if cfg.DateRange != nil && entry.Schema.DefaultDateColumn != "" {
		rows = filterRows(rows, func(r models.Row) bool {
			return inDateRange(r, entry.Schema.DefaultDateColumn, *cfg.DateRange)
		})
	}
	for _, f := range cfg.Filters {
		rows = filterRows(rows, func(r models.Row) bool { return matchFilter(r, f) })
	}
	if cfg.Limit > 0 && len(rows) > cfg.Limit {
		rows = rows[:cfg.Limit]
	}

	result.Data = rows
	if logger.IsDebugEnabled(ctx) {
		logger.FromContext(ctx).Debug("query executed",
			"dataset_id", cfg.DatasetID,
			"total", result.Meta.Total,
			"returned", len(rows))
	}
	return result, nil
}

func filterRows(rows []models.Row, keep func(models.Row) bool) []models.Row {
	out := make([]models.Row, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// inDateRange compares the row's date against bounds cut to the same length,
// so a month value 2025-11 falls inside 2025-11-26..2026-02-26. Rows without
// a date and empty bounds never exclude.
func inDateRange(r models.Row, column string, dr models.DateRange) bool {
	d, _ := r[column].(string)
	if d == "" {
		return true
	}
	n := len(d)
	if dr.From != "" && d < truncate(dr.From, n) {
		return false
	}
	if dr.To != "" && d > truncate(dr.To, n) {
		return false
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func matchFilter(r models.Row, f models.Filter) bool {
	v := r[f.Column]
	switch f.Operator {
	case models.OpEq:
		return strictEqual(v, f.Value)
	case models.OpGte:
		a, ok1 := numeric(v)
		b, ok2 := numeric(f.Value)
		return ok1 && ok2 && a >= b
	case models.OpLte:
		a, ok1 := numeric(v)
		b, ok2 := numeric(f.Value)
		return ok1 && ok2 && a <= b
	case models.OpContains:
		return strings.Contains(strings.ToLower(display(v)), strings.ToLower(display(f.Value)))
	default:
		return true
	}
}

// strictEqual compares without coercion: 1 and "1" differ.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := models.ToFloat(a); ok {
		y, ok := models.ToFloat(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	default:
		return false
	}
}

// numeric accepts numbers and numeric strings.
func numeric(v any) (float64, bool) {
	if f, ok := models.ToFloat(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

func display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		if f, ok := models.ToFloat(x); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return fmt.Sprint(x)
	}
}
