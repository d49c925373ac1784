package services

import (
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/customdata"
	"github.com/GregMSThompson/riskbi-backend/internal/datasets"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/ingest"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

// catalogStore persists user-added datasets.
type catalogStore interface {
	ListEntries(ctx context.Context, uid string) ([]models.CustomDatasetEntry, error)
	CreateEntry(ctx context.Context, uid string, entry *models.CustomDatasetEntry) error
	DeleteEntry(ctx context.Context, uid, datasetID string) error
}

// customRuntime is the in-memory view of the custom catalog used by queries.
type customRuntime interface {
	Hydrate(ctx context.Context, uid string) error
	Hydrated(uid string) bool
	Schema(uid, datasetID string) (models.Schema, bool)
}

type catalogService struct {
	registry datasetRegistryLister
	store    catalogStore
	runtime  customRuntime
	clockNow func() time.Time
	newID    func() string
}

type datasetRegistryLister interface {
	datasetRegistry
	All() []datasets.Entry
}

func NewCatalogService(registry datasetRegistryLister, store catalogStore, runtime customRuntime) *catalogService {
	return &catalogService{
		registry: registry,
		store:    store,
		runtime:  runtime,
		clockNow: time.Now,
		newID:    uuid.NewString,
	}
}

// List returns built-in and custom datasets grouped by category in panel
// order. Custom entries keep their creation order within a category.
func (s *catalogService) List(ctx context.Context, uid string) ([]dto.CatalogEntry, error) {
	entries, err := s.store.ListEntries(ctx, uid)
	if err != nil {
		return nil, err
	}

	all := make([]dto.CatalogEntry, 0, len(entries)+15)
	for _, e := range s.registry.All() {
		all = append(all, dto.CatalogEntry{DatasetMeta: e.Meta})
	}
	for _, e := range entries {
		created := e.CreatedAt
		all = append(all, dto.CatalogEntry{
			DatasetMeta: e.Dataset,
			Custom:      true,
			SourceType:  e.SourceType,
			CreatedAt:   &created,
		})
	}
	slices.SortStableFunc(all, func(a, b dto.CatalogEntry) int {
		return categoryRank(a.Category) - categoryRank(b.Category)
	})
	return all, nil
}

func categoryRank(c models.Category) int {
	if i := slices.Index(datasets.CategoryOrder, c); i >= 0 {
		return i
	}
	return len(datasets.CategoryOrder)
}

// Meta resolves one dataset's catalog entry.
func (s *catalogService) Meta(ctx context.Context, uid, datasetID string) (models.DatasetMeta, error) {
	if e, ok := s.registry.Lookup(datasetID); ok {
		return e.Meta, nil
	}
	if models.IsCustomDataset(datasetID) {
		entries, err := s.store.ListEntries(ctx, uid)
		if err != nil {
			return models.DatasetMeta{}, err
		}
		for _, e := range entries {
			if e.Dataset.ID == datasetID {
				return e.Dataset, nil
			}
		}
	}
	return models.DatasetMeta{}, errs.NewNotFoundError("dataset not found: " + datasetID)
}

func (s *catalogService) Schema(ctx context.Context, uid, datasetID string) (models.Schema, error) {
	if e, ok := s.registry.Lookup(datasetID); ok {
		return e.Schema, nil
	}
	if models.IsCustomDataset(datasetID) {
		if err := ensureCustom(ctx, s.runtime, uid, datasetID); err != nil {
			return models.Schema{}, err
		}
		if sc, ok := s.runtime.Schema(uid, datasetID); ok {
			return sc, nil
		}
	}
	return models.Schema{}, errs.NewNotFoundError("dataset not found: " + datasetID)
}

func (s *catalogService) Recommendations(ctx context.Context, uid, datasetID string) (dto.RecommendationResponse, error) {
	schema, err := s.Schema(ctx, uid, datasetID)
	if err != nil {
		return dto.RecommendationResponse{}, err
	}
	return dto.RecommendationResponse{DatasetID: datasetID, Charts: Recommend(schema)}, nil
}

// AddSQL registers a saved query. It has no rows until a query backend exists.
func (s *catalogService) AddSQL(ctx context.Context, uid string, caps access.Capabilities, req dto.AddCatalogRequest) (dto.CatalogEntry, error) {
	if !caps.CanAddCatalog() {
		return dto.CatalogEntry{}, errs.NewForbiddenError("add catalog datasets")
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return dto.CatalogEntry{}, errs.NewValidationError("query is required")
	}
	meta, err := s.newMeta(req, models.SourceSQL)
	if err != nil {
		return dto.CatalogEntry{}, err
	}
	meta.CompatibleCharts = []models.ChartType{models.ChartTable}
	return s.create(ctx, uid, &models.CustomDatasetEntry{
		Dataset:    meta,
		SourceType: models.SourceSQL,
		Query:      query,
	})
}

// AddUpload parses an uploaded CSV/TSV file and registers its rows.
// Compatible charts come from the inferred schema.
func (s *catalogService) AddUpload(ctx context.Context, uid string, caps access.Capabilities, req dto.AddCatalogRequest, fileName string, r io.Reader) (dto.CatalogEntry, error) {
	if !caps.CanAddCatalog() {
		return dto.CatalogEntry{}, errs.NewForbiddenError("add catalog datasets")
	}
	meta, err := s.newMeta(req, models.SourceExcel)
	if err != nil {
		return dto.CatalogEntry{}, err
	}
	parsed, err := ingest.Parse(fileName, r)
	if err != nil {
		return dto.CatalogEntry{}, err
	}
	schema := customdata.InferSchema(meta.ID, parsed.Columns, parsed.Rows)
	charts := Recommend(schema)
	if !slices.Contains(charts, models.ChartTable) {
		charts = append(charts, models.ChartTable)
	}
	meta.CompatibleCharts = charts
	return s.create(ctx, uid, &models.CustomDatasetEntry{
		Dataset:    meta,
		SourceType: models.SourceExcel,
		ParsedFile: &parsed,
	})
}

func (s *catalogService) newMeta(req dto.AddCatalogRequest, source models.SourceType) (models.DatasetMeta, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.DatasetMeta{}, errs.NewValidationError("title is required")
	}
	cat := req.Category
	if cat == "" {
		cat = models.CategoryCustom
	}
	if !slices.Contains(datasets.CategoryOrder, cat) {
		return models.DatasetMeta{}, errs.NewValidationError("invalid category: " + string(cat))
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		kind := "SQL"
		if source == models.SourceExcel {
			kind = "Excel"
		}
		desc = "사용자 정의 데이터셋 (" + kind + ")"
	}
	return models.DatasetMeta{
		ID:            models.CustomDatasetPrefix + s.newID(),
		Label:         title,
		Category:      cat,
		CategoryLabel: datasets.CategoryLabel(cat),
		Description:   desc,
		DefaultChart:  models.ChartTable,
	}, nil
}

func (s *catalogService) create(ctx context.Context, uid string, entry *models.CustomDatasetEntry) (dto.CatalogEntry, error) {
	entry.CreatedAt = s.clockNow()
	if err := s.store.CreateEntry(ctx, uid, entry); err != nil {
		return dto.CatalogEntry{}, err
	}
	s.rehydrate(ctx, uid)
	logger.FromContext(ctx).Info("custom dataset added",
		"dataset_id", entry.Dataset.ID,
		"source_type", entry.SourceType)
	created := entry.CreatedAt
	return dto.CatalogEntry{
		DatasetMeta: entry.Dataset,
		Custom:      true,
		SourceType:  entry.SourceType,
		CreatedAt:   &created,
	}, nil
}

// Remove deletes a custom dataset. Built-in datasets cannot be removed.
func (s *catalogService) Remove(ctx context.Context, uid string, caps access.Capabilities, datasetID string) error {
	if !caps.CanDeleteCatalog() {
		return errs.NewForbiddenError("delete catalog datasets")
	}
	if !models.IsCustomDataset(datasetID) {
		return errs.NewValidationError("built-in datasets cannot be removed")
	}
	if err := s.store.DeleteEntry(ctx, uid, datasetID); err != nil {
		return err
	}
	s.rehydrate(ctx, uid)
	return nil
}

// rehydrate refreshes the runtime after a catalog change. A failure leaves
// the previous view in place until the next successful hydration.
func (s *catalogService) rehydrate(ctx context.Context, uid string) {
	if err := s.runtime.Hydrate(ctx, uid); err != nil {
		logger.FromContext(ctx).Warn("failed to rehydrate custom datasets", "error", err)
	}
}
