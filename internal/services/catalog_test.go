package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/riskbi-backend/internal/customdata"
	"github.com/GregMSThompson/riskbi-backend/internal/datasets"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/internal/store"
	"github.com/GregMSThompson/riskbi-backend/pkg/helpers"
)

type catalogFixture struct {
	svc     *catalogService
	runtime *customdata.Runtime
	engine  *queryEngine
}

func newCatalogFixture() catalogFixture {
	mem := store.NewMemorySet()
	registry := datasets.Builtin()
	runtime := customdata.NewRuntime(mem.Catalog)
	return catalogFixture{
		svc:     NewCatalogService(registry, mem.Catalog, runtime),
		runtime: runtime,
		engine:  NewQueryEngine(registry, runtime),
	}
}

func TestCatalogListBuiltins(t *testing.T) {
	f := newCatalogFixture()
	list, err := f.svc.List(helpers.TestCtx(), "u1")
	require.NoError(t, err)
	assert.Len(t, list, len(datasets.Builtin().All()))
	for _, e := range list {
		assert.False(t, e.Custom)
	}
}

func TestCatalogAddUpload(t *testing.T) {
	f := newCatalogFixture()
	ctx := helpers.TestCtx()
	csv := "name,amount\nalpha,10\nbeta,20\n"

	entry, err := f.svc.AddUpload(ctx, "u1", editor, dto.AddCatalogRequest{Title: "Branches"}, "branches.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.True(t, models.IsCustomDataset(entry.ID))
	assert.Equal(t, models.CategoryCustom, entry.Category)
	assert.Contains(t, entry.CompatibleCharts, models.ChartTable)
	assert.Equal(t, models.SourceExcel, entry.SourceType)

	res, err := f.engine.Execute(ctx, "u1", dto.QueryConfig{DatasetID: entry.ID})
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)

	schema, err := f.svc.Schema(ctx, "u1", entry.ID)
	require.NoError(t, err)
	col, ok := schema.Column("amount")
	require.True(t, ok)
	assert.Equal(t, models.TypeNumber, col.Type)

	list, err := f.svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, len(datasets.Builtin().All())+1)
}

func TestCatalogAddSQL(t *testing.T) {
	f := newCatalogFixture()
	ctx := helpers.TestCtx()

	_, err := f.svc.AddSQL(ctx, "u1", editor, dto.AddCatalogRequest{Title: "q"})
	var validation *errs.ValidationError
	assert.True(t, errors.As(err, &validation))

	entry, err := f.svc.AddSQL(ctx, "u1", editor, dto.AddCatalogRequest{Title: "Top", Query: "select 1"})
	require.NoError(t, err)
	assert.Equal(t, []models.ChartType{models.ChartTable}, entry.CompatibleCharts)

	meta, err := f.svc.Meta(ctx, "u1", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Top", meta.Label)

	res, err := f.engine.Execute(ctx, "u1", dto.QueryConfig{DatasetID: entry.ID})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
}

func TestCatalogPermissions(t *testing.T) {
	f := newCatalogFixture()
	ctx := helpers.TestCtx()
	var forbidden *errs.ForbiddenError

	_, err := f.svc.AddSQL(ctx, "u1", viewer, dto.AddCatalogRequest{Title: "q", Query: "select 1"})
	assert.True(t, errors.As(err, &forbidden))

	entry, err := f.svc.AddSQL(ctx, "u1", editor, dto.AddCatalogRequest{Title: "q", Query: "select 1"})
	require.NoError(t, err)

	assert.True(t, errors.As(f.svc.Remove(ctx, "u1", editor, entry.ID), &forbidden))

	var validation *errs.ValidationError
	assert.True(t, errors.As(f.svc.Remove(ctx, "u1", admin, "npl-trend"), &validation))

	require.NoError(t, f.svc.Remove(ctx, "u1", admin, entry.ID))
	var notFound *errs.NotFoundError
	assert.True(t, errors.As(f.svc.Remove(ctx, "u1", admin, entry.ID), &notFound))
}

func TestCatalogInvalidCategory(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.svc.AddSQL(context.Background(), "u1", editor, dto.AddCatalogRequest{Title: "q", Query: "x", Category: "bogus"})
	var validation *errs.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestCatalogRecommendations(t *testing.T) {
	f := newCatalogFixture()
	rec, err := f.svc.Recommendations(helpers.TestCtx(), "u1", "pd-lgd-ead")
	require.NoError(t, err)
	assert.Equal(t, []models.ChartType{models.ChartKPI, models.ChartTable, models.ChartBullet}, rec.Charts)

	_, err = f.svc.Recommendations(helpers.TestCtx(), "u1", "custom-missing")
	var notFound *errs.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
