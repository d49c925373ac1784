package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/riskbi-backend/internal/datasets"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/helpers"
)

func TestProcessWaterfall(t *testing.T) {
	bars := ProcessWaterfall([]WaterfallStep{
		{Name: "a", Value: 100},
		{Name: "b", Value: -30},
		{Name: "c", Value: 50},
	})

	require.Len(t, bars, 4)
	assert.Equal(t, []float64{0, 70, 70}, []float64{bars[0].Base, bars[1].Base, bars[2].Base})
	assert.Equal(t, 30.0, bars[1].DisplayValue)
	assert.Equal(t, colorDanger, bars[1].Color)

	total := bars[3]
	assert.True(t, total.IsTotal)
	assert.Equal(t, 120.0, total.Value)
	assert.Equal(t, 0.0, total.Base)
}

func TestProcessWaterfallEmpty(t *testing.T) {
	bars := ProcessWaterfall(nil)
	require.Len(t, bars, 1)
	assert.True(t, bars[0].IsTotal)
	assert.Zero(t, bars[0].Value)
}

func builtinInput(t *testing.T, id string, chart models.ChartType) RenderInput {
	t.Helper()
	e, ok := datasets.Builtin().Lookup(id)
	require.True(t, ok, id)
	return RenderInput{
		Widget: models.Widget{ID: "w1", DatasetID: id, ChartType: chart},
		Rows:   e.Rows(),
		Schema: &e.Schema,
	}
}

func TestRenderBuiltinKPIs(t *testing.T) {
	plan := NewRenderer().Render(helpers.TestCtx(), builtinInput(t, "pd-lgd-ead", models.ChartKPI))

	assert.Equal(t, dto.StrategyBuiltin, plan.Strategy)
	assert.Equal(t, dto.KindKPI, plan.Kind)
	assert.Equal(t, "pd-lgd-ead", plan.DatasetID)
	require.NotEmpty(t, plan.KPIs)
	assert.Equal(t, "pd", plan.KPIs[0].Key)
}

func TestRenderBuiltinNoRows(t *testing.T) {
	in := builtinInput(t, "npl-trend", models.ChartLine)
	in.Rows = nil

	plan := NewRenderer().Render(helpers.TestCtx(), in)
	assert.Equal(t, dto.KindPlaceholder, plan.Kind)
	assert.Equal(t, dto.ReasonNoData, plan.Placeholder.Reason)
}

func TestRenderCustomWithoutRows(t *testing.T) {
	plan := NewRenderer().Render(helpers.TestCtx(), RenderInput{
		Widget: models.Widget{DatasetID: "custom-sql-1", ChartType: models.ChartBar},
	})

	assert.Equal(t, dto.StrategyCustom, plan.Strategy)
	require.NotNil(t, plan.Placeholder)
	assert.Equal(t, dto.ReasonSQLSaved, plan.Placeholder.Reason)
}

func TestRenderCustomPreviewHint(t *testing.T) {
	rows := make([]models.Row, 12)
	for i := range rows {
		rows[i] = models.Row{"b": float64(i), "a": "x"}
	}
	plan := NewRenderer().Render(helpers.TestCtx(), RenderInput{
		Widget: models.Widget{DatasetID: "custom-up", ChartType: models.ChartLine},
		Rows:   rows,
	})

	assert.Equal(t, dto.KindTable, plan.Kind)
	assert.Equal(t, hintMapAxes, plan.Hint)
	assert.Equal(t, []string{"a", "b"}, plan.Table.Columns)
	assert.Len(t, plan.Table.Rows, previewRowLimit)
	assert.Equal(t, 12, plan.Table.TotalRows)
}

func TestRenderCustomMapped(t *testing.T) {
	plan := NewRenderer().Render(helpers.TestCtx(), RenderInput{
		Widget: models.Widget{
			DatasetID:   "custom-up",
			ChartType:   models.ChartBar,
			AxisMapping: &models.AxisMapping{X: "name", Y: []string{"v"}},
			Thresholds:  []models.Threshold{{ID: "t1", Value: 5, Color: "#f00"}},
		},
		Rows: []models.Row{{"name": "a", "v": 3.0}, {"name": "b", "v": 7.0}},
	})

	require.Equal(t, dto.KindChart, plan.Kind)
	assert.Equal(t, dto.StrategyCustom, plan.Strategy)
	require.Len(t, plan.Chart.Series, 1)
	assert.Len(t, plan.Chart.Series[0].Points, 2)
	require.Len(t, plan.Chart.ReferenceLines, 1)
	assert.Equal(t, 5.0, plan.Chart.ReferenceLines[0].Value)
}

func TestRenderSpecializedNeedsMapping(t *testing.T) {
	plan := NewRenderer().Render(helpers.TestCtx(), builtinInput(t, "npl-trend", models.ChartWaterfall))

	assert.Equal(t, dto.StrategySpecialized, plan.Strategy)
	assert.Equal(t, dto.ReasonMappingRequired, plan.Placeholder.Reason)
}

func TestRenderWaterfallUsesFirstRow(t *testing.T) {
	in := builtinInput(t, "npl-trend", models.ChartWaterfall)
	in.Widget.AxisMapping = &models.AxisMapping{Y: []string{"substandard", "doubtful", "loss"}}

	plan := NewRenderer().Render(helpers.TestCtx(), in)

	require.Equal(t, dto.KindWaterfall, plan.Kind)
	require.Len(t, plan.Waterfall, 4)
	assert.InDelta(t, 0.92+0.41+0.19, plan.Waterfall[3].Value, 1e-9)
}

func TestRenderBulletTarget(t *testing.T) {
	plan := NewRenderer().Render(helpers.TestCtx(), RenderInput{
		Widget: models.Widget{
			DatasetID:   "credit-grades",
			ChartType:   models.ChartBullet,
			AxisMapping: &models.AxisMapping{X: "grade", Y: []string{"amount"}},
			Thresholds:  []models.Threshold{{Value: 30000}, {Value: 1}},
		},
		Rows: []models.Row{{"grade": "AAA", "amount": 24580.0}, {"grade": "AA", "amount": 38920.0}},
	})

	require.Equal(t, dto.KindBullet, plan.Kind)
	require.Len(t, plan.Bullets, 2)
	assert.Equal(t, "AAA", plan.Bullets[0].Label)
	require.NotNil(t, plan.Bullets[0].Target)
	assert.Equal(t, 30000.0, *plan.Bullets[0].Target)
}

func TestRenderUnknownDataset(t *testing.T) {
	plan := NewRenderer().Render(helpers.TestCtx(), RenderInput{
		Widget: models.Widget{DatasetID: "nope", ChartType: models.ChartLine},
	})

	assert.Equal(t, dto.StrategyUnknown, plan.Strategy)
	assert.Equal(t, dto.ReasonUnknownDataset, plan.Placeholder.Reason)
}

func TestRenderBulletSingleRowPerColumn(t *testing.T) {
	in := builtinInput(t, "pd-lgd-ead", models.ChartBullet)
	in.Rows = []models.Row{{"pd": 1.2, "lgd": 38.5, "ead": 1000.0}}
	in.Widget.AxisMapping = &models.AxisMapping{Y: []string{"pd", "lgd"}}
	in.Widget.Thresholds = []models.Threshold{{Value: 2}, {Value: 50}}

	plan := NewRenderer().Render(helpers.TestCtx(), in)

	assert.Equal(t, dto.StrategySpecialized, plan.Strategy)
	require.Equal(t, dto.KindBullet, plan.Kind)
	require.Len(t, plan.Bullets, 2)
	assert.Equal(t, "PD", plan.Bullets[0].Label)
	assert.Equal(t, 1.2, plan.Bullets[0].Value)
	assert.Equal(t, "LGD", plan.Bullets[1].Label)
	assert.Equal(t, 38.5, plan.Bullets[1].Value)
	for _, b := range plan.Bullets {
		require.NotNil(t, b.Target)
		assert.Equal(t, 2.0, *b.Target)
	}
}

func TestRenderBuiltinMappingOverridesHardcoded(t *testing.T) {
	for _, chart := range []models.ChartType{models.ChartLine, models.ChartArea, models.ChartBar, models.ChartPie} {
		t.Run(string(chart), func(t *testing.T) {
			in := builtinInput(t, "npl-trend", chart)
			in.Widget.AxisMapping = &models.AxisMapping{X: "month", Y: []string{"npl"}}

			plan := NewRenderer().Render(helpers.TestCtx(), in)

			assert.Equal(t, dto.StrategyMapped, plan.Strategy)
			require.Equal(t, dto.KindChart, plan.Kind)
			assert.Equal(t, chart, plan.Chart.Type)
			assert.Equal(t, "month", plan.Chart.XKey)
			require.Len(t, plan.Chart.Series, 1)
			assert.Equal(t, "npl", plan.Chart.Series[0].Key)
			assert.Len(t, plan.Chart.Series[0].Points, len(in.Rows))
		})
	}

	// charts outside the generic set keep the hardcoded renderer
	in := builtinInput(t, "npl-trend", models.ChartTable)
	in.Widget.AxisMapping = &models.AxisMapping{X: "month", Y: []string{"npl"}}
	assert.Equal(t, dto.StrategyBuiltin, NewRenderer().Render(helpers.TestCtx(), in).Strategy)
}
