package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

const previewRowLimit = 8

const (
	msgSQLSaved        = "데이터 없음 (SQL 쿼리 저장됨)"
	msgNoData          = "표시할 데이터가 없습니다"
	msgMappingRequired = "축 매핑에서 Y 컬럼을 선택하세요"
	msgUnknownDataset  = "알 수 없는 데이터셋"
	hintMapAxes        = "축 매핑을 설정하면 차트로 표시됩니다"
)

// RenderInput is a widget with its rows already resolved. Schema is nil when
// the dataset could not be resolved.
type RenderInput struct {
	Widget models.Widget
	Rows   []models.Row
	Schema *models.Schema
}

// renderStrategy is one tier of the dispatch order.
type renderStrategy interface {
	Strategy() dto.RenderStrategy
	Applies(in RenderInput) bool
	Render(in RenderInput) dto.RenderPlan
}

type renderer struct {
	tiers []renderStrategy
}

// NewRenderer builds the dispatcher with its tiers in precedence order:
// custom datasets, waterfall/bullet, axis-mapped charts, built-in datasets,
// and finally the unknown-dataset placeholder.
func NewRenderer() *renderer {
	return &renderer{tiers: []renderStrategy{
		customTier{},
		specializedTier{},
		mappedTier{},
		builtinTier{renderers: builtinRenderers},
		unknownTier{},
	}}
}

// Render selects the first tier that applies. It never fails: a renderer
// panic is logged and becomes a no-data placeholder.
func (r *renderer) Render(ctx context.Context, in RenderInput) (plan dto.RenderPlan) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.FromContext(ctx).Error("widget render panicked",
				"widget_id", in.Widget.ID,
				"dataset_id", in.Widget.DatasetID,
				"panic", fmt.Sprint(rec))
			plan = placeholder(dto.ReasonNoData, msgNoData)
			plan.Strategy = dto.StrategyUnknown
			plan.DatasetID = in.Widget.DatasetID
			plan.ChartType = in.Widget.ChartType
		}
	}()

	for _, tier := range r.tiers {
		if !tier.Applies(in) {
			continue
		}
		plan = tier.Render(in)
		plan.Strategy = tier.Strategy()
		plan.DatasetID = in.Widget.DatasetID
		if plan.ChartType == "" {
			plan.ChartType = in.Widget.ChartType
		}
		return plan
	}
	plan = placeholder(dto.ReasonUnknownDataset, msgUnknownDataset)
	plan.Strategy = dto.StrategyUnknown
	plan.DatasetID = in.Widget.DatasetID
	return plan
}

func placeholder(reason dto.PlaceholderReason, msg string) dto.RenderPlan {
	return dto.RenderPlan{
		Kind:        dto.KindPlaceholder,
		Placeholder: &dto.Placeholder{Reason: reason, Message: msg},
	}
}

func isSpecialized(c models.ChartType) bool {
	return c == models.ChartWaterfall || c == models.ChartBullet
}

// customTier handles every custom-prefixed dataset.
type customTier struct{}

var customMappedCharts = []models.ChartType{
	models.ChartLine, models.ChartArea, models.ChartBar, models.ChartPie, models.ChartScatter,
}

func (customTier) Strategy() dto.RenderStrategy { return dto.StrategyCustom }

func (customTier) Applies(in RenderInput) bool { return models.IsCustomDataset(in.Widget.DatasetID) }

func (customTier) Render(in RenderInput) dto.RenderPlan {
	w := in.Widget
	switch {
	case len(in.Rows) == 0:
		return placeholder(dto.ReasonSQLSaved, msgSQLSaved)
	case w.AxisMapping.HasY() && isSpecialized(w.ChartType):
		return renderSpecialized(in)
	case w.AxisMapping.HasY() && slices.Contains(customMappedCharts, w.ChartType):
		return mappedChart(in)
	default:
		plan := previewTable(in)
		if !w.AxisMapping.HasY() && w.ChartType != models.ChartTable {
			plan.Hint = hintMapAxes
		}
		return plan
	}
}

// specializedTier sends waterfall and bullet charts to their renderers
// regardless of dataset.
type specializedTier struct{}

func (specializedTier) Strategy() dto.RenderStrategy { return dto.StrategySpecialized }

func (specializedTier) Applies(in RenderInput) bool { return isSpecialized(in.Widget.ChartType) }

func (specializedTier) Render(in RenderInput) dto.RenderPlan { return renderSpecialized(in) }

func renderSpecialized(in RenderInput) dto.RenderPlan {
	if !in.Widget.AxisMapping.HasY() {
		return placeholder(dto.ReasonMappingRequired, msgMappingRequired)
	}
	if len(in.Rows) == 0 {
		return placeholder(dto.ReasonNoData, msgNoData)
	}
	if in.Widget.ChartType == models.ChartWaterfall {
		return waterfallPlan(in)
	}
	return bulletPlan(in)
}

// mappedTier draws built-in datasets through the generic axis mapping.
type mappedTier struct{}

var genericMappedCharts = []models.ChartType{
	models.ChartLine, models.ChartArea, models.ChartBar, models.ChartPie,
}

func (mappedTier) Strategy() dto.RenderStrategy { return dto.StrategyMapped }

func (mappedTier) Applies(in RenderInput) bool {
	return in.Widget.AxisMapping.HasY() && slices.Contains(genericMappedCharts, in.Widget.ChartType)
}

func (mappedTier) Render(in RenderInput) dto.RenderPlan {
	if len(in.Rows) == 0 {
		return placeholder(dto.ReasonNoData, msgNoData)
	}
	return mappedChart(in)
}

// mappedChart draws one series per Y column on the mapping's X key, with
// each threshold as a horizontal reference line.
func mappedChart(in RenderInput) dto.RenderPlan {
	w := in.Widget
	m := w.AxisMapping
	spec := &dto.ChartSpec{
		Type:   w.ChartType,
		XKey:   m.X,
		Unit:   columnUnit(in.Schema, m.Y[0]),
		Series: make([]dto.Series, 0, len(m.Y)),
	}
	for i, key := range m.Y {
		s := dto.Series{
			Key:    key,
			Label:  columnLabel(in.Schema, key),
			Color:  paletteAt(seriesPalette, i),
			Points: make([]dto.Point, 0, len(in.Rows)),
		}
		for j, r := range in.Rows {
			v, _ := numeric(r[key])
			p := dto.Point{Label: r.String(m.X), Value: v}
			switch w.ChartType {
			case models.ChartScatter:
				if x, ok := numeric(r[m.X]); ok {
					p.X = &x
				}
			case models.ChartPie:
				p.Color = paletteAt(sectorPalette, j)
			}
			s.Points = append(s.Points, p)
		}
		spec.Series = append(spec.Series, s)
	}
	for _, t := range w.Thresholds {
		spec.ReferenceLines = append(spec.ReferenceLines, dto.ReferenceLine{Value: t.Value, Label: t.Label, Color: t.Color})
	}
	return dto.RenderPlan{Kind: dto.KindChart, Chart: spec}
}

// previewTable shows the first rows with the full row count. Columns follow
// the schema when known, else the first row's keys in sorted order.
func previewTable(in RenderInput) dto.RenderPlan {
	var cols []string
	if in.Schema != nil && len(in.Schema.Columns) > 0 {
		for _, c := range in.Schema.Columns {
			cols = append(cols, c.Key)
		}
	} else if len(in.Rows) > 0 {
		for k := range in.Rows[0] {
			cols = append(cols, k)
		}
		slices.Sort(cols)
	}
	n := min(len(in.Rows), previewRowLimit)
	return dto.RenderPlan{
		Kind: dto.KindTable,
		Table: &dto.TablePreview{
			Columns:   cols,
			Rows:      slices.Clone(in.Rows[:n]),
			TotalRows: len(in.Rows),
		},
	}
}

// builtinFunc renders one built-in dataset from its resolved rows.
type builtinFunc func(chart models.ChartType, rows []models.Row) dto.RenderPlan

type builtinTier struct {
	renderers map[string]builtinFunc
}

func (builtinTier) Strategy() dto.RenderStrategy { return dto.StrategyBuiltin }

func (t builtinTier) Applies(in RenderInput) bool {
	_, ok := t.renderers[in.Widget.DatasetID]
	return ok
}

func (t builtinTier) Render(in RenderInput) dto.RenderPlan {
	if len(in.Rows) == 0 {
		return placeholder(dto.ReasonNoData, msgNoData)
	}
	return t.renderers[in.Widget.DatasetID](in.Widget.ChartType, in.Rows)
}

type unknownTier struct{}

func (unknownTier) Strategy() dto.RenderStrategy { return dto.StrategyUnknown }

func (unknownTier) Applies(RenderInput) bool { return true }

func (unknownTier) Render(RenderInput) dto.RenderPlan {
	return placeholder(dto.ReasonUnknownDataset, msgUnknownDataset)
}
