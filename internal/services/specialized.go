package services

import (
	"math"
	"strconv"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

const (
	colorPrimary    = "#3b82f6"
	colorSecondary  = "#8b5cf6"
	colorTertiary   = "#06b6d4"
	colorQuaternary = "#10b981"
	colorQuinary    = "#f59e0b"
	colorDanger     = "#ef4444"
	colorNeutral    = "#6b7280"
	colorBaseline   = "#666666"
)

var seriesPalette = []string{colorPrimary, colorSecondary, colorTertiary, colorQuaternary, colorQuinary, colorDanger}

var sectorPalette = []string{
	"#3b82f6", "#8b5cf6", "#06b6d4", "#10b981",
	"#f59e0b", "#ef4444", "#ec4899", "#6366f1",
}

func paletteAt(palette []string, i int) string {
	return palette[i%len(palette)]
}

// WaterfallStep is one signed contribution before layout.
type WaterfallStep struct {
	Name  string
	Value float64
}

const waterfallTotalLabel = "합계"

// ProcessWaterfall lays out steps left to right on a running total and
// appends a total bar. Negative steps hang down from the running total.
func ProcessWaterfall(steps []WaterfallStep) []dto.WaterfallBar {
	bars := make([]dto.WaterfallBar, 0, len(steps)+1)
	running := 0.0
	for _, s := range steps {
		bar := dto.WaterfallBar{
			Name:         s.Name,
			Value:        s.Value,
			DisplayValue: math.Abs(s.Value),
		}
		if s.Value >= 0 {
			bar.Base = running
			bar.Color = colorPrimary
		} else {
			bar.Base = running + s.Value
			bar.Color = colorDanger
		}
		running += s.Value
		bars = append(bars, bar)
	}
	return append(bars, dto.WaterfallBar{
		Name:         waterfallTotalLabel,
		Value:        running,
		Base:         0,
		DisplayValue: running,
		IsTotal:      true,
		Color:        colorNeutral,
	})
}

// BulletRange fills the qualitative bands of a bullet row. A nil target
// counts as zero when sizing the scale.
func BulletRange(value float64, target *float64) (low, mid, top float64) {
	t := 0.0
	if target != nil {
		t = *target
	}
	top = math.Max(math.Max(value*1.4, t*1.2), 1)
	return top * 0.35, top * 0.65, top
}

func bulletItem(label string, value float64, target *float64, unit string) dto.BulletItem {
	low, mid, top := BulletRange(value, target)
	return dto.BulletItem{
		Label:  label,
		Value:  value,
		Target: target,
		Low:    low,
		Mid:    mid,
		Max:    top,
		Unit:   unit,
		Color:  colorPrimary,
	}
}

// waterfallPlan turns each Y column into one bar, valued from the first row.
func waterfallPlan(in RenderInput) dto.RenderPlan {
	first := in.Rows[0]
	steps := make([]WaterfallStep, 0, len(in.Widget.AxisMapping.Y))
	for _, key := range in.Widget.AxisMapping.Y {
		v, _ := numeric(first[key])
		steps = append(steps, WaterfallStep{Name: columnLabel(in.Schema, key), Value: v})
	}
	return dto.RenderPlan{Kind: dto.KindWaterfall, Waterfall: ProcessWaterfall(steps)}
}

// bulletPlan renders a single row as one bullet per Y column, or many rows
// as one bullet each on the first Y column labelled by X. The first
// threshold, when set, is the target marker.
func bulletPlan(in RenderInput) dto.RenderPlan {
	m := in.Widget.AxisMapping
	var target *float64
	if len(in.Widget.Thresholds) > 0 {
		t := in.Widget.Thresholds[0].Value
		target = &t
	}

	var items []dto.BulletItem
	if len(in.Rows) == 1 {
		for _, key := range m.Y {
			v, _ := numeric(in.Rows[0][key])
			items = append(items, bulletItem(columnLabel(in.Schema, key), v, target, columnUnit(in.Schema, key)))
		}
	} else {
		key := m.Y[0]
		unit := columnUnit(in.Schema, key)
		for i, r := range in.Rows {
			label := r.String(m.X)
			if label == "" {
				label = columnLabel(in.Schema, key) + " " + strconv.Itoa(i+1)
			}
			v, _ := numeric(r[key])
			items = append(items, bulletItem(label, v, target, unit))
		}
	}
	return dto.RenderPlan{Kind: dto.KindBullet, Bullets: items}
}

func columnLabel(schema *models.Schema, key string) string {
	if col, ok := schema.Column(key); ok && col.Label != "" {
		return col.Label
	}
	return key
}

func columnUnit(schema *models.Schema, key string) string {
	if col, ok := schema.Column(key); ok {
		return col.Unit
	}
	return ""
}
