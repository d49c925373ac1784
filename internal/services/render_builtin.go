package services

import (
	"strings"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

// Severity labels for regulatory indicators.
const (
	SeverityNormal  = "normal"
	SeverityCaution = "caution"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// band holds the three regulatory cut-offs of an indicator. For ratios where
// lower is worse (LCR, NSFR) the cut-offs are minimums.
type band struct {
	caution, warning, danger float64
	lowerIsWorse             bool
}

var (
	nplBand  = band{caution: 1.5, warning: 2.0, danger: 3.0}
	lcrBand  = band{caution: 120, warning: 110, danger: 100, lowerIsWorse: true}
	nsfrBand = band{caution: 115, warning: 110, danger: 100, lowerIsWorse: true}
)

const (
	varLimit       = 1500.0
	bisFloor       = 10.5
	gaugeMax       = 200.0
	shortDateStart = 5
)

// Severity grades v against b.
func (b band) Severity(v float64) string {
	if b.lowerIsWorse {
		switch {
		case v < b.danger:
			return SeverityDanger
		case v < b.warning:
			return SeverityWarning
		case v < b.caution:
			return SeverityCaution
		}
		return SeverityNormal
	}
	switch {
	case v >= b.danger:
		return SeverityDanger
	case v >= b.warning:
		return SeverityWarning
	case v >= b.caution:
		return SeverityCaution
	}
	return SeverityNormal
}

var gradeColors = map[string]string{
	"AAA": "#16a34a", "AA": "#22c55e", "A": "#86efac",
	"BBB": "#facc15", "BB": "#f97316", "B": "#ef4444", "CCC이하": "#7f1d1d",
}

// builtinRenderers is keyed by dataset id. Adding a built-in dataset with a
// bespoke view is one entry here.
var builtinRenderers = map[string]builtinFunc{
	"npl-trend":         renderNplTrend,
	"credit-grades":     renderCreditGrades,
	"sector-exposure":   renderSectorExposure,
	"concentration":     renderConcentration,
	"npl-summary":       renderNplSummary,
	"pd-lgd-ead":        renderPdLgdEad,
	"var-trend":         renderVarTrend,
	"stress-scenarios":  renderStressScenarios,
	"sensitivity":       renderSensitivity,
	"var-summary":       renderVarSummary,
	"lcr-nsfr-trend":    renderLcrNsfrTrend,
	"maturity-gap":      renderMaturityGap,
	"liquidity-buffer":  renderLiquidityBuffer,
	"funding-structure": renderFundingStructure,
	"lcr-gauge":         renderLcrGauge,
}

// shortDate drops the year from 2025-03 or 2026-02-26 style labels.
func shortDate(s string) string {
	if len(s) > shortDateStart {
		return s[shortDateStart:]
	}
	return s
}

func series(rows []models.Row, key, label, color string, x func(models.Row) string) dto.Series {
	s := dto.Series{Key: key, Label: label, Color: color, Points: make([]dto.Point, 0, len(rows))}
	for _, r := range rows {
		v, _ := r.Float(key)
		s.Points = append(s.Points, dto.Point{Label: x(r), Value: v})
	}
	return s
}

func byDate(key string) func(models.Row) string {
	return func(r models.Row) string { return shortDate(r.String(key)) }
}

func byName(key string) func(models.Row) string {
	return func(r models.Row) string { return strings.ReplaceAll(r.String(key), "\n", " ") }
}

func chartPlan(spec dto.ChartSpec) dto.RenderPlan {
	return dto.RenderPlan{Kind: dto.KindChart, ChartType: spec.Type, Chart: &spec}
}

func dangerLine(v float64) dto.ReferenceLine {
	return dto.ReferenceLine{Value: v, Color: colorDanger}
}

func colorEach(s *dto.Series, color func(i int, p dto.Point) string) {
	for i := range s.Points {
		s.Points[i].Color = color(i, s.Points[i])
	}
}

func renderNplTrend(chart models.ChartType, rows []models.Row) dto.RenderPlan {
	x := byDate("month")
	if chart == models.ChartLine {
		return chartPlan(dto.ChartSpec{
			Type: models.ChartLine, XKey: "month", Unit: "%",
			Series: []dto.Series{
				series(rows, "npl", "NPL", colorDanger, x),
				series(rows, "substandard", "고정", colorPrimary, x),
			},
			ReferenceLines: []dto.ReferenceLine{dangerLine(nplBand.warning)},
		})
	}
	return chartPlan(dto.ChartSpec{
		Type: models.ChartArea, XKey: "month", Unit: "%", Stacked: true,
		Series: []dto.Series{
			series(rows, "loss", "추정손실", colorDanger, x),
			series(rows, "doubtful", "회의", "#f97316", x),
			series(rows, "substandard", "고정", colorPrimary, x),
		},
	})
}

func renderCreditGrades(chart models.ChartType, rows []models.Row) dto.RenderPlan {
	s := series(rows, "amount", "익스포저", colorPrimary, byName("grade"))
	colorEach(&s, func(_ int, p dto.Point) string {
		if c, ok := gradeColors[p.Label]; ok {
			return c
		}
		return colorPrimary
	})
	if chart == models.ChartPie {
		return chartPlan(dto.ChartSpec{Type: models.ChartPie, XKey: "grade", Unit: "억원", Series: []dto.Series{s}})
	}
	return chartPlan(dto.ChartSpec{Type: models.ChartBar, XKey: "grade", Unit: "억원", Series: []dto.Series{s}})
}

func renderSectorExposure(chart models.ChartType, rows []models.Row) dto.RenderPlan {
	s := series(rows, "amount", "익스포저", colorPrimary, byName("sector"))
	colorEach(&s, func(i int, _ dto.Point) string { return paletteAt(sectorPalette, i) })
	if chart == models.ChartBar {
		return chartPlan(dto.ChartSpec{Type: models.ChartBar, XKey: "sector", Unit: "억원", Horizontal: true, Series: []dto.Series{s}})
	}
	return chartPlan(dto.ChartSpec{Type: models.ChartPie, XKey: "sector", Unit: "억원", Series: []dto.Series{s}})
}

func renderConcentration(_ models.ChartType, rows []models.Row) dto.RenderPlan {
	s := dto.Series{Key: "y", Label: "비중", Points: make([]dto.Point, 0, len(rows))}
	for i, r := range rows {
		x, _ := r.Float("x")
		y, _ := r.Float("y")
		z, _ := r.Float("z")
		s.Points = append(s.Points, dto.Point{
			Label: r.String("name"),
			Value: y,
			X:     &x,
			Size:  &z,
			Color: paletteAt(sectorPalette, i),
		})
	}
	return chartPlan(dto.ChartSpec{Type: models.ChartScatter, XKey: "x", Unit: "%", Series: []dto.Series{s}})
}

type kpiField struct {
	key, label, unit string
	severity         func(float64) string
}

// kpiCards reads fields from a snapshot row. An empty snapshot yields the
// no-data placeholder rather than zero-valued cards.
func kpiCards(rows []models.Row, fields []kpiField) dto.RenderPlan {
	snap := models.ScalarOf(rows)
	if !snap.Present() {
		return placeholder(dto.ReasonNoData, msgNoData)
	}
	cards := make([]dto.KPICard, 0, len(fields))
	for _, f := range fields {
		v, ok := snap.Row().Float(f.key)
		if !ok {
			continue
		}
		c := dto.KPICard{Key: f.key, Label: f.label, Value: v, Unit: f.unit}
		if f.severity != nil {
			c.Severity = f.severity(v)
		}
		cards = append(cards, c)
	}
	if len(cards) == 0 {
		return placeholder(dto.ReasonNoData, msgNoData)
	}
	return dto.RenderPlan{Kind: dto.KindKPI, ChartType: models.ChartKPI, KPIs: cards}
}

// renderNplSummary lays the snapshot out as a two-column label/value table.
func renderNplSummary(_ models.ChartType, rows []models.Row) dto.RenderPlan {
	plan := kpiCards(rows, []kpiField{
		{key: "totalLoan", label: "총여신", unit: "억원"},
		{key: "nplAmount", label: "NPL 금액", unit: "억원"},
		{key: "nplRatio", label: "NPL 비율", unit: "%", severity: nplBand.Severity},
		{key: "provisionAmount", label: "충당금", unit: "억원"},
		{key: "provisionRatio", label: "충당금 적립률", unit: "%"},
		{key: "netNpl", label: "순 NPL 비율", unit: "%"},
	})
	if plan.Kind != dto.KindKPI {
		return plan
	}
	table := make([]models.Row, 0, len(plan.KPIs))
	for _, c := range plan.KPIs {
		r := models.Row{"label": c.Label, "value": c.Value, "unit": c.Unit}
		if c.Severity != "" {
			r["severity"] = c.Severity
		}
		table = append(table, r)
	}
	return dto.RenderPlan{
		Kind:      dto.KindTable,
		ChartType: models.ChartTable,
		Table:     &dto.TablePreview{Columns: []string{"label", "value"}, Rows: table, TotalRows: len(table)},
	}
}

func renderPdLgdEad(_ models.ChartType, rows []models.Row) dto.RenderPlan {
	return kpiCards(rows, []kpiField{
		{key: "pd", label: "PD", unit: "%"},
		{key: "lgd", label: "LGD", unit: "%"},
		{key: "ead", label: "EAD", unit: "억원"},
		{key: "expectedLoss", label: "기대손실", unit: "억원"},
		{key: "unexpectedLoss", label: "비기대손실", unit: "억원"},
		{key: "rwa", label: "RWA", unit: "억원"},
	})
}

func renderVarSummary(_ models.ChartType, rows []models.Row) dto.RenderPlan {
	return kpiCards(rows, []kpiField{
		{key: "current", label: "현재 VaR", unit: "억원"},
		{key: "utilization", label: "한도 소진율", unit: "%"},
		{key: "avgLast20", label: "20일 평균", unit: "억원"},
		{key: "maxLast20", label: "20일 최대", unit: "억원"},
	})
}

// varTrendWindow is how many trailing trading days the VaR chart shows.
const varTrendWindow = 50

func renderVarTrend(chart models.ChartType, rows []models.Row) dto.RenderPlan {
	if len(rows) > varTrendWindow {
		rows = rows[len(rows)-varTrendWindow:]
	}
	t := models.ChartLine
	if chart == models.ChartBar {
		t = models.ChartBar
	}
	return chartPlan(dto.ChartSpec{
		Type: t, XKey: "date", Unit: "억원",
		Series:         []dto.Series{series(rows, "var", "VaR", colorPrimary, byDate("date"))},
		ReferenceLines: []dto.ReferenceLine{dangerLine(varLimit)},
	})
}

func renderStressScenarios(chart models.ChartType, rows []models.Row) dto.RenderPlan {
	if chart == models.ChartTable {
		table := make([]models.Row, 0, len(rows))
		for _, r := range rows {
			bis, _ := r.Float("bisAfter")
			total, _ := r.Float("total")
			sev := SeverityNormal
			if bis < bisFloor {
				sev = SeverityDanger
			}
			table = append(table, models.Row{
				"name":     byName("name")(r),
				"total":    total,
				"bisAfter": bis,
				"severity": sev,
			})
		}
		return dto.RenderPlan{
			Kind:  dto.KindTable,
			Table: &dto.TablePreview{Columns: []string{"name", "total", "bisAfter"}, Rows: table, TotalRows: len(table)},
		}
	}
	x := byName("name")
	return chartPlan(dto.ChartSpec{
		Type: models.ChartBar, XKey: "name", Unit: "억원", Stacked: true,
		Series: []dto.Series{
			series(rows, "creditLoss", "신용손실", colorDanger, x),
			series(rows, "marketLoss", "시장손실", colorQuinary, x),
			series(rows, "liquidityLoss", "유동성손실", colorSecondary, x),
		},
	})
}

func renderSensitivity(_ models.ChartType, rows []models.Row) dto.RenderPlan {
	spec := dto.ChartSpec{
		Type: models.ChartRadar, XKey: "factor",
		Series: []dto.Series{series(rows, "value", "민감도", colorPrimary, byName("factor"))},
	}
	if full, ok := rows[0].Float("fullMark"); ok {
		spec.Max = full
	}
	return chartPlan(spec)
}

func renderLcrNsfrTrend(chart models.ChartType, rows []models.Row) dto.RenderPlan {
	t := models.ChartLine
	if chart == models.ChartArea {
		t = models.ChartArea
	}
	x := byDate("month")
	return chartPlan(dto.ChartSpec{
		Type: t, XKey: "month", Unit: "%",
		Series: []dto.Series{
			series(rows, "lcr", "LCR", colorPrimary, x),
			series(rows, "nsfr", "NSFR", colorQuaternary, x),
		},
		ReferenceLines: []dto.ReferenceLine{dangerLine(lcrBand.danger)},
	})
}

func renderMaturityGap(_ models.ChartType, rows []models.Row) dto.RenderPlan {
	s := series(rows, "gap", "만기 갭", colorPrimary, byName("bucket"))
	colorEach(&s, func(_ int, p dto.Point) string {
		if p.Value >= 0 {
			return colorPrimary
		}
		return colorDanger
	})
	return chartPlan(dto.ChartSpec{
		Type: models.ChartBar, XKey: "bucket", Unit: "억원",
		Series:         []dto.Series{s},
		ReferenceLines: []dto.ReferenceLine{{Value: 0, Color: colorBaseline}},
	})
}

func renderLiquidityBuffer(chart models.ChartType, rows []models.Row) dto.RenderPlan {
	t := models.ChartArea
	if chart == models.ChartLine {
		t = models.ChartLine
	}
	x := byDate("date")
	return chartPlan(dto.ChartSpec{
		Type: t, XKey: "date", Unit: "억원",
		Series: []dto.Series{
			series(rows, "available", "가용 유동성", colorPrimary, x),
			series(rows, "required", "필요 유동성", colorDanger, x),
		},
	})
}

func renderFundingStructure(chart models.ChartType, rows []models.Row) dto.RenderPlan {
	s := series(rows, "amount", "금액", colorPrimary, byName("source"))
	colorEach(&s, func(i int, _ dto.Point) string { return paletteAt(sectorPalette, i) })
	t := models.ChartPie
	if chart == models.ChartBar {
		t = models.ChartBar
	}
	return chartPlan(dto.ChartSpec{Type: t, XKey: "source", Unit: "억원", Series: []dto.Series{s}})
}

func renderLcrGauge(_ models.ChartType, rows []models.Row) dto.RenderPlan {
	snap := models.ScalarOf(rows)
	if !snap.Present() {
		return placeholder(dto.ReasonNoData, msgNoData)
	}
	ticks := []float64{lcrBand.danger, lcrBand.warning, lcrBand.caution}
	var gauges []dto.Gauge
	if v, ok := snap.Row().Float("lcr"); ok {
		gauges = append(gauges, dto.Gauge{Label: "LCR", Value: v, Max: gaugeMax, Ticks: ticks, Color: colorPrimary, Severity: lcrBand.Severity(v)})
	}
	if v, ok := snap.Row().Float("nsfr"); ok {
		gauges = append(gauges, dto.Gauge{Label: "NSFR", Value: v, Max: gaugeMax, Ticks: ticks, Color: colorQuaternary, Severity: nsfrBand.Severity(v)})
	}
	if len(gauges) == 0 {
		return placeholder(dto.ReasonNoData, msgNoData)
	}
	return dto.RenderPlan{Kind: dto.KindGauge, ChartType: models.ChartGauge, Gauges: gauges}
}
