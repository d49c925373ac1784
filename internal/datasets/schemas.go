package datasets

import "github.com/GregMSThompson/riskbi-backend/internal/models"

const (
	unitPct = "%"
	unitKRW = "억원"
)

func dim(key, label string, t models.SemanticType) models.Column {
	return models.Column{Key: key, Label: label, Type: t, Role: models.RoleDimension, Filterable: true}
}

// measure is a filterable series column.
func measure(key, label string, t models.SemanticType, unit string, aggregatable bool) models.Column {
	return models.Column{Key: key, Label: label, Type: t, Role: models.RoleMeasure, Unit: unit, Aggregatable: aggregatable, Filterable: true}
}

// figure is a snapshot value: not filterable, not aggregatable.
func figure(key, label string, t models.SemanticType, unit string) models.Column {
	return models.Column{Key: key, Label: label, Type: t, Role: models.RoleMeasure, Unit: unit}
}

var schemas = map[string]models.Schema{
	"npl-trend": {
		ID: "npl-trend", DefaultDateColumn: "month", DefaultMeasure: "npl",
		Columns: []models.Column{
			dim("month", "월", models.TypeDate),
			measure("npl", "NPL 비율", models.TypePercent, unitPct, true),
			measure("substandard", "고정", models.TypePercent, unitPct, true),
			measure("doubtful", "회의", models.TypePercent, unitPct, true),
			measure("loss", "추정손실", models.TypePercent, unitPct, true),
		},
	},
	"credit-grades": {
		ID: "credit-grades", DefaultMeasure: "amount", DefaultDimension: "grade",
		Columns: []models.Column{
			dim("grade", "신용등급", models.TypeString),
			measure("amount", "익스포저", models.TypeCurrency, unitKRW, true),
			measure("count", "건수", models.TypeNumber, "", true),
			measure("pct", "비중", models.TypePercent, unitPct, false),
		},
	},
	"sector-exposure": {
		ID: "sector-exposure", DefaultMeasure: "amount", DefaultDimension: "sector",
		Columns: []models.Column{
			dim("sector", "업종", models.TypeString),
			measure("amount", "익스포저", models.TypeCurrency, unitKRW, true),
			measure("pct", "비중", models.TypePercent, unitPct, false),
			measure("pd", "PD", models.TypePercent, unitPct, true),
		},
	},
	"concentration": {
		ID: "concentration", DefaultMeasure: "z", DefaultDimension: "name",
		Columns: []models.Column{
			dim("name", "업종명", models.TypeString),
			measure("x", "PD", models.TypePercent, unitPct, true),
			measure("y", "비중", models.TypePercent, unitPct, true),
			measure("z", "익스포저(조)", models.TypeNumber, "", true),
		},
	},
	"npl-summary": {
		ID: "npl-summary", DefaultMeasure: "nplRatio",
		Columns: []models.Column{
			figure("totalLoan", "총여신", models.TypeCurrency, unitKRW),
			figure("nplAmount", "NPL 금액", models.TypeCurrency, unitKRW),
			figure("nplRatio", "NPL 비율", models.TypePercent, unitPct),
			figure("substandard", "고정", models.TypeCurrency, unitKRW),
			figure("doubtful", "회의", models.TypeCurrency, unitKRW),
			figure("loss", "추정손실", models.TypeCurrency, unitKRW),
			figure("provisionAmount", "충당금", models.TypeCurrency, unitKRW),
			figure("provisionRatio", "충당금 적립률", models.TypePercent, unitPct),
			figure("netNpl", "순 NPL 비율", models.TypePercent, unitPct),
		},
	},
	"pd-lgd-ead": {
		ID: "pd-lgd-ead", DefaultMeasure: "expectedLoss",
		Columns: []models.Column{
			figure("pd", "PD", models.TypePercent, unitPct),
			figure("lgd", "LGD", models.TypePercent, unitPct),
			figure("ead", "EAD", models.TypeCurrency, unitKRW),
			figure("expectedLoss", "기대손실", models.TypeCurrency, unitKRW),
			figure("unexpectedLoss", "비기대손실", models.TypeCurrency, unitKRW),
			figure("rwa", "RWA", models.TypeCurrency, unitKRW),
		},
	},
	"var-trend": {
		ID: "var-trend", DefaultDateColumn: "date", DefaultMeasure: "var",
		Columns: []models.Column{
			dim("date", "날짜", models.TypeDate),
			measure("var", "VaR", models.TypeCurrency, unitKRW, true),
			measure("pnl", "PnL", models.TypeCurrency, unitKRW, true),
			figure("limit", "한도", models.TypeCurrency, unitKRW),
		},
	},
	"stress-scenarios": {
		ID: "stress-scenarios", DefaultMeasure: "total", DefaultDimension: "name",
		Columns: []models.Column{
			dim("name", "시나리오", models.TypeString),
			measure("creditLoss", "신용손실", models.TypeCurrency, unitKRW, true),
			measure("marketLoss", "시장손실", models.TypeCurrency, unitKRW, true),
			measure("liquidityLoss", "유동성손실", models.TypeCurrency, unitKRW, true),
			measure("total", "총손실", models.TypeCurrency, unitKRW, true),
			measure("bisAfter", "충격후 BIS", models.TypePercent, unitPct, false),
		},
	},
	"sensitivity": {
		ID: "sensitivity", DefaultMeasure: "value", DefaultDimension: "factor",
		Columns: []models.Column{
			dim("factor", "리스크 요인", models.TypeString),
			measure("value", "민감도 점수", models.TypeNumber, "", true),
			figure("fullMark", "최대값", models.TypeNumber, ""),
		},
	},
	"var-summary": {
		ID: "var-summary", DefaultMeasure: "current",
		Columns: []models.Column{
			figure("current", "현재 VaR", models.TypeCurrency, unitKRW),
			figure("limit", "한도", models.TypeCurrency, unitKRW),
			figure("utilization", "한도 소진율", models.TypePercent, unitPct),
			figure("avgLast20", "20일 평균", models.TypeCurrency, unitKRW),
			figure("maxLast20", "20일 최대", models.TypeCurrency, unitKRW),
			figure("breachCount30d", "초과 건수(30일)", models.TypeNumber, ""),
		},
	},
	"lcr-nsfr-trend": {
		ID: "lcr-nsfr-trend", DefaultDateColumn: "month", DefaultMeasure: "lcr",
		Columns: []models.Column{
			dim("month", "월", models.TypeDate),
			measure("lcr", "LCR", models.TypePercent, unitPct, true),
			measure("nsfr", "NSFR", models.TypePercent, unitPct, true),
			measure("hqla", "HQLA", models.TypeCurrency, unitKRW, true),
			measure("outflow", "순현금유출", models.TypeCurrency, unitKRW, true),
		},
	},
	"maturity-gap": {
		ID: "maturity-gap", DefaultMeasure: "gap", DefaultDimension: "bucket",
		Columns: []models.Column{
			dim("bucket", "만기 구간", models.TypeString),
			measure("assets", "자산", models.TypeCurrency, unitKRW, true),
			measure("liabilities", "부채", models.TypeCurrency, unitKRW, true),
			measure("gap", "갭", models.TypeCurrency, unitKRW, true),
		},
	},
	"liquidity-buffer": {
		ID: "liquidity-buffer", DefaultDateColumn: "date", DefaultMeasure: "available",
		Columns: []models.Column{
			dim("date", "날짜", models.TypeDate),
			measure("available", "가용 유동성", models.TypeCurrency, unitKRW, true),
			measure("required", "필요 유동성", models.TypeCurrency, unitKRW, true),
			measure("stress", "스트레스 시나리오", models.TypeCurrency, unitKRW, true),
		},
	},
	"funding-structure": {
		ID: "funding-structure", DefaultMeasure: "amount", DefaultDimension: "source",
		Columns: []models.Column{
			dim("source", "조달원천", models.TypeString),
			measure("amount", "금액", models.TypeCurrency, unitKRW, true),
			measure("pct", "비중", models.TypePercent, unitPct, false),
			dim("stability", "안정성", models.TypeString),
		},
	},
	"lcr-gauge": {
		ID: "lcr-gauge", DefaultMeasure: "lcr",
		Columns: []models.Column{
			figure("lcr", "LCR", models.TypePercent, unitPct),
			figure("nsfr", "NSFR", models.TypePercent, unitPct),
			figure("hqla", "HQLA", models.TypeCurrency, unitKRW),
			figure("netOutflow", "순현금유출", models.TypeCurrency, unitKRW),
			figure("level1", "Level 1", models.TypeCurrency, unitKRW),
			figure("level2a", "Level 2A", models.TypeCurrency, unitKRW),
			figure("level2b", "Level 2B", models.TypeCurrency, unitKRW),
			figure("lcrThreshold", "LCR 기준", models.TypePercent, unitPct),
			figure("nsfrThreshold", "NSFR 기준", models.TypePercent, unitPct),
		},
	},
}
