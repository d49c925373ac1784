package datasets

import "github.com/GregMSThompson/riskbi-backend/internal/models"

var categoryLabels = map[models.Category]string{
	models.CategoryCredit:    "신용리스크",
	models.CategoryMarket:    "시장리스크",
	models.CategoryLiquidity: "유동성리스크",
	models.CategoryCustom:    "사용자 정의",
}

// CategoryOrder is the catalog panel ordering.
var CategoryOrder = []models.Category{
	models.CategoryCredit,
	models.CategoryMarket,
	models.CategoryLiquidity,
	models.CategoryCustom,
}

func CategoryLabel(c models.Category) string {
	return categoryLabels[c]
}

func meta(id, label string, cat models.Category, desc string, def models.ChartType, charts ...models.ChartType) models.DatasetMeta {
	return models.DatasetMeta{
		ID:               id,
		Label:            label,
		Category:         cat,
		CategoryLabel:    categoryLabels[cat],
		Description:      desc,
		CompatibleCharts: charts,
		DefaultChart:     def,
	}
}

const (
	credit    = models.CategoryCredit
	market    = models.CategoryMarket
	liquidity = models.CategoryLiquidity
)

var catalog = []models.DatasetMeta{
	meta("npl-trend", "NPL 추이", credit, "12개월 NPL 구성 추이", models.ChartArea, models.ChartArea, models.ChartLine),
	meta("credit-grades", "신용등급 분포", credit, "7단계 등급별 익스포저", models.ChartBar, models.ChartBar, models.ChartPie),
	meta("sector-exposure", "업종별 익스포저", credit, "8개 업종별 익스포저 분포", models.ChartPie, models.ChartPie, models.ChartBar),
	meta("concentration", "집중리스크", credit, "PD vs 업종별 비중 산포도", models.ChartScatter, models.ChartScatter),
	meta("npl-summary", "NPL 요약", credit, "NPL 핵심 지표 요약", models.ChartKPI, models.ChartKPI, models.ChartTable),
	meta("pd-lgd-ead", "PD / LGD / EAD", credit, "신용리스크 측정 지표 카드", models.ChartKPI, models.ChartKPI),

	meta("var-trend", "VaR 추이", market, "최근 60 거래일 VaR 추이", models.ChartLine, models.ChartLine, models.ChartBar),
	meta("stress-scenarios", "스트레스 시나리오", market, "6개 시나리오 손실 분해", models.ChartBar, models.ChartBar, models.ChartTable),
	meta("sensitivity", "민감도 분석", market, "리스크 요인별 민감도 레이더", models.ChartRadar, models.ChartRadar),
	meta("var-summary", "VaR 요약", market, "VaR 핵심 지표 카드", models.ChartKPI, models.ChartKPI, models.ChartTable),

	meta("lcr-nsfr-trend", "LCR / NSFR 추이", liquidity, "12개월 LCR/NSFR 추이", models.ChartLine, models.ChartLine, models.ChartArea),
	meta("maturity-gap", "만기 갭", liquidity, "만기 구간별 자산/부채 갭", models.ChartBar, models.ChartBar),
	meta("liquidity-buffer", "유동성 버퍼", liquidity, "HQLA vs 순현금유출 추이", models.ChartArea, models.ChartArea, models.ChartLine),
	meta("funding-structure", "조달구조", liquidity, "조달원천별 비중", models.ChartPie, models.ChartPie, models.ChartBar),
	meta("lcr-gauge", "LCR / NSFR 게이지", liquidity, "규제비율 반원 게이지", models.ChartGauge, models.ChartGauge),
}
