package datasets

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

type row = models.Row

var nplTrend = []row{
	{"month": "2025-03", "npl": 1.52, "substandard": 0.92, "doubtful": 0.41, "loss": 0.19},
	{"month": "2025-04", "npl": 1.55, "substandard": 0.94, "doubtful": 0.42, "loss": 0.19},
	{"month": "2025-05", "npl": 1.58, "substandard": 0.95, "doubtful": 0.43, "loss": 0.20},
	{"month": "2025-06", "npl": 1.61, "substandard": 0.97, "doubtful": 0.44, "loss": 0.20},
	{"month": "2025-07", "npl": 1.64, "substandard": 0.98, "doubtful": 0.45, "loss": 0.21},
	{"month": "2025-08", "npl": 1.67, "substandard": 1.00, "doubtful": 0.45, "loss": 0.22},
	{"month": "2025-09", "npl": 1.70, "substandard": 1.02, "doubtful": 0.46, "loss": 0.22},
	{"month": "2025-10", "npl": 1.72, "substandard": 1.03, "doubtful": 0.47, "loss": 0.22},
	{"month": "2025-11", "npl": 1.75, "substandard": 1.05, "doubtful": 0.47, "loss": 0.23},
	{"month": "2025-12", "npl": 1.78, "substandard": 1.07, "doubtful": 0.48, "loss": 0.23},
	{"month": "2026-01", "npl": 1.80, "substandard": 1.08, "doubtful": 0.48, "loss": 0.24},
	{"month": "2026-02", "npl": 1.82, "substandard": 1.09, "doubtful": 0.49, "loss": 0.24},
}

var nplSummary = row{
	"totalLoan": 185420.0, "nplAmount": 3375.0, "nplRatio": 1.82,
	"substandard": 2019.0, "doubtful": 907.0, "loss": 449.0,
	"provisionAmount": 2940.0, "provisionRatio": 87.1, "netNpl": 0.24,
}

var pdLgdEad = row{
	"pd": 1.24, "lgd": 42.3, "ead": 185420.0,
	"expectedLoss": 972.0, "unexpectedLoss": 3240.0, "rwa": 98350.0,
}

var creditGrades = []row{
	{"grade": "AAA", "amount": 24580.0, "count": 328.0, "pct": 13.3},
	{"grade": "AA", "amount": 38920.0, "count": 612.0, "pct": 21.0},
	{"grade": "A", "amount": 45230.0, "count": 1842.0, "pct": 24.4},
	{"grade": "BBB", "amount": 32180.0, "count": 4231.0, "pct": 17.4},
	{"grade": "BB", "amount": 25640.0, "count": 8562.0, "pct": 13.8},
	{"grade": "B", "amount": 13280.0, "count": 12840.0, "pct": 7.2},
	{"grade": "CCC이하", "amount": 5590.0, "count": 6218.0, "pct": 3.0},
}

var sectorExposure = []row{
	{"sector": "제조업", "amount": 42850.0, "pct": 23.1, "pd": 1.12},
	{"sector": "부동산", "amount": 38920.0, "pct": 21.0, "pd": 2.31},
	{"sector": "도소매", "amount": 24680.0, "pct": 13.3, "pd": 1.85},
	{"sector": "금융서비스", "amount": 22140.0, "pct": 11.9, "pd": 0.48},
	{"sector": "건설업", "amount": 18560.0, "pct": 10.0, "pd": 2.67},
	{"sector": "IT/통신", "amount": 15230.0, "pct": 8.2, "pd": 0.92},
	{"sector": "운수/물류", "amount": 12840.0, "pct": 6.9, "pd": 1.43},
	{"sector": "기타", "amount": 10200.0, "pct": 5.5, "pd": 1.78},
}

// concentration is derived from sector exposure: PD against share, sized by
// exposure in 조원.
func concentration() []row {
	out := make([]row, 0, len(sectorExposure))
	for _, s := range sectorExposure {
		pd, _ := s.Float("pd")
		pct, _ := s.Float("pct")
		amount, _ := s.Float("amount")
		out = append(out, row{"name": s["sector"], "x": pd, "y": pct, "z": amount / 1000})
	}
	return out
}

var varSummary = row{
	"current": 1250.0, "limit": 1500.0, "utilization": 83.3,
	"avgLast20": 1198.0, "maxLast20": 1385.0, "breachCount30d": 0.0,
	"delta": 680.0, "gamma": -42.0, "vega": 890.0, "rho": 125.0,
}

var stressScenarios = []row{
	{"name": "글로벌 금융위기\n(2008년 유형)", "creditLoss": 8420.0, "marketLoss": 4850.0, "liquidityLoss": 1200.0, "total": 14470.0, "bisAfter": 11.8},
	{"name": "코로나19\n(2020년 유형)", "creditLoss": 5680.0, "marketLoss": 6320.0, "liquidityLoss": 980.0, "total": 12980.0, "bisAfter": 12.4},
	{"name": "금리 급등\n(+300bp)", "creditLoss": 2340.0, "marketLoss": 8960.0, "liquidityLoss": 450.0, "total": 11750.0, "bisAfter": 12.8},
	{"name": "부동산 폭락\n(-30%)", "creditLoss": 9840.0, "marketLoss": 2180.0, "liquidityLoss": 680.0, "total": 12700.0, "bisAfter": 12.5},
	{"name": "환율 급등\n(+20%)", "creditLoss": 1250.0, "marketLoss": 5640.0, "liquidityLoss": 320.0, "total": 7210.0, "bisAfter": 13.9},
	{"name": "복합 위기\n시나리오", "creditLoss": 12480.0, "marketLoss": 9230.0, "liquidityLoss": 2100.0, "total": 23810.0, "bisAfter": 9.2},
}

var sensitivity = []row{
	{"factor": "금리리스크", "value": 85.0, "fullMark": 100.0},
	{"factor": "환율리스크", "value": 72.0, "fullMark": 100.0},
	{"factor": "주식리스크", "value": 58.0, "fullMark": 100.0},
	{"factor": "신용스프레드", "value": 67.0, "fullMark": 100.0},
	{"factor": "원자재리스크", "value": 34.0, "fullMark": 100.0},
	{"factor": "변동성리스크", "value": 61.0, "fullMark": 100.0},
}

var lcrNsfrTrend = []row{
	{"month": "2025-03", "lcr": 158.2, "nsfr": 124.5, "hqla": 48200.0, "outflow": 30470.0},
	{"month": "2025-04", "lcr": 155.8, "nsfr": 123.2, "hqla": 47800.0, "outflow": 30680.0},
	{"month": "2025-05", "lcr": 153.4, "nsfr": 122.8, "hqla": 47350.0, "outflow": 30870.0},
	{"month": "2025-06", "lcr": 151.2, "nsfr": 122.1, "hqla": 46980.0, "outflow": 31070.0},
	{"month": "2025-07", "lcr": 149.8, "nsfr": 121.4, "hqla": 46720.0, "outflow": 31190.0},
	{"month": "2025-08", "lcr": 148.3, "nsfr": 120.8, "hqla": 46340.0, "outflow": 31250.0},
	{"month": "2025-09", "lcr": 147.1, "nsfr": 120.3, "hqla": 46120.0, "outflow": 31360.0},
	{"month": "2025-10", "lcr": 145.9, "nsfr": 119.8, "hqla": 45840.0, "outflow": 31420.0},
	{"month": "2025-11", "lcr": 144.5, "nsfr": 119.2, "hqla": 45560.0, "outflow": 31510.0},
	{"month": "2025-12", "lcr": 143.8, "nsfr": 118.9, "hqla": 45280.0, "outflow": 31490.0},
	{"month": "2026-01", "lcr": 143.1, "nsfr": 118.9, "hqla": 45120.0, "outflow": 31530.0},
	{"month": "2026-02", "lcr": 142.3, "nsfr": 118.7, "hqla": 44980.0, "outflow": 31610.0},
}

var lcrSummary = row{
	"lcr": 142.3, "nsfr": 118.7, "hqla": 44980.0, "netOutflow": 31610.0,
	"level1": 38420.0, "level2a": 4820.0, "level2b": 1740.0,
	"lcrThreshold": 100.0, "nsfrThreshold": 100.0,
}

var maturityGap = []row{
	{"bucket": "1일이내", "assets": 18420.0, "liabilities": 22840.0, "gap": -4420.0},
	{"bucket": "1주이내", "assets": 12680.0, "liabilities": 18340.0, "gap": -5660.0},
	{"bucket": "1개월이내", "assets": 24850.0, "liabilities": 28920.0, "gap": -4070.0},
	{"bucket": "3개월이내", "assets": 32480.0, "liabilities": 29840.0, "gap": 2640.0},
	{"bucket": "6개월이내", "assets": 28640.0, "liabilities": 24180.0, "gap": 4460.0},
	{"bucket": "1년이내", "assets": 35920.0, "liabilities": 28460.0, "gap": 7460.0},
	{"bucket": "1년초과", "assets": 98420.0, "liabilities": 99630.0, "gap": -1210.0},
}

var liquidityBuffer = []row{
	{"date": "2026-02", "available": 44980.0, "required": 31610.0, "stress": 52840.0},
	{"date": "2026-03", "available": 43200.0, "required": 32100.0, "stress": 53200.0},
	{"date": "2026-04", "available": 42800.0, "required": 32400.0, "stress": 53600.0},
	{"date": "2026-05", "available": 42500.0, "required": 32600.0, "stress": 54100.0},
	{"date": "2026-06", "available": 41800.0, "required": 33000.0, "stress": 54500.0},
}

var fundingStructure = []row{
	{"source": "원화예금", "amount": 142580.0, "pct": 48.2, "stability": "high"},
	{"source": "외화예금", "amount": 28420.0, "pct": 9.6, "stability": "medium"},
	{"source": "발행채권", "amount": 48640.0, "pct": 16.4, "stability": "high"},
	{"source": "콜머니", "amount": 8920.0, "pct": 3.0, "stability": "low"},
	{"source": "RP매도", "amount": 15680.0, "pct": 5.3, "stability": "low"},
	{"source": "자기자본", "amount": 28480.0, "pct": 9.6, "stability": "high"},
	{"source": "기타", "amount": 23280.0, "pct": 7.9, "stability": "medium"},
}

const (
	varSeriesDays = 250
	varLimit      = 1500.0
)

// VarSeriesEnd is the last calendar day covered by the VaR trend.
var VarSeriesEnd = time.Date(2026, time.February, 26, 0, 0, 0, 0, time.UTC)

// varSeries is a weekday-only random walk over the 250 calendar days ending
// at VarSeriesEnd. The seed is fixed so every process serves the same rows.
func varSeries() []row {
	rng := rand.New(rand.NewPCG(2026, 226))
	v := 1150.0
	out := make([]row, 0, varSeriesDays)
	for i := varSeriesDays - 1; i >= 0; i-- {
		day := VarSeriesEnd.AddDate(0, 0, -i)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		v += (rng.Float64() - 0.48) * 40
		v = math.Max(800, math.Min(1480, v))
		pnl := (rng.Float64()-0.45)*400 - 50
		out = append(out, row{
			"date":  day.Format("2006-01-02"),
			"var":   math.Round(v),
			"pnl":   math.Round(pnl),
			"limit": varLimit,
		})
	}
	return out
}
