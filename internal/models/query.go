package models

type FilterOperator string

const (
	OpEq       FilterOperator = "eq"
	OpGte      FilterOperator = "gte"
	OpLte      FilterOperator = "lte"
	OpContains FilterOperator = "contains"
)

func (o FilterOperator) Valid() bool {
	switch o {
	case OpEq, OpGte, OpLte, OpContains:
		return true
	default:
		return false
	}
}

// DateRange bounds are ISO dates (YYYY-MM-DD) or months (YYYY-MM).
type DateRange struct {
	From string `firestore:"from" json:"from"`
	To   string `firestore:"to" json:"to"`
}

type Filter struct {
	Column   string         `firestore:"column" json:"column"`
	Operator FilterOperator `firestore:"operator" json:"operator"`
	Value    any            `firestore:"value" json:"value"`
}

// QueryParams are the widget-level overrides merged with the dashboard filter.
type QueryParams struct {
	DateRange *DateRange `firestore:"dateRange,omitempty" json:"dateRange,omitempty"`
	Filters   []Filter   `firestore:"filters,omitempty" json:"filters,omitempty"`
	GroupBy   string     `firestore:"groupBy,omitempty" json:"groupBy,omitempty"`
	Limit     int        `firestore:"limit,omitempty" json:"limit,omitempty"`
}

// HasFilterOn reports whether the params already filter on column.
func (p *QueryParams) HasFilterOn(column string) bool {
	if p == nil {
		return false
	}
	for _, f := range p.Filters {
		if f.Column == column {
			return true
		}
	}
	return false
}

const (
	DateRange1M  = "1m"
	DateRange3M  = "3m"
	DateRange6M  = "6m"
	DateRange12M = "12m"
	DateRangeYTD = "ytd"

	DepartmentAll       = "all"
	DepartmentRetail    = "retail"
	DepartmentCorporate = "corporate"
	DepartmentTreasury  = "treasury"
	DepartmentIB        = "ib"
)

// GlobalFilter is the dashboard-wide filter bar selection.
type GlobalFilter struct {
	DateRange  string `firestore:"dateRange" json:"dateRange"`
	Department string `firestore:"department" json:"department"`
}

func DefaultGlobalFilter() GlobalFilter {
	return GlobalFilter{DateRange: DateRange12M, Department: DepartmentAll}
}

func ValidDateRangeLabel(label string) bool {
	switch label {
	case DateRange1M, DateRange3M, DateRange6M, DateRange12M, DateRangeYTD:
		return true
	default:
		return false
	}
}

func ValidDepartment(dept string) bool {
	switch dept {
	case DepartmentAll, DepartmentRetail, DepartmentCorporate, DepartmentTreasury, DepartmentIB:
		return true
	default:
		return false
	}
}
