// Package datasets holds the built-in dataset registry: catalog metadata,
// column schemas and the static rows behind each dataset id.
package datasets

import (
	"slices"
	"sync"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

// Entry is one registered dataset. Rows returned by Rows are shared and must
// be treated as read-only.
type Entry struct {
	Meta   models.DatasetMeta
	Schema models.Schema
	rows   func() []models.Row
}

func (e Entry) Rows() []models.Row {
	return slices.Clone(e.rows())
}

// Scalar reports whether the dataset is a single-row snapshot.
func (e Entry) Scalar() bool {
	return e.Schema.DefaultDateColumn == "" && len(e.Schema.Dimensions()) == 0
}

type Registry struct {
	entries map[string]Entry
	order   []string
}

func (r *Registry) Lookup(datasetID string) (Entry, bool) {
	e, ok := r.entries[datasetID]
	return e, ok
}

// All returns every entry in catalog order.
func (r *Registry) All() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

func static(rows []models.Row) func() []models.Row {
	return func() []models.Row { return rows }
}

func snapshot(row models.Row) func() []models.Row {
	rows := []models.Row{row}
	return func() []models.Row { return rows }
}

func lazy(build func() []models.Row) func() []models.Row {
	return sync.OnceValue(build)
}

var producers = map[string]func() []models.Row{
	"npl-trend":         static(nplTrend),
	"credit-grades":     static(creditGrades),
	"sector-exposure":   static(sectorExposure),
	"concentration":     lazy(concentration),
	"npl-summary":       snapshot(nplSummary),
	"pd-lgd-ead":        snapshot(pdLgdEad),
	"var-trend":         lazy(varSeries),
	"stress-scenarios":  static(stressScenarios),
	"sensitivity":       static(sensitivity),
	"var-summary":       snapshot(varSummary),
	"lcr-nsfr-trend":    static(lcrNsfrTrend),
	"maturity-gap":      static(maturityGap),
	"liquidity-buffer":  static(liquidityBuffer),
	"funding-structure": static(fundingStructure),
	"lcr-gauge":         snapshot(lcrSummary),
}

func build() *Registry {
	r := &Registry{entries: make(map[string]Entry, len(catalog))}
	for _, m := range catalog {
		r.entries[m.ID] = Entry{Meta: m, Schema: schemas[m.ID], rows: producers[m.ID]}
		r.order = append(r.order, m.ID)
	}
	return r
}

// Builtin returns the process-wide registry, built on first use.
var Builtin = sync.OnceValue(build)
