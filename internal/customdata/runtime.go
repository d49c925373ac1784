// Package customdata serves user-added datasets through the same row and
// schema lookups as the built-in registry.
package customdata

import (
	"context"
	"sync"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

// entrySource is the persisted custom catalog.
type entrySource interface {
	ListEntries(ctx context.Context, uid string) ([]models.CustomDatasetEntry, error)
}

type userSet struct {
	rows    map[string][]models.Row
	schemas map[string]models.Schema
}

// Runtime keeps each user's hydrated custom datasets in memory.
type Runtime struct {
	source entrySource

	mu    sync.RWMutex
	users map[string]*userSet
}

// NewRuntime returns a runtime reading from source. A nil source makes
// Hydrate a no-op.
func NewRuntime(source entrySource) *Runtime {
	return &Runtime{source: source, users: make(map[string]*userSet)}
}

// Hydrate reloads uid's custom datasets from the persisted catalog,
// replacing whatever was loaded before.
func (rt *Runtime) Hydrate(ctx context.Context, uid string) error {
	if rt.source == nil {
		return nil
	}
	entries, err := rt.source.ListEntries(ctx, uid)
	if err != nil {
		return err
	}
	rt.Load(uid, entries)
	logger.FromContext(ctx).Debug("custom datasets hydrated", "count", len(entries))
	return nil
}

// Load installs entries for uid. Excel entries keep their rows and get an
// inferred schema; SQL entries get no rows and an empty schema.
func (rt *Runtime) Load(uid string, entries []models.CustomDatasetEntry) {
	set := &userSet{
		rows:    make(map[string][]models.Row, len(entries)),
		schemas: make(map[string]models.Schema, len(entries)),
	}
	for _, e := range entries {
		id := e.Dataset.ID
		switch {
		case e.SourceType == models.SourceExcel && e.ParsedFile != nil:
			set.rows[id] = e.ParsedFile.Rows
			set.schemas[id] = InferSchema(id, e.ParsedFile.Columns, e.ParsedFile.Rows)
		case e.SourceType == models.SourceSQL:
			set.rows[id] = []models.Row{}
			set.schemas[id] = models.Schema{ID: id, Columns: []models.Column{}}
		}
	}

	rt.mu.Lock()
	rt.users[uid] = set
	rt.mu.Unlock()
}

func (rt *Runtime) Rows(uid, datasetID string) ([]models.Row, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	set, ok := rt.users[uid]
	if !ok {
		return nil, false
	}
	rows, ok := set.rows[datasetID]
	return rows, ok
}

func (rt *Runtime) Schema(uid, datasetID string) (models.Schema, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	set, ok := rt.users[uid]
	if !ok {
		return models.Schema{}, false
	}
	s, ok := set.schemas[datasetID]
	return s, ok
}

// Hydrated reports whether uid has been loaded since the process started.
func (rt *Runtime) Hydrated(uid string) bool {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	_, ok := rt.users[uid]
	return ok
}
