package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

// maxConcurrentResolves bounds how many widgets of one dashboard resolve at once.
const maxConcurrentResolves = 8

type queryExecutor interface {
	Execute(ctx context.Context, uid string, cfg dto.QueryConfig) (dto.QueryResult, error)
}

type widgetRenderer interface {
	Render(ctx context.Context, in RenderInput) dto.RenderPlan
}

type widgetResolver struct {
	registry datasetRegistry
	custom   customDatasets
	engine   queryExecutor
	renderer widgetRenderer
	clockNow func() time.Time

	mu     sync.Mutex
	latest map[string]resolution
}

// resolution is the newest in-flight or finished resolution of one widget.
type resolution struct {
	seq uint64
	key string
}

func NewWidgetResolver(registry datasetRegistry, custom customDatasets, engine queryExecutor, renderer widgetRenderer) *widgetResolver {
	return &widgetResolver{
		registry: registry,
		custom:   custom,
		engine:   engine,
		renderer: renderer,
		clockNow: time.Now,
		latest:   make(map[string]resolution),
	}
}

// SchemaFor finds the schema of a built-in or custom dataset, reloading the
// caller's custom datasets when the id is not known yet. nil means the
// dataset is unknown to both.
func (r *widgetResolver) SchemaFor(ctx context.Context, uid, datasetID string) *models.Schema {
	if e, ok := r.registry.Lookup(datasetID); ok {
		s := e.Schema
		return &s
	}
	if r.custom != nil && models.IsCustomDataset(datasetID) {
		if err := ensureCustom(ctx, r.custom, uid, datasetID); err != nil {
			logger.FromContext(ctx).Warn("failed to load custom datasets", "dataset_id", datasetID, "error", err)
		}
		if s, ok := r.custom.Schema(uid, datasetID); ok {
			return &s
		}
	}
	return nil
}

// QueryFor builds the query a widget resolves to under the dashboard's
// current global filter. The widget's own copy of the filter is only used
// when the dashboard has none.
func (r *widgetResolver) QueryFor(ctx context.Context, uid string, w models.Widget, global *models.GlobalFilter) dto.QueryConfig {
	return r.queryFor(w, global, r.SchemaFor(ctx, uid, w.DatasetID))
}

func (r *widgetResolver) queryFor(w models.Widget, global *models.GlobalFilter, schema *models.Schema) dto.QueryConfig {
	if global == nil {
		global = w.GlobalFilter
	}
	params := MergeFilters(global, w.QueryParams, schema, r.clockNow())
	return dto.QueryConfig{
		DatasetID: w.DatasetID,
		DateRange: params.DateRange,
		Filters:   params.Filters,
		GroupBy:   params.GroupBy,
		Limit:     params.Limit,
	}
}

// Resolve runs merge, query and dispatch for one widget. When a newer
// resolution of the same widget starts before this one finishes, the
// response is marked stale and callers must drop it.
func (r *widgetResolver) Resolve(ctx context.Context, uid string, w models.Widget, global *models.GlobalFilter) (dto.WidgetRenderResponse, error) {
	schema := r.SchemaFor(ctx, uid, w.DatasetID)
	cfg := r.queryFor(w, global, schema)
	ticket := r.begin(uid, w.ID, resolutionKey(w, cfg))

	result, err := r.engine.Execute(ctx, uid, cfg)
	if err != nil {
		return dto.WidgetRenderResponse{}, err
	}

	plan := r.renderer.Render(ctx, RenderInput{
		Widget: w,
		Rows:   result.Data,
		Schema: schema,
	})

	resp := dto.WidgetRenderResponse{
		WidgetID:   w.ID,
		Query:      cfg,
		Meta:       result.Meta,
		Plan:       plan,
		ResolvedAt: r.clockNow(),
	}
	if r.superseded(uid, w.ID, ticket) {
		resp.Stale = true
		logger.FromContext(ctx).Debug("widget resolution superseded", "widget_id", w.ID)
	}
	return resp, nil
}

// ResolveAll resolves every widget concurrently and returns the responses
// in widget order.
func (r *widgetResolver) ResolveAll(ctx context.Context, uid string, widgets []models.Widget, global *models.GlobalFilter) ([]dto.WidgetRenderResponse, error) {
	out := make([]dto.WidgetRenderResponse, len(widgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentResolves)
	for i, w := range widgets {
		g.Go(func() error {
			resp, err := r.Resolve(gctx, uid, w, global)
			if err != nil {
				return err
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// resolutionKey identifies everything that shapes a widget's response.
func resolutionKey(w models.Widget, cfg dto.QueryConfig) string {
	b, err := json.Marshal(struct {
		Query      string
		Chart      models.ChartType
		Mapping    *models.AxisMapping
		Thresholds []models.Threshold
	}{cfg.Key(), w.ChartType, w.AxisMapping, w.Thresholds})
	if err != nil {
		return cfg.Key()
	}
	return string(b)
}

// Forget drops the stale-guard entry of a removed widget.
func (r *widgetResolver) Forget(uid, widgetID string) {
	r.mu.Lock()
	delete(r.latest, uid+"/"+widgetID)
	r.mu.Unlock()
}

func (r *widgetResolver) begin(uid, widgetID, key string) resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uid + "/" + widgetID
	next := resolution{seq: r.latest[id].seq + 1, key: key}
	r.latest[id] = next
	return next
}

// superseded reports whether a resolution with a different config started
// after ticket. A concurrent resolution of the same config yields the same
// rows, so it does not make ticket stale.
func (r *widgetResolver) superseded(uid, widgetID string, ticket resolution) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.latest[uid+"/"+widgetID]
	if !ok {
		return false
	}
	return cur.seq != ticket.seq && cur.key != ticket.key
}
