package services

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/helpers"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

const (
	defaultWidgetW = models.MaxColSpan
	defaultWidgetH = 1
	gridColumns    = models.MaxColSpan
)

// builderStore persists the working canvas.
type builderStore interface {
	GetState(ctx context.Context, uid string) (*models.BuilderState, error)
	SaveState(ctx context.Context, uid string, state *models.BuilderState) error
}

// dashboardLibrary is the named-save list.
type dashboardLibrary interface {
	Get(ctx context.Context, uid, name string) (models.SavedDashboard, error)
	Upsert(ctx context.Context, uid string, d models.SavedDashboard) error
}

// datasetCatalog resolves catalog metadata for built-in and custom datasets.
type datasetCatalog interface {
	Meta(ctx context.Context, uid, datasetID string) (models.DatasetMeta, error)
}

// widgetResolution is the merge, query and dispatch pipeline.
type widgetResolution interface {
	SchemaFor(ctx context.Context, uid, datasetID string) *models.Schema
	Resolve(ctx context.Context, uid string, w models.Widget, global *models.GlobalFilter) (dto.WidgetRenderResponse, error)
	ResolveAll(ctx context.Context, uid string, widgets []models.Widget, global *models.GlobalFilter) ([]dto.WidgetRenderResponse, error)
	Forget(uid, widgetID string)
}

type canvasSession struct {
	mu    sync.Mutex
	state models.BuilderState
	// synced is the UpdatedAt of the last state read from or written to the
	// store. A stored copy with any other stamp came from another instance.
	synced time.Time
}

type builderService struct {
	store    builderStore
	library  dashboardLibrary
	catalog  datasetCatalog
	resolver widgetResolution
	clockNow func() time.Time
	newID    func() string

	sessions  *lru.Cache
	hydrating singleflight.Group
}

// NewBuilderService keeps up to cacheSize user canvases in memory. Evicted
// canvases are reloaded from the store on next access.
func NewBuilderService(store builderStore, library dashboardLibrary, catalog datasetCatalog, resolver widgetResolution, cacheSize int) (*builderService, error) {
	sessions, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &builderService{
		store:    store,
		library:  library,
		catalog:  catalog,
		resolver: resolver,
		clockNow: time.Now,
		newID:    uuid.NewString,
		sessions: sessions,
	}, nil
}

func defaultState() *models.BuilderState {
	return &models.BuilderState{
		Name:         models.DefaultDashboardName,
		Widgets:      []models.Widget{},
		Layouts:      map[string]models.Layout{},
		GlobalFilter: models.DefaultGlobalFilter(),
	}
}

// normalizeState repairs a stored canvas: every widget gets a layout slot
// and stray layouts are dropped.
func normalizeState(st *models.BuilderState) {
	if strings.TrimSpace(st.Name) == "" {
		st.Name = models.DefaultDashboardName
	}
	if st.Widgets == nil {
		st.Widgets = []models.Widget{}
	}
	if st.Layouts == nil {
		st.Layouts = map[string]models.Layout{}
	}
	if !models.ValidDateRangeLabel(st.GlobalFilter.DateRange) || !models.ValidDepartment(st.GlobalFilter.Department) {
		st.GlobalFilter = models.DefaultGlobalFilter()
	}
	ids := make(map[string]struct{}, len(st.Widgets))
	for _, w := range st.Widgets {
		ids[w.ID] = struct{}{}
		if _, ok := st.Layouts[w.ID]; !ok {
			st.Layouts[w.ID] = models.Layout{I: w.ID, X: 0, Y: nextY(st.Layouts), W: models.ClampColSpan(w.ColSpan), H: defaultWidgetH}
		}
	}
	maps.DeleteFunc(st.Layouts, func(id string, _ models.Layout) bool {
		_, ok := ids[id]
		return !ok
	})
}

func cloneState(st models.BuilderState) models.BuilderState {
	out := st
	out.Widgets = slices.Clone(st.Widgets)
	out.Layouts = maps.Clone(st.Layouts)
	if st.Saved != nil {
		saved := *st.Saved
		out.Saved = &saved
	}
	return out
}

// nextY is the first free row below every placed widget.
func nextY(layouts map[string]models.Layout) int {
	y := 0
	for _, l := range layouts {
		y = max(y, l.Y+l.H)
	}
	return y
}

// session returns the user's canvas, hydrating it from the store on first
// use. fresh reports whether this call did the hydration.
func (s *builderService) session(ctx context.Context, uid string) (*canvasSession, bool, error) {
	if v, ok := s.sessions.Get(uid); ok {
		return v.(*canvasSession), false, nil
	}
	v, err, _ := s.hydrating.Do(uid, func() (any, error) {
		if v, ok := s.sessions.Get(uid); ok {
			return v, nil
		}
		st, err := s.store.GetState(ctx, uid)
		var notFound *errs.NotFoundError
		switch {
		case err == nil:
		case errors.As(err, &notFound):
			st = defaultState()
		default:
			return nil, err
		}
		normalizeState(st)
		sess := &canvasSession{state: *st, synced: st.UpdatedAt}
		s.sessions.Add(uid, sess)
		logger.FromContext(ctx).Debug("builder canvas hydrated", "widgets", len(st.Widgets))
		return sess, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*canvasSession), true, nil
}

// lock returns the user's canvas with its lock held. A cached canvas is
// first reloaded when another instance has written the stored copy since
// this one last synced with it.
func (s *builderService) lock(ctx context.Context, uid string) (*canvasSession, error) {
	sess, fresh, err := s.session(ctx, uid)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	if !fresh {
		s.refresh(ctx, uid, sess)
	}
	return sess, nil
}

// refresh must be called with sess.mu held. A failed read keeps the cached
// canvas.
func (s *builderService) refresh(ctx context.Context, uid string, sess *canvasSession) {
	st, err := s.store.GetState(ctx, uid)
	if err != nil {
		var notFound *errs.NotFoundError
		if !errors.As(err, &notFound) {
			logger.FromContext(ctx).Warn("failed to revalidate builder state", "error", err)
		}
		return
	}
	if st.UpdatedAt.Equal(sess.synced) {
		return
	}
	normalizeState(st)
	sess.state = *st
	sess.synced = st.UpdatedAt
	logger.FromContext(ctx).Debug("builder canvas reloaded", "widgets", len(st.Widgets))
}

// mutate applies fn to the canvas under the session lock and persists the
// result. fn must validate before changing anything.
func (s *builderService) mutate(ctx context.Context, uid string, fn func(st *models.BuilderState) error) (models.BuilderState, error) {
	sess, err := s.lock(ctx, uid)
	if err != nil {
		return models.BuilderState{}, err
	}
	defer sess.mu.Unlock()

	if err := fn(&sess.state); err != nil {
		return models.BuilderState{}, err
	}
	// Firestore keeps microseconds; the stamp must read back equal.
	sess.state.UpdatedAt = s.clockNow().UTC().Truncate(time.Microsecond)
	snap := cloneState(sess.state)
	if s.persist(ctx, uid, &snap) {
		sess.synced = snap.UpdatedAt
	}
	return snap, nil
}

// persist is best effort: a failed write is logged and the in-memory
// canvas stays authoritative.
func (s *builderService) persist(ctx context.Context, uid string, st *models.BuilderState) bool {
	if err := s.store.SaveState(ctx, uid, st); err != nil {
		logger.FromContext(ctx).Warn("failed to persist builder state", "error", err)
		return false
	}
	return true
}

func (s *builderService) State(ctx context.Context, uid string) (models.BuilderState, error) {
	sess, err := s.lock(ctx, uid)
	if err != nil {
		return models.BuilderState{}, err
	}
	defer sess.mu.Unlock()
	return cloneState(sess.state), nil
}

func (s *builderService) Rename(ctx context.Context, uid string, caps access.Capabilities, name string) (models.BuilderState, error) {
	if !caps.CanEdit() {
		return models.BuilderState{}, errs.NewForbiddenError("edit the dashboard")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.BuilderState{}, errs.NewValidationError("dashboard name is required")
	}
	return s.mutate(ctx, uid, func(st *models.BuilderState) error {
		st.Name = name
		return nil
	})
}

// SetFilter replaces the dashboard filter and copies it onto every widget.
// Any role may filter.
func (s *builderService) SetFilter(ctx context.Context, uid string, filter models.GlobalFilter) (models.BuilderState, error) {
	if !models.ValidDateRangeLabel(filter.DateRange) {
		return models.BuilderState{}, errs.NewValidationError("invalid date range: " + filter.DateRange)
	}
	if !models.ValidDepartment(filter.Department) {
		return models.BuilderState{}, errs.NewValidationError("invalid department: " + filter.Department)
	}
	return s.mutate(ctx, uid, func(st *models.BuilderState) error {
		st.GlobalFilter = filter
		for i := range st.Widgets {
			gf := filter
			st.Widgets[i].GlobalFilter = &gf
		}
		return nil
	})
}

// AddWidget places a dataset on the canvas below everything else. A dataset
// can only be on the canvas once.
func (s *builderService) AddWidget(ctx context.Context, uid string, caps access.Capabilities, req dto.AddWidgetRequest) (models.Widget, error) {
	if !caps.CanEdit() {
		return models.Widget{}, errs.NewForbiddenError("edit the dashboard")
	}
	meta, err := s.catalog.Meta(ctx, uid, req.DatasetID)
	if err != nil {
		return models.Widget{}, err
	}
	chart := meta.DefaultChart
	if req.ChartType != "" {
		if !req.ChartType.Valid() {
			return models.Widget{}, errs.NewValidationError("invalid chart type: " + string(req.ChartType))
		}
		chart = req.ChartType
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = meta.Label
	}

	var added models.Widget
	_, err = s.mutate(ctx, uid, func(st *models.BuilderState) error {
		if slices.ContainsFunc(st.Widgets, func(w models.Widget) bool { return w.DatasetID == meta.ID }) {
			return errs.NewAlreadyExistsError("dataset is already on the dashboard")
		}
		gf := st.GlobalFilter
		added = models.Widget{
			ID:           s.newID(),
			DatasetID:    meta.ID,
			ChartType:    chart,
			Title:        title,
			ColSpan:      defaultWidgetW,
			GlobalFilter: &gf,
		}
		st.Layouts[added.ID] = models.Layout{I: added.ID, X: 0, Y: nextY(st.Layouts), W: defaultWidgetW, H: defaultWidgetH}
		st.Widgets = append(st.Widgets, added)
		return nil
	})
	if err != nil {
		return models.Widget{}, err
	}
	return added, nil
}

// RemoveWidget deletes the widget and its layout slot together.
func (s *builderService) RemoveWidget(ctx context.Context, uid string, caps access.Capabilities, widgetID string) error {
	if !caps.CanEdit() {
		return errs.NewForbiddenError("edit the dashboard")
	}
	_, err := s.mutate(ctx, uid, func(st *models.BuilderState) error {
		i := widgetIndex(st.Widgets, widgetID)
		if i < 0 {
			return errs.NewNotFoundError("widget not found")
		}
		st.Widgets = slices.Delete(st.Widgets, i, i+1)
		delete(st.Layouts, widgetID)
		return nil
	})
	if err != nil {
		return err
	}
	s.resolver.Forget(uid, widgetID)
	return nil
}

// ReorderWidgets sets the widget order. ids must name every widget exactly once.
func (s *builderService) ReorderWidgets(ctx context.Context, uid string, caps access.Capabilities, ids []string) (models.BuilderState, error) {
	if !caps.CanEdit() {
		return models.BuilderState{}, errs.NewForbiddenError("edit the dashboard")
	}
	return s.mutate(ctx, uid, func(st *models.BuilderState) error {
		if len(ids) != len(st.Widgets) {
			return errs.NewValidationError("widget order must list every widget once")
		}
		ordered := make([]models.Widget, 0, len(ids))
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			i := widgetIndex(st.Widgets, id)
			if _, dup := seen[id]; dup || i < 0 {
				return errs.NewValidationError("widget order must list every widget once")
			}
			seen[id] = struct{}{}
			ordered = append(ordered, st.Widgets[i])
		}
		st.Widgets = ordered
		return nil
	})
}

// UpdateSettings applies settings-panel edits to one widget.
func (s *builderService) UpdateSettings(ctx context.Context, uid string, caps access.Capabilities, widgetID string, req dto.UpdateWidgetSettingsRequest) (models.Widget, error) {
	if !caps.CanEdit() {
		return models.Widget{}, errs.NewForbiddenError("edit the dashboard")
	}
	if req.ChartType != nil && !req.ChartType.Valid() {
		return models.Widget{}, errs.NewValidationError("invalid chart type: " + string(*req.ChartType))
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return models.Widget{}, errs.NewValidationError("widget title is required")
	}
	if req.QueryParams != nil {
		if err := validateQueryParams(req.QueryParams); err != nil {
			return models.Widget{}, err
		}
	}

	var updated models.Widget
	_, err := s.mutate(ctx, uid, func(st *models.BuilderState) error {
		i := widgetIndex(st.Widgets, widgetID)
		if i < 0 {
			return errs.NewNotFoundError("widget not found")
		}
		w := st.Widgets[i]
		if req.AxisMapping != nil {
			if err := validateAxisMapping(s.resolver.SchemaFor(ctx, uid, w.DatasetID), req.AxisMapping); err != nil {
				return err
			}
		}
		if req.ChartType != nil {
			w.ChartType = *req.ChartType
		}
		if req.Title != nil {
			w.Title = strings.TrimSpace(*req.Title)
		}
		if req.AxisMapping != nil {
			if req.AxisMapping.HasY() {
				m := *req.AxisMapping
				m.Y = slices.Clone(m.Y)
				w.AxisMapping = &m
			} else {
				w.AxisMapping = nil
			}
		}
		if req.Thresholds != nil {
			w.Thresholds = withThresholdIDs(*req.Thresholds, s.newID)
		}
		if req.QueryParams != nil {
			qp := *req.QueryParams
			w.QueryParams = &qp
		}
		st.Widgets[i] = w
		updated = w
		return nil
	})
	if err != nil {
		return models.Widget{}, err
	}
	return updated, nil
}

// UpdateLayout moves or resizes a widget. The width is clamped to the grid
// and mirrored into the widget's colSpan.
func (s *builderService) UpdateLayout(ctx context.Context, uid string, caps access.Capabilities, widgetID string, req dto.UpdateLayoutRequest) (models.Layout, error) {
	if !caps.CanEdit() {
		return models.Layout{}, errs.NewForbiddenError("edit the dashboard")
	}
	var out models.Layout
	_, err := s.mutate(ctx, uid, func(st *models.BuilderState) error {
		i := widgetIndex(st.Widgets, widgetID)
		if i < 0 {
			return errs.NewNotFoundError("widget not found")
		}
		l := st.Layouts[widgetID]
		l.I = widgetID
		l.W = models.ClampColSpan(helpers.ValueOr(req.W, l.W))
		l.H = max(helpers.ValueOr(req.H, l.H), 1)
		l.Y = max(helpers.ValueOr(req.Y, l.Y), 0)
		l.X = helpers.Clamp(helpers.ValueOr(req.X, l.X), 0, gridColumns-l.W)

		st.Layouts[widgetID] = l
		st.Widgets[i].ColSpan = l.W
		out = l
		return nil
	})
	if err != nil {
		return models.Layout{}, err
	}
	return out, nil
}

// Save snapshots the canvas and upserts it into the library by name.
func (s *builderService) Save(ctx context.Context, uid string, caps access.Capabilities, name string) (models.SavedDashboard, error) {
	if !caps.CanSave() {
		return models.SavedDashboard{}, errs.NewForbiddenError("save the dashboard")
	}
	var saved models.SavedDashboard
	_, err := s.mutate(ctx, uid, func(st *models.BuilderState) error {
		if n := strings.TrimSpace(name); n != "" {
			st.Name = n
		}
		saved = models.SavedDashboard{
			Name:    st.Name,
			Widgets: slices.Clone(st.Widgets),
			Layouts: maps.Clone(st.Layouts),
			SavedAt: s.clockNow(),
		}
		snap := saved
		st.Saved = &snap
		return nil
	})
	if err != nil {
		return models.SavedDashboard{}, err
	}
	if err := s.library.Upsert(ctx, uid, saved); err != nil {
		return models.SavedDashboard{}, err
	}
	return saved, nil
}

// Reset empties the canvas and restores the default filter. The name is kept.
func (s *builderService) Reset(ctx context.Context, uid string, caps access.Capabilities) (models.BuilderState, error) {
	if !caps.CanReset() {
		return models.BuilderState{}, errs.NewForbiddenError("reset the dashboard")
	}
	var removed []string
	st, err := s.mutate(ctx, uid, func(st *models.BuilderState) error {
		for _, w := range st.Widgets {
			removed = append(removed, w.ID)
		}
		st.Widgets = []models.Widget{}
		st.Layouts = map[string]models.Layout{}
		st.Saved = nil
		st.GlobalFilter = models.DefaultGlobalFilter()
		return nil
	})
	if err != nil {
		return models.BuilderState{}, err
	}
	for _, id := range removed {
		s.resolver.Forget(uid, id)
	}
	return st, nil
}

// LoadSaved replaces the canvas with the named library entry.
func (s *builderService) LoadSaved(ctx context.Context, uid, name string) (models.BuilderState, error) {
	d, err := s.library.Get(ctx, uid, name)
	if err != nil {
		return models.BuilderState{}, err
	}
	return s.mutate(ctx, uid, func(st *models.BuilderState) error {
		st.Name = d.Name
		st.Widgets = slices.Clone(d.Widgets)
		st.Layouts = maps.Clone(d.Layouts)
		snap := d
		st.Saved = &snap
		normalizeState(st)
		return nil
	})
}

func (s *builderService) RenderWidget(ctx context.Context, uid, widgetID string) (dto.WidgetRenderResponse, error) {
	st, err := s.State(ctx, uid)
	if err != nil {
		return dto.WidgetRenderResponse{}, err
	}
	i := widgetIndex(st.Widgets, widgetID)
	if i < 0 {
		return dto.WidgetRenderResponse{}, errs.NewNotFoundError("widget not found")
	}
	return s.resolver.Resolve(ctx, uid, st.Widgets[i], &st.GlobalFilter)
}

func (s *builderService) RenderAll(ctx context.Context, uid string) ([]dto.WidgetRenderResponse, error) {
	st, err := s.State(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolveAll(ctx, uid, st.Widgets, &st.GlobalFilter)
}

func widgetIndex(widgets []models.Widget, id string) int {
	return slices.IndexFunc(widgets, func(w models.Widget) bool { return w.ID == id })
}

func withThresholdIDs(in []models.Threshold, newID func() string) []models.Threshold {
	out := slices.Clone(in)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = newID()
		}
		if out[i].Color == "" {
			out[i].Color = colorDanger
		}
	}
	return out
}

func validateQueryParams(p *models.QueryParams) error {
	if p.Limit < 0 {
		return errs.NewValidationError("limit must not be negative")
	}
	for _, f := range p.Filters {
		if f.Column == "" {
			return errs.NewValidationError("filter column is required")
		}
		if !f.Operator.Valid() {
			return errs.NewValidationError("invalid filter operator: " + string(f.Operator))
		}
	}
	return nil
}

// validateAxisMapping rejects Y columns that cannot be plotted. An unknown
// or empty schema leaves the mapping unchecked.
func validateAxisMapping(schema *models.Schema, m *models.AxisMapping) error {
	if schema == nil || len(schema.Columns) == 0 {
		return nil
	}
	if m.X != "" {
		if _, ok := schema.Column(m.X); !ok {
			return errs.NewValidationError("unknown x column: " + m.X)
		}
	}
	for _, key := range m.Y {
		col, ok := schema.Column(key)
		if !ok {
			return errs.NewValidationError("unknown y column: " + key)
		}
		if col.Role != models.RoleMeasure && !col.Type.Numeric() {
			return errs.NewValidationError("y column is not numeric: " + key)
		}
	}
	return nil
}
