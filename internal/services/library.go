package services

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

// libraryStore persists the named saves and the home dashboard. The library
// is stored as one ordered list per user.
type libraryStore interface {
	GetLibrary(ctx context.Context, uid string) ([]models.SavedDashboard, error)
	SaveLibrary(ctx context.Context, uid string, dashboards []models.SavedDashboard) error
	GetHome(ctx context.Context, uid string) (*models.SavedDashboard, error)
	SetHome(ctx context.Context, uid string, d *models.SavedDashboard) error
	ClearHome(ctx context.Context, uid string) error
}

type libraryService struct {
	store libraryStore
	mu    sync.Mutex
}

func NewLibraryService(store libraryStore) *libraryService {
	return &libraryService{store: store}
}

func (s *libraryService) List(ctx context.Context, uid string) ([]models.SavedDashboard, error) {
	list, err := s.store.GetLibrary(ctx, uid)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.SavedDashboard{}
	}
	return list, nil
}

func (s *libraryService) Get(ctx context.Context, uid, name string) (models.SavedDashboard, error) {
	list, err := s.store.GetLibrary(ctx, uid)
	if err != nil {
		return models.SavedDashboard{}, err
	}
	i := dashboardIndex(list, name)
	if i < 0 {
		return models.SavedDashboard{}, errs.NewNotFoundError("dashboard not found: " + name)
	}
	return list[i], nil
}

// Upsert replaces the save with the same name in place, or puts d first.
// A failed write is logged and not returned.
func (s *libraryService) Upsert(ctx context.Context, uid string, d models.SavedDashboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.store.GetLibrary(ctx, uid)
	if err != nil {
		return err
	}
	list = upsertDashboard(list, d)
	if err := s.store.SaveLibrary(ctx, uid, list); err != nil {
		logger.FromContext(ctx).Warn("failed to persist dashboard library", "error", err)
	}
	return nil
}

func (s *libraryService) Delete(ctx context.Context, uid string, caps access.Capabilities, name string) error {
	if !caps.CanSave() {
		return errs.NewForbiddenError("delete saved dashboards")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.store.GetLibrary(ctx, uid)
	if err != nil {
		return err
	}
	i := dashboardIndex(list, name)
	if i < 0 {
		return errs.NewNotFoundError("dashboard not found: " + name)
	}
	list = slices.Delete(list, i, i+1)
	if err := s.store.SaveLibrary(ctx, uid, list); err != nil {
		logger.FromContext(ctx).Warn("failed to persist dashboard library", "error", err)
	}
	return nil
}

// SetHome copies a library entry into the home slot. Later changes to the
// library entry do not follow.
func (s *libraryService) SetHome(ctx context.Context, uid, name string) (models.SavedDashboard, error) {
	d, err := s.Get(ctx, uid, name)
	if err != nil {
		return models.SavedDashboard{}, err
	}
	if err := s.store.SetHome(ctx, uid, &d); err != nil {
		logger.FromContext(ctx).Warn("failed to persist home dashboard", "error", err)
	}
	return d, nil
}

func (s *libraryService) Home(ctx context.Context, uid string) (models.SavedDashboard, error) {
	d, err := s.store.GetHome(ctx, uid)
	if err != nil {
		return models.SavedDashboard{}, err
	}
	return *d, nil
}

func (s *libraryService) ClearHome(ctx context.Context, uid string) error {
	err := s.store.ClearHome(ctx, uid)
	var notFound *errs.NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		logger.FromContext(ctx).Warn("failed to clear home dashboard", "error", err)
	}
	return nil
}

func dashboardIndex(list []models.SavedDashboard, name string) int {
	return slices.IndexFunc(list, func(d models.SavedDashboard) bool { return d.Name == name })
}

func upsertDashboard(list []models.SavedDashboard, d models.SavedDashboard) []models.SavedDashboard {
	if i := dashboardIndex(list, d.Name); i >= 0 {
		out := slices.Clone(list)
		out[i] = d
		return out
	}
	return append([]models.SavedDashboard{d}, list...)
}
