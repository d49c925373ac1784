package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

type memoryUser struct {
	profile  *models.User
	state    *models.BuilderState
	library  []models.SavedDashboard
	home     *models.SavedDashboard
	catalog  []models.CustomDatasetEntry
	messages map[string]models.ChatMessage
}

// memoryStore satisfies every store interface in process memory. It backs
// STORAGE=memory runs and is lost on restart.
type memoryStore struct {
	mu    sync.RWMutex
	users map[string]*memoryUser
}

func NewMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[string]*memoryUser)}
}

// user must be called with mu held for writing.
func (s *memoryStore) user(uid string) *memoryUser {
	u, ok := s.users[uid]
	if !ok {
		u = &memoryUser{messages: make(map[string]models.ChatMessage)}
		s.users[uid] = u
	}
	return u
}

func (s *memoryStore) lookup(uid string) (*memoryUser, bool) {
	u, ok := s.users[uid]
	return u, ok
}

func (s *memoryStore) GetUser(_ context.Context, uid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.lookup(uid)
	if !ok || u.profile == nil {
		return nil, errs.NewNotFoundError("user not found")
	}
	p := *u.profile
	return &p, nil
}

func (s *memoryStore) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *user
	s.user(user.UID).profile = &p
	return nil
}

func (s *memoryStore) GetState(_ context.Context, uid string) (*models.BuilderState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.lookup(uid)
	if !ok || u.state == nil {
		return nil, errs.NewNotFoundError("builder state not found")
	}
	st := *u.state
	st.Widgets = slices.Clone(st.Widgets)
	st.Layouts = maps.Clone(st.Layouts)
	return &st, nil
}

func (s *memoryStore) SaveState(_ context.Context, uid string, state *models.BuilderState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *state
	st.Widgets = slices.Clone(st.Widgets)
	st.Layouts = maps.Clone(st.Layouts)
	s.user(uid).state = &st
	return nil
}

func (s *memoryStore) GetLibrary(_ context.Context, uid string) ([]models.SavedDashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.lookup(uid)
	if !ok {
		return nil, nil
	}
	return slices.Clone(u.library), nil
}

func (s *memoryStore) SaveLibrary(_ context.Context, uid string, dashboards []models.SavedDashboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(uid).library = slices.Clone(dashboards)
	return nil
}

func (s *memoryStore) GetHome(_ context.Context, uid string) (*models.SavedDashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.lookup(uid)
	if !ok || u.home == nil {
		return nil, errs.NewNotFoundError("home dashboard not set")
	}
	d := *u.home
	return &d, nil
}

func (s *memoryStore) SetHome(_ context.Context, uid string, d *models.SavedDashboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	home := *d
	s.user(uid).home = &home
	return nil
}

func (s *memoryStore) ClearHome(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(uid).home = nil
	return nil
}

func (s *memoryStore) ListEntries(_ context.Context, uid string) ([]models.CustomDatasetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.lookup(uid)
	if !ok {
		return nil, nil
	}
	return slices.Clone(u.catalog), nil
}

func (s *memoryStore) CreateEntry(_ context.Context, uid string, entry *models.CustomDatasetEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(uid)
	for _, e := range u.catalog {
		if e.Dataset.ID == entry.Dataset.ID {
			return errs.NewAlreadyExistsError("dataset already exists: " + entry.Dataset.ID)
		}
	}
	u.catalog = append(u.catalog, *entry)
	return nil
}

func (s *memoryStore) DeleteEntry(_ context.Context, uid, datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(uid)
	i := slices.IndexFunc(u.catalog, func(e models.CustomDatasetEntry) bool { return e.Dataset.ID == datasetID })
	if i < 0 {
		return errs.NewNotFoundError("dataset not found: " + datasetID)
	}
	u.catalog = slices.Delete(u.catalog, i, i+1)
	return nil
}

func (s *memoryStore) SaveMessage(_ context.Context, uid string, msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(uid).messages[msg.ID] = msg
	return nil
}

func (s *memoryStore) GetMessage(_ context.Context, uid, messageID string) (*models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.lookup(uid)
	if !ok {
		return nil, errs.NewNotFoundError("message not found")
	}
	msg, ok := u.messages[messageID]
	if !ok {
		return nil, errs.NewNotFoundError("message not found")
	}
	return &msg, nil
}

func (s *memoryStore) ListMessages(_ context.Context, uid string, limit int) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.lookup(uid)
	if !ok {
		return nil, nil
	}
	out := make([]models.ChatMessage, 0, len(u.messages))
	for _, m := range u.messages {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *memoryStore) DeleteMessages(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(uid).messages = make(map[string]models.ChatMessage)
	return nil
}
