package store

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

type UserStore interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
}

type BuilderStore interface {
	GetState(ctx context.Context, uid string) (*models.BuilderState, error)
	SaveState(ctx context.Context, uid string, state *models.BuilderState) error
	GetLibrary(ctx context.Context, uid string) ([]models.SavedDashboard, error)
	SaveLibrary(ctx context.Context, uid string, dashboards []models.SavedDashboard) error
	GetHome(ctx context.Context, uid string) (*models.SavedDashboard, error)
	SetHome(ctx context.Context, uid string, d *models.SavedDashboard) error
	ClearHome(ctx context.Context, uid string) error
}

type CatalogStore interface {
	ListEntries(ctx context.Context, uid string) ([]models.CustomDatasetEntry, error)
	CreateEntry(ctx context.Context, uid string, entry *models.CustomDatasetEntry) error
	DeleteEntry(ctx context.Context, uid, datasetID string) error
}

type AssistantStore interface {
	SaveMessage(ctx context.Context, uid string, msg models.ChatMessage) error
	GetMessage(ctx context.Context, uid, messageID string) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, uid string, limit int) ([]models.ChatMessage, error)
	DeleteMessages(ctx context.Context, uid string) error
}

// Set is every store one backend provides.
type Set struct {
	Users     UserStore
	Builder   BuilderStore
	Catalog   CatalogStore
	Assistant AssistantStore
}

func NewFirestoreSet(client *firestore.Client, sealer Sealer) Set {
	return Set{
		Users:     NewUserStore(client),
		Builder:   NewBuilderStore(client),
		Catalog:   NewCatalogStore(client, sealer),
		Assistant: NewAssistantStore(client),
	}
}

func NewMemorySet() Set {
	m := NewMemoryStore()
	return Set{Users: m, Builder: m, Catalog: m, Assistant: m}
}
