package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/riskbi-backend/internal/crypto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "test-project")
	if err != nil {
		t.Fatalf("firestore client error: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestBuilderStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	store := NewBuilderStore(client)
	uid := "builder-user"

	now := time.Date(2026, time.February, 26, 9, 0, 0, 0, time.UTC)
	state := &models.BuilderState{
		Name:         models.DefaultDashboardName,
		Widgets:      []models.Widget{{ID: "w1", DatasetID: "npl-trend", ChartType: models.ChartLine, Title: "NPL"}},
		Layouts:      map[string]models.Layout{"w1": {X: 0, Y: 0, W: 3, H: 1}},
		GlobalFilter: models.GlobalFilter{DateRange: "12m", Department: "all"},
		UpdatedAt:    now,
	}
	if err := store.SaveState(ctx, uid, state); err != nil {
		t.Fatalf("save state error: %v", err)
	}
	got, err := store.GetState(ctx, uid)
	if err != nil {
		t.Fatalf("get state error: %v", err)
	}
	if len(got.Widgets) != 1 || got.Widgets[0].DatasetID != "npl-trend" || got.Layouts["w1"].W != 3 {
		t.Fatalf("unexpected state: %+v", got)
	}

	lib := []models.SavedDashboard{{Name: "b", SavedAt: now}, {Name: "a", SavedAt: now}}
	if err := store.SaveLibrary(ctx, uid, lib); err != nil {
		t.Fatalf("save library error: %v", err)
	}
	gotLib, err := store.GetLibrary(ctx, uid)
	if err != nil {
		t.Fatalf("get library error: %v", err)
	}
	if len(gotLib) != 2 || gotLib[0].Name != "b" {
		t.Fatalf("library order not kept: %+v", gotLib)
	}

	if err := store.ClearHome(ctx, uid); err != nil {
		t.Fatalf("clear home error: %v", err)
	}
	var notFound *errs.NotFoundError
	if _, err := store.GetHome(ctx, uid); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for cleared home, got %v", err)
	}
}

func TestCatalogStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	store := NewCatalogStore(client, crypto.Plain{})
	uid := "catalog-user"

	entry := &models.CustomDatasetEntry{
		Dataset:    models.DatasetMeta{ID: "custom-emu", Label: "Saved SQL", Category: models.CategoryCustom},
		SourceType: models.SourceSQL,
		Query:      "SELECT 1",
		CreatedAt:  time.Now(),
	}
	if err := store.CreateEntry(ctx, uid, entry); err != nil {
		t.Fatalf("create entry error: %v", err)
	}
	t.Cleanup(func() { _ = store.DeleteEntry(ctx, uid, "custom-emu") })

	var exists *errs.AlreadyExistsError
	if err := store.CreateEntry(ctx, uid, entry); !errors.As(err, &exists) {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}

	entries, err := store.ListEntries(ctx, uid)
	if err != nil {
		t.Fatalf("list entries error: %v", err)
	}
	if len(entries) != 1 || entries[0].Query != "SELECT 1" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
