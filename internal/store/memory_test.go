package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

func TestMemoryStoreMissingDocumentsAreNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var notFound *errs.NotFoundError

	if _, err := s.GetState(ctx, "u1"); !errors.As(err, &notFound) {
		t.Fatalf("GetState: expected NotFoundError, got %v", err)
	}
	if _, err := s.GetHome(ctx, "u1"); !errors.As(err, &notFound) {
		t.Fatalf("GetHome: expected NotFoundError, got %v", err)
	}
	if _, err := s.GetUser(ctx, "u1"); !errors.As(err, &notFound) {
		t.Fatalf("GetUser: expected NotFoundError, got %v", err)
	}
	if err := s.DeleteEntry(ctx, "u1", "custom-x"); !errors.As(err, &notFound) {
		t.Fatalf("DeleteEntry: expected NotFoundError, got %v", err)
	}
	lib, err := s.GetLibrary(ctx, "u1")
	if err != nil || len(lib) != 0 {
		t.Fatalf("GetLibrary: expected empty, got %v %v", lib, err)
	}
}

func TestMemoryStoreStateIsCopied(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	st := &models.BuilderState{Name: "a", Widgets: []models.Widget{{ID: "w1"}}}
	if err := s.SaveState(ctx, "u1", st); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	st.Widgets[0].ID = "changed"

	got, err := s.GetState(ctx, "u1")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if got.Widgets[0].ID != "w1" {
		t.Fatalf("expected stored widget to be isolated, got %q", got.Widgets[0].ID)
	}
}

func TestMemoryStoreCatalogKeepsCreationOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"custom-a", "custom-b", "custom-c"} {
		e := &models.CustomDatasetEntry{Dataset: models.DatasetMeta{ID: id}}
		if err := s.CreateEntry(ctx, "u1", e); err != nil {
			t.Fatalf("CreateEntry %s: %v", id, err)
		}
	}
	var exists *errs.AlreadyExistsError
	if err := s.CreateEntry(ctx, "u1", &models.CustomDatasetEntry{Dataset: models.DatasetMeta{ID: "custom-b"}}); !errors.As(err, &exists) {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}
	if err := s.DeleteEntry(ctx, "u1", "custom-b"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}

	entries, err := s.ListEntries(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 || entries[0].Dataset.ID != "custom-a" || entries[1].Dataset.ID != "custom-c" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestMemoryStoreMessagesOldestFirstWithLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 2, 26, 9, 0, 0, 0, time.UTC)

	for id, offset := range map[string]time.Duration{"m1": 0, "m2": time.Minute, "m3": 2 * time.Minute} {
		if err := s.SaveMessage(ctx, "u1", models.ChatMessage{ID: id, CreatedAt: base.Add(offset)}); err != nil {
			t.Fatalf("SaveMessage: %v", err)
		}
	}

	msgs, err := s.ListMessages(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m2" || msgs[1].ID != "m3" {
		t.Fatalf("unexpected order: %+v", msgs)
	}

	if err := s.DeleteMessages(ctx, "u1"); err != nil {
		t.Fatalf("DeleteMessages: %v", err)
	}
	msgs, _ = s.ListMessages(ctx, "u1", 0)
	if len(msgs) != 0 {
		t.Fatalf("expected no messages after delete, got %d", len(msgs))
	}
}
