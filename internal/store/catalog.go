package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

// Sealer protects saved SQL text at rest.
type Sealer interface {
	Seal(ctx context.Context, plaintext string) (string, error)
	Open(ctx context.Context, sealed string) (string, error)
}

type catalogStore struct {
	client *firestore.Client
	sealer Sealer
}

func NewCatalogStore(client *firestore.Client, sealer Sealer) *catalogStore {
	return &catalogStore{client: client, sealer: sealer}
}

func (s *catalogStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("catalog")
}

func (s *catalogStore) CreateEntry(ctx context.Context, uid string, entry *models.CustomDatasetEntry) error {
	doc := *entry
	if doc.Query != "" {
		sealed, err := s.sealer.Seal(ctx, doc.Query)
		if err != nil {
			return err
		}
		doc.Query = sealed
	}
	_, err := s.collection(uid).Doc(entry.Dataset.ID).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewAlreadyExistsError("dataset already exists: " + entry.Dataset.ID)
		}
		return errs.NewDatabaseError("create", "failed to create catalog entry", err)
	}
	return nil
}

// ListEntries returns the user's custom datasets in creation order.
func (s *catalogStore) ListEntries(ctx context.Context, uid string) ([]models.CustomDatasetEntry, error) {
	iter := s.collection(uid).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []models.CustomDatasetEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list catalog entries", err)
		}
		var e models.CustomDatasetEntry
		if err := doc.DataTo(&e); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse catalog entry", err)
		}
		if e.Query != "" {
			if e.Query, err = s.sealer.Open(ctx, e.Query); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *catalogStore) DeleteEntry(ctx context.Context, uid, datasetID string) error {
	_, err := s.collection(uid).Doc(datasetID).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("dataset not found: " + datasetID)
		}
		return errs.NewDatabaseError("delete", "failed to delete catalog entry", err)
	}
	return nil
}
