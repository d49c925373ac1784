package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

// Each user's workspace collection holds three documents: the working
// canvas, the named-save library and the home dashboard.
const (
	stateDoc   = "state"
	libraryDoc = "library"
	homeDoc    = "home"
)

type libraryDocument struct {
	Dashboards []models.SavedDashboard `firestore:"dashboards"`
	UpdatedAt  time.Time               `firestore:"updatedAt"`
}

type builderStore struct {
	client *firestore.Client
}

func NewBuilderStore(client *firestore.Client) *builderStore {
	return &builderStore{client: client}
}

func (s *builderStore) doc(uid, name string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("workspace").Doc(name)
}

func (s *builderStore) GetState(ctx context.Context, uid string) (*models.BuilderState, error) {
	doc, err := s.doc(uid, stateDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("builder state not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get builder state", err)
	}
	var st models.BuilderState
	if err := doc.DataTo(&st); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse builder state", err)
	}
	return &st, nil
}

func (s *builderStore) SaveState(ctx context.Context, uid string, state *models.BuilderState) error {
	if _, err := s.doc(uid, stateDoc).Set(ctx, state); err != nil {
		return errs.NewDatabaseError("update", "failed to save builder state", err)
	}
	return nil
}

// GetLibrary returns the saved dashboards in library order. A user with no
// saves gets an empty list.
func (s *builderStore) GetLibrary(ctx context.Context, uid string) ([]models.SavedDashboard, error) {
	doc, err := s.doc(uid, libraryDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get dashboard library", err)
	}
	var lib libraryDocument
	if err := doc.DataTo(&lib); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse dashboard library", err)
	}
	return lib.Dashboards, nil
}

func (s *builderStore) SaveLibrary(ctx context.Context, uid string, dashboards []models.SavedDashboard) error {
	lib := libraryDocument{Dashboards: dashboards, UpdatedAt: time.Now()}
	if _, err := s.doc(uid, libraryDoc).Set(ctx, lib); err != nil {
		return errs.NewDatabaseError("update", "failed to save dashboard library", err)
	}
	return nil
}

func (s *builderStore) GetHome(ctx context.Context, uid string) (*models.SavedDashboard, error) {
	doc, err := s.doc(uid, homeDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("home dashboard not set")
		}
		return nil, errs.NewDatabaseError("read", "failed to get home dashboard", err)
	}
	var d models.SavedDashboard
	if err := doc.DataTo(&d); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse home dashboard", err)
	}
	return &d, nil
}

func (s *builderStore) SetHome(ctx context.Context, uid string, d *models.SavedDashboard) error {
	if _, err := s.doc(uid, homeDoc).Set(ctx, d); err != nil {
		return errs.NewDatabaseError("update", "failed to save home dashboard", err)
	}
	return nil
}

func (s *builderStore) ClearHome(ctx context.Context, uid string) error {
	if _, err := s.doc(uid, homeDoc).Delete(ctx); err != nil {
		return errs.NewDatabaseError("delete", "failed to clear home dashboard", err)
	}
	return nil
}
