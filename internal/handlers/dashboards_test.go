package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

type stubLibraryService struct {
	list     []models.SavedDashboard
	home     models.SavedDashboard
	err      error
	lastName string
}

func (s *stubLibraryService) List(_ context.Context, _ string) ([]models.SavedDashboard, error) {
	return s.list, s.err
}

func (s *stubLibraryService) Delete(_ context.Context, _ string, _ access.Capabilities, name string) error {
	s.lastName = name
	return s.err
}

func (s *stubLibraryService) SetHome(_ context.Context, _ string, name string) (models.SavedDashboard, error) {
	s.lastName = name
	return s.home, s.err
}

func (s *stubLibraryService) Home(_ context.Context, _ string) (models.SavedDashboard, error) {
	return s.home, s.err
}

func (s *stubLibraryService) ClearHome(_ context.Context, _ string) error {
	return s.err
}

func TestDashboardLoad_UnescapesName(t *testing.T) {
	lib := &stubLibraryService{}
	builder := &stubBuilderService{}
	resp := &stubResponseHandler{}
	h := NewDashboardHandlers(&Deps{ResponseHandler: resp, LibrarySvc: lib, BuilderSvc: builder})

	req := httptest.NewRequest(http.MethodPost, "/dashboards/x/load", nil)
	req = withChiParam(withUID(req, "uid1"), "name", "%EB%A6%AC%EC%8A%A4%ED%81%AC%20%EC%9A%94%EC%95%BD")
	h.Load(httptest.NewRecorder(), req)

	if builder.lastName != "리스크 요약" {
		t.Fatalf("expected unescaped name, got %q", builder.lastName)
	}
}

func TestDashboardHome_NotFound(t *testing.T) {
	lib := &stubLibraryService{err: errs.NewNotFoundError("home dashboard not set")}
	resp := &stubResponseHandler{}
	h := NewDashboardHandlers(&Deps{ResponseHandler: resp, LibrarySvc: lib})

	h.Home(httptest.NewRecorder(), withUID(httptest.NewRequest(http.MethodGet, "/dashboards/home", nil), "uid1"))

	if _, ok := resp.handleError.(*errs.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", resp.handleError)
	}
}

func TestDashboardSetHome_OK(t *testing.T) {
	lib := &stubLibraryService{home: models.SavedDashboard{Name: "q1"}}
	resp := &stubResponseHandler{}
	h := NewDashboardHandlers(&Deps{ResponseHandler: resp, LibrarySvc: lib})

	req := withChiParam(withUID(httptest.NewRequest(http.MethodPut, "/dashboards/q1/home", nil), "uid1"), "name", "q1")
	h.SetHome(httptest.NewRecorder(), req)

	if !resp.writeSuccessCalled || lib.lastName != "q1" {
		t.Fatalf("expected SetHome for q1, got called=%v name=%q", resp.writeSuccessCalled, lib.lastName)
	}
}
