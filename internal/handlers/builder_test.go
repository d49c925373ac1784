package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

type stubBuilderService struct {
	state       models.BuilderState
	stateErr    error
	widget      models.Widget
	widgetErr   error
	layout      models.Layout
	saved       models.SavedDashboard
	saveErr     error
	render      dto.WidgetRenderResponse
	renderAll   []dto.WidgetRenderResponse
	renderErr   error
	lastCaps    access.Capabilities
	lastAddReq  dto.AddWidgetRequest
	lastID      string
	lastName    string
	lastIDs     []string
	lastFilter  models.GlobalFilter
	lastLayout  dto.UpdateLayoutRequest
	lastSetting dto.UpdateWidgetSettingsRequest
}

func (s *stubBuilderService) State(_ context.Context, _ string) (models.BuilderState, error) {
	return s.state, s.stateErr
}

func (s *stubBuilderService) Rename(_ context.Context, _ string, caps access.Capabilities, name string) (models.BuilderState, error) {
	s.lastCaps, s.lastName = caps, name
	return s.state, s.stateErr
}

func (s *stubBuilderService) SetFilter(_ context.Context, _ string, filter models.GlobalFilter) (models.BuilderState, error) {
	s.lastFilter = filter
	return s.state, s.stateErr
}

func (s *stubBuilderService) AddWidget(_ context.Context, _ string, caps access.Capabilities, req dto.AddWidgetRequest) (models.Widget, error) {
	s.lastCaps, s.lastAddReq = caps, req
	return s.widget, s.widgetErr
}

func (s *stubBuilderService) RemoveWidget(_ context.Context, _ string, caps access.Capabilities, widgetID string) error {
	s.lastCaps, s.lastID = caps, widgetID
	return s.widgetErr
}

func (s *stubBuilderService) ReorderWidgets(_ context.Context, _ string, caps access.Capabilities, ids []string) (models.BuilderState, error) {
	s.lastCaps, s.lastIDs = caps, ids
	return s.state, s.stateErr
}

func (s *stubBuilderService) UpdateSettings(_ context.Context, _ string, caps access.Capabilities, widgetID string, req dto.UpdateWidgetSettingsRequest) (models.Widget, error) {
	s.lastCaps, s.lastID, s.lastSetting = caps, widgetID, req
	return s.widget, s.widgetErr
}

func (s *stubBuilderService) UpdateLayout(_ context.Context, _ string, caps access.Capabilities, widgetID string, req dto.UpdateLayoutRequest) (models.Layout, error) {
	s.lastCaps, s.lastID, s.lastLayout = caps, widgetID, req
	return s.layout, s.widgetErr
}

func (s *stubBuilderService) Save(_ context.Context, _ string, caps access.Capabilities, name string) (models.SavedDashboard, error) {
	s.lastCaps, s.lastName = caps, name
	return s.saved, s.saveErr
}

func (s *stubBuilderService) Reset(_ context.Context, _ string, caps access.Capabilities) (models.BuilderState, error) {
	s.lastCaps = caps
	return s.state, s.stateErr
}

func (s *stubBuilderService) LoadSaved(_ context.Context, _ string, name string) (models.BuilderState, error) {
	s.lastName = name
	return s.state, s.stateErr
}

func (s *stubBuilderService) RenderWidget(_ context.Context, _ string, widgetID string) (dto.WidgetRenderResponse, error) {
	s.lastID = widgetID
	return s.render, s.renderErr
}

func (s *stubBuilderService) RenderAll(_ context.Context, _ string) ([]dto.WidgetRenderResponse, error) {
	return s.renderAll, s.renderErr
}

func TestBuilderState_OK(t *testing.T) {
	svc := &stubBuilderService{state: models.BuilderState{Name: models.DefaultDashboardName}}
	resp := &stubResponseHandler{}
	h := NewBuilderHandlers(&Deps{ResponseHandler: resp, BuilderSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodGet, "/builder", nil), "uid1")
	h.State(httptest.NewRecorder(), req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
}

func TestAddWidget_PassesCapabilities(t *testing.T) {
	svc := &stubBuilderService{widget: models.Widget{ID: "w1", DatasetID: "npl-trend"}}
	resp := &stubResponseHandler{}
	h := NewBuilderHandlers(&Deps{ResponseHandler: resp, BuilderSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/builder/widgets", strings.NewReader(`{"datasetId":"npl-trend"}`))
	req = withRole(withUID(req, "uid1"), access.RoleEditor)
	h.AddWidget(httptest.NewRecorder(), req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("expected WriteSuccess with 201, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if svc.lastAddReq.DatasetID != "npl-trend" {
		t.Errorf("unexpected dataset passed to service: %q", svc.lastAddReq.DatasetID)
	}
	if svc.lastCaps.Role() != access.RoleEditor {
		t.Errorf("expected editor capabilities, got %q", svc.lastCaps.Role())
	}
}

func TestAddWidget_InvalidJSON(t *testing.T) {
	svc := &stubBuilderService{}
	resp := &stubResponseHandler{}
	h := NewBuilderHandlers(&Deps{ResponseHandler: resp, BuilderSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodPost, "/builder/widgets", strings.NewReader(`{bad`)), "uid1")
	h.AddWidget(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
	if svc.lastAddReq.DatasetID != "" {
		t.Fatal("service should not be called")
	}
}

func TestAddWidget_ForbiddenPropagates(t *testing.T) {
	svc := &stubBuilderService{widgetErr: errs.NewForbiddenError("edit widgets")}
	resp := &stubResponseHandler{}
	h := NewBuilderHandlers(&Deps{ResponseHandler: resp, BuilderSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/builder/widgets", strings.NewReader(`{"datasetId":"npl-trend"}`))
	req = withRole(withUID(req, "uid1"), access.RoleViewer)
	h.AddWidget(httptest.NewRecorder(), req)

	var forbidden *errs.ForbiddenError
	if !errors.As(resp.handleError, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", resp.handleError)
	}
}

func TestUpdateLayout_UsesPathParam(t *testing.T) {
	svc := &stubBuilderService{layout: models.Layout{I: "w9", W: 2, H: 1}}
	resp := &stubResponseHandler{}
	h := NewBuilderHandlers(&Deps{ResponseHandler: resp, BuilderSvc: svc})

	req := httptest.NewRequest(http.MethodPut, "/builder/widgets/w9/layout", strings.NewReader(`{"w":2}`))
	req = withChiParam(withUID(req, "uid1"), "widgetId", "w9")
	h.UpdateLayout(httptest.NewRecorder(), req)

	if svc.lastID != "w9" {
		t.Fatalf("expected widget w9, got %q", svc.lastID)
	}
	if svc.lastLayout.W == nil || *svc.lastLayout.W != 2 || svc.lastLayout.H != nil {
		t.Fatalf("unexpected layout request: %+v", svc.lastLayout)
	}
}

func TestSave_EmptyBodyKeepsName(t *testing.T) {
	svc := &stubBuilderService{saved: models.SavedDashboard{Name: "q1"}}
	resp := &stubResponseHandler{}
	h := NewBuilderHandlers(&Deps{ResponseHandler: resp, BuilderSvc: svc})

	req := withUID(httptest.NewRequest(http.MethodPost, "/builder/save", nil), "uid1")
	h.Save(httptest.NewRecorder(), req)

	if !resp.writeSuccessCalled {
		t.Fatalf("expected WriteSuccess, got error %v", resp.handleError)
	}
	if svc.lastName != "" {
		t.Fatalf("expected empty name, got %q", svc.lastName)
	}
}

func TestSetFilter_DecodesFilter(t *testing.T) {
	svc := &stubBuilderService{}
	resp := &stubResponseHandler{}
	h := NewBuilderHandlers(&Deps{ResponseHandler: resp, BuilderSvc: svc})

	req := httptest.NewRequest(http.MethodPut, "/builder/filter", strings.NewReader(`{"dateRange":"3m","department":"retail"}`))
	h.SetFilter(httptest.NewRecorder(), withUID(req, "uid1"))

	if svc.lastFilter.DateRange != models.DateRange3M || svc.lastFilter.Department != models.DepartmentRetail {
		t.Fatalf("unexpected filter: %+v", svc.lastFilter)
	}
}

func TestRenderAll_ServiceError(t *testing.T) {
	svc := &stubBuilderService{renderErr: errors.New("boom")}
	resp := &stubResponseHandler{}
	h := NewBuilderHandlers(&Deps{ResponseHandler: resp, BuilderSvc: svc})

	h.RenderAll(httptest.NewRecorder(), withUID(httptest.NewRequest(http.MethodGet, "/builder/render", nil), "uid1"))

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
}
