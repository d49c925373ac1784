package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/riskbi-backend/internal/access"
	"github.com/GregMSThompson/riskbi-backend/internal/dto"
	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

type stubCatalogService struct {
	entries    []dto.CatalogEntry
	entry      dto.CatalogEntry
	err        error
	sqlCalled  bool
	lastReq    dto.AddCatalogRequest
	lastFile   string
	lastBody   string
	lastID     string
	lastCaps   access.Capabilities
	schema     models.Schema
	recommends dto.RecommendationResponse
}

func (s *stubCatalogService) List(_ context.Context, _ string) ([]dto.CatalogEntry, error) {
	return s.entries, s.err
}

func (s *stubCatalogService) Schema(_ context.Context, _, datasetID string) (models.Schema, error) {
	s.lastID = datasetID
	return s.schema, s.err
}

func (s *stubCatalogService) Recommendations(_ context.Context, _, datasetID string) (dto.RecommendationResponse, error) {
	s.lastID = datasetID
	return s.recommends, s.err
}

func (s *stubCatalogService) AddSQL(_ context.Context, _ string, caps access.Capabilities, req dto.AddCatalogRequest) (dto.CatalogEntry, error) {
	s.sqlCalled, s.lastCaps, s.lastReq = true, caps, req
	return s.entry, s.err
}

func (s *stubCatalogService) AddUpload(_ context.Context, _ string, caps access.Capabilities, req dto.AddCatalogRequest, fileName string, r io.Reader) (dto.CatalogEntry, error) {
	b, _ := io.ReadAll(r)
	s.lastCaps, s.lastReq, s.lastFile, s.lastBody = caps, req, fileName, string(b)
	return s.entry, s.err
}

func (s *stubCatalogService) Remove(_ context.Context, _ string, caps access.Capabilities, datasetID string) error {
	s.lastCaps, s.lastID = caps, datasetID
	return s.err
}

func TestCatalogAdd_SQL(t *testing.T) {
	svc := &stubCatalogService{}
	resp := &stubResponseHandler{}
	h := NewCatalogHandlers(&Deps{ResponseHandler: resp, CatalogSvc: svc})

	body := `{"title":"연체 현황","sourceType":"sql","query":"SELECT * FROM loans"}`
	req := httptest.NewRequest(http.MethodPost, "/catalog", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withRole(withUID(req, "uid1"), access.RoleAdmin)
	h.Add(httptest.NewRecorder(), req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("expected WriteSuccess with 201, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if !svc.sqlCalled || svc.lastReq.Query != "SELECT * FROM loans" {
		t.Fatalf("unexpected request passed to service: %+v", svc.lastReq)
	}
}

func TestCatalogAdd_ExcelAsJSONRejected(t *testing.T) {
	svc := &stubCatalogService{}
	resp := &stubResponseHandler{}
	h := NewCatalogHandlers(&Deps{ResponseHandler: resp, CatalogSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/catalog", strings.NewReader(`{"title":"x","sourceType":"excel"}`))
	req.Header.Set("Content-Type", "application/json")
	h.Add(httptest.NewRecorder(), withUID(req, "uid1"))

	if _, ok := resp.handleError.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %v", resp.handleError)
	}
	if svc.sqlCalled {
		t.Fatal("service should not be called")
	}
}

func TestCatalogAdd_Multipart(t *testing.T) {
	svc := &stubCatalogService{}
	resp := &stubResponseHandler{}
	h := NewCatalogHandlers(&Deps{ResponseHandler: resp, CatalogSvc: svc})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "지점별 실적")
	_ = mw.WriteField("category", "credit")
	fw, err := mw.CreateFormFile("file", "branches.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write([]byte("branch,amount\nA,10\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/catalog", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h.Add(httptest.NewRecorder(), withUID(req, "uid1"))

	if !resp.writeSuccessCalled {
		t.Fatalf("expected WriteSuccess, got error %v", resp.handleError)
	}
	if svc.lastFile != "branches.csv" || svc.lastReq.Category != models.CategoryCredit || svc.lastReq.SourceType != models.SourceExcel {
		t.Fatalf("unexpected upload request: file=%q req=%+v", svc.lastFile, svc.lastReq)
	}
	if !strings.HasPrefix(svc.lastBody, "branch,amount") {
		t.Fatalf("file body not forwarded: %q", svc.lastBody)
	}
}

func TestCatalogAdd_MultipartWithoutFile(t *testing.T) {
	svc := &stubCatalogService{}
	resp := &stubResponseHandler{}
	h := NewCatalogHandlers(&Deps{ResponseHandler: resp, CatalogSvc: svc})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "no file")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/catalog", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h.Add(httptest.NewRecorder(), withUID(req, "uid1"))

	if _, ok := resp.handleError.(*errs.ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %v", resp.handleError)
	}
}

func TestCatalogRemove_UsesPathParam(t *testing.T) {
	svc := &stubCatalogService{}
	resp := &stubResponseHandler{}
	h := NewCatalogHandlers(&Deps{ResponseHandler: resp, CatalogSvc: svc})

	req := httptest.NewRequest(http.MethodDelete, "/catalog/custom-1", nil)
	req = withChiParam(withRole(withUID(req, "uid1"), access.RoleAdmin), "datasetId", "custom-1")
	h.Remove(httptest.NewRecorder(), req)

	if svc.lastID != "custom-1" || !svc.lastCaps.CanDeleteCatalog() {
		t.Fatalf("unexpected remove call: id=%q role=%q", svc.lastID, svc.lastCaps.Role())
	}
}
