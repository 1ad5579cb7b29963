package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/internal/suppliers"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/pagination"
)

type stubSupplierService struct {
	createFn func(ctx context.Context, input suppliers.CreateSupplierDTO) (*suppliers.SupplierDTO, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*suppliers.SupplierDTO, error)
	listFn   func(ctx context.Context, filter suppliers.ListFilter, page pagination.Params) (pagination.Page[suppliers.SupplierDTO], error)
	updateFn func(ctx context.Context, id uuid.UUID, input suppliers.UpdateSupplierDTO) (*suppliers.SupplierDTO, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (s *stubSupplierService) Create(ctx context.Context, input suppliers.CreateSupplierDTO) (*suppliers.SupplierDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &suppliers.SupplierDTO{}, nil
}

func (s *stubSupplierService) GetByID(ctx context.Context, id uuid.UUID) (*suppliers.SupplierDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &suppliers.SupplierDTO{}, nil
}

func (s *stubSupplierService) List(ctx context.Context, filter suppliers.ListFilter, page pagination.Params) (pagination.Page[suppliers.SupplierDTO], error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter, page)
	}
	return pagination.Page[suppliers.SupplierDTO]{}, nil
}

func (s *stubSupplierService) Update(ctx context.Context, id uuid.UUID, input suppliers.UpdateSupplierDTO) (*suppliers.SupplierDTO, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, input)
	}
	return &suppliers.SupplierDTO{}, nil
}

func (s *stubSupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestSupplierCreateSplitsLegacyCredentials(t *testing.T) {
	logg := testLogger()
	var captured suppliers.CreateSupplierDTO
	svc := &stubSupplierService{
		createFn: func(ctx context.Context, input suppliers.CreateSupplierDTO) (*suppliers.SupplierDTO, error) {
			captured = input
			return &suppliers.SupplierDTO{ID: uuid.New(), Name: input.Name}, nil
		},
	}

	body := `{"name":"Bolt Parts GmbH","code":"boltparts","api_url":"https://shop.boltparts.de","api_credentials":"ck_abc:cs_secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/suppliers", strings.NewReader(body))
	rec := httptest.NewRecorder()
	SupplierCreate(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.APIKey == nil || *captured.APIKey != "ck_abc" {
		t.Fatalf("expected split api key, got %v", captured.APIKey)
	}
	if captured.APISecret == nil || *captured.APISecret != "cs_secret" {
		t.Fatalf("expected split api secret, got %v", captured.APISecret)
	}
}

func TestSupplierCreateRejectsCombinedAndSplitCredentials(t *testing.T) {
	logg := testLogger()
	svc := &stubSupplierService{
		createFn: func(ctx context.Context, input suppliers.CreateSupplierDTO) (*suppliers.SupplierDTO, error) {
			t.Fatal("service must not be reached")
			return nil, nil
		},
	}

	body := `{"name":"Bolt Parts GmbH","code":"boltparts","api_key":"ck_abc","api_credentials":"ck_abc:cs_secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/suppliers", strings.NewReader(body))
	rec := httptest.NewRecorder()
	SupplierCreate(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSupplierCreateValidatesBody(t *testing.T) {
	logg := testLogger()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/suppliers", strings.NewReader(`{"code":"boltparts"}`))
	rec := httptest.NewRecorder()
	SupplierCreate(&stubSupplierService{}, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := payload.Error.Details["name"]; !ok {
		t.Fatalf("expected name in details, got %v", payload.Error.Details)
	}
}

func TestSupplierListParsesFilters(t *testing.T) {
	logg := testLogger()
	var captured suppliers.ListFilter
	svc := &stubSupplierService{
		listFn: func(ctx context.Context, filter suppliers.ListFilter, page pagination.Params) (pagination.Page[suppliers.SupplierDTO], error) {
			captured = filter
			if page.Limit != 10 {
				t.Fatalf("expected limit 10, got %d", page.Limit)
			}
			return pagination.Page[suppliers.SupplierDTO]{Limit: page.Limit}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/suppliers?active=true&dropship=true&sync_enabled=false&country=de&search=bolt&limit=10", nil)
	rec := httptest.NewRecorder()
	SupplierList(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !captured.ActiveOnly || !captured.DropshipOnly || captured.Search != "bolt" {
		t.Fatalf("unexpected filter %+v", captured)
	}
	if captured.SyncEnabled == nil || *captured.SyncEnabled {
		t.Fatalf("expected sync_enabled=false captured, got %v", captured.SyncEnabled)
	}
	if captured.Country != "de" {
		t.Fatalf("expected country filter, got %q", captured.Country)
	}
}

func TestSupplierListOmitsAbsentSyncFilter(t *testing.T) {
	logg := testLogger()
	var captured suppliers.ListFilter
	svc := &stubSupplierService{
		listFn: func(ctx context.Context, filter suppliers.ListFilter, page pagination.Params) (pagination.Page[suppliers.SupplierDTO], error) {
			captured = filter
			return pagination.Page[suppliers.SupplierDTO]{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/suppliers", nil)
	rec := httptest.NewRecorder()
	SupplierList(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.SyncEnabled != nil {
		t.Fatalf("absent sync_enabled must not filter, got %v", *captured.SyncEnabled)
	}
	if captured.Country != "" {
		t.Fatalf("absent country must not filter, got %q", captured.Country)
	}
}

func TestSupplierDetailRejectsBadID(t *testing.T) {
	logg := testLogger()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/suppliers/not-a-uuid", nil)
	req = withRouteParam(req, "supplierId", "not-a-uuid")
	rec := httptest.NewRecorder()
	SupplierDetail(&stubSupplierService{}, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSupplierDeletePropagatesConflict(t *testing.T) {
	logg := testLogger()
	supplierID := uuid.New()
	svc := &stubSupplierService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			if id != supplierID {
				t.Fatalf("unexpected supplier %s", id)
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "supplier has open orders")
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/suppliers/"+supplierID.String(), nil)
	req = withRouteParam(req, "supplierId", supplierID.String())
	rec := httptest.NewRecorder()
	SupplierDelete(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestSupplierUpdateRejectsInvalidSyncFrequency(t *testing.T) {
	logg := testLogger()
	supplierID := uuid.New()
	svc := &stubSupplierService{
		updateFn: func(ctx context.Context, id uuid.UUID, input suppliers.UpdateSupplierDTO) (*suppliers.SupplierDTO, error) {
			t.Fatal("service must not be reached")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/suppliers/"+supplierID.String(), strings.NewReader(`{"sync_frequency":"yearly"}`))
	req = withRouteParam(req, "supplierId", supplierID.String())
	rec := httptest.NewRecorder()
	SupplierUpdate(svc, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
