package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/omexplus/dropship-backend/internal/suppliers"
	pkgauth "github.com/omexplus/dropship-backend/pkg/auth"
	"github.com/omexplus/dropship-backend/pkg/config"
	"github.com/omexplus/dropship-backend/pkg/logger"
	"github.com/omexplus/dropship-backend/pkg/pagination"
)

type stubSupplierService struct{}

func (stubSupplierService) Create(ctx context.Context, input suppliers.CreateSupplierDTO) (*suppliers.SupplierDTO, error) {
	return &suppliers.SupplierDTO{}, nil
}

func (stubSupplierService) GetByID(ctx context.Context, id uuid.UUID) (*suppliers.SupplierDTO, error) {
	return &suppliers.SupplierDTO{ID: id}, nil
}

func (stubSupplierService) List(ctx context.Context, filter suppliers.ListFilter, page pagination.Params) (pagination.Page[suppliers.SupplierDTO], error) {
	return pagination.Page[suppliers.SupplierDTO]{Items: []suppliers.SupplierDTO{}, Limit: page.Limit}, nil
}

func (stubSupplierService) Update(ctx context.Context, id uuid.UUID, input suppliers.UpdateSupplierDTO) (*suppliers.SupplierDTO, error) {
	return &suppliers.SupplierDTO{ID: id}, nil
}

func (stubSupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func routerTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Auth.Secret = "router-test-secret"
	cfg.Auth.Issuer = "omex-admin"
	cfg.Auth.ExpirationMinutes = 15
	return cfg
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, nil, nil, nil, stubSupplierService{}, nil, nil, nil, nil)
}

func TestRouterHealthLiveIsOpen(t *testing.T) {
	router := newTestRouter(routerTestConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Omex-Env") != "test" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-Omex-Env"))
	}
}

func TestRouterMetricsIsOpen(t *testing.T) {
	router := newTestRouter(routerTestConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router := newTestRouter(routerTestConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/v1/suppliers", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouterAdminAcceptsBearerToken(t *testing.T) {
	cfg := routerTestConfig()
	router := newTestRouter(cfg)

	token, err := pkgauth.MintAccessToken(cfg.Auth, time.Now(), pkgauth.AccessTokenPayload{Subject: "ops@omexplus.pl"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/suppliers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
