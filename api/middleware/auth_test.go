package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/omexplus/dropship-backend/pkg/auth"
	"github.com/omexplus/dropship-backend/pkg/config"
)

func authTestConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:            "test-secret",
		Issuer:            "omex-admin",
		ExpirationMinutes: 30,
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(authTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler := Auth(authTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthSeedsContextFromValidToken(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		Subject: "ops@omexplus.pl",
		Name:    "Ops",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var subject, name string
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFromContext(r.Context())
		name = NameFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if subject != "ops@omexplus.pl" || name != "Ops" {
		t.Fatalf("unexpected context values %q/%q", subject, name)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgauth.MintAccessToken(cfg, time.Now().Add(-2*time.Hour), pkgauth.AccessTokenPayload{
		Subject: "ops@omexplus.pl",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
