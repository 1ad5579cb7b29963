package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/omexplus/dropship-backend/pkg/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:            "test-secret",
		Issuer:            "omex-admin",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testAuthConfig()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{
		Subject: "ops@omexplus.example",
		Name:    "Ops",
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "ops@omexplus.example" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Name != "Ops" {
		t.Fatalf("unexpected name %q", claims.Name)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now()
	payload := AccessTokenPayload{Subject: "ops"}

	cases := []struct {
		name string
		cfg  config.AuthConfig
	}{
		{"missing secret", config.AuthConfig{Issuer: "omex-admin", ExpirationMinutes: 60}},
		{"missing issuer", config.AuthConfig{Secret: "s", ExpirationMinutes: 60}},
		{"non-positive expiry", config.AuthConfig{Secret: "s", Issuer: "omex-admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MintAccessToken(tc.cfg, now, payload); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := MintAccessToken(testAuthConfig(), now, AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testAuthConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{Subject: "ops"})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testAuthConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Subject: "ops"})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected issuer mismatch to fail validation")
	}
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	cfg := testAuthConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Subject: "ops"})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	tampered := signed[:len(signed)-2] + "xx"
	if _, err := ParseAccessToken(cfg, tampered); err == nil {
		t.Fatal("expected tampered token to fail validation")
	}
	if !strings.Contains(signed, ".") {
		t.Fatal("expected jwt format")
	}
}
