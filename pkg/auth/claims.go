package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Operator identity carried in admin tokens. The relay has no end-user
// accounts; tokens authorize back-office operators and automation.
type AccessTokenPayload struct {
	Subject string
	Name    string
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to admin clients.
type AccessTokenClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
