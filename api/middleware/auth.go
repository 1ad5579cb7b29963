package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/omexplus/dropship-backend/api/responses"
	pkgauth "github.com/omexplus/dropship-backend/pkg/auth"
	"github.com/omexplus/dropship-backend/pkg/config"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
	"github.com/omexplus/dropship-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.AuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.Subject == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing token subject"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxSubject, claims.Subject)
			if claims.Name != "" {
				ctx = context.WithValue(ctx, ctxName, claims.Name)
			}

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{"subject": claims.Subject})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
