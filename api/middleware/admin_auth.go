package middleware

import (
	"net/http"
	"strings"

	"github.com/rattapoomjame/Sort/api/responses"
	pkgauth "github.com/rattapoomjame/Sort/pkg/auth"
	"github.com/rattapoomjame/Sort/pkg/config"
	pkgerrors "github.com/rattapoomjame/Sort/pkg/errors"
	"github.com/rattapoomjame/Sort/pkg/logger"
)

// AdminAuth validates an admin bearer token and seeds the request context
// with the username from the claims.
func AdminAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
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

			claims, err := pkgauth.ParseAdminToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithAdminUser(r.Context(), claims.Username)
			if logg != nil {
				ctx = logg.WithField(ctx, "admin_user", claims.Username)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
