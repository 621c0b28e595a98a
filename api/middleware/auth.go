package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/juliaconfecciones/production-backend/api/responses"
	pkgAuth "github.com/juliaconfecciones/production-backend/pkg/auth"
	"github.com/juliaconfecciones/production-backend/pkg/config"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
)

const adminKeyHeader = "X-Admin-Key"

// PortalAuth validates the employee bearer token and seeds the request
// context with the employee identity.
func PortalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParsePortalToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithEmployee(r.Context(), claims.EmployeeID, claims.Role)
			if logg != nil {
				ctx = logg.WithEmployeeID(ctx, claims.EmployeeID.String())
				ctx = logg.WithField(ctx, "employee_role", string(claims.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminKey guards back-office routes with a shared API key.
func AdminKey(key string, logg *logger.Logger) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(strings.TrimSpace(r.Header.Get(adminKeyHeader)))
			if len(expected) == 0 || len(got) == 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing admin key"))
				return
			}
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid admin key"))
				return
			}
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithField(ctx, "actor", "admin")
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
