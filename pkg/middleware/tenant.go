package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/configuration"
)

// TenantFromHeader resolves the tenant id from the configured request header
// and stores it on the context. Requests without a valid tenant header pass
// through unscoped; repositories reject them with ErrNoTenantID.
func TenantFromHeader() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(conf.TenantIDHeader))
			if raw != "" {
				if tenantID, err := uuid.Parse(raw); err == nil {
					r = r.WithContext(composables.WithTenantID(r.Context(), tenantID))
				} else {
					composables.UseLogger(r.Context()).
						WithField("header", conf.TenantIDHeader).
						Warnf("invalid tenant id %q", raw)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenant rejects requests that did not resolve a tenant id.
func RequireTenant() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := composables.UseTenantID(r.Context()); err != nil {
				http.Error(w, "missing or invalid tenant id header", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
