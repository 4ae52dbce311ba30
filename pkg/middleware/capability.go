package middleware

import (
	"fmt"
	"net/http"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/httputil"
	"github.com/reservahq/reserva/pkg/observability"
	"github.com/reservahq/reserva/pkg/permissions"
)

// RequireCapability creates middleware that gates a route on one capability
// from the tier matrix. Denials are counted per capability×tier and recorded
// on the audit trail before the 403 is written.
func RequireCapability(capability permissions.Capability, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			acting := GetIdentity(ctx)
			if acting == nil {
				httputil.WriteFault(w, &fault.UnauthenticatedError{Reason: "no acting identity"})
				return
			}

			if !acting.CanPerform(capability) {
				if metrics != nil {
					metrics.PermissionDenialsTotal.WithLabelValues(string(capability), string(acting.Tier)).Inc()
				}
				_ = audit.LogDenied(ctx, audit.EventTypeAuthzAccessDenied, "", r.URL.Path,
					fmt.Sprintf("capability %q not granted to tier %q", capability, acting.Tier))
				httputil.WriteFault(w, &fault.PermissionDeniedError{
					Capability: string(capability),
					Tier:       string(acting.Tier),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin creates middleware that gates a route on an admin capability.
// Admin capabilities are unreachable while impersonating, so an admin must
// leave the ghost session before touching platform surfaces.
func RequireAdmin(capability permissions.AdminCapability, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			acting := GetIdentity(ctx)
			if acting == nil {
				httputil.WriteFault(w, &fault.UnauthenticatedError{Reason: "no acting identity"})
				return
			}

			if !acting.CanPerformAdmin(capability) {
				if metrics != nil {
					metrics.PermissionDenialsTotal.WithLabelValues(string(capability), string(acting.Tier)).Inc()
				}
				_ = audit.LogDenied(ctx, audit.EventTypeAuthzAccessDenied, "", r.URL.Path,
					fmt.Sprintf("admin capability %q denied", capability))
				httputil.WriteFault(w, &fault.PermissionDeniedError{
					Capability: string(capability),
					Tier:       string(acting.Tier),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
