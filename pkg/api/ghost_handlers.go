package api

import (
	"net/http"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/httputil"
	"github.com/reservahq/reserva/pkg/impersonation"
	"github.com/reservahq/reserva/pkg/middleware"
	"github.com/reservahq/reserva/pkg/observability"
	"github.com/reservahq/reserva/pkg/tenants"
)

// GhostHandlers serves impersonation session endpoints
type GhostHandlers struct {
	ghosts  *impersonation.Manager
	tenants tenants.Service
	metrics *observability.Metrics
	auditor audit.Logger
}

// NewGhostHandlers creates ghost session handlers
func NewGhostHandlers(ghosts *impersonation.Manager, tenantService tenants.Service, metrics *observability.Metrics, auditor audit.Logger) *GhostHandlers {
	if auditor == nil {
		auditor = audit.NoOpLogger()
	}
	return &GhostHandlers{
		ghosts:  ghosts,
		tenants: tenantService,
		metrics: metrics,
		auditor: auditor,
	}
}

// ghostEnterResponse returns the session with its plaintext token, shown once
type ghostEnterResponse struct {
	Session *impersonation.Session `json:"session"`
	Token   string                 `json:"token"`
}

// Enter handles POST /api/v1/ghost. The route sits behind RequireAdmin, so
// the acting identity is a non-impersonating admin; the manager re-checks
// against the loaded account anyway.
func (h *GhostHandlers) Enter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acting := middleware.GetIdentity(ctx)

	var payload ghostEnterPayload
	if !httputil.ParseJSONOrError(w, r, &payload) {
		return
	}

	admin, err := h.tenants.Get(acting.RealPrincipalID)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	session, token, err := h.ghosts.Enter(ctx, admin, payload.TargetTenantID)
	if err != nil {
		if fault.IsPermissionDenied(err) {
			_ = h.auditor.LogImpersonation(ctx, audit.EventTypeGhostDenied, admin.ID,
				payload.TargetTenantID, audit.EventStatusDenied, "ghost session refused")
		}
		httputil.WriteFault(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.GhostSessionsStarted.Inc()
	}
	_ = h.auditor.LogImpersonation(ctx, audit.EventTypeGhostEnter, admin.ID,
		session.TargetTenantID, audit.EventStatusSuccess, "ghost session started")

	httputil.WriteCreated(w, ghostEnterResponse{Session: session, Token: token})
}

// Exit handles DELETE /api/v1/ghost. The token to revoke travels in the
// X-Reserva-Ghost header, same as on impersonated requests, so an admin can
// exit from inside the session.
func (h *GhostHandlers) Exit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acting := middleware.GetIdentity(ctx)

	token := r.Header.Get(middleware.GhostTokenHeader)
	if token == "" {
		httputil.WriteFault(w, &fault.ValidationError{Field: middleware.GhostTokenHeader, Reason: "required"})
		return
	}

	targetTenantID := acting.TenantID
	if err := h.ghosts.Exit(ctx, acting.RealPrincipalID, token); err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = h.auditor.LogImpersonation(ctx, audit.EventTypeGhostExit, acting.RealPrincipalID,
		targetTenantID, audit.EventStatusSuccess, "ghost session ended")
	httputil.WriteNoContent(w)
}
