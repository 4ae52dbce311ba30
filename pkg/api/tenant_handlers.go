package api

import (
	"net/http"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/httputil"
	"github.com/reservahq/reserva/pkg/identity"
	"github.com/reservahq/reserva/pkg/middleware"
	"github.com/reservahq/reserva/pkg/tenants"
)

// TenantHandlers serves tenant account endpoints
type TenantHandlers struct {
	service       tenants.Service
	authenticator *identity.TokenAuthenticator
}

// NewTenantHandlers creates tenant handlers
func NewTenantHandlers(service tenants.Service, authenticator *identity.TokenAuthenticator) *TenantHandlers {
	return &TenantHandlers{
		service:       service,
		authenticator: authenticator,
	}
}

// Signup handles POST /api/v1/signup: provisions a tenant and issues its
// first bearer token. The token is returned exactly once.
func (h *TenantHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req tenants.CreateTenantRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	tenant, err := h.service.Create(&req)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	httputil.WriteCreated(w, signupResponse{
		Tenant: tenant,
		Token:  h.authenticator.Issue(tenant.ID),
	})
}

// GetSelf handles GET /api/v1/tenant: the acting tenant's own profile. While
// ghosting, this is the target tenant, which is the point of the session.
func (h *TenantHandlers) GetSelf(w http.ResponseWriter, r *http.Request) {
	acting := middleware.GetIdentity(r.Context())

	tenant, err := h.service.Get(acting.TenantID)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	httputil.WriteSuccess(w, tenant)
}

// UpdateSelf handles PUT /api/v1/tenant. Plan tier is not self-service: a
// tier present in the payload is ignored, only the admin surface changes it.
func (h *TenantHandlers) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acting := middleware.GetIdentity(ctx)

	var req tenants.UpdateTenantRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	req.Tier = nil

	tenant, err := h.service.Update(acting.TenantID, &req)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeTenantSettingsUpdate, "tenant profile updated", nil)
	httputil.WriteSuccess(w, tenant)
}

// AdminList handles GET /api/v1/admin/tenants, the single cross-tenant read
func (h *TenantHandlers) AdminList(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List()
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	if out == nil {
		out = []*tenants.Tenant{}
	}
	httputil.WriteSuccess(w, out)
}

// AdminGet handles GET /api/v1/admin/tenants/{id}
func (h *TenantHandlers) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	tenant, err := h.service.Get(id)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	httputil.WriteSuccess(w, tenant)
}

// AdminUpdate handles PUT /api/v1/admin/tenants/{id}. This is the surface
// that changes a tenant's plan tier.
func (h *TenantHandlers) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req tenants.UpdateTenantRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	tenant, err := h.service.Update(id, &req)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeTenantUpdate, "tenant updated by admin", map[string]interface{}{
		"target_tenant_id": id,
	})
	httputil.WriteSuccess(w, tenant)
}

// AdminDelete handles DELETE /api/v1/admin/tenants/{id}
func (h *TenantHandlers) AdminDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeTenantDelete, "tenant deleted by admin", map[string]interface{}{
		"target_tenant_id": id,
	})
	httputil.WriteNoContent(w)
}
