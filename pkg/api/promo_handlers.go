package api

import (
	"net/http"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/httputil"
	"github.com/reservahq/reserva/pkg/middleware"
	"github.com/reservahq/reserva/pkg/promos"
)

// PromoHandlers serves the promotion endpoints
type PromoHandlers struct {
	service *promos.Service
}

// NewPromoHandlers creates promo handlers
func NewPromoHandlers(service *promos.Service) *PromoHandlers {
	return &PromoHandlers{service: service}
}

// Create handles POST /api/v1/promos
func (h *PromoHandlers) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req promos.CreatePromoRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	promo, err := h.service.Create(ctx, middleware.GetIdentity(ctx), &req)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypePromoCreate, "promo created", map[string]interface{}{
		"promo_id": promo.ID,
		"title":    promo.Title,
	})
	httputil.WriteCreated(w, promo)
}

// List handles GET /api/v1/promos
func (h *PromoHandlers) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out, err := h.service.List(ctx, middleware.GetIdentity(ctx))
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	if out == nil {
		out = []*promos.Promo{}
	}
	httputil.WriteSuccess(w, out)
}

// Get handles GET /api/v1/promos/{id}
func (h *PromoHandlers) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	promo, err := h.service.Get(ctx, middleware.GetIdentity(ctx), id)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	httputil.WriteSuccess(w, promo)
}

// SetActive handles PUT /api/v1/promos/{id}/active
func (h *PromoHandlers) SetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var payload activePayload
	if !httputil.ParseJSONOrError(w, r, &payload) {
		return
	}

	promo, err := h.service.SetActive(ctx, middleware.GetIdentity(ctx), id, payload.Active)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypePromoActivate, "promo toggled", map[string]interface{}{
		"promo_id": promo.ID,
		"active":   promo.Active,
	})
	httputil.WriteSuccess(w, promo)
}

// Delete handles DELETE /api/v1/promos/{id}
func (h *PromoHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, middleware.GetIdentity(ctx), id); err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypePromoDelete, "promo deleted", map[string]interface{}{
		"promo_id": id,
	})
	httputil.WriteNoContent(w)
}
