package api

import (
	"net/http"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/httputil"
	"github.com/reservahq/reserva/pkg/middleware"
	"github.com/reservahq/reserva/pkg/stock"
)

// StockHandlers serves the stock item endpoints
type StockHandlers struct {
	service *stock.Service
}

// NewStockHandlers creates stock handlers
func NewStockHandlers(service *stock.Service) *StockHandlers {
	return &StockHandlers{service: service}
}

// Create handles POST /api/v1/stock
func (h *StockHandlers) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req stock.CreateItemRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	item, err := h.service.Create(ctx, middleware.GetIdentity(ctx), &req)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeStockCreate, "stock item created", map[string]interface{}{
		"item_id": item.ID,
		"name":    item.Name,
	})
	httputil.WriteCreated(w, item)
}

// List handles GET /api/v1/stock
func (h *StockHandlers) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out, err := h.service.List(ctx, middleware.GetIdentity(ctx))
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	if out == nil {
		out = []*stock.Item{}
	}
	httputil.WriteSuccess(w, out)
}

// Get handles GET /api/v1/stock/{id}
func (h *StockHandlers) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	item, err := h.service.Get(ctx, middleware.GetIdentity(ctx), id)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	httputil.WriteSuccess(w, item)
}

// Update handles PUT /api/v1/stock/{id}
func (h *StockHandlers) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req stock.UpdateItemRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	item, err := h.service.Update(ctx, middleware.GetIdentity(ctx), id, &req)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeStockUpdate, "stock item updated", map[string]interface{}{
		"item_id": item.ID,
	})
	httputil.WriteSuccess(w, item)
}

// SetAvailability handles PUT /api/v1/stock/{id}/availability, the 86 toggle
func (h *StockHandlers) SetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var payload availabilityPayload
	if !httputil.ParseJSONOrError(w, r, &payload) {
		return
	}

	item, err := h.service.SetAvailability(ctx, middleware.GetIdentity(ctx), id, payload.Available)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeStockAvailability, "stock availability set", map[string]interface{}{
		"item_id":   item.ID,
		"available": item.Available,
	})
	httputil.WriteSuccess(w, item)
}

// Delete handles DELETE /api/v1/stock/{id}
func (h *StockHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, middleware.GetIdentity(ctx), id); err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeStockDelete, "stock item deleted", map[string]interface{}{
		"item_id": id,
	})
	httputil.WriteNoContent(w)
}
