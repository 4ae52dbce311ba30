package api

import (
	"fmt"
	"net/http"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/bookings"
	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/httputil"
	"github.com/reservahq/reserva/pkg/middleware"
)

// BookingHandlers serves the booking lifecycle endpoints
type BookingHandlers struct {
	engine *bookings.Engine
}

// NewBookingHandlers creates booking handlers
func NewBookingHandlers(engine *bookings.Engine) *BookingHandlers {
	return &BookingHandlers{engine: engine}
}

// Create handles POST /api/v1/bookings. The channel defaults to staff;
// intake integrations declare call or form and write on behalf of the tenant.
func (h *BookingHandlers) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acting := middleware.GetIdentity(ctx)

	var payload createBookingPayload
	if !httputil.ParseJSONOrError(w, r, &payload) {
		return
	}

	channel := payload.Channel
	if channel == "" {
		channel = bookings.ChannelStaff
	}
	if channel != bookings.ChannelStaff && !channel.IsTrustedIntake() {
		httputil.WriteFault(w, &fault.ValidationError{Field: "channel", Reason: fmt.Sprintf("unknown channel %q", channel)})
		return
	}

	details, err := decodeDetails(acting.Sector, payload.Details)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	payload.CreateRequest.Details = details

	booking, err := h.engine.Create(ctx, acting, channel, &payload.CreateRequest)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeBookingCreate, "booking created", map[string]interface{}{
		"booking_id": booking.ID,
		"channel":    string(channel),
		"status":     string(booking.Status),
	})
	httputil.WriteCreated(w, booking)
}

// List handles GET /api/v1/bookings
func (h *BookingHandlers) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out, err := h.engine.List(ctx, middleware.GetIdentity(ctx))
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	if out == nil {
		out = []*bookings.Booking{}
	}
	httputil.WriteSuccess(w, out)
}

// Get handles GET /api/v1/bookings/{id}
func (h *BookingHandlers) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.engine.Get(ctx, middleware.GetIdentity(ctx), id)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}
	httputil.WriteSuccess(w, booking)
}

// Transition handles POST /api/v1/bookings/{id}/transition
func (h *BookingHandlers) Transition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var payload transitionPayload
	if !httputil.ParseJSONOrError(w, r, &payload) {
		return
	}

	booking, err := h.engine.Transition(ctx, middleware.GetIdentity(ctx), id, payload.Status, payload.ExpectedVersion)
	if err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeBookingTransition, "booking transitioned", map[string]interface{}{
		"booking_id": booking.ID,
		"status":     string(booking.Status),
		"version":    booking.Version,
	})
	httputil.WriteSuccess(w, booking)
}

// Delete handles DELETE /api/v1/bookings/{id}
func (h *BookingHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.engine.Delete(ctx, middleware.GetIdentity(ctx), id); err != nil {
		httputil.WriteFault(w, err)
		return
	}

	_ = audit.LogSuccess(ctx, audit.EventTypeBookingDelete, "booking deleted", map[string]interface{}{
		"booking_id": id,
	})
	httputil.WriteNoContent(w)
}
