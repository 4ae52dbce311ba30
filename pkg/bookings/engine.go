// Package bookings owns the RDV lifecycle: creation, sector-specific
// validation, the status state machine, and tier-gated mutation.
package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/identity"
	"github.com/reservahq/reserva/pkg/observability"
	"github.com/reservahq/reserva/pkg/permissions"
)

// Store is the tenant-scoped persistence boundary for bookings. Every call is
// parameterized by tenant id and implementations must filter on it
// unconditionally.
type Store interface {
	Create(ctx context.Context, booking *Booking) error
	Get(ctx context.Context, tenantID, id int64) (*Booking, error)
	List(ctx context.Context, tenantID int64) ([]*Booking, error)
	// UpdateStatus persists a status change if the stored version matches
	// expectedVersion, incrementing the version. Returns ConflictError on a
	// version mismatch and NotFoundError if the row is missing for the tenant.
	UpdateStatus(ctx context.Context, tenantID, id int64, status Status, expectedVersion int64) (*Booking, error)
	Delete(ctx context.Context, tenantID, id int64) error
}

// Notifier receives booking lifecycle events. Delivery is an external
// collaborator concern: the engine treats every call as best-effort.
type Notifier interface {
	BookingStatusChanged(ctx context.Context, booking *Booking, previous Status) error
}

// Engine drives the booking lifecycle
type Engine struct {
	store    Store
	notifier Notifier
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewEngine creates a booking engine. notifier may be nil when no
// notification collaborator is configured.
func NewEngine(store Store, notifier Notifier, logger *observability.Logger) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// SetMetrics attaches transition and conflict counters to the engine
func (e *Engine) SetMetrics(metrics *observability.Metrics) {
	e.metrics = metrics
}

// Create validates and persists a new booking for the acting tenant.
//
// Staff creations require the mutateBookings capability; trusted intake
// channels (call, form) write on behalf of the tenant and bypass the tier
// gate. Details supplied for the wrong sector are dropped with a warning, not
// rejected, to tolerate intake noise.
func (e *Engine) Create(ctx context.Context, actor *identity.ActingIdentity, channel Channel, req *CreateRequest) (*Booking, error) {
	if channel == ChannelStaff && !actor.CanPerform(permissions.CapMutateBookings) {
		return nil, &fault.PermissionDeniedError{
			Capability: string(permissions.CapMutateBookings),
			Tier:       string(actor.Tier),
		}
	}

	if err := validateCreate(req); err != nil {
		return nil, err
	}

	status := req.InitialStatus
	if status == "" {
		status = StatusPending
	}
	if status != StatusPending && status != StatusConfirmed {
		return nil, &fault.ValidationError{Field: "initial_status", Reason: fmt.Sprintf("%q is not a valid initial status", status)}
	}

	details := req.Details
	if details != nil && details.Sector() != actor.Sector {
		e.logger.WithFields(map[string]interface{}{
			"tenant_id":      actor.TenantID,
			"tenant_sector":  string(actor.Sector),
			"details_sector": string(details.Sector()),
			"channel":        string(channel),
		}).Warn("dropping booking details for wrong sector")
		details = nil
	}

	booking := &Booking{
		TenantID:   actor.TenantID,
		Sector:     actor.Sector,
		ClientName: req.ClientName,
		Phone:      req.Phone,
		Email:      req.Email,
		Date:       req.Date,
		Time:       req.Time,
		Status:     status,
		Notes:      req.Notes,
		Details:    details,
		Version:    1,
	}

	if err := e.store.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return booking, nil
}

// Transition moves a booking along the status graph.
//
// The capability gate runs before anything else; the state machine check runs
// against the stored status; the write is optimistic on expectedVersion. A
// successful move to confirmed or cancelled emits a notification event whose
// failure is logged and swallowed — the state change is the source of truth.
func (e *Engine) Transition(ctx context.Context, actor *identity.ActingIdentity, bookingID int64, newStatus Status, expectedVersion int64) (*Booking, error) {
	if !actor.CanPerform(permissions.CapMutateBookings) {
		return nil, &fault.PermissionDeniedError{
			Capability: string(permissions.CapMutateBookings),
			Tier:       string(actor.Tier),
		}
	}

	if !newStatus.IsValid() {
		return nil, &fault.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", newStatus)}
	}

	current, err := e.store.Get(ctx, actor.TenantID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := CheckTransition(current.Status, newStatus); err != nil {
		return nil, err
	}

	updated, err := e.store.UpdateStatus(ctx, actor.TenantID, bookingID, newStatus, expectedVersion)
	if err != nil {
		if e.metrics != nil && fault.IsConflict(err) {
			e.metrics.BookingConflictsTotal.Inc()
		}
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.BookingTransitionsTotal.WithLabelValues(string(current.Status), string(newStatus)).Inc()
	}

	if newStatus == StatusConfirmed || newStatus == StatusCancelled {
		e.notify(ctx, updated, current.Status)
	}

	return updated, nil
}

// Get reads one booking. Read access is never tier-gated.
func (e *Engine) Get(ctx context.Context, actor *identity.ActingIdentity, bookingID int64) (*Booking, error) {
	return e.store.Get(ctx, actor.TenantID, bookingID)
}

// List reads the acting tenant's bookings. Read access is never tier-gated:
// starter is read-only, never no-access.
func (e *Engine) List(ctx context.Context, actor *identity.ActingIdentity) ([]*Booking, error) {
	return e.store.List(ctx, actor.TenantID)
}

// Delete removes a booking via explicit staff action
func (e *Engine) Delete(ctx context.Context, actor *identity.ActingIdentity, bookingID int64) error {
	if !actor.CanPerform(permissions.CapMutateBookings) {
		return &fault.PermissionDeniedError{
			Capability: string(permissions.CapMutateBookings),
			Tier:       string(actor.Tier),
		}
	}
	return e.store.Delete(ctx, actor.TenantID, bookingID)
}

func (e *Engine) notify(ctx context.Context, booking *Booking, previous Status) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.BookingStatusChanged(ctx, booking, previous); err != nil {
		e.logger.WithError(err).WithFields(map[string]interface{}{
			"tenant_id":  booking.TenantID,
			"booking_id": booking.ID,
			"status":     string(booking.Status),
		}).Warn("booking notification failed")
	}
}

func validateCreate(req *CreateRequest) error {
	if req.ClientName == "" {
		return &fault.ValidationError{Field: "client_name", Reason: "required"}
	}
	if req.Date == "" {
		return &fault.ValidationError{Field: "date", Reason: "required"}
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return &fault.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if req.Time == "" {
		return &fault.ValidationError{Field: "time", Reason: "required"}
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return &fault.ValidationError{Field: "time", Reason: "expected HH:MM"}
	}
	return nil
}
