// Package calllogs stores call intake records and exports them as CSV.
package calllogs

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/identity"
	"github.com/reservahq/reserva/pkg/permissions"
)

// Outcome classifies how an intake call ended
type Outcome string

const (
	OutcomeBooked    Outcome = "booked"
	OutcomeMissed    Outcome = "missed"
	OutcomeVoicemail Outcome = "voicemail"
	OutcomeDeclined  Outcome = "declined"
)

// IsValid reports whether the outcome is known
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeBooked, OutcomeMissed, OutcomeVoicemail, OutcomeDeclined:
		return true
	}
	return false
}

// Entry represents one recorded intake call
type Entry struct {
	ID              int64     `json:"id"`
	TenantID        int64     `json:"tenant_id"`
	Caller          string    `json:"caller"`
	DurationSeconds int       `json:"duration_seconds"`
	Outcome         Outcome   `json:"outcome"`
	Transcript      string    `json:"transcript,omitempty"`
	BookingID       *int64    `json:"booking_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// AppendRequest represents a call record arriving from an intake channel
type AppendRequest struct {
	Caller          string  `json:"caller"`
	DurationSeconds int     `json:"duration_seconds"`
	Outcome         Outcome `json:"outcome"`
	Transcript      string  `json:"transcript,omitempty"`
	BookingID       *int64  `json:"booking_id,omitempty"`
}

// Store is the tenant-scoped persistence boundary for call logs
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, tenantID int64) ([]*Entry, error)
	// PurgeOlderThan removes entries created before the cutoff across all
	// tenants and reports how many rows were removed. Used by the retention job.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service applies gating and the export schema on top of the store
type Service struct {
	store Store
}

// NewService creates a call log service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Append records an intake call. Intake writes on behalf of the tenant, so no
// tier gate applies.
func (s *Service) Append(ctx context.Context, actor *identity.ActingIdentity, req *AppendRequest) (*Entry, error) {
	if req.Caller == "" {
		return nil, &fault.ValidationError{Field: "caller", Reason: "required"}
	}
	if req.DurationSeconds < 0 {
		return nil, &fault.ValidationError{Field: "duration_seconds", Reason: "must not be negative"}
	}
	if !req.Outcome.IsValid() {
		return nil, &fault.ValidationError{Field: "outcome", Reason: fmt.Sprintf("unknown outcome %q", req.Outcome)}
	}

	entry := &Entry{
		TenantID:        actor.TenantID,
		Caller:          req.Caller,
		DurationSeconds: req.DurationSeconds,
		Outcome:         req.Outcome,
		Transcript:      req.Transcript,
		BookingID:       req.BookingID,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append call log: %w", err)
	}
	return entry, nil
}

// List reads the acting tenant's call logs. Reads are never tier-gated.
func (s *Service) List(ctx context.Context, actor *identity.ActingIdentity) ([]*Entry, error) {
	return s.store.List(ctx, actor.TenantID)
}

// exportHeader is the stable CSV schema. Column order is part of the contract
// with downstream spreadsheets; append only.
var exportHeader = []string{"id", "caller", "duration_seconds", "outcome", "transcript", "booking_id", "created_at"}

// ExportCSV writes the acting tenant's call logs as CSV. Gated by the
// exportCallLogs capability (pro and up).
func (s *Service) ExportCSV(ctx context.Context, actor *identity.ActingIdentity, w io.Writer) error {
	if !actor.CanPerform(permissions.CapExportCallLogs) {
		return &fault.PermissionDeniedError{
			Capability: string(permissions.CapExportCallLogs),
			Tier:       string(actor.Tier),
		}
	}

	entries, err := s.store.List(ctx, actor.TenantID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range entries {
		bookingID := ""
		if e.BookingID != nil {
			bookingID = strconv.FormatInt(*e.BookingID, 10)
		}
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.Caller,
			strconv.Itoa(e.DurationSeconds),
			string(e.Outcome),
			e.Transcript,
			bookingID,
			e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// PurgeOlderThan removes entries past the retention window. Called by the
// scheduled retention job, not by request handlers.
func (s *Service) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.store.PurgeOlderThan(ctx, cutoff)
}
