package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reservahq/reserva/pkg/calllogs"
)

const callLogColumns = `id, tenant_id, caller, duration_seconds, outcome, transcript, booking_id, created_at`

// CallLogStore is the SQL implementation of calllogs.Store
type CallLogStore struct {
	db *sql.DB
}

// NewCallLogStore creates a call log store
func NewCallLogStore(db *sql.DB) *CallLogStore {
	return &CallLogStore{db: db}
}

// Append inserts a call log entry and fills in its id and timestamp
func (s *CallLogStore) Append(ctx context.Context, e *calllogs.Entry) error {
	query := `
		INSERT INTO call_logs (tenant_id, caller, duration_seconds, outcome, transcript, booking_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		e.TenantID, e.Caller, e.DurationSeconds, string(e.Outcome), e.Transcript, e.BookingID,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert call log: %w", err)
	}
	return nil
}

// List reads all of a tenant's call logs, newest first
func (s *CallLogStore) List(ctx context.Context, tenantID int64) ([]*calllogs.Entry, error) {
	query := `SELECT ` + callLogColumns + ` FROM call_logs WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	defer rows.Close()

	var out []*calllogs.Entry
	for rows.Next() {
		var (
			e          calllogs.Entry
			outcome    string
			transcript sql.NullString
			bookingID  sql.NullInt64
		)
		err := rows.Scan(&e.ID, &e.TenantID, &e.Caller, &e.DurationSeconds, &outcome, &transcript, &bookingID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call log: %w", err)
		}
		e.Outcome = calllogs.Outcome(outcome)
		e.Transcript = transcript.String
		if bookingID.Valid {
			id := bookingID.Int64
			e.BookingID = &id
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate call logs: %w", err)
	}
	return out, nil
}

// PurgeOlderThan removes entries created before the cutoff across all tenants.
// This is the one deliberately tenant-unscoped statement in the gateway: it
// runs from the retention job, never from a request path.
func (s *CallLogStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM call_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge call logs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected, nil
}
