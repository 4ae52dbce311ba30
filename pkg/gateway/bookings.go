package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/reservahq/reserva/pkg/bookings"
	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/permissions"
)

const bookingColumns = `id, tenant_id, sector, client_name, phone, email, date, time, status, notes, details, version, created_at, updated_at`

// BookingStore is the SQL implementation of bookings.Store
type BookingStore struct {
	db *sql.DB
}

// NewBookingStore creates a booking store
func NewBookingStore(db *sql.DB) *BookingStore {
	return &BookingStore{db: db}
}

// Create inserts a booking and fills in its id and timestamps
func (s *BookingStore) Create(ctx context.Context, b *bookings.Booking) error {
	details, err := encodeDetails(b.Details)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO bookings (tenant_id, sector, client_name, phone, email, date, time, status, notes, details, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err = s.db.QueryRowContext(ctx, query,
		b.TenantID, string(b.Sector), b.ClientName, b.Phone, b.Email,
		b.Date, b.Time, string(b.Status), b.Notes, details, b.Version,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// Get reads one booking scoped to the tenant
func (s *BookingStore) Get(ctx context.Context, tenantID, id int64) (*bookings.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND tenant_id = $2`
	booking, err := scanBooking(s.db.QueryRowContext(ctx, query, id, tenantID))
	if err == sql.ErrNoRows {
		return nil, &fault.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// List reads all of a tenant's bookings, newest date first
func (s *BookingStore) List(ctx context.Context, tenantID int64) ([]*bookings.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 ORDER BY date DESC, time DESC`
	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var out []*bookings.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return out, nil
}

// UpdateStatus moves a booking to the given status if the stored version still
// matches expectedVersion. A mismatch on a row that exists is a ConflictError.
func (s *BookingStore) UpdateStatus(ctx context.Context, tenantID, id int64, status bookings.Status, expectedVersion int64) (*bookings.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND tenant_id = $3 AND version = $4
		RETURNING ` + bookingColumns

	booking, err := scanBooking(s.db.QueryRowContext(ctx, query, string(status), id, tenantID, expectedVersion))
	if err == sql.ErrNoRows {
		// Distinguish a concurrent edit from a missing row.
		var exists bool
		checkErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1 AND tenant_id = $2)`,
			id, tenantID,
		).Scan(&exists)
		if checkErr != nil {
			return nil, fmt.Errorf("failed to check booking existence: %w", checkErr)
		}
		if exists {
			return nil, &fault.ConflictError{Resource: "booking"}
		}
		return nil, &fault.NotFoundError{Resource: "booking"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return booking, nil
}

// Delete removes a booking scoped to the tenant
func (s *BookingStore) Delete(ctx context.Context, tenantID, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &fault.NotFoundError{Resource: "booking"}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*bookings.Booking, error) {
	var (
		b            bookings.Booking
		sector       string
		status       string
		phone        sql.NullString
		email        sql.NullString
		notes        sql.NullString
		detailsBytes []byte
	)
	err := row.Scan(
		&b.ID, &b.TenantID, &sector, &b.ClientName, &phone, &email,
		&b.Date, &b.Time, &status, &notes, &detailsBytes, &b.Version,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Sector = permissions.Sector(sector)
	b.Status = bookings.Status(status)
	b.Phone = phone.String
	b.Email = email.String
	b.Notes = notes.String

	details, err := decodeDetails(b.Sector, detailsBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode booking details: %w", err)
	}
	b.Details = details
	return &b, nil
}

// encodeDetails serializes the sector-tagged union for the jsonb column.
// nil details stores SQL NULL.
func encodeDetails(details bookings.Details) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking details: %w", err)
	}
	return data, nil
}

// decodeDetails restores the concrete details type for the row's sector
func decodeDetails(sector permissions.Sector, raw []byte) (bookings.Details, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch sector {
	case permissions.SectorRestaurant:
		var d bookings.RestaurantDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	case permissions.SectorDental:
		var d bookings.DentalDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	case permissions.SectorGarage:
		var d bookings.GarageDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("unknown sector %q", sector)
	}
}
