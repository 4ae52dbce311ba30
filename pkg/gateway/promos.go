package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/promos"
)

const promoColumns = `id, tenant_id, title, discount_percent, starts_at, ends_at, active, created_at, updated_at`

// PromoStore is the SQL implementation of promos.Store
type PromoStore struct {
	db *sql.DB
}

// NewPromoStore creates a promo store
func NewPromoStore(db *sql.DB) *PromoStore {
	return &PromoStore{db: db}
}

// Create inserts a promo and fills in its id and timestamps
func (s *PromoStore) Create(ctx context.Context, p *promos.Promo) error {
	query := `
		INSERT INTO promos (tenant_id, title, discount_percent, starts_at, ends_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		p.TenantID, p.Title, p.DiscountPercent, p.StartsAt, p.EndsAt, p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert promo: %w", err)
	}
	return nil
}

// Get reads one promo scoped to the tenant
func (s *PromoStore) Get(ctx context.Context, tenantID, id int64) (*promos.Promo, error) {
	query := `SELECT ` + promoColumns + ` FROM promos WHERE id = $1 AND tenant_id = $2`
	promo, err := scanPromo(s.db.QueryRowContext(ctx, query, id, tenantID))
	if err == sql.ErrNoRows {
		return nil, &fault.NotFoundError{Resource: "promo"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo: %w", err)
	}
	return promo, nil
}

// List reads all of a tenant's promos, newest window first
func (s *PromoStore) List(ctx context.Context, tenantID int64) ([]*promos.Promo, error) {
	query := `SELECT ` + promoColumns + ` FROM promos WHERE tenant_id = $1 ORDER BY starts_at DESC`
	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list promos: %w", err)
	}
	defer rows.Close()

	var out []*promos.Promo
	for rows.Next() {
		promo, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo: %w", err)
		}
		out = append(out, promo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate promos: %w", err)
	}
	return out, nil
}

// Update persists a promo scoped to the tenant
func (s *PromoStore) Update(ctx context.Context, p *promos.Promo) error {
	query := `
		UPDATE promos
		SET title = $1, discount_percent = $2, starts_at = $3, ends_at = $4, active = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $6 AND tenant_id = $7`

	result, err := s.db.ExecContext(ctx, query,
		p.Title, p.DiscountPercent, p.StartsAt, p.EndsAt, p.Active, p.ID, p.TenantID)
	if err != nil {
		return fmt.Errorf("failed to update promo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &fault.NotFoundError{Resource: "promo"}
	}
	return nil
}

// Delete removes a promo scoped to the tenant
func (s *PromoStore) Delete(ctx context.Context, tenantID, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM promos WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete promo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &fault.NotFoundError{Resource: "promo"}
	}
	return nil
}

func scanPromo(row rowScanner) (*promos.Promo, error) {
	var p promos.Promo
	err := row.Scan(&p.ID, &p.TenantID, &p.Title, &p.DiscountPercent, &p.StartsAt, &p.EndsAt, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
