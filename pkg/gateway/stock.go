package gateway

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/stock"
)

const stockColumns = `id, tenant_id, name, quantity, unit, available, created_at, updated_at`

// StockStore is the SQL implementation of stock.Store
type StockStore struct {
	db *sql.DB
}

// NewStockStore creates a stock store
func NewStockStore(db *sql.DB) *StockStore {
	return &StockStore{db: db}
}

// Create inserts a stock item and fills in its id and timestamps
func (s *StockStore) Create(ctx context.Context, item *stock.Item) error {
	query := `
		INSERT INTO stock_items (tenant_id, name, quantity, unit, available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		item.TenantID, item.Name, item.Quantity, item.Unit, item.Available,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert stock item: %w", err)
	}
	return nil
}

// Get reads one stock item scoped to the tenant
func (s *StockStore) Get(ctx context.Context, tenantID, id int64) (*stock.Item, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE id = $1 AND tenant_id = $2`
	item, err := scanStockItem(s.db.QueryRowContext(ctx, query, id, tenantID))
	if err == sql.ErrNoRows {
		return nil, &fault.NotFoundError{Resource: "stock item"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock item: %w", err)
	}
	return item, nil
}

// List reads all of a tenant's stock items
func (s *StockStore) List(ctx context.Context, tenantID int64) ([]*stock.Item, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE tenant_id = $1 ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock items: %w", err)
	}
	defer rows.Close()

	var out []*stock.Item
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock items: %w", err)
	}
	return out, nil
}

// Update persists a stock item scoped to the tenant
func (s *StockStore) Update(ctx context.Context, item *stock.Item) error {
	query := `
		UPDATE stock_items
		SET name = $1, quantity = $2, unit = $3, available = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5 AND tenant_id = $6`

	result, err := s.db.ExecContext(ctx, query,
		item.Name, item.Quantity, item.Unit, item.Available, item.ID, item.TenantID)
	if err != nil {
		return fmt.Errorf("failed to update stock item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &fault.NotFoundError{Resource: "stock item"}
	}
	return nil
}

// Delete removes a stock item scoped to the tenant
func (s *StockStore) Delete(ctx context.Context, tenantID, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM stock_items WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &fault.NotFoundError{Resource: "stock item"}
	}
	return nil
}

func scanStockItem(row rowScanner) (*stock.Item, error) {
	var (
		item stock.Item
		unit sql.NullString
	)
	err := row.Scan(&item.ID, &item.TenantID, &item.Name, &item.Quantity, &unit, &item.Available, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Unit = unit.String
	return &item, nil
}
