package tenants

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/permissions"
)

// PostgresService implements the Service interface using PostgreSQL
type PostgresService struct {
	db *sql.DB
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB) *PostgresService {
	return &PostgresService{db: db}
}

const tenantColumns = `id, email, display_name, company_name, role, sector, tier, status, settings, created_at, updated_at`

// Create provisions a new client tenant
func (s *PostgresService) Create(req *CreateTenantRequest) (*Tenant, error) {
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, &fault.ValidationError{Field: "email", Reason: "a valid email is required"}
	}
	if req.DisplayName == "" {
		return nil, &fault.ValidationError{Field: "display_name", Reason: "required"}
	}
	if !req.Tier.IsValid() {
		return nil, &fault.ValidationError{Field: "tier", Reason: fmt.Sprintf("unknown tier %q", req.Tier)}
	}
	if req.Sector == "" {
		return nil, &fault.ValidationError{Field: "sector", Reason: "required"}
	}

	tenant := &Tenant{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		CompanyName: req.CompanyName,
		Role:        RoleClient,
		Sector:      req.Sector,
		Tier:        req.Tier,
		Status:      StatusActive,
		Settings:    DefaultSettings(req.Sector),
	}

	settingsJSON, err := json.Marshal(tenant.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
		INSERT INTO tenants (email, display_name, company_name, role, sector, tier, status, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err = s.db.QueryRow(query, tenant.Email, tenant.DisplayName, tenant.CompanyName,
		tenant.Role, tenant.Sector, tenant.Tier, tenant.Status, settingsJSON).
		Scan(&tenant.ID, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	return tenant, nil
}

// Get retrieves a tenant by ID
func (s *PostgresService) Get(id int64) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1 AND status != 'deleted'`
	return s.scanTenant(s.db.QueryRow(query, id))
}

// GetByEmail retrieves a tenant by authentication email
func (s *PostgresService) GetByEmail(email string) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE email = $1 AND status != 'deleted'`
	return s.scanTenant(s.db.QueryRow(query, email))
}

// List returns all tenants. Admin-only; callers gate this behind
// permissions.AdminCapListAllTenants.
func (s *PostgresService) List() ([]*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE status != 'deleted' ORDER BY created_at DESC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var result []*Tenant
	for rows.Next() {
		tenant, err := s.scanTenant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tenant)
	}
	return result, rows.Err()
}

// Update applies a partial update to a tenant
func (s *PostgresService) Update(id int64, req *UpdateTenantRequest) (*Tenant, error) {
	tenant, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		tenant.DisplayName = *req.DisplayName
	}
	if req.CompanyName != nil {
		tenant.CompanyName = *req.CompanyName
	}
	if req.Tier != nil {
		if !req.Tier.IsValid() {
			return nil, &fault.ValidationError{Field: "tier", Reason: fmt.Sprintf("unknown tier %q", *req.Tier)}
		}
		tenant.Tier = *req.Tier
	}
	if req.Settings != nil {
		if req.Settings.Version != SettingsVersion {
			return nil, &fault.ValidationError{Field: "settings.version", Reason: fmt.Sprintf("expected version %d", SettingsVersion)}
		}
		tenant.Settings = req.Settings
	}

	settingsJSON, err := json.Marshal(tenant.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
		UPDATE tenants
		SET display_name = $1, company_name = $2, tier = $3, settings = $4, updated_at = NOW()
		WHERE id = $5 AND status != 'deleted'
		RETURNING updated_at
	`
	err = s.db.QueryRow(query, tenant.DisplayName, tenant.CompanyName, tenant.Tier, settingsJSON, id).
		Scan(&tenant.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &fault.NotFoundError{Resource: "tenant"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	return tenant, nil
}

// Delete soft-deletes a tenant and cascades to all owned records. Admin-only;
// callers gate this behind permissions.AdminCapDeleteTenant. The cascade and
// the status flip commit together or not at all.
func (s *PostgresService) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE tenants SET status = 'deleted', updated_at = NOW() WHERE id = $1 AND status != 'deleted'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return &fault.NotFoundError{Resource: "tenant"}
	}

	for _, table := range []string{"bookings", "stock_items", "promos", "call_logs"} {
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE tenant_id = $1`, table), id); err != nil {
			return fmt.Errorf("failed to cascade delete %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// scanTenant scans a tenant from a database row
func (s *PostgresService) scanTenant(scanner interface {
	Scan(dest ...interface{}) error
}) (*Tenant, error) {
	tenant := &Tenant{}
	var companyName sql.NullString
	var sector, tier sql.NullString
	var settingsJSON []byte

	err := scanner.Scan(
		&tenant.ID, &tenant.Email, &tenant.DisplayName, &companyName,
		&tenant.Role, &sector, &tier, &tenant.Status, &settingsJSON,
		&tenant.CreatedAt, &tenant.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &fault.NotFoundError{Resource: "tenant"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tenant: %w", err)
	}

	tenant.CompanyName = companyName.String
	tenant.Sector = permissions.Sector(sector.String)
	tenant.Tier = permissions.Tier(tier.String)

	if len(settingsJSON) > 0 {
		settings, err := MigrateSettings(settingsJSON, tenant.Sector)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate settings for tenant %d: %w", tenant.ID, err)
		}
		tenant.Settings = settings
	}

	return tenant, nil
}
