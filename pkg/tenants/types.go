package tenants

import (
	"time"

	"github.com/reservahq/reserva/pkg/permissions"
)

// Role represents the account role of a principal
type Role string

const (
	RoleAdmin  Role = "admin"  // Platform administrator
	RoleClient Role = "client" // Subscribed business staff
)

// Status represents tenant account status
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

// Tenant represents one subscribed business account, isolated from all others.
// Every non-admin tenant has exactly one sector and one tier: tier determines
// capability, sector determines which booking extension fields apply.
type Tenant struct {
	ID          int64               `json:"id"`
	Email       string              `json:"email"`
	DisplayName string              `json:"display_name"`
	CompanyName string              `json:"company_name,omitempty"`
	Role        Role                `json:"role"`
	Sector      permissions.Sector  `json:"sector,omitempty"`
	Tier        permissions.Tier    `json:"tier,omitempty"`
	Status      Status              `json:"status"`
	Settings    *Settings           `json:"settings,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// IsAdmin reports whether the tenant is a platform administrator
func (t *Tenant) IsAdmin() bool {
	return t.Role == RoleAdmin
}

// CreateTenantRequest represents a provisioning or self-signup request
type CreateTenantRequest struct {
	Email       string             `json:"email"`
	DisplayName string             `json:"display_name"`
	CompanyName string             `json:"company_name,omitempty"`
	Sector      permissions.Sector `json:"sector"`
	Tier        permissions.Tier   `json:"tier"`
}

// UpdateTenantRequest represents a partial tenant update
type UpdateTenantRequest struct {
	DisplayName *string           `json:"display_name,omitempty"`
	CompanyName *string           `json:"company_name,omitempty"`
	Tier        *permissions.Tier `json:"tier,omitempty"`
	Settings    *Settings         `json:"settings,omitempty"`
}

// Service defines tenant account management.
//
// List is the explicitly admin-only cross-tenant read: it is the single
// operation in the system that may return rows from more than one tenant, and
// it is authorized separately from everything the data gateway serves.
type Service interface {
	Create(req *CreateTenantRequest) (*Tenant, error)
	Get(id int64) (*Tenant, error)
	GetByEmail(email string) (*Tenant, error)
	List() ([]*Tenant, error)
	Update(id int64, req *UpdateTenantRequest) (*Tenant, error)
	Delete(id int64) error
}
