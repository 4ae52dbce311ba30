// Package stock manages tenant-scoped stock items, including the availability
// toggle restaurants use to 86 a dish.
package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/identity"
	"github.com/reservahq/reserva/pkg/permissions"
)

// Item represents one tenant-owned stock entry
type Item struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Unit      string    `json:"unit,omitempty"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateItemRequest represents a new stock item
type CreateItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

// UpdateItemRequest represents a partial stock item update. The availability
// flag has its own operation because it is gated separately.
type UpdateItemRequest struct {
	Name     *string `json:"name,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
	Unit     *string `json:"unit,omitempty"`
}

// Store is the tenant-scoped persistence boundary for stock items
type Store interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, tenantID, id int64) (*Item, error)
	List(ctx context.Context, tenantID int64) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, tenantID, id int64) error
}

// Service applies tier gating on top of the store
type Service struct {
	store Store
}

// NewService creates a stock service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create adds a stock item. Requires the manageStock capability.
func (s *Service) Create(ctx context.Context, actor *identity.ActingIdentity, req *CreateItemRequest) (*Item, error) {
	if err := requireCapability(actor, permissions.CapManageStock); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, &fault.ValidationError{Field: "name", Reason: "required"}
	}
	if req.Quantity < 0 {
		return nil, &fault.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	item := &Item{
		TenantID:  actor.TenantID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		Available: true,
	}
	if err := s.store.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create stock item: %w", err)
	}
	return item, nil
}

// Get reads one stock item. Reads are never tier-gated.
func (s *Service) Get(ctx context.Context, actor *identity.ActingIdentity, id int64) (*Item, error) {
	return s.store.Get(ctx, actor.TenantID, id)
}

// List reads the acting tenant's stock items. Reads are never tier-gated.
func (s *Service) List(ctx context.Context, actor *identity.ActingIdentity) ([]*Item, error) {
	return s.store.List(ctx, actor.TenantID)
}

// Update applies a partial update to a stock item. Requires manageStock.
func (s *Service) Update(ctx context.Context, actor *identity.ActingIdentity, id int64, req *UpdateItemRequest) (*Item, error) {
	if err := requireCapability(actor, permissions.CapManageStock); err != nil {
		return nil, err
	}

	item, err := s.store.Get(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, &fault.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		item.Name = *req.Name
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, &fault.ValidationError{Field: "quantity", Reason: "must not be negative"}
		}
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}

	if err := s.store.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update stock item: %w", err)
	}
	return item, nil
}

// SetAvailability flips the 86 toggle. Requires manageStockAvailability on top
// of manageStock, which keeps the toggle elite-only.
func (s *Service) SetAvailability(ctx context.Context, actor *identity.ActingIdentity, id int64, available bool) (*Item, error) {
	if err := requireCapability(actor, permissions.CapManageStock); err != nil {
		return nil, err
	}
	if err := requireCapability(actor, permissions.CapManageStockAvailability); err != nil {
		return nil, err
	}

	item, err := s.store.Get(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	item.Available = available
	if err := s.store.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update stock availability: %w", err)
	}
	return item, nil
}

// Delete removes a stock item. Requires manageStock.
func (s *Service) Delete(ctx context.Context, actor *identity.ActingIdentity, id int64) error {
	if err := requireCapability(actor, permissions.CapManageStock); err != nil {
		return err
	}
	return s.store.Delete(ctx, actor.TenantID, id)
}

func requireCapability(actor *identity.ActingIdentity, capability permissions.Capability) error {
	if !actor.CanPerform(capability) {
		return &fault.PermissionDeniedError{
			Capability: string(capability),
			Tier:       string(actor.Tier),
		}
	}
	return nil
}
