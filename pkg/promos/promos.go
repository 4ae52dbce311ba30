// Package promos manages tenant-scoped promotional offers.
package promos

import (
	"context"
	"fmt"
	"time"

	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/identity"
	"github.com/reservahq/reserva/pkg/permissions"
)

// Promo represents one tenant-owned promotional offer
type Promo struct {
	ID              int64     `json:"id"`
	TenantID        int64     `json:"tenant_id"`
	Title           string    `json:"title"`
	DiscountPercent int       `json:"discount_percent"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsCurrent reports whether the promo is active at the given instant
func (p *Promo) IsCurrent(now time.Time) bool {
	return p.Active && !now.Before(p.StartsAt) && now.Before(p.EndsAt)
}

// CreatePromoRequest represents a new promo
type CreatePromoRequest struct {
	Title           string    `json:"title"`
	DiscountPercent int       `json:"discount_percent"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
}

// Store is the tenant-scoped persistence boundary for promos
type Store interface {
	Create(ctx context.Context, promo *Promo) error
	Get(ctx context.Context, tenantID, id int64) (*Promo, error)
	List(ctx context.Context, tenantID int64) ([]*Promo, error)
	Update(ctx context.Context, promo *Promo) error
	Delete(ctx context.Context, tenantID, id int64) error
}

// Service applies tier gating on top of the store
type Service struct {
	store Store
}

// NewService creates a promos service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create adds a promo. Requires the managePromotions capability.
func (s *Service) Create(ctx context.Context, actor *identity.ActingIdentity, req *CreatePromoRequest) (*Promo, error) {
	if err := requireManage(actor); err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, &fault.ValidationError{Field: "title", Reason: "required"}
	}
	if req.DiscountPercent < 1 || req.DiscountPercent > 100 {
		return nil, &fault.ValidationError{Field: "discount_percent", Reason: "must be between 1 and 100"}
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, &fault.ValidationError{Field: "ends_at", Reason: "must be after starts_at"}
	}

	promo := &Promo{
		TenantID:        actor.TenantID,
		Title:           req.Title,
		DiscountPercent: req.DiscountPercent,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		Active:          true,
	}
	if err := s.store.Create(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to create promo: %w", err)
	}
	return promo, nil
}

// Get reads one promo. Reads are never tier-gated.
func (s *Service) Get(ctx context.Context, actor *identity.ActingIdentity, id int64) (*Promo, error) {
	return s.store.Get(ctx, actor.TenantID, id)
}

// List reads the acting tenant's promos. Reads are never tier-gated.
func (s *Service) List(ctx context.Context, actor *identity.ActingIdentity) ([]*Promo, error) {
	return s.store.List(ctx, actor.TenantID)
}

// SetActive toggles a promo. Requires managePromotions.
func (s *Service) SetActive(ctx context.Context, actor *identity.ActingIdentity, id int64, active bool) (*Promo, error) {
	if err := requireManage(actor); err != nil {
		return nil, err
	}
	promo, err := s.store.Get(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	promo.Active = active
	if err := s.store.Update(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to update promo: %w", err)
	}
	return promo, nil
}

// Delete removes a promo. Requires managePromotions.
func (s *Service) Delete(ctx context.Context, actor *identity.ActingIdentity, id int64) error {
	if err := requireManage(actor); err != nil {
		return err
	}
	return s.store.Delete(ctx, actor.TenantID, id)
}

func requireManage(actor *identity.ActingIdentity) error {
	if !actor.CanPerform(permissions.CapManagePromotions) {
		return &fault.PermissionDeniedError{
			Capability: string(permissions.CapManagePromotions),
			Tier:       string(actor.Tier),
		}
	}
	return nil
}
