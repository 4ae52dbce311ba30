// Package identity resolves a request's effective acting identity: the real
// authenticated principal, or the tenant an admin is ghosting.
package identity

import (
	"context"
	"fmt"

	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/impersonation"
	"github.com/reservahq/reserva/pkg/permissions"
	"github.com/reservahq/reserva/pkg/tenants"
)

// ActingIdentity is the single identity every downstream authorization and
// data-access decision uses. While impersonating, it carries the target
// tenant's id/tier/sector and IsAdmin is forced false, so admin-only
// capabilities are unreachable for the whole session.
type ActingIdentity struct {
	TenantID      int64
	Tier          permissions.Tier
	Sector        permissions.Sector
	IsAdmin       bool
	Impersonating bool
	// RealPrincipalID is the authenticated account behind the identity. It
	// differs from TenantID only while impersonating, and exists for audit
	// trails, never for authorization.
	RealPrincipalID int64
}

// CanPerform checks a capability against the identity's effective tier
func (id *ActingIdentity) CanPerform(capability permissions.Capability) bool {
	return permissions.CanPerform(id.Tier, capability)
}

// CanPerformAdmin checks an admin capability. Always false while
// impersonating, regardless of the real principal's role.
func (id *ActingIdentity) CanPerformAdmin(capability permissions.AdminCapability) bool {
	return id.IsAdmin && !id.Impersonating
}

// SessionValidator validates a ghost token against the session store
type SessionValidator interface {
	Validate(ctx context.Context, adminID int64, token string) (*impersonation.Session, error)
}

// Resolver produces ActingIdentities from authenticated principals
type Resolver struct {
	tenants  tenants.Service
	sessions SessionValidator
}

// NewResolver creates an identity resolver
func NewResolver(tenantService tenants.Service, sessions SessionValidator) *Resolver {
	return &Resolver{
		tenants:  tenantService,
		sessions: sessions,
	}
}

// Resolve yields exactly one ActingIdentity for the request.
//
// The ghost token is untrusted client state: it is honored only after the real
// principal is re-verified as an admin on this request and the token matches a
// live session owned by that admin. Any verification failure discards the
// token and falls back to the principal's own identity, so a compromised
// client can never self-escalate into another tenant's data.
func (r *Resolver) Resolve(ctx context.Context, principalID int64, ghostToken string) (*ActingIdentity, error) {
	principal, err := r.tenants.Get(principalID)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, &fault.UnauthenticatedError{Reason: "unknown principal"}
		}
		return nil, fmt.Errorf("failed to resolve principal: %w", err)
	}

	own := &ActingIdentity{
		TenantID:        principal.ID,
		Tier:            principal.Tier,
		Sector:          principal.Sector,
		IsAdmin:         principal.IsAdmin(),
		Impersonating:   false,
		RealPrincipalID: principal.ID,
	}

	if ghostToken == "" {
		return own, nil
	}

	if !principal.IsAdmin() {
		return own, nil
	}

	session, err := r.sessions.Validate(ctx, principal.ID, ghostToken)
	if err != nil {
		if fault.IsUnauthenticated(err) {
			return own, nil
		}
		return nil, fmt.Errorf("failed to validate ghost session: %w", err)
	}

	target, err := r.tenants.Get(session.TargetTenantID)
	if err != nil {
		if fault.IsNotFound(err) {
			// Target vanished mid-session (e.g. cascade delete).
			return own, nil
		}
		return nil, fmt.Errorf("failed to load impersonation target: %w", err)
	}

	return &ActingIdentity{
		TenantID:        target.ID,
		Tier:            target.Tier,
		Sector:          target.Sector,
		IsAdmin:         false,
		Impersonating:   true,
		RealPrincipalID: principal.ID,
	}, nil
}
