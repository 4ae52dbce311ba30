// Package impersonation manages bounded "ghost mode" support sessions: a
// platform admin transparently assumes a tenant's identity without the session
// gaining super-admin power.
//
// Sessions are server-issued, short-lived, and stored hashed in Redis with a
// TTL. The token the admin's client holds is an opaque hint, never an
// authorization grant: the identity resolver re-verifies the admin role on
// every request before honoring it.
package impersonation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/tenants"
)

// DefaultTTL bounds a ghost session's lifetime
const DefaultTTL = 30 * time.Minute

const keyPrefix = "ghost:"

// Session is one live ghost session
type Session struct {
	AdminID        int64     `json:"admin_id"`
	TargetTenantID int64     `json:"target_tenant_id"`
	StartedAt      time.Time `json:"started_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Manager issues, validates, and revokes ghost sessions
type Manager struct {
	client  *redis.Client
	tenants tenants.Service
	ttl     time.Duration
}

// NewManager creates a ghost session manager
func NewManager(client *redis.Client, tenantService tenants.Service, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		client:  client,
		tenants: tenantService,
		ttl:     ttl,
	}
}

// Enter starts a ghost session targeting a tenant. Fails with PermissionDenied
// unless the acting principal is an admin; admins cannot ghost other admins.
// Returns the session and the plaintext token, which is never stored and never
// returned again.
func (m *Manager) Enter(ctx context.Context, admin *tenants.Tenant, targetTenantID int64) (*Session, string, error) {
	if admin == nil || !admin.IsAdmin() {
		return nil, "", &fault.PermissionDeniedError{Capability: "impersonateTenant"}
	}

	target, err := m.tenants.Get(targetTenantID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load target tenant: %w", err)
	}
	if target.IsAdmin() {
		return nil, "", &fault.PermissionDeniedError{Capability: "impersonateTenant"}
	}

	token, tokenHash, err := GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue ghost token: %w", err)
	}

	now := time.Now().UTC()
	session := &Session{
		AdminID:        admin.ID,
		TargetTenantID: target.ID,
		StartedAt:      now,
		ExpiresAt:      now.Add(m.ttl),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.client.Set(ctx, keyPrefix+tokenHash, payload, m.ttl).Err(); err != nil {
		return nil, "", fmt.Errorf("failed to store ghost session: %w", err)
	}

	return session, token, nil
}

// Validate resolves a ghost token to its live session. The session must exist,
// be unexpired, and belong to the given admin; anything else is an
// authentication failure with no detail about which check missed.
func (m *Manager) Validate(ctx context.Context, adminID int64, token string) (*Session, error) {
	if err := ValidateTokenFormat(token); err != nil {
		return nil, &fault.UnauthenticatedError{Reason: "malformed ghost token"}
	}

	payload, err := m.client.Get(ctx, keyPrefix+HashToken(token)).Result()
	if err == redis.Nil {
		return nil, &fault.UnauthenticatedError{Reason: "ghost session not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ghost session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		// Corrupt entries are removed rather than retried.
		m.client.Del(ctx, keyPrefix+HashToken(token))
		return nil, fmt.Errorf("failed to unmarshal ghost session: %w", err)
	}

	if session.AdminID != adminID {
		return nil, &fault.UnauthenticatedError{Reason: "ghost session not found"}
	}

	return &session, nil
}

// Exit revokes a ghost session. Idempotent: exiting an already-ended session
// is not an error.
func (m *Manager) Exit(ctx context.Context, adminID int64, token string) error {
	if err := ValidateTokenFormat(token); err != nil {
		return nil
	}

	key := keyPrefix + HashToken(token)
	payload, err := m.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load ghost session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err == nil && session.AdminID != adminID {
		// Never let one admin revoke another's session through token guessing.
		return nil
	}

	if err := m.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to revoke ghost session: %w", err)
	}
	return nil
}

// ActiveCount returns the number of live ghost sessions. Used by the metrics
// sweep job.
func (m *Manager) ActiveCount(ctx context.Context) (int64, error) {
	var count int64
	var cursor uint64
	for {
		keys, next, err := m.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan ghost sessions: %w", err)
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}
