package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/contextkeys"
	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/httputil"
	"github.com/reservahq/reserva/pkg/identity"
)

// GhostTokenHeader carries the opaque ghost session token on impersonated
// requests. The header is client-held state and is re-verified server-side on
// every request; see identity.Resolver.
const GhostTokenHeader = "X-Reserva-Ghost"

// PrincipalAuthenticator verifies a bearer token and names its principal
type PrincipalAuthenticator interface {
	Authenticate(token string) (int64, error)
}

// IdentityResolver yields the effective acting identity for a principal
type IdentityResolver interface {
	Resolve(ctx context.Context, principalID int64, ghostToken string) (*identity.ActingIdentity, error)
}

// IdentityMiddleware authenticates the bearer token and resolves the acting
// identity for the request. Every route behind it sees exactly one
// ActingIdentity in the context; routes in front of it see none.
type IdentityMiddleware struct {
	authenticator PrincipalAuthenticator
	resolver      IdentityResolver
}

// NewIdentityMiddleware creates an identity middleware
func NewIdentityMiddleware(authenticator PrincipalAuthenticator, resolver IdentityResolver) *IdentityMiddleware {
	return &IdentityMiddleware{
		authenticator: authenticator,
		resolver:      resolver,
	}
}

// Handler wraps an HTTP handler with authentication and identity resolution
func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := bearerToken(r)
		if err != nil {
			_ = audit.FromContext(ctx).LogAuthentication(ctx, audit.EventTypeAuthFailed, nil,
				audit.EventStatusFailure, err.Error())
			httputil.WriteFault(w, err)
			return
		}

		principalID, err := m.authenticator.Authenticate(token)
		if err != nil {
			_ = audit.FromContext(ctx).LogAuthentication(ctx, audit.EventTypeAuthFailed, nil,
				audit.EventStatusFailure, "invalid bearer token")
			httputil.WriteFault(w, err)
			return
		}

		acting, err := m.resolver.Resolve(ctx, principalID, r.Header.Get(GhostTokenHeader))
		if err != nil {
			_ = audit.FromContext(ctx).LogAuthentication(ctx, audit.EventTypeAuthFailed, &principalID,
				audit.EventStatusFailure, "identity resolution failed")
			httputil.WriteFault(w, err)
			return
		}

		ctx = contextkeys.WithIdentity(ctx, acting)
		ctx = audit.WithActorContext(ctx, acting.TenantID, acting.RealPrincipalID, acting.Impersonating)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", &fault.UnauthenticatedError{Reason: "missing authorization header"}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", &fault.UnauthenticatedError{Reason: "invalid authorization header format"}
	}

	return parts[1], nil
}

// GetIdentity extracts the acting identity from a request context. Returns nil
// on routes the identity middleware does not cover.
func GetIdentity(ctx context.Context) *identity.ActingIdentity {
	acting, ok := ctx.Value(contextkeys.IdentityKey).(*identity.ActingIdentity)
	if !ok {
		return nil
	}
	return acting
}
