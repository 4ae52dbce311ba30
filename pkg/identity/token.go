package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/reservahq/reserva/pkg/fault"
)

// BearerTokenPrefix identifies principal bearer tokens
const BearerTokenPrefix = "rsv_"

// TokenAuthenticator issues and verifies principal bearer tokens.
//
// Tokens are self-contained: rsv_<principalID>.<base64url(hmac-sha256(id))>.
// The server keeps no token table; possession of a token with a valid
// signature proves the caller was issued it by us. Rotating the secret
// invalidates every outstanding token at once.
type TokenAuthenticator struct {
	secret []byte
}

// NewTokenAuthenticator creates an authenticator over the shared signing secret
func NewTokenAuthenticator(secret string) (*TokenAuthenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	return &TokenAuthenticator{secret: []byte(secret)}, nil
}

// Issue creates a bearer token for the given principal
func (a *TokenAuthenticator) Issue(principalID int64) string {
	payload := strconv.FormatInt(principalID, 10)
	return BearerTokenPrefix + payload + "." + a.sign(payload)
}

// Authenticate verifies a bearer token and returns the principal it names.
// All failure modes collapse into a single UnauthenticatedError so callers
// cannot distinguish a malformed token from a forged one.
func (a *TokenAuthenticator) Authenticate(token string) (int64, error) {
	if !strings.HasPrefix(token, BearerTokenPrefix) {
		return 0, &fault.UnauthenticatedError{Reason: "invalid token"}
	}

	rest := strings.TrimPrefix(token, BearerTokenPrefix)
	payload, signature, ok := strings.Cut(rest, ".")
	if !ok || payload == "" || signature == "" {
		return 0, &fault.UnauthenticatedError{Reason: "invalid token"}
	}

	if !hmac.Equal([]byte(a.sign(payload)), []byte(signature)) {
		return 0, &fault.UnauthenticatedError{Reason: "invalid token"}
	}

	principalID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || principalID <= 0 {
		return 0, &fault.UnauthenticatedError{Reason: "invalid token"}
	}

	return principalID, nil
}

func (a *TokenAuthenticator) sign(payload string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
