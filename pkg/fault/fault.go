// Package fault defines the typed error taxonomy shared across the service.
//
// Authorization failures are always surfaced as typed errors, never downgraded
// to default-permitted behavior. A tenant-scoped lookup miss and a row owned by
// another tenant both surface as NotFoundError so existence never leaks across
// tenants.
package fault

import (
	"errors"
	"fmt"
)

// UnauthenticatedError indicates no valid principal could be resolved.
type UnauthenticatedError struct {
	Reason string
}

func (e *UnauthenticatedError) Error() string {
	if e.Reason == "" {
		return "unauthenticated"
	}
	return "unauthenticated: " + e.Reason
}

// IsUnauthenticated checks if an error is an unauthenticated error
func IsUnauthenticated(err error) bool {
	var target *UnauthenticatedError
	return errors.As(err, &target)
}

// PermissionDeniedError indicates a valid principal lacked the required capability.
type PermissionDeniedError struct {
	Capability string
	Tier       string
}

func (e *PermissionDeniedError) Error() string {
	if e.Capability == "" {
		return "permission denied"
	}
	return fmt.Sprintf("permission denied: capability %q not granted to tier %q", e.Capability, e.Tier)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	var target *PermissionDeniedError
	return errors.As(err, &target)
}

// InvalidTransitionError indicates a booking status change outside the state graph.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

// IsInvalidTransition checks if an error is an invalid transition error
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// ValidationError indicates malformed or missing required fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Reason)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// NotFoundError indicates a tenant-scoped lookup miss.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// ConflictError indicates an optimistic version mismatch on a concurrent edit.
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	if e.Resource == "" {
		return "version conflict"
	}
	return "version conflict on " + e.Resource
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
