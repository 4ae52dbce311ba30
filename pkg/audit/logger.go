package audit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/reservahq/reserva/pkg/contextkeys"
)

// Logger is the interface for audit logging
type Logger interface {
	// Log logs an audit event
	Log(ctx context.Context, event *Event) error

	// LogAuthentication logs an authentication event
	LogAuthentication(ctx context.Context, eventType EventType, actorID *int64, status EventStatus, message string) error

	// LogAuthorization logs an authorization event
	LogAuthorization(ctx context.Context, eventType EventType, resourceType ResourceType, resourceID string, status EventStatus, message string) error

	// LogImpersonation logs an impersonation session event
	LogImpersonation(ctx context.Context, eventType EventType, adminID int64, targetTenantID int64, status EventStatus, message string) error

	// LogDataMutation logs a data mutation event
	LogDataMutation(ctx context.Context, eventType EventType, resourceType ResourceType, resourceID string, changes *ChangeDetails, message string) error

	// LogHTTPRequest logs an HTTP request (for middleware)
	LogHTTPRequest(ctx context.Context, r *http.Request, statusCode int, duration time.Duration, err error) error

	// Close closes the logger and flushes any buffered logs
	Close() error
}

// contextKey is the type for context keys
type contextKey string

const (
	// loggerKey is the context key for the audit logger
	loggerKey contextKey = "audit_logger"

	// requestStartTimeKey is the context key for request start time
	requestStartTimeKey contextKey = "request_start_time"
)

// WithLogger adds an audit logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the audit logger from context
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	// Return a no-op logger if none is set
	return &noOpLogger{}
}

// WithRequestStartTime adds the request start time to the context
func WithRequestStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestStartTimeKey, t)
}

// GetRequestStartTime retrieves the request start time from context
func GetRequestStartTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestStartTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

// NoOpLogger returns a logger that discards every event
func NoOpLogger() Logger {
	return &noOpLogger{}
}

// noOpLogger is a logger that does nothing (used when no logger is configured)
type noOpLogger struct{}

func (l *noOpLogger) Log(ctx context.Context, event *Event) error {
	return nil
}

func (l *noOpLogger) LogAuthentication(ctx context.Context, eventType EventType, actorID *int64, status EventStatus, message string) error {
	return nil
}

func (l *noOpLogger) LogAuthorization(ctx context.Context, eventType EventType, resourceType ResourceType, resourceID string, status EventStatus, message string) error {
	return nil
}

func (l *noOpLogger) LogImpersonation(ctx context.Context, eventType EventType, adminID int64, targetTenantID int64, status EventStatus, message string) error {
	return nil
}

func (l *noOpLogger) LogDataMutation(ctx context.Context, eventType EventType, resourceType ResourceType, resourceID string, changes *ChangeDetails, message string) error {
	return nil
}

func (l *noOpLogger) LogHTTPRequest(ctx context.Context, r *http.Request, statusCode int, duration time.Duration, err error) error {
	return nil
}

func (l *noOpLogger) Close() error {
	return nil
}

// WithActorContext adds the acting identity's audit-relevant fields to the
// context. TenantID is the effective tenant, actorID the real principal;
// ghost marks an impersonation session.
func WithActorContext(ctx context.Context, tenantID, actorID int64, ghost bool) context.Context {
	ctx = context.WithValue(ctx, contextKey("audit_tenant_id"), tenantID)
	ctx = context.WithValue(ctx, contextKey("audit_actor_id"), actorID)
	ctx = context.WithValue(ctx, contextKey("audit_ghost"), ghost)
	return ctx
}

// GetActorContext retrieves actor fields from the request context
func GetActorContext(ctx context.Context) (tenantID *int64, actorID *int64, ghost bool) {
	if val := ctx.Value(contextKey("audit_tenant_id")); val != nil {
		if id, ok := val.(int64); ok {
			tenantID = &id
		}
	}
	if val := ctx.Value(contextKey("audit_actor_id")); val != nil {
		if id, ok := val.(int64); ok {
			actorID = &id
		}
	}
	if val := ctx.Value(contextKey("audit_ghost")); val != nil {
		if g, ok := val.(bool); ok {
			ghost = g
		}
	}
	return
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// buildBaseEvent creates a base audit event with common fields populated
func buildBaseEvent(ctx context.Context, r *http.Request, eventType EventType, status EventStatus) *Event {
	tenantID, actorID, ghost := GetActorContext(ctx)

	event := &Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
		TenantID:  tenantID,
		ActorID:   actorID,
		Ghost:     ghost,
		RequestID: contextkeys.GetRequestID(ctx),
		Metadata:  make(map[string]interface{}),
	}

	if r != nil {
		event.IPAddress = getClientIP(r)
		event.UserAgent = r.UserAgent()
		event.Method = r.Method
		event.Path = r.URL.Path
	}

	return event
}

// LogSuccess logs a successful event with a message
func LogSuccess(ctx context.Context, eventType EventType, message string, metadata map[string]interface{}) error {
	logger := FromContext(ctx)
	event := buildBaseEvent(ctx, nil, eventType, EventStatusSuccess)
	event.Message = message
	if metadata != nil {
		event.Metadata = metadata
	}
	return logger.Log(ctx, event)
}

// LogFailure logs a failed event with an error
func LogFailure(ctx context.Context, eventType EventType, message string, err error) error {
	logger := FromContext(ctx)
	event := buildBaseEvent(ctx, nil, eventType, EventStatusFailure)
	event.Message = message
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	return logger.Log(ctx, event)
}

// LogDenied logs an access denied event
func LogDenied(ctx context.Context, eventType EventType, resourceType ResourceType, resourceID string, reason string) error {
	logger := FromContext(ctx)
	event := buildBaseEvent(ctx, nil, eventType, EventStatusDenied)
	event.ResourceType = resourceType
	event.ResourceID = resourceID
	event.Message = fmt.Sprintf("Access denied: %s", reason)
	return logger.Log(ctx, event)
}
