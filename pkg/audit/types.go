package audit

import (
	"encoding/json"
	"time"
)

// EventType represents the category of audit event
type EventType string

const (
	// Authentication events
	EventTypeAuthResolved      EventType = "auth.resolved"
	EventTypeAuthFailed        EventType = "auth.failed"

	// Authorization events
	EventTypeAuthzAccessDenied EventType = "authz.access_denied"

	// Impersonation events
	EventTypeGhostEnter        EventType = "ghost.enter"
	EventTypeGhostExit         EventType = "ghost.exit"
	EventTypeGhostDenied       EventType = "ghost.denied"

	// Booking events
	EventTypeBookingCreate     EventType = "booking.create"
	EventTypeBookingTransition EventType = "booking.transition"
	EventTypeBookingDelete     EventType = "booking.delete"

	// Stock events
	EventTypeStockCreate       EventType = "stock.create"
	EventTypeStockUpdate       EventType = "stock.update"
	EventTypeStockAvailability EventType = "stock.availability"
	EventTypeStockDelete       EventType = "stock.delete"

	// Promotion events
	EventTypePromoCreate       EventType = "promo.create"
	EventTypePromoUpdate       EventType = "promo.update"
	EventTypePromoActivate     EventType = "promo.activate"
	EventTypePromoDelete       EventType = "promo.delete"

	// Call log events
	EventTypeCallLogAppend     EventType = "calllog.append"
	EventTypeCallLogExport     EventType = "calllog.export"
	EventTypeCallLogPurge      EventType = "calllog.purge"

	// Tenant lifecycle events
	EventTypeTenantCreate         EventType = "tenant.create"
	EventTypeTenantUpdate         EventType = "tenant.update"
	EventTypeTenantDelete         EventType = "tenant.delete"
	EventTypeTenantSettingsUpdate EventType = "tenant.settings_update"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// ResourceType represents the type of resource being accessed
type ResourceType string

const (
	ResourceTypeBooking      ResourceType = "booking"
	ResourceTypeStockItem    ResourceType = "stock_item"
	ResourceTypePromo        ResourceType = "promo"
	ResourceTypeCallLog      ResourceType = "call_log"
	ResourceTypeTenant       ResourceType = "tenant"
	ResourceTypeGhostSession ResourceType = "ghost_session"
)

// Event represents a single audit log entry
type Event struct {
	// Core fields
	ID        int64       `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor information. TenantID is the tenant whose data was touched;
	// ActorID is the real authenticated principal. They differ only during
	// an impersonation session, in which case Ghost is true.
	TenantID *int64 `json:"tenant_id,omitempty"`
	ActorID  *int64 `json:"actor_id,omitempty"`
	Ghost    bool   `json:"ghost,omitempty"`

	// Resource information
	ResourceType ResourceType `json:"resource_type,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`

	// Request context
	IPAddress  string `json:"ip_address,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Method     string `json:"method,omitempty"`
	Path       string `json:"path,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`

	// Additional details
	Message      string                 `json:"message,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`

	// Changes tracking (before/after for updates)
	Changes *ChangeDetails `json:"changes,omitempty"`
}

// ChangeDetails tracks before/after values for updates
type ChangeDetails struct {
	Before map[string]interface{} `json:"before,omitempty"`
	After  map[string]interface{} `json:"after,omitempty"`
}

// ToJSON converts the audit event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an audit event from JSON
func FromJSON(data []byte) (*Event, error) {
	var event Event
	err := json.Unmarshal(data, &event)
	return &event, err
}

// SearchFilter represents filters for searching audit logs
type SearchFilter struct {
	// Time range
	StartTime *time.Time
	EndTime   *time.Time

	// Actor filters
	TenantID *int64
	ActorID  *int64
	Ghost    *bool

	// Event filters
	EventTypes []EventType
	Status     *EventStatus

	// Resource filters
	ResourceType ResourceType
	ResourceID   string

	// Request context filters
	IPAddress string
	Method    string
	Path      string

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // field name to sort by
	SortOrder string // "asc" or "desc"
}

// Stats represents statistics about audit logs
type Stats struct {
	TotalEvents    int64                 `json:"total_events"`
	EventsByType   map[EventType]int64   `json:"events_by_type"`
	EventsByStatus map[EventStatus]int64 `json:"events_by_status"`
	UniqueTenants  int64                 `json:"unique_tenants"`
	UniqueIPs      int64                 `json:"unique_ips"`
	AccessDenials  int64                 `json:"access_denials"`
	GhostEvents    int64                 `json:"ghost_events"`
	TimeRange      *TimeRange            `json:"time_range,omitempty"`
}

// TimeRange represents a time range for statistics
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
