// Package audit provides an append-only audit trail for security-relevant events.
//
// # Overview
//
// Every authentication outcome, permission denial, impersonation session, and
// data mutation is recorded as a structured Event. Events carry both the
// effective tenant and the real acting principal, so actions taken during an
// impersonation session remain attributable to the admin who performed them.
//
// # Logging Events
//
// Through the DB logger:
//
//	auditLog, err := audit.NewDBLogger(db)
//	auditLog.LogImpersonation(ctx, audit.EventTypeGhostEnter, adminID, tenantID,
//		audit.EventStatusSuccess, "impersonation session started")
//
// From handlers, via context:
//
//	audit.LogDenied(ctx, audit.EventTypeAuthzAccessDenied,
//		audit.ResourceTypeBooking, bookingID, "capability mutateBookings not in tier")
//
// # HTTP Middleware
//
// The middleware records mutations, denials, and access to sensitive
// endpoints (admin surface, impersonation, call-log exports):
//
//	mw := audit.NewMiddleware(auditLog, false)
//	handler = mw.Handler(handler)
//
// # Searching
//
//	events, err := auditLog.Search(ctx, audit.SearchFilter{
//		TenantID: &tenantID,
//		Ghost:    &ghostOnly,
//		Limit:    50,
//	})
package audit
