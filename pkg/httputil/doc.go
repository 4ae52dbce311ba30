// Package httputil provides the handler-facing HTTP plumbing: JSON request
// parsing, response writing, the fault-to-status mapping, and the outermost
// middleware (panic recovery, request ids).
//
// # Responses
//
//	httputil.WriteSuccess(w, booking)
//	httputil.WriteCreated(w, tenant)
//	httputil.WriteNoContent(w)
//	httputil.WriteFault(w, err) // maps typed service errors to statuses
//
// WriteFault is the single exit for service errors: handlers never pick
// statuses by hand, they return the typed fault and let the mapping decide.
// Permission denials carry read_only so gated UIs can disable controls
// instead of hiding data.
//
// # Requests
//
//	var req CreateBookingRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // 400 already written
//	}
//	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
//
// # Middleware
//
// RequestIDMiddleware and RecoveryMiddleware sit outermost on the router;
// the identity, rate limit, and capability layers live in pkg/middleware.
package httputil
