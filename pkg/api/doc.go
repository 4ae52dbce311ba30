// Package api assembles the HTTP surface over the booking backend.
//
// All routes live under /api/v1. Signup is the single unauthenticated route;
// everything else passes through the identity middleware, which authenticates
// the bearer token, resolves the acting identity (honoring a ghost token in
// the X-Reserva-Ghost header for verified admins), and stamps both onto the
// request context. Tier-gated routes additionally carry a capability
// middleware as a first gate; the domain services repeat the same checks
// authoritatively.
//
// Handlers stay thin: parse, call the domain service, map the typed error
// through httputil.WriteFault, record the audit event. Tenant scoping is
// never a handler concern — the acting identity carries the effective tenant
// and every store call is parameterized by it.
package api
