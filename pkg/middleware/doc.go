// Package middleware provides the HTTP request processing chain: request ids,
// authentication, identity resolution, capability gating, and rate limiting.
//
// # Middleware Ordering
//
// The chain has strict ordering dependencies. Incorrect order causes
// capability checks to see no identity and deny everything with a 401.
//
// REQUIRED ORDERING (outer to inner):
//  1. httputil.RequestIDMiddleware - assigns the correlation id used by logs
//     and the audit trail
//  2. IdentityMiddleware - authenticates the bearer token, resolves the
//     acting identity (including ghost sessions), stores it in the context
//  3. RateLimitMiddleware - keys buckets off the resolved identity
//  4. RequireCapability / RequireAdmin - per-route capability gates
//
// Example:
//
//	router.Use(httputil.RequestIDMiddleware)
//	router.Use(identityMiddleware.Handler)
//	router.Use(rateLimitMiddleware.Handler)
//	router.Handle("/api/v1/stock",
//	    middleware.RequireCapability(permissions.CapManageStock, metrics)(stockHandler)).
//	    Methods("POST")
//
// # Rate Limiting
//
// DistributedRateLimitMiddleware shares fixed-window counters through Redis
// so limits hold across instances, and fails open when Redis is unreachable.
// It is the default; setting RESERVA_RATE_LIMIT_DISTRIBUTED=false selects
// RateLimitMiddleware instead, which keeps token buckets in an LRU-bounded
// in-memory table local to the instance.
//
// Both key authenticated requests off the REAL principal id, so an admin
// ghosting a tenant spends their own quota, never the tenant's.
package middleware
