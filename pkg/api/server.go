package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/bookings"
	"github.com/reservahq/reserva/pkg/calllogs"
	"github.com/reservahq/reserva/pkg/httputil"
	"github.com/reservahq/reserva/pkg/identity"
	"github.com/reservahq/reserva/pkg/impersonation"
	"github.com/reservahq/reserva/pkg/middleware"
	"github.com/reservahq/reserva/pkg/observability"
	"github.com/reservahq/reserva/pkg/permissions"
	"github.com/reservahq/reserva/pkg/promos"
	"github.com/reservahq/reserva/pkg/stock"
	"github.com/reservahq/reserva/pkg/tenants"
)

// RateLimiter gates requests ahead of the handlers. Both the in-memory and
// the Redis-backed middlewares satisfy it.
type RateLimiter interface {
	Handler(next http.Handler) http.Handler
}

// Deps carries the collaborators the API server is assembled from
type Deps struct {
	Logger        *observability.Logger
	Metrics       *observability.Metrics
	Tenants       tenants.Service
	Bookings      *bookings.Engine
	Stock         *stock.Service
	Promos        *promos.Service
	CallLogs      *calllogs.Service
	Ghosts        *impersonation.Manager
	Authenticator *identity.TokenAuthenticator
	Resolver      *identity.Resolver
	AuditLogger   audit.Logger
	RateLimiter   RateLimiter
}

// Server is the HTTP surface over the booking backend
type Server struct {
	router *mux.Router
	deps   Deps

	tenantHandlers  *TenantHandlers
	bookingHandlers *BookingHandlers
	stockHandlers   *StockHandlers
	promoHandlers   *PromoHandlers
	callLogHandlers *CallLogHandlers
	ghostHandlers   *GhostHandlers
}

// NewServer creates the API server and wires all routes
func NewServer(deps Deps) *Server {
	s := &Server{
		router: mux.NewRouter(),
		deps:   deps,

		tenantHandlers:  NewTenantHandlers(deps.Tenants, deps.Authenticator),
		bookingHandlers: NewBookingHandlers(deps.Bookings),
		stockHandlers:   NewStockHandlers(deps.Stock),
		promoHandlers:   NewPromoHandlers(deps.Promos),
		callLogHandlers: NewCallLogHandlers(deps.CallLogs),
		ghostHandlers:   NewGhostHandlers(deps.Ghosts, deps.Tenants, deps.Metrics, deps.AuditLogger),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the middleware chain and all API routes.
//
// Everything under /api/v1 except signup sits behind the identity middleware;
// the capability middlewares on individual routes are a first gate, with the
// domain services enforcing the same checks authoritatively.
func (s *Server) setupRoutes() {
	s.router.Use(httputil.RecoveryMiddleware)
	s.router.Use(httputil.RequestIDMiddleware)
	if s.deps.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.deps.Metrics))
	}
	if s.deps.AuditLogger != nil {
		s.router.Use(audit.NewMiddleware(s.deps.AuditLogger, false).Handler)
	}

	// Signup is the single unauthenticated route: it provisions the tenant
	// and issues its first bearer token.
	s.router.HandleFunc("/api/v1/signup", s.tenantHandlers.Signup).Methods("POST")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.NewIdentityMiddleware(s.deps.Authenticator, s.deps.Resolver).Handler)
	if s.deps.RateLimiter != nil {
		api.Use(s.deps.RateLimiter.Handler)
	}

	m := s.deps.Metrics

	// Acting tenant profile
	api.HandleFunc("/tenant", s.tenantHandlers.GetSelf).Methods("GET")
	api.HandleFunc("/tenant", s.tenantHandlers.UpdateSelf).Methods("PUT")

	// Bookings
	api.HandleFunc("/bookings", s.bookingHandlers.Create).Methods("POST")
	api.HandleFunc("/bookings", s.bookingHandlers.List).Methods("GET")
	api.HandleFunc("/bookings/{id:[0-9]+}", s.bookingHandlers.Get).Methods("GET")
	api.Handle("/bookings/{id:[0-9]+}/transition",
		middleware.RequireCapability(permissions.CapMutateBookings, m)(
			http.HandlerFunc(s.bookingHandlers.Transition))).Methods("POST")
	api.Handle("/bookings/{id:[0-9]+}",
		middleware.RequireCapability(permissions.CapMutateBookings, m)(
			http.HandlerFunc(s.bookingHandlers.Delete))).Methods("DELETE")

	// Stock
	api.Handle("/stock",
		middleware.RequireCapability(permissions.CapManageStock, m)(
			http.HandlerFunc(s.stockHandlers.Create))).Methods("POST")
	api.HandleFunc("/stock", s.stockHandlers.List).Methods("GET")
	api.HandleFunc("/stock/{id:[0-9]+}", s.stockHandlers.Get).Methods("GET")
	api.Handle("/stock/{id:[0-9]+}",
		middleware.RequireCapability(permissions.CapManageStock, m)(
			http.HandlerFunc(s.stockHandlers.Update))).Methods("PUT")
	api.Handle("/stock/{id:[0-9]+}/availability",
		middleware.RequireCapability(permissions.CapManageStockAvailability, m)(
			http.HandlerFunc(s.stockHandlers.SetAvailability))).Methods("PUT")
	api.Handle("/stock/{id:[0-9]+}",
		middleware.RequireCapability(permissions.CapManageStock, m)(
			http.HandlerFunc(s.stockHandlers.Delete))).Methods("DELETE")

	// Promotions
	api.Handle("/promos",
		middleware.RequireCapability(permissions.CapManagePromotions, m)(
			http.HandlerFunc(s.promoHandlers.Create))).Methods("POST")
	api.HandleFunc("/promos", s.promoHandlers.List).Methods("GET")
	api.HandleFunc("/promos/{id:[0-9]+}", s.promoHandlers.Get).Methods("GET")
	api.Handle("/promos/{id:[0-9]+}/active",
		middleware.RequireCapability(permissions.CapManagePromotions, m)(
			http.HandlerFunc(s.promoHandlers.SetActive))).Methods("PUT")
	api.Handle("/promos/{id:[0-9]+}",
		middleware.RequireCapability(permissions.CapManagePromotions, m)(
			http.HandlerFunc(s.promoHandlers.Delete))).Methods("DELETE")

	// Call logs
	api.HandleFunc("/call-logs", s.callLogHandlers.Append).Methods("POST")
	api.HandleFunc("/call-logs", s.callLogHandlers.List).Methods("GET")
	api.Handle("/call-logs/export",
		middleware.RequireCapability(permissions.CapExportCallLogs, m)(
			http.HandlerFunc(s.callLogHandlers.ExportCSV))).Methods("GET")

	// Ghost sessions
	api.Handle("/ghost",
		middleware.RequireAdmin(permissions.AdminCapImpersonateTenant, m)(
			http.HandlerFunc(s.ghostHandlers.Enter))).Methods("POST")
	api.HandleFunc("/ghost", s.ghostHandlers.Exit).Methods("DELETE")

	// Platform admin
	api.Handle("/admin/tenants",
		middleware.RequireAdmin(permissions.AdminCapListAllTenants, m)(
			http.HandlerFunc(s.tenantHandlers.AdminList))).Methods("GET")
	api.Handle("/admin/tenants/{id:[0-9]+}",
		middleware.RequireAdmin(permissions.AdminCapListAllTenants, m)(
			http.HandlerFunc(s.tenantHandlers.AdminGet))).Methods("GET")
	api.Handle("/admin/tenants/{id:[0-9]+}",
		middleware.RequireAdmin(permissions.AdminCapListAllTenants, m)(
			http.HandlerFunc(s.tenantHandlers.AdminUpdate))).Methods("PUT")
	api.Handle("/admin/tenants/{id:[0-9]+}",
		middleware.RequireAdmin(permissions.AdminCapDeleteTenant, m)(
			http.HandlerFunc(s.tenantHandlers.AdminDelete))).Methods("DELETE")
}

// Handler returns the assembled HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}
