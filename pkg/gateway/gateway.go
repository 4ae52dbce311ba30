// Package gateway is the single SQL boundary for tenant-owned data. Every
// statement carries a tenant_id predicate unconditionally; admins reach other
// tenants' rows only by impersonating, never by a widened query. A lookup miss
// and a row owned by another tenant are indistinguishable: both come back as
// NotFoundError.
package gateway

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// Gateway bundles the per-entity stores over one database handle
type Gateway struct {
	Bookings *BookingStore
	Stock    *StockStore
	Promos   *PromoStore
	CallLogs *CallLogStore
}

// New creates a gateway over an open database handle
func New(db *sql.DB) *Gateway {
	return &Gateway{
		Bookings: NewBookingStore(db),
		Stock:    NewStockStore(db),
		Promos:   NewPromoStore(db),
		CallLogs: NewCallLogStore(db),
	}
}
