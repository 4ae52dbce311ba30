package gateway

import (
	"context"
	"time"

	"github.com/reservahq/reserva/pkg/bookings"
	"github.com/reservahq/reserva/pkg/calllogs"
	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/observability"
	"github.com/reservahq/reserva/pkg/promos"
	"github.com/reservahq/reserva/pkg/stock"
)

// recorder observes one store's operations under a fixed entity label
type recorder struct {
	metrics *observability.Metrics
	entity  string
}

func (r recorder) observe(operation string, start time.Time, err error) {
	r.metrics.GatewayOperationDuration.WithLabelValues(r.entity, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.GatewayOperationsTotal.WithLabelValues(r.entity, operation, "error").Inc()
		r.metrics.GatewayErrorsTotal.WithLabelValues(r.entity, operation, errorType(err)).Inc()
		return
	}
	r.metrics.GatewayOperationsTotal.WithLabelValues(r.entity, operation, "success").Inc()
}

// errorType buckets a store error for the error counter. Typed faults keep
// their taxonomy name; anything else is an infrastructure failure.
func errorType(err error) string {
	switch {
	case fault.IsNotFound(err):
		return "not_found"
	case fault.IsConflict(err):
		return "conflict"
	case fault.IsValidation(err):
		return "validation"
	default:
		return "internal"
	}
}

// InstrumentBookings wraps a booking store with gateway operation metrics
func InstrumentBookings(next bookings.Store, metrics *observability.Metrics) bookings.Store {
	return &instrumentedBookingStore{next: next, rec: recorder{metrics: metrics, entity: "booking"}}
}

type instrumentedBookingStore struct {
	next bookings.Store
	rec  recorder
}

func (s *instrumentedBookingStore) Create(ctx context.Context, b *bookings.Booking) (err error) {
	defer func(start time.Time) { s.rec.observe("create", start, err) }(time.Now())
	return s.next.Create(ctx, b)
}

func (s *instrumentedBookingStore) Get(ctx context.Context, tenantID, id int64) (b *bookings.Booking, err error) {
	defer func(start time.Time) { s.rec.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, tenantID, id)
}

func (s *instrumentedBookingStore) List(ctx context.Context, tenantID int64) (out []*bookings.Booking, err error) {
	defer func(start time.Time) { s.rec.observe("list", start, err) }(time.Now())
	return s.next.List(ctx, tenantID)
}

func (s *instrumentedBookingStore) UpdateStatus(ctx context.Context, tenantID, id int64, status bookings.Status, expectedVersion int64) (b *bookings.Booking, err error) {
	defer func(start time.Time) { s.rec.observe("update_status", start, err) }(time.Now())
	return s.next.UpdateStatus(ctx, tenantID, id, status, expectedVersion)
}

func (s *instrumentedBookingStore) Delete(ctx context.Context, tenantID, id int64) (err error) {
	defer func(start time.Time) { s.rec.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, tenantID, id)
}

// InstrumentStock wraps a stock store with gateway operation metrics
func InstrumentStock(next stock.Store, metrics *observability.Metrics) stock.Store {
	return &instrumentedStockStore{next: next, rec: recorder{metrics: metrics, entity: "stock_item"}}
}

type instrumentedStockStore struct {
	next stock.Store
	rec  recorder
}

func (s *instrumentedStockStore) Create(ctx context.Context, item *stock.Item) (err error) {
	defer func(start time.Time) { s.rec.observe("create", start, err) }(time.Now())
	return s.next.Create(ctx, item)
}

func (s *instrumentedStockStore) Get(ctx context.Context, tenantID, id int64) (item *stock.Item, err error) {
	defer func(start time.Time) { s.rec.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, tenantID, id)
}

func (s *instrumentedStockStore) List(ctx context.Context, tenantID int64) (out []*stock.Item, err error) {
	defer func(start time.Time) { s.rec.observe("list", start, err) }(time.Now())
	return s.next.List(ctx, tenantID)
}

func (s *instrumentedStockStore) Update(ctx context.Context, item *stock.Item) (err error) {
	defer func(start time.Time) { s.rec.observe("update", start, err) }(time.Now())
	return s.next.Update(ctx, item)
}

func (s *instrumentedStockStore) Delete(ctx context.Context, tenantID, id int64) (err error) {
	defer func(start time.Time) { s.rec.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, tenantID, id)
}

// InstrumentPromos wraps a promo store with gateway operation metrics
func InstrumentPromos(next promos.Store, metrics *observability.Metrics) promos.Store {
	return &instrumentedPromoStore{next: next, rec: recorder{metrics: metrics, entity: "promo"}}
}

type instrumentedPromoStore struct {
	next promos.Store
	rec  recorder
}

func (s *instrumentedPromoStore) Create(ctx context.Context, p *promos.Promo) (err error) {
	defer func(start time.Time) { s.rec.observe("create", start, err) }(time.Now())
	return s.next.Create(ctx, p)
}

func (s *instrumentedPromoStore) Get(ctx context.Context, tenantID, id int64) (p *promos.Promo, err error) {
	defer func(start time.Time) { s.rec.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, tenantID, id)
}

func (s *instrumentedPromoStore) List(ctx context.Context, tenantID int64) (out []*promos.Promo, err error) {
	defer func(start time.Time) { s.rec.observe("list", start, err) }(time.Now())
	return s.next.List(ctx, tenantID)
}

func (s *instrumentedPromoStore) Update(ctx context.Context, p *promos.Promo) (err error) {
	defer func(start time.Time) { s.rec.observe("update", start, err) }(time.Now())
	return s.next.Update(ctx, p)
}

func (s *instrumentedPromoStore) Delete(ctx context.Context, tenantID, id int64) (err error) {
	defer func(start time.Time) { s.rec.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, tenantID, id)
}

// InstrumentCallLogs wraps a call log store with gateway operation metrics
func InstrumentCallLogs(next calllogs.Store, metrics *observability.Metrics) calllogs.Store {
	return &instrumentedCallLogStore{next: next, rec: recorder{metrics: metrics, entity: "call_log"}}
}

type instrumentedCallLogStore struct {
	next calllogs.Store
	rec  recorder
}

func (s *instrumentedCallLogStore) Append(ctx context.Context, entry *calllogs.Entry) (err error) {
	defer func(start time.Time) { s.rec.observe("append", start, err) }(time.Now())
	return s.next.Append(ctx, entry)
}

func (s *instrumentedCallLogStore) List(ctx context.Context, tenantID int64) (out []*calllogs.Entry, err error) {
	defer func(start time.Time) { s.rec.observe("list", start, err) }(time.Now())
	return s.next.List(ctx, tenantID)
}

func (s *instrumentedCallLogStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (n int64, err error) {
	defer func(start time.Time) { s.rec.observe("purge", start, err) }(time.Now())
	return s.next.PurgeOlderThan(ctx, cutoff)
}
