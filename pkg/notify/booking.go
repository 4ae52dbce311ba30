package notify

import (
	"context"

	"github.com/reservahq/reserva/pkg/bookings"
)

// BookingNotifier adapts the dispatcher to the booking engine's notifier
// boundary
type BookingNotifier struct {
	dispatcher *Dispatcher
}

// NewBookingNotifier creates a booking notifier over a dispatcher
func NewBookingNotifier(dispatcher *Dispatcher) *BookingNotifier {
	return &BookingNotifier{dispatcher: dispatcher}
}

// BookingStatusChanged emits a notification event for notification-worthy
// status changes. Delivery runs in the background; the call never blocks the
// transition.
func (n *BookingNotifier) BookingStatusChanged(ctx context.Context, booking *bookings.Booking, previous bookings.Status) error {
	var eventType EventType
	switch booking.Status {
	case bookings.StatusConfirmed:
		eventType = EventBookingConfirmed
	case bookings.StatusCancelled:
		eventType = EventBookingCancelled
	default:
		return nil
	}

	n.dispatcher.DispatchAsync(&Event{
		Type:      eventType,
		TenantID:  booking.TenantID,
		BookingID: booking.ID,
		Data: map[string]interface{}{
			"previous_status": string(previous),
			"client_name":     booking.ClientName,
			"date":            booking.Date,
			"time":            booking.Time,
		},
	})
	return nil
}
