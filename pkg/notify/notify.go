// Package notify delivers booking lifecycle events to external collaborators.
// Delivery is always best-effort: the booking state change is the source of
// truth and never waits on, or rolls back for, a sink.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/reservahq/reserva/pkg/observability"
)

// EventType represents the type of notification event
type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
)

// Event represents one notification event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	TenantID  int64                  `json:"tenant_id"`
	BookingID int64                  `json:"booking_id"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Sink delivers one event to one destination
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event *Event) error
}

// Dispatcher fans events out to all configured sinks
type Dispatcher struct {
	sinks   []Sink
	logger  *observability.Logger
	metrics *observability.Metrics
	timeout time.Duration
}

// NewDispatcher creates a dispatcher over the given sinks
func NewDispatcher(logger *observability.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// SetMetrics attaches per-sink delivery counters to the dispatcher
func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	d.metrics = metrics
}

// Dispatch delivers the event to every sink concurrently and returns once all
// deliveries settle. Sink failures are logged per sink; the first one is also
// returned so callers that care can observe it, but callers on the booking
// path treat it as advisory.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, sink := range d.sinks {
		g.Go(func() error {
			err := sink.Deliver(ctx, event)
			if d.metrics != nil {
				status := "success"
				if err != nil {
					status = "error"
				}
				d.metrics.NotificationsTotal.WithLabelValues(sink.Name(), status).Inc()
			}
			if err != nil {
				d.logger.WithError(err).WithFields(map[string]interface{}{
					"sink":      sink.Name(),
					"event_id":  event.ID,
					"event":     string(event.Type),
					"tenant_id": event.TenantID,
				}).Warn("notification delivery failed")
				return fmt.Errorf("sink %s: %w", sink.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// DispatchAsync delivers in the background, detached from the request context
func (d *Dispatcher) DispatchAsync(event *Event) {
	go func() {
		defer observability.RecoverPanic(d.logger, "notification dispatch")
		// Errors are already logged per sink.
		_ = d.Dispatch(context.Background(), event)
	}()
}

// WebhookSink posts signed JSON events to a tenant-facing endpoint
type WebhookSink struct {
	url         string
	secret      string
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
}

// NewWebhookSink creates a webhook sink. secret may be empty to skip signing.
func NewWebhookSink(url, secret string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxAttempts: 3,
		backoff:     2 * time.Second,
	}
}

// Name implements Sink
func (s *WebhookSink) Name() string { return "webhook" }

// Deliver posts the event, retrying transient failures with a bounded linear
// backoff
func (s *WebhookSink) Deliver(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * s.backoff):
			}
		}
		if lastErr = s.post(ctx, event, payload); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("delivery failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *WebhookSink) post(ctx context.Context, event *Event, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Reserva-Event", string(event.Type))
	req.Header.Set("X-Reserva-Event-ID", event.ID)
	req.Header.Set("X-Reserva-Delivery", time.Now().UTC().Format(time.RFC3339))
	if s.secret != "" {
		req.Header.Set("X-Reserva-Signature", Sign(payload, s.secret))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-2xx status: %d", resp.StatusCode)
	}
	return nil
}

// Sign generates the HMAC-SHA256 signature header value for a payload
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time
func VerifySignature(payload []byte, signature, secret string) bool {
	return hmac.Equal([]byte(Sign(payload, secret)), []byte(signature))
}

// EmailSink is a logging stub standing in for a real mail collaborator
type EmailSink struct {
	logger *observability.Logger
}

// NewEmailSink creates an email sink
func NewEmailSink(logger *observability.Logger) *EmailSink {
	return &EmailSink{logger: logger}
}

// Name implements Sink
func (s *EmailSink) Name() string { return "email" }

// Deliver logs the event in place of sending mail
func (s *EmailSink) Deliver(ctx context.Context, event *Event) error {
	s.logger.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event":      string(event.Type),
		"tenant_id":  event.TenantID,
		"booking_id": event.BookingID,
	}).Info("email notification")
	return nil
}
