// Package notify emits fire-and-forget events for downstream messaging (the
// SMS confirmations the prompts promise). Delivery is best effort: a full
// buffer drops the event and the conversation is never blocked or failed on
// notification problems.
package notify

import (
	"context"
	"log/slog"
	"time"

	"sikaloan/internal/platform/metrics"
)

// EventType labels what happened.
type EventType string

const (
	EventSubscriberRegistered EventType = "subscriber_registered"
	EventLoanApproved         EventType = "loan_approved"
	EventPaymentReceived      EventType = "payment_received"
	EventLoanClosed           EventType = "loan_closed"
)

// Event is one notification payload.
type Event struct {
	Type   EventType `json:"type"`
	MSISDN string    `json:"msisdn"`
	LoanID string    `json:"loan_id,omitempty"`
	Amount float64   `json:"amount,omitempty"`
	At     time.Time `json:"at"`
}

// Publisher delivers a single event to the messaging backend.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Dispatcher decouples request handling from publishing: Emit enqueues
// without blocking, Run drains the queue until the context ends.
type Dispatcher struct {
	publisher Publisher
	inbox     chan Event
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewDispatcher(publisher Publisher, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		inbox:     make(chan Event, 256),
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Emit enqueues an event, dropping it when the buffer is full.
func (d *Dispatcher) Emit(event Event) {
	if event.At.IsZero() {
		event.At = d.now()
	}
	select {
	case d.inbox <- event:
		d.metrics.NotificationPublished()
	default:
		d.metrics.NotificationDropped()
		d.logger.Warn("notification dropped, buffer full",
			"type", event.Type,
			"msisdn", event.MSISDN,
		)
	}
}

// Run consumes queued events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-d.inbox:
			d.publisher.Publish(ctx, event)
		}
	}
}
