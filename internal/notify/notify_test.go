package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturePublisher) Publish(_ context.Context, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) snapshot() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event{}, p.events...)
}

func TestDispatcher_EmitAndRun(t *testing.T) {
	publisher := &capturePublisher{}
	d := NewDispatcher(publisher, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	d.Emit(Event{Type: EventSubscriberRegistered, MSISDN: "233244123456"})
	d.Emit(Event{Type: EventLoanApproved, MSISDN: "233244123456", LoanID: "abc", Amount: 100})

	require.Eventually(t, func() bool {
		return len(publisher.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	events := publisher.snapshot()
	assert.Equal(t, EventSubscriberRegistered, events[0].Type)
	assert.Equal(t, EventLoanApproved, events[1].Type)
	assert.False(t, events[0].At.IsZero(), "emit stamps the event time")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestDispatcher_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	publisher := &capturePublisher{}
	d := NewDispatcher(publisher, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	// No Run loop draining; overfill the buffer and make sure Emit returns.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			d.Emit(Event{Type: EventPaymentReceived, MSISDN: "233244123456"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}
}
