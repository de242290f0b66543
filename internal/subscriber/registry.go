package subscriber

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sikaloan/internal/domain"
	"sikaloan/internal/platform/metrics"
	"sikaloan/pkg/platform/sentinel"
)

// Store persists subscribers and enforces the uniqueness invariants on
// MSISDN and document number.
type Store interface {
	// FindByMSISDN returns sentinel.ErrNotFound for unregistered numbers.
	FindByMSISDN(ctx context.Context, msisdn string) (*domain.Subscriber, error)
	// Create returns sentinel.ErrDuplicateIdentity when the MSISDN or
	// document number collides with an existing subscriber.
	Create(ctx context.Context, sub *domain.Subscriber) error
}

// Registry looks up and registers subscribers. Input validation happens in
// the conversation steps before Register is called; the registry only owns
// the uniqueness invariant.
type Registry struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewRegistry(store Store, logger *slog.Logger, m *metrics.Metrics) *Registry {
	return &Registry{store: store, logger: logger, metrics: m, now: time.Now}
}

// Find returns the subscriber for a phone number, or nil when the number is
// not registered.
func (r *Registry) Find(ctx context.Context, msisdn string) (*domain.Subscriber, error) {
	sub, err := r.store.FindByMSISDN(ctx, msisdn)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Register persists a new subscriber. Returns sentinel.ErrDuplicateIdentity
// (wrapped) when the phone or document number is already taken.
func (r *Registry) Register(ctx context.Context, msisdn, fullName, dob string, docType domain.DocumentType, docNumber string) (*domain.Subscriber, error) {
	sub := &domain.Subscriber{
		MSISDN:         msisdn,
		FullName:       fullName,
		DateOfBirth:    dob,
		DocumentType:   docType,
		DocumentNumber: docNumber,
		RegisteredAt:   r.now(),
	}
	if err := r.store.Create(ctx, sub); err != nil {
		return nil, err
	}
	r.metrics.SubscriberRegistered()
	r.logger.InfoContext(ctx, "subscriber registered",
		"msisdn", msisdn,
		"doc_type", docType,
	)
	return sub, nil
}
