package loan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sikaloan/internal/domain"
	"sikaloan/internal/platform/config"
	"sikaloan/internal/platform/metrics"
	"sikaloan/pkg/money"
	"sikaloan/pkg/platform/sentinel"
)

// Store persists loans. Both methods must be atomic with respect to
// concurrent applications and repayments for the same subscriber.
type Store interface {
	// ActiveBySubscriber returns the subscriber's open (pending or active)
	// loan, or sentinel.ErrNotFound when none exists.
	ActiveBySubscriber(ctx context.Context, subscriberID int64) (*domain.Loan, error)

	// CreateExclusive inserts the loan and stamps the subscriber's
	// last-loan-application time in one transaction, failing with
	// sentinel.ErrActiveLoanExists when the subscriber already has an open
	// loan. The open-loan check and the insert must not interleave with a
	// concurrent application or repayment.
	CreateExclusive(ctx context.Context, loan *domain.Loan, appliedAt time.Time) error
}

// Ledger creates loans with computed terms and exposes the active loan for
// balance and summary queries. Amount bounds are enforced by the
// conversation layer before Apply is called.
type Ledger struct {
	store   Store
	terms   config.Loan
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewLedger(store Store, terms config.Loan, logger *slog.Logger, m *metrics.Metrics) *Ledger {
	return &Ledger{store: store, terms: terms, logger: logger, metrics: m, now: time.Now}
}

// Terms exposes the configured lending terms for prompt rendering.
func (l *Ledger) Terms() config.Loan {
	return l.terms
}

// ActiveLoanFor returns the subscriber's open loan, or nil when there is
// none.
func (l *Ledger) ActiveLoanFor(ctx context.Context, subscriberID int64) (*domain.Loan, error) {
	loan, err := l.store.ActiveBySubscriber(ctx, subscriberID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Apply creates a loan for the subscriber with computed terms. The balance
// starts at the total due and the loan is immediately active. Fails with
// sentinel.ErrActiveLoanExists (wrapped) when an open loan already exists.
func (l *Ledger) Apply(ctx context.Context, subscriberID int64, principal float64) (*domain.Loan, error) {
	now := l.now()
	principal = money.Round2(principal)
	interest := money.Round2(principal * l.terms.InterestRate)
	totalDue := money.Round2(principal + interest)

	loan := &domain.Loan{
		ID:             uuid.New(),
		SubscriberID:   subscriberID,
		Principal:      principal,
		InterestRate:   l.terms.InterestRate,
		InterestAmount: interest,
		TotalDue:       totalDue,
		Balance:        totalDue,
		Status:         domain.LoanStatusActive,
		DueDate:        now.AddDate(0, 0, l.terms.TermDays),
		CreatedAt:      now,
	}

	if err := l.store.CreateExclusive(ctx, loan, now); err != nil {
		return nil, err
	}

	l.metrics.LoanCreated()
	l.logger.InfoContext(ctx, "loan created",
		"loan_id", loan.ID,
		"subscriber_id", subscriberID,
		"principal", principal,
		"total_due", totalDue,
	)
	return loan, nil
}
