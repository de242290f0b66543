package repayment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sikaloan/internal/domain"
	"sikaloan/internal/platform/metrics"
	"sikaloan/pkg/money"
	"sikaloan/pkg/platform/sentinel"
)

// Store provides the atomic read-modify-write primitive a repayment needs.
// Both loan stores implement it.
type Store interface {
	// WithLoanForUpdate loads the loan, holds it exclusively while fn runs,
	// then persists the mutated loan plus the payment fn returns, as one
	// atomic unit. Returns sentinel.ErrNotFound for unknown loans; fn errors
	// abort without persisting anything.
	WithLoanForUpdate(ctx context.Context, loanID uuid.UUID, fn func(*domain.Loan) (*domain.Payment, error)) error
}

// Result reports what a repayment did.
type Result struct {
	Payment float64
	// NewBalance is the outstanding balance after the payment; exactly 0
	// when the loan closed.
	NewBalance float64
	// OverpaymentIgnored is the portion of the requested amount above the
	// balance. Acknowledged to the payer, never credited.
	OverpaymentIgnored float64
	Closed             bool
}

// Processor applies payments to active loans: clamps overpayment, records a
// payment entry, and updates or closes the loan.
type Processor struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewProcessor(store Store, logger *slog.Logger, m *metrics.Metrics) *Processor {
	return &Processor{store: store, logger: logger, metrics: m, now: time.Now}
}

// Repay applies amount to the loan. Fails with sentinel.ErrNoActiveLoan when
// the loan is absent or not active. The caller validates amount > 0.
func (p *Processor) Repay(ctx context.Context, loanID uuid.UUID, amount float64) (*Result, error) {
	result := &Result{}
	err := p.store.WithLoanForUpdate(ctx, loanID, func(loan *domain.Loan) (*domain.Payment, error) {
		if loan.Status != domain.LoanStatusActive {
			return nil, sentinel.ErrNoActiveLoan
		}

		payment := amount
		if payment > loan.Balance {
			payment = loan.Balance
		}
		newBalance := money.Round2(loan.Balance - payment)
		if newBalance <= 0 {
			newBalance = 0
			loan.Status = domain.LoanStatusClosed
		}
		loan.Balance = newBalance

		result.Payment = money.Round2(payment)
		result.NewBalance = newBalance
		result.OverpaymentIgnored = money.Round2(amount - payment)
		result.Closed = loan.Status == domain.LoanStatusClosed

		return &domain.Payment{
			ID:           uuid.New(),
			LoanID:       loan.ID,
			Amount:       result.Payment,
			BalanceAfter: newBalance,
			CreatedAt:    p.now(),
		}, nil
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, sentinel.ErrNoActiveLoan
	}
	if err != nil {
		return nil, err
	}

	p.metrics.PaymentRecorded()
	if result.Closed {
		p.metrics.LoanClosed()
	}
	p.logger.InfoContext(ctx, "payment recorded",
		"loan_id", loanID,
		"payment", result.Payment,
		"balance", result.NewBalance,
		"closed", result.Closed,
	)
	return result, nil
}
