package loan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"sikaloan/internal/domain"
	"sikaloan/pkg/platform/sentinel"
)

// PostgresStore persists loans and payments in PostgreSQL. Mutations run in
// transactions that lock the rows they read, so the open-loan check, the
// insert and the repayment arithmetic never interleave.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const loanColumns = `id, subscriber_id, principal, interest_rate, interest_amount,
	total_due, balance, status, due_date, created_at`

func scanLoan(row interface{ Scan(...any) error }) (*domain.Loan, error) {
	loan := &domain.Loan{}
	err := row.Scan(&loan.ID, &loan.SubscriberID, &loan.Principal,
		&loan.InterestRate, &loan.InterestAmount, &loan.TotalDue,
		&loan.Balance, &loan.Status, &loan.DueDate, &loan.CreatedAt)
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *PostgresStore) ActiveBySubscriber(ctx context.Context, subscriberID int64) (*domain.Loan, error) {
	loan, err := scanLoan(s.db.QueryRowContext(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE subscriber_id = $1 AND status IN ('pending', 'active')`, subscriberID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find active loan: %w", sentinel.ErrUnavailable, err)
	}
	return loan, nil
}

func (s *PostgresStore) CreateExclusive(ctx context.Context, loan *domain.Loan, appliedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", sentinel.ErrUnavailable, err)
	}
	defer tx.Rollback()

	// Lock the subscriber row so two concurrent applications for the same
	// subscriber serialize here.
	var subscriberID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM subscribers WHERE id = $1 FOR UPDATE`, loan.SubscriberID).
		Scan(&subscriberID)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: lock subscriber: %w", sentinel.ErrUnavailable, err)
	}

	var open int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM loans
		WHERE subscriber_id = $1 AND status IN ('pending', 'active')`, loan.SubscriberID).
		Scan(&open)
	if err != nil {
		return fmt.Errorf("%w: count open loans: %w", sentinel.ErrUnavailable, err)
	}
	if open > 0 {
		return sentinel.ErrActiveLoanExists
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		loan.ID, loan.SubscriberID, loan.Principal, loan.InterestRate,
		loan.InterestAmount, loan.TotalDue, loan.Balance, loan.Status,
		loan.DueDate, loan.CreatedAt)
	if err != nil {
		// The partial unique index catches a race the count missed.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrActiveLoanExists
		}
		return fmt.Errorf("%w: insert loan: %w", sentinel.ErrUnavailable, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE subscribers SET last_loan_application = $2 WHERE id = $1`,
		loan.SubscriberID, appliedAt)
	if err != nil {
		return fmt.Errorf("%w: stamp application: %w", sentinel.ErrUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// WithLoanForUpdate loads the loan, locks it for the duration of fn, then
// persists the mutated loan and, when fn returns one, appends the payment —
// all in one transaction. Returns sentinel.ErrNotFound for unknown loans.
func (s *PostgresStore) WithLoanForUpdate(ctx context.Context, loanID uuid.UUID, fn func(*domain.Loan) (*domain.Payment, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", sentinel.ErrUnavailable, err)
	}
	defer tx.Rollback()

	loan, err := scanLoan(tx.QueryRowContext(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE id = $1
		FOR UPDATE`, loanID))
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: lock loan: %w", sentinel.ErrUnavailable, err)
	}

	payment, err := fn(loan)
	if err != nil {
		return err
	}

	if payment != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payments (id, loan_id, amount, balance_after, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			payment.ID, payment.LoanID, payment.Amount, payment.BalanceAfter,
			payment.CreatedAt)
		if err != nil {
			return fmt.Errorf("%w: insert payment: %w", sentinel.ErrUnavailable, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE loans SET balance = $2, status = $3 WHERE id = $1`,
		loan.ID, loan.Balance, loan.Status)
	if err != nil {
		return fmt.Errorf("%w: update loan: %w", sentinel.ErrUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
