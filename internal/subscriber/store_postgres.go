package subscriber

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sikaloan/internal/domain"
	"sikaloan/pkg/platform/sentinel"
)

// PostgresStore persists subscribers in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByMSISDN(ctx context.Context, msisdn string) (*domain.Subscriber, error) {
	sub := &domain.Subscriber{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, msisdn, full_name, date_of_birth, doc_type, doc_number,
		       registered_at, last_loan_application
		FROM subscribers
		WHERE msisdn = $1`, msisdn).
		Scan(&sub.ID, &sub.MSISDN, &sub.FullName, &sub.DateOfBirth,
			&sub.DocumentType, &sub.DocumentNumber, &sub.RegisteredAt,
			&sub.LastLoanApplication)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find subscriber: %w", sentinel.ErrUnavailable, err)
	}
	return sub, nil
}

func (s *PostgresStore) Create(ctx context.Context, sub *domain.Subscriber) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO subscribers (msisdn, full_name, date_of_birth, doc_type, doc_number, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		sub.MSISDN, sub.FullName, sub.DateOfBirth, sub.DocumentType,
		sub.DocumentNumber, sub.RegisteredAt).
		Scan(&sub.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrDuplicateIdentity
		}
		return fmt.Errorf("%w: create subscriber: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
