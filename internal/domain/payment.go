package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment is one accepted repayment against a loan. Append-only.
type Payment struct {
	ID           uuid.UUID
	LoanID       uuid.UUID
	Amount       float64
	BalanceAfter float64
	CreatedAt    time.Time
}
