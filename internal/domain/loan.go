package domain

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus tracks a loan through its lifecycle. Loans are created active
// and never deleted; closed loans remain for history.
type LoanStatus string

const (
	LoanStatusPending LoanStatus = "pending"
	LoanStatusActive  LoanStatus = "active"
	LoanStatusClosed  LoanStatus = "closed"
)

// Loan is a single fixed-term microloan. Invariants: TotalDue equals
// Principal plus InterestAmount at two decimal places, and Balance only ever
// decreases, never below zero.
type Loan struct {
	ID             uuid.UUID
	SubscriberID   int64
	Principal      float64
	InterestRate   float64
	InterestAmount float64
	TotalDue       float64
	Balance        float64
	Status         LoanStatus
	DueDate        time.Time
	CreatedAt      time.Time
}

// Open reports whether the loan still blocks a new application.
func (l *Loan) Open() bool {
	return l.Status == LoanStatusPending || l.Status == LoanStatusActive
}
