package loan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sikaloan/internal/domain"
	"sikaloan/internal/subscriber"
	"sikaloan/pkg/platform/sentinel"
)

// MemoryStore is the in-process implementation for tests and local dev. A
// single mutex stands in for the row locks the Postgres store takes.
type MemoryStore struct {
	mu       sync.Mutex
	loans    map[uuid.UUID]*domain.Loan
	payments []domain.Payment
	subs     *subscriber.MemoryStore
}

// NewMemory constructs an in-memory loan store. subs may be nil when the
// last-application stamp is irrelevant to a test.
func NewMemory(subs *subscriber.MemoryStore) *MemoryStore {
	return &MemoryStore{loans: make(map[uuid.UUID]*domain.Loan), subs: subs}
}

func (s *MemoryStore) ActiveBySubscriber(_ context.Context, subscriberID int64) (*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loan := s.openLoanLocked(subscriberID); loan != nil {
		copied := *loan
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) CreateExclusive(_ context.Context, loan *domain.Loan, appliedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openLoanLocked(loan.SubscriberID) != nil {
		return sentinel.ErrActiveLoanExists
	}
	stored := *loan
	s.loans[stored.ID] = &stored
	if s.subs != nil {
		s.subs.StampLoanApplication(loan.SubscriberID, appliedAt)
	}
	return nil
}

func (s *MemoryStore) WithLoanForUpdate(_ context.Context, loanID uuid.UUID, fn func(*domain.Loan) (*domain.Payment, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan, ok := s.loans[loanID]
	if !ok {
		return sentinel.ErrNotFound
	}
	working := *loan
	payment, err := fn(&working)
	if err != nil {
		return err
	}
	if payment != nil {
		s.payments = append(s.payments, *payment)
	}
	*loan = working
	return nil
}

// Payments returns a copy of all recorded payments, oldest first.
func (s *MemoryStore) Payments() []domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Payment{}, s.payments...)
}

func (s *MemoryStore) openLoanLocked(subscriberID int64) *domain.Loan {
	for _, loan := range s.loans {
		if loan.SubscriberID == subscriberID && loan.Open() {
			return loan
		}
	}
	return nil
}
