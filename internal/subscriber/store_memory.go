package subscriber

import (
	"context"
	"sync"
	"time"

	"sikaloan/internal/domain"
	"sikaloan/pkg/platform/sentinel"
)

// MemoryStore is the in-process implementation for tests and local dev.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	byID     map[int64]*domain.Subscriber
	byMSISDN map[string]*domain.Subscriber
	byDocNum map[string]*domain.Subscriber
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		byID:     make(map[int64]*domain.Subscriber),
		byMSISDN: make(map[string]*domain.Subscriber),
		byDocNum: make(map[string]*domain.Subscriber),
	}
}

func (s *MemoryStore) FindByMSISDN(_ context.Context, msisdn string) (*domain.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byMSISDN[msisdn]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

func (s *MemoryStore) Create(_ context.Context, sub *domain.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byMSISDN[sub.MSISDN]; exists {
		return sentinel.ErrDuplicateIdentity
	}
	if _, exists := s.byDocNum[sub.DocumentNumber]; exists {
		return sentinel.ErrDuplicateIdentity
	}
	sub.ID = s.nextID
	s.nextID++
	stored := *sub
	s.byID[stored.ID] = &stored
	s.byMSISDN[stored.MSISDN] = &stored
	s.byDocNum[stored.DocumentNumber] = &stored
	return nil
}

// StampLoanApplication records the subscriber's most recent application
// time. The loan ledger's memory store calls this when a loan is created.
func (s *MemoryStore) StampLoanApplication(subscriberID int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.byID[subscriberID]; ok {
		stored.LastLoanApplication = &at
	}
}
