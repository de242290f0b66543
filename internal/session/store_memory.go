package session

import (
	"context"
	"sync"
	"time"

	"sikaloan/internal/domain"
)

// MemoryStore is the in-process implementation for tests and local dev.
// Expiry is checked lazily on load; there is no background sweeper.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	sess      domain.Session
	expiresAt time.Time
}

// NewMemory constructs an in-memory session store. A zero ttl disables
// expiry.
func NewMemory(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) LoadOrCreate(_ context.Context, msisdn string) (*domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[msisdn]
	if ok && (s.ttl == 0 || s.now().Before(entry.expiresAt)) {
		return cloneSession(&entry.sess), false, nil
	}

	sess := domain.NewSession(msisdn)
	s.put(sess)
	return sess, true, nil
}

func (s *MemoryStore) Advance(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(sess)
	return nil
}

func (s *MemoryStore) End(_ context.Context, msisdn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, msisdn)
	return nil
}

func (s *MemoryStore) put(sess *domain.Session) {
	s.sessions[sess.MSISDN] = memoryEntry{sess: *cloneSession(sess), expiresAt: s.now().Add(s.ttl)}
}

// cloneSession copies the session and its flow bags, so callers and store
// never share pointers. The Redis store gets the same isolation from its
// JSON round-trip.
func cloneSession(sess *domain.Session) *domain.Session {
	copied := *sess
	if sess.Registration != nil {
		reg := *sess.Registration
		copied.Registration = &reg
	}
	if sess.Application != nil {
		app := *sess.Application
		copied.Application = &app
	}
	if sess.Repayment != nil {
		rp := *sess.Repayment
		copied.Repayment = &rp
	}
	return &copied
}
