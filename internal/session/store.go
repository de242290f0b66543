package session

import (
	"context"

	"sikaloan/internal/domain"
)

// Store persists conversation state per subscriber. Implementations must
// serialize operations for one MSISDN so a retried gateway request observes
// either the pre- or post-transition session, never a torn mix.
type Store interface {
	// LoadOrCreate returns the subscriber's session, creating and persisting
	// a fresh one at the initial step when none exists. The second return
	// reports whether a session was created.
	LoadOrCreate(ctx context.Context, msisdn string) (*domain.Session, bool, error)

	// Advance persists the session's current step and flow data, refreshing
	// its expiry.
	Advance(ctx context.Context, sess *domain.Session) error

	// End deletes the session so the next contact starts a clean
	// conversation. Deleting an absent session is not an error.
	End(ctx context.Context, msisdn string) error
}
