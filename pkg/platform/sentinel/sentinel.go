package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors without leaking driver
// details upward.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrDuplicateIdentity = errors.New("identity already registered")
	ErrActiveLoanExists  = errors.New("active loan exists")
	ErrNoActiveLoan      = errors.New("no active loan")
	ErrUnavailable       = errors.New("storage unavailable")
)
