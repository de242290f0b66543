package domain

import "time"

// DocumentType is the closed set of identity documents accepted at
// registration.
type DocumentType string

const (
	DocumentNationalID     DocumentType = "national_id"
	DocumentPassport       DocumentType = "passport"
	DocumentDriversLicense DocumentType = "drivers_license"
)

// Label returns the wording prompts use for a document type.
func (d DocumentType) Label() string {
	switch d {
	case DocumentNationalID:
		return "Ghana Card"
	case DocumentPassport:
		return "Passport"
	case DocumentDriversLicense:
		return "Driver's License"
	default:
		return string(d)
	}
}

// Subscriber is a registered end user, keyed by phone number. Immutable after
// creation except for the last-loan-application stamp.
type Subscriber struct {
	ID                  int64
	MSISDN              string
	FullName            string
	DateOfBirth         string // DDMMYYYY as collected
	DocumentType        DocumentType
	DocumentNumber      string
	RegisteredAt        time.Time
	LastLoanApplication *time.Time
}
