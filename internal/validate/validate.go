// Package validate holds the stateless input checks the conversation steps
// apply. Formats mirror what the USSD prompts advertise; keep the two in
// sync when changing either.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"sikaloan/internal/domain"
)

var (
	// At least first and last name, letters only.
	nameRe = regexp.MustCompile(`^[A-Za-z]+(?:\s+[A-Za-z]+)+$`)
	// DDMMYYYY: day 01-31, month 01-12, year 19xx or 20xx.
	dobRe = regexp.MustCompile(`^(0[1-9]|[12][0-9]|3[01])(0[1-9]|1[0-2])(19|20)\d{2}$`)
	// Ghana Card: GHA followed by 10 digits.
	ghanaCardRe = regexp.MustCompile(`^GHA\d{10}$`)
	// Passport: A or G followed by 7 digits.
	passportRe = regexp.MustCompile(`^[AG]\d{7}$`)
	// Driver's License: 3 letters, 8-digit date of issue, 4-digit serial.
	driversLicenseRe = regexp.MustCompile(`^[A-Z]{3}-\d{8}-\d{4}$`)

	nonAmountRe = regexp.MustCompile(`[^0-9.]`)
)

// FullName accepts at least two space-separated alphabetic tokens.
func FullName(s string) bool {
	return nameRe.MatchString(strings.TrimSpace(s))
}

// DateOfBirth accepts DDMMYYYY with calendar-shaped day and month.
func DateOfBirth(s string) bool {
	return dobRe.MatchString(s)
}

// DocumentNumber checks a normalised document number against the format for
// its type. Callers normalise with NormalizeDocumentNumber first.
func DocumentNumber(t domain.DocumentType, s string) bool {
	switch t {
	case domain.DocumentNationalID:
		return ghanaCardRe.MatchString(s)
	case domain.DocumentPassport:
		return passportRe.MatchString(s)
	case domain.DocumentDriversLicense:
		return driversLicenseRe.MatchString(s)
	default:
		return false
	}
}

// NormalizeDocumentNumber trims and upper-cases raw input before validation.
func NormalizeDocumentNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DocumentFormatExample returns the example shown when a document number is
// rejected.
func DocumentFormatExample(t domain.DocumentType) string {
	switch t {
	case domain.DocumentNationalID:
		return "GHA1234567890"
	case domain.DocumentPassport:
		return "A1234567 or G1234567"
	case domain.DocumentDriversLicense:
		return "MIC-05081980-7558"
	default:
		return ""
	}
}

// MSISDN accepts the fixed country-code prefix followed by exactly 9 digits.
func MSISDN(countryCode, s string) bool {
	rest, ok := strings.CutPrefix(s, countryCode)
	if !ok || len(rest) != 9 {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Amount strips everything but digits and dots, then parses. Returns false
// for unparseable or non-positive values. Keyed-in loan amounts often arrive
// with currency symbols or spaces.
func Amount(s string) (float64, bool) {
	clean := nonAmountRe.ReplaceAllString(strings.TrimSpace(s), "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// StrictAmount parses a plain positive number with no input cleaning, so a
// stray sign or letter re-prompts instead of being silently dropped.
// Repayments use this; money moves on the result.
func StrictAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
