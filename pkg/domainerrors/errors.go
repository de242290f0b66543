package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error so transports can translate it without
// inspecting message text.
type Code string

const (
	// CodeValidation marks malformed input at a conversation step. Recovered
	// locally by re-prompting; never surfaced as a transport failure.
	CodeValidation Code = "validation"
	// CodeBusinessRule marks a rule violation (active loan exists, no active
	// loan, amount out of bounds). Ends the conversation with an explanatory
	// message rather than a system error.
	CodeBusinessRule Code = "business_rule"
	// CodeDuplicate marks a registration colliding with an existing identity.
	CodeDuplicate Code = "duplicate"
	// CodeBadRequest marks a malformed request at the transport edge.
	CodeBadRequest Code = "bad_request"
	// CodeUnavailable marks a persistence layer that is unreachable or
	// rejected a write.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks any unexpected fault.
	CodeInternal Code = "internal"
)

// Error carries a code alongside the message. Services return these so the
// HTTP layer can pick a status without string matching.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is / errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors so unexpected faults degrade to a generic failure.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the status the transport should answer with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeDuplicate:
		return http.StatusConflict
	case CodeBusinessRule:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
