package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API call. Callers branch on Kind and never on
// HTTP status codes.
type Kind int

const (
	// KindTransport covers network errors, 5xx, undecodable bodies and an
	// open circuit breaker.
	KindTransport Kind = iota + 1
	// KindUnauthorized is a missing or expired session (401/403).
	KindUnauthorized
	// KindValidation is a 422 with per-field messages.
	KindValidation
	// KindRejected is a business-rule refusal such as insufficient stock
	// or an unknown product (any other 4xx).
	KindRejected
)

const GenericMessage = "Something went wrong"

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Status  int
	Message string
	// Fields maps the last segment of each reported location to its message.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api %s (%d): %s: %v", e.Kind, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("api %s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindTransport for errors that did not
// come from this package.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindRejected && apiErr.Status == 404
}

func transportError(status int, err error) *Error {
	return &Error{Kind: KindTransport, Status: status, Message: GenericMessage, Err: err}
}
