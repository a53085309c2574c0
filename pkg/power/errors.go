package power

import (
	"errors"
	"fmt"
)

// ErrInvalidDateFormat is returned when a request date is not YYYY-MM-DD.
var ErrInvalidDateFormat = errors.New("invalid date format")

// ErrInvalidMode rejects a request whose mode is neither total nor a breakdown alias.
var ErrInvalidMode = errors.New("invalid mode")

// ErrorKind classifies recoverable request failures.
type ErrorKind string

const (
	KindEntityNotFound    ErrorKind = "entity_not_found"
	KindInvalidDateFormat ErrorKind = "invalid_date_format"
)

// RequestError is a failure that is reported back to the caller as a regular
// response carrying "ERROR: <reason>" instead of data.
type RequestError struct {
	Kind    ErrorKind
	Subject string
	Reason  string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Kind, e.Subject, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Subject, e.Reason)
}

func (e *RequestError) Unwrap() error { return e.Err }

// DisplayName is the value the explorer shows in the name field of an error response.
func (e *RequestError) DisplayName() string {
	return "ERROR: " + e.Reason
}

func entityNotFound(subject, reason string, cause error) *RequestError {
	return &RequestError{Kind: KindEntityNotFound, Subject: subject, Reason: reason, Err: cause}
}

func invalidDate(subject string, cause error) *RequestError {
	return &RequestError{
		Kind:    KindInvalidDateFormat,
		Subject: subject,
		Reason:  "wrong dateformat (format: YYYY-MM-DD)",
		Err:     cause,
	}
}
