package api

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures so callers can route them without
// string-matching server messages.
type Kind int

const (
	// KindTransport covers network errors, timeouts and unparseable responses.
	KindTransport Kind = iota
	// KindAuth means the session itself was rejected (expired/missing cookie).
	// Callers are expected to force the login view.
	KindAuth
	// KindValidation is a client-side rejection; no request was sent.
	KindValidation
	// KindVerification means the server rejected a vault passphrase (or a
	// project name) for the attempted operation.
	KindVerification
	// KindOperation is a server-side failure after verification passed.
	KindOperation
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindVerification:
		return "verification"
	case KindOperation:
		return "operation"
	default:
		return "transport"
	}
}

// Error is the typed failure returned by every Client call.
type Error struct {
	Kind    Kind
	Status  int // HTTP status; 0 when no response was received
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return fmt.Sprintf("request failed (%s)", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, status int, msg string) *Error {
	return &Error{Kind: kind, Status: status, Message: msg}
}

func transportErr(err error) *Error {
	return &Error{Kind: KindTransport, Message: "", cause: err}
}

// Validation builds a client-side rejection that never left the process.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf returns the failure kind of err, or KindTransport for anything that
// is not a gateway *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransport
}

// IsAuth reports whether err means the session is no longer valid.
func IsAuth(err error) bool { return KindOf(err) == KindAuth }

// IsVerification reports whether err is a rejected passphrase/name.
func IsVerification(err error) bool { return KindOf(err) == KindVerification }
