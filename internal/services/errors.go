package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSignatureInvalid  = errors.New("invalid signature")
	ErrUnknownEvent      = errors.New("unknown event type")
	ErrMarketNotFound    = errors.New("market not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRemoteRejected    = errors.New("remote service rejected the request")
	ErrRemoteUnavailable = errors.New("remote service unreachable")
)

// ErrDuplicateEvent marks an idempotency short-circuit. Handlers treat it
// as success, not failure.
var ErrDuplicateEvent = errors.New("duplicate event")

// RemoteError carries the remote HTTP status and the mapped sentinel so
// callers can both branch on the class and report the specifics.
type RemoteError struct {
	Kind    error
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Kind
}

// mapRemoteStatus assigns a wager-API failure class to an HTTP status.
func mapRemoteStatus(status int, message string) error {
	var kind error
	switch {
	case status == 401:
		kind = ErrUnauthorized
	case status == 403:
		kind = ErrSignatureInvalid
	case status == 404:
		kind = ErrMarketNotFound
	case status >= 400 && status < 500:
		kind = ErrInvalidRequest
	case status >= 500:
		kind = ErrRemoteRejected
	default:
		kind = ErrRemoteRejected
	}
	return &RemoteError{Kind: kind, Status: status, Message: message}
}

// networkError wraps a transport-level failure (DNS, timeout, refused).
// Timeouts are deliberately treated the same as hard failures: the refund
// path runs, and a timed-out-but-landed remote call is an operator matter.
func networkError(err error) error {
	return &RemoteError{Kind: ErrRemoteUnavailable, Message: err.Error()}
}
