// Package apperr defines the error taxonomy shared by services and
// handlers. Handlers map each kind to an HTTP status; services wrap
// storage failures as Internal so callers never see driver errors.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Unauthorized: missing or expired session.
	Unauthorized Kind = iota
	// Forbidden: authenticated but insufficient role.
	Forbidden
	// NotFound: referenced session/event/record absent.
	NotFound
	// Invalid: malformed filters or input (bad code format, bad page).
	Invalid
	// RateLimited: throttled, e.g. 2FA attempts.
	RateLimited
	// Internal: persistence or downstream failure.
	Internal
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the taxonomy kind of err, defaulting to Internal for
// errors that did not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

var (
	ErrSessionExpired = New(Unauthorized, "session expired")
	ErrInvalidCode    = New(Invalid, "invalid code")
	ErrRateLimited    = New(RateLimited, "too many attempts")
)
