package blog

import (
	"github.com/pkg/errors"
)

// Kind classifies a domain failure. The HTTP layer maps each kind to a
// status code.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindConflict
	KindNotFound
	KindBadCredential
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindBadCredential:
		return "bad_credential"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a failure the caller can act on. Message is safe to show to
// clients; Err, when set, is the underlying cause and is not.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err. Anything that is not an *Error is
// internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of err, or "" for internal
// failures.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return ""
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func invalid(err error) *Error {
	return &Error{Kind: KindInvalid, Message: err.Error()}
}

func internal(err error, op string) error {
	return errors.Wrap(err, op)
}
