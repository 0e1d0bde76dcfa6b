package domain

import "errors"

// Kind classifies failures surfaced to callers.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindAlreadyExists      Kind = "already_exists"
	KindInvalidArgument    Kind = "invalid_argument"
	KindBackendUnavailable Kind = "backend_unavailable"
)

// Sentinels to match with errors.Is.
var (
	ErrNotFound           = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrForbidden          = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrAlreadyExists      = &Error{Kind: KindAlreadyExists, Msg: "already exists"}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument, Msg: "invalid argument"}
	ErrBackendUnavailable = &Error{Kind: KindBackendUnavailable, Msg: "backend unavailable"}
)

// Error carries a Kind plus a user-facing message. Two Errors match under
// errors.Is when their kinds match.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Unavailable wraps a store failure as BackendUnavailable.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindBackendUnavailable, Msg: "backend unavailable", Err: err}
}

// KindOf returns the Kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
