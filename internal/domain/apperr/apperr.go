// Package apperr classifies domain failures so adapters can branch on the
// kind of failure instead of matching messages.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindFatal covers persistence and any unclassified failure.
	KindFatal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "fatal"
	}
}

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

// Is lets sentinel *Error values match by identity and by Kind+Msg, so a
// wrapped copy of a sentinel still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

func New(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Fatal wraps err as a persistence/unexpected failure.
func Fatal(msg string, err error) *Error {
	return &Error{Kind: KindFatal, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain; anything else is fatal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindFatal
}

func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return err != nil && KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return err != nil && KindOf(err) == KindConflict }

// Classify returns err unchanged when it already carries an *Error and
// wraps it as Fatal under op otherwise.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Fatal(op, err)
}
