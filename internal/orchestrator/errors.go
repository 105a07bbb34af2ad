package orchestrator

import (
	"errors"
	"fmt"
)

// FailurePrefix opens every failure message shown in place of a translation.
const FailurePrefix = "translation error: "

// ErrBusy is returned by Submit while an earlier task is still running.
var ErrBusy = errors.New("a translation is already in progress")

type ErrorKind int

const (
	EmptyInput ErrorKind = iota + 1
	InputTooLong
	BackendError
	EmptyResult
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyInput:
		return "empty input"
	case InputTooLong:
		return "input too long"
	case BackendError:
		return "backend error"
	case EmptyResult:
		return "empty result"
	default:
		return "unknown"
	}
}

// TranslationError carries the failure kind and, for backend failures, the
// error that caused it.
type TranslationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// Is matches any TranslationError of the same kind, so callers can write
// errors.Is(err, orchestrator.ErrEmptyResult).
func (e *TranslationError) Is(target error) bool {
	t, ok := target.(*TranslationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrEmptyInput   = &TranslationError{Kind: EmptyInput}
	ErrInputTooLong = &TranslationError{Kind: InputTooLong}
	ErrBackend      = &TranslationError{Kind: BackendError}
	ErrEmptyResult  = &TranslationError{Kind: EmptyResult}
)

// FormatFailure renders err as the text shown instead of a translation.
func FormatFailure(err error) string {
	if err == nil {
		return FailurePrefix + "unknown failure"
	}
	return FailurePrefix + err.Error()
}
