package errors

import (
	"errors"
	"strings"
)

var (
	ErrRecoverable = errors.New("recoverable err occoured")
)

func New(msg string) error {
	return errors.New(msg)
}

func Join(err ...error) error {
	return errors.Join(err...)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func NewRecoverable(msg string) error {
	return errors.Join(ErrRecoverable, New(msg))
}

// HandlerError capture handler error
type HandlerError interface {
	error

	IsRecoverable() bool
}

type recoverableError struct {
	error
}

func (er *recoverableError) IsRecoverable() bool {
	return true
}

// NewRecoverableError wraps err so a capture loop keeps running after
// the handler returns it.
func NewRecoverableError(err error) error {
	return &recoverableError{err}
}

// IsRecoverableError reports whether a handler error allows the
// capture loop to continue.
func IsRecoverableError(err error) bool {
	if v, ok := err.(HandlerError); ok {
		return v.IsRecoverable()
	}

	return errors.Is(err, ErrRecoverable)
}

// StackedHandlerError multiple errors
type StackedHandlerError struct {
	errors []error
}

func (err *StackedHandlerError) Error() string {
	messages := make([]string, len(err.errors))

	for idx, err := range err.errors {
		messages[idx] = err.Error()
	}

	return strings.Join(messages, "\n")
}

// IsRecoverable check if stacked errors is recoverable
func (err *StackedHandlerError) IsRecoverable() bool {
	for _, e := range err.errors {
		if v, ok := e.(HandlerError); !ok || !v.IsRecoverable() {
			return false
		}
	}

	return true
}

// HasErrors check if has errors
func (err *StackedHandlerError) HasErrors() bool {
	return len(err.errors) > 0
}

// AppendErr append multiple errors
func (err *StackedHandlerError) AppendErr(e error) {
	if e != nil {
		err.errors = append(err.errors, e)
	}
}
