package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds. Match with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStaleState        = errors.New("stale state")
	ErrNotFound          = errors.New("not found")
	ErrExternalService   = errors.New("external service error")
)

// Error carries a kind, a caller-facing message with enough context to reconstruct
// the decision (entity id, attempted range or transition) and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, cause error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func Validation(format string, args ...interface{}) error {
	return newError(ErrValidation, nil, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, nil, format, args...)
}

func InvalidTransition(format string, args ...interface{}) error {
	return newError(ErrInvalidTransition, nil, format, args...)
}

func StaleState(format string, args ...interface{}) error {
	return newError(ErrStaleState, nil, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, nil, format, args...)
}

func ExternalService(cause error, format string, args ...interface{}) error {
	return newError(ErrExternalService, cause, format, args...)
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind error, cause error, format string, args ...interface{}) error {
	return newError(kind, cause, format, args...)
}

// Message returns the caller-facing message of err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to its HTTP status and response code.
func HTTPStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, ErrStaleState):
		return http.StatusConflict, "STALE_STATE"
	case errors.Is(err, ErrExternalService):
		return http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
