package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors, one per failure kind the terminal distinguishes.
var (
	ErrValidation  = errors.New("validation failed")
	ErrAuth        = errors.New("authentication failed")
	ErrAPI         = errors.New("backend api error")
	ErrNetwork     = errors.New("network error")
	ErrSessionLost = errors.New("session lost")
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal error")
)

// AppError represents a structured local error with HTTP status mapping.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation creates a local, pre-network validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

// ValidationFields creates a validation error carrying per-field messages.
func ValidationFields(message string, fields map[string]string) *AppError {
	e := Validation(message)
	e.Fields = fields
	return e
}

// AuthFailed creates an error for credentials rejected on login or register.
func AuthFailed(message string, cause error) *AppError {
	err := ErrAuth
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrAuth, cause)
	}
	return &AppError{
		Code:    "AUTH_FAILED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// APIError is a non-2xx backend response that survived any refresh-and-retry.
// Body holds the decoded JSON value when the response declared a JSON
// content type, otherwise the raw text.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   any
	Raw    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: backend returned status %d", e.Method, e.Path, e.Status)
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

// Message extracts a human readable message from the response body.
// It understands {"error":{"message":..}}, {"message":..} and {"detail":..}
// shapes and falls back to raw text.
func (e *APIError) Message() string {
	switch b := e.Body.(type) {
	case map[string]any:
		if inner, ok := b["error"].(map[string]any); ok {
			if msg, ok := inner["message"].(string); ok {
				return msg
			}
		}
		for _, key := range []string{"message", "detail", "error"} {
			if msg, ok := b[key].(string); ok {
				return msg
			}
		}
	case string:
		if b != "" {
			return b
		}
	}
	return http.StatusText(e.Status)
}

// NetworkError is a transport-level failure: unreachable host, timeout,
// open circuit. It is never retried automatically.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// SessionLost marks the session as torn down after a failed token refresh.
// The cause stays reachable through errors.Is and errors.As.
func SessionLost(cause error) error {
	if cause == nil {
		return ErrSessionLost
	}
	return fmt.Errorf("%w: %w", ErrSessionLost, cause)
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool { return errors.Is(err, ErrNetwork) }

// HTTPStatus returns the HTTP status code a local API should answer with.
func HTTPStatus(err error) int {
	if errors.Is(err, ErrSessionLost) {
		return http.StatusUnauthorized
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth), errors.Is(err, ErrSessionLost):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
