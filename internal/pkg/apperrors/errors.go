// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors shared across domains
var (
	// ErrAuthRequired is returned when a mutating operation runs without an identity.
	ErrAuthRequired = errors.New("authentication required")
	// ErrDuplicateItem is returned by stores on a (user, agent) uniqueness violation.
	ErrDuplicateItem = errors.New("item already in cart")
	// ErrNotFound is returned when a targeted row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned when the identity lacks the required role.
	ErrForbidden = errors.New("access denied")
	// ErrSubmissionInFlight is returned when a checkout submit arrives while a payment request is running.
	ErrSubmissionInFlight = errors.New("payment request already in progress")
)

// ValidationError lists the fields that failed local validation
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// NewValidationError creates a validation error for a single rule violation
func NewValidationError(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

// UpstreamPaymentError is returned when the payment provider rejects a request
type UpstreamPaymentError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamPaymentError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("failed to create payment: upstream status %d", e.StatusCode)
	}
	if e.Message != "" {
		return e.Message
	}
	return "failed to create payment"
}

// TransportError wraps network failures reaching a remote dependency
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing server-side setting. Its message is
// never shown to clients.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return e.Setting + " is not configured"
}

// HTTPStatus maps an error to the status code handlers respond with
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		upstreamErr   *UpstreamPaymentError
		transportErr  *TransportError
		configErr     *ConfigurationError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.As(err, &transportErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage converts an error into the message shown to the buyer
func UserMessage(err error) string {
	var (
		validationErr *ValidationError
		upstreamErr   *UpstreamPaymentError
		transportErr  *TransportError
		configErr     *ConfigurationError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthRequired):
		return "Please sign in to continue"
	case errors.Is(err, ErrForbidden):
		return "You do not have access to this resource"
	case errors.Is(err, ErrNotFound):
		return "Resource not found"
	case errors.Is(err, ErrSubmissionInFlight):
		return "Your payment is already being processed"
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &upstreamErr):
		return upstreamErr.Error()
	case errors.As(err, &transportErr):
		return "Service temporarily unavailable, please try again"
	case errors.As(err, &configErr):
		return "Payment service unavailable"
	default:
		return "Something went wrong, please try again"
	}
}
