// Package errors provides the typed error surfaced by the console HTTP layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

// ErrorCode is a stable, machine readable classification of an HTTPError.
type ErrorCode string

const (
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeRequestFailed      ErrorCode = "REQUEST_FAILED"
	ErrCodeRequestTimeout     ErrorCode = "REQUEST_TIMEOUT"
	ErrCodeNetworkError       ErrorCode = "NETWORK_ERROR"
	ErrCodeRequestCanceled    ErrorCode = "REQUEST_CANCELED"
	ErrCodeServerError        ErrorCode = "SERVER_ERROR"
	ErrCodeInvalidResponse    ErrorCode = "INVALID_RESPONSE"
	ErrCodeRequestConfigError ErrorCode = "REQUEST_CONFIG_ERROR"
)

// ==========================
// 2. HTTPError
// ==========================

// HTTPError is returned for every failed API call. Status carries either the
// HTTP status or the envelope code reported by the backend.
type HTTPError struct {
	Status    int       `json:"status"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	URL       string    `json:"url,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPError[%d %s]: %s", e.Status, e.Code, e.Message)
}

// WithURL records the request path on the error and returns it.
func (e *HTTPError) WithURL(url string) *HTTPError {
	e.URL = url
	return e
}

// ==========================
// 3. Constructors
// ==========================

// NewHTTPError builds an error for a status, deriving code and retryability.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		Status:    status,
		Code:      CodeForStatus(status),
		Message:   message,
		Retryable: IsRetryableStatus(status),
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates the error returned to every caller hit by a 401.
func NewUnauthorizedError(message string) *HTTPError {
	if message == "" {
		message = "Session expired, please log in again"
	}
	return NewHTTPError(http.StatusUnauthorized, message)
}

// NewTimeoutError creates a retryable timeout error.
func NewTimeoutError(err error) *HTTPError {
	e := NewHTTPError(http.StatusRequestTimeout, "Request timed out")
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewNetworkError creates a non-retryable error for requests that never got a response.
func NewNetworkError(err error) *HTTPError {
	e := NewHTTPError(http.StatusBadRequest, "Network error, please check your connection")
	e.Code = ErrCodeNetworkError
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewCanceledError is returned when the caller's context was canceled before
// a response arrived. It is never shown to the user.
func NewCanceledError(err error) *HTTPError {
	e := NewHTTPError(http.StatusBadRequest, "Request canceled")
	e.Code = ErrCodeRequestCanceled
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// NewInvalidResponseError is used when a 2xx body is not a valid envelope.
func NewInvalidResponseError(details string) *HTTPError {
	e := NewHTTPError(http.StatusBadRequest, "Invalid response from server")
	e.Code = ErrCodeInvalidResponse
	e.Details = details
	return e
}

// NewRequestConfigError is used when a request cannot be built.
func NewRequestConfigError(err error) *HTTPError {
	e := NewHTTPError(http.StatusBadRequest, "Request configuration error")
	e.Code = ErrCodeRequestConfigError
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// ==========================
// 4. Classification
// ==========================

// IsRetryableStatus reports whether a status belongs to the transient set:
// timeout, internal server error, bad gateway, service unavailable, gateway timeout.
func IsRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// CodeForStatus maps a status to its ErrorCode.
func CodeForStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrCodeRequestTimeout
	case status >= 500:
		return ErrCodeServerError
	default:
		return ErrCodeRequestFailed
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeUnauthorized || code == ErrCodeForbidden:
		return "AUTH"
	case code == ErrCodeNetworkError || code == ErrCodeRequestCanceled || strings.Contains(codeStr, "TIMEOUT"):
		return "TRANSPORT"
	case code == ErrCodeServerError:
		return "SERVER"
	case code == ErrCodeInvalidResponse:
		return "RESPONSE"
	case strings.Contains(codeStr, "CONFIG"):
		return "CLIENT"
	default:
		return "OTHER"
	}
}

// AsHTTPError unwraps err into an *HTTPError when possible.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// IsCanceled reports whether err is a canceled-request HTTPError.
func IsCanceled(err error) bool {
	httpErr, ok := AsHTTPError(err)
	return ok && httpErr.Code == ErrCodeRequestCanceled
}

// IsUnauthorized reports whether err is a 401 HTTPError.
func IsUnauthorized(err error) bool {
	httpErr, ok := AsHTTPError(err)
	return ok && httpErr.Status == http.StatusUnauthorized
}
