package errors

import (
	"time"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// ErrorHandler normalises failures and reports them to the operator log.
// It is the default user-facing error sink of the HTTP client.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ShowError reports an error the way the console shows a message toast.
func (h *ErrorHandler) ShowError(err *HTTPError) {
	if err == nil {
		return
	}
	fields := map[string]interface{}{
		"status":        err.Status,
		"errorCode":     string(err.Code),
		"message":       err.Message,
		"details":       err.Details,
		"url":           err.URL,
		"retryable":     err.Retryable,
		"errorCategory": GetErrorCategory(err.Code),
	}
	if err.Code == ErrCodeUnauthorized {
		h.logger.Warn("Session rejected by server", fields)
		return
	}
	h.logger.Error("Request failed", fields)
}

// Normalize ensures we always have an HTTPError.
func (h *ErrorHandler) Normalize(err error) *HTTPError {
	if err == nil {
		return nil
	}
	if httpErr, ok := AsHTTPError(err); ok {
		return httpErr
	}
	return &HTTPError{
		Status:    500,
		Code:      ErrCodeRequestFailed,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
