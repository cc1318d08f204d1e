package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes for the console's failure taxonomy.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUploadFailed     = "UPLOAD_FAILED"
	CodeWriteFailed      = "WRITE_FAILED"
	CodeStaleResponse    = "STALE_RESPONSE"
	CodeNotFound         = "NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError rejects bad input before any upstream call is made.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

// NewUploadError wraps an attachment-phase failure. The reply pipeline aborts
// before any comment is created when it sees one of these.
func NewUploadError(err error) error {
	return &DomainError{
		Code:       CodeUploadFailed,
		Message:    "attachment upload failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewWriteError wraps an upstream write failure. Callers roll back by
// refetching the affected ticket.
func NewWriteError(message string, err error, details map[string]any) error {
	if message == "" {
		message = "upstream write failed"
	}
	return &DomainError{
		Code:       CodeWriteFailed,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
		Err:        err,
	}
}

// NewStaleResponse marks a response that arrived for a ticket or request
// sequence no longer active. Never surfaced to the user.
func NewStaleResponse(ticketID int64, seq uint64) error {
	return &DomainError{
		Code:       CodeStaleResponse,
		Message:    "stale response discarded",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"ticket_id": ticketID, "seq": seq},
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool { return hasCode(err, CodeValidationFailed) }

// IsUploadFailure reports whether err is an attachment-phase failure.
func IsUploadFailure(err error) bool { return hasCode(err, CodeUploadFailed) }

// IsWriteFailure reports whether err is an upstream write failure.
func IsWriteFailure(err error) bool { return hasCode(err, CodeWriteFailed) }

// IsStaleResponse reports whether err marks a discarded stale response.
func IsStaleResponse(err error) bool { return hasCode(err, CodeStaleResponse) }

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
