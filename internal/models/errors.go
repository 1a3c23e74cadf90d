package models

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ServiceError represents a client-visible failure category. It carries a
// stable machine-readable code, a human-readable description, and the HTTP
// status the handlers map it to. It implements the error interface.
type ServiceError struct {
	// Code is the machine-readable error category (e.g., "rate_limited").
	Code string `json:"error"`
	// Description provides additional human-readable error information.
	Description string `json:"error_description,omitempty"`
	// Files lists the offending display paths for "unknown_files" errors.
	Files []string `json:"files,omitempty"`
	// StatusCode is the HTTP status code to return (excluded from JSON).
	StatusCode int `json:"-"`
}

// Error returns a string representation of the service error.
func (e *ServiceError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Description)
	}
	return e.Code
}

// NewRateLimited creates a ServiceError for an exhausted request quota.
// The category names which operation class ("list" or "generate") was
// limited. Returns HTTP 429 Too Many Requests.
func NewRateLimited(category string) *ServiceError {
	return &ServiceError{
		Code:        "rate_limited",
		Description: fmt.Sprintf("too many %s requests, retry after the window elapses", category),
		StatusCode:  http.StatusTooManyRequests,
	}
}

// NewEmptyPayload creates a ServiceError for a missing archive upload.
// Returns HTTP 400 Bad Request.
func NewEmptyPayload() *ServiceError {
	return &ServiceError{
		Code:        "empty_payload",
		Description: "no archive bytes were uploaded",
		StatusCode:  http.StatusBadRequest,
	}
}

// NewPayloadTooLarge creates a ServiceError for an archive exceeding the
// configured size ceiling. Returns HTTP 413 Request Entity Too Large.
func NewPayloadTooLarge(maxBytes int64) *ServiceError {
	return &ServiceError{
		Code:        "payload_too_large",
		Description: fmt.Sprintf("archive exceeds the maximum allowed size of %d bytes", maxBytes),
		StatusCode:  http.StatusRequestEntityTooLarge,
	}
}

// NewMalformedArchive creates a ServiceError for bytes that do not parse as
// a ZIP container. Returns HTTP 422 Unprocessable Entity.
func NewMalformedArchive(description string) *ServiceError {
	return &ServiceError{
		Code:        "malformed_archive",
		Description: description,
		StatusCode:  http.StatusUnprocessableEntity,
	}
}

// NewEmptySelection creates a ServiceError for a generate request naming
// zero files. Returns HTTP 400 Bad Request.
func NewEmptySelection() *ServiceError {
	return &ServiceError{
		Code:        "empty_selection",
		Description: "no files selected",
		StatusCode:  http.StatusBadRequest,
	}
}

// NewSessionNotFound creates a ServiceError for an unknown or expired
// session identifier. Returns HTTP 404 Not Found.
func NewSessionNotFound() *ServiceError {
	return &ServiceError{
		Code:        "session_not_found",
		Description: "session is unknown or has expired, upload the archive again",
		StatusCode:  http.StatusNotFound,
	}
}

// NewUnknownFiles creates a ServiceError naming the requested display paths
// that are absent from the session's listing. Returns HTTP 400 Bad Request.
func NewUnknownFiles(paths []string) *ServiceError {
	return &ServiceError{
		Code:        "unknown_files",
		Description: fmt.Sprintf("unknown files requested: %s", strings.Join(paths, ", ")),
		Files:       paths,
		StatusCode:  http.StatusBadRequest,
	}
}

// NewInternalError creates a ServiceError for an unexpected internal fault.
// Returns HTTP 500 Internal Server Error.
func NewInternalError(description string) *ServiceError {
	return &ServiceError{
		Code:        "internal_error",
		Description: description,
		StatusCode:  http.StatusInternalServerError,
	}
}

// AsServiceError unwraps err into a *ServiceError if it carries one.
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
