// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: bot runtimes branch on them, so
// a code is never renamed once shipped. Every error response carries one of
// them next to the HTTP status.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_pattern",
//	  "message": "regex does not compile: missing closing )"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rule-store/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidPattern   = "invalid_pattern"
	ErrCodeValidation       = "validation_failed"
	ErrCodeStoreUnavailable = "store_unavailable"
)

// retryAfterSeconds is the hint sent with 503 store_unavailable responses.
const retryAfterSeconds = "2"

// failService maps a service error onto the matching status and code.
// Unknown errors are reported as 500 without leaking their text.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrInvalidPattern):
		fail(c, http.StatusUnprocessableEntity, ErrCodeInvalidPattern, err.Error())
	case errors.Is(err, services.ErrInvalidID),
		errors.Is(err, services.ErrInvalidScope),
		errors.Is(err, services.ErrEmptyEmoji),
		errors.Is(err, services.ErrEmptyCommand),
		errors.Is(err, services.ErrMissingUser),
		errors.Is(err, services.ErrTooLong),
		errors.Is(err, services.ErrInvalidCounter),
		errors.Is(err, services.ErrInvalidCount),
		errors.Is(err, services.ErrInvalidPrefix):
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		c.Header("Retry-After", retryAfterSeconds)
		_ = c.Error(err)
		fail(c, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "store temporarily unavailable")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
