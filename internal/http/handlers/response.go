// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelope shared by every endpoint plus the
// small request helpers (path snowflakes, pagination) the handlers reuse.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "guild not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rule-store/internal/http/middleware"
	"github.com/tbourn/go-rule-store/internal/utils"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message
	Message string `json:"message" example:"resource not found"`
}

// fail aborts the request with a structured error. 5xx responses are also
// logged through the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail() for router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// Page wraps one page of items.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// pageParams reads page and page_size from the query and clamps them.
func pageParams(c *gin.Context) (page, pageSize int) {
	page, pageSize, _ = utils.Paginate(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), utils.DefaultPageSize),
	)
	return page, pageSize
}

func newPage[T any](items []T, page, pageSize int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Page[T]{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
}

// snowflakeParam parses a positive snowflake path parameter. On failure it
// writes a 400 and returns false.
func snowflakeParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ParseSnowflake(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive snowflake")
		return 0, false
	}
	return id, true
}

// snowflakeQuery parses an optional snowflake query parameter. Absent
// yields 0.
func snowflakeQuery(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := utils.ParseSnowflake(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive snowflake")
		return 0, false
	}
	return id, true
}
