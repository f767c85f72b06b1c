// Package utils provides small, generic helper functions used across
// different layers of the application: query-string parsing for the HTTP
// handlers and page arithmetic for the services.
package utils

import (
	"fmt"
	"strconv"
)

// Page size bounds shared by every paginated listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AtoiDefault converts s to an int, returning def when s is empty or not a
// valid integer.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // 42
//	n = utils.AtoiDefault("", 10)   // 10
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Paginate clamps page and pageSize into their valid ranges and returns
// them with the matching row offset. Pages are 1-based.
func Paginate(page, pageSize int) (p, size, offset int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

// ParseSnowflake parses a positive Discord snowflake from its decimal form.
func ParseSnowflake(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("snowflake must be positive, got %d", v)
	}
	return v, nil
}
