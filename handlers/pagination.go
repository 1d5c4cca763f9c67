package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CursorResponse wraps a page of results with the cursor for the next page.
type CursorResponse struct {
	Data       interface{} `json:"data"`
	NextCursor *uint       `json:"next_cursor"`
	HasMore    bool        `json:"has_more"`
}

// paginationParams pulls cursor/limit from the query string. The cursor is
// the last seen primary key; zero means start from the beginning.
func paginationParams(c *gin.Context) (cursor uint, limit int) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := c.Query("cursor"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			cursor = uint(parsed)
		}
	}
	return cursor, limit
}
