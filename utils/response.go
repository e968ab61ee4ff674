package utils

import "github.com/gin-gonic/gin"

// Pagination is included in paginated list responses.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// OK writes the uniform success envelope.
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// OKMessage writes a success envelope carrying a message alongside data.
func OKMessage(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"success": true, "message": message, "data": data})
}

// OKList writes a paginated list envelope with count, total and pagination.
func OKList(c *gin.Context, status int, data interface{}, count int, total int64, p Pagination) {
	c.JSON(status, gin.H{
		"success":    true,
		"data":       data,
		"count":      count,
		"total":      total,
		"pagination": p,
	})
}

// Fail writes the uniform error envelope. The message must be safe to show a
// client; never pass raw internal errors here.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// TotalPages computes ceil(total/limit) for the pagination block.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pages
}
