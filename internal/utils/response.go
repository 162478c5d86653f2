package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response defines the standard API response envelope.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// ErrorInfo provides details for error responses.
type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Success writes a success response with the standard envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	write(c, Response{Success: true, Code: code, Message: message, Data: data}, nil)
}

// SuccessWithPagination writes a success response with pagination metadata.
// Non-positive page and limit fall back to 1 and 50.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	write(c, Response{Success: true, Code: code, Message: message, Data: data}, &Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + limit - 1) / limit,
	})
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	ErrorWithDetails(c, code, errCode, message, nil)
}

// ErrorWithDetails is Error with machine-readable details attached.
func ErrorWithDetails(c *gin.Context, code int, errCode, message string, details interface{}) {
	write(c, Response{
		Code:    code,
		Message: message,
		Error:   &ErrorInfo{Code: errCode, Message: message, Details: details},
	}, nil)
}

func write(c *gin.Context, resp Response, pagination *Pagination) {
	resp.Meta = Meta{
		RequestID:  requestID(c),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Pagination: pagination,
	}
	c.JSON(resp.Code, resp)
}

func requestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
