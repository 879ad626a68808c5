// Package handlers provides HTTP handler implementations for the console API.
//
// This file defines the response utilities shared by all endpoints: a
// structured error envelope with a stable machine-readable code, and helpers
// for the common success shapes. fail() centralizes error formatting and
// makes sure 5xx responses are logged with request context.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "ticket not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-console/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
// RequestID correlates server logs with client-side errors; Code is one of
// the constants in errors.go; Message is safe to show to operators.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to operators)
	Message string `json:"message" example:"ticket not found"`
}

// fail aborts the request with a structured error envelope. Server errors
// (>= 500) are additionally logged via the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for use from router setup
// (NoRoute/NoMethod fallbacks).
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// respond writes a success JSON response with the given status.
func respond(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
