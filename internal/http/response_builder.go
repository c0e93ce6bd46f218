// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses.
// Success bodies can be wrapped in the {status, data, timestamp} envelope;
// error bodies always use the {status, error, code} shape.

package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	data       any
	headers    map[string]string
	envelope   bool
	now        func() time.Time
}

// envelope is the optional wrapper for success bodies.
type envelope struct {
	Status    string `json:"status"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

// errorBody is the shape of every error response.
type errorBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Code   string `json:"code"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
		now:        time.Now,
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Data sets the value encoded as the body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Envelope wraps the body in {status: "success", data, timestamp} when on.
func (b *JSONResponseBuilder) Envelope(on bool) *JSONResponseBuilder {
	b.envelope = on
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	body := b.data
	if b.envelope {
		body = envelope{
			Status:    "success",
			Data:      b.data,
			Timestamp: b.now().UTC().Format(time.RFC3339Nano),
		}
	}

	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message, code string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(errorBody{Status: "error", Error: message, Code: code})
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message, code string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message, code)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "Internal server error", "internal_error")
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", "method_not_allowed")
}

// TooManyRequestsError creates a 429 response. Retry-After is set by the limiter.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", "rate_limited")
}
