package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// TriggerHeader carries client-side events as a JSON object, read by app.js.
const TriggerHeader = "X-Trigger"

// FragmentResponse builds partial HTML responses and their event triggers.
type FragmentResponse struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewFragment creates a new response builder with default 200 status.
func NewFragment() *FragmentResponse {
	return &FragmentResponse{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *FragmentResponse) Status(code int) *FragmentResponse {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the trigger header.
func (b *FragmentResponse) Trigger(name string, data any) *FragmentResponse {
	b.triggers[name] = data
	return b
}

// TriggerThemeChanged tells the page to re-render with the new theme.
func (b *FragmentResponse) TriggerThemeChanged(theme string) *FragmentResponse {
	return b.Trigger("theme:changed", map[string]string{"theme": theme})
}

// Header adds a custom header to the response.
func (b *FragmentResponse) Header(name, value string) *FragmentResponse {
	b.headers[name] = value
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *FragmentResponse) BodyHTML(html string) *FragmentResponse {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *FragmentResponse) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set(TriggerHeader, string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse is an escaped error block in place of a data section.
func ErrorResponse(statusCode int, message string) *FragmentResponse {
	return NewFragment().
		Status(statusCode).
		BodyHTML(`<div class="card error" role="alert">` + template.HTMLEscapeString(message) + `</div>`)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *FragmentResponse {
	return ErrorResponse(http.StatusBadRequest, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *FragmentResponse {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError(message string) *FragmentResponse {
	return ErrorResponse(http.StatusTooManyRequests, message)
}
