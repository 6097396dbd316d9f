package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is returned for any non-2xx answer from the backend.
type Error struct {
	Operation  string
	StatusCode int
	Message    string
	// Body is the raw reply, for callers whose endpoint puts a result
	// envelope on error statuses too.
	Body []byte
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d %s", e.Operation, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// newError builds an Error, pulling a message out of the common envelope shapes
// the backend uses for failures ({"error": ...}, {"detail": ...}, {"message": ...}).
func newError(operation string, status int, body []byte) *Error {
	return &Error{
		Operation:  operation,
		StatusCode: status,
		Message:    errorMessage(body),
		Body:       append([]byte(nil), body...),
	}
}

func errorMessage(body []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"error", "detail", "message"} {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		if len(raw) > 0 && string(raw) != "null" {
			return string(raw)
		}
	}
	return ""
}

// StatusCode returns the HTTP status of an *Error, or 0 for any other error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound checks if an error is a 404 answer from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsServerError checks if an error is a 5xx answer from the backend.
func IsServerError(err error) bool {
	code := StatusCode(err)
	return code >= 500 && code <= 599
}
