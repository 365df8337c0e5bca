package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is returned for any non-2xx response from the backend. Message is
// what the dashboard shows the user.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorEnvelope is the JSON body the backend's exception handler writes
type errorEnvelope struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAPIError(status int, body []byte) *APIError {
	text := strings.TrimSpace(string(body))
	apiErr := &APIError{StatusCode: status, Body: text}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		apiErr.Message = envelope.Message
		return apiErr
	}

	if text != "" {
		apiErr.Message = text
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("request failed with status %d", status)
	return apiErr
}

// StatusCode extracts the HTTP status from an APIError, or 0 for any other error
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
