package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
)

// WithSessionID stores the browser session id in the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// GetSessionIDFromContext extracts the session ID from the request context
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok && sessionID != ""
}

// ParseID validates a backend id taken from a path or form value
func ParseID(idStr string, fieldName string) (int64, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return 0, fmt.Errorf("%s is required", fieldName)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", fieldName)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s must be positive", fieldName)
	}
	return id, nil
}

// ParseOptionalID is ParseID for selects whose empty choice means "none"
func ParseOptionalID(idStr string, fieldName string) (int64, error) {
	if strings.TrimSpace(idStr) == "" {
		return 0, nil
	}
	return ParseID(idStr, fieldName)
}

// ParseQuantity reads an integer form field. Range checks are left to the
// caller so that they surface as user facing validation messages.
func ParseQuantity(value string, fieldName string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", fieldName)
	}
	return n, nil
}

// ParseBool accepts the values an HTML checkbox or hidden input produces
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}
