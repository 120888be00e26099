package reservation

import (
	"fmt"
	"sort"
	"strings"
)

// ConflictError means the requested interval lost the race for its last
// capacity unit at commit time. It is an expected outcome, distinct from
// validation failures so the client can route the visitor back to slot
// selection instead of showing a form error.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewConflictError(msg string) error {
	return &ConflictError{
		Code:    "conflictError",
		Message: msg,
	}
}

// ValidationError reports malformed reservation input with per-field
// feedback.
type ValidationError struct {
	Code   string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s: %s", e.Code, strings.Join(parts, "; "))
}

func NewValidationError(fields map[string]string) error {
	return &ValidationError{
		Code:   "validationError",
		Fields: fields,
	}
}
