package shared

import (
	"sort"
	"strings"
)

// ValidationError carries field-keyed messages for a 422 response.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError builds a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	verr := &ValidationError{}
	verr.Add(field, message)
	return verr
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Has reports whether field already has a message.
func (e *ValidationError) Has(field string) bool {
	return e != nil && len(e.Fields[field]) > 0
}

// Empty reports whether no messages were collected.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return ErrValidation.Error() + ": " + strings.Join(keys, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Attribute renders a field name the way messages refer to it.
func Attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
