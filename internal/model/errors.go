package model

import (
	"fmt"
	"strings"
)

// FieldError describes a single field-level constraint violation found
// while validating an invoice request
type FieldError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
	Message string      `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewFieldError creates a new field error
func NewFieldError(field string, value interface{}, rule, message string) *FieldError {
	return &FieldError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// ValidationError represents a malformed input invoice. It carries every
// field violation found so a caller can fix all issues in one round trip.
type ValidationError struct {
	Fields []*FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("invalid invoice: %s", e.Fields[0].Error())
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("invalid invoice (%d problems): %s", len(e.Fields), strings.Join(msgs, "; "))
}

// Add appends a field error
func (e *ValidationError) Add(field string, value interface{}, rule, message string) {
	e.Fields = append(e.Fields, NewFieldError(field, value, rule, message))
}

// HasErrors reports whether any field error was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// SerializationError represents an unsupported code or currency hit while
// mapping a document to CII XML. Recoverable: indicates a configuration gap.
type SerializationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *SerializationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("serialization failed on %s: %s (value=%v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("serialization failed on %s: %s", e.Field, e.Message)
}

// NewSerializationError creates a new serialization error
func NewSerializationError(field string, value interface{}, message string) *SerializationError {
	return &SerializationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// PackagingError represents a PDF generation or embedding failure. Fatal for
// the request: no usable artifact exists to report on.
type PackagingError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *PackagingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("packaging failed [%s]: %s (%v)", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("packaging failed [%s]: %s", e.Stage, e.Message)
}

func (e *PackagingError) Unwrap() error {
	return e.Cause
}

// NewPackagingError creates a new packaging error
func NewPackagingError(stage, message string, cause error) *PackagingError {
	return &PackagingError{
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}
