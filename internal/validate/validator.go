// Package validate runs independent compliance validators over a packaged
// Factur-X artifact and reconciles their findings into one report.
package validate

import (
	"context"
	"fmt"
)

// Severity levels for findings
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Finding is one itemized validator observation
type Finding struct {
	Validator string `json:"validator"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
}

// Artifact is the unit under validation: the packaged PDF and the XML
// extracted from it (nil when extraction failed).
type Artifact struct {
	PDF []byte
	XML []byte
}

// Result is the outcome of a single validator run
type Result struct {
	Name      string
	Compliant bool
	Findings  []Finding
	// Err is an infrastructure failure (tool unavailable, timeout),
	// distinct from a compliance failure
	Err error
}

// AddFinding appends a finding with the given severity
func (r *Result) AddFinding(severity, code, message string) {
	r.Findings = append(r.Findings, Finding{
		Validator: r.Name,
		Code:      code,
		Message:   message,
		Severity:  severity,
	})
	if severity == SeverityError {
		r.Compliant = false
	}
}

// Validator is the narrow contract the orchestrator depends on. A validator
// inspects the artifact, returns compliant/non-compliant plus itemized
// findings, and must respect ctx for bounded execution.
type Validator interface {
	Name() string
	Validate(ctx context.Context, artifact *Artifact) *Result
}

// Error codes for validator infrastructure failures
const (
	ErrCodeValidatorUnavailable = "VALIDATOR_UNAVAILABLE"
	ErrCodeValidatorTimeout     = "VALIDATOR_TIMEOUT"
	// ErrCodeValidatorError covers infrastructure failures that are neither
	// a missing tool nor a deadline, such as local I/O errors
	ErrCodeValidatorError = "VALIDATOR_ERROR"
)

// ValidatorError represents a validator infrastructure failure. Never
// conflated with "invoice non-compliant".
type ValidatorError struct {
	Code      string
	Validator string
	Message   string
	Cause     error
}

func (e *ValidatorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Code, e.Validator, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Validator, e.Message)
}

func (e *ValidatorError) Unwrap() error {
	return e.Cause
}

// ErrValidatorUnavailable returns error for a missing external tool
func ErrValidatorUnavailable(validator, tool string) *ValidatorError {
	return &ValidatorError{
		Code:      ErrCodeValidatorUnavailable,
		Validator: validator,
		Message:   fmt.Sprintf("external tool not available: %s", tool),
	}
}

// ErrValidatorTimeout returns error for a validator exceeding its deadline
func ErrValidatorTimeout(validator string, cause error) *ValidatorError {
	return &ValidatorError{
		Code:      ErrCodeValidatorTimeout,
		Validator: validator,
		Message:   "validator did not complete within its deadline",
		Cause:     cause,
	}
}
