package validate

import (
	"encoding/json"
	"errors"
)

// ValidatorResult is one validator's contribution to the report
type ValidatorResult struct {
	ValidatorName string    `json:"validator_name"`
	Compliant     bool      `json:"compliant"`
	Errors        []Finding `json:"errors"`
	Warnings      []Finding `json:"warnings,omitempty"`
	// InfraError carries a VALIDATOR_UNAVAILABLE / VALIDATOR_TIMEOUT code
	// when the validator could not run at all
	InfraError string `json:"infra_error,omitempty"`
}

// Report is the immutable outcome of validating one artifact.
// overall_compliant is always computed from the three member verdicts,
// never settable, so the values cannot drift apart.
type Report struct {
	PDFA3       ValidatorResult `json:"pdfa3_result"`
	EN16931     ValidatorResult `json:"en16931_result"`
	RoundTripOK bool            `json:"round_trip_ok"`
}

// OverallCompliant is the AND of both validator verdicts and round-trip
// fidelity
func (r *Report) OverallCompliant() bool {
	return r.PDFA3.Compliant && r.EN16931.Compliant && r.RoundTripOK
}

// Errors aggregates error findings across both validators
func (r *Report) Errors() []Finding {
	out := make([]Finding, 0, len(r.PDFA3.Errors)+len(r.EN16931.Errors))
	out = append(out, r.PDFA3.Errors...)
	out = append(out, r.EN16931.Errors...)
	return out
}

// MarshalJSON emits the flat report shape consumed by the surrounding
// system alongside the per-validator detail.
func (r *Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(struct {
		PDFA3Compliant   bool      `json:"pdfa3_compliant"`
		EN16931Compliant bool      `json:"en16931_compliant"`
		RoundTripOK      bool      `json:"round_trip_ok"`
		OverallCompliant bool      `json:"overall_compliant"`
		Errors           []Finding `json:"errors"`
		*alias
	}{
		PDFA3Compliant:   r.PDFA3.Compliant,
		EN16931Compliant: r.EN16931.Compliant,
		RoundTripOK:      r.RoundTripOK,
		OverallCompliant: r.OverallCompliant(),
		Errors:           r.Errors(),
		alias:            (*alias)(r),
	})
}

// newValidatorResult folds a raw validator Result into report form
func newValidatorResult(res *Result) ValidatorResult {
	vr := ValidatorResult{
		ValidatorName: res.Name,
		Compliant:     res.Compliant,
		Errors:        make([]Finding, 0),
	}
	for _, f := range res.Findings {
		switch f.Severity {
		case SeverityWarning:
			vr.Warnings = append(vr.Warnings, f)
		default:
			vr.Errors = append(vr.Errors, f)
		}
	}
	if res.Err != nil {
		vr.Compliant = false
		var verr *ValidatorError
		code := ErrCodeValidatorError
		if errors.As(res.Err, &verr) {
			code = verr.Code
		}
		vr.InfraError = code
		vr.Errors = append(vr.Errors, Finding{
			Validator: res.Name,
			Code:      code,
			Message:   res.Err.Error(),
			Severity:  SeverityError,
		})
	}
	return vr
}
