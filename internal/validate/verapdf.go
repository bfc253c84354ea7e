package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// VeraPDFValidator validates PDF/A-3 conformance through the external
// veraPDF CLI. The tool is treated as a black box: PDF in, structured JSON
// findings out. A missing binary is VALIDATOR_UNAVAILABLE and an expired
// context is VALIDATOR_TIMEOUT; neither means "invoice non-compliant".
type VeraPDFValidator struct {
	path      string
	available bool
	flavour   string
}

// NewVeraPDFValidator creates a veraPDF adapter. An empty path triggers
// PATH lookup.
func NewVeraPDFValidator(path string) *VeraPDFValidator {
	v := &VeraPDFValidator{flavour: "3b"}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.path, v.available = path, true
		}
		return v
	}
	if p, err := exec.LookPath("verapdf"); err == nil {
		v.path, v.available = p, true
	}
	return v
}

// Available reports whether the veraPDF binary was found
func (v *VeraPDFValidator) Available() bool {
	return v.available
}

// Name implements Validator
func (v *VeraPDFValidator) Name() string {
	return "verapdf"
}

// veraPDF JSON report shapes (the subset consumed here)
type veraPDFOutput struct {
	Jobs []veraPDFJob `json:"jobs"`
}

type veraPDFJob struct {
	ValidationResult veraPDFResult `json:"validationResult"`
}

type veraPDFResult struct {
	Compliant      bool               `json:"isCompliant"`
	ProfileName    string             `json:"profileName"`
	TestAssertions []veraPDFAssertion `json:"testAssertions"`
}

type veraPDFAssertion struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	RuleID  veraPDFRuleRef `json:"ruleId"`
}

type veraPDFRuleRef struct {
	Specification string `json:"specification"`
	Clause        string `json:"clause"`
	TestNumber    int    `json:"testNumber"`
}

// Validate implements Validator
func (v *VeraPDFValidator) Validate(ctx context.Context, artifact *Artifact) *Result {
	res := &Result{Name: v.Name(), Compliant: false}

	if !v.available {
		res.Err = ErrValidatorUnavailable(v.Name(), "verapdf")
		return res
	}

	// veraPDF requires a file path
	tmpFile, err := os.CreateTemp("", "verapdf-*.pdf")
	if err != nil {
		res.Err = fmt.Errorf("failed to create temp file: %w", err)
		return res
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(artifact.PDF); err != nil {
		tmpFile.Close()
		res.Err = fmt.Errorf("failed to write temp file: %w", err)
		return res
	}
	tmpFile.Close()

	cmd := exec.CommandContext(ctx, v.path, "--format", "json", "--flavour", v.flavour, tmpFile.Name())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) || errors.Is(ctxErr, context.Canceled) {
		res.Err = ErrValidatorTimeout(v.Name(), ctxErr)
		return res
	}
	// veraPDF exits non-zero for non-compliant files; only a missing
	// report is a real failure
	if err != nil && stdout.Len() == 0 {
		res.Err = fmt.Errorf("verapdf failed: %w, stderr: %s", err, stderr.String())
		return res
	}

	var out veraPDFOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		res.Err = fmt.Errorf("failed to parse verapdf output: %w", err)
		return res
	}
	if len(out.Jobs) == 0 {
		res.Err = fmt.Errorf("verapdf produced no validation jobs")
		return res
	}

	vr := out.Jobs[0].ValidationResult
	res.Compliant = vr.Compliant
	for _, a := range vr.TestAssertions {
		code := a.RuleID.Clause
		if code == "" {
			code = "PDFA-RULE"
		}
		switch a.Status {
		case "FAILED":
			res.AddFinding(SeverityError, code, a.Message)
		case "WARNING":
			res.AddFinding(SeverityWarning, code, a.Message)
		}
	}
	return res
}
