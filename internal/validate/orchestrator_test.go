package validate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-engine/internal/validate"
)

// stubExtractor returns fixed bytes or an error
type stubExtractor struct {
	xml []byte
	err error
}

func (s *stubExtractor) Extract(pdf []byte) ([]byte, error) {
	return s.xml, s.err
}

// stubValidator returns a canned result, optionally after a delay
type stubValidator struct {
	name      string
	compliant bool
	delay     time.Duration
	err       error
	sawXML    []byte
}

func (s *stubValidator) Name() string { return s.name }

func (s *stubValidator) Validate(ctx context.Context, artifact *validate.Artifact) *validate.Result {
	s.sawXML = artifact.XML
	if s.err != nil {
		return &validate.Result{Name: s.name, Err: s.err}
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return &validate.Result{
				Name: s.name,
				Err:  validate.ErrValidatorTimeout(s.name, ctx.Err()),
			}
		}
	}
	return &validate.Result{Name: s.name, Compliant: s.compliant}
}

func TestOrchestrator_BothCompliant(t *testing.T) {
	xml := []byte("<xml/>")
	orch := validate.NewOrchestrator(&stubExtractor{xml: xml},
		validate.WithPDFAValidator(&stubValidator{name: "pdfa", compliant: true}),
		validate.WithEN16931Validator(&stubValidator{name: "rules", compliant: true}),
	)

	report := orch.Run(context.Background(), []byte("%PDF-"), xml)

	assert.True(t, report.PDFA3.Compliant)
	assert.True(t, report.EN16931.Compliant)
	assert.True(t, report.RoundTripOK)
	assert.True(t, report.OverallCompliant())
}

func TestOrchestrator_OneFailureFailsOverall(t *testing.T) {
	xml := []byte("<xml/>")
	orch := validate.NewOrchestrator(&stubExtractor{xml: xml},
		validate.WithPDFAValidator(&stubValidator{name: "pdfa", compliant: false}),
		validate.WithEN16931Validator(&stubValidator{name: "rules", compliant: true}),
	)

	report := orch.Run(context.Background(), []byte("%PDF-"), xml)

	assert.False(t, report.PDFA3.Compliant)
	assert.True(t, report.EN16931.Compliant)
	assert.False(t, report.OverallCompliant())
}

func TestOrchestrator_JoinsBothResults(t *testing.T) {
	// A slow validator must not be raced against: its verdict still lands
	xml := []byte("<xml/>")
	slow := &stubValidator{name: "pdfa", compliant: true, delay: 50 * time.Millisecond}
	orch := validate.NewOrchestrator(&stubExtractor{xml: xml},
		validate.WithPDFAValidator(slow),
		validate.WithEN16931Validator(&stubValidator{name: "rules", compliant: true}),
	)

	report := orch.Run(context.Background(), []byte("%PDF-"), xml)

	assert.True(t, report.PDFA3.Compliant)
	assert.True(t, report.EN16931.Compliant)
}

func TestOrchestrator_TimeoutKeepsOtherVerdict(t *testing.T) {
	xml := []byte("<xml/>")
	hung := &stubValidator{name: "pdfa", compliant: true, delay: time.Minute}
	orch := validate.NewOrchestrator(&stubExtractor{xml: xml},
		validate.WithPDFAValidator(hung),
		validate.WithEN16931Validator(&stubValidator{name: "rules", compliant: true}),
		validate.WithTimeout(20*time.Millisecond),
	)

	report := orch.Run(context.Background(), []byte("%PDF-"), xml)

	assert.False(t, report.PDFA3.Compliant)
	assert.Equal(t, validate.ErrCodeValidatorTimeout, report.PDFA3.InfraError)
	assert.True(t, report.EN16931.Compliant, "the healthy validator's verdict must survive")
	assert.False(t, report.OverallCompliant())
}

func TestOrchestrator_RoundTripMismatch(t *testing.T) {
	orch := validate.NewOrchestrator(&stubExtractor{xml: []byte("<tampered/>")},
		validate.WithPDFAValidator(&stubValidator{name: "pdfa", compliant: true}),
		validate.WithEN16931Validator(&stubValidator{name: "rules", compliant: true}),
	)

	report := orch.Run(context.Background(), []byte("%PDF-"), []byte("<original/>"))

	assert.False(t, report.RoundTripOK)
	assert.False(t, report.OverallCompliant())
}

func TestOrchestrator_NoSourceXMLOnlyRequiresExtraction(t *testing.T) {
	orch := validate.NewOrchestrator(&stubExtractor{xml: []byte("<embedded/>")},
		validate.WithPDFAValidator(&stubValidator{name: "pdfa", compliant: true}),
		validate.WithEN16931Validator(&stubValidator{name: "rules", compliant: true}),
	)

	report := orch.Run(context.Background(), []byte("%PDF-"), nil)
	assert.True(t, report.RoundTripOK)
}

func TestOrchestrator_ExtractionFailure(t *testing.T) {
	rules := &stubValidator{name: "rules", compliant: false}
	orch := validate.NewOrchestrator(&stubExtractor{err: errors.New("no attachment")},
		validate.WithPDFAValidator(&stubValidator{name: "pdfa", compliant: true}),
		validate.WithEN16931Validator(rules),
	)

	report := orch.Run(context.Background(), []byte("%PDF-"), []byte("<original/>"))

	assert.False(t, report.RoundTripOK)
	assert.Nil(t, rules.sawXML, "business rules must see no XML when extraction fails")
	assert.False(t, report.OverallCompliant())
}

func TestOrchestrator_RepeatedRunsAgree(t *testing.T) {
	// Validating the same artifact twice must yield the same report
	xml := []byte("<xml/>")
	orch := validate.NewOrchestrator(&stubExtractor{xml: xml},
		validate.WithPDFAValidator(&stubValidator{name: "pdfa", compliant: true}),
		validate.WithEN16931Validator(&stubValidator{name: "rules", compliant: false}),
	)

	first := orch.Run(context.Background(), []byte("%PDF-"), xml)
	second := orch.Run(context.Background(), []byte("%PDF-"), xml)

	assert.Equal(t, first, second)
	assert.Equal(t, first.OverallCompliant(), second.OverallCompliant())
}

func TestOrchestrator_PlainInfraErrorCode(t *testing.T) {
	// An infrastructure failure that is not a ValidatorError, such as a
	// local I/O error, must not be reported as a missing tool
	xml := []byte("<xml/>")
	broken := &stubValidator{name: "pdfa", err: errors.New("create temp file: disk full")}
	orch := validate.NewOrchestrator(&stubExtractor{xml: xml},
		validate.WithPDFAValidator(broken),
		validate.WithEN16931Validator(&stubValidator{name: "rules", compliant: true}),
	)

	report := orch.Run(context.Background(), []byte("%PDF-"), xml)

	assert.Equal(t, validate.ErrCodeValidatorError, report.PDFA3.InfraError)
	assert.False(t, report.PDFA3.Compliant)
	require.Len(t, report.PDFA3.Errors, 1)
	assert.Equal(t, validate.ErrCodeValidatorError, report.PDFA3.Errors[0].Code)
}

func TestOrchestrator_ValidatorsSeeExtractedXML(t *testing.T) {
	embedded := []byte("<embedded/>")
	rules := &stubValidator{name: "rules", compliant: true}
	orch := validate.NewOrchestrator(&stubExtractor{xml: embedded},
		validate.WithPDFAValidator(&stubValidator{name: "pdfa", compliant: true}),
		validate.WithEN16931Validator(rules),
	)

	orch.Run(context.Background(), []byte("%PDF-"), []byte("<different/>"))
	require.Equal(t, embedded, rules.sawXML, "rules validate the extracted payload, not the caller's copy")
}
