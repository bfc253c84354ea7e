package validate

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds each validator run
const DefaultTimeout = 60 * time.Second

// Extractor pulls the embedded CII XML back out of a packaged PDF
type Extractor interface {
	Extract(pdf []byte) ([]byte, error)
}

// Orchestrator runs the PDF/A structural validator and the EN 16931
// business-rule validator concurrently over the same artifact and joins
// both results into a single report. Both validators always run to
// completion; one failing never cancels the other.
type Orchestrator struct {
	pdfa      Validator
	en16931   Validator
	extractor Extractor
	timeout   time.Duration
	log       zerolog.Logger
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithPDFAValidator replaces the structural validator
func WithPDFAValidator(v Validator) OrchestratorOption {
	return func(o *Orchestrator) { o.pdfa = v }
}

// WithEN16931Validator replaces the business-rule validator
func WithEN16931Validator(v Validator) OrchestratorOption {
	return func(o *Orchestrator) { o.en16931 = v }
}

// WithExtractor replaces the attachment extractor
func WithExtractor(e Extractor) OrchestratorOption {
	return func(o *Orchestrator) { o.extractor = e }
}

// WithTimeout sets the per-validator deadline
func WithTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the orchestrator logger
func WithLogger(log zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.log = log }
}

// NewOrchestrator creates an orchestrator with the built-in validators
func NewOrchestrator(extractor Extractor, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		pdfa:      NewStructuralValidator(),
		en16931:   NewEN16931Validator(),
		extractor: extractor,
		timeout:   DefaultTimeout,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run validates a packaged PDF. sourceXML, when non-nil, is the XML the
// caller embedded; the round-trip flag compares it byte for byte against
// the extracted payload. When sourceXML is nil the round-trip check only
// requires that extraction succeeds.
func (o *Orchestrator) Run(ctx context.Context, pdf []byte, sourceXML []byte) *Report {
	report := &Report{}

	extracted, extractErr := o.extractor.Extract(pdf)
	switch {
	case extractErr != nil:
		o.log.Warn().Err(extractErr).Msg("embedded XML extraction failed")
		report.RoundTripOK = false
	case sourceXML == nil:
		report.RoundTripOK = true
	default:
		report.RoundTripOK = bytes.Equal(sourceXML, extracted)
		if !report.RoundTripOK {
			o.log.Warn().Msg("extracted XML differs from embedded source")
		}
	}

	// Both validators see the same artifact; EN 16931 works on the
	// extracted payload, never the caller's copy
	artifact := &Artifact{PDF: pdf, XML: extracted}

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	for i, v := range []Validator{o.pdfa, o.en16931} {
		wg.Add(1)
		go func(i int, v Validator) {
			defer wg.Done()
			vctx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			start := time.Now()
			results[i] = v.Validate(vctx, artifact)
			o.log.Debug().
				Str("validator", v.Name()).
				Bool("compliant", results[i].Compliant).
				Dur("elapsed", time.Since(start)).
				Msg("validator finished")
		}(i, v)
	}
	wg.Wait()

	report.PDFA3 = newValidatorResult(results[0])
	report.EN16931 = newValidatorResult(results[1])
	return report
}
