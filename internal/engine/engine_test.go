package engine_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-engine/internal/engine"
	"github.com/rezonia/facturx-engine/internal/model"
)

func TestGenerateXML(t *testing.T) {
	eng := engine.New()

	doc, xmlBytes, err := eng.GenerateXML(model.SampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "FX-2026-000001", doc.Number)
	assert.Contains(t, string(xmlBytes), "rsm:CrossIndustryInvoice")
	assert.Contains(t, string(xmlBytes), "urn:factur-x.eu:1p0:basic")
}

func TestGenerateXML_InvalidRequest(t *testing.T) {
	eng := engine.New()

	req := model.SampleRequest()
	req.Lines = nil

	_, _, err := eng.GenerateXML(req)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestGenerate_FullPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("full PDF pipeline")
	}

	// Skip the external tool so the run is hermetic
	eng := engine.New(engine.WithoutVeraPDF())

	result, err := eng.Generate(context.Background(), model.SampleRequest())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(result.PDF, []byte("%PDF-")))
	require.NotNil(t, result.Report)

	// The embedded attachment must round-trip byte for byte
	extracted, err := eng.Extract(result.PDF)
	require.NoError(t, err)
	assert.Equal(t, result.XML, extracted)

	assert.True(t, result.Report.RoundTripOK)
	assert.True(t, result.Report.EN16931.Compliant, "errors: %v", result.Report.EN16931.Errors)
	assert.Empty(t, result.Report.PDFA3.InfraError)
}

func TestGeneratePDF_SkipsValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("full PDF pipeline")
	}

	eng := engine.New(engine.WithoutVeraPDF())

	result, err := eng.GeneratePDF(context.Background(), model.SampleRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, result.PDF)
	assert.Nil(t, result.Report)
}

func TestInspect(t *testing.T) {
	if testing.Short() {
		t.Skip("full PDF pipeline")
	}

	eng := engine.New(engine.WithoutVeraPDF())

	result, err := eng.GeneratePDF(context.Background(), model.SampleRequest())
	require.NoError(t, err)

	info := eng.Inspect(result.PDF)
	assert.True(t, info.HasXML)
	assert.Equal(t, len(result.PDF), info.PDFBytes)
	assert.Equal(t, "FX-2026-000001", info.InvoiceNum)
	assert.Equal(t, "EUR", info.Currency)
	assert.Contains(t, info.Guideline, "en16931")
}

func TestInspect_PlainPDFWithoutAttachment(t *testing.T) {
	eng := engine.New(engine.WithoutVeraPDF())

	info := eng.Inspect([]byte("%PDF-1.7 not a real document"))
	assert.False(t, info.HasXML)
}

func TestValidate_UnrelatedBytes(t *testing.T) {
	eng := engine.New(engine.WithoutVeraPDF())

	report := eng.Validate(context.Background(), []byte("not a pdf"), nil)
	assert.False(t, report.OverallCompliant())
	assert.False(t, report.PDFA3.Compliant)
	assert.False(t, report.RoundTripOK, "extraction cannot succeed on a non-PDF")
}
