package validate_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-engine/internal/cii"
	"github.com/rezonia/facturx-engine/internal/model"
	"github.com/rezonia/facturx-engine/internal/validate"
)

func sampleXML(t *testing.T, mutate func(*model.InvoiceRequest)) []byte {
	t.Helper()
	req := model.SampleRequest()
	if mutate != nil {
		mutate(req)
	}
	doc, err := model.Build(req)
	require.NoError(t, err)
	out, err := cii.NewSerializer().Serialize(doc)
	require.NoError(t, err)
	return out
}

func replaceOnce(s, old, repl string) string {
	return strings.Replace(s, old, repl, 1)
}

func replaceAll(s, old, repl string) string {
	return strings.ReplaceAll(s, old, repl)
}

func findingCodes(res *validate.Result) []string {
	codes := make([]string, 0, len(res.Findings))
	for _, f := range res.Findings {
		codes = append(codes, f.Code)
	}
	return codes
}

func TestEN16931_CompliantInvoice(t *testing.T) {
	v := validate.NewEN16931Validator()
	res := v.Validate(context.Background(), &validate.Artifact{XML: sampleXML(t, nil)})

	assert.True(t, res.Compliant, "findings: %v", res.Findings)
	assert.NoError(t, res.Err)
}

func TestEN16931_MissingXML(t *testing.T) {
	v := validate.NewEN16931Validator()
	res := v.Validate(context.Background(), &validate.Artifact{PDF: []byte("%PDF-1.7")})

	assert.False(t, res.Compliant)
	assert.NoError(t, res.Err, "missing XML is non-compliance, not an infrastructure failure")
	assert.Contains(t, findingCodes(res), "EN16931-NO-XML")
}

func TestEN16931_UnparseableXML(t *testing.T) {
	v := validate.NewEN16931Validator()
	res := v.Validate(context.Background(), &validate.Artifact{XML: []byte("this is not xml <<<")})

	assert.False(t, res.Compliant)
	assert.Contains(t, findingCodes(res), "EN16931-XML-PARSE")
}

func TestEN16931_TamperedTotals(t *testing.T) {
	xml := sampleXML(t, nil)
	tampered := []byte(replaceOnce(string(xml),
		`<ram:GrandTotalAmount currencyID="EUR">288.00</ram:GrandTotalAmount>`,
		`<ram:GrandTotalAmount currencyID="EUR">999.00</ram:GrandTotalAmount>`))
	require.NotEqual(t, xml, tampered)

	v := validate.NewEN16931Validator()
	res := v.Validate(context.Background(), &validate.Artifact{XML: tampered})

	assert.False(t, res.Compliant)
	assert.Contains(t, findingCodes(res), validate.CodeBRCO15)
}

func TestEN16931_BadLineSum(t *testing.T) {
	xml := sampleXML(t, nil)
	tampered := []byte(replaceOnce(string(xml),
		`<ram:LineTotalAmount currencyID="EUR">245.50</ram:LineTotalAmount>`,
		`<ram:LineTotalAmount currencyID="EUR">245.60</ram:LineTotalAmount>`))

	v := validate.NewEN16931Validator()
	res := v.Validate(context.Background(), &validate.Artifact{XML: tampered})

	assert.False(t, res.Compliant)
	assert.Contains(t, findingCodes(res), validate.CodeBRCO10)
}

func TestEN16931_ToleratesOneCentDrift(t *testing.T) {
	xml := sampleXML(t, nil)
	drifted := []byte(replaceOnce(string(xml),
		`<ram:LineTotalAmount currencyID="EUR">245.50</ram:LineTotalAmount>`,
		`<ram:LineTotalAmount currencyID="EUR">245.51</ram:LineTotalAmount>`))

	v := validate.NewEN16931Validator()
	res := v.Validate(context.Background(), &validate.Artifact{XML: drifted})

	assert.NotContains(t, findingCodes(res), validate.CodeBRCO10)
}

func TestEN16931_MissingParties(t *testing.T) {
	xml := sampleXML(t, nil)
	tampered := []byte(replaceOnce(string(xml),
		"<ram:Name>Factur-X Express SAS</ram:Name>",
		"<ram:Name></ram:Name>"))

	v := validate.NewEN16931Validator()
	res := v.Validate(context.Background(), &validate.Artifact{XML: tampered})

	assert.False(t, res.Compliant)
	assert.Contains(t, findingCodes(res), validate.CodeBR06)
}

func TestEN16931_InvalidCategory(t *testing.T) {
	xml := sampleXML(t, nil)
	tampered := []byte(replaceAll(string(xml),
		"<ram:CategoryCode>AA</ram:CategoryCode>",
		"<ram:CategoryCode>Q</ram:CategoryCode>"))

	v := validate.NewEN16931Validator()
	res := v.Validate(context.Background(), &validate.Artifact{XML: tampered})

	assert.False(t, res.Compliant)
	assert.Contains(t, findingCodes(res), validate.CodeBRCL17)
}

func TestEN16931_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := validate.NewEN16931Validator()
	res := v.Validate(ctx, &validate.Artifact{XML: sampleXML(t, nil)})

	var verr *validate.ValidatorError
	require.ErrorAs(t, res.Err, &verr)
	assert.Equal(t, validate.ErrCodeValidatorTimeout, verr.Code)
}
