package facturx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-engine/pkg/facturx"
)

func TestClient_GenerateXML(t *testing.T) {
	client := facturx.New()

	doc, xmlBytes, err := client.GenerateXML(facturx.SampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "FX-2026-000001", doc.Number)
	assert.Contains(t, string(xmlBytes), "rsm:CrossIndustryInvoice")
}

func TestClient_GenerateXML_ValidationError(t *testing.T) {
	client := facturx.New()

	req := facturx.SampleRequest()
	req.Currency = "JPY"

	_, _, err := client.GenerateXML(req)
	var verr *facturx.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestClient_Generate(t *testing.T) {
	if testing.Short() {
		t.Skip("full PDF pipeline")
	}

	client := facturx.New()

	result, err := client.Generate(context.Background(), facturx.SampleRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, result.PDF)
	assert.NotNil(t, result.Report)

	extracted, err := client.Extract(result.PDF)
	require.NoError(t, err)
	assert.Equal(t, result.XML, extracted)
}

func TestSupportedCurrencies(t *testing.T) {
	currencies := facturx.SupportedCurrencies()
	assert.Contains(t, currencies, "EUR")
	assert.Contains(t, currencies, "USD")
	assert.Contains(t, currencies, "GBP")
	assert.Contains(t, currencies, "CHF")
}
