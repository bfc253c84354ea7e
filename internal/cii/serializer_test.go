package cii_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-engine/internal/cii"
	"github.com/rezonia/facturx-engine/internal/model"
)

func buildSample(t *testing.T) *model.InvoiceDocument {
	t.Helper()
	doc, err := model.Build(model.SampleRequest())
	require.NoError(t, err)
	return doc
}

func TestSerialize_Deterministic(t *testing.T) {
	s := cii.NewSerializer()
	doc := buildSample(t)

	first, err := s.Serialize(doc)
	require.NoError(t, err)
	second, err := s.Serialize(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same document must always yield byte-identical XML")
}

func TestSerialize_Envelope(t *testing.T) {
	s := cii.NewSerializer()
	out, err := s.Serialize(buildSample(t))
	require.NoError(t, err)

	xml := string(out)
	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, "<rsm:CrossIndustryInvoice")
	assert.Contains(t, xml, `xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"`)
	assert.Contains(t, xml, `xmlns:qdt="urn:un:unece:uncefact:data:standard:QualifiedDataType:100"`)
	assert.Contains(t, xml, cii.GuidelineID)
}

func TestSerialize_DocumentHeader(t *testing.T) {
	s := cii.NewSerializer()
	out, err := s.Serialize(buildSample(t))
	require.NoError(t, err)

	xml := string(out)
	assert.Contains(t, xml, "<ram:ID>FX-2026-000001</ram:ID>")
	assert.Contains(t, xml, "<ram:TypeCode>380</ram:TypeCode>")
	// format 102: yyyymmdd
	assert.Contains(t, xml, `<udt:DateTimeString format="102">20260115</udt:DateTimeString>`)
}

func TestSerialize_AmountsTwoDecimals(t *testing.T) {
	s := cii.NewSerializer()
	out, err := s.Serialize(buildSample(t))
	require.NoError(t, err)

	xml := string(out)
	assert.Contains(t, xml, `<ram:LineTotalAmount currencyID="EUR">245.50</ram:LineTotalAmount>`)
	assert.Contains(t, xml, `<ram:GrandTotalAmount currencyID="EUR">288.00</ram:GrandTotalAmount>`)
	assert.Contains(t, xml, `<ram:DuePayableAmount currencyID="EUR">288.00</ram:DuePayableAmount>`)
	assert.Contains(t, xml, `<ram:TaxTotalAmount currencyID="EUR">42.50</ram:TaxTotalAmount>`)
}

func TestSerialize_VATBreakdown(t *testing.T) {
	s := cii.NewSerializer()
	out, err := s.Serialize(buildSample(t))
	require.NoError(t, err)

	xml := string(out)
	assert.Contains(t, xml, "<ram:CategoryCode>S</ram:CategoryCode>")
	assert.Contains(t, xml, "<ram:CategoryCode>AA</ram:CategoryCode>")
	assert.Contains(t, xml, "<ram:RateApplicablePercent>20.00</ram:RateApplicablePercent>")
	assert.Contains(t, xml, "<ram:RateApplicablePercent>5.50</ram:RateApplicablePercent>")

	// AA sorts before S: its breakdown entry must come first
	assert.Less(t,
		strings.Index(xml, "<ram:CategoryCode>AA</ram:CategoryCode>"),
		strings.Index(xml, "<ram:CategoryCode>S</ram:CategoryCode>"))
}

func TestSerialize_UnsupportedCurrency(t *testing.T) {
	s := cii.NewSerializer()
	doc := buildSample(t)
	doc.Currency = "JPY"

	_, err := s.Serialize(doc)
	var serr *model.SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "currency", serr.Field)
}

func TestSerialize_UnsupportedCategory(t *testing.T) {
	s := cii.NewSerializer()
	doc := buildSample(t)
	doc.Lines[0].VATCategory = "Q"

	_, err := s.Serialize(doc)
	var serr *model.SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "vat_category", serr.Field)
}

func TestSerialize_OmitsEmptyOptionals(t *testing.T) {
	req := model.SampleRequest()
	req.DueDate = ""
	req.Note = ""
	req.PaymentTerms = ""
	doc, err := model.Build(req)
	require.NoError(t, err)

	out, err := cii.NewSerializer().Serialize(doc)
	require.NoError(t, err)

	xml := string(out)
	assert.NotContains(t, xml, "ram:DueDateDateTime")
	assert.NotContains(t, xml, "ram:IncludedNote")
	assert.NotContains(t, xml, "ram:TotalPrepaidAmount")
}
