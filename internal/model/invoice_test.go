package model_test

import (
	"errors"
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx-engine/internal/model"
)

func validRequest() *model.InvoiceRequest {
	return model.SampleRequest()
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestBuild_SampleRequest(t *testing.T) {
	doc, err := model.Build(validRequest())
	require.NoError(t, err)

	assert.Equal(t, "FX-2026-000001", doc.Number)
	assert.Equal(t, model.InvoiceTypeCommercial, doc.Type)
	assert.Equal(t, "EUR", doc.Currency)
	require.NotNil(t, doc.DueDate)
	require.Len(t, doc.Lines, 2)

	// 2 x 100 = 200.00 and 1 x 45.50 = 45.50
	assert.Equal(t, "200.00", doc.Lines[0].NetAmount.StringFixed(2))
	assert.Equal(t, "45.50", doc.Lines[1].NetAmount.StringFixed(2))

	// VAT: 200 @ 20% = 40.00, 45.50 @ 5.5% = 2.50
	assert.Equal(t, "245.50", doc.Totals.LineTotal.StringFixed(2))
	assert.Equal(t, "42.50", doc.Totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "288.00", doc.Totals.GrandTotal.StringFixed(2))
	assert.Equal(t, "288.00", doc.Totals.PayableAmount.StringFixed(2))
}

func TestBuild_SingleRateTotals(t *testing.T) {
	req := validRequest()
	req.Lines = []model.LineRequest{
		{
			LineID:      "1",
			Description: "Widget",
			Quantity:    dec.NewFromInt(2),
			UnitPrice:   dec.NewFromInt(100),
			VATCategory: "S",
			VATRate:     dec.NewFromInt(20),
		},
	}

	doc, err := model.Build(req)
	require.NoError(t, err)

	assert.Equal(t, "200.00", doc.Totals.LineTotal.StringFixed(2))
	assert.Equal(t, "40.00", doc.Totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "240.00", doc.Totals.GrandTotal.StringFixed(2))
}

func TestBuild_RoundsPerLineBeforeAggregation(t *testing.T) {
	// Each line nets 33.335 -> rounds to 33.34 per line. Summing the
	// rounded values gives 100.02, not round(100.005) = 100.01.
	req := validRequest()
	req.Lines = nil
	for _, id := range []string{"1", "2", "3"} {
		req.Lines = append(req.Lines, model.LineRequest{
			LineID:      id,
			Description: "Part " + id,
			Quantity:    dec.NewFromInt(1),
			UnitPrice:   dec.RequireFromString("33.335"),
			VATCategory: "S",
			VATRate:     dec.NewFromInt(20),
		})
	}

	doc, err := model.Build(req)
	require.NoError(t, err)

	assert.Equal(t, "33.34", doc.Lines[0].NetAmount.StringFixed(2))
	assert.Equal(t, "100.02", doc.Totals.LineTotal.StringFixed(2))
}

func TestBuild_BreakdownGroupsByCategoryAndRate(t *testing.T) {
	req := validRequest()
	req.Lines = []model.LineRequest{
		{LineID: "1", Description: "A", Quantity: dec.NewFromInt(1), UnitPrice: dec.NewFromInt(100), VATCategory: "S", VATRate: dec.NewFromInt(20)},
		{LineID: "2", Description: "B", Quantity: dec.NewFromInt(1), UnitPrice: dec.NewFromInt(50), VATCategory: "S", VATRate: dec.NewFromInt(20)},
		{LineID: "3", Description: "C", Quantity: dec.NewFromInt(1), UnitPrice: dec.NewFromInt(30), VATCategory: "S", VATRate: dec.NewFromFloat(5.5)},
		{LineID: "4", Description: "D", Quantity: dec.NewFromInt(1), UnitPrice: dec.NewFromInt(10), VATCategory: "Z", VATRate: dec.Zero},
	}

	doc, err := model.Build(req)
	require.NoError(t, err)
	require.Len(t, doc.VATBreakdown, 3)

	// Sorted by (category, rate)
	assert.Equal(t, model.VATStandard, doc.VATBreakdown[0].Category)
	assert.Equal(t, "5.50", doc.VATBreakdown[0].Rate.StringFixed(2))
	assert.Equal(t, "30.00", doc.VATBreakdown[0].TaxableAmount.StringFixed(2))

	assert.Equal(t, model.VATStandard, doc.VATBreakdown[1].Category)
	assert.Equal(t, "20.00", doc.VATBreakdown[1].Rate.StringFixed(2))
	assert.Equal(t, "150.00", doc.VATBreakdown[1].TaxableAmount.StringFixed(2))
	assert.Equal(t, "30.00", doc.VATBreakdown[1].TaxAmount.StringFixed(2))

	assert.Equal(t, model.VATZero, doc.VATBreakdown[2].Category)
	assert.True(t, doc.VATBreakdown[2].TaxAmount.IsZero())
}

func TestBuild_PrepaidAmount(t *testing.T) {
	req := validRequest()
	prepaid := dec.NewFromInt(100)
	req.PrepaidAmount = &prepaid

	doc, err := model.Build(req)
	require.NoError(t, err)

	assert.Equal(t, "288.00", doc.Totals.GrandTotal.StringFixed(2))
	assert.Equal(t, "100.00", doc.Totals.PrepaidAmount.StringFixed(2))
	assert.Equal(t, "188.00", doc.Totals.PayableAmount.StringFixed(2))
}

func TestBuild_MissingRequiredFields(t *testing.T) {
	req := validRequest()
	req.InvoiceNumber = ""
	req.Seller.Name = ""
	req.Lines = nil

	_, err := model.Build(req)
	names := fieldNames(t, err)

	assert.Contains(t, names, "invoice_number")
	assert.Contains(t, names, "seller.name")
	assert.Contains(t, names, "lines")
}

func TestBuild_ZeroLines(t *testing.T) {
	req := validRequest()
	req.Lines = []model.LineRequest{}

	_, err := model.Build(req)
	assert.Contains(t, fieldNames(t, err), "lines")
}

func TestBuild_DueDateBeforeIssueDate(t *testing.T) {
	req := validRequest()
	req.IssueDate = "2026-01-15"
	req.DueDate = "2026-01-01"

	_, err := model.Build(req)
	assert.Contains(t, fieldNames(t, err), "due_date")
}

func TestBuild_UnsupportedCurrency(t *testing.T) {
	req := validRequest()
	req.Currency = "JPY"

	_, err := model.Build(req)
	assert.Contains(t, fieldNames(t, err), "currency")
}

func TestBuild_ZeroRatedCategoryWithNonzeroRate(t *testing.T) {
	req := validRequest()
	req.Lines[0].VATCategory = "Z"
	// rate stays 20

	_, err := model.Build(req)
	assert.Contains(t, fieldNames(t, err), "lines[0].vat_rate")
}

func TestBuild_ExemptCategoryRequiresZeroRate(t *testing.T) {
	req := validRequest()
	req.Lines[0].VATCategory = "E"
	req.Lines[0].VATRate = dec.Zero

	doc, err := model.Build(req)
	require.NoError(t, err)
	assert.Equal(t, model.VATExempt, doc.Lines[0].VATCategory)
}

func TestBuild_StandardCategoryZeroRatePermitted(t *testing.T) {
	// Standard-rated at 0% is legal; only Z/E/AE force a zero rate
	req := validRequest()
	req.Lines = []model.LineRequest{
		{
			LineID:      "1",
			Description: "Widget",
			Quantity:    dec.NewFromInt(2),
			UnitPrice:   dec.NewFromInt(100),
			VATCategory: "S",
			VATRate:     dec.Zero,
		},
	}

	doc, err := model.Build(req)
	require.NoError(t, err)

	require.Len(t, doc.VATBreakdown, 1)
	assert.Equal(t, model.VATStandard, doc.VATBreakdown[0].Category)
	assert.Equal(t, "0.00", doc.VATBreakdown[0].Rate.StringFixed(2))
	assert.Equal(t, "0.00", doc.VATBreakdown[0].TaxAmount.StringFixed(2))
	assert.Equal(t, "200.00", doc.Totals.GrandTotal.StringFixed(2))
}

func TestBuild_DuplicateLineIDs(t *testing.T) {
	req := validRequest()
	req.Lines[1].LineID = req.Lines[0].LineID

	_, err := model.Build(req)
	assert.Contains(t, fieldNames(t, err), "lines[1].line_id")
}

func TestBuild_NegativeQuantity(t *testing.T) {
	req := validRequest()
	req.Lines[0].Quantity = dec.NewFromInt(-1)

	_, err := model.Build(req)
	assert.Contains(t, fieldNames(t, err), "lines[0].quantity")
}

func TestBuild_AccumulatesAllErrors(t *testing.T) {
	req := validRequest()
	req.InvoiceNumber = ""
	req.Currency = "XXXX"
	req.Lines[0].VATCategory = "Q"
	req.Lines[1].Description = ""

	_, err := model.Build(req)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.GreaterOrEqual(t, len(verr.Fields), 4)
}

func TestBuild_NilRequest(t *testing.T) {
	_, err := model.Build(nil)
	require.Error(t, err)
}

func TestBuild_DefaultsUnitCode(t *testing.T) {
	req := validRequest()
	req.Lines[0].UnitCode = ""

	doc, err := model.Build(req)
	require.NoError(t, err)
	assert.Equal(t, "C62", doc.Lines[0].UnitCode)
}

func TestVATCategory_Valid(t *testing.T) {
	for _, c := range []model.VATCategory{"S", "Z", "E", "AE", "AA", "AB"} {
		assert.True(t, c.Valid(), "category %s", c)
	}
	assert.False(t, model.VATCategory("X").Valid())
	assert.False(t, model.VATCategory("").Valid())
}

func TestInvoiceType_Valid(t *testing.T) {
	for _, ty := range []model.InvoiceType{"380", "381", "383", "384"} {
		assert.True(t, ty.Valid(), "type %s", ty)
	}
	assert.False(t, model.InvoiceType("999").Valid())
}
