package ubl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peppolsheet/internal/ubl"
)

func containsSubstring(t *testing.T, list []string, sub string) {
	t.Helper()
	for _, s := range list {
		if strings.Contains(s, sub) {
			return
		}
	}
	t.Errorf("expected an entry containing %q, got %v", sub, list)
}

func TestValidateInvoiceData_ValidInvoice(t *testing.T) {
	res := ubl.ValidateInvoiceData(sampleInvoice())

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.NotNil(t, res.Warnings)
}

func TestValidateInvoiceData_MixedRates(t *testing.T) {
	res := ubl.ValidateInvoiceData(mixedRateInvoice())
	assert.True(t, res.Valid, res.Errors)
}

func TestValidateInvoiceData_TotalLineExtensionMismatch(t *testing.T) {
	inv := sampleInvoice()
	inv.LegalMonetaryTotal.LineExtensionAmount = dec("90")

	res := ubl.ValidateInvoiceData(inv)

	assert.False(t, res.Valid)
	containsSubstring(t, res.Errors, "line extension amount mismatch")
}

func TestValidateInvoiceData_LineExtensionMismatch(t *testing.T) {
	inv := sampleInvoice()
	inv.Lines[0].LineExtensionAmount = dec("99.99")

	res := ubl.ValidateInvoiceData(inv)

	assert.False(t, res.Valid)
	containsSubstring(t, res.Errors, `line "1": line extension amount mismatch`)
}

func TestValidateInvoiceData_BaseQuantity(t *testing.T) {
	inv := sampleInvoice()
	inv.Lines[0].BaseQuantity = decPtr("5")
	inv.Lines[0].LineExtensionAmount = dec("20.00")
	inv.TaxTotal, inv.LegalMonetaryTotal = ubl.ComputeTotals(inv.Lines)

	res := ubl.ValidateInvoiceData(inv)
	assert.True(t, res.Valid, res.Errors)
}

func TestValidateInvoiceData_InclusiveRejectsAnyEpsilon(t *testing.T) {
	for _, inclusive := range []string{"121.01", "120.99", "121.001"} {
		t.Run(inclusive, func(t *testing.T) {
			inv := sampleInvoice()
			inv.LegalMonetaryTotal.TaxInclusiveAmount = dec(inclusive)
			inv.LegalMonetaryTotal.PayableAmount = dec(inclusive)

			res := ubl.ValidateInvoiceData(inv)

			assert.False(t, res.Valid)
			containsSubstring(t, res.Errors, "taxInclusiveAmount mismatch")
		})
	}
}

func TestValidateInvoiceData_AllowancesAndPrepaid(t *testing.T) {
	inv := sampleInvoice()
	// 100 lines - 10 allowance + 5 charge = 95 taxable, 19.95 VAT
	inv.AllowanceCharges = []ubl.AllowanceCharge{
		{Reason: "Volume discount", Amount: dec("10.00"), TaxCategory: ubl.StandardRated(dec("21"))},
		{ChargeIndicator: true, Reason: "Freight", Amount: dec("5.00"), TaxCategory: ubl.StandardRated(dec("21"))},
	}
	inv.LegalMonetaryTotal.AllowanceTotalAmount = decPtr("10.00")
	inv.LegalMonetaryTotal.ChargeTotalAmount = decPtr("5.00")
	inv.LegalMonetaryTotal.TaxExclusiveAmount = dec("95.00")
	inv.TaxTotal = ubl.TaxTotal{
		TaxAmount: dec("19.95"),
		Subtotals: []ubl.TaxSubtotal{{
			TaxableAmount: dec("95.00"),
			TaxAmount:     dec("19.95"),
			TaxCategory:   ubl.StandardRated(dec("21")),
		}},
	}
	inv.LegalMonetaryTotal.TaxInclusiveAmount = dec("114.95")
	inv.LegalMonetaryTotal.PrepaidAmount = decPtr("14.95")
	inv.LegalMonetaryTotal.PayableAmount = dec("100.00")

	res := ubl.ValidateInvoiceData(inv)
	assert.True(t, res.Valid, res.Errors)

	inv.LegalMonetaryTotal.PayableAmount = dec("114.95")
	res = ubl.ValidateInvoiceData(inv)
	assert.False(t, res.Valid)
	containsSubstring(t, res.Errors, "payableAmount mismatch")
}

func TestValidateInvoiceData_AllowanceWithDerivedSubtotals(t *testing.T) {
	// VAT charged on the pre-allowance base: 21% of 100 instead of 90
	inv := sampleInvoice()
	inv.TaxTotal = ubl.TaxTotal{TaxAmount: dec("21.00")}
	inv.LegalMonetaryTotal.AllowanceTotalAmount = decPtr("10.00")
	inv.LegalMonetaryTotal.TaxExclusiveAmount = dec("90.00")
	inv.LegalMonetaryTotal.TaxInclusiveAmount = dec("111.00")
	inv.LegalMonetaryTotal.PayableAmount = dec("111.00")

	res := ubl.ValidateInvoiceData(inv)
	assert.False(t, res.Valid)
	containsSubstring(t, res.Errors, "taxable amount mismatch: derived subtotals sum to 100")
	containsSubstring(t, res.Errors, "allowanceTotalAmount mismatch: allowanceCharges sum to 0, got 10")

	inv.AllowanceCharges = []ubl.AllowanceCharge{
		{ReasonCode: "95", Amount: dec("10.00"), TaxCategory: ubl.StandardRated(dec("21"))},
	}
	res = ubl.ValidateInvoiceData(inv)
	assert.False(t, res.Valid)
	containsSubstring(t, res.Errors, "taxTotal.taxAmount mismatch: tax derived from the lines is 18.9, got 21")

	inv.TaxTotal.TaxAmount = dec("18.90")
	inv.LegalMonetaryTotal.TaxInclusiveAmount = dec("108.90")
	inv.LegalMonetaryTotal.PayableAmount = dec("108.90")
	res = ubl.ValidateInvoiceData(inv)
	assert.True(t, res.Valid, res.Errors)
}

func TestValidateInvoiceData_AllowanceChargeEntries(t *testing.T) {
	inv := sampleInvoice()
	inv.AllowanceCharges = []ubl.AllowanceCharge{
		{Amount: dec("-1.00"), TaxCategory: ubl.StandardRated(dec("21"))},
		{ChargeIndicator: true, Reason: "Freight", Amount: dec("2.005"), TaxCategory: ubl.TaxCategory{Percent: dec("21")}},
	}

	res := ubl.ValidateInvoiceData(inv)

	assert.False(t, res.Valid)
	containsSubstring(t, res.Errors, "allowanceCharges[0]: reason or reasonCode is required")
	containsSubstring(t, res.Errors, "allowanceCharges[0].amount must not be negative")
	containsSubstring(t, res.Errors, "allowanceCharges[1].amount 2.005 has more than two decimals")
	containsSubstring(t, res.Errors, "allowanceCharges[1].taxCategory.id is required")
	containsSubstring(t, res.Errors, "chargeTotalAmount mismatch")
}

func TestValidateInvoiceData_SubtotalSums(t *testing.T) {
	inv := sampleInvoice()
	inv.TaxTotal.Subtotals[0].TaxableAmount = dec("80.00")

	res := ubl.ValidateInvoiceData(inv)

	assert.False(t, res.Valid)
	containsSubstring(t, res.Errors, "taxable amount mismatch")
	containsSubstring(t, res.Warnings, "differs from 21% of 80")
}

func TestValidateInvoiceData_DerivedSubtotals(t *testing.T) {
	inv := mixedRateInvoice()
	inv.TaxTotal.Subtotals = nil

	res := ubl.ValidateInvoiceData(inv)
	assert.True(t, res.Valid, res.Errors)
	containsSubstring(t, res.Warnings, "taxSubtotals not supplied")

	inv.TaxTotal.TaxAmount = inv.TaxTotal.TaxAmount.Add(dec("0.01"))
	res = ubl.ValidateInvoiceData(inv)
	assert.False(t, res.Valid)
	containsSubstring(t, res.Errors, "taxTotal.taxAmount mismatch")
}

func TestValidateInvoiceData_Warnings(t *testing.T) {
	inv := sampleInvoice()
	inv.DueDate = ""
	inv.BuyerReference = ""
	inv.Supplier.EndpointID = nil
	inv.Supplier.VATNumber = ""
	inv.Lines[0].UnitCode = ""

	res := ubl.ValidateInvoiceData(inv)

	assert.True(t, res.Valid, res.Errors)
	containsSubstring(t, res.Warnings, "dueDate is missing")
	containsSubstring(t, res.Warnings, "buyerReference is missing")
	containsSubstring(t, res.Warnings, "accountingSupplierParty.endpointId is missing")
	containsSubstring(t, res.Warnings, "accountingSupplierParty.vatNumber is missing")
	containsSubstring(t, res.Warnings, "unitCode is missing")
}

func TestValidateInvoiceData_RequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ubl.InvoiceData)
		want   string
	}{
		{"missing id", func(d *ubl.InvoiceData) { d.ID = "" }, "document id is required"},
		{"missing issue date", func(d *ubl.InvoiceData) { d.IssueDate = "" }, "issueDate is required"},
		{"bad issue date", func(d *ubl.InvoiceData) { d.IssueDate = "15/01/2024" }, "not a valid date"},
		{"bad currency", func(d *ubl.InvoiceData) { d.CurrencyCode = "eur" }, "not an ISO 4217 code"},
		{"due before issue", func(d *ubl.InvoiceData) { d.DueDate = "2024-01-01" }, "is before issueDate"},
		{"bad type code", func(d *ubl.InvoiceData) { d.InvoiceTypeCode = "INV" }, "invoiceTypeCode"},
		{"no lines", func(d *ubl.InvoiceData) { d.Lines = nil }, "at least one line item is required"},
		{"supplier name", func(d *ubl.InvoiceData) { d.Supplier.Name, d.Supplier.RegistrationName = "", "" }, "accountingSupplierParty.name is required"},
		{"customer street", func(d *ubl.InvoiceData) { d.Customer.PostalAddress.StreetName = "" }, "accountingCustomerParty.postalAddress.streetName is required"},
		{"customer country", func(d *ubl.InvoiceData) { d.Customer.PostalAddress.CountryCode = "DEU" }, "two-letter ISO 3166 code"},
		{"zero quantity", func(d *ubl.InvoiceData) { d.Lines[0].Quantity = dec("0") }, "quantity must be non-zero"},
		{"line name", func(d *ubl.InvoiceData) { d.Lines[0].Name = "" }, "name is required"},
		{"tax category", func(d *ubl.InvoiceData) { d.Lines[0].TaxCategory.ID = "" }, "taxCategory.id is required"},
		{"negative percent", func(d *ubl.InvoiceData) { d.Lines[0].TaxCategory.Percent = dec("-1") }, "percent must not be negative"},
		{"payment code", func(d *ubl.InvoiceData) { d.PaymentMeans.Code = "" }, "paymentMeans.code is required"},
		{"three decimals", func(d *ubl.InvoiceData) { d.TaxTotal.TaxAmount = dec("21.001") }, "more than two decimals"},
		{"duplicate line ids", func(d *ubl.InvoiceData) {
			d.Lines = append(d.Lines, d.Lines[0])
		}, `id "1" is duplicated`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := sampleInvoice()
			tc.mutate(inv)

			res := ubl.ValidateInvoiceData(inv)

			assert.False(t, res.Valid)
			containsSubstring(t, res.Errors, tc.want)
		})
	}
}

func TestValidateInvoiceData_DoesNotMutate(t *testing.T) {
	inv := sampleInvoice()
	inv.LegalMonetaryTotal.LineExtensionAmount = dec("90")
	before := *inv

	ubl.ValidateInvoiceData(inv)

	assert.Equal(t, before.LegalMonetaryTotal, inv.LegalMonetaryTotal)
	assert.Equal(t, before.TaxTotal, inv.TaxTotal)
}

func TestValidateInvoiceData_Nil(t *testing.T) {
	res := ubl.ValidateInvoiceData(nil)
	assert.False(t, res.Valid)
}

func TestValidateCreditNoteData(t *testing.T) {
	cn := sampleCreditNote()
	res := ubl.ValidateCreditNoteData(cn)
	assert.True(t, res.Valid, res.Errors)

	cn.BillingReference = ""
	res = ubl.ValidateCreditNoteData(cn)
	assert.True(t, res.Valid)
	containsSubstring(t, res.Warnings, "billingReference is missing")
}

func TestValidateOrderData(t *testing.T) {
	order := sampleOrder()
	res := ubl.ValidateOrderData(order)
	assert.True(t, res.Valid, res.Errors)

	order.RequestedDeliveryDate = "2023-12-31"
	order.Seller.PostalAddress.CityName = ""
	res = ubl.ValidateOrderData(order)
	assert.False(t, res.Valid)
	containsSubstring(t, res.Errors, "requestedDeliveryDate 2023-12-31 is before issueDate")
	containsSubstring(t, res.Errors, "sellerSupplierParty.postalAddress.cityName is required")
}

func TestValidate_Dispatch(t *testing.T) {
	docs := []ubl.Document{sampleInvoice(), sampleCreditNote(), sampleOrder()}
	for _, doc := range docs {
		res := ubl.Validate(doc)
		require.True(t, res.Valid, "%s: %v", doc.DocumentType(), res.Errors)
	}
}
