package ubl_test

import (
	"github.com/shopspring/decimal"

	"peppolsheet/internal/ubl"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func supplier() ubl.Party {
	p := ubl.NewParty("Acme Supplies BV", "NL123456789B01", ubl.NewAddress("Keizersgracht 1", "Amsterdam", "1015AA", "nl"))
	p.EndpointID = &ubl.EndpointID{SchemeID: "0106", Value: "12345678"}
	return p
}

func customer() ubl.Party {
	p := ubl.NewParty("Buyer GmbH", "DE123456789", ubl.NewAddress("Hauptstrasse 5", "Berlin", "10115", "DE"))
	p.EndpointID = &ubl.EndpointID{SchemeID: "9930", Value: "DE123456789"}
	return p
}

// sampleInvoice is a single line, 10 × 10.00 at 21% VAT.
func sampleInvoice() *ubl.InvoiceData {
	lines := []ubl.LineItem{ubl.NewLine("1", "Widget", dec("10"), dec("10.00"), ubl.StandardRated(dec("21")))}
	tax, totals := ubl.ComputeTotals(lines)
	return &ubl.InvoiceData{
		Header: ubl.Header{
			ID:             "INV-1",
			IssueDate:      "2024-01-15",
			CurrencyCode:   "EUR",
			BuyerReference: "PO-4711",
		},
		DueDate:            "2024-02-14",
		Supplier:           supplier(),
		Customer:           customer(),
		PaymentMeans:       &ubl.PaymentMeans{Code: "30", IBAN: "NL91ABNA0417164300", BIC: "ABNANL2A"},
		PaymentTerms:       "Net 30",
		Lines:              lines,
		TaxTotal:           tax,
		LegalMonetaryTotal: totals,
	}
}

// mixedRateInvoice has two VAT groups, 21% and 9%, across three lines.
func mixedRateInvoice() *ubl.InvoiceData {
	inv := sampleInvoice()
	inv.Lines = []ubl.LineItem{
		ubl.NewLine("1", "Widget", dec("2"), dec("50.00"), ubl.StandardRated(dec("21"))),
		ubl.NewLine("2", "Book", dec("3"), dec("12.50"), ubl.StandardRated(dec("9"))),
		ubl.NewLine("3", "Gadget", dec("1"), dec("19.99"), ubl.StandardRated(dec("21.00"))),
	}
	inv.TaxTotal, inv.LegalMonetaryTotal = ubl.ComputeTotals(inv.Lines)
	return inv
}

func sampleCreditNote() *ubl.CreditNoteData {
	inv := sampleInvoice()
	return &ubl.CreditNoteData{
		Header:             ubl.Header{ID: "CN-1", IssueDate: "2024-01-20", CurrencyCode: "EUR", BuyerReference: "PO-4711"},
		BillingReference:   "INV-1",
		Supplier:           inv.Supplier,
		Customer:           inv.Customer,
		Lines:              inv.Lines,
		TaxTotal:           inv.TaxTotal,
		LegalMonetaryTotal: inv.LegalMonetaryTotal,
	}
}

func sampleOrder() *ubl.OrderData {
	inv := sampleInvoice()
	delivery := ubl.NewAddress("Lagerweg 9", "Hamburg", "20095", "DE")
	return &ubl.OrderData{
		Header:                   ubl.Header{ID: "PO-1", IssueDate: "2024-01-10", CurrencyCode: "EUR", BuyerReference: "REF-9"},
		Buyer:                    inv.Customer,
		Seller:                   inv.Supplier,
		DeliveryAddress:          &delivery,
		RequestedDeliveryDate:    "2024-01-31",
		Lines:                    inv.Lines,
		TaxTotal:                 inv.TaxTotal,
		AnticipatedMonetaryTotal: inv.LegalMonetaryTotal,
	}
}
