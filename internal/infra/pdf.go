package infra

// pdf.go renders a human-readable A4 copy of a document with go-pdf/fpdf.
// It is embedded in the UBL as an AdditionalDocumentReference when the caller
// asks for attach_pdf, and mailed alongside email copies.
//
// Output is deterministic for a given document: the PDF creation date is the
// document's issue date and the catalog is sorted.

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"peppolsheet/internal/ubl"
)

type pdfView struct {
	title     string
	id        string
	issueDate string
	dueDate   string
	reference string
	currency  string
	from      ubl.Party
	to        ubl.Party
	lines     []ubl.LineItem
	tax       ubl.TaxTotal
	totals    ubl.MonetaryTotal
}

func viewOf(doc ubl.Document) (pdfView, error) {
	switch d := doc.(type) {
	case *ubl.InvoiceData:
		return pdfView{"INVOICE", d.ID, d.IssueDate, d.DueDate, d.BuyerReference, d.CurrencyCode,
			d.Supplier, d.Customer, d.Lines, d.TaxTotal, d.LegalMonetaryTotal}, nil
	case *ubl.CreditNoteData:
		return pdfView{"CREDIT NOTE", d.ID, d.IssueDate, "", d.BillingReference, d.CurrencyCode,
			d.Supplier, d.Customer, d.Lines, d.TaxTotal, d.LegalMonetaryTotal}, nil
	case *ubl.OrderData:
		return pdfView{"PURCHASE ORDER", d.ID, d.IssueDate, d.RequestedDeliveryDate, d.BuyerReference, d.CurrencyCode,
			d.Buyer, d.Seller, d.Lines, d.TaxTotal, d.AnticipatedMonetaryTotal}, nil
	}
	return pdfView{}, fmt.Errorf("pdf: unsupported document %T", doc)
}

// PDFFilename is the attachment name used for doc's rendition.
func PDFFilename(doc ubl.Document) string {
	return fmt.Sprintf("%s-%s.pdf", doc.DocumentType(), doc.DocumentID())
}

// RenderDocumentPDF returns the PDF bytes for doc.
func RenderDocumentPDF(doc ubl.Document) ([]byte, error) {
	v, err := viewOf(doc)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetCatalogSort(true)
	if issued, err := time.Parse("2006-01-02", v.issueDate); err == nil {
		pdf.SetCreationDate(issued)
		pdf.SetModificationDate(issued)
	} else {
		pdf.SetCreationDate(time.Unix(0, 0).UTC())
		pdf.SetModificationDate(time.Unix(0, 0).UTC())
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, v.title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Number: "+v.id), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Issue date: "+v.issueDate, "", 1, "L", false, 0, "")
	if v.dueDate != "" {
		label := "Due date: "
		if doc.DocumentType() == ubl.TypeOrder {
			label = "Requested delivery: "
		}
		pdf.CellFormat(contentW, 5, label+v.dueDate, "", 1, "L", false, 0, "")
	}
	if v.reference != "" {
		pdf.CellFormat(contentW, 5, tr("Reference: "+v.reference), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Parties ──────────────────────────────────────────────────────────────
	half := contentW / 2
	top := pdf.GetY()
	partyBlock(pdf, tr, 15, top, half, "From", v.from)
	partyBlock(pdf, tr, 15+half, top, half, "To", v.to)
	pdf.SetXY(15, top+32)

	// ── Lines ────────────────────────────────────────────────────────────────
	colDesc := contentW * 0.44
	colQty := contentW * 0.12
	colPrice := contentW * 0.16
	colVAT := contentW * 0.10
	colAmount := contentW * 0.18

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colDesc, 6, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colPrice, 6, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colVAT, 6, "VAT %", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colAmount, 6, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range v.lines {
		name := line.Name
		if len(name) > 48 {
			name = name[:47] + "..."
		}
		pdf.CellFormat(colDesc, 6, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, line.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(colPrice, 6, line.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colVAT, 6, line.TaxCategory.Percent.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, 6, line.LineExtensionAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := contentW - colAmount
	total := func(label string, amount string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, 6, amount+" "+v.currency, "", 1, "R", false, 0, "")
	}
	if a, c := v.totals.AllowanceTotalAmount, v.totals.ChargeTotalAmount; a != nil || c != nil {
		total("Lines", v.totals.LineExtensionAmount.StringFixed(2), false)
		if a != nil {
			total("Allowances", a.Neg().StringFixed(2), false)
		}
		if c != nil {
			total("Charges", c.StringFixed(2), false)
		}
	}
	total("Net amount", v.totals.TaxExclusiveAmount.StringFixed(2), false)
	total("VAT", v.tax.TaxAmount.StringFixed(2), false)
	total("Total", v.totals.TaxInclusiveAmount.StringFixed(2), false)
	total("Amount due", v.totals.PayableAmount.StringFixed(2), true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

func partyBlock(pdf *fpdf.Fpdf, tr func(string) string, x, y, w float64, heading string, p ubl.Party) {
	pdf.SetXY(x, y)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(w, 5, heading, "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	name := p.Name
	if name == "" {
		name = p.RegistrationName
	}
	a := p.PostalAddress
	for _, row := range []string{name, a.StreetName, a.PostalZone + " " + a.CityName, a.CountryCode} {
		pdf.CellFormat(w, 5, tr(row), "", 2, "L", false, 0, "")
	}
	if p.VATNumber != "" {
		pdf.CellFormat(w, 5, "VAT: "+p.VATNumber, "", 2, "L", false, 0, "")
	}
}
