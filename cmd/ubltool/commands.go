package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"peppolsheet/internal/infra"
	"peppolsheet/internal/ubl"
)

// ── generate ─────────────────────────────────────────────────────────────────

func newGenerateCmd() *cobra.Command {
	var typ, in, out string
	var withPDF bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Validate a JSON document and write its UBL XML",
		Example: `  ubltool generate --type invoice --in invoice.json --out invoice.xml
  cat cn.json | ubltool generate -t credit_note --in -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadDocument(cmd, typ, in)
			if err != nil {
				return err
			}
			if err := printReport(cmd, "data", ubl.Validate(doc)); err != nil {
				return err
			}

			var opts []ubl.Option
			if withPDF {
				pdf, err := infra.RenderDocumentPDF(doc)
				if err != nil {
					return err
				}
				opts = append(opts, ubl.WithAttachment(ubl.Attachment{
					ID: doc.DocumentID(), Description: "Human readable rendition",
					MimeCode: "application/pdf", Filename: infra.PDFFilename(doc), Content: pdf,
				}))
			}
			xml, err := ubl.Generate(doc, opts...)
			if err != nil {
				return err
			}
			if err := printReport(cmd, "xml", ubl.ValidateXMLStructure(xml, doc.DocumentType())); err != nil {
				return err
			}

			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), xml)
				return err
			}
			if err := os.WriteFile(out, []byte(xml), 0o644); err != nil {
				return err
			}
			log.Info().Str("document_id", doc.DocumentID()).Str("out", out).Int("bytes", len(xml)).Msg("ubltool: document written")
			return nil
		},
	}
	addTypeFlag(cmd, &typ)
	cmd.Flags().StringVarP(&in, "in", "i", "-", "input JSON file, - for stdin")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output XML file (default stdout)")
	cmd.Flags().BoolVar(&withPDF, "pdf", false, "embed a PDF rendition")
	return cmd
}

// ── validate ─────────────────────────────────────────────────────────────────

func newValidateCmd() *cobra.Command {
	var typ, in string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON document and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadDocument(cmd, typ, in)
			if err != nil {
				return err
			}
			result := ubl.Validate(doc)
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Valid {
				return errInvalid
			}
			return nil
		},
	}
	addTypeFlag(cmd, &typ)
	cmd.Flags().StringVarP(&in, "in", "i", "-", "input JSON file, - for stdin")
	return cmd
}

// ── check-xml ────────────────────────────────────────────────────────────────

func newCheckXMLCmd() *cobra.Command {
	var typ, in string
	cmd := &cobra.Command{
		Use:   "check-xml",
		Short: "Check the structure of an existing UBL XML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := parseType(typ)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			result := ubl.ValidateXMLStructure(string(raw), t)
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Valid {
				return errInvalid
			}
			return nil
		},
	}
	addTypeFlag(cmd, &typ)
	cmd.Flags().StringVarP(&in, "in", "i", "-", "input XML file, - for stdin")
	return cmd
}

// ── scaffold ─────────────────────────────────────────────────────────────────

func newScaffoldCmd() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Print a reconciled sample JSON document to start from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := parseType(typ)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), scaffold(t))
		},
	}
	addTypeFlag(cmd, &typ)
	return cmd
}

func scaffold(t ubl.DocumentType) ubl.Document {
	seller := ubl.NewParty("Example Seller BV", "NL000000000B01", ubl.NewAddress("Main Street 1", "Amsterdam", "1000AA", "NL"))
	seller.EndpointID = &ubl.EndpointID{SchemeID: "0106", Value: "00000000"}
	buyer := ubl.NewParty("Example Buyer NV", "BE0000000000", ubl.NewAddress("Rue Neuve 1", "Brussels", "1000", "BE"))
	buyer.EndpointID = &ubl.EndpointID{SchemeID: "0208", Value: "0000000000"}

	lines := []ubl.LineItem{
		ubl.NewLine("1", "Consulting", decimal.NewFromInt(8), decimal.RequireFromString("95.00"), ubl.StandardRated(decimal.NewFromInt(21))),
		ubl.NewLine("2", "Travel", decimal.NewFromInt(1), decimal.RequireFromString("42.50"), ubl.StandardRated(decimal.NewFromInt(21))),
	}
	tax, totals := ubl.ComputeTotals(lines)
	header := ubl.Header{ID: "DOC-0001", IssueDate: "2024-01-31", CurrencyCode: "EUR", BuyerReference: "REF-1"}

	switch t {
	case ubl.TypeCreditNote:
		header.ID = "CN-0001"
		return &ubl.CreditNoteData{Header: header, BillingReference: "INV-0001",
			Supplier: seller, Customer: buyer, Lines: lines, TaxTotal: tax, LegalMonetaryTotal: totals}
	case ubl.TypeOrder:
		header.ID = "PO-0001"
		return &ubl.OrderData{Header: header, Buyer: buyer, Seller: seller,
			RequestedDeliveryDate: "2024-02-15", Lines: lines, TaxTotal: tax, AnticipatedMonetaryTotal: totals}
	}
	header.ID = "INV-0001"
	return &ubl.InvoiceData{Header: header, DueDate: "2024-03-01", Supplier: seller, Customer: buyer,
		PaymentMeans: &ubl.PaymentMeans{Code: "30", IBAN: "NL91ABNA0417164300"}, PaymentTerms: "Net 30",
		Lines: lines, TaxTotal: tax, LegalMonetaryTotal: totals}
}
