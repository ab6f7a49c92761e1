package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"peppolsheet/internal/dto"
	"peppolsheet/internal/ubl"
)

var version = "1.0.0"

// errInvalid signals that a report was already printed and the exit code must be 1.
var errInvalid = errors.New("document is not valid")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ubltool",
		Short: "Generate and validate PEPPOL BIS 3 UBL documents",
		Long: `ubltool turns the JSON document model used by the PeppolSheet API into
PEPPOL BIS Billing 3.0 invoices and credit notes, or PEPPOL Order-only
orders, and checks documents and XML the same way the API does.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd(), newValidateCmd(), newCheckXMLCmd(), newScaffoldCmd())
	return root
}

func addTypeFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "type", "t", string(ubl.TypeInvoice), "document type: invoice, credit_note or order")
}

func parseType(s string) (ubl.DocumentType, error) {
	t := ubl.DocumentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unsupported --type %q", s)
	}
	return t, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func loadDocument(cmd *cobra.Command, typ, path string) (ubl.Document, error) {
	t, err := parseType(typ)
	if err != nil {
		return nil, err
	}
	raw, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	return dto.DecodeDocument(t, raw)
}

// printReport writes errors and warnings to stderr and returns errInvalid
// when there are errors.
func printReport(cmd *cobra.Command, label string, r ubl.Result) error {
	w := cmd.ErrOrStderr()
	for _, e := range r.Errors {
		fmt.Fprintf(w, "%s error: %s\n", label, e)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "%s warning: %s\n", label, warn)
	}
	if !r.Valid {
		return errInvalid
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
