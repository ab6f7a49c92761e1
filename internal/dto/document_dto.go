package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"peppolsheet/internal/ubl"
)

// CreateDocumentRequest is the body of POST /api/storecove/invoices/create-from-json.
// DocumentType selects which concrete model DocumentData decodes into.
type CreateDocumentRequest struct {
	LegalEntityID               int64            `json:"legal_entity_id"                validate:"required,gt=0"`
	RecipientPeppolIdentifierID int64            `json:"recipient_peppol_identifier_id" validate:"required,gt=0"`
	DocumentType                ubl.DocumentType `json:"document_type"                  validate:"required,oneof=invoice credit_note order"`
	DocumentData                json.RawMessage  `json:"document_data"                  validate:"required"`
	SendImmediately             bool             `json:"send_immediately"`
	AttachPDF                   bool             `json:"attach_pdf"`
	EmailCopyTo                 string           `json:"email_copy_to"                  validate:"omitempty,email"`
}

// ValidateDocumentRequest is the body of the dry-run endpoint.
type ValidateDocumentRequest struct {
	DocumentType ubl.DocumentType `json:"document_type" validate:"required,oneof=invoice credit_note order"`
	DocumentData json.RawMessage  `json:"document_data" validate:"required"`
}

// SendXMLRequest resends XML returned by an earlier failed transmission.
type SendXMLRequest struct {
	LegalEntityID               int64            `json:"legal_entity_id"                validate:"required,gt=0"`
	RecipientPeppolIdentifierID int64            `json:"recipient_peppol_identifier_id" validate:"required,gt=0"`
	DocumentType                ubl.DocumentType `json:"document_type"                  validate:"required,oneof=invoice credit_note order"`
	UBLXML                      string           `json:"ubl_xml"                        validate:"required"`
}

// DecodeDocument strictly decodes raw into the model selected by t. Unknown
// fields are rejected so typos in amounts do not silently become zero.
func DecodeDocument(t ubl.DocumentType, raw json.RawMessage) (ubl.Document, error) {
	var doc ubl.Document
	switch t {
	case ubl.TypeInvoice:
		doc = &ubl.InvoiceData{}
	case ubl.TypeCreditNote:
		doc = &ubl.CreditNoteData{}
	case ubl.TypeOrder:
		doc = &ubl.OrderData{}
	default:
		return nil, fmt.Errorf("unsupported document_type %q", t)
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errors.New("document_data is required")
	}
	if err := DecodeStrict(bytes.NewReader(raw), doc); err != nil {
		return nil, fmt.Errorf("document_data: %w", err)
	}
	return doc, nil
}

// DecodeStrict decodes exactly one JSON value from r into v, rejecting
// unknown fields and trailing data.
func DecodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// CreateDocumentResponse is the 200 body of create-from-json.
type CreateDocumentResponse struct {
	Success               bool                `json:"success"`
	DocumentType          ubl.DocumentType    `json:"document_type"`
	UBLXML                string              `json:"ubl_xml"`
	ValidationWarnings    []string            `json:"validation_warnings"`
	XMLValidationWarnings []string            `json:"xml_validation_warnings"`
	Submission            *SubmissionResponse `json:"submission,omitempty"`
}

type ValidateDocumentResponse struct {
	Valid              bool     `json:"valid"`
	ValidationErrors   []string `json:"validation_errors"`
	ValidationWarnings []string `json:"validation_warnings"`
}

type SendXMLResponse struct {
	Success               bool               `json:"success"`
	XMLValidationWarnings []string           `json:"xml_validation_warnings"`
	Submission            SubmissionResponse `json:"submission"`
}
