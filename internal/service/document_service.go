package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"peppolsheet/internal/dto"
	"peppolsheet/internal/infra"
	"peppolsheet/internal/logger"
	"peppolsheet/internal/model"
	"peppolsheet/internal/repository"
	"peppolsheet/internal/ubl"
	"peppolsheet/internal/worker"
)

// Caller identifies who is acting; taken from the verified JWT.
type Caller struct {
	TenantID string
	UserID   string
}

// Gateway delivers documents onto the PEPPOL network. *infra.StorecoveClient
// satisfies it.
type Gateway interface {
	SendDocument(ctx context.Context, s infra.DocumentSubmission) (*infra.SubmissionResult, error)
}

// EmailQueue accepts email copy jobs. *worker.Dispatcher satisfies it.
type EmailQueue interface {
	EnqueueEmailCopy(ctx context.Context, p worker.EmailCopyPayload) error
}

type DocumentService interface {
	Create(ctx context.Context, caller Caller, req dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Validate(ctx context.Context, req dto.ValidateDocumentRequest) (*dto.ValidateDocumentResponse, error)
	SendXML(ctx context.Context, caller Caller, req dto.SendXMLRequest) (*dto.SendXMLResponse, error)
}

type documentService struct {
	entities    repository.LegalEntityRepository
	identifiers repository.PeppolIdentifierRepository
	submissions repository.SubmissionRepository
	gateway     Gateway
	emails      EmailQueue
	log         zerolog.Logger
}

// NewDocumentService wires the document pipeline. emails may be nil, in
// which case email_copy_to is accepted and ignored with a warning log.
func NewDocumentService(
	entities repository.LegalEntityRepository,
	identifiers repository.PeppolIdentifierRepository,
	submissions repository.SubmissionRepository,
	gateway Gateway,
	emails EmailQueue,
) DocumentService {
	return &documentService{
		entities:    entities,
		identifiers: identifiers,
		submissions: submissions,
		gateway:     gateway,
		emails:      emails,
		log:         logger.WithComponent("documents"),
	}
}

// Create decodes, validates and generates a document, then optionally
// transmits it and queues an email copy.
func (s *documentService) Create(ctx context.Context, caller Caller, req dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	doc, err := dto.DecodeDocument(req.DocumentType, req.DocumentData)
	if err != nil {
		return nil, &InputError{Message: "invalid document_data", Errors: []string{err.Error()}}
	}

	result := ubl.Validate(doc)
	if !result.Valid {
		return nil, &InputError{Message: "document validation failed", Errors: result.Errors, Warnings: result.Warnings}
	}

	var opts []ubl.Option
	var pdf []byte
	if req.AttachPDF {
		pdf, err = infra.RenderDocumentPDF(doc)
		if err != nil {
			return nil, &GenerationError{Message: "failed to render PDF rendition", Err: err}
		}
		opts = append(opts, ubl.WithAttachment(ubl.Attachment{
			ID:          doc.DocumentID(),
			Description: "Human readable rendition",
			MimeCode:    "application/pdf",
			Filename:    infra.PDFFilename(doc),
			Content:     pdf,
		}))
	}

	xml, structure, err := s.generate(doc, opts...)
	if err != nil {
		return nil, err
	}

	resp := &dto.CreateDocumentResponse{
		Success:               true,
		DocumentType:          req.DocumentType,
		UBLXML:                xml,
		ValidationWarnings:    result.Warnings,
		XMLValidationWarnings: structure.Warnings,
	}

	if req.SendImmediately {
		sub, err := s.transmit(ctx, caller, req.LegalEntityID, req.RecipientPeppolIdentifierID, req.DocumentType, doc.DocumentID(), xml)
		var te *TransmissionError
		if errors.As(err, &te) {
			te.Warnings = result.Warnings
		}
		if err != nil {
			return nil, err
		}
		r := submissionToResponse(sub)
		resp.Submission = &r
	}

	if req.EmailCopyTo != "" {
		s.queueEmailCopy(ctx, caller, req.EmailCopyTo, doc, xml, pdf)
	}
	return resp, nil
}

// generate runs the generator and the structure check. Structure failures
// on our own output are internal errors.
func (s *documentService) generate(doc ubl.Document, opts ...ubl.Option) (string, ubl.Result, error) {
	xml, err := ubl.Generate(doc, opts...)
	if err != nil {
		s.log.Error().Err(err).Str("document_id", doc.DocumentID()).Msg("documents: generation failed")
		return "", ubl.Result{}, &GenerationError{Message: "failed to generate UBL XML", Err: err}
	}
	structure := ubl.ValidateXMLStructure(xml, doc.DocumentType())
	if !structure.Valid {
		s.log.Error().
			Str("document_id", doc.DocumentID()).
			Str("document_type", string(doc.DocumentType())).
			Int("xml_length", len(xml)).
			Strs("errors", structure.Errors).
			Msg("documents: generated XML failed structure validation")
		return "", structure, &GenerationError{Message: "generated XML failed structure validation", Errors: structure.Errors, XML: xml}
	}
	return xml, structure, nil
}

// Validate is a dry run: decoding problems are input errors, validation
// findings are reported in the response.
func (s *documentService) Validate(_ context.Context, req dto.ValidateDocumentRequest) (*dto.ValidateDocumentResponse, error) {
	doc, err := dto.DecodeDocument(req.DocumentType, req.DocumentData)
	if err != nil {
		return nil, &InputError{Message: "invalid document_data", Errors: []string{err.Error()}}
	}
	result := ubl.Validate(doc)
	return &dto.ValidateDocumentResponse{
		Valid:              result.Valid,
		ValidationErrors:   result.Errors,
		ValidationWarnings: result.Warnings,
	}, nil
}

// SendXML retransmits caller-supplied XML, typically from an earlier 502.
func (s *documentService) SendXML(ctx context.Context, caller Caller, req dto.SendXMLRequest) (*dto.SendXMLResponse, error) {
	structure := ubl.ValidateXMLStructure(req.UBLXML, req.DocumentType)
	if !structure.Valid {
		return nil, &InputError{Message: "ubl_xml failed structure validation", Errors: structure.Errors, Warnings: structure.Warnings}
	}
	docID, err := ubl.ExtractDocumentID(req.UBLXML)
	if err != nil {
		return nil, &InputError{Message: "invalid ubl_xml", Errors: []string{err.Error()}}
	}

	sub, err := s.transmit(ctx, caller, req.LegalEntityID, req.RecipientPeppolIdentifierID, req.DocumentType, docID, req.UBLXML)
	if err != nil {
		var te *TransmissionError
		if errors.As(err, &te) {
			te.Warnings = structure.Warnings
		}
		return nil, err
	}
	return &dto.SendXMLResponse{
		Success:               true,
		XMLValidationWarnings: structure.Warnings,
		Submission:            submissionToResponse(sub),
	}, nil
}

// ── Transmission ─────────────────────────────────────────────────────────────

func (s *documentService) transmit(ctx context.Context, caller Caller, entityID, recipientID int64, t ubl.DocumentType, docID, xml string) (*model.Submission, error) {
	entity, err := s.entities.FindForTenant(ctx, caller.TenantID, entityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("legal entity %d: %w", entityID, ErrNotFound)
		}
		return nil, fmt.Errorf("load legal entity: %w", err)
	}
	recipient, err := s.identifiers.FindForTenant(ctx, caller.TenantID, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("peppol identifier %d: %w", recipientID, ErrNotFound)
		}
		return nil, fmt.Errorf("load peppol identifier: %w", err)
	}

	sub := &model.Submission{
		ID:                    uuid.New(),
		TenantID:              caller.TenantID,
		UserID:                caller.UserID,
		LegalEntityID:         entity.ID,
		RecipientIdentifierID: recipient.ID,
		DocumentType:          string(t),
		DocumentNumber:        docID,
		UBLXML:                xml,
	}

	start := time.Now()
	result, sendErr := s.gateway.SendDocument(ctx, infra.DocumentSubmission{
		LegalEntityID: entity.StorecoveLegalEntityID,
		Receiver:      ubl.EndpointID{SchemeID: recipient.Scheme, Value: recipient.Identifier},
		DocumentType:  t,
		UBLXML:        xml,
	})
	event := s.log.Info()
	if sendErr != nil {
		event = s.log.Warn().Err(sendErr)
	}
	event.Str("tenant_id", caller.TenantID).
		Str("document_id", docID).
		Str("recipient", recipient.Address()).
		Dur("latency", time.Since(start)).
		Msg("documents: gateway submission")

	if sendErr != nil {
		msg := sendErr.Error()
		sub.Status = model.SubmissionFailed
		sub.ErrorMessage = &msg
		var gw *infra.GatewayError
		if errors.As(sendErr, &gw) && json.Valid([]byte(gw.Body)) {
			sub.GatewayResponse = datatypes.JSON(gw.Body)
		}
		s.record(ctx, sub)
		return nil, &TransmissionError{Details: msg, XML: xml, Submission: sub, Err: sendErr}
	}

	sub.Status = model.SubmissionSent
	sub.GatewayGUID = &result.GUID
	if len(result.Raw) > 0 {
		sub.GatewayResponse = datatypes.JSON(result.Raw)
	}
	s.record(ctx, sub)
	return sub, nil
}

// record persists a submission. The document has already reached (or
// failed to reach) the gateway, so a DB failure here is logged rather than
// surfaced; failing the request would invite a duplicate send.
func (s *documentService) record(ctx context.Context, sub *model.Submission) {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		s.log.Error().Err(err).
			Str("submission_id", sub.ID.String()).
			Str("status", sub.Status).
			Msg("documents: failed to record submission")
	}
}

func (s *documentService) queueEmailCopy(ctx context.Context, caller Caller, to string, doc ubl.Document, xml string, pdf []byte) {
	if s.emails == nil {
		s.log.Warn().Str("to", to).Msg("documents: email copy requested but no queue configured")
		return
	}
	payload := worker.EmailCopyPayload{
		TenantID:     caller.TenantID,
		To:           to,
		DocumentType: string(doc.DocumentType()),
		DocumentID:   doc.DocumentID(),
		UBLXML:       xml,
	}
	if len(pdf) > 0 {
		payload.PDF = pdf
		payload.PDFFilename = infra.PDFFilename(doc)
	}
	if err := s.emails.EnqueueEmailCopy(ctx, payload); err != nil {
		s.log.Error().Err(err).Str("document_id", doc.DocumentID()).Msg("documents: failed to enqueue email copy")
	}
}

// ── helpers ──────────────────────────────────────────────────────────────────

func submissionToResponse(s *model.Submission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:                    s.ID.String(),
		TenantID:              s.TenantID,
		LegalEntityID:         s.LegalEntityID,
		RecipientIdentifierID: s.RecipientIdentifierID,
		DocumentType:          s.DocumentType,
		DocumentNumber:        s.DocumentNumber,
		Status:                s.Status,
		GatewayGUID:           s.GatewayGUID,
		Error:                 s.ErrorMessage,
		CreatedAt:             s.CreatedAt.Format(time.RFC3339),
	}
}
