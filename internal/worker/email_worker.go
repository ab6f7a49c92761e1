package worker

// email_worker.go mails a copy of a generated document (UBL XML and, when
// one was rendered, the PDF) to the address given in email_copy_to.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"peppolsheet/internal/infra"
)

// EmailCopyPayload is the payload of an email_copy job.
type EmailCopyPayload struct {
	TenantID     string `json:"tenant_id"`
	To           string `json:"to"`
	DocumentType string `json:"document_type"`
	DocumentID   string `json:"document_id"`
	UBLXML       string `json:"ubl_xml"`
	PDF          []byte `json:"pdf,omitempty"`
	PDFFilename  string `json:"pdf_filename,omitempty"`
}

// MailSender is satisfied by *infra.Mailer.
type MailSender interface {
	Send(to, subject, body string, attachments ...infra.MailAttachment) error
}

type EmailWorker struct {
	mailer MailSender
}

func NewEmailWorker(mailer MailSender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends the copy, retrying transient SMTP failures.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p EmailCopyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if p.To == "" {
		return errors.New("email_worker: empty recipient")
	}

	attachments := []infra.MailAttachment{{
		Filename:    fmt.Sprintf("%s-%s.xml", p.DocumentType, p.DocumentID),
		ContentType: "application/xml",
		Content:     []byte(p.UBLXML),
	}}
	if len(p.PDF) > 0 {
		attachments = append(attachments, infra.MailAttachment{
			Filename:    p.PDFFilename,
			ContentType: "application/pdf",
			Content:     p.PDF,
		})
	}
	subject := fmt.Sprintf("Copy of %s %s", humanType(p.DocumentType), p.DocumentID)
	body := fmt.Sprintf("Attached is a copy of %s %s as PEPPOL BIS 3 UBL.\n", humanType(p.DocumentType), p.DocumentID)

	err := withRetry(ctx, MaxAttempts, func(attempt int) error {
		if err := w.mailer.Send(p.To, subject, body, attachments...); err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", p.To).Msg("email_worker: send failed")
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("email_worker: giving up after %d attempts: %w", MaxAttempts, err)
	}
	log.Info().Str("to", p.To).Str("document_id", p.DocumentID).Str("tenant_id", p.TenantID).Msg("email_worker: copy sent")
	return nil
}

func humanType(t string) string {
	switch t {
	case "credit_note":
		return "credit note"
	case "order":
		return "order"
	}
	return "invoice"
}
