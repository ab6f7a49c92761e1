package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SubmissionSent   = "sent"
	SubmissionFailed = "failed"
)

// Submission records one attempt to hand a generated document to the gateway.
// Status: "sent" | "failed". The XML is kept so a failed send can be replayed.
type Submission struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID              string    `gorm:"type:text;not null;index:idx_submissions_tenant_created,priority:1"`
	UserID                string    `gorm:"type:text;not null"`
	LegalEntityID         int64     `gorm:"not null;index"`
	RecipientIdentifierID int64     `gorm:"not null"`
	DocumentType          string    `gorm:"type:varchar(20);not null"`
	DocumentNumber        string    `gorm:"type:varchar(100);not null"`
	Status                string    `gorm:"type:varchar(20);not null;default:'sent'"`
	// GatewayGUID is StoreCove's document submission guid
	GatewayGUID     *string        `gorm:"type:varchar(64);column:gateway_guid"`
	GatewayResponse datatypes.JSON `gorm:"type:jsonb"`
	ErrorMessage    *string
	UBLXML          string    `gorm:"type:text;not null;column:ubl_xml"`
	CreatedAt       time.Time `gorm:"index:idx_submissions_tenant_created,priority:2,sort:desc"`
	UpdatedAt       time.Time
}
