package model

import "time"

// LegalEntity is a sending company registered with the gateway on behalf of a tenant.
type LegalEntity struct {
	ID                     int64  `gorm:"primaryKey;autoIncrement"`
	TenantID               string `gorm:"type:text;not null;index"`
	Name                   string `gorm:"type:varchar(200);not null"`
	CountryCode            string `gorm:"type:char(2);not null"`
	StorecoveLegalEntityID int64  `gorm:"not null;column:storecove_legal_entity_id"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
