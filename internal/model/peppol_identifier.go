package model

import "time"

// PeppolIdentifier is a saved recipient address on the PEPPOL network,
// e.g. scheme "0208" with identifier "0123456789".
type PeppolIdentifier struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	TenantID   string `gorm:"type:text;not null;uniqueIndex:idx_peppol_identifiers_tenant_value,priority:1"`
	Label      string `gorm:"type:varchar(200)"`
	Scheme     string `gorm:"type:varchar(10);not null;uniqueIndex:idx_peppol_identifiers_tenant_value,priority:2"`
	Identifier string `gorm:"type:varchar(100);not null;uniqueIndex:idx_peppol_identifiers_tenant_value,priority:3"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Address renders the identifier as "scheme:identifier".
func (p PeppolIdentifier) Address() string { return p.Scheme + ":" + p.Identifier }
