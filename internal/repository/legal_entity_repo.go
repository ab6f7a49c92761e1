package repository

import (
	"context"

	"gorm.io/gorm"

	"peppolsheet/internal/model"
)

type LegalEntityRepository interface {
	// Create inserts e unless the tenant already registered the same gateway
	// entity, in which case the existing row is loaded into e.
	Create(ctx context.Context, e *model.LegalEntity) error
	FindForTenant(ctx context.Context, tenantID string, id int64) (*model.LegalEntity, error)
}

type legalEntityRepo struct{ db *gorm.DB }

func NewLegalEntityRepository(db *gorm.DB) LegalEntityRepository {
	return &legalEntityRepo{db: db}
}

func (r *legalEntityRepo) Create(ctx context.Context, e *model.LegalEntity) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND storecove_legal_entity_id = ?", e.TenantID, e.StorecoveLegalEntityID).
		FirstOrCreate(e).Error
}

func (r *legalEntityRepo) FindForTenant(ctx context.Context, tenantID string, id int64) (*model.LegalEntity, error) {
	var e model.LegalEntity
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&e).Error
	return &e, err
}
