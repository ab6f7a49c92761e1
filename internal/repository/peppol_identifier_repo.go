package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"peppolsheet/internal/model"
)

type PeppolIdentifierRepository interface {
	// Upsert inserts p or, when (tenant, scheme, identifier) exists, loads it into p.
	Upsert(ctx context.Context, p *model.PeppolIdentifier) error
	FindForTenant(ctx context.Context, tenantID string, id int64) (*model.PeppolIdentifier, error)
}

type peppolIdentifierRepo struct{ db *gorm.DB }

func NewPeppolIdentifierRepository(db *gorm.DB) PeppolIdentifierRepository {
	return &peppolIdentifierRepo{db: db}
}

func (r *peppolIdentifierRepo) Upsert(ctx context.Context, p *model.PeppolIdentifier) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "scheme"}, {Name: "identifier"}},
		DoNothing: true,
	}).Create(p).Error
	if err != nil {
		return err
	}
	if p.ID != 0 {
		return nil
	}
	return db.Where("tenant_id = ? AND scheme = ? AND identifier = ?", p.TenantID, p.Scheme, p.Identifier).First(p).Error
}

func (r *peppolIdentifierRepo) FindForTenant(ctx context.Context, tenantID string, id int64) (*model.PeppolIdentifier, error) {
	var p model.PeppolIdentifier
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&p).Error
	return &p, err
}
