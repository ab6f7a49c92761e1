package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"peppolsheet/internal/model"
)

// SubmissionFilter narrows a submission listing. An empty TenantID lists all
// tenants and is only used by the admin view.
type SubmissionFilter struct {
	TenantID string
	Status   string
	Page     int
	Limit    int
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) error
	FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*model.Submission, error)
	List(ctx context.Context, f SubmissionFilter) ([]model.Submission, int64, error)
}

type submissionRepo struct{ db *gorm.DB }

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, s *model.Submission) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *submissionRepo) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*model.Submission, error) {
	var s model.Submission
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&s).Error
	return &s, err
}

func (r *submissionRepo) List(ctx context.Context, f SubmissionFilter) ([]model.Submission, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Submission{})
	if f.TenantID != "" {
		q = q.Where("tenant_id = ?", f.TenantID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Submission
	// the listing never needs the XML body
	err := q.Omit("ubl_xml").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&list).Error
	return list, total, err
}
