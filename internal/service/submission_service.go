package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"peppolsheet/internal/dto"
	"peppolsheet/internal/model"
	"peppolsheet/internal/repository"
)

type SubmissionService interface {
	List(ctx context.Context, tenantID string, q dto.SubmissionListQuery) (*dto.SubmissionListResponse, error)
	// ListAll spans every tenant unless q.TenantID narrows it. Admin only.
	ListAll(ctx context.Context, q dto.SubmissionListQuery) (*dto.SubmissionListResponse, error)
	Get(ctx context.Context, tenantID string, id uuid.UUID) (*dto.SubmissionDetailResponse, error)
}

type submissionService struct {
	repo repository.SubmissionRepository
}

func NewSubmissionService(repo repository.SubmissionRepository) SubmissionService {
	return &submissionService{repo: repo}
}

func (s *submissionService) List(ctx context.Context, tenantID string, q dto.SubmissionListQuery) (*dto.SubmissionListResponse, error) {
	return s.list(ctx, repository.SubmissionFilter{TenantID: tenantID, Status: q.Status, Page: q.Page, Limit: q.Limit})
}

func (s *submissionService) ListAll(ctx context.Context, q dto.SubmissionListQuery) (*dto.SubmissionListResponse, error) {
	return s.list(ctx, repository.SubmissionFilter{TenantID: q.TenantID, Status: q.Status, Page: q.Page, Limit: q.Limit})
}

func (s *submissionService) list(ctx context.Context, f repository.SubmissionFilter) (*dto.SubmissionListResponse, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 50
	}
	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.SubmissionListResponse{
		Data: lo.Map(rows, func(row model.Submission, _ int) dto.SubmissionResponse {
			return submissionToResponse(&row)
		}),
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: int((total + int64(f.Limit) - 1) / int64(f.Limit)),
	}, nil
}

func (s *submissionService) Get(ctx context.Context, tenantID string, id uuid.UUID) (*dto.SubmissionDetailResponse, error) {
	sub, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	resp := &dto.SubmissionDetailResponse{
		SubmissionResponse: submissionToResponse(sub),
		UBLXML:             sub.UBLXML,
	}
	if len(sub.GatewayResponse) > 0 {
		resp.GatewayResponse = json.RawMessage(sub.GatewayResponse)
	}
	return resp, nil
}
