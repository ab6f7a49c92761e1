package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"peppolsheet/internal/apierror"
	"peppolsheet/internal/dto"
	"peppolsheet/internal/service"
)

type SubmissionsHandler struct{ svc service.SubmissionService }

func NewSubmissionsHandler(svc service.SubmissionService) *SubmissionsHandler {
	return &SubmissionsHandler{svc: svc}
}

// List godoc
// @Summary List the tenant's document submissions, newest first
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param status query string false "sent or failed"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 50, max 200)"
// @Success 200 {object} dto.SubmissionListResponse
// @Router /api/submissions [get]
func (h *SubmissionsHandler) List(c *gin.Context) {
	var q dto.SubmissionListQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), callerOf(c).TenantID, q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Submission detail including the transmitted XML
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} dto.SubmissionDetailResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/submissions/{id} [get]
func (h *SubmissionsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid submission id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), callerOf(c).TenantID, id)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, apierror.New("submission not found"))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListAll godoc
// @Summary List submissions across tenants (admin and support)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param tenant_id query string false "Restrict to one tenant"
// @Param status query string false "sent or failed"
// @Success 200 {object} dto.SubmissionListResponse
// @Failure 403 {object} apierror.APIError
// @Router /api/admin/submissions [get]
func (h *SubmissionsHandler) ListAll(c *gin.Context) {
	var q dto.SubmissionListQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ListAll(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
