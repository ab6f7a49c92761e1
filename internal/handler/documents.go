package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"peppolsheet/internal/apierror"
	"peppolsheet/internal/dto"
	"peppolsheet/internal/middleware"
	"peppolsheet/internal/service"
)

const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 255
)

type DocumentsHandler struct {
	svc  service.DocumentService
	idem service.IdempotencyStore
}

// NewDocumentsHandler builds the handler. idem may be nil, which disables
// Idempotency-Key support.
func NewDocumentsHandler(svc service.DocumentService, idem service.IdempotencyStore) *DocumentsHandler {
	return &DocumentsHandler{svc: svc, idem: idem}
}

// CreateFromJSON godoc
// @Summary Generate a PEPPOL BIS 3 UBL document from JSON and optionally send it
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replays the first successful response for this key"
// @Param body body dto.CreateDocumentRequest true "Document"
// @Success 200 {object} dto.CreateDocumentResponse
// @Failure 400 {object} apierror.ValidationFailure
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 500 {object} apierror.GenerationFailure
// @Failure 502 {object} apierror.TransmissionFailure
// @Router /api/storecove/invoices/create-from-json [post]
func (h *DocumentsHandler) CreateFromJSON(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.idempotent(c, func() (int, interface{}) {
		resp, err := h.svc.Create(c.Request.Context(), callerOf(c), req)
		if err != nil {
			return documentError(c, err)
		}
		return http.StatusOK, resp
	})
}

// Validate godoc
// @Summary Dry-run validation of a document; nothing is generated or sent
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ValidateDocumentRequest true "Document"
// @Success 200 {object} dto.ValidateDocumentResponse
// @Failure 400 {object} apierror.ValidationFailure
// @Router /api/storecove/documents/validate [post]
func (h *DocumentsHandler) Validate(c *gin.Context) {
	var req dto.ValidateDocumentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Validate(c.Request.Context(), req)
	if err != nil {
		c.JSON(documentError(c, err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SendXML godoc
// @Summary Transmit UBL XML returned by an earlier failed send
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replays the first successful response for this key"
// @Param body body dto.SendXMLRequest true "XML and routing"
// @Success 200 {object} dto.SendXMLResponse
// @Failure 400 {object} apierror.ValidationFailure
// @Failure 404 {object} apierror.APIError
// @Failure 502 {object} apierror.TransmissionFailure
// @Router /api/storecove/documents/send-xml [post]
func (h *DocumentsHandler) SendXML(c *gin.Context) {
	var req dto.SendXMLRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.idempotent(c, func() (int, interface{}) {
		resp, err := h.svc.SendXML(c.Request.Context(), callerOf(c), req)
		if err != nil {
			return documentError(c, err)
		}
		return http.StatusOK, resp
	})
}

// idempotent runs fn at most once per (tenant, Idempotency-Key). Only 200
// responses are stored; anything else releases the key for a retry.
func (h *DocumentsHandler) idempotent(c *gin.Context, fn func() (int, interface{})) {
	key := c.GetHeader(IdempotencyKeyHeader)
	if key == "" || h.idem == nil {
		c.JSON(fn())
		return
	}
	if len(key) > maxIdempotencyKeyLength {
		c.JSON(http.StatusBadRequest, apierror.New("Idempotency-Key is too long"))
		return
	}

	ctx := c.Request.Context()
	tenant := callerOf(c).TenantID
	logger := log.With().Str("request_id", c.GetString(middleware.RequestIDKey)).Str("idempotency_key", key).Logger()

	replayed, ok := h.replay(c, tenant, key, logger)
	if !ok || replayed {
		return
	}

	reserved, err := h.idem.Reserve(ctx, tenant, key)
	if err != nil {
		logger.Error().Err(err).Msg("idempotency: reserve failed")
		c.JSON(http.StatusServiceUnavailable, apierror.New("idempotency store unavailable"))
		return
	}
	if !reserved {
		c.JSON(http.StatusConflict, apierror.New("a request with this Idempotency-Key is already in progress"))
		return
	}

	// A request holding the key may have completed between the first lookup
	// and the reservation; its stored result wins.
	if replayed, ok := h.replay(c, tenant, key, logger); !ok || replayed {
		if err := h.idem.Release(ctx, tenant, key); err != nil {
			logger.Warn().Err(err).Msg("idempotency: release failed")
		}
		return
	}

	status, payload := fn()
	if status != http.StatusOK {
		if err := h.idem.Release(ctx, tenant, key); err != nil {
			logger.Warn().Err(err).Msg("idempotency: release failed")
		}
		c.JSON(status, payload)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		_ = h.idem.Release(ctx, tenant, key)
		_ = c.Error(err)
		return
	}
	if err := h.idem.Complete(ctx, tenant, key, body); err != nil {
		logger.Error().Err(err).Msg("idempotency: failed to store response")
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// replay writes a stored response for key if there is one. ok is false when
// the store failed and a 503 has already been written.
func (h *DocumentsHandler) replay(c *gin.Context, tenant, key string, logger zerolog.Logger) (replayed, ok bool) {
	body, found, err := h.idem.Lookup(c.Request.Context(), tenant, key)
	if err != nil {
		logger.Error().Err(err).Msg("idempotency: lookup failed")
		c.JSON(http.StatusServiceUnavailable, apierror.New("idempotency store unavailable"))
		return false, false
	}
	if !found {
		return false, true
	}
	c.Header(IdempotentReplayedHeader, "true")
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	return true, true
}

// documentError maps service errors onto status codes and envelopes.
func documentError(c *gin.Context, err error) (int, interface{}) {
	var (
		input *service.InputError
		gen   *service.GenerationError
		trans *service.TransmissionError
	)
	switch {
	case errors.As(err, &input):
		return http.StatusBadRequest, apierror.NewValidationFailure(input.Message, input.Errors, input.Warnings)
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, apierror.New(err.Error())
	case errors.As(err, &gen):
		return http.StatusInternalServerError, apierror.NewGenerationFailure(gen.Message, gen.Errors, gen.XML)
	case errors.As(err, &trans):
		return http.StatusBadGateway, apierror.NewTransmissionFailure(trans.Details, trans.XML, trans.Warnings)
	}
	log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("documents: unexpected error")
	return http.StatusInternalServerError, apierror.New("internal server error")
}
