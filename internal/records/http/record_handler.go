// Package http implements the HTTP handlers for the protected records API.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldvault/fieldvault/internal/httputil"
	"github.com/fieldvault/fieldvault/internal/records/http/dto"
	"github.com/fieldvault/fieldvault/internal/records/usecase"
	customValidation "github.com/fieldvault/fieldvault/internal/validation"
)

// RecordHandler handles HTTP requests for protected records.
//
// All reads go through the decrypting projection and all writes through the
// mutation gateway; the handler never sees ciphertext.
type RecordHandler struct {
	recordUseCase    usecase.RecordUseCase
	provisionUseCase usecase.ProvisionUseCase
	logger           *slog.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(
	recordUseCase usecase.RecordUseCase,
	provisionUseCase usecase.ProvisionUseCase,
	logger *slog.Logger,
) *RecordHandler {
	return &RecordHandler{
		recordUseCase:    recordUseCase,
		provisionUseCase: provisionUseCase,
		logger:           logger,
	}
}

// CreateHandler creates a new protected record.
// POST /v1/records - Returns 201 Created with the decrypted record view.
func (h *RecordHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRecordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	view, err := h.recordUseCase.Create(c.Request.Context(), usecase.CreateRecordInput{
		OwnerID:     req.OwnerID,
		RecordType:  req.RecordType,
		DisplayName: req.DisplayName,
		CreatedBy:   req.CreatedBy,
		Fields:      req.FieldChanges(),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRecordViewToResponse(view))
}

// UpdateHandler applies a partial update to a protected record.
// PATCH /v1/records/:id - Omitted fields stay unchanged, null fields clear.
// Returns 200 OK with the decrypted record view.
func (h *RecordHandler) UpdateHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid record id: %w", err), h.logger)
		return
	}

	var req dto.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	view, err := h.recordUseCase.Update(c.Request.Context(), id, req.FieldChanges())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordViewToResponse(view))
}

// GetHandler returns the decrypted view of a single record.
// GET /v1/records/:id - Returns 200 OK.
func (h *RecordHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid record id: %w", err), h.logger)
		return
	}

	view, err := h.recordUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordViewToResponse(view))
}

// ListHandler returns the decrypted views of an owner's records.
// GET /v1/records?owner_id= - Supports offset/limit pagination. Returns 200 OK.
func (h *RecordHandler) ListHandler(c *gin.Context) {
	ownerID, err := strconv.ParseInt(c.Query("owner_id"), 10, 64)
	if err != nil || ownerID <= 0 {
		httputil.HandleBadRequestGin(c, fmt.Errorf("owner_id query parameter is required"), h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	views, err := h.recordUseCase.ListByOwner(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordViewsToListResponse(views, offset, limit))
}

// DeleteHandler removes a protected record.
// DELETE /v1/records/:id - Returns 204 No Content.
func (h *RecordHandler) DeleteHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid record id: %w", err), h.logger)
		return
	}

	if err := h.recordUseCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ProvisionDefaultsHandler seeds the placeholder records for an owner.
// POST /v1/owners/:owner_id/default-records - Idempotent. Returns 204 No Content.
func (h *RecordHandler) ProvisionDefaultsHandler(c *gin.Context) {
	ownerID, err := strconv.ParseInt(c.Param("owner_id"), 10, 64)
	if err != nil || ownerID <= 0 {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid owner id"), h.logger)
		return
	}

	if err := h.provisionUseCase.EnsureDefaults(c.Request.Context(), ownerID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
