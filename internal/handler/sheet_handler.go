package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/inspection-api/internal/dto"
	"github.com/noah-isme/inspection-api/internal/models"
	"github.com/noah-isme/inspection-api/internal/service"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
	"github.com/noah-isme/inspection-api/pkg/response"
)

type sheetService interface {
	Create(ctx context.Context, req dto.CreateSheetRequest, actor *models.User) (*models.InspectionSheet, error)
	Start(ctx context.Context, id string, actor *models.User) (*models.InspectionSheet, error)
	AddDefect(ctx context.Context, id string, req dto.AddDefectRequest, actor *models.User) (*models.Defect, *models.InspectionSheet, error)
	RemoveDefect(ctx context.Context, id, defectID string, actor *models.User) (*models.InspectionSheet, error)
	Submit(ctx context.Context, id string, actor *models.User) (*models.InspectionSheet, error)
	Approve(ctx context.Context, id string, req dto.ApproveSheetRequest, actor *models.User) (*models.InspectionSheet, error)
	SetNotes(ctx context.Context, id string, req dto.SetNotesRequest, actor *models.User) (*models.InspectionSheet, error)
	Get(ctx context.Context, id string, actor *models.User) (*models.InspectionSheet, error)
	List(ctx context.Context, query dto.SheetQuery, actor *models.User) ([]models.InspectionSheet, error)
	History(ctx context.Context, id string, actor *models.User) ([]models.AuditLog, error)
	Export(ctx context.Context, id, format string, actor *models.User) (*service.ExportResult, error)
}

// SheetHandler exposes the inspection sheet workflow.
type SheetHandler struct {
	service sheetService
}

// NewSheetHandler builds a new handler.
func NewSheetHandler(service sheetService) *SheetHandler {
	return &SheetHandler{service: service}
}

// Create godoc
// @Summary Issue an inspection sheet to a worker
// @Tags Sheets
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param payload body dto.CreateSheetRequest true "Sheet payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /sheets [post]
func (h *SheetHandler) Create(c *gin.Context) {
	var req dto.CreateSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sheet payload"))
		return
	}
	sheet, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sheet)
}

// List godoc
// @Summary List inspection sheets
// @Tags Sheets
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param executorId query string false "Executor filter"
// @Param objectId query string false "Object filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /sheets [get]
func (h *SheetHandler) List(c *gin.Context) {
	var query dto.SheetQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	sheets, err := h.service.List(c.Request.Context(), query, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheets, nil, map[string]interface{}{"count": len(sheets)})
}

// Get godoc
// @Summary Get an inspection sheet
// @Tags Sheets
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Sheet ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sheets/{id} [get]
func (h *SheetHandler) Get(c *gin.Context) {
	sheet, err := h.service.Get(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Start godoc
// @Summary Start work on an issued sheet
// @Tags Sheets
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Sheet ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sheets/{id}/start [post]
func (h *SheetHandler) Start(c *gin.Context) {
	sheet, err := h.service.Start(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// AddDefect godoc
// @Summary Record a defect on an in-progress sheet
// @Tags Sheets
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Sheet ID"
// @Param payload body dto.AddDefectRequest true "Defect payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sheets/{id}/defects [post]
func (h *SheetHandler) AddDefect(c *gin.Context) {
	var req dto.AddDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid defect payload"))
		return
	}
	defect, sheet, err := h.service.AddDefect(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, defect, nil, map[string]interface{}{"sheetVersion": sheet.Version})
}

// RemoveDefect godoc
// @Summary Remove a defect from an in-progress sheet
// @Tags Sheets
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Sheet ID"
// @Param defectId path string true "Defect ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sheets/{id}/defects/{defectId} [delete]
func (h *SheetHandler) RemoveDefect(c *gin.Context) {
	if _, err := h.service.RemoveDefect(c.Request.Context(), c.Param("id"), c.Param("defectId"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit a sheet for review
// @Tags Sheets
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Sheet ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sheets/{id}/submit [post]
func (h *SheetHandler) Submit(c *gin.Context) {
	sheet, err := h.service.Submit(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// SetNotes godoc
// @Summary Edit master notes on a completed sheet
// @Tags Sheets
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Sheet ID"
// @Param payload body dto.SetNotesRequest true "Notes"
// @Success 200 {object} response.Envelope
// @Router /sheets/{id}/notes [put]
func (h *SheetHandler) SetNotes(c *gin.Context) {
	var req dto.SetNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notes payload"))
		return
	}
	sheet, err := h.service.SetNotes(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Approve godoc
// @Summary Approve a completed sheet
// @Tags Sheets
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Sheet ID"
// @Param payload body dto.ApproveSheetRequest false "Optional notes"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sheets/{id}/approve [post]
func (h *SheetHandler) Approve(c *gin.Context) {
	var req dto.ApproveSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
		return
	}
	sheet, err := h.service.Approve(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// History godoc
// @Summary Audit trail of a sheet
// @Tags Sheets
// @Produce json
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Sheet ID"
// @Success 200 {object} response.Envelope
// @Router /sheets/{id}/history [get]
func (h *SheetHandler) History(c *gin.Context) {
	logs, err := h.service.History(c.Request.Context(), c.Param("id"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Export godoc
// @Summary Download a sheet as PDF act or CSV defect register
// @Tags Sheets
// @Produce application/pdf
// @Produce text/csv
// @Param X-User-ID header string true "Acting user"
// @Param id path string true "Sheet ID"
// @Param format query string false "pdf (default) or csv"
// @Success 200 {file} binary
// @Router /sheets/{id}/export [get]
func (h *SheetHandler) Export(c *gin.Context) {
	result, err := h.service.Export(c.Request.Context(), c.Param("id"), c.Query("format"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
