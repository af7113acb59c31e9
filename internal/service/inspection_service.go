package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/inspection-api/internal/dto"
	"github.com/noah-isme/inspection-api/internal/models"
	"github.com/noah-isme/inspection-api/internal/repository"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
)

type sheetStore interface {
	Create(ctx context.Context, sheet *models.InspectionSheet) error
	GetByID(ctx context.Context, id string) (*models.InspectionSheet, error)
	List(ctx context.Context, filter models.SheetFilter) ([]models.InspectionSheet, error)
	Update(ctx context.Context, id string, fn repository.SheetMutation) (*models.InspectionSheet, error)
}

type sheetAuditTrail interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	ListByResource(ctx context.Context, resource, resourceID string) ([]models.AuditLog, error)
}

type sheetCatalog interface {
	ObjectByID(id string) (*models.Object, error)
	UserByID(id string) (*models.User, error)
}

type sheetExporter interface {
	Render(ctx context.Context, in SheetExportInput, format ExportFormat) (*ExportResult, error)
}

// InspectionServiceOption customises an InspectionService.
type InspectionServiceOption func(*InspectionService)

// WithClock overrides the clock used for sheet dates.
func WithClock(clock func() time.Time) InspectionServiceOption {
	return func(s *InspectionService) {
		s.lifecycle = NewSheetLifecycle(clock)
	}
}

// WithIDGenerator overrides the generator used for defect ids.
func WithIDGenerator(newID func() string) InspectionServiceOption {
	return func(s *InspectionService) {
		s.ledger = NewDefectLedger(newID)
	}
}

// WithMetrics enables workflow operation counters.
func WithMetrics(metrics *MetricsService) InspectionServiceOption {
	return func(s *InspectionService) {
		s.metrics = metrics
	}
}

// WithExporter enables sheet exports.
func WithExporter(exporter sheetExporter) InspectionServiceOption {
	return func(s *InspectionService) {
		s.exporter = exporter
	}
}

// InspectionService is the single entry point of the sheet workflow. It
// resolves the actor's capabilities, runs the lifecycle and ledger against a
// locked copy of the sheet and returns snapshots.
type InspectionService struct {
	sheets    sheetStore
	catalog   sheetCatalog
	audit     sheetAuditTrail
	exporter  sheetExporter
	metrics   *MetricsService
	lifecycle SheetLifecycle
	ledger    DefectLedger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInspectionService wires the workflow.
func NewInspectionService(sheets sheetStore, catalog sheetCatalog, audit sheetAuditTrail, validate *validator.Validate, logger *zap.Logger, opts ...InspectionServiceOption) *InspectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &InspectionService{
		sheets:    sheets,
		catalog:   catalog,
		audit:     audit,
		lifecycle: NewSheetLifecycle(nil),
		ledger:    NewDefectLedger(uuid.NewString),
		validator: validate,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Create issues a new sheet.
func (s *InspectionService) Create(ctx context.Context, req dto.CreateSheetRequest, actor *models.User) (*models.InspectionSheet, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.lifecycle.CanIssue(actor); err != nil {
		s.metrics.RecordTransition(models.AuditActionSheetCreate, OutcomeRejected)
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sheet payload")
	}

	object, err := s.catalog.ObjectByID(req.ObjectID)
	if err != nil {
		return nil, referenceError(err, "objectId", req.ObjectID)
	}
	executor, err := s.catalog.UserByID(req.ExecutorID)
	if err != nil {
		return nil, referenceError(err, "executorId", req.ExecutorID)
	}
	var issued *models.Date
	if req.IssuedDate != "" {
		date, err := models.ParseDate(req.IssuedDate)
		if err != nil {
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "issuedDate must be YYYY-MM-DD"), "field", "issuedDate")
		}
		issued = &date
	}

	sheet, err := s.lifecycle.Issue(actor, *object, *executor, issued)
	if err != nil {
		s.metrics.RecordTransition(models.AuditActionSheetCreate, OutcomeRejected)
		return nil, err
	}
	if err := s.sheets.Create(ctx, &sheet); err != nil {
		s.metrics.RecordTransition(models.AuditActionSheetCreate, OutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sheet")
	}

	s.metrics.RecordTransition(models.AuditActionSheetCreate, OutcomeOK)
	s.logger.Info("sheet issued",
		zap.String("sheet_id", sheet.ID),
		zap.String("object_id", sheet.ObjectID),
		zap.String("executor_id", sheet.ExecutorID),
		zap.String("actor_id", actor.ID),
	)
	s.emitAudit(ctx, actor, models.AuditActionSheetCreate, nil, &sheet, nil)
	snapshot := sheet.Clone()
	return &snapshot, nil
}

// Start moves the sheet from issued to in_progress.
func (s *InspectionService) Start(ctx context.Context, id string, actor *models.User) (*models.InspectionSheet, error) {
	return s.mutate(ctx, id, actor, models.AuditActionSheetStart, func(sheet *models.InspectionSheet) (interface{}, error) {
		return nil, s.lifecycle.Start(sheet, actor)
	})
}

// AddDefect appends a defect to an in-progress sheet and returns it together
// with the updated sheet.
func (s *InspectionService) AddDefect(ctx context.Context, id string, req dto.AddDefectRequest, actor *models.User) (*models.Defect, *models.InspectionSheet, error) {
	if req.Severity != nil && strings.TrimSpace(*req.Severity) == "" {
		req.Severity = nil
	}
	var added models.Defect
	updated, err := s.mutate(ctx, id, actor, models.AuditActionDefectAdd, func(sheet *models.InspectionSheet) (interface{}, error) {
		if err := s.lifecycle.RequireEditable(sheet, actor); err != nil {
			return nil, err
		}
		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid defect payload")
		}
		object, err := s.catalog.ObjectByID(sheet.ObjectID)
		if err != nil {
			return nil, err
		}
		var severity *models.Severity
		if req.Severity != nil {
			sev := models.Severity(*req.Severity)
			severity = &sev
		}
		defect, err := s.ledger.Add(sheet, *object, req.LocationID, req.Description, severity)
		if err != nil {
			return nil, err
		}
		added = defect
		return defect, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &added, updated, nil
}

// RemoveDefect deletes a defect from an in-progress sheet.
func (s *InspectionService) RemoveDefect(ctx context.Context, id, defectID string, actor *models.User) (*models.InspectionSheet, error) {
	return s.mutate(ctx, id, actor, models.AuditActionDefectRemove, func(sheet *models.InspectionSheet) (interface{}, error) {
		if err := s.lifecycle.RequireEditable(sheet, actor); err != nil {
			return nil, err
		}
		idx := sheet.DefectIndex(defectID)
		var removed *models.Defect
		if idx >= 0 {
			d := sheet.Defects[idx]
			removed = &d
		}
		if err := s.ledger.Remove(sheet, defectID); err != nil {
			return nil, err
		}
		return removed, nil
	})
}

// Submit completes the sheet and records the worker signature.
func (s *InspectionService) Submit(ctx context.Context, id string, actor *models.User) (*models.InspectionSheet, error) {
	return s.mutate(ctx, id, actor, models.AuditActionSheetSubmit, func(sheet *models.InspectionSheet) (interface{}, error) {
		return nil, s.lifecycle.Submit(sheet, actor)
	})
}

// Approve signs a completed sheet off.
func (s *InspectionService) Approve(ctx context.Context, id string, req dto.ApproveSheetRequest, actor *models.User) (*models.InspectionSheet, error) {
	return s.mutate(ctx, id, actor, models.AuditActionSheetApprove, func(sheet *models.InspectionSheet) (interface{}, error) {
		if !actor.IsMaster() {
			return nil, forbidden("only a master may approve sheets")
		}
		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
		}
		return nil, s.lifecycle.Approve(sheet, actor, req.Notes)
	})
}

// SetNotes edits master notes while the sheet awaits approval.
func (s *InspectionService) SetNotes(ctx context.Context, id string, req dto.SetNotesRequest, actor *models.User) (*models.InspectionSheet, error) {
	return s.mutate(ctx, id, actor, models.AuditActionSheetNotes, func(sheet *models.InspectionSheet) (interface{}, error) {
		if !actor.IsMaster() {
			return nil, forbidden("only a master may edit notes")
		}
		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notes payload")
		}
		return nil, s.lifecycle.SetNotes(sheet, actor, req.Notes)
	})
}

// Get returns one sheet. Workers only see sheets assigned to them.
func (s *InspectionService) Get(ctx context.Context, id string, actor *models.User) (*models.InspectionSheet, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	sheet, err := s.sheets.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, id)
	}
	if !actor.IsMaster() && sheet.ExecutorID != actor.ID {
		return nil, appErrors.WithDetails(forbidden("sheet is assigned to another worker"), "sheetId", id)
	}
	return sheet, nil
}

// List returns sheets in creation order. A worker's listing is limited to
// their own sheets; asking for another executor is forbidden.
func (s *InspectionService) List(ctx context.Context, query dto.SheetQuery, actor *models.User) ([]models.InspectionSheet, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sheet filter")
	}
	filter := models.SheetFilter{
		ExecutorID: query.ExecutorID,
		ObjectID:   query.ObjectID,
		Status:     models.SheetStatus(query.Status),
	}
	if !actor.IsMaster() {
		if filter.ExecutorID != "" && filter.ExecutorID != actor.ID {
			return nil, forbidden("workers may only list their own sheets")
		}
		filter.ExecutorID = actor.ID
	}
	sheets, err := s.sheets.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sheets")
	}
	return sheets, nil
}

// History returns the audit trail of a sheet, oldest first.
func (s *InspectionService) History(ctx context.Context, id string, actor *models.User) ([]models.AuditLog, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []models.AuditLog{}, nil
	}
	logs, err := s.audit.ListByResource(ctx, models.AuditResourceSheet, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sheet history")
	}
	return logs, nil
}

// Export renders a sheet as a PDF act or a CSV defect register.
func (s *InspectionService) Export(ctx context.Context, id, format string, actor *models.User) (*ExportResult, error) {
	if s.exporter == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled")
	}
	parsed, err := ParseExportFormat(format)
	if err != nil {
		return nil, err
	}
	sheet, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	object, err := s.catalog.ObjectByID(sheet.ObjectID)
	if err != nil {
		return nil, err
	}
	executor, err := s.catalog.UserByID(sheet.ExecutorID)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(ctx, SheetExportInput{Sheet: *sheet, Object: *object, Executor: *executor}, parsed)
}

type sheetStep func(sheet *models.InspectionSheet) (interface{}, error)

// mutate runs step under the sheet lock. step returns an optional audit detail.
func (s *InspectionService) mutate(ctx context.Context, id string, actor *models.User, action string, step sheetStep) (*models.InspectionSheet, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	var (
		before models.InspectionSheet
		detail interface{}
	)
	updated, err := s.sheets.Update(ctx, id, func(sheet *models.InspectionSheet) error {
		before = sheet.Clone()
		d, err := step(sheet)
		detail = d
		return err
	})
	if err != nil {
		err = storeError(err, id)
		s.metrics.RecordTransition(action, outcomeOf(err))
		s.logger.Debug("sheet operation rejected",
			zap.String("sheet_id", id),
			zap.String("action", action),
			zap.String("actor_id", actor.ID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordTransition(action, OutcomeOK)
	s.logger.Info("sheet updated",
		zap.String("sheet_id", id),
		zap.String("action", action),
		zap.String("actor_id", actor.ID),
		zap.String("status", string(updated.Status)),
		zap.Int64("version", updated.Version),
	)
	s.emitAudit(ctx, actor, action, &before, updated, detail)
	return updated, nil
}

func (s *InspectionService) emitAudit(ctx context.Context, actor *models.User, action string, before, after *models.InspectionSheet, detail interface{}) {
	if s.audit == nil || after == nil {
		return
	}
	var oldValues []byte
	if before != nil {
		oldValues, _ = json.Marshal(auditState(before, nil))
	}
	newValues, _ := json.Marshal(auditState(after, detail))
	sheetID := after.ID
	userID := actor.ID
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   models.AuditResourceSheet,
		ResourceID: &sheetID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record sheet audit", zap.String("sheet_id", sheetID), zap.String("action", action), zap.Error(err))
	}
}

func auditState(sheet *models.InspectionSheet, detail interface{}) map[string]interface{} {
	state := map[string]interface{}{
		"status":      sheet.Status,
		"defectCount": len(sheet.Defects),
		"version":     sheet.Version,
	}
	if sheet.MasterNotes != "" {
		state["masterNotes"] = sheet.MasterNotes
	}
	if detail != nil {
		state["detail"] = detail
	}
	return state
}

func storeError(err error, sheetID string) error {
	if errors.Is(err, repository.ErrSheetNotFound) {
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "sheet not found"), "field", "sheetId", "id", sheetID)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update sheet")
}

func referenceError(err error, field, id string) error {
	if errors.Is(err, appErrors.ErrNotFound) {
		return appErrors.Reference(field, id)
	}
	return err
}

func outcomeOf(err error) string {
	if errors.Is(err, appErrors.ErrInternal) {
		return OutcomeError
	}
	return OutcomeRejected
}
