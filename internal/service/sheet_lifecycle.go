package service

import (
	"time"

	"github.com/noah-isme/inspection-api/internal/models"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
)

// SheetLifecycle owns the status machine of a sheet together with its
// signatures and dates:
//
//	issued -> in_progress -> completed -> approved
//
// Every check runs before any field is touched, so a failed call leaves the
// sheet as it was. Actor checks come before status checks.
type SheetLifecycle struct {
	now func() time.Time
}

// NewSheetLifecycle builds a lifecycle using clock for dates. A nil clock
// falls back to time.Now.
func NewSheetLifecycle(clock func() time.Time) SheetLifecycle {
	if clock == nil {
		clock = time.Now
	}
	return SheetLifecycle{now: clock}
}

// Issue creates a sheet for executor on object. Only masters issue sheets and
// only workers execute them.
func (l SheetLifecycle) Issue(actor *models.User, object models.Object, executor models.User, issuedDate *models.Date) (models.InspectionSheet, error) {
	if err := l.CanIssue(actor); err != nil {
		return models.InspectionSheet{}, err
	}
	if executor.Role != models.RoleWorker {
		return models.InspectionSheet{}, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "executor must be a worker"), "field", "executorId", "id", executor.ID)
	}
	issued := models.NewDate(l.now())
	if issuedDate != nil && !issuedDate.IsZero() {
		issued = *issuedDate
	}
	return models.InspectionSheet{
		ObjectID:   object.ID,
		ExecutorID: executor.ID,
		Status:     models.SheetStatusIssued,
		IssuedDate: issued,
		Defects:    []models.Defect{},
	}, nil
}

// CanIssue reports whether actor may issue sheets at all.
func (l SheetLifecycle) CanIssue(actor *models.User) error {
	if !actor.IsMaster() {
		return forbidden("only a master may issue sheets")
	}
	return nil
}

// Start moves an issued sheet into work.
func (l SheetLifecycle) Start(sheet *models.InspectionSheet, actor *models.User) error {
	if err := requireExecutor(sheet, actor); err != nil {
		return err
	}
	return advance(sheet, models.SheetStatusIssued)
}

// Submit completes the sheet and signs it with the worker's name.
func (l SheetLifecycle) Submit(sheet *models.InspectionSheet, actor *models.User) error {
	if err := requireExecutor(sheet, actor); err != nil {
		return err
	}
	if err := advance(sheet, models.SheetStatusInProgress); err != nil {
		return err
	}
	completed := models.NewDate(l.now())
	signature := actor.Name
	sheet.CompletedDate = &completed
	sheet.WorkerSignature = &signature
	return nil
}

// Approve signs a completed sheet off. nil notes keep whatever SetNotes
// stored; a non-nil value, even empty, replaces it.
func (l SheetLifecycle) Approve(sheet *models.InspectionSheet, actor *models.User, notes *string) error {
	if !actor.IsMaster() {
		return forbidden("only a master may approve sheets")
	}
	if err := advance(sheet, models.SheetStatusCompleted); err != nil {
		return err
	}
	accepted := models.NewDate(l.now())
	signature := actor.Name
	sheet.MasterAcceptedDate = &accepted
	sheet.MasterSignature = &signature
	if notes != nil {
		sheet.MasterNotes = *notes
	}
	return nil
}

// SetNotes edits the master's notes on a completed sheet.
func (l SheetLifecycle) SetNotes(sheet *models.InspectionSheet, actor *models.User, notes string) error {
	if !actor.IsMaster() {
		return forbidden("only a master may edit notes")
	}
	if sheet.Status != models.SheetStatusCompleted {
		return invalidTransition(sheet, "notes")
	}
	sheet.MasterNotes = notes
	return nil
}

// RequireEditable guards defect edits: the executor only, while in progress.
func (l SheetLifecycle) RequireEditable(sheet *models.InspectionSheet, actor *models.User) error {
	if err := requireExecutor(sheet, actor); err != nil {
		return err
	}
	if sheet.Status != models.SheetStatusInProgress {
		return invalidTransition(sheet, "edit defects")
	}
	return nil
}

func requireExecutor(sheet *models.InspectionSheet, actor *models.User) error {
	if actor == nil || actor.ID != sheet.ExecutorID {
		return appErrors.WithDetails(forbidden("only the assigned executor may do this"), "sheetId", sheet.ID)
	}
	return nil
}

func advance(sheet *models.InspectionSheet, from models.SheetStatus) error {
	next, ok := from.Next()
	if !ok || sheet.Status != from {
		return invalidTransition(sheet, string(next))
	}
	sheet.Status = next
	return nil
}

func invalidTransition(sheet *models.InspectionSheet, target string) *appErrors.Error {
	return appErrors.WithDetails(appErrors.ErrInvalidTransition, "sheetId", sheet.ID, "status", string(sheet.Status), "target", target)
}

func forbidden(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrForbidden, message)
}
