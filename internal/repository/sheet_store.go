package repository

import (
	"context"
	"errors"

	"github.com/noah-isme/inspection-api/internal/models"
)

// ErrSheetNotFound is returned by sheet stores for unknown ids.
var ErrSheetNotFound = errors.New("inspection sheet not found")

// SheetMutation edits a private copy of a sheet. Returning an error discards
// every change made to the copy.
type SheetMutation func(sheet *models.InspectionSheet) error

// SheetStore is implemented by MemorySheetRepository and SheetRepository.
type SheetStore interface {
	Create(ctx context.Context, sheet *models.InspectionSheet) error
	GetByID(ctx context.Context, id string) (*models.InspectionSheet, error)
	List(ctx context.Context, filter models.SheetFilter) ([]models.InspectionSheet, error)
	// Update runs fn on a copy while holding the sheet's lock and stores the
	// copy only when fn returns nil.
	Update(ctx context.Context, id string, fn SheetMutation) (*models.InspectionSheet, error)
}

// AuditStore is implemented by AuditRepository and MemoryAuditRepository.
type AuditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	ListByResource(ctx context.Context, resource, resourceID string) ([]models.AuditLog, error)
}

var (
	_ SheetStore = (*MemorySheetRepository)(nil)
	_ SheetStore = (*SheetRepository)(nil)
	_ AuditStore = (*MemoryAuditRepository)(nil)
	_ AuditStore = (*AuditRepository)(nil)
)
