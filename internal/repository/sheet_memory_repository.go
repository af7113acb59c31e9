package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/inspection-api/internal/models"
)

type sheetSlot struct {
	mu    sync.Mutex
	sheet models.InspectionSheet
}

// MemorySheetRepository keeps sheets in process memory. Each sheet has its own
// lock: mutations of one sheet are serialized, different sheets never contend
// beyond the short arena lookup.
type MemorySheetRepository struct {
	mu    sync.RWMutex
	slots map[string]*sheetSlot
	order []string
	now   func() time.Time
}

// NewMemorySheetRepository constructs an empty arena.
func NewMemorySheetRepository() *MemorySheetRepository {
	return &MemorySheetRepository{
		slots: make(map[string]*sheetSlot),
		now:   time.Now,
	}
}

// Create stores a new sheet.
func (r *MemorySheetRepository) Create(ctx context.Context, sheet *models.InspectionSheet) error {
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	now := r.now().UTC()
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = now
	}
	sheet.UpdatedAt = now
	if sheet.Version == 0 {
		sheet.Version = 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.slots[sheet.ID]; exists {
		return fmt.Errorf("create sheet: duplicate id %s", sheet.ID)
	}
	r.slots[sheet.ID] = &sheetSlot{sheet: sheet.Clone()}
	r.order = append(r.order, sheet.ID)
	return nil
}

// GetByID returns a snapshot of the sheet.
func (r *MemorySheetRepository) GetByID(ctx context.Context, id string) (*models.InspectionSheet, error) {
	slot := r.slot(id)
	if slot == nil {
		return nil, ErrSheetNotFound
	}
	slot.mu.Lock()
	snapshot := slot.sheet.Clone()
	slot.mu.Unlock()
	return &snapshot, nil
}

// List returns snapshots of matching sheets in creation order.
func (r *MemorySheetRepository) List(ctx context.Context, filter models.SheetFilter) ([]models.InspectionSheet, error) {
	r.mu.RLock()
	slots := make([]*sheetSlot, 0, len(r.order))
	for _, id := range r.order {
		slots = append(slots, r.slots[id])
	}
	r.mu.RUnlock()

	result := make([]models.InspectionSheet, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		if filter.Matches(&slot.sheet) {
			result = append(result, slot.sheet.Clone())
		}
		slot.mu.Unlock()
	}
	return result, nil
}

// Update applies fn to a copy of the sheet under the sheet lock and commits
// the copy only when fn succeeds.
func (r *MemorySheetRepository) Update(ctx context.Context, id string, fn SheetMutation) (*models.InspectionSheet, error) {
	slot := r.slot(id)
	if slot == nil {
		return nil, ErrSheetNotFound
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	working := slot.sheet.Clone()
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.Version = slot.sheet.Version + 1
	working.UpdatedAt = r.now().UTC()
	slot.sheet = working

	snapshot := working.Clone()
	return &snapshot, nil
}

func (r *MemorySheetRepository) slot(id string) *sheetSlot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slots[id]
}
