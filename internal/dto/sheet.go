package dto

// CreateSheetRequest issues a sheet to a worker.
type CreateSheetRequest struct {
	ObjectID   string `json:"objectId" validate:"required"`
	ExecutorID string `json:"executorId" validate:"required"`
	// IssuedDate is YYYY-MM-DD; empty means today.
	IssuedDate string `json:"issuedDate" validate:"omitempty,datetime=2006-01-02"`
}

// AddDefectRequest records a defect on an in-progress sheet. Description
// emptiness is reported by the ledger as EMPTY_DESCRIPTION, not here.
type AddDefectRequest struct {
	LocationID  string  `json:"locationId"`
	Description string  `json:"description"`
	Severity    *string `json:"severity" validate:"omitempty,oneof=low medium high"`
}

// ApproveSheetRequest signs a completed sheet off. Omitted notes keep the
// notes already on the sheet.
type ApproveSheetRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=4000"`
}

// SetNotesRequest edits master notes on a completed sheet.
type SetNotesRequest struct {
	Notes string `json:"notes" validate:"max=4000"`
}

// SheetQuery filters sheet listings.
type SheetQuery struct {
	ExecutorID string `form:"executorId"`
	ObjectID   string `form:"objectId"`
	Status     string `form:"status" validate:"omitempty,oneof=issued in_progress completed approved"`
}
