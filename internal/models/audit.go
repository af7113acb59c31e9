package models

import (
	"encoding/json"
	"time"
)

// AuditAction constants represent sheet operations recorded in the trail.
const (
	AuditActionSheetCreate  = "SHEET_CREATE"
	AuditActionSheetStart   = "SHEET_START"
	AuditActionDefectAdd    = "DEFECT_ADD"
	AuditActionDefectRemove = "DEFECT_REMOVE"
	AuditActionSheetSubmit  = "SHEET_SUBMIT"
	AuditActionSheetNotes   = "SHEET_NOTES"
	AuditActionSheetApprove = "SHEET_APPROVE"
)

// AuditResourceSheet is the resource name used for sheet audit entries.
const AuditResourceSheet = "inspection_sheet"

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	UserID     *string         `db:"user_id" json:"userId,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  json.RawMessage `db:"old_values" json:"oldValues,omitempty"`
	NewValues  json.RawMessage `db:"new_values" json:"newValues,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}
