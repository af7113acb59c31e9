package models

import "time"

// SheetStatus captures the lifecycle stage of an inspection sheet.
type SheetStatus string

const (
	SheetStatusIssued     SheetStatus = "issued"
	SheetStatusInProgress SheetStatus = "in_progress"
	SheetStatusCompleted  SheetStatus = "completed"
	SheetStatusApproved   SheetStatus = "approved"
)

// Next returns the only status reachable from s. Approved is terminal.
func (s SheetStatus) Next() (SheetStatus, bool) {
	switch s {
	case SheetStatusIssued:
		return SheetStatusInProgress, true
	case SheetStatusInProgress:
		return SheetStatusCompleted, true
	case SheetStatusCompleted:
		return SheetStatusApproved, true
	default:
		return "", false
	}
}

// Valid reports whether s is a known status.
func (s SheetStatus) Valid() bool {
	switch s {
	case SheetStatusIssued, SheetStatusInProgress, SheetStatusCompleted, SheetStatusApproved:
		return true
	default:
		return false
	}
}

// Severity grades a defect. A nil *Severity means unspecified.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// Defect is an issue recorded at a technical location.
type Defect struct {
	ID           string    `db:"id" json:"id"`
	LocationID   string    `db:"location_id" json:"locationId"`
	LocationName string    `db:"location_name" json:"locationName"`
	Description  string    `db:"description" json:"description"`
	Severity     *Severity `db:"severity" json:"severity,omitempty"`
}

// InspectionSheet is the aggregate root of the workflow.
type InspectionSheet struct {
	ID                 string      `db:"id" json:"id"`
	ObjectID           string      `db:"object_id" json:"objectId"`
	ExecutorID         string      `db:"executor_id" json:"executorId"`
	Status             SheetStatus `db:"status" json:"status"`
	IssuedDate         Date        `db:"issued_date" json:"issuedDate"`
	CompletedDate      *Date       `db:"completed_date" json:"completedDate"`
	WorkerSignature    *string     `db:"worker_signature" json:"workerSignature"`
	MasterAcceptedDate *Date       `db:"master_accepted_date" json:"masterAcceptedDate"`
	MasterSignature    *string     `db:"master_signature" json:"masterSignature"`
	MasterNotes        string      `db:"master_notes" json:"masterNotes"`
	Defects            []Defect    `db:"-" json:"defects"`
	Version            int64       `db:"version" json:"version"`
	CreatedAt          time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updatedAt"`
}

// Clone returns a deep copy so callers never share state with the store.
func (s InspectionSheet) Clone() InspectionSheet {
	out := s
	out.CompletedDate = cloneDate(s.CompletedDate)
	out.MasterAcceptedDate = cloneDate(s.MasterAcceptedDate)
	out.WorkerSignature = cloneString(s.WorkerSignature)
	out.MasterSignature = cloneString(s.MasterSignature)
	out.Defects = make([]Defect, len(s.Defects))
	for i, d := range s.Defects {
		if d.Severity != nil {
			sev := *d.Severity
			d.Severity = &sev
		}
		out.Defects[i] = d
	}
	return out
}

// DefectIndex returns the position of the defect with the given id, or -1.
func (s *InspectionSheet) DefectIndex(id string) int {
	for i := range s.Defects {
		if s.Defects[i].ID == id {
			return i
		}
	}
	return -1
}

// SheetFilter constrains listing queries. Empty fields match everything.
type SheetFilter struct {
	ExecutorID string
	ObjectID   string
	Status     SheetStatus
}

// Matches reports whether the sheet satisfies the filter.
func (f SheetFilter) Matches(s *InspectionSheet) bool {
	if f.ExecutorID != "" && s.ExecutorID != f.ExecutorID {
		return false
	}
	if f.ObjectID != "" && s.ObjectID != f.ObjectID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	return true
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
