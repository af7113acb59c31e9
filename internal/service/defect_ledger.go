package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/inspection-api/internal/models"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
)

// DefectLedger appends and removes defects on a sheet. It does not check the
// sheet status or the actor; callers do that through SheetLifecycle.
type DefectLedger struct {
	newID func() string
}

// NewDefectLedger builds a ledger. A nil generator falls back to UUIDs.
func NewDefectLedger(newID func() string) DefectLedger {
	if newID == nil {
		newID = uuid.NewString
	}
	return DefectLedger{newID: newID}
}

// Add validates the defect against the sheet's object and appends it.
func (l DefectLedger) Add(sheet *models.InspectionSheet, object models.Object, locationID, description string, severity *models.Severity) (models.Defect, error) {
	location, ok := object.Location(strings.TrimSpace(locationID))
	if !ok {
		return models.Defect{}, appErrors.WithDetails(appErrors.ErrInvalidLocation, "sheetId", sheet.ID, "field", "locationId", "locationId", locationID)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return models.Defect{}, appErrors.WithDetails(appErrors.ErrEmptyDescription, "sheetId", sheet.ID, "field", "description")
	}
	if severity != nil && !severity.Valid() {
		return models.Defect{}, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "unknown severity"), "field", "severity", "value", string(*severity))
	}

	defect := models.Defect{
		ID:           l.newID(),
		LocationID:   location.ID,
		LocationName: location.Name,
		Description:  description,
	}
	if severity != nil {
		sev := *severity
		defect.Severity = &sev
	}
	sheet.Defects = append(sheet.Defects, defect)
	return defect, nil
}

// Remove deletes the defect with defectID keeping the order of the rest.
func (l DefectLedger) Remove(sheet *models.InspectionSheet, defectID string) error {
	idx := sheet.DefectIndex(defectID)
	if idx < 0 {
		return appErrors.WithDetails(appErrors.Clone(appErrors.ErrNotFound, "defect not found"), "sheetId", sheet.ID, "field", "defectId", "id", defectID)
	}
	rest := make([]models.Defect, 0, len(sheet.Defects)-1)
	rest = append(rest, sheet.Defects[:idx]...)
	sheet.Defects = append(rest, sheet.Defects[idx+1:]...)
	return nil
}
