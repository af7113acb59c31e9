package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/inspection-api/internal/models"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("d-%d", n)
	}
}

func TestDefectLedgerAdd(t *testing.T) {
	ledger := NewDefectLedger(sequentialIDs())
	sheet := models.InspectionSheet{ID: "s", ObjectID: lineObject.ID, Defects: []models.Defect{}}
	medium := models.SeverityMedium

	first, err := ledger.Add(&sheet, lineObject, "1-1", "  cracks  ", &medium)
	require.NoError(t, err)
	assert.Equal(t, "d-1", first.ID)
	assert.Equal(t, "Pole 1", first.LocationName)
	assert.Equal(t, "cracks", first.Description)
	require.NotNil(t, first.Severity)
	assert.Equal(t, models.SeverityMedium, *first.Severity)

	second, err := ledger.Add(&sheet, lineObject, "1-2", "wire sag", nil)
	require.NoError(t, err)
	assert.Nil(t, second.Severity)

	require.Len(t, sheet.Defects, 2)
	assert.Equal(t, []string{"d-1", "d-2"}, []string{sheet.Defects[0].ID, sheet.Defects[1].ID})
}

func TestDefectLedgerAddRejects(t *testing.T) {
	ledger := NewDefectLedger(sequentialIDs())
	sheet := models.InspectionSheet{ID: "s", Defects: []models.Defect{}}
	bogus := models.Severity("critical")

	_, err := ledger.Add(&sheet, lineObject, "2-1", "cracks", nil)
	assert.ErrorIs(t, err, appErrors.ErrInvalidLocation)

	_, err = ledger.Add(&sheet, lineObject, "", "cracks", nil)
	assert.ErrorIs(t, err, appErrors.ErrInvalidLocation)

	_, err = ledger.Add(&sheet, lineObject, "1-1", " \t", nil)
	assert.ErrorIs(t, err, appErrors.ErrEmptyDescription)

	_, err = ledger.Add(&sheet, lineObject, "1-1", "cracks", &bogus)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.Empty(t, sheet.Defects)
}

func TestDefectLedgerRoundTrip(t *testing.T) {
	ledger := NewDefectLedger(sequentialIDs())
	sheet := models.InspectionSheet{ID: "s", Defects: []models.Defect{}}
	_, err := ledger.Add(&sheet, lineObject, "1-1", "a", nil)
	require.NoError(t, err)
	_, err = ledger.Add(&sheet, lineObject, "1-2", "b", nil)
	require.NoError(t, err)
	before := sheet.Clone().Defects

	added, err := ledger.Add(&sheet, lineObject, "1-1", "c", nil)
	require.NoError(t, err)
	require.NoError(t, ledger.Remove(&sheet, added.ID))
	assert.Equal(t, before, sheet.Defects)

	require.NoError(t, ledger.Remove(&sheet, "d-1"))
	assert.Equal(t, []models.Defect{before[1]}, sheet.Defects)

	err = ledger.Remove(&sheet, "d-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Len(t, sheet.Defects, 1)
}
