package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSheetStatusNextIsLinear(t *testing.T) {
	order := []SheetStatus{SheetStatusIssued, SheetStatusInProgress, SheetStatusCompleted, SheetStatusApproved}
	for i := 0; i < len(order)-1; i++ {
		next, ok := order[i].Next()
		require.True(t, ok)
		require.Equal(t, order[i+1], next)
	}
	_, ok := SheetStatusApproved.Next()
	require.False(t, ok)
	_, ok = SheetStatus("rejected").Next()
	require.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	sev := SeverityHigh
	sig := "Ivanov"
	done := NewDate(time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC))
	sheet := InspectionSheet{
		ID:              "s-1",
		WorkerSignature: &sig,
		CompletedDate:   &done,
		Defects:         []Defect{{ID: "d-1", Severity: &sev}},
	}

	clone := sheet.Clone()
	*clone.WorkerSignature = "Petrov"
	*clone.Defects[0].Severity = SeverityLow
	clone.Defects[0].Description = "changed"
	clone.CompletedDate.Time = clone.CompletedDate.AddDate(0, 0, 1)

	require.Equal(t, "Ivanov", *sheet.WorkerSignature)
	require.Equal(t, SeverityHigh, *sheet.Defects[0].Severity)
	require.Empty(t, sheet.Defects[0].Description)
	require.Equal(t, "2024-03-01", sheet.CompletedDate.String())
}

func TestDateJSON(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC))
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"2024-03-01"`, string(raw))

	var back Date
	require.NoError(t, json.Unmarshal(raw, &back))
	require.True(t, back.Equal(d.Time))
	require.Error(t, json.Unmarshal([]byte(`"01.03.2024"`), &back))
}

func TestSheetFilterMatches(t *testing.T) {
	sheet := &InspectionSheet{ObjectID: "1", ExecutorID: "2", Status: SheetStatusIssued}
	require.True(t, SheetFilter{}.Matches(sheet))
	require.True(t, SheetFilter{ExecutorID: "2", ObjectID: "1"}.Matches(sheet))
	require.False(t, SheetFilter{ExecutorID: "3"}.Matches(sheet))
	require.False(t, SheetFilter{Status: SheetStatusApproved}.Matches(sheet))
}
