package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/inspection-api/internal/dto"
	"github.com/noah-isme/inspection-api/internal/models"
	"github.com/noah-isme/inspection-api/internal/repository"
	appErrors "github.com/noah-isme/inspection-api/pkg/errors"
)

var (
	master  = &models.User{ID: "1", Name: "Петров П.П.", Role: models.RoleMaster}
	ivanov  = &models.User{ID: "2", Name: "Иванов И.И.", Role: models.RoleWorker}
	sidorov = &models.User{ID: "3", Name: "Сидоров С.С.", Role: models.RoleWorker}
)

type failingAudit struct {
	calls int
}

func (f *failingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.calls++
	return errors.New("audit store down")
}

func (f *failingAudit) ListByResource(ctx context.Context, resource, resourceID string) ([]models.AuditLog, error) {
	return nil, errors.New("audit store down")
}

type recordingExporter struct {
	input  SheetExportInput
	format ExportFormat
}

func (r *recordingExporter) Render(ctx context.Context, in SheetExportInput, format ExportFormat) (*ExportResult, error) {
	r.input = in
	r.format = format
	return &ExportResult{Filename: "x." + string(format), Payload: []byte("ok")}, nil
}

type serviceHarness struct {
	svc     *InspectionService
	sheets  *repository.MemorySheetRepository
	audit   *repository.MemoryAuditRepository
	metrics *MetricsService
}

func newServiceHarness(t *testing.T, opts ...InspectionServiceOption) serviceHarness {
	t.Helper()
	h := serviceHarness{
		sheets:  repository.NewMemorySheetRepository(),
		audit:   repository.NewMemoryAuditRepository(),
		metrics: NewMetricsService(),
	}
	base := []InspectionServiceOption{
		WithClock(func() time.Time { return lifecycleNow }),
		WithIDGenerator(sequentialIDs()),
		WithMetrics(h.metrics),
	}
	h.svc = NewInspectionService(h.sheets, newDefaultCatalog(t), h.audit, nil, nil, append(base, opts...)...)
	return h
}

func (h serviceHarness) issue(t *testing.T, executor *models.User) *models.InspectionSheet {
	t.Helper()
	sheet, err := h.svc.Create(context.Background(), dto.CreateSheetRequest{ObjectID: "1", ExecutorID: executor.ID}, master)
	require.NoError(t, err)
	return sheet
}

func (h serviceHarness) inProgress(t *testing.T) *models.InspectionSheet {
	t.Helper()
	sheet := h.issue(t, ivanov)
	sheet, err := h.svc.Start(context.Background(), sheet.ID, ivanov)
	require.NoError(t, err)
	return sheet
}

func transitionCount(t *testing.T, m *MetricsService, action, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "inspection_sheet_operations_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["action"] == action && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestInspectionWorkflowScenario(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)

	sheet := h.issue(t, ivanov)
	assert.Equal(t, models.SheetStatusIssued, sheet.Status)
	assert.Equal(t, "2024-05-14", sheet.IssuedDate.String())

	sheet, err := h.svc.Start(ctx, sheet.ID, ivanov)
	require.NoError(t, err)
	assert.Equal(t, models.SheetStatusInProgress, sheet.Status)

	severity := "medium"
	defect, sheet, err := h.svc.AddDefect(ctx, sheet.ID, dto.AddDefectRequest{LocationID: "1-1", Description: "cracks", Severity: &severity}, ivanov)
	require.NoError(t, err)
	assert.Equal(t, "Опора №1", defect.LocationName)
	require.Len(t, sheet.Defects, 1)
	assert.Equal(t, *defect, sheet.Defects[0])

	sheet, err = h.svc.Submit(ctx, sheet.ID, ivanov)
	require.NoError(t, err)
	assert.Equal(t, models.SheetStatusCompleted, sheet.Status)
	assert.Equal(t, "2024-05-14", sheet.CompletedDate.String())
	assert.Equal(t, "Иванов И.И.", *sheet.WorkerSignature)

	notes := "checked"
	sheet, err = h.svc.Approve(ctx, sheet.ID, dto.ApproveSheetRequest{Notes: &notes}, master)
	require.NoError(t, err)
	assert.Equal(t, models.SheetStatusApproved, sheet.Status)
	assert.Equal(t, "Петров П.П.", *sheet.MasterSignature)
	assert.Equal(t, "checked", sheet.MasterNotes)

	_, err = h.svc.Approve(ctx, sheet.ID, dto.ApproveSheetRequest{Notes: &notes}, master)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	history, err := h.svc.History(ctx, sheet.ID, master)
	require.NoError(t, err)
	actions := make([]string, len(history))
	for i, entry := range history {
		actions[i] = entry.Action
	}
	assert.Equal(t, []string{
		models.AuditActionSheetCreate,
		models.AuditActionSheetStart,
		models.AuditActionDefectAdd,
		models.AuditActionSheetSubmit,
		models.AuditActionSheetApprove,
	}, actions)

	assert.Equal(t, float64(1), transitionCount(t, h.metrics, models.AuditActionSheetApprove, OutcomeOK))
	assert.Equal(t, float64(1), transitionCount(t, h.metrics, models.AuditActionSheetApprove, OutcomeRejected))
}

func TestCreateSheetErrors(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)

	_, err := h.svc.Create(ctx, dto.CreateSheetRequest{ObjectID: "1", ExecutorID: "2"}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = h.svc.Create(ctx, dto.CreateSheetRequest{ObjectID: "404", ExecutorID: "2"}, ivanov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = h.svc.Create(ctx, dto.CreateSheetRequest{ObjectID: "404", ExecutorID: "2"}, master)
	require.ErrorIs(t, err, appErrors.ErrInvalidReference)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, "objectId", appErrors.FromError(err).Details["field"])

	_, err = h.svc.Create(ctx, dto.CreateSheetRequest{ObjectID: "1", ExecutorID: "404"}, master)
	require.ErrorIs(t, err, appErrors.ErrInvalidReference)
	assert.Equal(t, "executorId", appErrors.FromError(err).Details["field"])

	_, err = h.svc.Create(ctx, dto.CreateSheetRequest{ObjectID: "1", ExecutorID: "1"}, master)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = h.svc.Create(ctx, dto.CreateSheetRequest{ObjectID: "1", ExecutorID: "2", IssuedDate: "14.05.2024"}, master)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = h.svc.Create(ctx, dto.CreateSheetRequest{ExecutorID: "2"}, master)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	sheets, err := h.sheets.List(ctx, models.SheetFilter{})
	require.NoError(t, err)
	assert.Empty(t, sheets)
}

func TestCreateSheetWithIssuedDate(t *testing.T) {
	h := newServiceHarness(t)
	sheet, err := h.svc.Create(context.Background(), dto.CreateSheetRequest{ObjectID: "2", ExecutorID: "3", IssuedDate: "2024-05-01"}, master)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", sheet.IssuedDate.String())
	assert.Equal(t, "3", sheet.ExecutorID)
}

func TestDefectMutationOutsideInProgress(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)

	sheet := h.inProgress(t)
	_, _, err := h.svc.AddDefect(ctx, sheet.ID, dto.AddDefectRequest{LocationID: "1-2", Description: "sag"}, ivanov)
	require.NoError(t, err)

	assertFrozen := func(id string) {
		t.Helper()
		before, err := h.svc.Get(ctx, id, master)
		require.NoError(t, err)

		_, _, err = h.svc.AddDefect(ctx, id, dto.AddDefectRequest{LocationID: "1-1", Description: "late"}, ivanov)
		assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
		if len(before.Defects) > 0 {
			_, err = h.svc.RemoveDefect(ctx, id, before.Defects[0].ID, ivanov)
			assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
		}

		after, err := h.svc.Get(ctx, id, master)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	}

	issued := h.issue(t, ivanov)
	assertFrozen(issued.ID)

	sheet, err = h.svc.Submit(ctx, sheet.ID, ivanov)
	require.NoError(t, err)
	assertFrozen(sheet.ID)

	_, err = h.svc.Approve(ctx, sheet.ID, dto.ApproveSheetRequest{}, master)
	require.NoError(t, err)
	assertFrozen(sheet.ID)
}

func TestAddDefectValidationLeavesSheetUntouched(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)
	sheet := h.inProgress(t)

	bad := "critical"
	cases := []struct {
		name string
		req  dto.AddDefectRequest
		kind *appErrors.Error
	}{
		{"foreign location", dto.AddDefectRequest{LocationID: "2-1", Description: "x"}, appErrors.ErrInvalidLocation},
		{"unknown location", dto.AddDefectRequest{LocationID: "nope", Description: "x"}, appErrors.ErrInvalidLocation},
		{"blank description", dto.AddDefectRequest{LocationID: "1-1", Description: "   "}, appErrors.ErrEmptyDescription},
		{"bad severity", dto.AddDefectRequest{LocationID: "1-1", Description: "x", Severity: &bad}, appErrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := h.svc.AddDefect(ctx, sheet.ID, tc.req, ivanov)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	current, err := h.svc.Get(ctx, sheet.ID, ivanov)
	require.NoError(t, err)
	assert.Empty(t, current.Defects)
	assert.Equal(t, sheet.Version, current.Version)
}

func TestAddDefectBlankSeverityIsUnspecified(t *testing.T) {
	h := newServiceHarness(t)
	sheet := h.inProgress(t)
	blank := ""

	defect, _, err := h.svc.AddDefect(context.Background(), sheet.ID, dto.AddDefectRequest{LocationID: "1-1", Description: "x", Severity: &blank}, ivanov)
	require.NoError(t, err)
	assert.Nil(t, defect.Severity)
}

func TestRemoveDefect(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)
	sheet := h.inProgress(t)

	first, _, err := h.svc.AddDefect(ctx, sheet.ID, dto.AddDefectRequest{LocationID: "1-1", Description: "a"}, ivanov)
	require.NoError(t, err)
	_, before, err := h.svc.AddDefect(ctx, sheet.ID, dto.AddDefectRequest{LocationID: "1-2", Description: "b"}, ivanov)
	require.NoError(t, err)

	added, _, err := h.svc.AddDefect(ctx, sheet.ID, dto.AddDefectRequest{LocationID: "1-3", Description: "c"}, ivanov)
	require.NoError(t, err)
	after, err := h.svc.RemoveDefect(ctx, sheet.ID, added.ID, ivanov)
	require.NoError(t, err)
	assert.Equal(t, before.Defects, after.Defects)

	_, err = h.svc.RemoveDefect(ctx, sheet.ID, first.ID, sidorov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = h.svc.RemoveDefect(ctx, sheet.ID, first.ID, ivanov)
	require.NoError(t, err)
	_, err = h.svc.RemoveDefect(ctx, sheet.ID, first.ID, ivanov)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = h.svc.RemoveDefect(ctx, "missing", first.ID, ivanov)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestOnlyExecutorDrivesSheet(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)
	sheet := h.issue(t, ivanov)

	_, err := h.svc.Start(ctx, sheet.ID, sidorov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = h.svc.Start(ctx, sheet.ID, master)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	sheet = h.inProgress(t)
	_, err = h.svc.Submit(ctx, sheet.ID, sidorov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = h.svc.Submit(ctx, sheet.ID, ivanov)
	require.NoError(t, err)
	_, err = h.svc.Approve(ctx, sheet.ID, dto.ApproveSheetRequest{}, ivanov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = h.svc.SetNotes(ctx, sheet.ID, dto.SetNotesRequest{Notes: "x"}, ivanov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = h.svc.Start(ctx, sheet.ID, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestSubmitTwiceFails(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)
	sheet := h.inProgress(t)

	submitted, err := h.svc.Submit(ctx, sheet.ID, ivanov)
	require.NoError(t, err)

	_, err = h.svc.Submit(ctx, sheet.ID, ivanov)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	current, err := h.svc.Get(ctx, sheet.ID, ivanov)
	require.NoError(t, err)
	assert.Equal(t, submitted.CompletedDate, current.CompletedDate)
	assert.Equal(t, submitted.WorkerSignature, current.WorkerSignature)
}

func TestApproveKeepsNotesWhenOmitted(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)
	sheet := h.inProgress(t)
	_, err := h.svc.Submit(ctx, sheet.ID, ivanov)
	require.NoError(t, err)

	_, err = h.svc.SetNotes(ctx, sheet.ID, dto.SetNotesRequest{Notes: "recheck pole 2"}, master)
	require.NoError(t, err)

	approved, err := h.svc.Approve(ctx, sheet.ID, dto.ApproveSheetRequest{}, master)
	require.NoError(t, err)
	assert.Equal(t, "recheck pole 2", approved.MasterNotes)

	_, err = h.svc.SetNotes(ctx, sheet.ID, dto.SetNotesRequest{Notes: "late"}, master)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}

func TestReadsAreScopedToExecutor(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)
	mine := h.issue(t, ivanov)
	theirs := h.issue(t, sidorov)

	all, err := h.svc.List(ctx, dto.SheetQuery{}, master)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, mine.ID, all[0].ID)

	own, err := h.svc.List(ctx, dto.SheetQuery{}, ivanov)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	_, err = h.svc.List(ctx, dto.SheetQuery{ExecutorID: sidorov.ID}, ivanov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	byObject, err := h.svc.List(ctx, dto.SheetQuery{ObjectID: "2"}, master)
	require.NoError(t, err)
	assert.Empty(t, byObject)

	_, err = h.svc.List(ctx, dto.SheetQuery{Status: "archived"}, master)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = h.svc.Get(ctx, theirs.ID, ivanov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = h.svc.History(ctx, theirs.ID, ivanov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = h.svc.Get(ctx, "missing", master)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = h.svc.List(ctx, dto.SheetQuery{}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestSnapshotsAreDetached(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)
	sheet := h.inProgress(t)
	_, snapshot, err := h.svc.AddDefect(ctx, sheet.ID, dto.AddDefectRequest{LocationID: "1-1", Description: "a"}, ivanov)
	require.NoError(t, err)

	snapshot.Defects[0].Description = "mutated"
	snapshot.Status = models.SheetStatusApproved

	current, err := h.svc.Get(ctx, sheet.ID, ivanov)
	require.NoError(t, err)
	assert.Equal(t, "a", current.Defects[0].Description)
	assert.Equal(t, models.SheetStatusInProgress, current.Status)
}

func TestConcurrentDefectAddsAreNotLost(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t, WithIDGenerator(nil))
	sheet := h.inProgress(t)

	const writers = 40
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := h.svc.AddDefect(ctx, sheet.ID, dto.AddDefectRequest{LocationID: "1-1", Description: fmt.Sprintf("defect %d", i)}, ivanov)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	current, err := h.svc.Get(ctx, sheet.ID, ivanov)
	require.NoError(t, err)
	assert.Len(t, current.Defects, writers)
	assert.Equal(t, sheet.Version+writers, current.Version)
}

func TestConcurrentSubmitSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	h := newServiceHarness(t)
	sheet := h.inProgress(t)

	const racers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Submit(ctx, sheet.ID, ivanov)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, appErrors.ErrInvalidTransition) {
				rejected++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, racers-1, rejected)
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	audit := &failingAudit{}
	svc := NewInspectionService(repository.NewMemorySheetRepository(), newDefaultCatalog(t), audit, nil, nil)

	sheet, err := svc.Create(context.Background(), dto.CreateSheetRequest{ObjectID: "1", ExecutorID: "2"}, master)
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), sheet.ID, ivanov)
	require.NoError(t, err)
	assert.Equal(t, 2, audit.calls)

	_, err = svc.History(context.Background(), sheet.ID, master)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	exporter := &recordingExporter{}
	h := newServiceHarness(t, WithExporter(exporter))
	sheet := h.issue(t, ivanov)

	result, err := h.svc.Export(ctx, sheet.ID, "CSV", ivanov)
	require.NoError(t, err)
	assert.Equal(t, "x.csv", result.Filename)
	assert.Equal(t, ExportFormatCSV, exporter.format)
	assert.Equal(t, "Иванов И.И.", exporter.input.Executor.Name)
	assert.Equal(t, "1", exporter.input.Object.ID)

	_, err = h.svc.Export(ctx, sheet.ID, "docx", master)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = h.svc.Export(ctx, sheet.ID, "", sidorov)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	disabled := newServiceHarness(t)
	_, err = disabled.svc.Export(ctx, sheet.ID, "pdf", master)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
