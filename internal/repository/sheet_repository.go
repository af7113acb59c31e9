package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/inspection-api/internal/models"
)

const sheetColumns = `id, object_id, executor_id, status, issued_date, completed_date, worker_signature,
       master_accepted_date, master_signature, master_notes, version, created_at, updated_at`

const defectColumns = `id, sheet_id, position, location_id, location_name, description, severity`

type defectRow struct {
	SheetID  string `db:"sheet_id"`
	Position int    `db:"position"`
	models.Defect
}

// SheetRepository persists inspection sheets in PostgreSQL. Mutations lock the
// sheet row with SELECT ... FOR UPDATE so writers of the same sheet serialize.
type SheetRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSheetRepository constructs the repository.
func NewSheetRepository(db *sqlx.DB) *SheetRepository {
	return &SheetRepository{db: db, now: time.Now}
}

// Create inserts a sheet row and its defects.
func (r *SheetRepository) Create(ctx context.Context, sheet *models.InspectionSheet) error {
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

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create sheet: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO inspection_sheets
	(id, object_id, executor_id, status, issued_date, completed_date, worker_signature, master_accepted_date, master_signature, master_notes, version, created_at, updated_at)
	VALUES (:id, :object_id, :executor_id, :status, :issued_date, :completed_date, :worker_signature, :master_accepted_date, :master_signature, :master_notes, :version, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := insertDefects(ctx, tx, sheet.ID, sheet.Defects); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create sheet: %w", err)
	}
	return nil
}

// GetByID loads a sheet with its defects.
func (r *SheetRepository) GetByID(ctx context.Context, id string) (*models.InspectionSheet, error) {
	var sheet models.InspectionSheet
	query := fmt.Sprintf(`SELECT %s FROM inspection_sheets WHERE id = $1`, sheetColumns)
	if err := r.db.GetContext(ctx, &sheet, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("get sheet: %w", err)
	}
	defects, err := r.loadDefects(ctx, r.db, []string{id})
	if err != nil {
		return nil, err
	}
	sheet.Defects = defects[id]
	if sheet.Defects == nil {
		sheet.Defects = []models.Defect{}
	}
	return &sheet, nil
}

// List returns matching sheets ordered by creation time.
func (r *SheetRepository) List(ctx context.Context, filter models.SheetFilter) ([]models.InspectionSheet, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 3)
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM inspection_sheets`, sheetColumns))

	conditions := make([]string, 0, 3)
	if filter.ExecutorID != "" {
		args = append(args, filter.ExecutorID)
		conditions = append(conditions, fmt.Sprintf("executor_id = $%d", len(args)))
	}
	if filter.ObjectID != "" {
		args = append(args, filter.ObjectID)
		conditions = append(conditions, fmt.Sprintf("object_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at ASC, id ASC")

	var sheets []models.InspectionSheet
	if err := r.db.SelectContext(ctx, &sheets, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	if len(sheets) == 0 {
		return []models.InspectionSheet{}, nil
	}

	ids := make([]string, len(sheets))
	for i := range sheets {
		ids[i] = sheets[i].ID
	}
	defects, err := r.loadDefects(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range sheets {
		sheets[i].Defects = defects[sheets[i].ID]
		if sheets[i].Defects == nil {
			sheets[i].Defects = []models.Defect{}
		}
	}
	return sheets, nil
}

// Update runs fn against the locked row inside a transaction. The sheet row
// and its defects are rewritten only when fn succeeds.
func (r *SheetRepository) Update(ctx context.Context, id string, fn SheetMutation) (*models.InspectionSheet, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update sheet: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current models.InspectionSheet
	query := fmt.Sprintf(`SELECT %s FROM inspection_sheets WHERE id = $1 FOR UPDATE`, sheetColumns)
	if err := tx.GetContext(ctx, &current, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("lock sheet: %w", err)
	}
	defects, err := r.loadDefects(ctx, tx, []string{id})
	if err != nil {
		return nil, err
	}
	current.Defects = defects[id]
	if current.Defects == nil {
		current.Defects = []models.Defect{}
	}

	working := current.Clone()
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.ID = current.ID
	working.Version = current.Version + 1
	working.UpdatedAt = r.now().UTC()

	const update = `UPDATE inspection_sheets SET
	status = :status, completed_date = :completed_date, worker_signature = :worker_signature,
	master_accepted_date = :master_accepted_date, master_signature = :master_signature,
	master_notes = :master_notes, version = :version, updated_at = :updated_at
	WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, update, &working); err != nil {
		return nil, fmt.Errorf("update sheet: %w", err)
	}
	if !sameDefects(current.Defects, working.Defects) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_defects WHERE sheet_id = $1`, id); err != nil {
			return nil, fmt.Errorf("reset sheet defects: %w", err)
		}
		if err := insertDefects(ctx, tx, id, working.Defects); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update sheet: %w", err)
	}
	return &working, nil
}

func (r *SheetRepository) loadDefects(ctx context.Context, q sqlx.QueryerContext, sheetIDs []string) (map[string][]models.Defect, error) {
	query := fmt.Sprintf(`SELECT %s FROM sheet_defects WHERE sheet_id = ANY($1) ORDER BY sheet_id, position`, defectColumns)
	var rows []defectRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, pq.Array(sheetIDs)); err != nil {
		return nil, fmt.Errorf("load sheet defects: %w", err)
	}
	result := make(map[string][]models.Defect, len(sheetIDs))
	for _, row := range rows {
		result[row.SheetID] = append(result[row.SheetID], row.Defect)
	}
	return result, nil
}

func insertDefects(ctx context.Context, tx *sqlx.Tx, sheetID string, defects []models.Defect) error {
	const query = `INSERT INTO sheet_defects (id, sheet_id, position, location_id, location_name, description, severity)
	VALUES (:id, :sheet_id, :position, :location_id, :location_name, :description, :severity)`
	for i, d := range defects {
		row := defectRow{SheetID: sheetID, Position: i, Defect: d}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("insert defect %s: %w", d.ID, err)
		}
	}
	return nil
}

func sameDefects(a, b []models.Defect) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
