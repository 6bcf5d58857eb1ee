package labour

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepository implements the engine's persistence against PostgreSQL. All
// transition writes run inside the caller's transaction so the row lock taken
// by GetForUpdate serializes concurrent operators on the same assignment.
type PGRepository struct{}

func NewRepository() *PGRepository {
	return &PGRepository{}
}

const assignmentColumns = `id, shipment_id, labourer_id, status::text,
    station_expense, bility_expense, station_labour, cart_labour,
    total_expenses, collected_amount,
    assigned_date, delivered_date, settled_date, due_date, notes,
    created_at, updated_at`

// GetForUpdate loads one assignment and locks its row for the duration of the
// transaction.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM labour_assignments WHERE id = $1 FOR UPDATE`, assignmentColumns)

	a, err := scanAssignment(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, ErrNotFound
		}
		return Assignment{}, wrapConflict(fmt.Errorf("labour: load assignment: %w", err))
	}
	return a, nil
}

// SaveTransition writes the status and money fields of a previously locked
// assignment. Status and money always move together; a failed write leaves
// the row untouched because the surrounding transaction rolls back.
func (r *PGRepository) SaveTransition(ctx context.Context, tx pgx.Tx, a Assignment) error {
	const updateSQL = `
UPDATE labour_assignments
SET status = $2,
    station_expense = $3,
    bility_expense = $4,
    station_labour = $5,
    cart_labour = $6,
    total_expenses = $7,
    collected_amount = $8,
    delivered_date = $9,
    settled_date = $10,
    notes = $11,
    updated_at = now()
WHERE id = $1
`

	tag, err := tx.Exec(ctx, updateSQL,
		a.ID,
		string(a.Status),
		a.StationExpense,
		a.BilityExpense,
		a.StationLabour,
		a.CartLabour,
		a.TotalExpenses,
		a.CollectedAmount,
		a.DeliveredDate,
		a.SettledDate,
		a.Notes,
	)
	if err != nil {
		return wrapConflict(fmt.Errorf("labour: save transition: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertCorrection appends the audit record for a collected-amount revision.
func (r *PGRepository) InsertCorrection(ctx context.Context, tx pgx.Tx, c Correction) error {
	const insertSQL = `
INSERT INTO assignment_corrections (assignment_id, old_amount, new_amount, reason)
VALUES ($1, $2, $3, $4)
`

	if _, err := tx.Exec(ctx, insertSQL, c.AssignmentID, c.OldAmount, c.NewAmount, c.Reason); err != nil {
		return fmt.Errorf("labour: insert correction: %w", err)
	}
	return nil
}

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(
		&a.ID,
		&a.ShipmentID,
		&a.LabourerID,
		&a.Status,
		&a.StationExpense,
		&a.BilityExpense,
		&a.StationLabour,
		&a.CartLabour,
		&a.TotalExpenses,
		&a.CollectedAmount,
		&a.AssignedDate,
		&a.DeliveredDate,
		&a.SettledDate,
		&a.DueDate,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return Assignment{}, err
	}
	return a, nil
}

// wrapConflict converts serialization and lock failures into ErrConflict so
// callers retry against fresh state instead of stale data.
func wrapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return ErrConflict
		}
	}
	return err
}
