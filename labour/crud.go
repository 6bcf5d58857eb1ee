package labour

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateAssignment signals the shipment already has an active
// assignment; a shipment is dispatched to one labour person at a time.
var ErrDuplicateAssignment = errors.New("labour: shipment already has an active assignment")

type CreateParams struct {
	ShipmentID string
	LabourerID string
	DueDate    *time.Time
	Notes      *string
}

type ListFilters struct {
	Status     Status
	LabourerID string
	ActiveOnly bool
	Page       int
	PageSize   int
}

// CRUDService creates and lists assignments. Transitions live on the Engine.
type CRUDService struct {
	pool        *pgxpool.Pool
	events      EventWriter
	outbox      OutboxWriter
	idGenerator func() string
	now         func() time.Time
}

func NewCRUDService(pool *pgxpool.Pool) *CRUDService {
	return &CRUDService{
		pool:        pool,
		events:      PGEventStore{},
		outbox:      PGOutbox{},
		idGenerator: func() string { return uuid.NewString() },
		now:         time.Now,
	}
}

func (s *CRUDService) WithIDGenerator(gen func() string) *CRUDService {
	s.idGenerator = gen
	return s
}

func (s *CRUDService) WithClock(now func() time.Time) *CRUDService {
	s.now = now
	return s
}

// Create dispatches a shipment to a labour person. The assignment starts in
// assigned status with zeroed money fields.
func (s *CRUDService) Create(ctx context.Context, params CreateParams) (Assignment, error) {
	if params.ShipmentID == "" {
		return Assignment{}, &ValidationError{Msg: "shipment id required"}
	}
	if params.LabourerID == "" {
		return Assignment{}, &ValidationError{Msg: "labourer id required"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Assignment{}, fmt.Errorf("labour: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var shipmentExists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shipments WHERE id = $1)`, params.ShipmentID).Scan(&shipmentExists); err != nil {
		return Assignment{}, fmt.Errorf("labour: ensure shipment: %w", err)
	}
	if !shipmentExists {
		return Assignment{}, &ValidationError{Msg: fmt.Sprintf("shipment %s not found", params.ShipmentID)}
	}

	insertSQL := fmt.Sprintf(`
        INSERT INTO labour_assignments (id, shipment_id, labourer_id, status, assigned_date, due_date, notes)
        VALUES ($1, $2, $3, 'assigned', $4, $5, $6)
        RETURNING %s
    `, assignmentColumns)

	a, err := scanAssignment(tx.QueryRow(ctx, insertSQL,
		s.idGenerator(),
		params.ShipmentID,
		params.LabourerID,
		s.now(),
		params.DueDate,
		params.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Assignment{}, ErrDuplicateAssignment
		}
		return Assignment{}, fmt.Errorf("labour: insert assignment: %w", err)
	}

	payload := map[string]any{
		"assignment_id": a.ID,
		"shipment_id":   a.ShipmentID,
		"labourer_id":   a.LabourerID,
		"status":        string(a.Status),
	}
	if err := s.events.Append(ctx, tx, a.ID, "ASSIGNMENT_CREATED", payload); err != nil {
		return Assignment{}, err
	}
	if err := s.outbox.Enqueue(ctx, tx, "assignment.created", payload); err != nil {
		return Assignment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Assignment{}, fmt.Errorf("labour: commit create: %w", err)
	}
	return a, nil
}

// Get returns one assignment by identifier.
func (s *CRUDService) Get(ctx context.Context, id string) (Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM labour_assignments WHERE id = $1`, assignmentColumns)

	a, err := scanAssignment(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, ErrNotFound
		}
		return Assignment{}, fmt.Errorf("labour: get assignment: %w", err)
	}
	return a, nil
}

// List returns assignments matching the filters, newest first. ActiveOnly
// excludes settled and cancelled rows, which are retired but never deleted.
func (s *CRUDService) List(ctx context.Context, filters ListFilters) ([]Assignment, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	where := "WHERE 1=1"
	args := []any{}
	if filters.Status != "" {
		args = append(args, string(filters.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.LabourerID != "" {
		args = append(args, filters.LabourerID)
		where += fmt.Sprintf(" AND labourer_id = $%d", len(args))
	}
	if filters.ActiveOnly {
		where += " AND status NOT IN ('settled', 'cancelled')"
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM labour_assignments %s`, where)
	var total int
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("labour: count assignments: %w", err)
	}

	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM labour_assignments %s ORDER BY assigned_date DESC LIMIT $%d OFFSET $%d`,
		assignmentColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("labour: list assignments: %w", err)
	}
	defer rows.Close()

	out := []Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("labour: scan assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("labour: iterate assignments: %w", err)
	}
	return out, total, nil
}

// Corrections returns the audit trail of collected-amount revisions for one
// assignment, oldest first.
func (s *CRUDService) Corrections(ctx context.Context, assignmentID string) ([]Correction, error) {
	const query = `
        SELECT id, assignment_id, old_amount, new_amount, reason, created_at
        FROM assignment_corrections
        WHERE assignment_id = $1
        ORDER BY created_at ASC
    `

	rows, err := s.pool.Query(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("labour: list corrections: %w", err)
	}
	defer rows.Close()

	out := []Correction{}
	for rows.Next() {
		var c Correction
		if err := rows.Scan(&c.ID, &c.AssignmentID, &c.OldAmount, &c.NewAmount, &c.Reason, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("labour: scan correction: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("labour: iterate corrections: %w", err)
	}
	return out, nil
}
