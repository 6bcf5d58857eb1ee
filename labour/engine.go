package labour

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository defines the data access required by the engine.
type Repository interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Assignment, error)
	SaveTransition(ctx context.Context, tx pgx.Tx, a Assignment) error
	InsertCorrection(ctx context.Context, tx pgx.Tx, c Correction) error
}

// ShipmentCharges is the read-only shipment collaborator. The engine never
// mutates shipment data.
type ShipmentCharges interface {
	TotalCharges(ctx context.Context, tx pgx.Tx, shipmentID string) (float64, error)
}

// Engine drives the settlement lifecycle of labour assignments. Every
// operation is a single transaction: lock the row, validate the transition,
// write status and money together, append the event, enqueue the outbox
// message. A rejected transition never mutates the record.
type Engine struct {
	pool      TxBeginner
	repo      Repository
	shipments ShipmentCharges
	events    EventWriter
	outbox    OutboxWriter
	now       func() time.Time
}

func NewEngine(pool TxBeginner, repo Repository, shipments ShipmentCharges, events EventWriter, outbox OutboxWriter) *Engine {
	if repo == nil {
		repo = NewRepository()
	}
	if events == nil {
		events = PGEventStore{}
	}
	if outbox == nil {
		outbox = PGOutbox{}
	}
	return &Engine{
		pool:      pool,
		repo:      repo,
		shipments: shipments,
		events:    events,
		outbox:    outbox,
		now:       time.Now,
	}
}

// WithClock overrides the engine clock.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Deliver marks an assigned shipment as physically delivered.
func (e *Engine) Deliver(ctx context.Context, assignmentID string, notes *string) (Assignment, error) {
	if assignmentID == "" {
		return Assignment{}, &ValidationError{Msg: "missing assignment id"}
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return Assignment{}, fmt.Errorf("labour: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := e.repo.GetForUpdate(ctx, tx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	if !canTransition(a.Status, OpDeliver) {
		return Assignment{}, &InvalidTransitionError{Current: a.Status, Op: OpDeliver}
	}

	now := e.now()
	a.Status = OpDeliver.next()
	a.DeliveredDate = &now
	if notes != nil {
		a.Notes = notes
	}
	a = recompute(a)

	if err := e.repo.SaveTransition(ctx, tx, a); err != nil {
		return Assignment{}, err
	}
	if err := e.record(ctx, tx, a, "ASSIGNMENT_DELIVERED", "assignment.delivered", map[string]any{
		"delivered_at": now.UTC(),
	}); err != nil {
		return Assignment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Assignment{}, wrapConflict(fmt.Errorf("labour: commit deliver: %w", err))
	}
	return a, nil
}

// CollectParams carries the operator's collection entry. Expenses is required
// on the first collection and optional on a correction, where the stored
// breakdown is preserved unless explicitly re-supplied.
type CollectParams struct {
	AssignmentID    string
	CollectedAmount float64
	Expenses        *Expenses
	Notes           *string
}

// Collect records the cash received for a delivered assignment. Invoked a
// second time while the assignment is already COLLECTED it becomes the
// correction step of the reconciliation protocol: the new amount must match
// the required total collection within Tolerance and is audited as a
// Correction row.
func (e *Engine) Collect(ctx context.Context, params CollectParams) (Assignment, error) {
	if params.AssignmentID == "" {
		return Assignment{}, &ValidationError{Msg: "missing assignment id"}
	}
	if params.CollectedAmount < 0 {
		return Assignment{}, &ValidationError{Msg: "collected amount must not be negative"}
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return Assignment{}, fmt.Errorf("labour: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := e.repo.GetForUpdate(ctx, tx, params.AssignmentID)
	if err != nil {
		return Assignment{}, err
	}
	if !canTransition(a.Status, OpCollect) {
		return Assignment{}, &InvalidTransitionError{Current: a.Status, Op: OpCollect}
	}

	eventType := "ASSIGNMENT_COLLECTED"
	topic := "assignment.collected"

	switch a.Status {
	case StatusDelivered:
		if params.Expenses == nil {
			return Assignment{}, &ValidationError{Msg: "expense breakdown required on first collection"}
		}
		a.StationExpense = params.Expenses.Station
		a.BilityExpense = params.Expenses.Bility
		a.StationLabour = params.Expenses.StationLabour
		a.CartLabour = params.Expenses.CartLabour
		a = recompute(a)
		a.CollectedAmount = params.CollectedAmount
		a.Status = OpCollect.next()

	case StatusCollected:
		// Correction path. The operator must confirm the exact reconciled
		// total; a mismatched amount is rejected, never kept as a partial
		// payment.
		old := a.CollectedAmount
		if params.Expenses != nil {
			a.StationExpense = params.Expenses.Station
			a.BilityExpense = params.Expenses.Bility
			a.StationLabour = params.Expenses.StationLabour
			a.CartLabour = params.Expenses.CartLabour
			a = recompute(a)
		}

		charges, err := e.shipments.TotalCharges(ctx, tx, a.ShipmentID)
		if err != nil {
			return Assignment{}, fmt.Errorf("labour: lookup shipment charges: %w", err)
		}
		rec := Reconcile(charges, a)
		if math.Abs(params.CollectedAmount-rec.RequiredTotal) > Tolerance {
			return Assignment{}, &ValidationError{
				Msg:           fmt.Sprintf("correction must confirm total collection of %.2f", rec.RequiredTotal),
				RequiredTotal: &rec.RequiredTotal,
			}
		}
		a.CollectedAmount = params.CollectedAmount

		if err := e.repo.InsertCorrection(ctx, tx, Correction{
			AssignmentID: a.ID,
			OldAmount:    old,
			NewAmount:    params.CollectedAmount,
			Reason:       params.Notes,
		}); err != nil {
			return Assignment{}, err
		}
		eventType = "ASSIGNMENT_COLLECTION_CORRECTED"
		topic = "assignment.collection_corrected"
	}

	if params.Notes != nil {
		a.Notes = params.Notes
	}

	if err := e.repo.SaveTransition(ctx, tx, a); err != nil {
		return Assignment{}, err
	}
	if err := e.record(ctx, tx, a, eventType, topic, map[string]any{
		"collected_amount": a.CollectedAmount,
		"total_expenses":   a.TotalExpenses,
	}); err != nil {
		return Assignment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Assignment{}, wrapConflict(fmt.Errorf("labour: commit collect: %w", err))
	}
	return a, nil
}

// Settle closes the assignment's account. It succeeds only when the
// collected amount matches the shipment charges plus expenses within
// Tolerance; otherwise it reports the signed remaining balance and refuses,
// routing the caller into the correction protocol.
func (e *Engine) Settle(ctx context.Context, assignmentID string, notes *string) (Assignment, error) {
	if assignmentID == "" {
		return Assignment{}, &ValidationError{Msg: "missing assignment id"}
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return Assignment{}, fmt.Errorf("labour: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := e.repo.GetForUpdate(ctx, tx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	if !canTransition(a.Status, OpSettle) {
		return Assignment{}, &InvalidTransitionError{Current: a.Status, Op: OpSettle}
	}

	charges, err := e.shipments.TotalCharges(ctx, tx, a.ShipmentID)
	if err != nil {
		return Assignment{}, fmt.Errorf("labour: lookup shipment charges: %w", err)
	}
	rec := Reconcile(charges, a)
	if !rec.Balanced() {
		return Assignment{}, &ReconciliationPendingError{
			Remaining:     rec.Remaining,
			RequiredTotal: rec.RequiredTotal,
		}
	}

	now := e.now()
	a.Status = OpSettle.next()
	a.SettledDate = &now
	if notes != nil {
		a.Notes = notes
	}
	a = recompute(a)

	if err := e.repo.SaveTransition(ctx, tx, a); err != nil {
		return Assignment{}, err
	}
	if err := e.record(ctx, tx, a, "ASSIGNMENT_SETTLED", "assignment.settled", map[string]any{
		"total_due":        rec.TotalDue,
		"collected_amount": a.CollectedAmount,
		"settled_at":       now.UTC(),
	}); err != nil {
		return Assignment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Assignment{}, wrapConflict(fmt.Errorf("labour: commit settle: %w", err))
	}
	return a, nil
}

// Cancel retires an assignment from any non-terminal state.
func (e *Engine) Cancel(ctx context.Context, assignmentID string, notes *string) (Assignment, error) {
	if assignmentID == "" {
		return Assignment{}, &ValidationError{Msg: "missing assignment id"}
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return Assignment{}, fmt.Errorf("labour: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := e.repo.GetForUpdate(ctx, tx, assignmentID)
	if err != nil {
		return Assignment{}, err
	}
	if !canTransition(a.Status, OpCancel) {
		return Assignment{}, &InvalidTransitionError{Current: a.Status, Op: OpCancel}
	}

	a.Status = OpCancel.next()
	if notes != nil {
		a.Notes = notes
	}
	a = recompute(a)

	if err := e.repo.SaveTransition(ctx, tx, a); err != nil {
		return Assignment{}, err
	}
	if err := e.record(ctx, tx, a, "ASSIGNMENT_CANCELLED", "assignment.cancelled", nil); err != nil {
		return Assignment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Assignment{}, wrapConflict(fmt.Errorf("labour: commit cancel: %w", err))
	}
	return a, nil
}

func (e *Engine) record(ctx context.Context, tx pgx.Tx, a Assignment, eventType, topic string, payload map[string]any) error {
	if payload == nil {
		payload = make(map[string]any, 2)
	}
	payload["assignment_id"] = a.ID
	payload["status"] = string(a.Status)

	if err := e.events.Append(ctx, tx, a.ID, eventType, payload); err != nil {
		return err
	}
	return e.outbox.Enqueue(ctx, tx, topic, payload)
}
