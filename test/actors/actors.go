package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freightflow/labour"
)

// expectedErr reports whether the error is part of the settlement taxonomy
// and therefore normal under contention.
func expectedErr(err error) bool {
	var (
		invalid *labour.InvalidTransitionError
		valid   *labour.ValidationError
		pending *labour.ReconciliationPendingError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &valid), errors.As(err, &pending):
		return true
	case errors.Is(err, labour.ErrConflict),
		errors.Is(err, labour.ErrNotFound),
		errors.Is(err, labour.ErrDuplicateAssignment):
		return true
	}
	return false
}

func findByStatus(ctx context.Context, pool *pgxpool.Pool, shipmentID string, status labour.Status) (string, bool) {
	var id string
	err := pool.QueryRow(ctx,
		`SELECT id FROM labour_assignments WHERE shipment_id = $1 AND status = $2 LIMIT 1`,
		shipmentID, string(status)).Scan(&id)
	if err != nil {
		return "", false
	}
	return id, true
}

// Dispatcher races to create competing assignments for the same shipment.
// The partial unique index guarantees at most one active row, so duplicate
// errors are expected under contention.
func Dispatcher(ctx context.Context, crud *labour.CRUDService, shipmentID, labourerID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, err := crud.Create(ctx, labour.CreateParams{ShipmentID: shipmentID, LabourerID: labourerID})
		if err != nil && !expectedErr(err) {
			return fmt.Errorf("dispatcher create: %w", err)
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// Deliverer marks assigned rows delivered.
func Deliverer(ctx context.Context, pool *pgxpool.Pool, engine *labour.Engine, shipmentID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if id, ok := findByStatus(ctx, pool, shipmentID, labour.StatusAssigned); ok {
			if _, err := engine.Deliver(ctx, id, nil); err != nil && !expectedErr(err) {
				return fmt.Errorf("deliverer: %w", err)
			}
		}
		time.Sleep(time.Duration(10+rand.Intn(30)) * time.Millisecond)
	}
}

// Collector records collections against delivered rows. Most collections are
// exact; roughly one in three is deliberately short so the settler hits the
// pending path and the corrector has work to do.
func Collector(ctx context.Context, pool *pgxpool.Pool, engine *labour.Engine, shipmentID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if id, ok := findByStatus(ctx, pool, shipmentID, labour.StatusDelivered); ok {
			var charges float64
			if err := pool.QueryRow(ctx, `SELECT total_charges FROM shipments WHERE id = $1`, shipmentID).Scan(&charges); err == nil {
				exp := labour.Expenses{
					Station:       float64(rand.Intn(300)),
					Bility:        float64(rand.Intn(100)),
					StationLabour: float64(rand.Intn(200)),
					CartLabour:    float64(rand.Intn(200)),
				}
				amount := charges + exp.Sum()
				if rand.Intn(3) == 0 {
					amount -= 100
				}
				_, err := engine.Collect(ctx, labour.CollectParams{
					AssignmentID:    id,
					CollectedAmount: amount,
					Expenses:        &exp,
				})
				if err != nil && !expectedErr(err) {
					return fmt.Errorf("collector: %w", err)
				}
			}
		}
		time.Sleep(time.Duration(15+rand.Intn(35)) * time.Millisecond)
	}
}

// Corrector re-collects the exact reconciled total on collected rows,
// exercising the correction audit trail.
func Corrector(ctx context.Context, pool *pgxpool.Pool, engine *labour.Engine, shipmentID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if id, ok := findByStatus(ctx, pool, shipmentID, labour.StatusCollected); ok {
			var required float64
			err := pool.QueryRow(ctx, `
				SELECT s.total_charges + a.total_expenses
				FROM labour_assignments a JOIN shipments s ON s.id = a.shipment_id
				WHERE a.id = $1`, id).Scan(&required)
			if err == nil {
				reason := "stress correction"
				_, err := engine.Collect(ctx, labour.CollectParams{
					AssignmentID:    id,
					CollectedAmount: required,
					Notes:           &reason,
				})
				if err != nil && !expectedErr(err) {
					return fmt.Errorf("corrector: %w", err)
				}
			}
		}
		time.Sleep(time.Duration(25+rand.Intn(50)) * time.Millisecond)
	}
}

// Settler closes collected rows; reconciliation refusals are expected while
// the collector keeps entering short amounts.
func Settler(ctx context.Context, pool *pgxpool.Pool, engine *labour.Engine, shipmentID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if id, ok := findByStatus(ctx, pool, shipmentID, labour.StatusCollected); ok {
			if _, err := engine.Settle(ctx, id, nil); err != nil && !expectedErr(err) {
				return fmt.Errorf("settler: %w", err)
			}
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// Canceller occasionally retires an active assignment, freeing the shipment
// for the dispatcher.
func Canceller(ctx context.Context, pool *pgxpool.Pool, engine *labour.Engine, shipmentID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if rand.Intn(6) == 0 {
			var id string
			err := pool.QueryRow(ctx, `
				SELECT id FROM labour_assignments
				WHERE shipment_id = $1 AND status NOT IN ('settled','cancelled') LIMIT 1`, shipmentID).Scan(&id)
			if err == nil {
				if _, err := engine.Cancel(ctx, id, nil); err != nil && !expectedErr(err) {
					return fmt.Errorf("canceller: %w", err)
				}
			}
		}
		time.Sleep(time.Duration(150+rand.Intn(200)) * time.Millisecond)
	}
}

// OutboxWorker consumes pending outbox messages with SKIP LOCKED and marks
// them processed, with a simulated random failure bumping attempts.
func OutboxWorker(ctx context.Context, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		ids, err := pendingOutboxIDs(ctx, tx)
		if err != nil {
			_ = tx.Rollback(ctx)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		for _, id := range ids {
			if rand.Intn(10) == 0 {
				_, _ = tx.Exec(ctx, `UPDATE outbox SET attempts = attempts + 1, last_attempt = NOW() WHERE id = $1`, id)
				continue
			}
			_, _ = tx.Exec(ctx, `UPDATE outbox SET status = 'processed', last_attempt = NOW() WHERE id = $1`, id)
		}
		_ = tx.Commit(ctx)
		time.Sleep(100 * time.Millisecond)
	}
}

func pendingOutboxIDs(ctx context.Context, tx pgx.Tx) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT id FROM outbox WHERE status = 'pending' ORDER BY created_at FOR UPDATE SKIP LOCKED LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, 10)
	for rows.Next() {
		var id string
		_ = rows.Scan(&id)
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
