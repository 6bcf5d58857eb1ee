package returns

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("returns: not found")
	ErrBadStatus = errors.New("returns: invalid status transition")
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create opens a return record against a registered shipment.
func (r *Repository) Create(ctx context.Context, shipmentID, reason string) (Record, error) {
	const query = `
		INSERT INTO return_records (shipment_id, reason, status)
		SELECT $1, $2, 'open'
		WHERE EXISTS (SELECT 1 FROM shipments WHERE id = $1)
		RETURNING id, shipment_id, reason, status::text, created_at, updated_at, resolved_at
	`

	var rec Record
	err := r.pool.QueryRow(ctx, query, shipmentID, reason).
		Scan(&rec.ID, &rec.ShipmentID, &rec.Reason, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt, &rec.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("returns: create: %w", err)
	}
	return rec, nil
}

// Resolve closes an open return. Resolving twice reports ErrBadStatus.
func (r *Repository) Resolve(ctx context.Context, returnID string) (Record, error) {
	const query = `
		UPDATE return_records
		SET status = 'resolved', resolved_at = now(), updated_at = now()
		WHERE id = $1 AND status <> 'resolved'
		RETURNING id, shipment_id, reason, status::text, created_at, updated_at, resolved_at
	`

	var rec Record
	err := r.pool.QueryRow(ctx, query, returnID).
		Scan(&rec.ID, &rec.ShipmentID, &rec.Reason, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt, &rec.ResolvedAt)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("returns: resolve: %w", err)
	}

	var status Status
	if err := r.pool.QueryRow(ctx, `SELECT status::text FROM return_records WHERE id = $1`, returnID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("returns: resolve fetch: %w", err)
	}
	if status == StatusResolved {
		return Record{}, ErrBadStatus
	}
	return Record{}, ErrNotFound
}

// List returns records newest first, optionally scoped to a shipment.
func (r *Repository) List(ctx context.Context, shipmentID string) ([]Record, error) {
	query := `
		SELECT id, shipment_id, reason, status::text, created_at, updated_at, resolved_at
		FROM return_records
	`
	args := []any{}
	if shipmentID != "" {
		query += " WHERE shipment_id = $1"
		args = append(args, shipmentID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("returns: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ShipmentID, &rec.Reason, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt, &rec.ResolvedAt); err != nil {
			return nil, fmt.Errorf("returns: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("returns: iterate: %w", err)
	}
	return out, nil
}
