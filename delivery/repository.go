package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrShipmentMissing = errors.New("delivery: shipment not found")
	ErrDuplicate       = errors.New("delivery: shipment already confirmed delivered")
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create confirms delivery of a shipment. One confirmation per shipment.
func (r *Repository) Create(ctx context.Context, shipmentID, receivedBy string, deliveredAt time.Time, notes *string) (Record, error) {
	const query = `
		INSERT INTO delivery_records (shipment_id, received_by, delivered_at, notes)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM shipments WHERE id = $1)
		RETURNING id, shipment_id, received_by, delivered_at, notes, created_at
	`

	var rec Record
	err := r.pool.QueryRow(ctx, query, shipmentID, receivedBy, deliveredAt, notes).
		Scan(&rec.ID, &rec.ShipmentID, &rec.ReceivedBy, &rec.DeliveredAt, &rec.Notes, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrShipmentMissing
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrDuplicate
		}
		return Record{}, fmt.Errorf("delivery: create: %w", err)
	}
	return rec, nil
}

// List returns confirmations, newest first, optionally scoped to a shipment.
func (r *Repository) List(ctx context.Context, shipmentID string) ([]Record, error) {
	query := `
		SELECT id, shipment_id, received_by, delivered_at, notes, created_at
		FROM delivery_records
	`
	args := []any{}
	if shipmentID != "" {
		query += " WHERE shipment_id = $1"
		args = append(args, shipmentID)
	}
	query += " ORDER BY delivered_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("delivery: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ShipmentID, &rec.ReceivedBy, &rec.DeliveredAt, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("delivery: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("delivery: iterate: %w", err)
	}
	return out, nil
}
