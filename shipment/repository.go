package shipment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no shipment row exists for the identifier.
	ErrNotFound = errors.New("shipment: not found")
	// ErrDuplicateBility signals the bility number is already registered.
	ErrDuplicateBility = errors.New("shipment: bility number already exists")
)

const shipmentColumns = `id, bility_number, bility_date, sender_id, receiver_id,
    from_city_id, to_city_id, vehicle_id, description, quantity, weight_kg,
    freight, local_charge, bility_charge, other_charge, total_charges,
    created_at, updated_at`

// Repository handles shipment data access.
type Repository struct {
	pool        *pgxpool.Pool
	idGenerator func() string
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:        pool,
		idGenerator: func() string { return uuid.NewString() },
	}
}

func (r *Repository) WithIDGenerator(gen func() string) *Repository {
	r.idGenerator = gen
	return r
}

// Create registers a shipment. total_charges is computed here, never taken
// from the caller.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Shipment, error) {
	total := params.Freight + params.LocalCharge + params.BilityCharge + params.OtherCharge

	insertSQL := fmt.Sprintf(`
        INSERT INTO shipments (id, bility_number, bility_date, sender_id, receiver_id,
            from_city_id, to_city_id, vehicle_id, description, quantity, weight_kg,
            freight, local_charge, bility_charge, other_charge, total_charges)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING %s
    `, shipmentColumns)

	s, err := scanShipment(r.pool.QueryRow(ctx, insertSQL,
		r.idGenerator(),
		params.BilityNumber,
		params.BilityDate,
		params.SenderID,
		params.ReceiverID,
		params.FromCityID,
		params.ToCityID,
		params.VehicleID,
		params.Description,
		params.Quantity,
		params.WeightKg,
		params.Freight,
		params.LocalCharge,
		params.BilityCharge,
		params.OtherCharge,
		total,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Shipment{}, ErrDuplicateBility
		}
		return Shipment{}, fmt.Errorf("shipment: create: %w", err)
	}
	return s, nil
}

// GetByID returns one shipment.
func (r *Repository) GetByID(ctx context.Context, id string) (Shipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipments WHERE id = $1`, shipmentColumns)

	s, err := scanShipment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shipment{}, ErrNotFound
		}
		return Shipment{}, fmt.Errorf("shipment: get: %w", err)
	}
	return s, nil
}

// List returns shipments matching the filters, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Shipment, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	where := "WHERE 1=1"
	args := []any{}
	if filters.FromCityID != "" {
		args = append(args, filters.FromCityID)
		where += fmt.Sprintf(" AND from_city_id = $%d", len(args))
	}
	if filters.ToCityID != "" {
		args = append(args, filters.ToCityID)
		where += fmt.Sprintf(" AND to_city_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM shipments %s`, where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("shipment: count: %w", err)
	}

	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM shipments %s ORDER BY bility_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		shipmentColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("shipment: list: %w", err)
	}
	defer rows.Close()

	out := []Shipment{}
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("shipment: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("shipment: iterate: %w", err)
	}
	return out, total, nil
}

// TotalCharges reads the gross receivable inside the caller's transaction.
// It is the read-only collaborator consumed by the settlement engine.
func (r *Repository) TotalCharges(ctx context.Context, tx pgx.Tx, shipmentID string) (float64, error) {
	var total float64
	if err := tx.QueryRow(ctx, `SELECT total_charges FROM shipments WHERE id = $1`, shipmentID).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("shipment: total charges: %w", err)
	}
	return total, nil
}

func scanShipment(row pgx.Row) (Shipment, error) {
	var s Shipment
	err := row.Scan(
		&s.ID,
		&s.BilityNumber,
		&s.BilityDate,
		&s.SenderID,
		&s.ReceiverID,
		&s.FromCityID,
		&s.ToCityID,
		&s.VehicleID,
		&s.Description,
		&s.Quantity,
		&s.WeightKg,
		&s.Freight,
		&s.LocalCharge,
		&s.BilityCharge,
		&s.OtherCharge,
		&s.TotalCharges,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return Shipment{}, err
	}
	return s, nil
}
