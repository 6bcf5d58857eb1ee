package masterdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("masterdata: not found")
	ErrDuplicate = errors.New("masterdata: already exists")
)

// Repository handles data access for the reference tables shipments and
// assignments point at.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateCity(ctx context.Context, name string) (City, error) {
	var c City
	err := r.pool.QueryRow(ctx, `INSERT INTO cities (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return City{}, wrapWrite("create city", err)
	}
	return c, nil
}

func (r *Repository) ListCities(ctx context.Context) ([]City, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM cities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("masterdata: list cities: %w", err)
	}
	defer rows.Close()

	out := []City{}
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("masterdata: scan city: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) CreateAgency(ctx context.Context, name, cityID string, phone *string) (Agency, error) {
	var a Agency
	err := r.pool.QueryRow(ctx,
		`INSERT INTO agencies (name, city_id, phone) VALUES ($1,$2,$3) RETURNING id, name, city_id, phone, created_at`,
		name, cityID, phone).
		Scan(&a.ID, &a.Name, &a.CityID, &a.Phone, &a.CreatedAt)
	if err != nil {
		return Agency{}, wrapWrite("create agency", err)
	}
	return a, nil
}

func (r *Repository) ListAgencies(ctx context.Context) ([]Agency, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, city_id, phone, created_at FROM agencies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("masterdata: list agencies: %w", err)
	}
	defer rows.Close()

	out := []Agency{}
	for rows.Next() {
		var a Agency
		if err := rows.Scan(&a.ID, &a.Name, &a.CityID, &a.Phone, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("masterdata: scan agency: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) CreateVehicle(ctx context.Context, number, kind string) (Vehicle, error) {
	var v Vehicle
	err := r.pool.QueryRow(ctx,
		`INSERT INTO vehicles (number, kind) VALUES ($1,$2) RETURNING id, number, kind, created_at`,
		number, kind).
		Scan(&v.ID, &v.Number, &v.Kind, &v.CreatedAt)
	if err != nil {
		return Vehicle{}, wrapWrite("create vehicle", err)
	}
	return v, nil
}

func (r *Repository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, kind, created_at FROM vehicles ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("masterdata: list vehicles: %w", err)
	}
	defer rows.Close()

	out := []Vehicle{}
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Number, &v.Kind, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("masterdata: scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repository) CreateParty(ctx context.Context, name string, phone, address, cityID *string) (Party, error) {
	var p Party
	err := r.pool.QueryRow(ctx,
		`INSERT INTO parties (name, phone, address, city_id) VALUES ($1,$2,$3,$4)
         RETURNING id, name, phone, address, city_id, created_at`,
		name, phone, address, cityID).
		Scan(&p.ID, &p.Name, &p.Phone, &p.Address, &p.CityID, &p.CreatedAt)
	if err != nil {
		return Party{}, wrapWrite("create party", err)
	}
	return p, nil
}

func (r *Repository) ListParties(ctx context.Context) ([]Party, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, address, city_id, created_at FROM parties ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("masterdata: list parties: %w", err)
	}
	defer rows.Close()

	out := []Party{}
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Address, &p.CityID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("masterdata: scan party: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) CreateLabourer(ctx context.Context, name string, phone, agencyID *string) (Labourer, error) {
	var l Labourer
	err := r.pool.QueryRow(ctx,
		`INSERT INTO labourers (name, phone, agency_id) VALUES ($1,$2,$3)
         RETURNING id, name, phone, agency_id, created_at`,
		name, phone, agencyID).
		Scan(&l.ID, &l.Name, &l.Phone, &l.AgencyID, &l.CreatedAt)
	if err != nil {
		return Labourer{}, wrapWrite("create labourer", err)
	}
	return l, nil
}

func (r *Repository) GetLabourer(ctx context.Context, id string) (Labourer, error) {
	var l Labourer
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone, agency_id, created_at FROM labourers WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Phone, &l.AgencyID, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Labourer{}, ErrNotFound
		}
		return Labourer{}, fmt.Errorf("masterdata: get labourer: %w", err)
	}
	return l, nil
}

func (r *Repository) ListLabourers(ctx context.Context) ([]Labourer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, agency_id, created_at FROM labourers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("masterdata: list labourers: %w", err)
	}
	defer rows.Close()

	out := []Labourer{}
	for rows.Next() {
		var l Labourer
		if err := rows.Scan(&l.ID, &l.Name, &l.Phone, &l.AgencyID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("masterdata: scan labourer: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func wrapWrite(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return fmt.Errorf("masterdata: %s: %w", op, err)
}
