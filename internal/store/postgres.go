package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branchmove/branch-service/internal/branch"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS branches (
	id                      INTEGER NOT NULL,
	name                    TEXT PRIMARY KEY,
	region                  TEXT NOT NULL,
	sub_region              TEXT NOT NULL DEFAULT '',
	branch_type             TEXT NOT NULL DEFAULT '',
	lat                     DOUBLE PRECISION NOT NULL,
	lon                     DOUBLE PRECISION NOT NULL,
	serves_adjacent_regions BOOLEAN NOT NULL DEFAULT FALSE,
	atm_count               INTEGER NOT NULL DEFAULT 0,
	density                 TEXT NOT NULL,
	accessible              BOOLEAN NOT NULL DEFAULT FALSE,
	parking                 BOOLEAN NOT NULL DEFAULT FALSE,
	extended_hours          BOOLEAN NOT NULL DEFAULT FALSE,
	easy_access             BOOLEAN NOT NULL DEFAULT FALSE,
	service_types           TEXT[] NOT NULL DEFAULT '{}',
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS branches_region_idx ON branches (region);
`

const selectColumns = `id, name, region, sub_region, branch_type, lat, lon,
	serves_adjacent_regions, atm_count, density, accessible, parking,
	extended_hours, easy_access, service_types`

// PostgresStore keeps the dataset in the branches table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Kind() string { return TypePostgres }

// EnsureSchema creates the branches table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create branches schema: %w", err)
	}
	return nil
}

// UpsertMany inserts or updates locations keyed by name in one batch.
func (s *PostgresStore) UpsertMany(ctx context.Context, locs []branch.Location) error {
	if len(locs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, loc := range locs {
		if err := loc.Validate(); err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO branches (`+selectColumns+`, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
			ON CONFLICT (name) DO UPDATE SET
				id = EXCLUDED.id,
				region = EXCLUDED.region,
				sub_region = EXCLUDED.sub_region,
				branch_type = EXCLUDED.branch_type,
				lat = EXCLUDED.lat,
				lon = EXCLUDED.lon,
				serves_adjacent_regions = EXCLUDED.serves_adjacent_regions,
				atm_count = EXCLUDED.atm_count,
				density = EXCLUDED.density,
				accessible = EXCLUDED.accessible,
				parking = EXCLUDED.parking,
				extended_hours = EXCLUDED.extended_hours,
				easy_access = EXCLUDED.easy_access,
				service_types = EXCLUDED.service_types,
				updated_at = NOW()`,
			loc.ID, branch.NormalizeName(loc.Name), branch.NormalizeName(loc.Region), loc.SubRegion, loc.Type,
			loc.Coordinate.Lat, loc.Coordinate.Lon, loc.ServesAdjacentRegions, loc.ATMCount,
			string(loc.Density), loc.Accessible, loc.Parking, loc.ExtendedHours, loc.EasyAccess,
			loc.ServiceNames(),
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range locs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert branch %q: %w", locs[i].Name, err)
		}
	}
	return nil
}

// FindAll returns every branch ordered by id.
func (s *PostgresStore) FindAll(ctx context.Context) ([]branch.Location, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM branches ORDER BY id, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	return collectLocations(rows)
}

// FindByRegion returns the branches located in region.
func (s *PostgresStore) FindByRegion(ctx context.Context, region string) ([]branch.Location, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM branches WHERE region = $1 ORDER BY id, name`,
		branch.NormalizeName(region))
	if err != nil {
		return nil, fmt.Errorf("failed to query branches by region: %w", err)
	}
	return collectLocations(rows)
}

// FindByName returns the branch with the given name.
func (s *PostgresStore) FindByName(ctx context.Context, name string) (branch.Location, error) {
	want := branch.NormalizeName(name)
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM branches WHERE name = $1`, want)

	loc, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return branch.Location{}, notFound(want)
		}
		return branch.Location{}, fmt.Errorf("failed to query branch %q: %w", want, err)
	}
	return loc, nil
}

// Count returns the number of stored branches.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM branches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count branches: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func collectLocations(rows pgx.Rows) ([]branch.Location, error) {
	defer rows.Close()

	var locs []branch.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branches: %w", err)
	}
	return locs, nil
}

func scanLocation(row pgx.Row) (branch.Location, error) {
	var (
		loc      branch.Location
		density  string
		services []string
	)
	err := row.Scan(
		&loc.ID, &loc.Name, &loc.Region, &loc.SubRegion, &loc.Type,
		&loc.Coordinate.Lat, &loc.Coordinate.Lon, &loc.ServesAdjacentRegions, &loc.ATMCount,
		&density, &loc.Accessible, &loc.Parking, &loc.ExtendedHours, &loc.EasyAccess,
		&services,
	)
	if err != nil {
		return branch.Location{}, err
	}
	loc.Density = branch.Density(density)
	loc.ServiceTypes = make([]branch.ServiceType, len(services))
	for i, st := range services {
		loc.ServiceTypes[i] = branch.ServiceType(st)
	}
	return loc, nil
}
