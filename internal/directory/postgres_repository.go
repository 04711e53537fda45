package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads doctors from the relational database.
type PostgresRepository struct {
	db querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("directory: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db querier) *PostgresRepository {
	if db == nil {
		panic("directory: querier required")
	}
	return &PostgresRepository{db: db}
}

// Search filters doctors by the provided criteria. A doctor name, when
// present, takes precedence over the department filter.
func (r *PostgresRepository) Search(ctx context.Context, city, department, doctorName string) ([]Doctor, error) {
	var (
		conds []string
		args  []any
	)
	next := func() string { return fmt.Sprintf("$%d", len(args)) }

	if city != "" {
		args = append(args, city)
		conds = append(conds, "LOWER(location) = LOWER("+next()+")")
	}
	if doctorName != "" {
		args = append(args, "%"+strings.ToLower(doctorName)+"%")
		conds = append(conds, "LOWER(name) LIKE "+next()+"")
	} else if department != "" {
		args = append(args, "%"+strings.ToLower(department)+"%")
		conds = append(conds, "LOWER(department) LIKE "+next()+"")
	}

	query := "SELECT id, name, department, location, COALESCE(timings, '') FROM doctors"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY department, name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("directory: search failed: %w", err)
	}
	defer rows.Close()

	var doctors []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Department, &d.Location, &d.Timings); err != nil {
			return nil, fmt.Errorf("directory: scan failed: %w", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: rows failed: %w", err)
	}
	return doctors, nil
}

// GetByID fetches a single doctor.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	query := "SELECT id, name, department, location, COALESCE(timings, '') FROM doctors WHERE id = $1"
	var d Doctor
	if err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.Department, &d.Location, &d.Timings); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("directory: select failed: %w", err)
	}
	return &d, nil
}
