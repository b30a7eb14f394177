package pallot

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repository interface {
	Base() sq.SelectBuilder
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]PallotType, int, error)
	Get(ctx context.Context, id int64) (*PallotType, error)
	Create(ctx context.Context, pt PallotType) (*PallotType, error)
	Update(ctx context.Context, id int64, pt PallotType) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Base() sq.SelectBuilder {
	return psql.Select(
		"pallot_types.id", "pallot_types.company_id", "pallot_types.name",
		"pallot_types.description", "pallot_types.capacity",
		"pallot_types.created_at", "pallot_types.updated_at",
		"count(*) OVER() AS total",
	).From("pallot_types")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]PallotType, int, error) {
	if filters.Search != "" {
		q = q.Where(sq.ILike{"pallot_types.name": "%" + filters.Search + "%"})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"pallot_types.company_id": *filters.CompanyID})
	}
	q = q.OrderBy("pallot_types.name " + direction(filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("pallot: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pallot: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []PallotType
		total int
	)
	for rows.Next() {
		var (
			pt PallotType
			t  int
		)
		if err := scanInto(rows, &pt, &t); err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, pt)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*PallotType, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, description, capacity, created_at, updated_at
		 FROM pallot_types WHERE id = $1`, id)
	var pt PallotType
	if err := scanInto(row, &pt, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pt, nil
}

func (r *repository) Create(ctx context.Context, pt PallotType) (*PallotType, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO pallot_types (company_id, name, description, capacity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id, company_id, name, description, capacity, created_at, updated_at`,
		pt.CompanyID, pt.Name, pt.Description, pt.Capacity, now)
	var created PallotType
	if err := scanInto(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, pt PallotType) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pallot_types SET company_id = $1, name = $2, description = $3, capacity = $4, updated_at = now()
		 WHERE id = $5`,
		pt.CompanyID, pt.Name, pt.Description, pt.Capacity, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pallot_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pallot: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInto(row pgx.Row, pt *PallotType, total *int) error {
	var (
		description          pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)
	dest := []any{&pt.ID, &pt.CompanyID, &pt.Name, &description, &pt.Capacity, &createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	pt.Description = description.String
	if createdAt.Valid {
		pt.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		pt.UpdatedAt = updatedAt.Time
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

func direction(sortDir string) string {
	if sortDir == shared.SortDesc {
		return "DESC"
	}
	return "ASC"
}
