package businesstypes

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
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]BusinessType, int, error)
	Get(ctx context.Context, id int64) (*BusinessType, error)
	Create(ctx context.Context, bt BusinessType) (*BusinessType, error)
	Update(ctx context.Context, id int64, bt BusinessType) error
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
		"business_types.id", "business_types.company_id", "business_types.name",
		"business_types.description", "business_types.created_at", "business_types.updated_at",
		"count(*) OVER() AS total",
	).From("business_types")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]BusinessType, int, error) {
	if filters.Search != "" {
		q = q.Where(sq.ILike{"business_types.name": "%" + filters.Search + "%"})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"business_types.company_id": *filters.CompanyID})
	}
	q = q.OrderBy(sortOrder(filters.SortBy, filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("businesstypes: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("businesstypes: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []BusinessType
		total int
	)
	for rows.Next() {
		var (
			bt BusinessType
			t  int
		)
		if err := scanInto(rows, &bt, &t); err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, bt)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*BusinessType, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, description, created_at, updated_at
		 FROM business_types WHERE id = $1`, id)
	var bt BusinessType
	if err := scanInto(row, &bt, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bt, nil
}

func (r *repository) Create(ctx context.Context, bt BusinessType) (*BusinessType, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO business_types (company_id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id, company_id, name, description, created_at, updated_at`,
		bt.CompanyID, bt.Name, bt.Description, now)
	var created BusinessType
	if err := scanInto(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, bt BusinessType) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE business_types SET company_id = $1, name = $2, description = $3, updated_at = now()
		 WHERE id = $4`,
		bt.CompanyID, bt.Name, bt.Description, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM business_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("businesstypes: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInto(row pgx.Row, bt *BusinessType, total *int) error {
	var (
		description          pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)
	dest := []any{&bt.ID, &bt.CompanyID, &bt.Name, &description, &createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	bt.Description = description.String
	if createdAt.Valid {
		bt.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		bt.UpdatedAt = updatedAt.Time
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

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	if sortBy == "created_at" {
		return "business_types.created_at " + dir
	}
	return "business_types.name " + dir
}
