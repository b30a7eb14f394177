package factories

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
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Factory, int, error)
	Get(ctx context.Context, id int64) (*Factory, error)
	Create(ctx context.Context, f Factory) (*Factory, error)
	Update(ctx context.Context, id int64, f Factory) error
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
		"factories.id", "factories.company_id", "factories.business_type_id",
		"factories.name", "factories.short_name", "factories.address",
		"factories.is_active", "factories.created_at", "factories.updated_at",
		"count(*) OVER() AS total",
	).From("factories")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Factory, int, error) {
	if filters.Search != "" {
		pat := "%" + filters.Search + "%"
		q = q.Where(sq.Or{sq.ILike{"factories.name": pat}, sq.ILike{"factories.short_name": pat}})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"factories.company_id": *filters.CompanyID})
	}
	if filters.BusinessTypeID != nil {
		q = q.Where(sq.Eq{"factories.business_type_id": *filters.BusinessTypeID})
	}
	q = q.OrderBy(sortOrder(filters.SortBy, filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("factories: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("factories: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []Factory
		total int
	)
	for rows.Next() {
		var (
			f Factory
			t int
		)
		if err := scanInto(rows, &f, &t); err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, f)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Factory, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, business_type_id, name, short_name, address, is_active, created_at, updated_at
		 FROM factories WHERE id = $1`, id)
	var f Factory
	if err := scanInto(row, &f, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *repository) Create(ctx context.Context, f Factory) (*Factory, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO factories (company_id, business_type_id, name, short_name, address, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id, company_id, business_type_id, name, short_name, address, is_active, created_at, updated_at`,
		f.CompanyID, f.BusinessTypeID, f.Name, f.ShortName, f.Address, f.Active, now)
	var created Factory
	if err := scanInto(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, f Factory) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE factories SET company_id = $1, business_type_id = $2, name = $3,
		 short_name = $4, address = $5, is_active = $6, updated_at = now()
		 WHERE id = $7`,
		f.CompanyID, f.BusinessTypeID, f.Name, f.ShortName, f.Address, f.Active, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM factories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("factories: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInto(row pgx.Row, f *Factory, total *int) error {
	var (
		shortName, address   pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)
	dest := []any{&f.ID, &f.CompanyID, &f.BusinessTypeID, &f.Name, &shortName,
		&address, &f.Active, &createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	f.ShortName = shortName.String
	f.Address = address.String
	if createdAt.Valid {
		f.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		f.UpdatedAt = updatedAt.Time
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
	switch sortBy {
	case "short_name":
		return "factories.short_name " + dir
	case "created_at":
		return "factories.created_at " + dir
	default:
		return "factories.name " + dir
	}
}
