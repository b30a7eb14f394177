package products

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
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id int64, p Product) error
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
		"products.id", "products.company_id", "products.business_type_id",
		"products.factory_id", "products.product_type_id", "products.category_id",
		"products.name", "products.short_name", "products.created_at", "products.updated_at",
		"count(*) OVER() AS total",
	).From("products")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Product, int, error) {
	if filters.Search != "" {
		pat := "%" + filters.Search + "%"
		q = q.Where(sq.Or{sq.ILike{"products.name": pat}, sq.ILike{"products.short_name": pat}})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"products.company_id": *filters.CompanyID})
	}
	if filters.FactoryID != nil {
		q = q.Where(sq.Eq{"products.factory_id": *filters.FactoryID})
	}
	q = q.OrderBy(sortOrder(filters.SortBy, filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("products: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []Product
		total int
	)
	for rows.Next() {
		var (
			p Product
			t int
		)
		if err := scanInto(rows, &p, &t); err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, business_type_id, factory_id, product_type_id, category_id, name, short_name, created_at, updated_at
		 FROM products WHERE id = $1`, id)
	var p Product
	if err := scanInto(row, &p, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p Product) (*Product, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO products (company_id, business_type_id, factory_id, product_type_id, category_id, name, short_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 RETURNING id, company_id, business_type_id, factory_id, product_type_id, category_id, name, short_name, created_at, updated_at`,
		p.CompanyID, p.BusinessTypeID, p.FactoryID, p.ProductTypeID, p.CategoryID, p.Name, p.ShortName, now)
	var created Product
	if err := scanInto(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, p Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET company_id = $1, business_type_id = $2, factory_id = $3,
		 product_type_id = $4, category_id = $5, name = $6, short_name = $7, updated_at = now()
		 WHERE id = $8`,
		p.CompanyID, p.BusinessTypeID, p.FactoryID, p.ProductTypeID, p.CategoryID, p.Name, p.ShortName, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInto(row pgx.Row, p *Product, total *int) error {
	var (
		shortName            pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)
	dest := []any{&p.ID, &p.CompanyID, &p.BusinessTypeID, &p.FactoryID,
		&p.ProductTypeID, &p.CategoryID, &p.Name, &shortName, &createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	p.ShortName = shortName.String
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
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
		return "products.created_at " + dir
	}
	return "products.name " + dir
}
