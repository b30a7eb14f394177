package categories

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
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, c Category) (*Category, error)
	Update(ctx context.Context, id int64, c Category) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Base is the select the query scoper appends the visibility predicate to.
// The running total column keeps list and count in a single round trip.
func (r *repository) Base() sq.SelectBuilder {
	return psql.Select(
		"categories.id", "categories.company_id", "categories.business_type_id",
		"categories.factory_id", "categories.product_type_id", "categories.name",
		"categories.description", "categories.created_at", "categories.updated_at",
		"count(*) OVER() AS total",
	).From("categories")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Category, int, error) {
	if filters.Search != "" {
		q = q.Where(sq.ILike{"categories.name": "%" + filters.Search + "%"})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"categories.company_id": *filters.CompanyID})
	}
	q = q.OrderBy(sortOrder(filters.SortBy, filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("categories: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("categories: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []Category
		total int
	)
	for rows.Next() {
		c, t, err := scanCategoryWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Category, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, business_type_id, factory_id, product_type_id, name, description, created_at, updated_at
		 FROM categories WHERE id = $1`, id)
	return scanCategory(row)
}

func (r *repository) Create(ctx context.Context, c Category) (*Category, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO categories (company_id, business_type_id, factory_id, product_type_id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING id, company_id, business_type_id, factory_id, product_type_id, name, description, created_at, updated_at`,
		c.CompanyID, c.BusinessTypeID, c.FactoryID, c.ProductTypeID, c.Name, c.Description, now)
	created, err := scanCategory(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET company_id = $1, business_type_id = $2, factory_id = $3,
		 product_type_id = $4, name = $5, description = $6, updated_at = now()
		 WHERE id = $7`,
		c.CompanyID, c.BusinessTypeID, c.FactoryID, c.ProductTypeID, c.Name, c.Description, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("categories: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*Category, error) {
	var (
		c                    Category
		createdAt, updatedAt pgtype.Timestamptz
		description          pgtype.Text
	)
	err := row.Scan(&c.ID, &c.CompanyID, &c.BusinessTypeID, &c.FactoryID,
		&c.ProductTypeID, &c.Name, &description, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("categories: scan: %w", err)
	}
	c.Description = description.String
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return &c, nil
}

func scanCategoryWithTotal(row pgx.Row) (*Category, int, error) {
	var (
		c                    Category
		createdAt, updatedAt pgtype.Timestamptz
		description          pgtype.Text
		total                int
	)
	err := row.Scan(&c.ID, &c.CompanyID, &c.BusinessTypeID, &c.FactoryID,
		&c.ProductTypeID, &c.Name, &description, &createdAt, &updatedAt, &total)
	if err != nil {
		return nil, 0, fmt.Errorf("categories: scan: %w", err)
	}
	c.Description = description.String
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return &c, total, nil
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
	case "name":
		return "categories.name " + dir
	case "created_at":
		return "categories.created_at " + dir
	default:
		return "categories.name " + dir
	}
}
