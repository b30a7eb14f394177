package companies

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
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Company, int, error)
	Get(ctx context.Context, id int64) (*Company, error)
	Create(ctx context.Context, c Company) (*Company, error)
	Update(ctx context.Context, id int64, c Company) error
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
		"companies.id", "companies.name", "companies.code", "companies.email",
		"companies.phone", "companies.address", "companies.description",
		"companies.proprietor_name", "companies.website", "companies.is_active",
		"companies.created_at", "companies.updated_at",
		"count(*) OVER() AS total",
	).From("companies")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Company, int, error) {
	if filters.Search != "" {
		pat := "%" + filters.Search + "%"
		q = q.Where(sq.Or{sq.ILike{"companies.name": pat}, sq.ILike{"companies.code": pat}})
	}
	q = q.OrderBy(sortOrder(filters.SortBy, filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("companies: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("companies: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []Company
		total int
	)
	for rows.Next() {
		var c Company
		if err := scanInto(rows, &c, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Company, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, code, email, phone, address, description, proprietor_name, website, is_active, created_at, updated_at
		 FROM companies WHERE id = $1`, id)
	var c Company
	if err := scanInto(row, &c, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c Company) (*Company, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO companies (name, code, email, phone, address, description, proprietor_name, website, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		 RETURNING id, name, code, email, phone, address, description, proprietor_name, website, is_active, created_at, updated_at`,
		c.Name, c.Code, c.Email, c.Phone, c.Address, c.Description, c.ProprietorName, c.Website, c.Active, now)
	var created Company
	if err := scanInto(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Company) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET name = $1, code = $2, email = $3, phone = $4, address = $5,
		 description = $6, proprietor_name = $7, website = $8, is_active = $9, updated_at = now()
		 WHERE id = $10`,
		c.Name, c.Code, c.Email, c.Phone, c.Address, c.Description, c.ProprietorName, c.Website, c.Active, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("companies: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// scanInto reads a company row; total is only scanned when non-nil (list
// queries carry the window count as the trailing column).
func scanInto(row pgx.Row, c *Company, total *int) error {
	var (
		code, email, phone, address, description, proprietor, website pgtype.Text
		createdAt, updatedAt                                          pgtype.Timestamptz
	)
	dest := []any{&c.ID, &c.Name, &code, &email, &phone, &address, &description,
		&proprietor, &website, &c.Active, &createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	c.Code = code.String
	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	c.Description = description.String
	c.ProprietorName = proprietor.String
	c.Website = website.String
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
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
	case "code":
		return "companies.code " + dir
	case "created_at":
		return "companies.created_at " + dir
	default:
		return "companies.name " + dir
	}
}
