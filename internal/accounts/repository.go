package accounts

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
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]AccountHead, int, error)
	Get(ctx context.Context, id int64) (*AccountHead, error)
	Create(ctx context.Context, a AccountHead) (*AccountHead, error)
	Update(ctx context.Context, id int64, a AccountHead) error
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
		"account_heads.id", "account_heads.company_id", "account_heads.parent_id",
		"account_heads.name", "account_heads.description", "account_heads.is_active",
		"account_heads.created_at", "account_heads.updated_at",
		"count(*) OVER() AS total",
	).From("account_heads")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]AccountHead, int, error) {
	if filters.Search != "" {
		q = q.Where(sq.ILike{"account_heads.name": "%" + filters.Search + "%"})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"account_heads.company_id": *filters.CompanyID})
	}
	q = q.OrderBy("account_heads.name " + direction(filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("accounts: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("accounts: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []AccountHead
		total int
	)
	for rows.Next() {
		var (
			a AccountHead
			t int
		)
		if err := scanInto(rows, &a, &t); err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*AccountHead, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, parent_id, name, description, is_active, created_at, updated_at
		 FROM account_heads WHERE id = $1`, id)
	var a AccountHead
	if err := scanInto(row, &a, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Create(ctx context.Context, a AccountHead) (*AccountHead, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO account_heads (company_id, parent_id, name, description, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING id, company_id, parent_id, name, description, is_active, created_at, updated_at`,
		a.CompanyID, a.ParentID, a.Name, a.Description, a.Active, now)
	var created AccountHead
	if err := scanInto(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, a AccountHead) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE account_heads SET company_id = $1, parent_id = $2, name = $3,
		 description = $4, is_active = $5, updated_at = now()
		 WHERE id = $6`,
		a.CompanyID, a.ParentID, a.Name, a.Description, a.Active, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM account_heads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("accounts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInto(row pgx.Row, a *AccountHead, total *int) error {
	var (
		description          pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)
	dest := []any{&a.ID, &a.CompanyID, &a.ParentID, &a.Name, &description,
		&a.Active, &createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	a.Description = description.String
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
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
