package loan

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
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]LoanType, int, error)
	Get(ctx context.Context, id int64) (*LoanType, error)
	Create(ctx context.Context, lt LoanType) (*LoanType, error)
	Update(ctx context.Context, id int64, lt LoanType) error
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
		"loan_types.id", "loan_types.company_id", "loan_types.name",
		"loan_types.interest_rate", "loan_types.max_per_bag", "loan_types.is_active",
		"loan_types.created_at", "loan_types.updated_at",
		"count(*) OVER() AS total",
	).From("loan_types")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]LoanType, int, error) {
	if filters.Search != "" {
		q = q.Where(sq.ILike{"loan_types.name": "%" + filters.Search + "%"})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"loan_types.company_id": *filters.CompanyID})
	}
	q = q.OrderBy("loan_types.name " + direction(filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("loan: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("loan: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []LoanType
		total int
	)
	for rows.Next() {
		var (
			lt LoanType
			t  int
		)
		if err := scanInto(rows, &lt, &t); err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, lt)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*LoanType, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, interest_rate, max_per_bag, is_active, created_at, updated_at
		 FROM loan_types WHERE id = $1`, id)
	var lt LoanType
	if err := scanInto(row, &lt, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lt, nil
}

func (r *repository) Create(ctx context.Context, lt LoanType) (*LoanType, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO loan_types (company_id, name, interest_rate, max_per_bag, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING id, company_id, name, interest_rate, max_per_bag, is_active, created_at, updated_at`,
		lt.CompanyID, lt.Name, lt.InterestRate, lt.MaxPerBag, lt.Active, now)
	var created LoanType
	if err := scanInto(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, lt LoanType) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE loan_types SET company_id = $1, name = $2, interest_rate = $3,
		 max_per_bag = $4, is_active = $5, updated_at = now()
		 WHERE id = $6`,
		lt.CompanyID, lt.Name, lt.InterestRate, lt.MaxPerBag, lt.Active, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loan_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("loan: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInto(row pgx.Row, lt *LoanType, total *int) error {
	var createdAt, updatedAt pgtype.Timestamptz
	dest := []any{&lt.ID, &lt.CompanyID, &lt.Name, &lt.InterestRate, &lt.MaxPerBag,
		&lt.Active, &createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	if createdAt.Valid {
		lt.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		lt.UpdatedAt = updatedAt.Time
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
