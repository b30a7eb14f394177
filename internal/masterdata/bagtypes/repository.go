package bagtypes

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
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]BagType, int, error)
	Get(ctx context.Context, id int64) (*BagType, error)
	Create(ctx context.Context, bt BagType) (*BagType, error)
	Update(ctx context.Context, id int64, bt BagType) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const bagTypeColumns = `id, session, name, per_bag_rent, per_kg_rent, agent_bag_rent, agent_kg_rent,
	party_bag_rent, party_kg_rent, per_bag_loan, empty_bag_rate, fan_charge, is_default, is_active,
	created_at, updated_at`

func (r *repository) Base() sq.SelectBuilder {
	return psql.Select(
		"bag_types.id", "bag_types.session", "bag_types.name",
		"bag_types.per_bag_rent", "bag_types.per_kg_rent",
		"bag_types.agent_bag_rent", "bag_types.agent_kg_rent",
		"bag_types.party_bag_rent", "bag_types.party_kg_rent",
		"bag_types.per_bag_loan", "bag_types.empty_bag_rate", "bag_types.fan_charge",
		"bag_types.is_default", "bag_types.is_active",
		"bag_types.created_at", "bag_types.updated_at",
		"count(*) OVER() AS total",
	).From("bag_types")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]BagType, int, error) {
	if filters.Search != "" {
		q = q.Where(sq.ILike{"bag_types.name": "%" + filters.Search + "%"})
	}
	q = q.OrderBy(sortOrder(filters.SortBy, filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("bagtypes: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("bagtypes: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []BagType
		total int
	)
	for rows.Next() {
		var (
			bt BagType
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

func (r *repository) Get(ctx context.Context, id int64) (*BagType, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+bagTypeColumns+` FROM bag_types WHERE id = $1`, id)
	var bt BagType
	if err := scanInto(row, &bt, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bt, nil
}

func (r *repository) Create(ctx context.Context, bt BagType) (*BagType, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO bag_types (session, name, per_bag_rent, per_kg_rent, agent_bag_rent, agent_kg_rent,
		 party_bag_rent, party_kg_rent, per_bag_loan, empty_bag_rate, fan_charge, is_default, is_active,
		 created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		 RETURNING `+bagTypeColumns,
		bt.Session, bt.Name, bt.PerBagRent, bt.PerKgRent, bt.AgentBagRent, bt.AgentKgRent,
		bt.PartyBagRent, bt.PartyKgRent, bt.PerBagLoan, bt.EmptyBagRate, bt.FanCharge,
		bt.Default, bt.Active, now)
	var created BagType
	if err := scanInto(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id int64, bt BagType) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bag_types SET session = $1, name = $2, per_bag_rent = $3, per_kg_rent = $4,
		 agent_bag_rent = $5, agent_kg_rent = $6, party_bag_rent = $7, party_kg_rent = $8,
		 per_bag_loan = $9, empty_bag_rate = $10, fan_charge = $11, is_default = $12,
		 is_active = $13, updated_at = now()
		 WHERE id = $14`,
		bt.Session, bt.Name, bt.PerBagRent, bt.PerKgRent, bt.AgentBagRent, bt.AgentKgRent,
		bt.PartyBagRent, bt.PartyKgRent, bt.PerBagLoan, bt.EmptyBagRate, bt.FanCharge,
		bt.Default, bt.Active, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bag_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bagtypes: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInto(row pgx.Row, bt *BagType, total *int) error {
	var createdAt, updatedAt pgtype.Timestamptz
	dest := []any{&bt.ID, &bt.Session, &bt.Name, &bt.PerBagRent, &bt.PerKgRent,
		&bt.AgentBagRent, &bt.AgentKgRent, &bt.PartyBagRent, &bt.PartyKgRent,
		&bt.PerBagLoan, &bt.EmptyBagRate, &bt.FanCharge, &bt.Default, &bt.Active,
		&createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
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
	switch sortBy {
	case "session":
		return "bag_types.session " + dir
	case "created_at":
		return "bag_types.created_at " + dir
	default:
		return "bag_types.name " + dir
	}
}
