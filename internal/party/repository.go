package party

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

type TypeRepository interface {
	Base() sq.SelectBuilder
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]PartyType, int, error)
	Get(ctx context.Context, id int64) (*PartyType, error)
	Create(ctx context.Context, pt PartyType) (*PartyType, error)
	Update(ctx context.Context, id int64, pt PartyType) error
	Delete(ctx context.Context, id int64) error
}

type PartyRepository interface {
	Base() sq.SelectBuilder
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Party, int, error)
	Get(ctx context.Context, id int64) (*Party, error)
	Create(ctx context.Context, p Party) (*Party, error)
	Update(ctx context.Context, id int64, p Party) error
	Delete(ctx context.Context, id int64) error
}

type typeRepository struct {
	pool *pgxpool.Pool
}

func NewTypeRepository(pool *pgxpool.Pool) TypeRepository {
	return &typeRepository{pool: pool}
}

func (r *typeRepository) Base() sq.SelectBuilder {
	return psql.Select(
		"party_types.id", "party_types.company_id", "party_types.name",
		"party_types.description", "party_types.created_at", "party_types.updated_at",
		"count(*) OVER() AS total",
	).From("party_types")
}

func (r *typeRepository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]PartyType, int, error) {
	if filters.Search != "" {
		q = q.Where(sq.ILike{"party_types.name": "%" + filters.Search + "%"})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"party_types.company_id": *filters.CompanyID})
	}
	q = q.OrderBy("party_types.name " + direction(filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("party: build type list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("party: list types: %w", err)
	}
	defer rows.Close()

	var (
		out   []PartyType
		total int
	)
	for rows.Next() {
		var (
			pt PartyType
			t  int
		)
		if err := scanType(rows, &pt, &t); err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, pt)
	}
	return out, total, rows.Err()
}

func (r *typeRepository) Get(ctx context.Context, id int64) (*PartyType, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, description, created_at, updated_at
		 FROM party_types WHERE id = $1`, id)
	var pt PartyType
	if err := scanType(row, &pt, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pt, nil
}

func (r *typeRepository) Create(ctx context.Context, pt PartyType) (*PartyType, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO party_types (company_id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id, company_id, name, description, created_at, updated_at`,
		pt.CompanyID, pt.Name, pt.Description, now)
	var created PartyType
	if err := scanType(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *typeRepository) Update(ctx context.Context, id int64, pt PartyType) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE party_types SET company_id = $1, name = $2, description = $3, updated_at = now()
		 WHERE id = $4`,
		pt.CompanyID, pt.Name, pt.Description, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *typeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM party_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("party: delete type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type partyRepository struct {
	pool *pgxpool.Pool
}

func NewPartyRepository(pool *pgxpool.Pool) PartyRepository {
	return &partyRepository{pool: pool}
}

func (r *partyRepository) Base() sq.SelectBuilder {
	return psql.Select(
		"parties.id", "parties.company_id", "parties.party_type_id", "parties.name",
		"parties.father_name", "parties.phone", "parties.address", "parties.nid",
		"parties.is_active", "parties.created_at", "parties.updated_at",
		"count(*) OVER() AS total",
	).From("parties")
}

func (r *partyRepository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Party, int, error) {
	if filters.Search != "" {
		pat := "%" + filters.Search + "%"
		q = q.Where(sq.Or{sq.ILike{"parties.name": pat}, sq.ILike{"parties.phone": pat}})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"parties.company_id": *filters.CompanyID})
	}
	q = q.OrderBy("parties.name " + direction(filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("party: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("party: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []Party
		total int
	)
	for rows.Next() {
		var (
			p Party
			t int
		)
		if err := scanParty(rows, &p, &t); err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *partyRepository) Get(ctx context.Context, id int64) (*Party, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, party_type_id, name, father_name, phone, address, nid, is_active, created_at, updated_at
		 FROM parties WHERE id = $1`, id)
	var p Party
	if err := scanParty(row, &p, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *partyRepository) Create(ctx context.Context, p Party) (*Party, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO parties (company_id, party_type_id, name, father_name, phone, address, nid, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING id, company_id, party_type_id, name, father_name, phone, address, nid, is_active, created_at, updated_at`,
		p.CompanyID, p.PartyTypeID, p.Name, p.FatherName, p.Phone, p.Address, p.NID, p.Active, now)
	var created Party
	if err := scanParty(row, &created, nil); err != nil {
		return nil, mapWriteError(err)
	}
	return &created, nil
}

func (r *partyRepository) Update(ctx context.Context, id int64, p Party) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE parties SET company_id = $1, party_type_id = $2, name = $3, father_name = $4,
		 phone = $5, address = $6, nid = $7, is_active = $8, updated_at = now()
		 WHERE id = $9`,
		p.CompanyID, p.PartyTypeID, p.Name, p.FatherName, p.Phone, p.Address, p.NID, p.Active, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *partyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM parties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("party: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanType(row pgx.Row, pt *PartyType, total *int) error {
	var (
		description          pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)
	dest := []any{&pt.ID, &pt.CompanyID, &pt.Name, &description, &createdAt, &updatedAt}
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

func scanParty(row pgx.Row, p *Party, total *int) error {
	var (
		fatherName, phone, address, nid pgtype.Text
		createdAt, updatedAt            pgtype.Timestamptz
	)
	dest := []any{&p.ID, &p.CompanyID, &p.PartyTypeID, &p.Name, &fatherName,
		&phone, &address, &nid, &p.Active, &createdAt, &updatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	p.FatherName = fatherName.String
	p.Phone = phone.String
	p.Address = address.String
	p.NID = nid.String
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

func direction(sortDir string) string {
	if sortDir == shared.SortDesc {
		return "DESC"
	}
	return "ASC"
}
