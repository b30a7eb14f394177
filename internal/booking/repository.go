package booking

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
	List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Booking, int, error)
	Get(ctx context.Context, id int64) (*Booking, error)
	PartyCompany(ctx context.Context, partyID int64) (*int64, error)
	Create(ctx context.Context, b Booking) (*Booking, error)
	Update(ctx context.Context, id int64, b Booking) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Base joins the owning party so the scope predicate can reference
// parties.company_id directly.
func (r *repository) Base() sq.SelectBuilder {
	return psql.Select(
		"bookings.id", "bookings.party_id", "bookings.product_id", "bookings.bag_type_id",
		"bookings.booking_no", "bookings.session", "bookings.quantity", "bookings.weight",
		"bookings.booked_at", "bookings.notes", "bookings.created_at", "bookings.updated_at",
		"parties.company_id",
		"count(*) OVER() AS total",
	).From("bookings").
		LeftJoin("parties ON parties.id = bookings.party_id")
}

func (r *repository) List(ctx context.Context, q sq.SelectBuilder, filters shared.ListFilters) ([]Booking, int, error) {
	if filters.Search != "" {
		q = q.Where(sq.ILike{"bookings.booking_no": "%" + filters.Search + "%"})
	}
	if filters.CompanyID != nil {
		q = q.Where(sq.Eq{"parties.company_id": *filters.CompanyID})
	}
	q = q.OrderBy(sortOrder(filters.SortBy, filters.SortDir)).
		Limit(uint64(filters.Limit)).
		Offset(uint64((filters.Page - 1) * filters.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("booking: build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("booking: list: %w", err)
	}
	defer rows.Close()

	var (
		out   []Booking
		total int
	)
	for rows.Next() {
		var (
			b Booking
			t int
		)
		if err := scanInto(rows, &b, &t); err != nil {
			return nil, 0, err
		}
		total = t
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Booking, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT bookings.id, bookings.party_id, bookings.product_id, bookings.bag_type_id,
		        bookings.booking_no, bookings.session, bookings.quantity, bookings.weight,
		        bookings.booked_at, bookings.notes, bookings.created_at, bookings.updated_at,
		        parties.company_id
		 FROM bookings
		 LEFT JOIN parties ON parties.id = bookings.party_id
		 WHERE bookings.id = $1`, id)
	var b Booking
	if err := scanInto(row, &b, nil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// PartyCompany resolves the company a party belongs to, for row
// authorization before the booking row exists.
func (r *repository) PartyCompany(ctx context.Context, partyID int64) (*int64, error) {
	var companyID *int64
	err := r.pool.QueryRow(ctx, `SELECT company_id FROM parties WHERE id = $1`, partyID).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("booking: party company: %w", err)
	}
	return companyID, nil
}

func (r *repository) Create(ctx context.Context, b Booking) (*Booking, error) {
	now := time.Now().UTC()
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO bookings (party_id, product_id, bag_type_id, booking_no, session, quantity, weight, booked_at, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		 RETURNING id`,
		b.PartyID, b.ProductID, b.BagTypeID, b.BookingNo, b.Session, b.Quantity, b.Weight, b.BookedAt, b.Notes, now).Scan(&id)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id int64, b Booking) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings SET party_id = $1, product_id = $2, bag_type_id = $3, booking_no = $4,
		 session = $5, quantity = $6, weight = $7, booked_at = $8, notes = $9, updated_at = now()
		 WHERE id = $10`,
		b.PartyID, b.ProductID, b.BagTypeID, b.BookingNo, b.Session, b.Quantity, b.Weight, b.BookedAt, b.Notes, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("booking: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInto(row pgx.Row, b *Booking, total *int) error {
	var (
		notes                          pgtype.Text
		bookedAt, createdAt, updatedAt pgtype.Timestamptz
	)
	dest := []any{&b.ID, &b.PartyID, &b.ProductID, &b.BagTypeID, &b.BookingNo,
		&b.Session, &b.Quantity, &b.Weight, &bookedAt, &notes, &createdAt, &updatedAt,
		&b.CompanyID}
	if total != nil {
		dest = append(dest, total)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	b.Notes = notes.String
	if bookedAt.Valid {
		b.BookedAt = bookedAt.Time
	}
	if createdAt.Valid {
		b.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		b.UpdatedAt = updatedAt.Time
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
	case "booking_no":
		return "bookings.booking_no " + dir
	case "session":
		return "bookings.session " + dir
	default:
		return "bookings.booked_at " + dir
	}
}
