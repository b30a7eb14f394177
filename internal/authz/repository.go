package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSetNotFound indicates the requested permission set does not exist.
var ErrSetNotFound = errors.New("authz: permission set not found")

// moduleColumns fixes the storage order of the per-module JSON columns.
var moduleColumns = []Module{
	ModuleProduct,
	ModuleCompany,
	ModuleHR,
	ModuleAccounts,
	ModuleInventory,
	ModuleSettings,
	ModulePartyType,
	ModuleSR,
	ModuleBooking,
	ModuleLoan,
	ModulePallot,
	ModuleDelivery,
	ModuleLedger,
}

func moduleColumnList() string {
	cols := ""
	for i, m := range moduleColumns {
		if i > 0 {
			cols += ", "
		}
		cols += string(m) + "_module"
	}
	return cols
}

var selectColumns = "id, user_id, role_id, companies, business_types, factories, " +
	moduleColumnList() + ", created_at, updated_at"

// Repository persists permission sets in Postgres.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository constructs a Repository backed by the provided pool.
func NewRepository(pool *pgxpool.Pool, logger *slog.Logger) *Repository {
	return &Repository{pool: pool, logger: logger}
}

// SetsForUser returns every permission set of a user, oldest first. Malformed
// stored blobs degrade to empty permissions and are logged, never surfaced.
func (r *Repository) SetsForUser(ctx context.Context, userID int64) ([]PermissionSet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM permission_sets WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("authz: query sets: %w", err)
	}
	defer rows.Close()

	var sets []PermissionSet
	for rows.Next() {
		set, err := r.scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// ListSets returns every stored permission set with factory grants exactly as
// persisted, skipping the read-path normalization SetsForUser applies. The
// data-quality scan depends on the stored shape: a normalized read would hide
// the very rows it looks for.
func (r *Repository) ListSets(ctx context.Context) ([]PermissionSet, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM permission_sets ORDER BY user_id, id`)
	if err != nil {
		return nil, fmt.Errorf("authz: list sets: %w", err)
	}
	defer rows.Close()

	var sets []PermissionSet
	for rows.Next() {
		set, err := r.scanSetRaw(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// UpsertParams carries a full permission-set replacement for one user.
type UpsertParams struct {
	UserID        int64
	RoleID        *int64
	Companies     []int64
	BusinessTypes map[int64][]int64
	Factories     map[int64][]FactoryPair
	Modules       map[Module]ModuleBlob
}

// Upsert creates or fully replaces the user's permission set in a single
// statement, so readers never observe a half-updated record. Factory pairs
// are normalized (malformed dropped, duplicates collapsed) before persisting.
func (r *Repository) Upsert(ctx context.Context, params UpsertParams) (PermissionSet, error) {
	companies := params.Companies
	if companies == nil {
		companies = []int64{}
	}
	companiesJSON, err := json.Marshal(companies)
	if err != nil {
		return PermissionSet{}, fmt.Errorf("authz: encode companies: %w", err)
	}
	btJSON, err := encodeCompanyKeyed(params.BusinessTypes)
	if err != nil {
		return PermissionSet{}, fmt.Errorf("authz: encode business types: %w", err)
	}
	factoriesJSON, err := encodeCompanyKeyed(NormalizeFactories(params.Factories))
	if err != nil {
		return PermissionSet{}, fmt.Errorf("authz: encode factories: %w", err)
	}

	args := []any{params.UserID, params.RoleID, companiesJSON, btJSON, factoriesJSON}
	insertCols := "user_id, role_id, companies, business_types, factories"
	placeholders := "$1, $2, $3, $4, $5"
	updates := "role_id = EXCLUDED.role_id, companies = EXCLUDED.companies, " +
		"business_types = EXCLUDED.business_types, factories = EXCLUDED.factories"
	for i, m := range moduleColumns {
		blob := params.Modules[m]
		if blob == nil {
			blob = ModuleBlob{}
		}
		blobJSON, err := json.Marshal(blob)
		if err != nil {
			return PermissionSet{}, fmt.Errorf("authz: encode %s module: %w", m, err)
		}
		col := string(m) + "_module"
		args = append(args, blobJSON)
		insertCols += ", " + col
		placeholders += fmt.Sprintf(", $%d", i+6)
		updates += fmt.Sprintf(", %s = EXCLUDED.%s", col, col)
	}

	query := `INSERT INTO permission_sets (` + insertCols + `, created_at, updated_at)
		VALUES (` + placeholders + `, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET ` + updates + `, updated_at = now()
		RETURNING ` + selectColumns

	row := r.pool.QueryRow(ctx, query, args...)
	return r.scanSet(row)
}

// DeleteForUser removes every permission set of a user.
func (r *Repository) DeleteForUser(ctx context.Context, userID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permission_sets WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("authz: delete sets: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}
	return nil
}

// scanSet reads a row for the request path: factory pairs are normalized so
// the evaluator and scoper only ever see valid deduplicated grants.
func (r *Repository) scanSet(row pgx.Row) (PermissionSet, error) {
	set, err := r.scanSetRaw(row)
	if err != nil {
		return set, err
	}
	set.Factories = NormalizeFactories(set.Factories)
	return set, nil
}

// scanSetRaw reads a row as stored. Malformed columns still degrade to empty
// with a warning, but factory pairs keep their persisted shape.
func (r *Repository) scanSetRaw(row pgx.Row) (PermissionSet, error) {
	var (
		set                  PermissionSet
		roleID               pgtype.Int8
		companiesRaw         []byte
		btRaw                []byte
		factoriesRaw         []byte
		moduleRaw            = make([][]byte, len(moduleColumns))
		createdAt, updatedAt pgtype.Timestamptz
	)
	dest := []any{&set.ID, &set.UserID, &roleID, &companiesRaw, &btRaw, &factoriesRaw}
	for i := range moduleRaw {
		dest = append(dest, &moduleRaw[i])
	}
	dest = append(dest, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PermissionSet{}, ErrSetNotFound
		}
		return PermissionSet{}, fmt.Errorf("authz: scan set: %w", err)
	}

	if roleID.Valid {
		v := roleID.Int64
		set.RoleID = &v
	}
	if createdAt.Valid {
		set.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		set.UpdatedAt = updatedAt.Time
	}

	var err error
	if set.Companies, err = decodeCompanies(companiesRaw); err != nil {
		r.warnMalformed(set.UserID, "companies")
	}
	if set.BusinessTypes, err = decodeBusinessTypes(btRaw); err != nil {
		r.warnMalformed(set.UserID, "business_types")
	}
	if set.Factories, err = decodeFactories(factoriesRaw); err != nil {
		r.warnMalformed(set.UserID, "factories")
	}
	set.Modules = make(map[Module]ModuleBlob, len(moduleColumns))
	for i, m := range moduleColumns {
		blob, err := decodeModuleBlob(moduleRaw[i])
		if err != nil {
			r.warnMalformed(set.UserID, string(m)+"_module")
		}
		set.Modules[m] = blob
	}
	return set, nil
}

func (r *Repository) warnMalformed(userID int64, column string) {
	if r.logger != nil {
		r.logger.Warn("malformed permission data treated as empty",
			slog.Int64("user_id", userID),
			slog.String("column", column))
	}
}
