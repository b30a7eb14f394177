package authz

import (
	"context"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
)

// Scoper composes the module-level allow decision with the tenant scope
// predicate to produce the query handed back to the CRUD layer. It is a
// stateless per-request pipeline: its only input beyond the arguments is one
// read of the permission-set store.
type Scoper struct {
	sets   SetSource
	logger *slog.Logger
}

// NewScoper constructs a Scoper.
func NewScoper(sets SetSource, logger *slog.Logger) *Scoper {
	return &Scoper{sets: sets, logger: logger}
}

// AuthorizedQuery returns base restricted to the rows the user may see.
//
// Superusers and staff get base unchanged. A user without the module
// permission gets a well-formed empty result for view and a DeniedError for
// write actions: listing degrades gracefully, writes fail loudly. Otherwise
// the scope filter is the union across all of the user's permission sets.
// When the permission passed but the scope is empty, entities without tenant
// columns (ScopeRequired false) stay unfiltered; everything else resolves to
// empty.
func (s *Scoper) AuthorizedQuery(ctx context.Context, user Principal, module Module, submodule string, action Action, base sq.SelectBuilder, paths DimensionPaths) (sq.SelectBuilder, error) {
	if user == nil {
		return base, ErrUnauthenticated
	}
	if user.IsSuperuser() || user.IsStaff() {
		return base, nil
	}

	sets, err := s.sets.SetsForUser(ctx, user.GetID())
	if err != nil {
		return base, err
	}

	if submodule != "" && action != ActionNone && !grantsAny(sets, module, submodule, action) {
		if action == ActionView {
			return base.Where(matchNothing), nil
		}
		return base, &DeniedError{Module: submodule, Action: action}
	}

	if !paths.Tenanted() {
		return base, nil
	}
	if !hasCompanies(sets) && !paths.ScopeRequired {
		return base, nil
	}
	return base.Where(ScopeFilter(sets, paths)), nil
}

// AuthorizeRow gates a single row on detail, update and delete paths. A row
// outside the user's tenant scope is a denial, not a silent filter: writes
// must never no-op on a scope mismatch.
func (s *Scoper) AuthorizeRow(ctx context.Context, user Principal, module Module, submodule string, action Action, row RowScope, paths DimensionPaths) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if user.IsSuperuser() || user.IsStaff() {
		return nil
	}

	sets, err := s.sets.SetsForUser(ctx, user.GetID())
	if err != nil {
		return err
	}

	if submodule != "" && action != ActionNone && !grantsAny(sets, module, submodule, action) {
		return &DeniedError{Module: submodule, Action: action}
	}

	if !paths.Tenanted() {
		return nil
	}
	if !hasCompanies(sets) && !paths.ScopeRequired {
		return nil
	}
	if !ScopeAllowsRow(sets, row, paths) {
		if s.logger != nil {
			s.logger.Warn("row outside tenant scope",
				slog.Int64("user_id", user.GetID()),
				slog.String("submodule", submodule),
				slog.String("action", string(action)))
		}
		return &DeniedError{Module: submodule, Action: action}
	}
	return nil
}

func hasCompanies(sets []PermissionSet) bool {
	for _, set := range sets {
		if len(set.Companies) > 0 {
			return true
		}
	}
	return false
}
