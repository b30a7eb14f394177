package authz

import (
	sq "github.com/Masterminds/squirrel"
)

// DimensionPaths declares which columns of the queried entity carry the
// tenant dimensions. A path may reference a joined table's column (e.g.
// "p.company_id" when the base query joins parties) to scope through a
// one-hop relation; an empty path means the entity does not carry that
// dimension.
type DimensionPaths struct {
	Company      string
	BusinessType string
	Factory      string

	// ScopeRequired controls the empty-scope policy: when true, a user with
	// module permission but no companies sees nothing; when false (pure
	// lookup tables without tenant columns) the query stays unfiltered.
	ScopeRequired bool
}

// Tenanted reports whether the entity carries any tenant dimension at all.
func (d DimensionPaths) Tenanted() bool {
	return d.Company != "" || d.BusinessType != "" || d.Factory != ""
}

// matchNothing is the deny-all predicate. squirrel renders an empty Or the
// same way, but the intent reads better spelled out.
var matchNothing = sq.Expr("(1=0)")

// ScopeFilter builds the row-visibility predicate for the given permission
// sets: the OR across sets and across each set's companies of
//
//	company = id AND business_type ∈ allowed AND (factory, business_type) ∈ pairs
//
// where an empty business-type or factory list for a company leaves that
// dimension unconstrained. An empty overall scope yields a predicate that
// matches nothing.
func ScopeFilter(sets []PermissionSet, paths DimensionPaths) sq.Sqlizer {
	or := sq.Or{}
	for _, set := range sets {
		for _, companyID := range set.Companies {
			or = append(or, companyPredicate(set, companyID, paths))
		}
	}
	if len(or) == 0 {
		return matchNothing
	}
	return or
}

func companyPredicate(set PermissionSet, companyID int64, paths DimensionPaths) sq.Sqlizer {
	pred := sq.And{}
	if paths.Company != "" {
		pred = append(pred, sq.Eq{paths.Company: companyID})
	}
	if paths.BusinessType != "" {
		if bts := set.BusinessTypes[companyID]; len(bts) > 0 {
			pred = append(pred, sq.Eq{paths.BusinessType: bts})
		}
	}
	if paths.Factory != "" && paths.BusinessType != "" {
		if pairs := set.Factories[companyID]; len(pairs) > 0 {
			// Composite match: a factory is only visible together with the
			// business type it was paired to, never on its own.
			pairOr := make(sq.Or, 0, len(pairs))
			for _, p := range pairs {
				pairOr = append(pairOr, sq.And{
					sq.Eq{paths.Factory: p.FactoryID},
					sq.Eq{paths.BusinessType: p.BusinessTypeID},
				})
			}
			pred = append(pred, pairOr)
		}
	}
	return pred
}

// RowScope carries the tenant dimension values of a single row for
// object-level authorization on detail and write paths. Nil means the row
// does not populate that dimension.
type RowScope struct {
	CompanyID      *int64
	BusinessTypeID *int64
	FactoryID      *int64
}

// ScopeAllowsRow is the in-memory mirror of ScopeFilter: it reports whether
// any of the user's per-company predicates matches the row.
func ScopeAllowsRow(sets []PermissionSet, row RowScope, paths DimensionPaths) bool {
	for _, set := range sets {
		for _, companyID := range set.Companies {
			if rowMatches(set, companyID, row, paths) {
				return true
			}
		}
	}
	return false
}

func rowMatches(set PermissionSet, companyID int64, row RowScope, paths DimensionPaths) bool {
	if paths.Company != "" {
		if row.CompanyID == nil || *row.CompanyID != companyID {
			return false
		}
	}
	if paths.BusinessType != "" {
		if bts := set.BusinessTypes[companyID]; len(bts) > 0 {
			if row.BusinessTypeID == nil || !containsID(bts, *row.BusinessTypeID) {
				return false
			}
		}
	}
	if paths.Factory != "" && paths.BusinessType != "" {
		if pairs := set.Factories[companyID]; len(pairs) > 0 {
			if row.FactoryID == nil || row.BusinessTypeID == nil {
				return false
			}
			if !containsPair(pairs, FactoryPair{FactoryID: *row.FactoryID, BusinessTypeID: *row.BusinessTypeID}) {
				return false
			}
		}
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsPair(pairs []FactoryPair, p FactoryPair) bool {
	for _, v := range pairs {
		if v == p {
			return true
		}
	}
	return false
}
