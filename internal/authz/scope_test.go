package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

var testPaths = DimensionPaths{
	Company:       "c.company_id",
	BusinessType:  "c.business_type_id",
	ScopeRequired: true,
}

func TestScopeFilterCompaniesAndBusinessTypes(t *testing.T) {
	sets := []PermissionSet{{
		Companies:     []int64{1, 2},
		BusinessTypes: map[int64][]int64{1: {5}},
	}}

	sql, args, err := ScopeFilter(sets, testPaths).ToSql()
	require.NoError(t, err)
	// Company 1 is narrowed to its business types, company 2 is wide open.
	assert.Equal(t, "((c.company_id = ? AND c.business_type_id IN (?)) OR (c.company_id = ?))", sql)
	assert.Equal(t, []interface{}{int64(1), int64(5), int64(2)}, args)
}

func TestScopeFilterEmptyScopeMatchesNothing(t *testing.T) {
	sql, _, err := ScopeFilter(nil, testPaths).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(1=0)", sql)

	sql, _, err = ScopeFilter([]PermissionSet{{}}, testPaths).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(1=0)", sql)
}

func TestScopeFilterFactoryPairsComposite(t *testing.T) {
	paths := DimensionPaths{
		Company:      "f.company_id",
		BusinessType: "f.business_type_id",
		Factory:      "f.factory_id",
	}
	sets := []PermissionSet{{
		Companies:     []int64{1},
		BusinessTypes: map[int64][]int64{1: {5}},
		Factories:     map[int64][]FactoryPair{1: {{FactoryID: 7, BusinessTypeID: 5}}},
	}}

	sql, args, err := ScopeFilter(sets, paths).ToSql()
	require.NoError(t, err)
	// The factory must match together with its paired business type.
	assert.Contains(t, sql, "(f.factory_id = ? AND f.business_type_id = ?)")
	assert.Equal(t, []interface{}{int64(1), int64(5), int64(7), int64(5)}, args)
}

func TestScopeFilterCompanyOnlyPaths(t *testing.T) {
	paths := DimensionPaths{Company: "parties.company_id", ScopeRequired: true}
	sets := []PermissionSet{{
		Companies:     []int64{3},
		BusinessTypes: map[int64][]int64{3: {9}},
	}}

	sql, args, err := ScopeFilter(sets, paths).ToSql()
	require.NoError(t, err)
	// Business-type grants are irrelevant to an entity without the column.
	assert.Equal(t, "((parties.company_id = ?))", sql)
	assert.Equal(t, []interface{}{int64(3)}, args)
}

func TestScopeAllowsRowCompanyMismatch(t *testing.T) {
	sets := []PermissionSet{{Companies: []int64{1}}}

	assert.True(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(1)}, testPaths))
	assert.False(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(2)}, testPaths))
	assert.False(t, ScopeAllowsRow(sets, RowScope{}, testPaths))
}

func TestScopeAllowsRowBusinessTypeNarrowing(t *testing.T) {
	sets := []PermissionSet{{
		Companies:     []int64{1},
		BusinessTypes: map[int64][]int64{1: {5}},
	}}

	assert.True(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(1), BusinessTypeID: int64p(5)}, testPaths))
	assert.False(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(1), BusinessTypeID: int64p(6)}, testPaths))
	// Missing business type on the row fails a narrowed company.
	assert.False(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(1)}, testPaths))
}

func TestScopeAllowsRowEmptyListLeavesDimensionOpen(t *testing.T) {
	sets := []PermissionSet{{Companies: []int64{1}}}

	assert.True(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(1), BusinessTypeID: int64p(42)}, testPaths))
}

func TestScopeAllowsRowFactoryPair(t *testing.T) {
	paths := DimensionPaths{
		Company:      "f.company_id",
		BusinessType: "f.business_type_id",
		Factory:      "f.id",
	}
	sets := []PermissionSet{{
		Companies: []int64{1},
		Factories: map[int64][]FactoryPair{1: {{FactoryID: 7, BusinessTypeID: 5}}},
	}}

	assert.True(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(1), BusinessTypeID: int64p(5), FactoryID: int64p(7)}, paths))
	assert.False(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(1), BusinessTypeID: int64p(6), FactoryID: int64p(7)}, paths))
	assert.False(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(1), BusinessTypeID: int64p(5), FactoryID: int64p(8)}, paths))
}

func TestScopeAllowsRowUnionsAcrossSets(t *testing.T) {
	sets := []PermissionSet{
		{Companies: []int64{1}},
		{Companies: []int64{2}},
	}

	assert.True(t, ScopeAllowsRow(sets, RowScope{CompanyID: int64p(2)}, testPaths))
}
