package companies

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

type mockRepository struct {
	companies map[int64]*Company
	nextID    int64

	lastListQuery sq.SelectBuilder
}

func newMockRepository() *mockRepository {
	return &mockRepository{companies: make(map[int64]*Company), nextID: 1}
}

func (m *mockRepository) Base() sq.SelectBuilder {
	return sq.Select("*").From("companies")
}

func (m *mockRepository) List(_ context.Context, q sq.SelectBuilder, _ shared.ListFilters) ([]Company, int, error) {
	m.lastListQuery = q
	out := make([]Company, 0, len(m.companies))
	for _, c := range m.companies {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockRepository) Create(_ context.Context, c Company) (*Company, error) {
	c.ID = m.nextID
	m.nextID++
	m.companies[c.ID] = &c
	clone := c
	return &clone, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, c Company) error {
	if _, ok := m.companies[id]; !ok {
		return shared.ErrNotFound
	}
	c.ID = id
	m.companies[id] = &c
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.companies[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.companies, id)
	return nil
}

type testUser struct {
	id        int64
	superuser bool
	staff     bool
}

func (u testUser) GetID() int64      { return u.id }
func (u testUser) IsSuperuser() bool { return u.superuser }
func (u testUser) IsStaff() bool     { return u.staff }

type stubSets struct {
	sets []authz.PermissionSet
}

func (s *stubSets) SetsForUser(context.Context, int64) ([]authz.PermissionSet, error) {
	return s.sets, nil
}

// companySets grants company permissions over the given company IDs.
func companySets(perms authz.SubmodulePermissions, companies ...int64) []authz.PermissionSet {
	return []authz.PermissionSet{{
		UserID:    7,
		Companies: companies,
		Modules: map[authz.Module]authz.ModuleBlob{
			authz.ModuleCompany: {"company": perms},
		},
	}}
}

func newTestService(sets []authz.PermissionSet) (*Service, *mockRepository) {
	repo := newMockRepository()
	scoper := authz.NewScoper(&stubSets{sets: sets}, nil)
	return NewService(repo, scoper), repo
}

var fullPerms = authz.SubmodulePermissions{Create: true, View: true, Edit: true, Delete: true}

func TestListScopesOnPrimaryKey(t *testing.T) {
	svc, repo := newTestService(companySets(fullPerms, 1, 3))

	_, _, err := svc.List(context.Background(), testUser{id: 7}, shared.ListFilters{Page: 1, Limit: 20})
	require.NoError(t, err)

	sql, args, err := repo.lastListQuery.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE ((companies.id = ?) OR (companies.id = ?))")
	assert.Equal(t, []interface{}{int64(1), int64(3)}, args)
}

func TestGetOutsideGrantedCompaniesDenied(t *testing.T) {
	svc, repo := newTestService(companySets(fullPerms, 1))
	repo.companies[2] = &Company{ID: 2, Name: "Other Warehouse Ltd"}

	_, err := svc.Get(context.Background(), testUser{id: 7}, 2)
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
}

func TestCreateGatedOnGrantNotScope(t *testing.T) {
	// The new row's ID does not exist yet, so creation cannot be scope
	// checked; the create grant decides.
	svc, _ := newTestService(companySets(authz.SubmodulePermissions{Create: true}))

	created, err := svc.Create(context.Background(), testUser{id: 7}, Company{Name: "Gudam One"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestCreateWithoutGrantDenied(t *testing.T) {
	svc, repo := newTestService(companySets(authz.SubmodulePermissions{View: true}, 1))

	_, err := svc.Create(context.Background(), testUser{id: 7}, Company{Name: "Gudam One"})
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
	assert.Empty(t, repo.companies)
}

func TestUpdateOutsideGrantedCompaniesDenied(t *testing.T) {
	svc, repo := newTestService(companySets(fullPerms, 1))
	repo.companies[2] = &Company{ID: 2, Name: "Other Warehouse Ltd"}

	err := svc.Update(context.Background(), testUser{id: 7}, 2, Company{Name: "Renamed"})
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
	assert.Equal(t, "Other Warehouse Ltd", repo.companies[2].Name)
}

func TestValidateRequiresName(t *testing.T) {
	svc, _ := newTestService(companySets(fullPerms, 1))

	_, err := svc.Create(context.Background(), testUser{id: 7}, Company{})
	assert.ErrorIs(t, err, shared.ErrRequiredField)
}

func TestSuperuserSeesEverything(t *testing.T) {
	svc, repo := newTestService(nil)
	repo.companies[9] = &Company{ID: 9, Name: "Anywhere"}

	got, err := svc.Get(context.Background(), testUser{id: 1, superuser: true}, 9)
	require.NoError(t, err)
	assert.Equal(t, "Anywhere", got.Name)
}
