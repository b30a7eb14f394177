package accounts

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
	heads  map[int64]*AccountHead
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{heads: make(map[int64]*AccountHead), nextID: 1}
}

func (m *mockRepository) Base() sq.SelectBuilder {
	return sq.Select("*").From("account_heads")
}

func (m *mockRepository) List(_ context.Context, _ sq.SelectBuilder, _ shared.ListFilters) ([]AccountHead, int, error) {
	out := make([]AccountHead, 0, len(m.heads))
	for _, a := range m.heads {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (*AccountHead, error) {
	a, ok := m.heads[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (m *mockRepository) Create(_ context.Context, a AccountHead) (*AccountHead, error) {
	a.ID = m.nextID
	m.nextID++
	m.heads[a.ID] = &a
	clone := a
	return &clone, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, a AccountHead) error {
	if _, ok := m.heads[id]; !ok {
		return shared.ErrNotFound
	}
	a.ID = id
	m.heads[id] = &a
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.heads[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.heads, id)
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

func int64p(v int64) *int64 { return &v }

func accountsSets(companies ...int64) []authz.PermissionSet {
	return []authz.PermissionSet{{
		UserID:    7,
		Companies: companies,
		Modules: map[authz.Module]authz.ModuleBlob{
			authz.ModuleAccounts: {
				"account_head": {Create: true, View: true, Edit: true, Delete: true},
			},
		},
	}}
}

func newTestService(companies ...int64) (*Service, *mockRepository) {
	repo := newMockRepository()
	scoper := authz.NewScoper(&stubSets{sets: accountsSets(companies...)}, nil)
	return NewService(repo, scoper), repo
}

func TestCreateWithParentSameCompany(t *testing.T) {
	svc, repo := newTestService(1)
	parent, err := repo.Create(context.Background(), AccountHead{CompanyID: int64p(1), Name: "Assets"})
	require.NoError(t, err)

	child, err := svc.Create(context.Background(), testUser{id: 7}, AccountHead{
		CompanyID: int64p(1),
		ParentID:  &parent.ID,
		Name:      "Bank",
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *child.ParentID)
}

func TestCreateParentFromOtherCompanyRejected(t *testing.T) {
	svc, repo := newTestService(1, 2)
	parent, err := repo.Create(context.Background(), AccountHead{CompanyID: int64p(2), Name: "Assets"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), testUser{id: 7}, AccountHead{
		CompanyID: int64p(1),
		ParentID:  &parent.ID,
		Name:      "Bank",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateUnknownParent(t *testing.T) {
	svc, _ := newTestService(1)

	_, err := svc.Create(context.Background(), testUser{id: 7}, AccountHead{
		CompanyID: int64p(1),
		ParentID:  int64p(99),
		Name:      "Bank",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateOutsideScopeDenied(t *testing.T) {
	svc, _ := newTestService(1)

	_, err := svc.Create(context.Background(), testUser{id: 7}, AccountHead{
		CompanyID: int64p(2),
		Name:      "Bank",
	})
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
}

func TestUpdateSelfParentRejected(t *testing.T) {
	svc, repo := newTestService(1)
	head, err := repo.Create(context.Background(), AccountHead{CompanyID: int64p(1), Name: "Assets"})
	require.NoError(t, err)

	err = svc.Update(context.Background(), testUser{id: 7}, head.ID, AccountHead{
		CompanyID: int64p(1),
		ParentID:  &head.ID,
		Name:      "Assets",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteOutsideScopeDenied(t *testing.T) {
	svc, repo := newTestService(1)
	head, err := repo.Create(context.Background(), AccountHead{CompanyID: int64p(2), Name: "Assets"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), testUser{id: 7}, head.ID)
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
	assert.Len(t, repo.heads, 1)
}
