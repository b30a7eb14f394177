package bagtypes

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
	bagTypes map[int64]*BagType
	nextID   int64

	lastListQuery sq.SelectBuilder
}

func newMockRepository() *mockRepository {
	return &mockRepository{bagTypes: make(map[int64]*BagType), nextID: 1}
}

func (m *mockRepository) Base() sq.SelectBuilder {
	return sq.Select("*").From("bag_types")
}

func (m *mockRepository) List(_ context.Context, q sq.SelectBuilder, _ shared.ListFilters) ([]BagType, int, error) {
	m.lastListQuery = q
	out := make([]BagType, 0, len(m.bagTypes))
	for _, bt := range m.bagTypes {
		out = append(out, *bt)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (*BagType, error) {
	bt, ok := m.bagTypes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *bt
	return &clone, nil
}

func (m *mockRepository) Create(_ context.Context, bt BagType) (*BagType, error) {
	bt.ID = m.nextID
	m.nextID++
	m.bagTypes[bt.ID] = &bt
	clone := bt
	return &clone, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, bt BagType) error {
	if _, ok := m.bagTypes[id]; !ok {
		return shared.ErrNotFound
	}
	bt.ID = id
	m.bagTypes[id] = &bt
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.bagTypes[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.bagTypes, id)
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

// settingsSets grants bag_type permissions with no company scope at all:
// global settings rows are gated on the grant alone.
func settingsSets(perms authz.SubmodulePermissions) []authz.PermissionSet {
	return []authz.PermissionSet{{
		UserID: 7,
		Modules: map[authz.Module]authz.ModuleBlob{
			authz.ModuleSettings: {"bag_type": perms},
		},
	}}
}

func newTestService(sets []authz.PermissionSet) (*Service, *mockRepository) {
	repo := newMockRepository()
	scoper := authz.NewScoper(&stubSets{sets: sets}, nil)
	return NewService(repo, scoper), repo
}

func draft() BagType {
	return BagType{Session: 2026, Name: "Standard", PerBagRent: 190, PerKgRent: 2.4}
}

func TestListUnfilteredWithGrant(t *testing.T) {
	svc, repo := newTestService(settingsSets(authz.SubmodulePermissions{View: true}))

	_, _, err := svc.List(context.Background(), testUser{id: 7}, shared.ListFilters{Page: 1, Limit: 20})
	require.NoError(t, err)

	sql, _, err := repo.lastListQuery.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM bag_types", sql)
}

func TestListWithoutGrantReturnsEmpty(t *testing.T) {
	svc, repo := newTestService(nil)

	_, _, err := svc.List(context.Background(), testUser{id: 7}, shared.ListFilters{Page: 1, Limit: 20})
	require.NoError(t, err)

	sql, _, err := repo.lastListQuery.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "(1=0)")
}

func TestCreateGatedOnGrantAlone(t *testing.T) {
	svc, _ := newTestService(settingsSets(authz.SubmodulePermissions{Create: true}))

	created, err := svc.Create(context.Background(), testUser{id: 7}, draft())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = svc.Create(context.Background(), testUser{id: 8}, draft())
	require.NoError(t, err)
}

func TestCreateWithoutGrantDenied(t *testing.T) {
	svc, repo := newTestService(settingsSets(authz.SubmodulePermissions{View: true}))

	_, err := svc.Create(context.Background(), testUser{id: 7}, draft())
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
	assert.Empty(t, repo.bagTypes)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(settingsSets(authz.SubmodulePermissions{Create: true}))

	bt := draft()
	bt.Name = ""
	_, err := svc.Create(context.Background(), testUser{id: 7}, bt)
	assert.ErrorIs(t, err, shared.ErrRequiredField)

	bt = draft()
	bt.Session = 0
	_, err = svc.Create(context.Background(), testUser{id: 7}, bt)
	assert.ErrorIs(t, err, shared.ErrRequiredField)
}

func TestDeleteWithoutGrantDenied(t *testing.T) {
	svc, repo := newTestService(settingsSets(authz.SubmodulePermissions{View: true, Edit: true}))
	seeded, err := repo.Create(context.Background(), draft())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), testUser{id: 7}, seeded.ID)
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
	assert.Len(t, repo.bagTypes, 1)
}
