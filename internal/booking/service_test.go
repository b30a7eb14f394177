package booking

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
)

// ============================================================
// MOCK REPOSITORY
// ============================================================

type mockRepository struct {
	bookings       map[int64]*Booking
	partyCompanies map[int64]int64
	nextID         int64

	lastListQuery sq.SelectBuilder
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		bookings:       make(map[int64]*Booking),
		partyCompanies: make(map[int64]int64),
		nextID:         1,
	}
}

func (m *mockRepository) Base() sq.SelectBuilder {
	return sq.Select("bookings.*", "parties.company_id").
		From("bookings").
		LeftJoin("parties ON parties.id = bookings.party_id")
}

func (m *mockRepository) List(_ context.Context, q sq.SelectBuilder, _ shared.ListFilters) ([]Booking, int, error) {
	m.lastListQuery = q
	out := make([]Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (m *mockRepository) PartyCompany(_ context.Context, partyID int64) (*int64, error) {
	companyID, ok := m.partyCompanies[partyID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &companyID, nil
}

func (m *mockRepository) Create(_ context.Context, b Booking) (*Booking, error) {
	b.ID = m.nextID
	m.nextID++
	if b.PartyID != nil {
		if companyID, ok := m.partyCompanies[*b.PartyID]; ok {
			b.CompanyID = &companyID
		}
	}
	m.bookings[b.ID] = &b
	clone := b
	return &clone, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, b Booking) error {
	if _, ok := m.bookings[id]; !ok {
		return shared.ErrNotFound
	}
	b.ID = id
	if b.PartyID != nil {
		if companyID, ok := m.partyCompanies[*b.PartyID]; ok {
			b.CompanyID = &companyID
		}
	}
	m.bookings[id] = &b
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.bookings[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

// ============================================================
// FIXTURES
// ============================================================

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

func bookingUserSets() []authz.PermissionSet {
	return []authz.PermissionSet{{
		UserID:    7,
		Companies: []int64{1},
		Modules: map[authz.Module]authz.ModuleBlob{
			authz.ModuleBooking: {
				"booking": {Create: true, View: true, Edit: true, Delete: true},
			},
		},
	}}
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	// Party 10 belongs to company 1 (in scope), party 20 to company 2.
	repo.partyCompanies[10] = 1
	repo.partyCompanies[20] = 2
	scoper := authz.NewScoper(&stubSets{sets: bookingUserSets()}, nil)
	return NewService(repo, scoper), repo
}

func draft(partyID int64) Booking {
	return Booking{
		PartyID:   int64p(partyID),
		BookingNo: "BK-001",
		Session:   2026,
		Quantity:  120,
	}
}

// ============================================================
// TESTS
// ============================================================

func TestListScopesThroughPartyJoin(t *testing.T) {
	svc, repo := newTestService()

	_, _, err := svc.List(context.Background(), testUser{id: 7}, shared.ListFilters{Page: 1, Limit: 20})
	require.NoError(t, err)

	sql, args, err := repo.lastListQuery.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "LEFT JOIN parties ON parties.id = bookings.party_id")
	assert.Contains(t, sql, "WHERE ((parties.company_id = ?))")
	assert.Equal(t, []interface{}{int64(1)}, args)
}

func TestCreateResolvesPartyCompany(t *testing.T) {
	svc, repo := newTestService()

	created, err := svc.Create(context.Background(), testUser{id: 7}, draft(10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), *created.CompanyID)
	assert.Len(t, repo.bookings, 1)
}

func TestCreateForForeignPartyDenied(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.Create(context.Background(), testUser{id: 7}, draft(20))
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
	assert.Empty(t, repo.bookings)
}

func TestCreateUnknownParty(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), testUser{id: 7}, draft(99))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()

	b := draft(10)
	b.PartyID = nil
	_, err := svc.Create(context.Background(), testUser{id: 7}, b)
	assert.ErrorIs(t, err, shared.ErrRequiredField)

	b = draft(10)
	b.BookingNo = ""
	_, err = svc.Create(context.Background(), testUser{id: 7}, b)
	assert.ErrorIs(t, err, shared.ErrRequiredField)

	b = draft(10)
	b.Quantity = 0
	_, err = svc.Create(context.Background(), testUser{id: 7}, b)
	assert.ErrorIs(t, err, shared.ErrRequiredField)
}

func TestUpdateRepointToForeignPartyDenied(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(context.Background(), testUser{id: 7}, draft(10))
	require.NoError(t, err)

	b := draft(20)
	err = svc.Update(context.Background(), testUser{id: 7}, created.ID, b)
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
	assert.Equal(t, int64(10), *repo.bookings[created.ID].PartyID)
}

func TestUpdateSamePartySkipsRelookup(t *testing.T) {
	svc, repo := newTestService()
	created, err := svc.Create(context.Background(), testUser{id: 7}, draft(10))
	require.NoError(t, err)

	b := draft(10)
	b.Quantity = 200
	require.NoError(t, svc.Update(context.Background(), testUser{id: 7}, created.ID, b))
	assert.Equal(t, 200, repo.bookings[created.ID].Quantity)
}

func TestGetForeignBookingDenied(t *testing.T) {
	svc, repo := newTestService()
	foreign, err := repo.Create(context.Background(), draft(20))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), testUser{id: 7}, foreign.ID)
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))

	// Staff read the same row without scoping.
	got, err := svc.Get(context.Background(), testUser{id: 2, staff: true}, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, foreign.ID, got.ID)
}

func TestDeleteForeignBookingDenied(t *testing.T) {
	svc, repo := newTestService()
	foreign, err := repo.Create(context.Background(), draft(20))
	require.NoError(t, err)

	err = svc.Delete(context.Background(), testUser{id: 7}, foreign.ID)
	require.Error(t, err)
	assert.True(t, authz.IsDenied(err))
	assert.Len(t, repo.bookings, 1)
}
