package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// MOCK STORE
// ============================================================

type mockSetStore struct {
	sets       map[int64][]PermissionSet
	lastUpsert UpsertParams
	upsertErr  error
}

func newMockSetStore() *mockSetStore {
	return &mockSetStore{sets: make(map[int64][]PermissionSet)}
}

func (m *mockSetStore) SetsForUser(_ context.Context, userID int64) ([]PermissionSet, error) {
	return m.sets[userID], nil
}

func (m *mockSetStore) Upsert(_ context.Context, params UpsertParams) (PermissionSet, error) {
	if m.upsertErr != nil {
		return PermissionSet{}, m.upsertErr
	}
	m.lastUpsert = params
	set := PermissionSet{
		ID:            1,
		UserID:        params.UserID,
		RoleID:        params.RoleID,
		Companies:     params.Companies,
		BusinessTypes: params.BusinessTypes,
		Factories:     NormalizeFactories(params.Factories),
		Modules:       params.Modules,
	}
	m.sets[params.UserID] = []PermissionSet{set}
	return set, nil
}

type recordingInvalidator struct {
	userIDs []int64
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID int64) {
	r.userIDs = append(r.userIDs, userID)
}

func newAuthzRouter(h *Handler, principal Principal) http.Handler {
	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(ContextWithPrincipal(req.Context(), principal)))
			})
		})
	}
	h.MountRoutes(r)
	return r
}

// ============================================================
// TESTS
// ============================================================

func TestListPermissionsEndpoint(t *testing.T) {
	h := NewHandler(discardLogger(), newMockSetStore(), nil)
	router := newAuthzRouter(h, testUser{id: 1})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/booking", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Module      string                 `json:"module"`
		Permissions []PermissionDescriptor `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "booking", body.Module)
	require.Len(t, body.Permissions, 4)
	assert.Equal(t, "booking_create", body.Permissions[0].Code)
	assert.Equal(t, "Create Booking", body.Permissions[0].Name)
}

func TestListPermissionsUnknownModule404(t *testing.T) {
	h := NewHandler(discardLogger(), newMockSetStore(), nil)
	router := newAuthzRouter(h, testUser{id: 1})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/payroll", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetsByUserSelfAccess(t *testing.T) {
	store := newMockSetStore()
	store.sets[5] = []PermissionSet{{ID: 1, UserID: 5, Companies: []int64{1}}}
	h := NewHandler(discardLogger(), store, nil)
	router := newAuthzRouter(h, testUser{id: 5})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permission-sets/user/5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.EqualValues(t, 5, body[0]["user"])
	// Every module blob is present in the payload, granted or not.
	assert.Contains(t, body[0], "product_module")
	assert.Contains(t, body[0], "booking_module")
}

func TestSetsByUserForeignUserForbidden(t *testing.T) {
	h := NewHandler(discardLogger(), newMockSetStore(), nil)
	router := newAuthzRouter(h, testUser{id: 5})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permission-sets/user/6", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSetsByUserSuperuserMayReadAnyone(t *testing.T) {
	h := NewHandler(discardLogger(), newMockSetStore(), nil)
	router := newAuthzRouter(h, testUser{id: 1, superuser: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permission-sets/user/6", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetsByUserUnauthenticated(t *testing.T) {
	h := NewHandler(discardLogger(), newMockSetStore(), nil)
	router := newAuthzRouter(h, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permission-sets/user/5", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateOrCreateNormalizesLegacyFactories(t *testing.T) {
	store := newMockSetStore()
	invalidator := &recordingInvalidator{}
	h := NewHandler(discardLogger(), store, invalidator)
	router := newAuthzRouter(h, testUser{id: 1, superuser: true})

	payload := `{
		"user": 5,
		"companies": [1, "2"],
		"business_types": {"1": [5]},
		"factories": {"1": [{"id": 7, "btId": 5}, {"factory_id": 7, "business_type_id": 5}]},
		"product_module": {"category": {"view": true, "create": true}}
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permission-sets/update-or-create", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{1, 2}, store.lastUpsert.Companies)
	assert.Equal(t, map[int64][]int64{1: {5}}, store.lastUpsert.BusinessTypes)
	assert.True(t, store.lastUpsert.Modules[ModuleProduct]["category"].View)
	assert.Equal(t, []int64{5}, invalidator.userIDs)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	factories := body["factories"].(map[string]any)["1"].([]any)
	// Legacy and canonical spellings of the same pair collapse to one entry.
	require.Len(t, factories, 1)
	pair := factories[0].(map[string]any)
	assert.EqualValues(t, 7, pair["factory_id"])
	assert.EqualValues(t, 5, pair["business_type_id"])
}

func TestUpdateOrCreateMalformedModuleBlobTreatedEmpty(t *testing.T) {
	store := newMockSetStore()
	h := NewHandler(discardLogger(), store, nil)
	router := newAuthzRouter(h, testUser{id: 1, superuser: true})

	payload := `{"user": 5, "booking_module": "not json"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permission-sets/update-or-create", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.lastUpsert.Modules[ModuleBooking])
}

func TestUpdateOrCreateForeignUserForbidden(t *testing.T) {
	h := NewHandler(discardLogger(), newMockSetStore(), nil)
	router := newAuthzRouter(h, testUser{id: 5})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permission-sets/update-or-create", strings.NewReader(`{"user": 6}`)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateOrCreateValidation(t *testing.T) {
	h := NewHandler(discardLogger(), newMockSetStore(), nil)
	router := newAuthzRouter(h, testUser{id: 1, superuser: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permission-sets/update-or-create", strings.NewReader(`{"user": 0}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
