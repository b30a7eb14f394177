package authz

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gudam-erp/gudam-erp/internal/platform/httpx"
)

// SetStore is the persistence surface the handler needs.
type SetStore interface {
	SetsForUser(ctx context.Context, userID int64) ([]PermissionSet, error)
	Upsert(ctx context.Context, params UpsertParams) (PermissionSet, error)
}

// Invalidator drops cached permission sets after writes.
type Invalidator interface {
	Invalidate(ctx context.Context, userID int64)
}

// Handler exposes the permission catalog and permission-set management
// endpoints consumed by the admin UI.
type Handler struct {
	logger   *slog.Logger
	store    SetStore
	cache    Invalidator
	validate *validator.Validate
}

// NewHandler builds a Handler. cache may be nil.
func NewHandler(logger *slog.Logger, store SetStore, cache Invalidator) *Handler {
	return &Handler{
		logger:   logger,
		store:    store,
		cache:    cache,
		validate: validator.New(),
	}
}

// MountRoutes registers permission routes. The caller applies the
// authentication middleware; these endpoints gate on the acting principal
// themselves, like the rest of the permission-management surface.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/permissions/{module}", h.listPermissions)
	r.Get("/permission-sets/user/{userID}", h.setsByUser)
	r.Post("/permission-sets/update-or-create", h.updateOrCreate)
}

// listPermissions renders the full checkbox grid for one module so the UI
// never hardcodes the vocabulary.
func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	module := Module(chi.URLParam(r, "module"))
	perms, err := ListPermissions(module)
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"module":      module,
		"permissions": perms,
	})
}

func (h *Handler) setsByUser(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	if !principal.IsSuperuser() && principal.GetID() != userID {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "access denied")
		return
	}
	sets, err := h.store.SetsForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("load permission sets", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]map[string]any, 0, len(sets))
	for _, set := range sets {
		out = append(out, setPayload(set))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type upsertRequest struct {
	UserID        int64                    `json:"user" validate:"required,gt=0"`
	RoleID        *int64                   `json:"role"`
	Companies     []flexID                 `json:"companies"`
	BusinessTypes map[string][]flexID      `json:"business_types"`
	Factories     map[string][]FactoryPair `json:"factories"`
}

// updateOrCreate replaces the target user's permission set in one atomic
// write. Only superusers may manage other users' sets.
func (h *Handler) updateOrCreate(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	body, err := httpx.ReadBody(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	var req upsertRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if !principal.IsSuperuser() && principal.GetID() != req.UserID {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "access denied")
		return
	}

	params := UpsertParams{
		UserID:        req.UserID,
		RoleID:        req.RoleID,
		Companies:     toIDs(req.Companies),
		BusinessTypes: toCompanyKeyed(req.BusinessTypes),
		Factories:     companyKeyedPairs(req.Factories),
		Modules:       moduleBlobsFromBody(body, h.logger),
	}

	set, err := h.store.Upsert(r.Context(), params)
	if err != nil {
		h.logger.Error("upsert permission set", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(r.Context(), set.UserID)
	}
	httpx.JSON(w, http.StatusOK, setPayload(set))
}

// moduleBlobsFromBody picks the `<module>_module` keys out of the raw
// payload, tolerating missing or malformed blobs (treated as empty).
func moduleBlobsFromBody(body []byte, logger *slog.Logger) map[Module]ModuleBlob {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return map[Module]ModuleBlob{}
	}
	out := make(map[Module]ModuleBlob, len(moduleColumns))
	for _, m := range moduleColumns {
		blob, err := decodeModuleBlob(raw[string(m)+"_module"])
		if err != nil && logger != nil {
			logger.Warn("malformed module blob in upsert treated as empty",
				slog.String("module", string(m)))
		}
		out[m] = blob
	}
	return out
}

func setPayload(set PermissionSet) map[string]any {
	payload := map[string]any{
		"id":             set.ID,
		"user":           set.UserID,
		"role":           set.RoleID,
		"companies":      set.Companies,
		"business_types": stringKeyed(set.BusinessTypes),
		"factories":      stringKeyed(set.Factories),
		"created_at":     set.CreatedAt,
		"updated_at":     set.UpdatedAt,
	}
	for _, m := range moduleColumns {
		payload[string(m)+"_module"] = set.Blob(m)
	}
	return payload
}

func stringKeyed[T any](in map[int64][]T) map[string][]T {
	out := make(map[string][]T, len(in))
	for companyID, v := range in {
		out[strconv.FormatInt(companyID, 10)] = v
	}
	return out
}

func toIDs(in []flexID) []int64 {
	out := make([]int64, 0, len(in))
	for _, id := range in {
		if id > 0 {
			out = append(out, int64(id))
		}
	}
	return out
}

func toCompanyKeyed(in map[string][]flexID) map[int64][]int64 {
	out := make(map[int64][]int64, len(in))
	for key, ids := range in {
		companyID, err := strconv.ParseInt(key, 10, 64)
		if err != nil || companyID <= 0 {
			continue
		}
		out[companyID] = toIDs(ids)
	}
	return out
}

func companyKeyedPairs(in map[string][]FactoryPair) map[int64][]FactoryPair {
	out := make(map[int64][]FactoryPair, len(in))
	for key, pairs := range in {
		companyID, err := strconv.ParseInt(key, 10, 64)
		if err != nil || companyID <= 0 {
			continue
		}
		out[companyID] = pairs
	}
	return out
}
