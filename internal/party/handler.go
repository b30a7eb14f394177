package party

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gudam-erp/gudam-erp/internal/authz"
	"github.com/gudam-erp/gudam-erp/internal/masterdata/shared"
	"github.com/gudam-erp/gudam-erp/internal/platform/httpx"
	platformshared "github.com/gudam-erp/gudam-erp/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	types   *TypeService
	parties *PartyService
	guard   authz.Middleware
}

func NewHandler(logger *slog.Logger, types *TypeService, parties *PartyService, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, types: types, parties: parties, guard: guard}
}

// MountRoutes registers both submodules; each carries its own route gate
// because party_type and party are granted independently.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(authz.ModulePartyType, "party_type"))
		r.Get("/party-types", h.listTypes)
		r.Post("/party-types", h.createType)
		r.Get("/party-types/{id}", h.showType)
		r.Put("/party-types/{id}", h.updateType)
		r.Delete("/party-types/{id}", h.removeType)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(authz.ModulePartyType, "party"))
		r.Get("/parties", h.listParties)
		r.Post("/parties", h.createParty)
		r.Get("/parties/{id}", h.showParty)
		r.Put("/parties/{id}", h.updateParty)
		r.Delete("/parties/{id}", h.removeParty)
	})
}

type partyTypeRequest struct {
	CompanyID   *int64 `json:"company_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type partyRequest struct {
	CompanyID   *int64 `json:"company_id"`
	PartyTypeID *int64 `json:"party_type_id"`
	Name        string `json:"name"`
	FatherName  string `json:"father_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	NID         string `json:"nid"`
	Active      bool   `json:"is_active"`
}

func (req partyRequest) toModel() Party {
	return Party{
		CompanyID:   req.CompanyID,
		PartyTypeID: req.PartyTypeID,
		Name:        req.Name,
		FatherName:  req.FatherName,
		Phone:       req.Phone,
		Address:     req.Address,
		NID:         req.NID,
		Active:      req.Active,
	}
}

func (h *Handler) listTypes(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r)
	user := authz.PrincipalFromContext(r.Context())
	list, total, err := h.types.List(r.Context(), user, filters)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	if list == nil {
		list = []PartyType{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      list,
		"pagination": platformshared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) showType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, h.logger, shared.ErrInvalidID)
		return
	}
	pt, err := h.types.Get(r.Context(), authz.PrincipalFromContext(r.Context()), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pt)
}

func (h *Handler) createType(w http.ResponseWriter, r *http.Request) {
	var req partyTypeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, shared.ErrValidation)
		return
	}
	created, err := h.types.Create(r.Context(), authz.PrincipalFromContext(r.Context()),
		PartyType{CompanyID: req.CompanyID, Name: req.Name, Description: req.Description})
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, h.logger, shared.ErrInvalidID)
		return
	}
	var req partyTypeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, shared.ErrValidation)
		return
	}
	user := authz.PrincipalFromContext(r.Context())
	if err := h.types.Update(r.Context(), user, id,
		PartyType{CompanyID: req.CompanyID, Name: req.Name, Description: req.Description}); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	pt, err := h.types.Get(r.Context(), user, id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pt)
}

func (h *Handler) removeType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, h.logger, shared.ErrInvalidID)
		return
	}
	if err := h.types.Delete(r.Context(), authz.PrincipalFromContext(r.Context()), id); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listParties(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r)
	user := authz.PrincipalFromContext(r.Context())
	list, total, err := h.parties.List(r.Context(), user, filters)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	if list == nil {
		list = []Party{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      list,
		"pagination": platformshared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) showParty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, h.logger, shared.ErrInvalidID)
		return
	}
	p, err := h.parties.Get(r.Context(), authz.PrincipalFromContext(r.Context()), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) createParty(w http.ResponseWriter, r *http.Request) {
	var req partyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, shared.ErrValidation)
		return
	}
	created, err := h.parties.Create(r.Context(), authz.PrincipalFromContext(r.Context()), req.toModel())
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateParty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, h.logger, shared.ErrInvalidID)
		return
	}
	var req partyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, shared.ErrValidation)
		return
	}
	user := authz.PrincipalFromContext(r.Context())
	if err := h.parties.Update(r.Context(), user, id, req.toModel()); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	p, err := h.parties.Get(r.Context(), user, id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) removeParty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, h.logger, shared.ErrInvalidID)
		return
	}
	if err := h.parties.Delete(r.Context(), authz.PrincipalFromContext(r.Context()), id); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
