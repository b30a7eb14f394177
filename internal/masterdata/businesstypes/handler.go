package businesstypes

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
	service *Service
	guard   authz.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Protect(authz.ModuleCompany, "business_type"))
		r.Get("/business-types", h.list)
		r.Post("/business-types", h.create)
		r.Get("/business-types/{id}", h.show)
		r.Put("/business-types/{id}", h.update)
		r.Delete("/business-types/{id}", h.remove)
	})
}

type businessTypeRequest struct {
	CompanyID   *int64 `json:"company_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req businessTypeRequest) toModel() BusinessType {
	return BusinessType{CompanyID: req.CompanyID, Name: req.Name, Description: req.Description}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r)
	user := authz.PrincipalFromContext(r.Context())
	list, total, err := h.service.List(r.Context(), user, filters)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	if list == nil {
		list = []BusinessType{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      list,
		"pagination": platformshared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, h.logger, shared.ErrInvalidID)
		return
	}
	bt, err := h.service.Get(r.Context(), authz.PrincipalFromContext(r.Context()), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bt)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req businessTypeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, shared.ErrValidation)
		return
	}
	created, err := h.service.Create(r.Context(), authz.PrincipalFromContext(r.Context()), req.toModel())
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, h.logger, shared.ErrInvalidID)
		return
	}
	var req businessTypeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, shared.ErrValidation)
		return
	}
	user := authz.PrincipalFromContext(r.Context())
	if err := h.service.Update(r.Context(), user, id, req.toModel()); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	bt, err := h.service.Get(r.Context(), user, id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bt)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, h.logger, shared.ErrInvalidID)
		return
	}
	if err := h.service.Delete(r.Context(), authz.PrincipalFromContext(r.Context()), id); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
