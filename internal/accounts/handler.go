package accounts

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
		r.Use(h.guard.Protect(authz.ModuleAccounts, "account_head"))
		r.Get("/account-heads", h.list)
		r.Post("/account-heads", h.create)
		r.Get("/account-heads/{id}", h.show)
		r.Put("/account-heads/{id}", h.update)
		r.Delete("/account-heads/{id}", h.remove)
	})
}

type accountHeadRequest struct {
	CompanyID   *int64 `json:"company_id"`
	ParentID    *int64 `json:"parent_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"is_active"`
}

func (req accountHeadRequest) toModel() AccountHead {
	return AccountHead{
		CompanyID:   req.CompanyID,
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	}
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
		list = []AccountHead{}
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
	a, err := h.service.Get(r.Context(), authz.PrincipalFromContext(r.Context()), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req accountHeadRequest
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
	var req accountHeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, shared.ErrValidation)
		return
	}
	user := authz.PrincipalFromContext(r.Context())
	if err := h.service.Update(r.Context(), user, id, req.toModel()); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	a, err := h.service.Get(r.Context(), user, id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
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
