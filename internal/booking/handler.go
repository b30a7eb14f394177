package booking

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

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
		r.Use(h.guard.Protect(authz.ModuleBooking, "booking"))
		r.Get("/bookings", h.list)
		r.Post("/bookings", h.create)
		r.Get("/bookings/{id}", h.show)
		r.Put("/bookings/{id}", h.update)
		r.Delete("/bookings/{id}", h.remove)
	})
}

type bookingRequest struct {
	PartyID   *int64    `json:"party_id"`
	ProductID *int64    `json:"product_id"`
	BagTypeID *int64    `json:"bag_type_id"`
	BookingNo string    `json:"booking_no"`
	Session   int       `json:"session"`
	Quantity  int       `json:"quantity"`
	Weight    float64   `json:"weight"`
	BookedAt  time.Time `json:"booked_at"`
	Notes     string    `json:"notes"`
}

func (req bookingRequest) toModel() Booking {
	b := Booking{
		PartyID:   req.PartyID,
		ProductID: req.ProductID,
		BagTypeID: req.BagTypeID,
		BookingNo: req.BookingNo,
		Session:   req.Session,
		Quantity:  req.Quantity,
		Weight:    req.Weight,
		BookedAt:  req.BookedAt,
		Notes:     req.Notes,
	}
	if b.BookedAt.IsZero() {
		b.BookedAt = time.Now().UTC()
	}
	return b
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
		list = []Booking{}
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
	b, err := h.service.Get(r.Context(), authz.PrincipalFromContext(r.Context()), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
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
	var req bookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, shared.ErrValidation)
		return
	}
	user := authz.PrincipalFromContext(r.Context())
	if err := h.service.Update(r.Context(), user, id, req.toModel()); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	b, err := h.service.Get(r.Context(), user, id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
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
