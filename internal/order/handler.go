// AngelaMos | 2026
// handler.go

package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	auth func(http.Handler) http.Handler,
	perm func(authz.Resource, authz.Action) func(http.Handler) http.Handler,
) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(auth)

		r.With(perm(authz.Orders, authz.Create)).Post("/", h.Create)
		r.With(perm(authz.Orders, authz.View)).Get("/", h.List)
		r.With(perm(authz.Orders, authz.View)).Get("/{orderID}", h.Get)
		r.With(perm(authz.Orders, authz.UpdateStatus)).Patch("/{orderID}/status", h.UpdateStatus)
		r.With(perm(authz.Orders, authz.Cancel)).Post("/{orderID}/cancel", h.Cancel)
	})
}

func viewerFrom(r *http.Request) Viewer {
	p := middleware.GetPrincipal(r.Context())
	return Viewer{
		UserID:  middleware.GetUserID(r.Context()),
		ViewAll: p.Can(authz.Orders, authz.ViewAll),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	ctx := r.Context()
	o, err := h.service.Create(ctx, middleware.GetTenantID(ctx), middleware.GetUserID(ctx), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToOrderResponse(o))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListOrdersParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 10),
	}
	if raw := q.Get("status"); raw != "" {
		st, ok := ParseStatus(raw)
		if !ok {
			core.JSONError(w, core.ValidationFailed("unknown order status", map[string]string{"status": raw}))
			return
		}
		params.Status = st
	}
	viewer := viewerFrom(r)
	if viewer.ViewAll {
		params.UserID = q.Get("user_id")
	}
	params.Normalize()

	orders, total, err := h.service.List(r.Context(), middleware.GetTenantID(r.Context()), viewer, params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, ToOrderResponseList(orders), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		viewerFrom(r),
		chi.URLParam(r, "orderID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	o, err := h.service.UpdateStatus(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		chi.URLParam(r, "orderID"),
		req.Status,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Cancel(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		viewerFrom(r),
		chi.URLParam(r, "orderID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}
