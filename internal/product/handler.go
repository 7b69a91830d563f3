// AngelaMos | 2026
// handler.go

package product

import (
	"net/http"
	"strconv"

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

// RegisterRoutes mounts /products. Reads go through optional so guests can
// browse; writes require auth plus the matching grant.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optional func(http.Handler) http.Handler,
	auth func(http.Handler) http.Handler,
	perm func(authz.Resource, authz.Action) func(http.Handler) http.Handler,
) {
	r.Route("/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optional)
			r.Get("/", h.List)
			r.Get("/{productID}", h.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.With(perm(authz.Products, authz.Create)).Post("/", h.Create)
			r.With(perm(authz.Products, authz.Edit)).Put("/{productID}", h.Update)
			r.With(perm(authz.Products, authz.Edit)).Patch("/{productID}", h.Patch)
			r.With(perm(authz.Products, authz.Delete)).Delete("/{productID}", h.Deactivate)
			r.With(perm(authz.Products, authz.ManageStock)).Patch("/{productID}/stock", h.AdjustStock)
			r.With(perm(authz.Products, authz.Delete)).Delete("/{productID}/permanent", h.Delete)
		})
	})
}

func canSeeInactive(r *http.Request) bool {
	return middleware.GetPrincipal(r.Context()).Can(authz.Products, authz.Edit)
}

// Hiding a product through an edit needs the same permission as the
// soft delete.
func canDeactivate(r *http.Request) bool {
	return middleware.GetPrincipal(r.Context()).Can(authz.Products, authz.Delete)
}

var errDeactivateForbidden = core.ForbiddenError("products:delete is required to deactivate a product")

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListProductsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if v, err := strconv.ParseBool(q.Get("is_active")); err == nil {
		params.Active = &v
	}
	params.Normalize()

	products, total, err := h.service.List(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		params,
		canSeeInactive(r),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, ToProductResponseList(products), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		chi.URLParam(r, "productID"),
		canSeeInactive(r),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProductResponse(p))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	p, err := h.service.Create(r.Context(), middleware.GetTenantID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToProductResponse(p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}
	if !req.IsActive && !canDeactivate(r) {
		core.JSONError(w, errDeactivateForbidden)
		return
	}

	p, err := h.service.Update(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		chi.URLParam(r, "productID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProductResponse(p))
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	var req PatchProductRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}
	if req.IsActive != nil && !*req.IsActive && !canDeactivate(r) {
		core.JSONError(w, errDeactivateForbidden)
		return
	}

	p, err := h.service.Patch(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		chi.URLParam(r, "productID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProductResponse(p))
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	err := h.service.Deactivate(r.Context(), middleware.GetTenantID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), middleware.GetTenantID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustStockRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	p, err := h.service.AdjustStock(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		chi.URLParam(r, "productID"),
		req.Delta,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProductResponse(p))
}
