// AngelaMos | 2026
// handler.go

package role

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

// RegisterRoutes mounts /roles. auth must attach a principal and perm
// builds a permission gate.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	auth func(http.Handler) http.Handler,
	perm func(authz.Resource, authz.Action) func(http.Handler) http.Handler,
) {
	r.Route("/roles", func(r chi.Router) {
		r.Use(auth)

		r.With(perm(authz.Roles, authz.View)).Get("/", h.List)
		r.With(perm(authz.Roles, authz.Create)).Post("/", h.Create)
		r.With(perm(authz.Roles, authz.View)).Get("/{roleID}", h.Get)
		r.With(perm(authz.Roles, authz.Edit)).Put("/{roleID}", h.Update)
		r.With(perm(authz.Roles, authz.Delete)).Delete("/{roleID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListRolesParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 50),
		Search:   q.Get("search"),
	}
	if v, err := strconv.ParseBool(q.Get("is_active")); err == nil {
		params.Active = &v
	}
	params.Normalize()

	roles, total, err := h.service.List(r.Context(), middleware.GetTenantID(r.Context()), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, ToRoleResponseList(roles), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.Get(r.Context(), middleware.GetTenantID(r.Context()), chi.URLParam(r, "roleID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRoleResponse(role))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	role, err := h.service.Create(r.Context(), middleware.GetTenantID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToRoleResponse(role))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	role, err := h.service.Update(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		chi.URLParam(r, "roleID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToRoleResponse(role))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), middleware.GetTenantID(r.Context()), chi.URLParam(r, "roleID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
