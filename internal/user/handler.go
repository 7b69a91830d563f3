// AngelaMos | 2026
// handler.go

package user

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	auth func(http.Handler) http.Handler,
	perm func(authz.Resource, authz.Action) func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(auth)

		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)

		r.With(perm(authz.Users, authz.View)).Get("/", h.List)
		r.With(perm(authz.Users, authz.Create)).Post("/", h.Create)

		r.Route("/{userID}", func(r chi.Router) {
			r.With(perm(authz.Users, authz.View)).Get("/", h.Get)
			r.With(perm(authz.Users, authz.Edit)).Put("/", h.Update)
			r.With(perm(authz.Users, authz.Delete)).Delete("/", h.Deactivate)
			r.With(perm(authz.Users, authz.Edit)).Put("/role", h.AssignRole)
		})
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := h.service.GetProfile(ctx, middleware.GetTenantID(ctx), middleware.GetUserID(ctx))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	ctx := r.Context()
	u, err := h.service.UpdateProfile(ctx, middleware.GetTenantID(ctx), middleware.GetUserID(ctx), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Search:   q.Get("search"),
		RoleID:   q.Get("role_id"),
	}
	if v, err := strconv.ParseBool(q.Get("is_active")); err == nil {
		params.Active = &v
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), middleware.GetTenantID(r.Context()), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, ToUserResponseList(users), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetUser(r.Context(), middleware.GetTenantID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	u, err := h.service.CreateUser(r.Context(), middleware.GetTenantID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToUserResponse(u))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	ctx := r.Context()
	u, err := h.service.UpdateUser(
		ctx,
		middleware.GetTenantID(ctx),
		middleware.GetUserID(ctx),
		chi.URLParam(r, "userID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.service.DeactivateUser(
		ctx,
		middleware.GetTenantID(ctx),
		middleware.GetUserID(ctx),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRoleRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	u, err := h.service.AssignRole(
		r.Context(),
		middleware.GetTenantID(r.Context()),
		chi.URLParam(r, "userID"),
		req.RoleID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}
