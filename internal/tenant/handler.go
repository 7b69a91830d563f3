// AngelaMos | 2026
// handler.go

package tenant

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/middleware"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/role"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/user"
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

// RegisterPlatformRoutes mounts /tenants. Creation is public; everything
// else is for the platform operator.
func (h *Handler) RegisterPlatformRoutes(
	r chi.Router,
	platformKey func(http.Handler) http.Handler,
) {
	r.Route("/tenants", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Group(func(r chi.Router) {
			r.Use(platformKey)

			r.Get("/", h.List)
			r.Get("/{tenantID}", h.Get)
			r.Put("/{tenantID}", h.Update)
			r.Delete("/{tenantID}", h.Deactivate)
			r.Patch("/{tenantID}/status", h.UpdateStatus)
			r.Delete("/{tenantID}/permanent", h.Purge)
			r.Get("/{tenantID}/stats", h.Stats)
		})
	})
}

// RegisterTenantRoutes mounts /tenant, the resolved tenant's own settings.
func (h *Handler) RegisterTenantRoutes(
	r chi.Router,
	auth func(http.Handler) http.Handler,
	perm func(authz.Resource, authz.Action) func(http.Handler) http.Handler,
) {
	r.Route("/tenant", func(r chi.Router) {
		r.Use(auth)

		r.With(perm(authz.Tenant, authz.View)).Get("/", h.GetCurrent)
		r.With(perm(authz.Tenant, authz.Edit)).Put("/", h.UpdateCurrent)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	res, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	resp := CreateTenantResponse{
		Tenant: ToTenantResponse(res.Tenant),
		Roles:  role.ToRoleResponseList(res.Roles),
	}
	if res.Owner != nil {
		owner := user.ToUserResponse(res.Owner)
		resp.Owner = &owner
	}

	core.Created(w, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListTenantsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
	}
	params.Normalize()

	tenants, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, ToTenantResponseList(tenants), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTenantResponse(t))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTenantRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	t, err := h.service.Update(r.Context(), chi.URLParam(r, "tenantID"), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTenantResponse(t))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	t, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "tenantID"), req.Status)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTenantResponse(t))
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), chi.URLParam(r, "tenantID")); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Purge(r.Context(), chi.URLParam(r, "tenantID")); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tenantID")

	stats, err := h.service.Stats(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, StatsResponse{TenantID: id, Stats: *stats})
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), middleware.GetTenantID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTenantResponse(t))
}

func (h *Handler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	t, err := h.service.UpdateSettings(r.Context(), middleware.GetTenantID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTenantResponse(t))
}
