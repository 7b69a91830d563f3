// AngelaMos | 2026
// handler.go

package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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

// RegisterRoutes mounts /carts. Every authenticated user owns a cart, so
// no extra grant is checked.
func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/carts", func(r chi.Router) {
		r.Use(auth)

		r.Get("/", h.Get)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.SetQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Delete("/clear", h.Clear)
	})
}

func (h *Handler) respond(w http.ResponseWriter, c *Cart, err error, status int) {
	if err != nil {
		core.JSONError(w, err)
		return
	}
	core.JSON(w, status, core.Response{
		Success: true,
		Data:    ToCartResponse(c, h.service.Currency()),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.service.Get(ctx, middleware.GetTenantID(ctx), middleware.GetUserID(ctx))
	h.respond(w, c, err, http.StatusOK)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	ctx := r.Context()
	c, err := h.service.AddItem(ctx, middleware.GetTenantID(ctx), middleware.GetUserID(ctx), req)
	h.respond(w, c, err, http.StatusCreated)
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := core.Bind(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	ctx := r.Context()
	c, err := h.service.SetQuantity(
		ctx,
		middleware.GetTenantID(ctx),
		middleware.GetUserID(ctx),
		chi.URLParam(r, "productID"),
		*req.Quantity,
	)
	h.respond(w, c, err, http.StatusOK)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.service.RemoveItem(
		ctx,
		middleware.GetTenantID(ctx),
		middleware.GetUserID(ctx),
		chi.URLParam(r, "productID"),
	)
	h.respond(w, c, err, http.StatusOK)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.service.Clear(ctx, middleware.GetTenantID(ctx), middleware.GetUserID(ctx))
	h.respond(w, c, err, http.StatusOK)
}
