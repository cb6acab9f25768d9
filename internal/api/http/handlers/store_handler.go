package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-admin/internal/api/dto"
	"github.com/spec-kit/store-admin/internal/auth"
	"github.com/spec-kit/store-admin/internal/service"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// StoreHandler exposes the store profile.
type StoreHandler struct {
	stores *service.StoreService
}

// NewStoreHandler constructs handler.
func NewStoreHandler(stores *service.StoreService) *StoreHandler {
	return &StoreHandler{stores: stores}
}

// Create handles POST /api/store.
func (h *StoreHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeNoToken, "authentication required")
	}
	var req dto.StoreRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	store, err := h.stores.Create(c.UserContext(), identity.AccountID, req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK("store created", dto.NewStoreResponse(store)))
}

// Get handles GET /api/store.
func (h *StoreHandler) Get(c *fiber.Ctx) error {
	store, err := h.stores.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("", dto.NewStoreResponse(store)))
}

// Update handles PUT /api/store/:id.
func (h *StoreHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateStoreRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	store, err := h.stores.Update(c.UserContext(), c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("store updated", dto.NewStoreResponse(store)))
}

// Delete handles DELETE /api/store/:id.
func (h *StoreHandler) Delete(c *fiber.Ctx) error {
	store, err := h.stores.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("store deleted", dto.DeletedResponse{ID: store.ID, Name: store.Name}))
}
