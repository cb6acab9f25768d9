package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-admin/internal/api/dto"
	"github.com/spec-kit/store-admin/internal/auth"
	"github.com/spec-kit/store-admin/internal/service"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// AccountsHandler exposes account management.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// Register handles POST /api/accounts. Anonymous callers get the default
// role; assigning any other role needs a management token.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	requester, _ := auth.IdentityFromContext(c)
	account, err := h.accounts.RegisterAs(c.UserContext(), requester, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		ImageRef: req.ImageRef,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK("account registered", dto.NewAccountSummary(account)))
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(c *fiber.Ctx) error {
	filter := service.AccountListFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.NewValidationError("active must be true or false", map[string]any{"field": "active"})
		}
		filter.Active = &active
	}

	list, err := h.accounts.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("", dto.NewAccountListResponse(list, filter)))
}

// Get handles GET /api/accounts/:id.
func (h *AccountsHandler) Get(c *fiber.Ctx) error {
	account, err := h.accounts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("", dto.NewAccountSummary(account)))
}

// Update handles PUT /api/accounts/:id.
func (h *AccountsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	account, err := h.accounts.Update(c.UserContext(), c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("account updated", dto.NewAccountSummary(account)))
}

// Delete handles DELETE /api/accounts/:id.
func (h *AccountsHandler) Delete(c *fiber.Ctx) error {
	account, err := h.accounts.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("account deleted", dto.DeletedResponse{ID: account.ID, Name: account.Name}))
}
