package handlers

import (
	"fmt"

	"Foodgram/domain"
	"Foodgram/internal/api/presenters"
	"Foodgram/pkg/shoppinglist"
	"Foodgram/pkg/social"

	"github.com/gofiber/fiber/v2"
)

type (
	ShoppingCartHandler interface {
		AddToCart(c *fiber.Ctx) error
		RemoveFromCart(c *fiber.Ctx) error
		DownloadShoppingCart(c *fiber.Ctx) error
	}

	shoppingCartHandler struct {
		socialService       social.SocialService
		shoppingListService shoppinglist.ShoppingListService
	}
)

func NewShoppingCartHandler(socialService social.SocialService, shoppingListService shoppinglist.ShoppingListService) ShoppingCartHandler {
	return &shoppingCartHandler{
		socialService:       socialService,
		shoppingListService: shoppingListService,
	}
}

func (h *shoppingCartHandler) AddToCart(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.socialService.AddToCart(c.Context(), userID, c.Params("id"))
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedAddToCart, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddToCart)
}

func (h *shoppingCartHandler) RemoveFromCart(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if err := h.socialService.RemoveFromCart(c.Context(), userID, c.Params("id")); err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedRemoveFromCart, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessRemoveFromCart)
}

func (h *shoppingCartHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	filename, body, err := h.shoppingListService.ExportShoppingList(c.Context(), userID)
	if err != nil {
		return presenters.ServiceErrorResponse(c, domain.MessageFailedDownloadCart, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).SendString(body)
}
