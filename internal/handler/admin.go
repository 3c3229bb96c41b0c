package handler

import (
	"strconv"

	"github.com/Goatt69/cardholder-api/internal/model"
	"github.com/Goatt69/cardholder-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	listingSvc *service.ListingService
}

func NewAdminHandler(listingSvc *service.ListingService) *AdminHandler {
	return &AdminHandler{listingSvc: listingSvc}
}

// PUT /api/v1/admin/listings/:id/status
func (h *AdminHandler) ChangeListingStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid listing id"})
	}

	var req model.ChangeListingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	status, err := model.ParseListingStatus(req.Status)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.listingSvc.ChangeStatus(c.Context(), id, status); err != nil {
		return listingError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
