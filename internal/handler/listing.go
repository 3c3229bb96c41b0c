package handler

import (
	"errors"
	"strconv"

	"github.com/Goatt69/cardholder-api/internal/model"
	"github.com/Goatt69/cardholder-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type ListingHandler struct {
	listingSvc *service.ListingService
}

func NewListingHandler(listingSvc *service.ListingService) *ListingHandler {
	return &ListingHandler{listingSvc: listingSvc}
}

// GET /api/v1/listings
func (h *ListingHandler) List(c *fiber.Ctx) error {
	listings, err := h.listingSvc.ListListings(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("list listings failed")
		return c.Status(500).JSON(fiber.Map{"error": "failed to list listings"})
	}
	return c.JSON(fiber.Map{"listings": listings})
}

// GET /api/v1/listings/:id
func (h *ListingHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid listing id"})
	}

	listing, err := h.listingSvc.GetListing(c.Context(), id)
	if err != nil {
		return listingError(c, err)
	}
	return c.JSON(listing)
}

// POST /api/v1/listings
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	posterID := c.Locals("user_id").(string)

	var req model.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.CardID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "card_id is required"})
	}

	listing, err := h.listingSvc.CreateListing(c.Context(), posterID, &req)
	if err != nil {
		return listingError(c, err)
	}
	return c.Status(201).JSON(listing)
}

// DELETE /api/v1/listings/:id
func (h *ListingHandler) Withdraw(c *fiber.Ctx) error {
	actingUserID := c.Locals("user_id").(string)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid listing id"})
	}

	if err := h.listingSvc.WithdrawListing(c.Context(), id, actingUserID); err != nil {
		return listingError(c, err)
	}
	return c.SendStatus(204)
}

func listingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotPoster):
		return c.Status(403).JSON(fiber.Map{"error": "only the listing poster may do this"})
	case errors.Is(err, service.ErrListingNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
	case errors.Is(err, service.ErrCardNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "card not found"})
	case errors.Is(err, service.ErrCardNotOwned):
		return c.Status(400).JSON(fiber.Map{"error": "you don't own this card"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.Status(409).JSON(fiber.Map{"error": "invalid status transition"})
	case errors.Is(err, service.ErrConflict):
		return c.Status(409).JSON(fiber.Map{"error": "concurrent update, retry"})
	default:
		log.Error().Err(err).Msg("listing error")
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
