package handler

import (
	"errors"

	"github.com/Goatt69/cardholder-api/internal/model"
	"github.com/Goatt69/cardholder-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type CollectionHandler struct {
	collectionSvc *service.CollectionService
}

func NewCollectionHandler(collectionSvc *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionSvc: collectionSvc}
}

// GET /api/v1/collection
func (h *CollectionHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	holdings, err := h.collectionSvc.ListHoldings(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("list holdings failed")
		return c.Status(500).JSON(fiber.Map{"error": "failed to list collection"})
	}
	return c.JSON(fiber.Map{"holdings": holdings})
}

// POST /api/v1/collection/:cardId
func (h *CollectionHandler) AddCard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	cardID := c.Params("cardId")

	req := model.AddCardRequest{Quantity: 1}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	holding, err := h.collectionSvc.AddCard(c.Context(), userID, cardID, req.Quantity)
	if err != nil {
		return collectionError(c, err)
	}
	return c.JSON(holding)
}

// GET /api/v1/cards
func (h *CollectionHandler) ListCards(c *fiber.Ctx) error {
	cards, err := h.collectionSvc.ListCards(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("list cards failed")
		return c.Status(500).JSON(fiber.Map{"error": "failed to list cards"})
	}
	return c.JSON(fiber.Map{"cards": cards})
}

// GET /api/v1/cards/:id
func (h *CollectionHandler) GetCard(c *fiber.Ctx) error {
	card, err := h.collectionSvc.GetCard(c.Context(), c.Params("id"))
	if err != nil {
		return collectionError(c, err)
	}
	return c.JSON(card)
}

func collectionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrCardNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "card not found"})
	case errors.Is(err, service.ErrInvalidQuantity):
		return c.Status(400).JSON(fiber.Map{"error": "quantity must be greater than 0"})
	default:
		log.Error().Err(err).Msg("collection error")
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
