package handler

import (
	"errors"
	"strconv"

	"github.com/Goatt69/cardholder-api/internal/model"
	"github.com/Goatt69/cardholder-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type TradeHandler struct {
	tradeSvc *service.TradeService
}

func NewTradeHandler(tradeSvc *service.TradeService) *TradeHandler {
	return &TradeHandler{tradeSvc: tradeSvc}
}

// POST /api/v1/listings/:id/offers
func (h *TradeHandler) Propose(c *fiber.Ctx) error {
	traderID := c.Locals("user_id").(string)

	postID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid listing id"})
	}

	var req model.CreateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	offer, err := h.tradeSvc.ProposeOffer(c.Context(), traderID, postID, req.OfferedCardIDs)
	if err != nil {
		return tradeError(c, err)
	}
	return c.Status(201).JSON(offer)
}

// GET /api/v1/listings/:id/offers
func (h *TradeHandler) ListForPost(c *fiber.Ctx) error {
	postID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid listing id"})
	}

	offers, err := h.tradeSvc.ListOffersForPost(c.Context(), postID)
	if err != nil {
		return tradeError(c, err)
	}
	return c.JSON(fiber.Map{"offers": offers})
}

// PUT /api/v1/offers/:id/accept
func (h *TradeHandler) Accept(c *fiber.Ctx) error {
	actingUserID := c.Locals("user_id").(string)

	offerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid offer id"})
	}

	if err := h.tradeSvc.AcceptOffer(c.Context(), offerID, actingUserID); err != nil {
		return tradeError(c, err)
	}
	return c.SendStatus(204)
}

// PUT /api/v1/offers/:id/reject
func (h *TradeHandler) Reject(c *fiber.Ctx) error {
	actingUserID := c.Locals("user_id").(string)

	offerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid offer id"})
	}

	if err := h.tradeSvc.RejectOffer(c.Context(), offerID, actingUserID); err != nil {
		return tradeError(c, err)
	}
	return c.SendStatus(204)
}

func tradeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrOfferNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "offer not found"})
	case errors.Is(err, service.ErrListingNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "listing not found"})
	case errors.Is(err, service.ErrNotPoster):
		return c.Status(403).JSON(fiber.Map{"error": "only the listing poster may do this"})
	case errors.Is(err, service.ErrCardNotOwned):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientQuantity):
		return c.Status(422).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrOwnListing):
		return c.Status(400).JSON(fiber.Map{"error": "cannot make an offer on your own listing"})
	case errors.Is(err, service.ErrNoCardsOffered):
		return c.Status(400).JSON(fiber.Map{"error": "offered_card_ids must not be empty"})
	case errors.Is(err, service.ErrListingNotActive):
		return c.Status(409).JSON(fiber.Map{"error": "listing is no longer active"})
	case errors.Is(err, service.ErrOfferNotPending):
		return c.Status(409).JSON(fiber.Map{"error": "offer is no longer pending"})
	case errors.Is(err, service.ErrConflict):
		return c.Status(409).JSON(fiber.Map{"error": "concurrent update, retry"})
	default:
		log.Error().Err(err).Msg("trade error")
		return c.Status(500).JSON(fiber.Map{"error": "internal server error"})
	}
}
