package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Goatt69/cardholder-api/internal/model"
	"github.com/Goatt69/cardholder-api/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrListingNotActive = errors.New("listing is not active")
	ErrOfferNotFound    = errors.New("offer not found")
	ErrOfferNotPending  = errors.New("offer is not pending")
	ErrCardNotOwned     = errors.New("card not owned")
	ErrNotPoster        = errors.New("only the listing poster may do this")
	ErrOwnListing       = errors.New("cannot make an offer on your own listing")
	ErrNoCardsOffered   = errors.New("an offer must include at least one card")

	// Re-exported so handlers only ever map service errors.
	ErrInsufficientQuantity = repository.ErrInsufficientQuantity
	ErrConflict             = repository.ErrConflict
)

// Ledger is the inventory ledger surface the trade and listing services
// consume. Satisfied by repository.HoldingRepository.
type Ledger interface {
	GetQuantity(ctx context.Context, userID, cardID string) (int, error)
	Credit(ctx context.Context, userID, cardID string, qty int) (*model.Holding, error)
	ListByUser(ctx context.Context, userID string) ([]model.Holding, error)
}

// ListingStore is satisfied by repository.ListingRepository.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id int64) (*model.Listing, error)
	ListVisible(ctx context.Context) ([]model.Listing, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.ListingStatus) error
}

// OfferStore is satisfied by repository.OfferRepository.
type OfferStore interface {
	Create(ctx context.Context, o *model.TradeOffer) error
	GetByID(ctx context.Context, id int64) (*model.TradeOffer, error)
	ListByPost(ctx context.Context, postID int64) ([]model.TradeOffer, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.OfferStatus) error
}

// Settler is satisfied by repository.TradeRepository.
type Settler interface {
	Settle(ctx context.Context, p repository.SettleParams) error
}

type TradeService struct {
	ledger   Ledger
	listings ListingStore
	offers   OfferStore
	settler  Settler
}

func NewTradeService(ledger Ledger, listings ListingStore, offers OfferStore, settler Settler) *TradeService {
	return &TradeService{ledger: ledger, listings: listings, offers: offers, settler: settler}
}

// ProposeOffer records a pending offer after checking the trader holds at
// least one of every offered card. The check is a snapshot, not a
// reservation: holdings may change before acceptance, which is why
// AcceptOffer re-validates.
func (s *TradeService) ProposeOffer(ctx context.Context, traderID string, postID int64, offeredCardIDs []string) (*model.TradeOffer, error) {
	listing, err := s.listings.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	if listing.Status != model.ListingActive {
		return nil, ErrListingNotActive
	}
	if listing.PosterID == traderID {
		return nil, ErrOwnListing
	}

	cardIDs := dedupe(offeredCardIDs)
	if len(cardIDs) == 0 {
		return nil, ErrNoCardsOffered
	}

	for _, cardID := range cardIDs {
		qty, err := s.ledger.GetQuantity(ctx, traderID, cardID)
		if err != nil {
			return nil, err
		}
		if qty < 1 {
			return nil, fmt.Errorf("card %s: %w", cardID, ErrCardNotOwned)
		}
	}

	offer := &model.TradeOffer{
		PostID:   postID,
		TraderID: traderID,
		Status:   model.OfferPending,
	}
	for _, cardID := range cardIDs {
		offer.OfferedCards = append(offer.OfferedCards, model.OfferedCard{CardID: cardID})
	}

	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// AcceptOffer settles a pending offer: the listed card moves to the trader,
// every offered card moves to the poster, the offer becomes Accepted, its
// pending siblings become Rejected, and the listing becomes Inactive — all
// in one transaction, or not at all.
func (s *TradeService) AcceptOffer(ctx context.Context, offerID int64, actingUserID string) error {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOfferNotFound
		}
		return err
	}

	listing, err := s.listings.GetByID(ctx, offer.PostID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListingNotFound
		}
		return err
	}

	if listing.PosterID != actingUserID {
		return ErrNotPoster
	}
	if offer.Status != model.OfferPending {
		return ErrOfferNotPending
	}
	if listing.Status != model.ListingActive {
		return ErrListingNotActive
	}

	// Re-validate both sides before settling: a trade since proposal may
	// have depleted either party's holdings. The settlement transaction
	// repeats these checks with conditional debits, so this is only for a
	// precise error before any work starts.
	if err := s.requireHolding(ctx, listing.PosterID, listing.CardID); err != nil {
		return err
	}
	for _, oc := range offer.OfferedCards {
		if err := s.requireHolding(ctx, offer.TraderID, oc.CardID); err != nil {
			return err
		}
	}

	params := repository.SettleParams{
		OfferID:      offer.ID,
		PostID:       listing.ID,
		PosterID:     listing.PosterID,
		TraderID:     offer.TraderID,
		ListedCardID: listing.CardID,
	}
	for _, oc := range offer.OfferedCards {
		params.OfferedCardIDs = append(params.OfferedCardIDs, oc.CardID)
	}

	if err := s.settler.Settle(ctx, params); err != nil {
		return err
	}

	log.Info().
		Int64("offer_id", offer.ID).
		Int64("post_id", listing.ID).
		Str("poster_id", listing.PosterID).
		Str("trader_id", offer.TraderID).
		Int("offered_cards", len(offer.OfferedCards)).
		Msg("trade settled")
	return nil
}

// RejectOffer is poster-only and touches no holdings.
func (s *TradeService) RejectOffer(ctx context.Context, offerID int64, actingUserID string) error {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOfferNotFound
		}
		return err
	}

	listing, err := s.listings.GetByID(ctx, offer.PostID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListingNotFound
		}
		return err
	}

	if listing.PosterID != actingUserID {
		return ErrNotPoster
	}
	if offer.Status != model.OfferPending {
		return ErrOfferNotPending
	}

	return s.offers.UpdateStatus(ctx, offerID, model.OfferPending, model.OfferRejected)
}

func (s *TradeService) ListOffersForPost(ctx context.Context, postID int64) ([]model.TradeOffer, error) {
	if _, err := s.listings.GetByID(ctx, postID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return s.offers.ListByPost(ctx, postID)
}

func (s *TradeService) requireHolding(ctx context.Context, userID, cardID string) error {
	qty, err := s.ledger.GetQuantity(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if qty < 1 {
		return &repository.InsufficientQuantityError{UserID: userID, CardID: cardID}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
