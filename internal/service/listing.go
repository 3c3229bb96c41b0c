package service

import (
	"context"
	"errors"

	"github.com/Goatt69/cardholder-api/internal/model"

	"github.com/jackc/pgx/v5"
)

var (
	ErrCardNotFound      = errors.New("card not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CardStore is satisfied by repository.CardRepository.
type CardStore interface {
	List(ctx context.Context) ([]model.Card, error)
	GetByID(ctx context.Context, id string) (*model.Card, error)
}

type ListingService struct {
	ledger   Ledger
	listings ListingStore
	cards    CardStore
}

func NewListingService(ledger Ledger, listings ListingStore, cards CardStore) *ListingService {
	return &ListingService{ledger: ledger, listings: listings, cards: cards}
}

// CreateListing checks the poster holds at least one of the card. Checked,
// not reserved: the poster keeps the card until an offer settles.
func (s *ListingService) CreateListing(ctx context.Context, posterID string, req *model.CreateListingRequest) (*model.Listing, error) {
	card, err := s.cards.GetByID(ctx, req.CardID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	qty, err := s.ledger.GetQuantity(ctx, posterID, req.CardID)
	if err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, ErrCardNotOwned
	}

	listing := &model.Listing{
		PosterID:    posterID,
		CardID:      req.CardID,
		Description: req.Description,
		Status:      model.ListingActive,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	listing.Card = card
	return listing, nil
}

func (s *ListingService) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) ListListings(ctx context.Context) ([]model.Listing, error) {
	return s.listings.ListVisible(ctx)
}

// WithdrawListing takes an active listing off the market. Poster-only;
// settled and moderated listings cannot be withdrawn.
func (s *ListingService) WithdrawListing(ctx context.Context, id int64, actingUserID string) error {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListingNotFound
		}
		return err
	}

	if listing.PosterID != actingUserID {
		return ErrNotPoster
	}
	if !listing.Status.CanTransitionTo(model.ListingInactive) {
		return ErrInvalidTransition
	}

	return s.listings.UpdateStatus(ctx, id, listing.Status, model.ListingInactive)
}

// ChangeStatus applies an externally requested transition. Only
// Active→Inactive (withdrawal) and Active→Disabled (moderation) are
// reachable here; settlement drives its own transitions.
func (s *ListingService) ChangeStatus(ctx context.Context, id int64, next model.ListingStatus) error {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListingNotFound
		}
		return err
	}

	if next != model.ListingInactive && next != model.ListingDisabled {
		return ErrInvalidTransition
	}
	if !listing.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	return s.listings.UpdateStatus(ctx, id, listing.Status, next)
}
