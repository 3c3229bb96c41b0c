package service

import (
	"context"
	"errors"

	"github.com/Goatt69/cardholder-api/internal/model"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

// CollectionService exposes a user's holdings and the credit surface that
// brings cards into the ledger. Duplicate credits are duplicate effects;
// there is no dedup here, callers own their retries.
type CollectionService struct {
	ledger Ledger
	cards  CardStore
}

func NewCollectionService(ledger Ledger, cards CardStore) *CollectionService {
	return &CollectionService{ledger: ledger, cards: cards}
}

func (s *CollectionService) ListHoldings(ctx context.Context, userID string) ([]model.Holding, error) {
	return s.ledger.ListByUser(ctx, userID)
}

func (s *CollectionService) AddCard(ctx context.Context, userID, cardID string, qty int) (*model.Holding, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.cards.GetByID(ctx, cardID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return s.ledger.Credit(ctx, userID, cardID, qty)
}

func (s *CollectionService) ListCards(ctx context.Context) ([]model.Card, error) {
	return s.cards.List(ctx)
}

func (s *CollectionService) GetCard(ctx context.Context, id string) (*model.Card, error) {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}
