package repository

import (
	"context"

	"github.com/Goatt69/cardholder-api/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// Create inserts the offer and its offered cards in one transaction so a
// half-written offer is never visible.
func (r *OfferRepository) Create(ctx context.Context, o *model.TradeOffer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO trade_offers (post_id, trader_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, offer_date
	`, o.PostID, o.TraderID, o.Status).Scan(&o.ID, &o.OfferDate)
	if err != nil {
		return err
	}

	for i := range o.OfferedCards {
		oc := &o.OfferedCards[i]
		err = tx.QueryRow(ctx, `
			INSERT INTO offered_cards (trade_offer_id, card_id)
			VALUES ($1, $2)
			RETURNING id
		`, o.ID, oc.CardID).Scan(&oc.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*model.TradeOffer, error) {
	o := &model.TradeOffer{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, post_id, trader_id, status, offer_date
		FROM trade_offers WHERE id = $1
	`, id).Scan(&o.ID, &o.PostID, &o.TraderID, &o.Status, &o.OfferDate)
	if err != nil {
		return nil, err
	}

	cards, err := r.offeredCards(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.OfferedCards = cards
	return o, nil
}

// ListByPost returns all offers for a listing, newest first, with the
// offered cards expanded.
func (r *OfferRepository) ListByPost(ctx context.Context, postID int64) ([]model.TradeOffer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, trader_id, status, offer_date
		FROM trade_offers
		WHERE post_id = $1
		ORDER BY offer_date DESC, id DESC
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := []model.TradeOffer{}
	for rows.Next() {
		var o model.TradeOffer
		if err := rows.Scan(&o.ID, &o.PostID, &o.TraderID, &o.Status, &o.OfferDate); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range offers {
		cards, err := r.offeredCards(ctx, offers[i].ID)
		if err != nil {
			return nil, err
		}
		offers[i].OfferedCards = cards
	}
	return offers, nil
}

func (r *OfferRepository) UpdateStatus(ctx context.Context, id int64, from, to model.OfferStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE trade_offers SET status = $3 WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *OfferRepository) offeredCards(ctx context.Context, offerID int64) ([]model.OfferedCard, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT oc.id, oc.card_id, c.name, c.rarity, c.set_name, c.image_url
		FROM offered_cards oc
		JOIN cards c ON c.id = oc.card_id
		WHERE oc.trade_offer_id = $1
		ORDER BY oc.id
	`, offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []model.OfferedCard{}
	for rows.Next() {
		var oc model.OfferedCard
		card := &model.Card{}
		if err := rows.Scan(&oc.ID, &oc.CardID, &card.Name, &card.Rarity, &card.SetName, &card.ImageURL); err != nil {
			return nil, err
		}
		card.ID = oc.CardID
		oc.Card = card
		cards = append(cards, oc)
	}
	return cards, rows.Err()
}
