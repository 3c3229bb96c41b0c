package repository

import (
	"context"
	"fmt"

	"github.com/Goatt69/cardholder-api/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SettleParams carries everything the settlement transaction needs. The
// service layer validates ownership and authorization before calling Settle;
// the transaction itself re-checks statuses and balances so concurrent
// accepts cannot both win.
type SettleParams struct {
	OfferID        int64
	PostID         int64
	PosterID       string
	TraderID       string
	ListedCardID   string
	OfferedCardIDs []string
}

// TradeRepository executes accepted-offer settlement as one atomic unit of
// work: lock the listing row, verify both sides are still settleable, move
// every card, then flip the offer, its siblings, and the listing.
type TradeRepository struct {
	pool *pgxpool.Pool
}

func NewTradeRepository(pool *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{pool: pool}
}

func (r *TradeRepository) Settle(ctx context.Context, p SettleParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock the listing for the duration of the settlement. A concurrent
	// accept against the same listing blocks here, then sees the status
	// has already moved and fails the guard below.
	var listingStatus model.ListingStatus
	err = tx.QueryRow(ctx, `
		SELECT status FROM listings WHERE id = $1 FOR UPDATE
	`, p.PostID).Scan(&listingStatus)
	if err != nil {
		return err
	}
	if listingStatus != model.ListingActive {
		return fmt.Errorf("listing %d is %s: %w", p.PostID, listingStatus, ErrConflict)
	}

	var offerStatus model.OfferStatus
	err = tx.QueryRow(ctx, `
		SELECT status FROM trade_offers WHERE id = $1 FOR UPDATE
	`, p.OfferID).Scan(&offerStatus)
	if err != nil {
		return err
	}
	if offerStatus != model.OfferPending {
		return fmt.Errorf("offer %d is %s: %w", p.OfferID, offerStatus, ErrConflict)
	}

	// Listed card goes poster -> trader. The conditional debit inside
	// transferTx is the authoritative ownership re-check: if either side
	// no longer holds a card, the whole transaction rolls back.
	if err := transferTx(ctx, tx, p.PosterID, p.TraderID, p.ListedCardID, 1); err != nil {
		return err
	}

	// Offered cards go trader -> poster.
	for _, cardID := range p.OfferedCardIDs {
		if err := transferTx(ctx, tx, p.TraderID, p.PosterID, cardID, 1); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE trade_offers SET status = $2 WHERE id = $1
	`, p.OfferID, model.OfferAccepted)
	if err != nil {
		return err
	}

	// Sibling pending offers can never settle once the listing closes;
	// reject them in the same transaction.
	_, err = tx.Exec(ctx, `
		UPDATE trade_offers SET status = $3
		WHERE post_id = $1 AND id <> $2 AND status = $4
	`, p.PostID, p.OfferID, model.OfferRejected, model.OfferPending)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE listings SET status = $2, buyer_id = $3 WHERE id = $1
	`, p.PostID, model.ListingInactive, p.TraderID)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if isRetryableTxError(err) {
			return fmt.Errorf("settle offer %d: %w", p.OfferID, ErrConflict)
		}
		return err
	}
	return nil
}
