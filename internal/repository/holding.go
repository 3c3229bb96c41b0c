package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Goatt69/cardholder-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrInsufficientQuantity means a debit would drive a holding negative.
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	// ErrConflict means a concurrent mutation won; the caller may retry.
	ErrConflict = errors.New("conflicting concurrent update")
)

// InsufficientQuantityError names the user and card a debit failed on.
type InsufficientQuantityError struct {
	UserID string
	CardID string
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("user %s does not hold enough of card %s", e.UserID, e.CardID)
}

func (e *InsufficientQuantityError) Unwrap() error { return ErrInsufficientQuantity }

// isRetryableTxError reports serialization and deadlock failures
// (SQLSTATE 40001, 40P01) that the caller should see as a Conflict.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// HoldingRepository is the inventory ledger: every quantity mutation in the
// system goes through Credit, Debit or Transfer (or their tx-scoped forms
// used by TradeRepository during settlement).
type HoldingRepository struct {
	pool *pgxpool.Pool
}

func NewHoldingRepository(pool *pgxpool.Pool) *HoldingRepository {
	return &HoldingRepository{pool: pool}
}

// GetQuantity returns 0 for a user/card pair with no ledger row.
func (r *HoldingRepository) GetQuantity(ctx context.Context, userID, cardID string) (int, error) {
	var qty int
	err := r.pool.QueryRow(ctx, `
		SELECT quantity FROM card_holdings WHERE user_id = $1 AND card_id = $2
	`, userID, cardID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}

func (r *HoldingRepository) ListByUser(ctx context.Context, userID string) ([]model.Holding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT h.user_id, h.card_id, h.quantity, c.name, c.rarity, c.set_name, c.image_url
		FROM card_holdings h
		JOIN cards c ON c.id = h.card_id
		WHERE h.user_id = $1 AND h.quantity > 0
		ORDER BY c.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		card := &model.Card{}
		if err := rows.Scan(&h.UserID, &h.CardID, &h.Quantity, &card.Name, &card.Rarity, &card.SetName, &card.ImageURL); err != nil {
			return nil, err
		}
		card.ID = h.CardID
		h.Card = card
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// Credit creates the holding row on first use, otherwise increments it.
func (r *HoldingRepository) Credit(ctx context.Context, userID, cardID string, qty int) (*model.Holding, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("credit quantity must be positive, got %d", qty)
	}
	h := &model.Holding{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO card_holdings (user_id, card_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, card_id) DO UPDATE SET quantity = card_holdings.quantity + $3
		RETURNING user_id, card_id, quantity
	`, userID, cardID, qty).Scan(&h.UserID, &h.CardID, &h.Quantity)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Debit decrements the holding, failing if the balance would go negative.
// The WHERE clause is the invariant: no interleaving of concurrent debits
// can ever produce a negative quantity.
func (r *HoldingRepository) Debit(ctx context.Context, userID, cardID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("debit quantity must be positive, got %d", qty)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE card_holdings SET quantity = quantity - $3
		WHERE user_id = $1 AND card_id = $2 AND quantity >= $3
	`, userID, cardID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &InsufficientQuantityError{UserID: userID, CardID: cardID}
	}
	return nil
}

// Transfer moves qty of one card between two users in a single transaction.
func (r *HoldingRepository) Transfer(ctx context.Context, fromID, toID, cardID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("transfer quantity must be positive, got %d", qty)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := transferTx(ctx, tx, fromID, toID, cardID, qty); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if isRetryableTxError(err) {
			return fmt.Errorf("transfer %s from %s to %s: %w", cardID, fromID, toID, ErrConflict)
		}
		return err
	}
	return nil
}

// debitTx and creditTx are the tx-scoped ledger mutations shared with the
// settlement path in TradeRepository.

func debitTx(ctx context.Context, tx pgx.Tx, userID, cardID string, qty int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE card_holdings SET quantity = quantity - $3
		WHERE user_id = $1 AND card_id = $2 AND quantity >= $3
	`, userID, cardID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &InsufficientQuantityError{UserID: userID, CardID: cardID}
	}
	return nil
}

func creditTx(ctx context.Context, tx pgx.Tx, userID, cardID string, qty int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO card_holdings (user_id, card_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, card_id) DO UPDATE SET quantity = card_holdings.quantity + $3
	`, userID, cardID, qty)
	return err
}

func transferTx(ctx context.Context, tx pgx.Tx, fromID, toID, cardID string, qty int) error {
	if err := debitTx(ctx, tx, fromID, cardID, qty); err != nil {
		return err
	}
	return creditTx(ctx, tx, toID, cardID, qty)
}
