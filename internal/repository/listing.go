package repository

import (
	"context"

	"github.com/Goatt69/cardholder-api/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO listings (poster_id, card_id, description, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, l.PosterID, l.CardID, l.Description, l.Status).Scan(&l.ID, &l.CreatedAt)
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*model.Listing, error) {
	l := &model.Listing{}
	card := &model.Card{}
	err := r.pool.QueryRow(ctx, `
		SELECT l.id, l.poster_id, l.card_id, l.description, l.status, l.buyer_id, l.created_at,
		       c.name, c.rarity, c.set_name, c.image_url
		FROM listings l
		JOIN cards c ON c.id = l.card_id
		WHERE l.id = $1
	`, id).Scan(
		&l.ID, &l.PosterID, &l.CardID, &l.Description, &l.Status, &l.BuyerID, &l.CreatedAt,
		&card.Name, &card.Rarity, &card.SetName, &card.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	card.ID = l.CardID
	l.Card = card
	return l, nil
}

// ListVisible returns all non-disabled listings, newest first.
func (r *ListingRepository) ListVisible(ctx context.Context) ([]model.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.poster_id, l.card_id, l.description, l.status, l.buyer_id, l.created_at,
		       c.name, c.rarity, c.set_name, c.image_url
		FROM listings l
		JOIN cards c ON c.id = l.card_id
		WHERE l.status <> 'disabled'
		ORDER BY l.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []model.Listing{}
	for rows.Next() {
		var l model.Listing
		card := &model.Card{}
		if err := rows.Scan(
			&l.ID, &l.PosterID, &l.CardID, &l.Description, &l.Status, &l.BuyerID, &l.CreatedAt,
			&card.Name, &card.Rarity, &card.SetName, &card.ImageURL,
		); err != nil {
			return nil, err
		}
		card.ID = l.CardID
		l.Card = card
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// UpdateStatus applies a guarded transition: the row only changes if it is
// still in the expected prior status. Zero rows affected means someone else
// moved it first.
func (r *ListingRepository) UpdateStatus(ctx context.Context, id int64, from, to model.ListingStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE listings SET status = $3 WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}
