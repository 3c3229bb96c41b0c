package repository

import (
	"context"

	"github.com/Goatt69/cardholder-api/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CardRepository struct {
	pool *pgxpool.Pool
}

func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

func (r *CardRepository) List(ctx context.Context) ([]model.Card, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, rarity, set_name, image_url FROM cards ORDER BY set_name, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.Rarity, &c.SetName, &c.ImageURL); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (*model.Card, error) {
	c := &model.Card{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, rarity, set_name, image_url FROM cards WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Rarity, &c.SetName, &c.ImageURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}
