package model

// Holding is one user's quantity of one card. Rows only exist once the user
// has been credited at least once; a missing row means quantity zero.
type Holding struct {
	UserID   string `json:"user_id"`
	CardID   string `json:"card_id"`
	Quantity int    `json:"quantity"`
	Card     *Card  `json:"card,omitempty"`
}

type AddCardRequest struct {
	Quantity int `json:"quantity"`
}
