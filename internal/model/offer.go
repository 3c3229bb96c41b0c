package model

import (
	"fmt"
	"time"
)

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// Accepted and Rejected are terminal.
var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferPending: {OfferAccepted, OfferRejected},
}

func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	for _, allowed := range offerTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseOfferStatus(s string) (OfferStatus, error) {
	switch OfferStatus(s) {
	case OfferPending, OfferAccepted, OfferRejected:
		return OfferStatus(s), nil
	}
	return "", fmt.Errorf("unknown offer status %q", s)
}

type TradeOffer struct {
	ID           int64         `json:"id"`
	PostID       int64         `json:"post_id"`
	TraderID     string        `json:"trader_id"`
	Status       OfferStatus   `json:"status"`
	OfferDate    time.Time     `json:"offer_date"`
	OfferedCards []OfferedCard `json:"offered_cards"`
}

type OfferedCard struct {
	ID     int64  `json:"id"`
	CardID string `json:"card_id"`
	Card   *Card  `json:"card,omitempty"`
}

type CreateOfferRequest struct {
	OfferedCardIDs []string `json:"offered_card_ids"`
}
