package model

import (
	"fmt"
	"time"
)

type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingPending  ListingStatus = "pending"
	ListingInactive ListingStatus = "inactive"
	ListingDisabled ListingStatus = "disabled"
)

// listingTransitions is the full lifecycle. Inactive and Disabled are terminal.
var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingActive:  {ListingPending, ListingInactive, ListingDisabled},
	ListingPending: {ListingInactive},
}

func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	for _, allowed := range listingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseListingStatus(s string) (ListingStatus, error) {
	switch ListingStatus(s) {
	case ListingActive, ListingPending, ListingInactive, ListingDisabled:
		return ListingStatus(s), nil
	}
	return "", fmt.Errorf("unknown listing status %q", s)
}

type Listing struct {
	ID          int64         `json:"id"`
	PosterID    string        `json:"poster_id"`
	CardID      string        `json:"card_id"`
	Description string        `json:"description"`
	Status      ListingStatus `json:"status"`
	BuyerID     *string       `json:"buyer_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Card        *Card         `json:"card,omitempty"`
}

type CreateListingRequest struct {
	CardID      string `json:"card_id"`
	Description string `json:"description"`
}

type ChangeListingStatusRequest struct {
	Status string `json:"status"`
}
