package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ListingStatus
		ok       bool
	}{
		{ListingActive, ListingPending, true},
		{ListingActive, ListingInactive, true},
		{ListingActive, ListingDisabled, true},
		{ListingPending, ListingInactive, true},
		{ListingPending, ListingDisabled, false},
		{ListingPending, ListingActive, false},
		{ListingInactive, ListingActive, false},
		{ListingInactive, ListingDisabled, false},
		{ListingDisabled, ListingActive, false},
		{ListingDisabled, ListingInactive, false},
		{ListingActive, ListingActive, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOfferStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OfferStatus
		ok       bool
	}{
		{OfferPending, OfferAccepted, true},
		{OfferPending, OfferRejected, true},
		{OfferAccepted, OfferRejected, false},
		{OfferAccepted, OfferPending, false},
		{OfferRejected, OfferAccepted, false},
		{OfferRejected, OfferPending, false},
		{OfferPending, OfferPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestParseListingStatus(t *testing.T) {
	s, err := ParseListingStatus("disabled")
	assert.NoError(t, err)
	assert.Equal(t, ListingDisabled, s)

	_, err = ParseListingStatus("archived")
	assert.Error(t, err)

	_, err = ParseListingStatus("")
	assert.Error(t, err)
}

func TestParseOfferStatus(t *testing.T) {
	s, err := ParseOfferStatus("accepted")
	assert.NoError(t, err)
	assert.Equal(t, OfferAccepted, s)

	_, err = ParseOfferStatus("Accepted")
	assert.Error(t, err)
}
