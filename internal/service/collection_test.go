package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCard(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewCollectionService(ledger, newFakeCardStore(pikachu))
	ctx := context.Background()

	holding, err := svc.AddCard(ctx, bob, pikachu, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, holding.Quantity)

	// No dedup: a second credit stacks. Duplicate calls are duplicate
	// effects by design.
	holding, err = svc.AddCard(ctx, bob, pikachu, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, holding.Quantity)
}

func TestAddCard_InvalidQuantity(t *testing.T) {
	svc := NewCollectionService(newFakeLedger(), newFakeCardStore(pikachu))

	_, err := svc.AddCard(context.Background(), bob, pikachu, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddCard(context.Background(), bob, pikachu, -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddCard_UnknownCard(t *testing.T) {
	svc := NewCollectionService(newFakeLedger(), newFakeCardStore(pikachu))

	_, err := svc.AddCard(context.Background(), bob, "no-such-card", 1)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestListHoldings(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewCollectionService(ledger, newFakeCardStore(pikachu, charizard))
	ctx := context.Background()

	_, err := svc.AddCard(ctx, bob, pikachu, 2)
	require.NoError(t, err)
	_, err = svc.AddCard(ctx, bob, charizard, 1)
	require.NoError(t, err)

	holdings, err := svc.ListHoldings(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, holdings, 2)

	holdings, err = svc.ListHoldings(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, holdings)
}

func TestGetCard(t *testing.T) {
	svc := NewCollectionService(newFakeLedger(), newFakeCardStore(pikachu))

	card, err := svc.GetCard(context.Background(), pikachu)
	require.NoError(t, err)
	assert.Equal(t, pikachu, card.ID)

	_, err = svc.GetCard(context.Background(), "no-such-card")
	assert.ErrorIs(t, err, ErrCardNotFound)
}
