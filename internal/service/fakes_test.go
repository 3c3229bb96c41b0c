package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Goatt69/cardholder-api/internal/model"
	"github.com/Goatt69/cardholder-api/internal/repository"

	"github.com/jackc/pgx/v5"
)

type holdingKey struct {
	userID string
	cardID string
}

// fakeLedger mirrors the ledger contract: quantities never go negative and
// a missing entry reads as zero.
type fakeLedger struct {
	mu         sync.Mutex
	quantities map[holdingKey]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{quantities: make(map[holdingKey]int)}
}

func (f *fakeLedger) GetQuantity(_ context.Context, userID, cardID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quantities[holdingKey{userID, cardID}], nil
}

func (f *fakeLedger) Credit(_ context.Context, userID, cardID string, qty int) (*model.Holding, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("credit quantity must be positive, got %d", qty)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quantities[holdingKey{userID, cardID}] += qty
	return &model.Holding{UserID: userID, CardID: cardID, Quantity: f.quantities[holdingKey{userID, cardID}]}, nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID string) ([]model.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	holdings := []model.Holding{}
	for k, qty := range f.quantities {
		if k.userID == userID && qty > 0 {
			holdings = append(holdings, model.Holding{UserID: k.userID, CardID: k.cardID, Quantity: qty})
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].CardID < holdings[j].CardID })
	return holdings, nil
}

// total sums a card's quantity across all holders, for conservation checks.
func (f *fakeLedger) total(cardID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	for k, qty := range f.quantities {
		if k.cardID == cardID {
			sum += qty
		}
	}
	return sum
}

func (f *fakeLedger) snapshot() map[holdingKey]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make(map[holdingKey]int, len(f.quantities))
	for k, v := range f.quantities {
		copied[k] = v
	}
	return copied
}

type fakeListingStore struct {
	mu       sync.Mutex
	nextID   int64
	listings map[int64]*model.Listing
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: make(map[int64]*model.Listing)}
}

func (f *fakeListingStore) Create(_ context.Context, l *model.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = f.nextID
	l.CreatedAt = time.Now()
	copied := *l
	f.listings[l.ID] = &copied
	return nil
}

func (f *fakeListingStore) GetByID(_ context.Context, id int64) (*model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *l
	return &copied, nil
}

func (f *fakeListingStore) ListVisible(_ context.Context) ([]model.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Listing{}
	for _, l := range f.listings {
		if l.Status != model.ListingDisabled {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeListingStore) UpdateStatus(_ context.Context, id int64, from, to model.ListingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok || l.Status != from {
		return repository.ErrConflict
	}
	l.Status = to
	return nil
}

type fakeOfferStore struct {
	mu     sync.Mutex
	nextID int64
	offers map[int64]*model.TradeOffer
}

func newFakeOfferStore() *fakeOfferStore {
	return &fakeOfferStore{offers: make(map[int64]*model.TradeOffer)}
}

func (f *fakeOfferStore) Create(_ context.Context, o *model.TradeOffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	o.OfferDate = time.Now()
	for i := range o.OfferedCards {
		o.OfferedCards[i].ID = int64(i + 1)
	}
	copied := *o
	copied.OfferedCards = append([]model.OfferedCard(nil), o.OfferedCards...)
	f.offers[o.ID] = &copied
	return nil
}

func (f *fakeOfferStore) GetByID(_ context.Context, id int64) (*model.TradeOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *o
	copied.OfferedCards = append([]model.OfferedCard(nil), o.OfferedCards...)
	return &copied, nil
}

func (f *fakeOfferStore) ListByPost(_ context.Context, postID int64) ([]model.TradeOffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.TradeOffer{}
	for _, o := range f.offers {
		if o.PostID == postID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeOfferStore) UpdateStatus(_ context.Context, id int64, from, to model.OfferStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok || o.Status != from {
		return repository.ErrConflict
	}
	o.Status = to
	return nil
}

type fakeCardStore struct {
	cards map[string]model.Card
}

func newFakeCardStore(ids ...string) *fakeCardStore {
	cards := make(map[string]model.Card, len(ids))
	for _, id := range ids {
		cards[id] = model.Card{ID: id, Name: id}
	}
	return &fakeCardStore{cards: cards}
}

func (f *fakeCardStore) List(_ context.Context) ([]model.Card, error) {
	out := []model.Card{}
	for _, c := range f.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCardStore) GetByID(_ context.Context, id string) (*model.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

// fakeSettler reproduces the settlement transaction's contract against the
// in-memory fakes: status guards, conditional debits, and all-or-nothing
// application. failAfter injects a failure once that many transfers have
// been staged; staged work must never become visible.
type fakeSettler struct {
	ledger    *fakeLedger
	listings  *fakeListingStore
	offers    *fakeOfferStore
	failAfter int // -1 disables injection
}

func newFakeSettler(ledger *fakeLedger, listings *fakeListingStore, offers *fakeOfferStore) *fakeSettler {
	return &fakeSettler{ledger: ledger, listings: listings, offers: offers, failAfter: -1}
}

func (f *fakeSettler) Settle(_ context.Context, p repository.SettleParams) error {
	f.listings.mu.Lock()
	defer f.listings.mu.Unlock()
	f.offers.mu.Lock()
	defer f.offers.mu.Unlock()
	f.ledger.mu.Lock()
	defer f.ledger.mu.Unlock()

	listing, ok := f.listings.listings[p.PostID]
	if !ok {
		return pgx.ErrNoRows
	}
	if listing.Status != model.ListingActive {
		return fmt.Errorf("listing %d is %s: %w", p.PostID, listing.Status, repository.ErrConflict)
	}
	offer, ok := f.offers.offers[p.OfferID]
	if !ok {
		return pgx.ErrNoRows
	}
	if offer.Status != model.OfferPending {
		return fmt.Errorf("offer %d is %s: %w", p.OfferID, offer.Status, repository.ErrConflict)
	}

	// Stage transfers on a copy; commit only if every one succeeds.
	staged := make(map[holdingKey]int, len(f.ledger.quantities))
	for k, v := range f.ledger.quantities {
		staged[k] = v
	}
	transfers := 0
	move := func(from, to, cardID string) error {
		if f.failAfter >= 0 && transfers >= f.failAfter {
			return fmt.Errorf("injected settlement failure after %d transfers", transfers)
		}
		if staged[holdingKey{from, cardID}] < 1 {
			return &repository.InsufficientQuantityError{UserID: from, CardID: cardID}
		}
		staged[holdingKey{from, cardID}]--
		staged[holdingKey{to, cardID}]++
		transfers++
		return nil
	}

	if err := move(p.PosterID, p.TraderID, p.ListedCardID); err != nil {
		return err
	}
	for _, cardID := range p.OfferedCardIDs {
		if err := move(p.TraderID, p.PosterID, cardID); err != nil {
			return err
		}
	}

	f.ledger.quantities = staged
	offer.Status = model.OfferAccepted
	for _, sibling := range f.offers.offers {
		if sibling.PostID == p.PostID && sibling.ID != p.OfferID && sibling.Status == model.OfferPending {
			sibling.Status = model.OfferRejected
		}
	}
	listing.Status = model.ListingInactive
	trader := p.TraderID
	listing.BuyerID = &trader
	return nil
}
