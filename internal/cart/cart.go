package cart

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/emberwick/storefront-api/internal/catalog"
	"github.com/emberwick/storefront-api/internal/logger"
	"github.com/emberwick/storefront-api/internal/store"
)

// TopicCartOpened is published with the session id whenever an add-to-cart
// should open the cart drawer in the presentation layer.
const TopicCartOpened = "cart:opened"

// Item is one cart line: a product snapshot plus a positive quantity.
// Identity is the product id; a cart holds at most one Item per product.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// record is the persisted envelope for one session's cart. UpdatedAt lets a
// rehydrating process detect that another writer got there first.
type record struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store holds all live session carts, persisting every mutation. Mutations
// are serialized under one lock, so overlapping adds apply atomically in
// issuance order.
type Store struct {
	mu     sync.Mutex
	carts  map[string]*record
	db     *store.Store
	bus    EventBus.Bus
	logger *zap.Logger
}

// NewStore creates a cart store backed by the given durable store. The bus
// carries presentation signals and may be shared with other components.
func NewStore(db *store.Store, bus EventBus.Bus) *Store {
	return &Store{
		carts:  make(map[string]*record),
		db:     db,
		bus:    bus,
		logger: logger.Log,
	}
}

// Bus exposes the event bus so the presentation layer can subscribe to cart
// signals.
func (s *Store) Bus() EventBus.Bus {
	return s.bus
}

// Add puts quantity units of a product into the session's cart, merging with
// an existing line for the same product id. It signals the presentation
// layer to open the cart.
func (s *Store) Add(sessionID string, product catalog.Product, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if product.ID == "" {
		return fmt.Errorf("product id is required")
	}

	s.mu.Lock()
	rec := s.ensure(sessionID)
	merged := false
	for i := range rec.Items {
		if rec.Items[i].Product.ID == product.ID {
			rec.Items[i].Quantity += quantity
			rec.Items[i].Product = product
			merged = true
			break
		}
	}
	if !merged {
		rec.Items = append(rec.Items, Item{Product: product, Quantity: quantity})
	}
	s.persist(sessionID, rec)
	s.mu.Unlock()

	s.bus.Publish(TopicCartOpened, sessionID)
	return nil
}

// UpdateQuantity sets a line's quantity; zero or negative removes the line.
func (s *Store) UpdateQuantity(sessionID, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensure(sessionID)
	for i := range rec.Items {
		if rec.Items[i].Product.ID != productID {
			continue
		}
		if quantity <= 0 {
			rec.Items = append(rec.Items[:i], rec.Items[i+1:]...)
		} else {
			rec.Items[i].Quantity = quantity
		}
		s.persist(sessionID, rec)
		return
	}
}

// Remove deletes a line from the cart. Removing an absent product is a
// no-op.
func (s *Store) Remove(sessionID, productID string) {
	s.UpdateQuantity(sessionID, productID, 0)
}

// Clear empties the session's cart and its persisted record. Called after a
// successful order submission.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	if err := s.db.Delete(store.CartBucket, sessionID); err != nil {
		s.logger.Error("failed to clear persisted cart",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Items returns a copy of the session's cart lines.
func (s *Store) Items(sessionID string) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensure(sessionID)
	items := make([]Item, len(rec.Items))
	copy(items, rec.Items)
	return items
}

// Subtotal sums effective price times quantity across the cart, rounding to
// currency precision once at the boundary.
func (s *Store) Subtotal(sessionID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensure(sessionID)
	var sum float64
	for _, item := range rec.Items {
		sum += catalog.EffectivePrice(item.Product) * float64(item.Quantity)
	}
	return catalog.RoundCurrency(sum)
}

// Weight returns the total package weight of the cart in grams, used for
// shipping rate lookups.
func (s *Store) Weight(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.ensure(sessionID)
	var grams int
	for _, item := range rec.Items {
		grams += item.Product.WeightGrams * item.Quantity
	}
	return grams
}

// ensure returns the in-memory cart for a session, rehydrating it from the
// durable store on first touch. Corrupt persisted data degrades to an empty
// cart. Callers must hold s.mu.
func (s *Store) ensure(sessionID string) *record {
	if rec, ok := s.carts[sessionID]; ok {
		return rec
	}

	rec := &record{}
	raw, err := s.db.Get(store.CartBucket, sessionID)
	if err != nil {
		s.logger.Error("failed to read persisted cart",
			zap.String("session_id", sessionID), zap.Error(err))
	} else if raw != nil {
		if err := json.Unmarshal(raw, rec); err != nil {
			s.logger.Warn("discarding corrupt persisted cart",
				zap.String("session_id", sessionID), zap.Error(err))
			*rec = record{}
		}
	}
	for i := 0; i < len(rec.Items); {
		if rec.Items[i].Quantity <= 0 || rec.Items[i].Product.ID == "" {
			rec.Items = append(rec.Items[:i], rec.Items[i+1:]...)
			continue
		}
		i++
	}
	s.carts[sessionID] = rec
	return rec
}

// persist writes the cart record through to the durable store. Callers must
// hold s.mu. If the stored copy is newer than ours another writer won the
// race; log it and overwrite (last write wins, no merge).
func (s *Store) persist(sessionID string, rec *record) {
	if raw, err := s.db.Get(store.CartBucket, sessionID); err == nil && raw != nil {
		var stored record
		if json.Unmarshal(raw, &stored) == nil && stored.UpdatedAt.After(rec.UpdatedAt) {
			s.logger.Warn("persisted cart modified by another writer, overwriting",
				zap.String("session_id", sessionID),
				zap.Time("stored_at", stored.UpdatedAt))
		}
	}

	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("failed to serialize cart",
			zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if err := s.db.Put(store.CartBucket, sessionID, data); err != nil {
		s.logger.Error("failed to persist cart",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}
