package cart_test

import (
	"path/filepath"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwick/storefront-api/internal/cart"
	"github.com/emberwick/storefront-api/internal/catalog"
	"github.com/emberwick/storefront-api/internal/logger"
	"github.com/emberwick/storefront-api/internal/store"
)

func init() {
	logger.Init("test")
}

func newTestStore(t *testing.T) (*cart.Store, *store.Store) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return cart.NewStore(db, EventBus.New()), db
}

func candle(id string, price, current float64) catalog.Product {
	return catalog.Product{
		ID:           id,
		Name:         "Cedar & Smoke " + id,
		Price:        price,
		CurrentPrice: current,
		WeightGrams:  250,
		Stock:        10,
	}
}

func TestAddMergesQuantitiesPerProduct(t *testing.T) {
	carts, _ := newTestStore(t)
	session := "s1"

	require.NoError(t, carts.Add(session, candle("p1", 20, 20), 2))
	require.NoError(t, carts.Add(session, candle("p1", 20, 20), 1))
	require.NoError(t, carts.Add(session, candle("p2", 12, 9), 1))

	items := carts.Items(session)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, 60+9.0, carts.Subtotal(session))
}

func TestAddRejectsBadQuantity(t *testing.T) {
	carts, _ := newTestStore(t)

	assert.Error(t, carts.Add("s1", candle("p1", 20, 20), 0))
	assert.Error(t, carts.Add("s1", candle("p1", 20, 20), -2))
	assert.Empty(t, carts.Items("s1"))
}

func TestAddSignalsCartOpen(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	defer db.Close()

	bus := EventBus.New()
	var opened []string
	require.NoError(t, bus.Subscribe(cart.TopicCartOpened, func(sessionID string) {
		opened = append(opened, sessionID)
	}))

	carts := cart.NewStore(db, bus)
	require.NoError(t, carts.Add("s1", candle("p1", 20, 20), 1))

	bus.WaitAsync()
	assert.Equal(t, []string{"s1"}, opened)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name        string
		newQuantity int
		wantItems   int
		wantQty     int
	}{
		{name: "positive quantity is set", newQuantity: 5, wantItems: 1, wantQty: 5},
		{name: "zero removes the line", newQuantity: 0, wantItems: 0},
		{name: "negative removes the line", newQuantity: -1, wantItems: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts, _ := newTestStore(t)
			require.NoError(t, carts.Add("s1", candle("p1", 20, 20), 2))

			carts.UpdateQuantity("s1", "p1", tt.newQuantity)

			items := carts.Items("s1")
			require.Len(t, items, tt.wantItems)
			if tt.wantItems > 0 {
				assert.Equal(t, tt.wantQty, items[0].Quantity)
			}
		})
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	carts, _ := newTestStore(t)
	require.NoError(t, carts.Add("s1", candle("p1", 20, 20), 1))

	carts.Remove("s1", "p1")
	carts.Remove("s1", "p1")
	carts.Remove("s1", "never-added")

	assert.Empty(t, carts.Items("s1"))
}

func TestSubtotalUsesEffectivePriceAndRoundsOnce(t *testing.T) {
	carts, _ := newTestStore(t)
	// three units at 3.333 each accumulate to 9.999 and round once to 10.00
	require.NoError(t, carts.Add("s1", candle("p1", 5, 3.333), 3))

	assert.Equal(t, 10.0, carts.Subtotal("s1"))
}

func TestSessionsAreIsolated(t *testing.T) {
	carts, _ := newTestStore(t)
	require.NoError(t, carts.Add("s1", candle("p1", 20, 20), 1))

	assert.Empty(t, carts.Items("s2"))
	assert.Equal(t, 0.0, carts.Subtotal("s2"))
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")

	db, err := store.Open(path)
	require.NoError(t, err)
	carts := cart.NewStore(db, EventBus.New())
	require.NoError(t, carts.Add("s1", candle("p1", 20, 15), 2))
	require.NoError(t, carts.Add("s1", candle("p2", 8, 8), 1))
	before := carts.Items("s1")
	require.NoError(t, db.Close())

	// a fresh process rehydrates the identical cart
	db, err = store.Open(path)
	require.NoError(t, err)
	defer db.Close()
	reloaded := cart.NewStore(db, EventBus.New())

	assert.Equal(t, before, reloaded.Items("s1"))
	assert.Equal(t, 38.0, reloaded.Subtotal("s1"))
}

func TestCorruptPersistedCartYieldsEmptyCart(t *testing.T) {
	carts, db := newTestStore(t)
	require.NoError(t, db.Put(store.CartBucket, "s1", []byte("{not json")))

	assert.Empty(t, carts.Items("s1"))
	assert.Equal(t, 0.0, carts.Subtotal("s1"))

	// the cart is usable after discarding the corrupt record
	require.NoError(t, carts.Add("s1", candle("p1", 20, 20), 1))
	assert.Len(t, carts.Items("s1"), 1)
}

func TestClearEmptiesCartAndStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")
	db, err := store.Open(path)
	require.NoError(t, err)
	carts := cart.NewStore(db, EventBus.New())

	require.NoError(t, carts.Add("s1", candle("p1", 20, 20), 2))
	carts.Clear("s1")
	assert.Empty(t, carts.Items("s1"))
	require.NoError(t, db.Close())

	db, err = store.Open(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Empty(t, cart.NewStore(db, EventBus.New()).Items("s1"))
}

func TestWeight(t *testing.T) {
	carts, _ := newTestStore(t)
	require.NoError(t, carts.Add("s1", candle("p1", 20, 20), 2))
	require.NoError(t, carts.Add("s1", candle("p2", 8, 8), 1))

	assert.Equal(t, 750, carts.Weight("s1"))
}
