package autocomplete_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwick/storefront-api/internal/autocomplete"
	"github.com/emberwick/storefront-api/internal/client/places"
	"github.com/emberwick/storefront-api/internal/logger"
)

func init() {
	logger.Init("test")
}

const testDelay = 30 * time.Millisecond

type provider struct {
	queries atomic.Int32
	details atomic.Int32
	fail    atomic.Bool
}

func (p *provider) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/maps/api/place/autocomplete/json", func(w http.ResponseWriter, r *http.Request) {
		p.queries.Add(1)
		if p.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"predictions": []places.Prediction{
				{PlaceID: "place-1", Description: "123 Main St, Portland, OR"},
			},
		})
	})
	mux.HandleFunc("/maps/api/place/details/json", func(w http.ResponseWriter, r *http.Request) {
		p.details.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"result": map[string]interface{}{
				"address_components": []map[string]interface{}{
					{"long_name": "123", "short_name": "123", "types": []string{"street_number"}},
					{"long_name": "Main St", "short_name": "Main St", "types": []string{"route"}},
					{"long_name": "Portland", "short_name": "Portland", "types": []string{"locality"}},
					{"long_name": "97201", "short_name": "97201", "types": []string{"postal_code"}},
					{"long_name": "United States", "short_name": "US", "types": []string{"country"}},
				},
			},
		})
	})
	return mux
}

func newBridge(t *testing.T) (*autocomplete.Bridge, *provider) {
	t.Helper()
	p := &provider{}
	srv := httptest.NewServer(p.handler())
	t.Cleanup(srv.Close)
	return autocomplete.NewBridge(places.New(srv.URL, "test-key"), testDelay), p
}

func TestShortInputIssuesNoQuery(t *testing.T) {
	bridge, p := newBridge(t)

	predictions, err := bridge.Query(context.Background(), "12")
	require.NoError(t, err)
	assert.Nil(t, predictions)
	assert.Equal(t, int32(0), p.queries.Load())
}

func TestMinimumLengthInputIssuesOneDebouncedQuery(t *testing.T) {
	bridge, p := newBridge(t)

	start := time.Now()
	predictions, err := bridge.Query(context.Background(), "123")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), testDelay)
	assert.Equal(t, int32(1), p.queries.Load())
	require.Len(t, predictions, 1)
	assert.Equal(t, "place-1", predictions[0].PlaceID)
}

func TestNewerInputSupersedesPendingCycle(t *testing.T) {
	bridge, p := newBridge(t)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = bridge.Query(context.Background(), "123")
	}()

	// let the first cycle enter its debounce wait, then supersede it
	time.Sleep(testDelay / 3)
	predictions, err := bridge.Query(context.Background(), "123 M")
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	wg.Wait()
	assert.ErrorIs(t, firstErr, autocomplete.ErrSuperseded)
	// only the newest cycle reached the provider
	assert.Equal(t, int32(1), p.queries.Load())
}

func TestSelectionSuppressesNextCycle(t *testing.T) {
	bridge, p := newBridge(t)

	addr, err := bridge.Select(context.Background(), "place-1")
	require.NoError(t, err)
	assert.Equal(t, "123 Main St", addr.Address)
	assert.Equal(t, "Portland", addr.City)
	assert.Equal(t, "97201", addr.Zip)
	assert.Equal(t, "US", addr.Country)

	// the selection fill's change event must not re-query
	predictions, err := bridge.Query(context.Background(), "123 Main St, Portland, OR")
	require.NoError(t, err)
	assert.Nil(t, predictions)
	assert.Equal(t, int32(0), p.queries.Load())

	// suppression is one-shot: the user typing again queries normally
	predictions, err = bridge.Query(context.Background(), "456 Oak")
	require.NoError(t, err)
	assert.Len(t, predictions, 1)
	assert.Equal(t, int32(1), p.queries.Load())
}

func TestProviderFailureDegradesToEmptySuggestions(t *testing.T) {
	bridge, p := newBridge(t)
	p.fail.Store(true)

	predictions, err := bridge.Query(context.Background(), "123 Main")
	require.NoError(t, err)
	assert.Nil(t, predictions)
}

func TestStopCancelsPendingCycle(t *testing.T) {
	bridge, p := newBridge(t)

	var wg sync.WaitGroup
	var err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err = bridge.Query(context.Background(), "123 Main")
	}()

	time.Sleep(testDelay / 3)
	bridge.Stop()
	wg.Wait()

	assert.ErrorIs(t, err, autocomplete.ErrSuperseded)
	assert.Equal(t, int32(0), p.queries.Load())
}

func TestManagerIsolatesSessions(t *testing.T) {
	p := &provider{}
	srv := httptest.NewServer(p.handler())
	defer srv.Close()

	manager := autocomplete.NewManager(places.New(srv.URL, "test-key"), testDelay)

	b1 := manager.Bridge("s1")
	b2 := manager.Bridge("s2")
	assert.NotSame(t, b1, b2)
	assert.Same(t, b1, manager.Bridge("s1"))

	// selecting in one session must not suppress the other
	_, err := b1.Select(context.Background(), "place-1")
	require.NoError(t, err)
	predictions, err := b2.Query(context.Background(), "123 Main")
	require.NoError(t, err)
	assert.Len(t, predictions, 1)

	manager.Teardown("s1")
	assert.NotSame(t, b1, manager.Bridge("s1"))
}
