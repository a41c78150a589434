package autocomplete

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/emberwick/storefront-api/internal/catalog"
	"github.com/emberwick/storefront-api/internal/client/places"
	"github.com/emberwick/storefront-api/internal/logger"
)

const (
	// DefaultDelay is the debounce window between the last keystroke and the
	// provider query.
	DefaultDelay = 500 * time.Millisecond
	// MinQueryLength is the input length below which no query is issued.
	MinQueryLength = 3
)

// ErrSuperseded reports that a newer input event replaced this query cycle
// before it produced a result.
var ErrSuperseded = errors.New("query superseded by newer input")

// Bridge debounces address lookups for one input field. Each input event
// cancels the pending cycle; only the most recent cycle's result is ever
// delivered. Provider failures degrade to an empty suggestion list so manual
// entry keeps working.
type Bridge struct {
	mu           sync.Mutex
	generation   uint64
	superseded   chan struct{}
	suppressNext bool

	places *places.Client
	delay  time.Duration
	logger *zap.Logger
}

// NewBridge creates a bridge over the given places client. A non-positive
// delay falls back to DefaultDelay.
func NewBridge(client *places.Client, delay time.Duration) *Bridge {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Bridge{
		places: client,
		delay:  delay,
		logger: logger.Log,
	}
}

// Query runs one debounced autocomplete cycle for the current input text. It
// blocks for the debounce window, then queries the provider unless a newer
// input event arrived in the meantime. Inputs below the minimum length, and
// the first input after a selection fill, return no suggestions without
// querying.
func (b *Bridge) Query(ctx context.Context, input string) ([]places.Prediction, error) {
	b.mu.Lock()
	if b.suppressNext {
		// the change event was our own selection fill
		b.suppressNext = false
		b.mu.Unlock()
		return nil, nil
	}
	b.supersedeLocked()
	cancelled := b.superseded
	gen := b.generation
	b.mu.Unlock()

	if len(strings.TrimSpace(input)) < MinQueryLength {
		return nil, nil
	}

	timer := time.NewTimer(b.delay)
	defer timer.Stop()
	select {
	case <-cancelled:
		return nil, ErrSuperseded
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	predictions, err := b.places.Autocomplete(ctx, input)

	b.mu.Lock()
	stale := gen != b.generation
	b.mu.Unlock()
	if stale {
		return nil, ErrSuperseded
	}
	if err != nil {
		// degrade to manual entry, never block the form
		b.logger.Warn("address autocomplete lookup failed", zap.Error(err))
		return nil, nil
	}
	return predictions, nil
}

// Select resolves a chosen prediction into a structured address. It cancels
// any pending query cycle and suppresses the next one, since selecting fills
// the input programmatically.
func (b *Bridge) Select(ctx context.Context, placeID string) (*catalog.Address, error) {
	b.mu.Lock()
	b.supersedeLocked()
	b.suppressNext = true
	b.mu.Unlock()

	addr, err := b.places.Details(ctx, placeID)
	if err != nil {
		b.logger.Warn("place details lookup failed",
			zap.String("place_id", placeID), zap.Error(err))
		return nil, errors.Wrap(err, "place details")
	}
	return addr, nil
}

// Stop cancels any pending cycle; called on field teardown.
func (b *Bridge) Stop() {
	b.mu.Lock()
	b.supersedeLocked()
	b.mu.Unlock()
}

// supersedeLocked invalidates the pending cycle and starts a new generation.
// Callers must hold b.mu.
func (b *Bridge) supersedeLocked() {
	if b.superseded != nil {
		close(b.superseded)
	}
	b.superseded = make(chan struct{})
	b.generation++
}
