package checkout

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/emberwick/storefront-api/internal/cart"
	"github.com/emberwick/storefront-api/internal/catalog"
	"github.com/emberwick/storefront-api/internal/client/shopapi"
	"github.com/emberwick/storefront-api/internal/logger"
	"github.com/emberwick/storefront-api/internal/store"
)

// Stage identifies one step of the checkout flow
type Stage string

const (
	StageContact      Stage = "CONTACT"
	StageAddress      Stage = "ADDRESS"
	StageShipping     Stage = "SHIPPING"
	StagePayment      Stage = "PAYMENT"
	StageConfirmation Stage = "CONFIRMATION"
)

// stageOrder defines forward progression. Backward navigation is free to any
// earlier stage; forward requires the current stage's guard to pass.
var stageOrder = []Stage{StageContact, StageAddress, StageShipping, StagePayment, StageConfirmation}

func stageIndex(s Stage) int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// ErrEmptyCart rejects checkout operations on a cart with nothing in it
var ErrEmptyCart = errors.New("cart is empty")

// FieldError is a validation failure scoped to a single form field. It blocks
// the stage transition but is not fatal.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Draft is the persisted checkout state for one session. It survives reloads
// and restarts until the order is submitted or the flow is reset.
type Draft struct {
	Stage Stage `json:"stage"`

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`

	Address catalog.Address `json:"address"`

	AvailableRates []catalog.ShippingRate `json:"available_rates,omitempty"`
	ShippingRateID string                 `json:"shipping_rate_id,omitempty"`
	ShippingCost   float64                `json:"shipping_cost,omitempty"`

	Coupon *catalog.Coupon `json:"coupon,omitempty"`

	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	IdempotencyKey  string `json:"idempotency_key,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Totals is the price breakdown for the current draft + cart
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// ContactParams carries the CONTACT stage fields
type ContactParams struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

// AddressParams carries the ADDRESS stage fields
type AddressParams struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	Zip     string `json:"zip" validate:"required,min=3,max=12"`
	Country string `json:"country" validate:"required,iso3166_1_alpha2"`
}

// Flow drives the multi-stage checkout state machine for all sessions.
type Flow struct {
	mu       sync.Mutex
	drafts   map[string]*Draft
	db       *store.Store
	api      *shopapi.Client
	carts    *cart.Store
	validate *validator.Validate
	currency string
	logger   *zap.Logger
}

// NewFlow creates the checkout flow controller.
func NewFlow(db *store.Store, api *shopapi.Client, carts *cart.Store, currency string) *Flow {
	return &Flow{
		drafts:   make(map[string]*Draft),
		db:       db,
		api:      api,
		carts:    carts,
		validate: validator.New(),
		currency: currency,
		logger:   logger.Log,
	}
}

// Draft returns the session's checkout draft, creating one at the CONTACT
// stage on first entry.
func (f *Flow) Draft(sessionID string) Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.ensure(sessionID)
}

// SetContact validates and stores the contact fields, advancing past CONTACT
// on success.
func (f *Flow) SetContact(sessionID string, params ContactParams) error {
	if err := f.fieldError(params); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	draft := f.ensure(sessionID)
	draft.Email = params.Email
	draft.Name = params.Name
	f.advance(draft, StageContact)
	f.persist(sessionID, draft)
	return nil
}

// SetAddress validates and stores the address fields, advancing past ADDRESS
// on success. Autocomplete selection and manual entry both land here; manual
// edits always win.
func (f *Flow) SetAddress(sessionID string, params AddressParams) error {
	if err := f.fieldError(params); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	draft := f.ensure(sessionID)
	newAddr := catalog.Address{
		Address: params.Address,
		City:    params.City,
		Zip:     params.Zip,
		Country: params.Country,
	}
	if draft.Address != newAddr {
		// shipping rates were quoted for the old destination
		draft.AvailableRates = nil
		draft.ShippingRateID = ""
		draft.ShippingCost = 0
		if stageIndex(draft.Stage) > stageIndex(StageShipping) {
			draft.Stage = StageShipping
		}
	}
	draft.Address = newAddr
	f.advance(draft, StageAddress)
	f.persist(sessionID, draft)
	return nil
}

// ShippingRates fetches delivery options for the draft address and cart
// weight, caching them on the draft for later selection.
func (f *Flow) ShippingRates(ctx context.Context, sessionID string) ([]catalog.ShippingRate, error) {
	f.mu.Lock()
	draft := f.ensure(sessionID)
	if stageIndex(draft.Stage) < stageIndex(StageShipping) {
		f.mu.Unlock()
		return nil, &FieldError{Field: "address", Message: "complete the address step first"}
	}
	addr := draft.Address
	f.mu.Unlock()

	weight := f.carts.Weight(sessionID)
	rates, err := f.api.ShippingRates(ctx, addr, weight)
	if err != nil {
		return nil, errors.Wrap(err, "shipping rate lookup")
	}

	f.mu.Lock()
	draft = f.ensure(sessionID)
	draft.AvailableRates = rates
	f.persist(sessionID, draft)
	f.mu.Unlock()
	return rates, nil
}

// SelectShipping stores the chosen rate, advancing past SHIPPING. The rate
// must be one of the quoted options with a positive cost.
func (f *Flow) SelectShipping(sessionID, rateID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	draft := f.ensure(sessionID)
	for _, rate := range draft.AvailableRates {
		if rate.ID != rateID {
			continue
		}
		if rate.Amount <= 0 {
			return &FieldError{Field: "shipping_rate_id", Message: "shipping rate has no valid cost"}
		}
		draft.ShippingRateID = rate.ID
		draft.ShippingCost = rate.Amount
		f.advance(draft, StageShipping)
		f.persist(sessionID, draft)
		return nil
	}
	return &FieldError{Field: "shipping_rate_id", Message: "unknown shipping rate"}
}

// ApplyCoupon validates a coupon code upstream and applies it to the draft.
// An invalid code surfaces as a field error and leaves the totals untouched.
func (f *Flow) ApplyCoupon(ctx context.Context, sessionID, code string) error {
	if code == "" {
		return &FieldError{Field: "coupon_code", Message: "coupon code is required"}
	}

	result, err := f.api.CheckCoupon(ctx, code)
	if err != nil {
		return errors.Wrap(err, "coupon validation")
	}
	if !result.Valid || result.Coupon == nil || result.Coupon.Value <= 0 {
		reason := result.Reason
		if reason == "" {
			reason = "coupon code is not valid"
		}
		return &FieldError{Field: "coupon_code", Message: reason}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	draft := f.ensure(sessionID)
	draft.Coupon = result.Coupon
	f.persist(sessionID, draft)
	return nil
}

// RemoveCoupon clears an applied coupon.
func (f *Flow) RemoveCoupon(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	draft := f.ensure(sessionID)
	draft.Coupon = nil
	f.persist(sessionID, draft)
}

// Totals computes the price breakdown: subtotal minus coupon adjustment plus
// shipping, each component rounded once at the boundary.
func (f *Flow) Totals(sessionID string) Totals {
	subtotal := f.carts.Subtotal(sessionID)

	f.mu.Lock()
	draft := f.ensure(sessionID)
	coupon := draft.Coupon
	shipping := draft.ShippingCost
	f.mu.Unlock()

	var discount float64
	if coupon != nil {
		switch coupon.Type {
		case catalog.DiscountPercentage:
			discount = catalog.RoundCurrency(subtotal * coupon.Value / 100)
		case catalog.DiscountFixed:
			discount = coupon.Value
		}
		if discount > subtotal {
			discount = subtotal
		}
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    catalog.RoundCurrency(subtotal - discount + shipping),
	}
}

// CreatePaymentIntent requests an intent for the final total and stores its
// id on the draft. The idempotency key for the eventual order submit is
// minted once here and survives retries.
func (f *Flow) CreatePaymentIntent(ctx context.Context, sessionID string) (*shopapi.PaymentIntent, error) {
	f.mu.Lock()
	draft := f.ensure(sessionID)
	if stageIndex(draft.Stage) < stageIndex(StagePayment) {
		f.mu.Unlock()
		return nil, &FieldError{Field: "stage", Message: "complete the shipping step first"}
	}
	f.mu.Unlock()

	if len(f.carts.Items(sessionID)) == 0 {
		return nil, ErrEmptyCart
	}

	totals := f.Totals(sessionID)
	intent, err := f.api.CreatePaymentIntent(ctx, totals.Total, f.currency)
	if err != nil {
		return nil, errors.Wrap(err, "payment intent")
	}

	f.mu.Lock()
	draft = f.ensure(sessionID)
	draft.PaymentIntentID = intent.ID
	if draft.IdempotencyKey == "" {
		draft.IdempotencyKey = uuid.NewString()
	}
	f.persist(sessionID, draft)
	f.mu.Unlock()
	return intent, nil
}

// Submit creates the order upstream after payment collection succeeded. On
// success the flow reaches CONFIRMATION and both the cart and the draft are
// cleared. On failure the stage stays PAYMENT and everything is retained for
// a user-initiated retry.
func (f *Flow) Submit(ctx context.Context, sessionID string) (*catalog.Order, error) {
	f.mu.Lock()
	draft := f.ensure(sessionID)
	if draft.Stage != StagePayment {
		f.mu.Unlock()
		return nil, &FieldError{Field: "stage", Message: "checkout is not at the payment step"}
	}
	if draft.PaymentIntentID == "" {
		f.mu.Unlock()
		return nil, &FieldError{Field: "payment_intent_id", Message: "no payment intent has been created"}
	}
	snapshot := *draft
	f.mu.Unlock()

	items := f.carts.Items(sessionID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	orderItems := make([]catalog.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = catalog.OrderItem{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: catalog.EffectivePrice(item.Product),
			Quantity:  item.Quantity,
		}
	}

	totals := f.Totals(sessionID)
	params := shopapi.CreateOrderParams{
		Items:           orderItems,
		Email:           snapshot.Email,
		Name:            snapshot.Name,
		Address:         snapshot.Address,
		ShippingRateID:  snapshot.ShippingRateID,
		ShippingCost:    snapshot.ShippingCost,
		PaymentIntentID: snapshot.PaymentIntentID,
		Subtotal:        totals.Subtotal,
		Total:           totals.Total,
		IdempotencyKey:  snapshot.IdempotencyKey,
	}
	if snapshot.Coupon != nil {
		params.CouponCode = snapshot.Coupon.Code
	}

	order, err := f.api.CreateOrder(ctx, params)
	if err != nil {
		f.logger.Error("order submission failed",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil, errors.Wrap(err, "order submission")
	}

	f.carts.Clear(sessionID)
	f.Reset(sessionID)
	f.logger.Info("order submitted",
		zap.String("session_id", sessionID),
		zap.String("order_id", order.ID),
		zap.Float64("total", order.Total))
	return order, nil
}

// Back navigates to an earlier stage without losing any draft data.
func (f *Flow) Back(sessionID string, target Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	draft := f.ensure(sessionID)
	targetIdx := stageIndex(target)
	if targetIdx < 0 || targetIdx >= stageIndex(draft.Stage) {
		return &FieldError{Field: "stage", Message: "can only navigate back to an earlier step"}
	}
	draft.Stage = target
	f.persist(sessionID, draft)
	return nil
}

// Reset discards the session's draft entirely.
func (f *Flow) Reset(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.drafts, sessionID)
	if err := f.db.Delete(store.DraftBucket, sessionID); err != nil {
		f.logger.Error("failed to clear persisted checkout draft",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

// advance moves the draft forward when it currently sits at the stage whose
// guard just passed. Re-submitting an earlier stage keeps later progress.
func (f *Flow) advance(draft *Draft, from Stage) {
	if draft.Stage == from {
		draft.Stage = stageOrder[stageIndex(from)+1]
	}
}

// fieldError maps the first validator failure to a field-scoped error.
func (f *Flow) fieldError(params interface{}) error {
	err := f.validate.Struct(params)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{
			Field:   verrs[0].Field(),
			Message: "failed validation on " + verrs[0].Tag(),
		}
	}
	return err
}

// ensure returns the in-memory draft for a session, rehydrating from the
// durable store on first touch. Corrupt data degrades to a fresh draft.
// Callers must hold f.mu.
func (f *Flow) ensure(sessionID string) *Draft {
	if draft, ok := f.drafts[sessionID]; ok {
		return draft
	}

	draft := &Draft{Stage: StageContact}
	raw, err := f.db.Get(store.DraftBucket, sessionID)
	if err != nil {
		f.logger.Error("failed to read persisted checkout draft",
			zap.String("session_id", sessionID), zap.Error(err))
	} else if raw != nil {
		if err := json.Unmarshal(raw, draft); err != nil {
			f.logger.Warn("discarding corrupt checkout draft",
				zap.String("session_id", sessionID), zap.Error(err))
			*draft = Draft{Stage: StageContact}
		}
	}
	if stageIndex(draft.Stage) < 0 {
		draft.Stage = StageContact
	}
	f.drafts[sessionID] = draft
	return draft
}

// persist writes the draft through to the durable store. Callers must hold
// f.mu.
func (f *Flow) persist(sessionID string, draft *Draft) {
	draft.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(draft)
	if err != nil {
		f.logger.Error("failed to serialize checkout draft",
			zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if err := f.db.Put(store.DraftBucket, sessionID, data); err != nil {
		f.logger.Error("failed to persist checkout draft",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}
