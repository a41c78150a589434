package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwick/storefront-api/internal/autocomplete"
	"github.com/emberwick/storefront-api/internal/cart"
	"github.com/emberwick/storefront-api/internal/checkout"
	"github.com/emberwick/storefront-api/internal/client/places"
	"github.com/emberwick/storefront-api/internal/client/shopapi"
	"github.com/emberwick/storefront-api/internal/store"
)

func newCheckoutRouter(t *testing.T) *gin.Engine {
	t.Helper()

	upstream := fakeUpstream(t)
	db, err := store.Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	api := shopapi.New(upstream.URL, "")
	carts := cart.NewStore(db, EventBus.New())
	flow := checkout.NewFlow(db, api, carts, "USD")
	bridges := autocomplete.NewManager(places.New(upstream.URL, ""), 0)
	common := NewCommonServices(api, carts, flow, bridges, "USD")

	checkoutHandler := NewCheckoutHandler(common)
	router := gin.New()
	router.GET("/checkout", checkoutHandler.GetCheckout)
	router.PUT("/checkout/contact", checkoutHandler.SetContact)
	router.PUT("/checkout/address", checkoutHandler.SetAddress)
	router.POST("/checkout/back", checkoutHandler.Back)
	return router
}

func TestCheckoutStartsAtContactStage(t *testing.T) {
	router := newCheckoutRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/checkout", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, checkout.StageContact, resp.Draft.Stage)
}

func TestContactValidationFailureIsFieldScoped(t *testing.T) {
	router := newCheckoutRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/checkout/contact", "s1",
		checkout.ContactParams{Email: "not-an-email", Name: "Jo"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Email", resp.Field)

	// the stage did not advance
	rec = doJSON(t, router, http.MethodGet, "/checkout", "s1", nil)
	var state CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, checkout.StageContact, state.Draft.Stage)
}

func TestAddressRejectedWithEmptyZip(t *testing.T) {
	router := newCheckoutRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/checkout/contact", "s1",
		checkout.ContactParams{Email: "jo@example.com", Name: "Jo"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/checkout/address", "s1",
		checkout.AddressParams{Address: "1 Candle Way", City: "Portland", Zip: "", Country: "US"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Zip", resp.Field)
}

func TestBackwardNavigationBeyondCurrentStageRejected(t *testing.T) {
	router := newCheckoutRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/checkout/back", "s1",
		BackRequest{Stage: checkout.StagePayment})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
