package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emberwick/storefront-api/internal/catalog"
	"github.com/emberwick/storefront-api/internal/checkout"
	"github.com/emberwick/storefront-api/internal/client/places"
)

// CheckoutHandler drives the multi-stage checkout flow over HTTP
type CheckoutHandler struct {
	common *CommonServices
}

// NewCheckoutHandler creates a new CheckoutHandler instance
func NewCheckoutHandler(common *CommonServices) *CheckoutHandler {
	return &CheckoutHandler{common: common}
}

// CheckoutResponse is the draft state plus the current price breakdown
type CheckoutResponse struct {
	Draft  checkout.Draft  `json:"draft"`
	Totals checkout.Totals `json:"totals"`
}

func (h *CheckoutHandler) checkoutResponse(sessionID string) CheckoutResponse {
	return CheckoutResponse{
		Draft:  h.common.flow.Draft(sessionID),
		Totals: h.common.flow.Totals(sessionID),
	}
}

// handleFlowError maps checkout flow errors onto HTTP responses. Field
// errors are non-fatal validation failures; everything else is an upstream
// problem the user can retry.
func (h *CheckoutHandler) handleFlowError(c *gin.Context, err error) {
	var fieldErr *checkout.FieldError
	switch {
	case errors.As(err, &fieldErr):
		sendFieldError(c, fieldErr)
	case errors.Is(err, checkout.ErrEmptyCart):
		sendError(c, http.StatusConflict, "Cart is empty", err)
	default:
		sendError(c, http.StatusBadGateway, "Checkout service is temporarily unavailable", err)
	}
}

// GetCheckout godoc
// @Summary Get the checkout draft and totals
// @Produce json
// @Success 200 {object} CheckoutResponse
// @Router /checkout [get]
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	sendSuccess(c, http.StatusOK, h.checkoutResponse(sessionID(c)))
}

// SetContact godoc
// @Summary Submit the contact step
// @Accept json
// @Produce json
// @Param request body checkout.ContactParams true "Contact fields"
// @Success 200 {object} CheckoutResponse
// @Failure 422 {object} ErrorResponse
// @Router /checkout/contact [put]
func (h *CheckoutHandler) SetContact(c *gin.Context) {
	var params checkout.ContactParams
	if err := c.ShouldBindJSON(&params); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session := sessionID(c)
	if err := h.common.flow.SetContact(session, params); err != nil {
		h.handleFlowError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, h.checkoutResponse(session))
}

// SetAddress godoc
// @Summary Submit the address step
// @Accept json
// @Produce json
// @Param request body checkout.AddressParams true "Address fields"
// @Success 200 {object} CheckoutResponse
// @Failure 422 {object} ErrorResponse
// @Router /checkout/address [put]
func (h *CheckoutHandler) SetAddress(c *gin.Context) {
	var params checkout.AddressParams
	if err := c.ShouldBindJSON(&params); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session := sessionID(c)
	if err := h.common.flow.SetAddress(session, params); err != nil {
		h.handleFlowError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, h.checkoutResponse(session))
}

// AutocompleteRequest is the body for a debounced address lookup
type AutocompleteRequest struct {
	Input string `json:"input"`
}

// AutocompleteAddress godoc
// @Summary Debounced address suggestions
// @Description Returns suggestions for the most recent input; superseded lookups return an empty list
// @Accept json
// @Produce json
// @Param request body AutocompleteRequest true "Partial address"
// @Success 200 {object} map[string]interface{}
// @Router /checkout/address/autocomplete [post]
func (h *CheckoutHandler) AutocompleteAddress(c *gin.Context) {
	var req AutocompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session := sessionID(c)
	bridge := h.common.bridges.Bridge(session)
	predictions, err := bridge.Query(c.Request.Context(), req.Input)
	if err != nil {
		// a superseded cycle is not an error for the caller, there is
		// simply nothing to show anymore
		sendSuccess(c, http.StatusOK, gin.H{"predictions": []interface{}{}, "superseded": true})
		return
	}
	if predictions == nil {
		predictions = []places.Prediction{}
	}
	sendSuccess(c, http.StatusOK, gin.H{"predictions": predictions})
}

// SelectAddressRequest is the body for resolving a chosen suggestion
type SelectAddressRequest struct {
	PlaceID string `json:"place_id" binding:"required"`
}

// SelectAddress godoc
// @Summary Resolve a selected suggestion into a structured address
// @Accept json
// @Produce json
// @Param request body SelectAddressRequest true "Chosen prediction"
// @Success 200 {object} catalog.Address
// @Router /checkout/address/select [post]
func (h *CheckoutHandler) SelectAddress(c *gin.Context) {
	var req SelectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session := sessionID(c)
	bridge := h.common.bridges.Bridge(session)
	addr, err := bridge.Select(c.Request.Context(), req.PlaceID)
	if err != nil {
		// degrade to manual entry with an empty suggestion payload
		sendSuccess(c, http.StatusOK, catalog.Address{})
		return
	}
	sendSuccess(c, http.StatusOK, addr)
}

// ShippingRates godoc
// @Summary List shipping rates for the draft address and cart weight
// @Produce json
// @Success 200 {array} catalog.ShippingRate
// @Failure 422 {object} ErrorResponse
// @Router /checkout/shipping/rates [get]
func (h *CheckoutHandler) ShippingRates(c *gin.Context) {
	rates, err := h.common.flow.ShippingRates(c.Request.Context(), sessionID(c))
	if err != nil {
		h.handleFlowError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, rates)
}

// SelectShippingRequest is the body for choosing a shipping rate
type SelectShippingRequest struct {
	RateID string `json:"rate_id" binding:"required"`
}

// SelectShipping godoc
// @Summary Select a quoted shipping rate
// @Accept json
// @Produce json
// @Param request body SelectShippingRequest true "Chosen rate"
// @Success 200 {object} CheckoutResponse
// @Failure 422 {object} ErrorResponse
// @Router /checkout/shipping [put]
func (h *CheckoutHandler) SelectShipping(c *gin.Context) {
	var req SelectShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session := sessionID(c)
	if err := h.common.flow.SelectShipping(session, req.RateID); err != nil {
		h.handleFlowError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, h.checkoutResponse(session))
}

// CouponRequest is the body for applying a coupon code
type CouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyCoupon godoc
// @Summary Validate and apply a coupon code
// @Description An invalid code returns a field error and leaves totals unchanged
// @Accept json
// @Produce json
// @Param request body CouponRequest true "Coupon code"
// @Success 200 {object} CheckoutResponse
// @Failure 422 {object} ErrorResponse
// @Router /checkout/coupon [post]
func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session := sessionID(c)
	if err := h.common.flow.ApplyCoupon(c.Request.Context(), session, req.Code); err != nil {
		h.handleFlowError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, h.checkoutResponse(session))
}

// RemoveCoupon godoc
// @Summary Remove an applied coupon
// @Produce json
// @Success 200 {object} CheckoutResponse
// @Router /checkout/coupon [delete]
func (h *CheckoutHandler) RemoveCoupon(c *gin.Context) {
	session := sessionID(c)
	h.common.flow.RemoveCoupon(session)
	sendSuccess(c, http.StatusOK, h.checkoutResponse(session))
}

// CreatePaymentIntent godoc
// @Summary Create a payment intent for the final total
// @Produce json
// @Success 200 {object} shopapi.PaymentIntent
// @Failure 422 {object} ErrorResponse
// @Router /checkout/payment-intent [post]
func (h *CheckoutHandler) CreatePaymentIntent(c *gin.Context) {
	intent, err := h.common.flow.CreatePaymentIntent(c.Request.Context(), sessionID(c))
	if err != nil {
		h.handleFlowError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, intent)
}

// Submit godoc
// @Summary Submit the order after payment collection
// @Description On failure the flow stays at the payment step for a user-initiated retry
// @Produce json
// @Success 201 {object} catalog.Order
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /checkout/submit [post]
func (h *CheckoutHandler) Submit(c *gin.Context) {
	session := sessionID(c)
	order, err := h.common.flow.Submit(c.Request.Context(), session)
	if err != nil {
		h.handleFlowError(c, err)
		return
	}
	h.common.bridges.Teardown(session)
	sendSuccess(c, http.StatusCreated, order)
}

// BackRequest is the body for backward navigation
type BackRequest struct {
	Stage checkout.Stage `json:"stage" binding:"required"`
}

// Back godoc
// @Summary Navigate back to an earlier checkout step
// @Accept json
// @Produce json
// @Param request body BackRequest true "Target stage"
// @Success 200 {object} CheckoutResponse
// @Failure 422 {object} ErrorResponse
// @Router /checkout/back [post]
func (h *CheckoutHandler) Back(c *gin.Context) {
	var req BackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session := sessionID(c)
	if err := h.common.flow.Back(session, req.Stage); err != nil {
		h.handleFlowError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, h.checkoutResponse(session))
}

// Reset godoc
// @Summary Discard the checkout draft
// @Produce json
// @Success 200 {object} CheckoutResponse
// @Router /checkout [delete]
func (h *CheckoutHandler) Reset(c *gin.Context) {
	session := sessionID(c)
	h.common.flow.Reset(session)
	h.common.bridges.Teardown(session)
	sendSuccess(c, http.StatusOK, h.checkoutResponse(session))
}
