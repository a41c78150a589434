package shopapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/emberwick/storefront-api/internal/catalog"
	httpclient "github.com/emberwick/storefront-api/internal/client/http"
)

// CouponCheckResult is the upstream response to a coupon validation
type CouponCheckResult struct {
	Valid  bool            `json:"valid"`
	Reason string          `json:"reason,omitempty"`
	Coupon *catalog.Coupon `json:"coupon,omitempty"`
}

// CheckCoupon validates a coupon code against the upstream API. A well-formed
// "invalid code" answer is not an error; transport failures are.
func (c *Client) CheckCoupon(ctx context.Context, code string) (*CouponCheckResult, error) {
	resp, err := c.http.Get(ctx, "/coupons/check", httpclient.WithQueryParam("code", code))
	if err != nil {
		if httpclient.IsStatus(err, 404) {
			return &CouponCheckResult{Valid: false, Reason: "unknown coupon code"}, nil
		}
		return nil, fmt.Errorf("coupon check failed: %w", err)
	}

	var result CouponCheckResult
	if err := c.http.DecodeJSON(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to decode coupon check: %w", err)
	}
	return &result, nil
}

// ShippingRates fetches delivery options for a destination and package weight.
func (c *Client) ShippingRates(ctx context.Context, addr catalog.Address, weightGrams int) ([]catalog.ShippingRate, error) {
	resp, err := c.http.Get(ctx, "/shipping/rates",
		httpclient.WithQueryParam("address", addr.Address),
		httpclient.WithQueryParam("city", addr.City),
		httpclient.WithQueryParam("zip", addr.Zip),
		httpclient.WithQueryParam("country", addr.Country),
		httpclient.WithQueryParam("weight_grams", strconv.Itoa(weightGrams)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shipping rates: %w", err)
	}

	var rates []catalog.ShippingRate
	if err := c.http.DecodeJSON(resp, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode shipping rates: %w", err)
	}
	return rates, nil
}

// PaymentIntent is the upstream handle for collecting payment on a total
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type createPaymentIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreatePaymentIntent requests a payment intent for the final computed total.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount float64, currency string) (*PaymentIntent, error) {
	resp, err := c.http.Post(ctx, "/create-payment-intent", createPaymentIntentRequest{
		Amount:   amount,
		Currency: currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	var intent PaymentIntent
	if err := c.http.DecodeJSON(resp, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}
	return &intent, nil
}
