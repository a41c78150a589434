package shopapi

import (
	"context"
	"fmt"

	"github.com/emberwick/storefront-api/internal/catalog"
	httpclient "github.com/emberwick/storefront-api/internal/client/http"
)

// CreateOrderParams is the order-create request body: the cart snapshot plus
// everything the checkout flow collected. IdempotencyKey lets the backend
// dedupe user-initiated retries after a payment has already gone through.
type CreateOrderParams struct {
	Items           []catalog.OrderItem `json:"items"`
	Email           string              `json:"email"`
	Name            string              `json:"name"`
	Address         catalog.Address     `json:"address"`
	ShippingRateID  string              `json:"shipping_rate_id"`
	ShippingCost    float64             `json:"shipping_cost"`
	CouponCode      string              `json:"coupon_code,omitempty"`
	PaymentIntentID string              `json:"payment_intent_id"`
	Subtotal        float64             `json:"subtotal"`
	Total           float64             `json:"total"`
	IdempotencyKey  string              `json:"idempotency_key"`
}

// CreateOrder submits an order to the upstream API.
func (c *Client) CreateOrder(ctx context.Context, params CreateOrderParams) (*catalog.Order, error) {
	resp, err := c.submit.Post(ctx, "/orders", params,
		httpclient.WithHeader("Idempotency-Key", params.IdempotencyKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	var order catalog.Order
	if err := c.http.DecodeJSON(resp, &order); err != nil {
		return nil, fmt.Errorf("failed to decode created order: %w", err)
	}
	return &order, nil
}

// ListOrders fetches all orders (admin console).
func (c *Client) ListOrders(ctx context.Context) ([]catalog.Order, error) {
	resp, err := c.http.Get(ctx, "/orders")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	var orders []catalog.Order
	if err := c.http.DecodeJSON(resp, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// GetOrder fetches a single order by id (admin console, confirmation page).
func (c *Client) GetOrder(ctx context.Context, orderID string) (*catalog.Order, error) {
	resp, err := c.http.Get(ctx, "/orders/"+orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}

	var order catalog.Order
	if err := c.http.DecodeJSON(resp, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order %s: %w", orderID, err)
	}
	return &order, nil
}
