package shopapi

import (
	"time"

	httpclient "github.com/emberwick/storefront-api/internal/client/http"
)

// Client talks to the upstream commerce API that owns products, discounts,
// coupons, shipping rates, payment intents and orders.
type Client struct {
	http *httpclient.Client
	// submit skips automatic retries. Order creation must never be
	// resubmitted without an explicit user action; dedupe on retry is the
	// backend's job via the idempotency key.
	submit *httpclient.Client
}

// New creates a commerce API client for the given base URL. The API key is
// optional for read-only catalog access but required for admin mutations.
func New(baseURL, apiKey string) *Client {
	options := []httpclient.ClientOption{
		httpclient.WithBaseURL(baseURL),
		httpclient.WithTimeout(10 * time.Second),
	}
	if apiKey != "" {
		options = append(options, httpclient.WithDefaultHeader("X-API-Key", apiKey))
	}
	submitOptions := append([]httpclient.ClientOption{}, options...)
	submitOptions = append(submitOptions, httpclient.WithRetryConfig(nil))
	return &Client{
		http:   httpclient.New(options...),
		submit: httpclient.New(submitOptions...),
	}
}
