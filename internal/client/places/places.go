package places

import (
	"context"
	"fmt"
	"time"

	"github.com/emberwick/storefront-api/internal/catalog"
	httpclient "github.com/emberwick/storefront-api/internal/client/http"
)

// Prediction is one address suggestion for a partial query
type Prediction struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// Client talks to the address-autocomplete provider.
type Client struct {
	http   *httpclient.Client
	apiKey string
}

// New creates a places client. Lookups fail fast; the caller degrades to
// manual address entry on any error.
func New(baseURL, apiKey string) *Client {
	return &Client{
		http: httpclient.New(
			httpclient.WithBaseURL(baseURL),
			httpclient.WithTimeout(5*time.Second),
			// a stale suggestion list is worse than none
			httpclient.WithRetryConfig(nil),
		),
		apiKey: apiKey,
	}
}

type autocompleteResponse struct {
	Predictions []Prediction `json:"predictions"`
	Status      string       `json:"status"`
}

// Autocomplete returns address predictions for free-text input.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	resp, err := c.http.Get(ctx, "/maps/api/place/autocomplete/json",
		httpclient.WithQueryParam("input", input),
		httpclient.WithQueryParam("types", "address"),
		httpclient.WithQueryParam("key", c.apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("autocomplete lookup failed: %w", err)
	}

	var result autocompleteResponse
	if err := c.http.DecodeJSON(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to decode autocomplete response: %w", err)
	}
	if result.Status != "" && result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("autocomplete provider status %s", result.Status)
	}
	return result.Predictions, nil
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type detailsResponse struct {
	Result struct {
		Components []addressComponent `json:"address_components"`
	} `json:"result"`
	Status string `json:"status"`
}

// Details resolves a selected prediction into a structured address.
func (c *Client) Details(ctx context.Context, placeID string) (*catalog.Address, error) {
	resp, err := c.http.Get(ctx, "/maps/api/place/details/json",
		httpclient.WithQueryParam("place_id", placeID),
		httpclient.WithQueryParam("fields", "address_components"),
		httpclient.WithQueryParam("key", c.apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("place details lookup failed: %w", err)
	}

	var result detailsResponse
	if err := c.http.DecodeJSON(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to decode place details: %w", err)
	}
	if result.Status != "" && result.Status != "OK" {
		return nil, fmt.Errorf("place details provider status %s", result.Status)
	}

	return mapComponents(result.Result.Components), nil
}

// mapComponents flattens provider address components into the storefront's
// address shape.
func mapComponents(components []addressComponent) *catalog.Address {
	var addr catalog.Address
	var streetNumber, route string

	for _, component := range components {
		for _, t := range component.Types {
			switch t {
			case "street_number":
				streetNumber = component.LongName
			case "route":
				route = component.LongName
			case "locality", "postal_town":
				if addr.City == "" {
					addr.City = component.LongName
				}
			case "postal_code":
				addr.Zip = component.LongName
			case "country":
				addr.Country = component.ShortName
			}
		}
	}

	switch {
	case streetNumber != "" && route != "":
		addr.Address = streetNumber + " " + route
	case route != "":
		addr.Address = route
	}
	return &addr
}
