package shopapi

import (
	"context"
	"fmt"

	"github.com/emberwick/storefront-api/internal/catalog"
)

// ListProducts fetches the full catalog, discounts embedded.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	resp, err := c.http.Get(ctx, "/products")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	var products []catalog.Product
	if err := c.http.DecodeJSON(resp, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	resp, err := c.http.Get(ctx, "/products/"+productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", productID, err)
	}

	var product catalog.Product
	if err := c.http.DecodeJSON(resp, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", productID, err)
	}
	return &product, nil
}

// CreateProductParams is the admin request body for creating a product
type CreateProductParams struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	ScentNotes    []string `json:"scent_notes,omitempty"`
	BurnTimeHours int      `json:"burn_time_hours,omitempty"`
	WeightGrams   int      `json:"weight_grams,omitempty"`
	DimensionsCm  string   `json:"dimensions_cm,omitempty"`
	Price         float64  `json:"price"`
	Stock         int      `json:"stock"`
}

// CreateProduct creates a product in the upstream catalog (admin console).
func (c *Client) CreateProduct(ctx context.Context, params CreateProductParams) (*catalog.Product, error) {
	resp, err := c.http.Post(ctx, "/products", params)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	var product catalog.Product
	if err := c.http.DecodeJSON(resp, &product); err != nil {
		return nil, fmt.Errorf("failed to decode created product: %w", err)
	}
	return &product, nil
}

// UpdateProduct updates an existing product (admin console).
func (c *Client) UpdateProduct(ctx context.Context, productID string, params CreateProductParams) (*catalog.Product, error) {
	resp, err := c.http.Put(ctx, "/products/"+productID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", productID, err)
	}

	var product catalog.Product
	if err := c.http.DecodeJSON(resp, &product); err != nil {
		return nil, fmt.Errorf("failed to decode updated product: %w", err)
	}
	return &product, nil
}

// DeleteProduct removes a product from the upstream catalog (admin console).
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	resp, err := c.http.Delete(ctx, "/products/"+productID)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", productID, err)
	}
	resp.Body.Close()
	return nil
}

// CreateDiscountParams is the admin request body for creating or updating a
// product discount
type CreateDiscountParams struct {
	Name     string               `json:"name"`
	Type     catalog.DiscountType `json:"type"`
	Value    float64              `json:"value"`
	IsActive bool                 `json:"is_active"`
	StartsAt *string              `json:"starts_at,omitempty"`
	EndsAt   *string              `json:"ends_at,omitempty"`
	Products []string             `json:"products,omitempty"`
}

// CreateDiscount creates a discount in the upstream catalog (admin console).
func (c *Client) CreateDiscount(ctx context.Context, params CreateDiscountParams) (*catalog.Discount, error) {
	resp, err := c.http.Post(ctx, "/discounts", params)
	if err != nil {
		return nil, fmt.Errorf("failed to create discount: %w", err)
	}

	var discount catalog.Discount
	if err := c.http.DecodeJSON(resp, &discount); err != nil {
		return nil, fmt.Errorf("failed to decode created discount: %w", err)
	}
	return &discount, nil
}

// UpdateDiscount updates an existing discount (admin console).
func (c *Client) UpdateDiscount(ctx context.Context, discountID string, params CreateDiscountParams) (*catalog.Discount, error) {
	resp, err := c.http.Put(ctx, "/discounts/"+discountID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to update discount %s: %w", discountID, err)
	}

	var discount catalog.Discount
	if err := c.http.DecodeJSON(resp, &discount); err != nil {
		return nil, fmt.Errorf("failed to decode updated discount: %w", err)
	}
	return &discount, nil
}

// DeleteDiscount removes a discount (admin console).
func (c *Client) DeleteDiscount(ctx context.Context, discountID string) error {
	resp, err := c.http.Delete(ctx, "/discounts/"+discountID)
	if err != nil {
		return fmt.Errorf("failed to delete discount %s: %w", discountID, err)
	}
	resp.Body.Close()
	return nil
}
