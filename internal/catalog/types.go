package catalog

import "time"

// DiscountType enumerates the supported discount shapes
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Discount is a promotion attached to a product. The upstream API resolves
// discounts into the product's current price; the storefront never reapplies
// the math, it only renders what applies.
type Discount struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Type     DiscountType `json:"type"`
	Value    float64      `json:"value"`
	IsActive bool         `json:"is_active"`
	StartsAt *time.Time   `json:"starts_at,omitempty"`
	EndsAt   *time.Time   `json:"ends_at,omitempty"`
}

// Product is a storefront catalog entry as served by the upstream API.
// CurrentPrice arrives pre-resolved against the product's discounts and is
// authoritative; Price is the list price.
type Product struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	ImageURL       string     `json:"image_url,omitempty"`
	ScentNotes     []string   `json:"scent_notes,omitempty"`
	BurnTimeHours  int        `json:"burn_time_hours,omitempty"`
	WeightGrams    int        `json:"weight_grams,omitempty"`
	DimensionsCm   string     `json:"dimensions_cm,omitempty"`
	Price          float64    `json:"price"`
	CurrentPrice   float64    `json:"current_price"`
	FormattedPrice string     `json:"formatted_price,omitempty"`
	Stock          int        `json:"stock"`
	Discounts      []Discount `json:"discounts,omitempty"`
}

// Coupon is an order-level discount code, independent of per-product
// discounts.
type Coupon struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	Type        DiscountType `json:"type"`
	Value       float64      `json:"value"`
	Description string       `json:"description,omitempty"`
}

// ShippingRate is one delivery option returned by the upstream rates lookup
type ShippingRate struct {
	ID            string  `json:"id"`
	Carrier       string  `json:"carrier"`
	Service       string  `json:"service"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	EstimatedDays int     `json:"estimated_days,omitempty"`
}

// Address is a structured shipping address
type Address struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// OrderItem is one purchased line inside an order snapshot
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Order is the upstream order resource returned after creation
type Order struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	Items     []OrderItem `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	Discount  float64     `json:"discount"`
	Shipping  float64     `json:"shipping"`
	Total     float64     `json:"total"`
	Email     string      `json:"email"`
	Address   Address     `json:"address"`
	CreatedAt time.Time   `json:"created_at"`
}
