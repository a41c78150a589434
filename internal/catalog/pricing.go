package catalog

import (
	"math"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/emberwick/storefront-api/internal/logger"
)

// priceValid reports whether an amount is usable for display and arithmetic.
// Negative, NaN and infinite amounts fail closed.
func priceValid(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount >= 0
}

// HasDiscount reports whether a product should render with a strikethrough
// list price. True only when both prices are well formed and the current
// price is strictly below the list price; malformed data logs an anomaly and
// renders as undiscounted.
func HasDiscount(p Product) bool {
	if !priceValid(p.Price) || !priceValid(p.CurrentPrice) {
		logger.Warn("malformed price data on product",
			zap.String("product_id", p.ID),
			zap.Float64("price", p.Price),
			zap.Float64("current_price", p.CurrentPrice))
		return false
	}
	if p.CurrentPrice == 0 && p.Price > 0 {
		// A zero current price on a priced product means the field was
		// absent upstream, not a 100% discount.
		return false
	}
	return p.CurrentPrice < p.Price
}

// EffectivePrice returns the amount a unit of the product actually costs.
// Falls back to the list price when the resolved price is malformed or
// absent.
func EffectivePrice(p Product) float64 {
	if HasDiscount(p) {
		return p.CurrentPrice
	}
	if priceValid(p.Price) {
		return p.Price
	}
	logger.Warn("product has no usable price", zap.String("product_id", p.ID))
	return 0
}

// RoundCurrency rounds an accumulated amount to currency precision. Sums are
// accumulated raw and rounded exactly once at the output boundary.
func RoundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "CA$",
	"AUD": "A$",
}

// FormatPrice renders an amount as a display string for the given ISO 4217
// currency code, with grouping and two fraction digits.
func FormatPrice(amount float64, code string) string {
	printer := message.NewPrinter(language.English)
	formatted := number.Decimal(RoundCurrency(amount),
		number.MinFractionDigits(2), number.MaxFractionDigits(2))
	if symbol, ok := currencySymbols[code]; ok {
		return printer.Sprintf("%s%v", symbol, formatted)
	}
	return printer.Sprintf("%s %v", code, formatted)
}

// Decorate fills the presentation fields the storefront derives from the
// upstream prices.
func Decorate(p Product, currency string) Product {
	p.FormattedPrice = FormatPrice(EffectivePrice(p), currency)
	return p
}
