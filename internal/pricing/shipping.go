// Package pricing computes shipping costs and order totals.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/rugstore/storefront/internal/config"
	"github.com/rugstore/storefront/internal/domain"
)

// Rates holds the shipping price list
type Rates struct {
	StandardRate          decimal.Decimal
	ExpressRate           decimal.Decimal
	FreeStandardThreshold decimal.Decimal
}

// Quote is the derived price breakdown for a checkout
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// NewRates builds rates from configuration
func NewRates(cfg config.ShippingConfig) Rates {
	return Rates{
		StandardRate:          cfg.StandardRate,
		ExpressRate:           cfg.ExpressRate,
		FreeStandardThreshold: cfg.FreeStandardThreshold,
	}
}

// DefaultRates returns the storefront's standard price list
func DefaultRates() Rates {
	return Rates{
		StandardRate:          decimal.RequireFromString("15.00"),
		ExpressRate:           decimal.RequireFromString("35.00"),
		FreeStandardThreshold: decimal.RequireFromString("200.00"),
	}
}

// Shipping returns the cost of a method for the given subtotal.
// The free threshold only applies to standard shipping.
func (r Rates) Shipping(method domain.ShippingMethod, subtotal decimal.Decimal) decimal.Decimal {
	switch method {
	case domain.ShippingExpress:
		return r.ExpressRate
	case domain.ShippingStandard:
		if r.FreeStandardThreshold.IsPositive() && subtotal.GreaterThanOrEqual(r.FreeStandardThreshold) {
			return decimal.Zero
		}
		return r.StandardRate
	default:
		return decimal.Zero
	}
}

// Quote computes subtotal, shipping and total
func (r Rates) Quote(method domain.ShippingMethod, subtotal decimal.Decimal) Quote {
	shipping := r.Shipping(method, subtotal)
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}
}
