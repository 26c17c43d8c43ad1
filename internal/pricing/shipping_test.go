package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rugstore/storefront/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestShipping(t *testing.T) {
	rates := DefaultRates()

	tests := []struct {
		name     string
		method   domain.ShippingMethod
		subtotal string
		want     string
	}{
		{"standard below threshold", domain.ShippingStandard, "55.00", "15.00"},
		{"standard at threshold", domain.ShippingStandard, "200.00", "0"},
		{"standard above threshold", domain.ShippingStandard, "950.00", "0"},
		{"express small order", domain.ShippingExpress, "55.00", "35.00"},
		{"express ignores threshold", domain.ShippingExpress, "950.00", "35.00"},
		{"unknown method", domain.ShippingMethod("drone"), "10.00", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rates.Shipping(tt.method, d(tt.subtotal))
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestQuoteExpressTotal(t *testing.T) {
	rates := DefaultRates()
	for _, subtotal := range []string{"0.50", "55.00", "199.99", "200.00", "5000.00"} {
		q := rates.Quote(domain.ShippingExpress, d(subtotal))
		assert.True(t, d(subtotal).Add(rates.ExpressRate).Equal(q.Total), "subtotal %s", subtotal)
	}
}
