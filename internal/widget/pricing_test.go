package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowbot/spa-widget-platform/internal/spas"
)

func TestServicePrice(t *testing.T) {
	assert.Equal(t, 1500, ServicePrice(spas.Service{MinPrice: 1500, PriceRange: "₹9,999+"}), "MinPrice wins over the range string")
	assert.Equal(t, 1500, ServicePrice(spas.Service{PriceRange: "₹1,500 - ₹2,500"}), "first match in the range is taken")
	assert.Equal(t, 2500, ServicePrice(spas.Service{PriceRange: "₹2500+"}))
	assert.Equal(t, 0, ServicePrice(spas.Service{PriceRange: "on request"}))
	assert.Equal(t, 0, ServicePrice(spas.Service{}))
}

func TestTotalQuote(t *testing.T) {
	quote := TotalQuote([]spas.Service{
		{ID: "facial", Title: "Signature Facial", MinPrice: 1500},
		{ID: "laser", Title: "Laser Hair Removal", MinPrice: 2500},
	})
	require.NotNil(t, quote)
	assert.Equal(t, 4000.0, quote.Original)
	assert.Equal(t, 800.0, quote.Discount)
	assert.Equal(t, 3200.0, quote.Final)
}

func TestTotalQuoteFinalIsEightyPercent(t *testing.T) {
	selections := [][]spas.Service{
		{{ID: "a", MinPrice: 100}},
		{{ID: "a", MinPrice: 999}, {ID: "b", PriceRange: "₹1,250 - ₹3,000"}},
		{{ID: "a", PriceRange: "no price"}, {ID: "b", MinPrice: 5000}},
	}
	for _, sel := range selections {
		quote := TotalQuote(sel)
		require.NotNil(t, quote)
		assert.InDelta(t, quote.Original*0.8, quote.Final, 1e-9)
		assert.InDelta(t, quote.Original*0.2, quote.Discount, 1e-9)
	}
}

func TestTotalQuoteEmptySelection(t *testing.T) {
	assert.Nil(t, TotalQuote(nil))
	assert.Nil(t, TotalQuote([]spas.Service{}))
}
