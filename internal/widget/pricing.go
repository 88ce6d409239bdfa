package widget

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/glowbot/spa-widget-platform/internal/spas"
)

// DiscountRate is the flat discount applied to every widget booking quote.
const DiscountRate = 0.2

// priceRangePattern pulls the first currency-prefixed digit group out of a
// free-form price range like "₹1,500 - ₹2,500".
var priceRangePattern = regexp.MustCompile(`₹[\d,]+`)

// Quote is the price summary shown once at least one service is selected.
type Quote struct {
	Original float64 `json:"original"`
	Discount float64 `json:"discount"`
	Final    float64 `json:"final"`
}

// ServicePrice returns a service's numeric lower bound: MinPrice when set,
// else the first currency-prefixed integer parsed from the price range.
// Unparsable services contribute zero.
func ServicePrice(svc spas.Service) int {
	if svc.MinPrice > 0 {
		return svc.MinPrice
	}
	match := priceRangePattern.FindString(svc.PriceRange)
	if match == "" {
		return 0
	}
	digits := strings.NewReplacer("₹", "", ",", "").Replace(match)
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return value
}

// TotalQuote sums the selected services and applies the discount. An empty
// selection yields no quote.
func TotalQuote(selection []spas.Service) *Quote {
	if len(selection) == 0 {
		return nil
	}

	total := 0
	for _, svc := range selection {
		total += ServicePrice(svc)
	}

	discount := float64(total) * DiscountRate
	return &Quote{
		Original: float64(total),
		Discount: discount,
		Final:    float64(total) - discount,
	}
}
