package orders

import (
	"github.com/shopspring/decimal"

	"cropcart/internal/model"
)

const (
	TaxRate     = 0.18
	DeliveryFee = 50.0
)

var taxRate = decimal.NewFromFloat(TaxRate)

type Breakdown struct {
	BasePrice   float64 `json:"base_price"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
}

// LineTotal is price × quantity, zero when either is missing.
func LineTotal(item model.OrderItem) decimal.Decimal {
	if item.Price == nil || item.Quantity == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*item.Price).Mul(decimal.NewFromInt(int64(*item.Quantity)))
}

// Quantity returns the ordered quantity of item, zero when missing.
func Quantity(item model.OrderItem) int {
	if item.Quantity == nil {
		return 0
	}
	return *item.Quantity
}

// Tax is basePrice × 18%, rounded half-up to 2 decimals.
func Tax(basePrice float64) float64 {
	return decimal.NewFromFloat(basePrice).Mul(taxRate).Round(2).InexactFloat64()
}

// Total is basePrice + tax + delivery fee.
func Total(basePrice float64) float64 {
	base := decimal.NewFromFloat(basePrice)
	tax := base.Mul(taxRate).Round(2)
	return base.Add(tax).Add(decimal.NewFromFloat(DeliveryFee)).Round(2).InexactFloat64()
}

// Price computes the breakdown over items. Items with a missing price or
// quantity contribute nothing.
func Price(items []model.OrderItem) Breakdown {
	base := decimal.Zero
	for _, item := range items {
		base = base.Add(LineTotal(item))
	}
	b := base.Round(2).InexactFloat64()
	return Breakdown{
		BasePrice:   b,
		Tax:         Tax(b),
		DeliveryFee: DeliveryFee,
		Total:       Total(b),
	}
}
