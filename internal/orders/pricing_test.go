package orders

import (
	"testing"

	"cropcart/internal/model"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func TestTaxAndTotal(t *testing.T) {
	tests := []struct {
		base      float64
		wantTax   float64
		wantTotal float64
	}{
		{1000, 180, 1230},
		{0, 0, 50},
		{99.99, 18, 167.99},  // 17.9982 -> 18.00
		{12.5, 2.25, 64.75},  // exact
		{0.25, 0.05, 50.30},  // 0.045 rounds half-up to 0.05
		{333.33, 60, 443.33}, // 59.9994 -> 60.00
	}
	for _, tt := range tests {
		if got := Tax(tt.base); got != tt.wantTax {
			t.Errorf("Tax(%v) = %v, want %v", tt.base, got, tt.wantTax)
		}
		if got := Total(tt.base); got != tt.wantTotal {
			t.Errorf("Total(%v) = %v, want %v", tt.base, got, tt.wantTotal)
		}
	}
}

func TestPriceSkipsMalformedItems(t *testing.T) {
	items := []model.OrderItem{
		{Name: "Tomato", Price: ptrF(40), Quantity: ptrI(5)},
		{Name: "no price", Quantity: ptrI(3)},
		{Name: "no quantity", Price: ptrF(100)},
		{Name: "Onion", Price: ptrF(30), Quantity: ptrI(10)},
	}

	b := Price(items)
	if b.BasePrice != 500 {
		t.Errorf("BasePrice = %v, want 500", b.BasePrice)
	}
	if b.Tax != 90 {
		t.Errorf("Tax = %v, want 90", b.Tax)
	}
	if b.DeliveryFee != DeliveryFee {
		t.Errorf("DeliveryFee = %v, want %v", b.DeliveryFee, DeliveryFee)
	}
	if b.Total != 640 {
		t.Errorf("Total = %v, want 640", b.Total)
	}
}
