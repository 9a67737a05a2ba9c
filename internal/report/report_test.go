package report

import (
	"bytes"
	"testing"
	"time"

	"cropcart/internal/model"
	"cropcart/internal/orders"
)

var now = time.Date(2025, time.May, 2, 8, 30, 0, 0, time.UTC)

func render(t *testing.T, list []orders.FarmerOrder) []byte {
	t.Helper()
	var buf bytes.Buffer
	e := &Exporter{compress: false}
	s := Summary{FarmerName: "Ravi", TotalOrders: len(list), LifetimeEarnings: 1234.5, CurrentPeriodEarnings: 200}
	if err := e.Write(&buf, s, list, now); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
	return buf.Bytes()
}

func TestWriteWithoutOrdersOmitsTable(t *testing.T) {
	out := render(t, nil)

	if !bytes.Contains(out, []byte("Summary")) {
		t.Error("summary block missing")
	}
	if !bytes.Contains(out, []byte("Rs. 1234.50")) {
		t.Error("lifetime earnings missing")
	}
	if bytes.Contains(out, []byte("Base price")) {
		t.Error("empty report should not contain the order table")
	}
}

func TestWriteWithOrders(t *testing.T) {
	price, qty := 45.0, 2
	o := model.Order{
		ID:        "3f2a9c1e-0000-4000-8000-00000000abcdef",
		Buyer:     model.Buyer{Name: "Meera"},
		CreatedAt: now.Add(-2 * time.Hour),
		Items: []model.OrderItem{
			{FarmerID: "F", Name: "Okra", Price: &price, Quantity: &qty},
			{FarmerID: "F", Name: "Spinach", Price: &price, Quantity: &qty},
		},
	}
	v, _ := orders.Format(o, "F", now)

	out := render(t, []orders.FarmerOrder{v})

	for _, want := range []string{"Base price", "#abcdef", "Meera", "Okra, Spinach", "Rs. 180.00", "completed", "2025-05-02"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestWriteEncodesNamesForCoreFont(t *testing.T) {
	price, qty := 30.0, 1
	o := model.Order{
		ID:        "order-zoe",
		Buyer:     model.Buyer{Name: "Zoë"},
		CreatedAt: now.Add(-time.Hour),
		Items:     []model.OrderItem{{FarmerID: "F", Name: "Jalapeño", Price: &price, Quantity: &qty}},
	}
	v, _ := orders.Format(o, "F", now)

	out := render(t, []orders.FarmerOrder{v})

	// cp1252: ë is 0xEB, ñ is 0xF1.
	if !bytes.Contains(out, []byte("Zo\xeb")) || !bytes.Contains(out, []byte("Jalape\xf1o")) {
		t.Error("names not converted to cp1252")
	}
	if bytes.Contains(out, []byte("Zo\xc3\xab")) {
		t.Error("raw UTF-8 bytes leaked into the PDF")
	}
}

func TestIDSuffix(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc", "abc"},
		{"123456", "123456"},
		{"0123456789", "456789"},
	}
	for _, tt := range tests {
		if got := idSuffix(tt.in); got != tt.want {
			t.Errorf("idSuffix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
