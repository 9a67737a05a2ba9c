package model

import (
	"time"
)

const DefaultDeliveryTimeMinutes = 30

type Buyer struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderItem is a snapshot of the crop taken when the order was placed.
// Price and Quantity are nil on malformed items.
type OrderItem struct {
	CropID   string   `json:"crop_id"`
	FarmerID string   `json:"farmer_id"`
	Name     string   `json:"name"`
	Type     string   `json:"type,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

type Order struct {
	ID                  string      `json:"id"`
	Buyer               Buyer       `json:"buyer"`
	Items               []OrderItem `json:"items"`
	DeliveryTimeMinutes int         `json:"delivery_time_minutes"`
	CreatedAt           time.Time   `json:"created_at"`
	Fulfilled           bool        `json:"fulfilled"`
	FulfilledAt         *time.Time  `json:"fulfilled_at"`
}

// DeliveryTime falls back to the default when the stored value is absent.
func (o Order) DeliveryTime() time.Duration {
	minutes := o.DeliveryTimeMinutes
	if minutes <= 0 {
		minutes = DefaultDeliveryTimeMinutes
	}
	return time.Duration(minutes) * time.Minute
}
