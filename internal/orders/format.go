package orders

import (
	"time"

	"cropcart/internal/model"
)

// FarmerOrder is an order as seen by a single farmer: only that farmer's
// items, priced on their own.
type FarmerOrder struct {
	ID                  string            `json:"id"`
	Buyer               model.Buyer       `json:"buyer"`
	Items               []model.OrderItem `json:"items"`
	Breakdown
	DeliveryTimeMinutes int        `json:"delivery_time_minutes"`
	CreatedAt           time.Time  `json:"created_at"`
	Fulfilled           bool       `json:"fulfilled"`
	FulfilledAt         *time.Time `json:"fulfilled_at"`
	Status              Status     `json:"status"`
}

// BuyerOrder is the buyer's view of an order with every item priced.
type BuyerOrder struct {
	model.Order
	Breakdown
	Status Status `json:"status"`
}

// Format builds the farmer-scoped view of o. ok is false when none of the
// items belong to farmerID, in which case the order is not part of the view.
func Format(o model.Order, farmerID string, now time.Time) (view FarmerOrder, ok bool) {
	var items []model.OrderItem
	for _, item := range o.Items {
		if item.FarmerID == farmerID {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return FarmerOrder{}, false
	}

	return FarmerOrder{
		ID:                  o.ID,
		Buyer:               o.Buyer,
		Items:               items,
		Breakdown:           Price(items),
		DeliveryTimeMinutes: int(o.DeliveryTime() / time.Minute),
		CreatedAt:           o.CreatedAt,
		Fulfilled:           o.Fulfilled,
		FulfilledAt:         o.FulfilledAt,
		Status:              StatusOf(o, now),
	}, true
}

// FormatAll formats every order for farmerID, dropping those with no items
// of theirs. Input order is preserved.
func FormatAll(list []model.Order, farmerID string, now time.Time) []FarmerOrder {
	views := make([]FarmerOrder, 0, len(list))
	for _, o := range list {
		if v, ok := Format(o, farmerID, now); ok {
			views = append(views, v)
		}
	}
	return views
}

func ForBuyer(o model.Order, now time.Time) BuyerOrder {
	return BuyerOrder{
		Order:     o,
		Breakdown: Price(o.Items),
		Status:    StatusOf(o, now),
	}
}

// Order converts the view back to the fields needed by the status checks.
func (v FarmerOrder) Order() model.Order {
	return model.Order{
		ID:                  v.ID,
		Buyer:               v.Buyer,
		Items:               v.Items,
		DeliveryTimeMinutes: v.DeliveryTimeMinutes,
		CreatedAt:           v.CreatedAt,
		Fulfilled:           v.Fulfilled,
		FulfilledAt:         v.FulfilledAt,
	}
}
