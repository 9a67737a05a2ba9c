package orders

import (
	"time"

	"cropcart/internal/model"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// DueAt is the moment an order becomes eligible for fulfillment.
func DueAt(o model.Order) time.Time {
	return o.CreatedAt.Add(o.DeliveryTime())
}

// IsCompleted is the display-time check shared by buyer and farmer views.
// It has no side effects and is monotonic in now.
func IsCompleted(o model.Order, now time.Time) bool {
	if o.Fulfilled {
		return true
	}
	return !now.Before(DueAt(o))
}

func StatusOf(o model.Order, now time.Time) Status {
	if IsCompleted(o, now) {
		return StatusCompleted
	}
	return StatusPending
}

// NeedsFulfillment reports whether a fulfill request should be sent for o.
func NeedsFulfillment(o model.Order, now time.Time) bool {
	return !o.Fulfilled && IsCompleted(o, now)
}

// MarkFulfilled applies the pending -> completed transition in memory.
// It returns false when the order is already fulfilled or not yet due.
func MarkFulfilled(o *model.Order, now time.Time) bool {
	if o.Fulfilled || now.Before(DueAt(*o)) {
		return false
	}
	at := now
	o.Fulfilled = true
	o.FulfilledAt = &at
	return true
}
