package audit

import (
	"context"
	"time"
)

const (
	ActionOrderPlaced    = "order.placed"
	ActionOrderFulfilled = "order.fulfilled"
	ActionOrderCancelled = "order.cancelled"
)

type Event struct {
	ID        string         `bson:"_id,omitempty" json:"id"`
	Action    string         `bson:"action" json:"action"`
	OrderID   string         `bson:"order_id" json:"order_id"`
	ActorID   string         `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	Data      map[string]any `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
}

type Recorder interface {
	Record(ctx context.Context, e Event) error
	History(ctx context.Context, orderID string, limit int64) ([]Event, error)
}

// Nop discards events. Used when no MongoDB URI is configured.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

func (Nop) History(context.Context, string, int64) ([]Event, error) { return []Event{}, nil }
