package handler

import (
	"context"
	"time"

	"cropcart/internal/model"
	"cropcart/internal/service"
)

type Authenticator interface {
	Register(ctx context.Context, name, email, password, role string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	UpsertFederated(ctx context.Context, name, email, role string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type CropStore interface {
	List(ctx context.Context) ([]model.Crop, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]model.Crop, error)
	ByIDs(ctx context.Context, ids []string) (map[string]model.Crop, error)
	Create(ctx context.Context, c model.Crop) (model.Crop, error)
	Update(ctx context.Context, c model.Crop) (model.Crop, error)
	Delete(ctx context.Context, farmerID, id string) error
}

type OrderStore interface {
	Place(ctx context.Context, in service.PlaceOrderInput, now time.Time) (*model.Order, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]model.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	Fulfill(ctx context.Context, id string, now time.Time) error
	Cancel(ctx context.Context, id, buyerID string, now time.Time) error
}

type CartStore interface {
	Get(ctx context.Context, userID string) ([]model.CartItem, error)
	Put(ctx context.Context, userID string, items []model.CartItem) ([]model.CartItem, error)
	Clear(ctx context.Context, userID string) error
	MemberSince(ctx context.Context, userID string, now time.Time) (time.Time, error)
}

// Clock returns the current time. Handlers take one so tests can pin it.
type Clock func() time.Time
