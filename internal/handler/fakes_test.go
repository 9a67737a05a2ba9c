package handler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"cropcart/internal/audit"
	"cropcart/internal/model"
	"cropcart/internal/orders"
	"cropcart/internal/service"
)

type fakeAuth struct {
	mu    sync.Mutex
	users map[string]*model.User // by email
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: map[string]*model.User{}}
}

func (f *fakeAuth) add(id, name, email, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &model.User{ID: id, Name: name, Email: email, Role: role, Provider: "password", PasswordHash: hash}
	f.mu.Lock()
	f.users[email] = u
	f.mu.Unlock()
	return u
}

func (f *fakeAuth) Register(_ context.Context, name, email, password, role string) (*model.User, error) {
	f.mu.Lock()
	_, exists := f.users[email]
	f.mu.Unlock()
	if exists {
		return nil, service.ErrEmailTaken
	}
	return f.add("u-"+email, name, email, password, role), nil
}

func (f *fakeAuth) Authenticate(_ context.Context, email, password string) (*model.User, error) {
	f.mu.Lock()
	u, ok := f.users[email]
	f.mu.Unlock()
	if !ok {
		return nil, service.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, service.ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeAuth) UpsertFederated(_ context.Context, name, email, role string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	u := &model.User{ID: "g-" + email, Name: name, Email: email, Role: role, Provider: "google"}
	f.users[email] = u
	return u, nil
}

func (f *fakeAuth) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, service.ErrUserNotFound
}

type fakeCrops struct {
	crops []model.Crop
}

func (f *fakeCrops) List(context.Context) ([]model.Crop, error) { return f.crops, nil }

func (f *fakeCrops) ListByFarmer(_ context.Context, farmerID string) ([]model.Crop, error) {
	var out []model.Crop
	for _, c := range f.crops {
		if c.FarmerID == farmerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCrops) ByIDs(_ context.Context, ids []string) (map[string]model.Crop, error) {
	out := map[string]model.Crop{}
	for _, c := range f.crops {
		for _, id := range ids {
			if c.ID == id {
				out[id] = c
			}
		}
	}
	return out, nil
}

func (f *fakeCrops) Create(_ context.Context, c model.Crop) (model.Crop, error) {
	c.ID = "crop-new"
	f.crops = append(f.crops, c)
	return c, nil
}

func (f *fakeCrops) Update(_ context.Context, c model.Crop) (model.Crop, error) {
	for i, existing := range f.crops {
		if existing.ID == c.ID && existing.FarmerID == c.FarmerID {
			f.crops[i] = c
			return c, nil
		}
	}
	return model.Crop{}, service.ErrCropNotFound
}

func (f *fakeCrops) Delete(_ context.Context, farmerID, id string) error {
	for i, c := range f.crops {
		if c.ID == id && c.FarmerID == farmerID {
			f.crops = append(f.crops[:i], f.crops[i+1:]...)
			return nil
		}
	}
	return service.ErrCropNotFound
}

// fakeOrders keeps orders in memory and applies the same transition rules
// as the SQL service.
type fakeOrders struct {
	mu     sync.Mutex
	orders []model.Order
}

func (f *fakeOrders) Place(_ context.Context, in service.PlaceOrderInput, now time.Time) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, service.ErrEmptyOrder
	}
	o := model.Order{ID: "placed-1", Buyer: in.Buyer, DeliveryTimeMinutes: in.DeliveryTimeMinutes, CreatedAt: now}
	for _, it := range in.Items {
		price, qty := 10.0, it.Quantity
		o.Items = append(o.Items, model.OrderItem{CropID: it.CropID, FarmerID: "farmer-1", Name: it.CropID, Price: &price, Quantity: &qty})
	}
	f.mu.Lock()
	f.orders = append(f.orders, o)
	f.mu.Unlock()
	return &o, nil
}

func (f *fakeOrders) ListByFarmer(_ context.Context, farmerID string) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		if involved(o, farmerID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByBuyer(_ context.Context, buyerID string) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		if o.Buyer.ID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, service.ErrOrderNotFound
}

func (f *fakeOrders) Fulfill(_ context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID != id {
			continue
		}
		if f.orders[i].Fulfilled {
			return service.ErrOrderAlreadyFulfilled
		}
		if !orders.MarkFulfilled(&f.orders[i], now) {
			return service.ErrOrderNotDue
		}
		return nil
	}
	return service.ErrOrderNotFound
}

func (f *fakeOrders) Cancel(_ context.Context, id, buyerID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, o := range f.orders {
		if o.ID != id {
			continue
		}
		if o.Buyer.ID != buyerID {
			return service.ErrForbidden
		}
		if o.Fulfilled {
			return service.ErrOrderAlreadyFulfilled
		}
		if orders.IsCompleted(o, now) {
			return service.ErrOrderCompleted
		}
		f.orders = append(f.orders[:i], f.orders[i+1:]...)
		return nil
	}
	return service.ErrOrderNotFound
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeRecorder) History(_ context.Context, orderID string, limit int64) ([]audit.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []audit.Event{}
	for i := len(f.events) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.events[i].OrderID == orderID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}
