package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cropcart/internal/model"
	"cropcart/internal/orders"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderNotDue           = errors.New("order delivery time has not elapsed")
	ErrOrderAlreadyFulfilled = errors.New("order already fulfilled")
	ErrOrderCompleted        = errors.New("order already completed")
	ErrEmptyOrder            = errors.New("order has no items")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrForbidden             = errors.New("not allowed")
)

type OrderService struct {
	db *sql.DB
}

func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{db: db}
}

type PlaceItem struct {
	CropID   string `json:"cropId"`
	Quantity int    `json:"quantity"`
}

type PlaceOrderInput struct {
	Buyer               model.Buyer
	Items               []PlaceItem
	DeliveryTimeMinutes int
}

// Place snapshots the referenced crops into a new order.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput, now time.Time) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	delivery := in.DeliveryTimeMinutes
	if delivery <= 0 {
		delivery = model.DefaultDeliveryTimeMinutes
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	order := &model.Order{
		ID:                  uuid.NewString(),
		Buyer:               in.Buyer,
		DeliveryTimeMinutes: delivery,
		CreatedAt:           now.UTC(),
	}

	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: crop %s", ErrInvalidQuantity, it.CropID)
		}
		var item model.OrderItem
		var price float64
		err := tx.QueryRowContext(ctx,
			`SELECT id, farmer_id, name, type, unit, price FROM crops WHERE id::text = $1`, it.CropID,
		).Scan(&item.CropID, &item.FarmerID, &item.Name, &item.Type, &item.Unit, &price)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrCropNotFound, it.CropID)
			}
			return nil, fmt.Errorf("resolve crop: %w", err)
		}
		qty := it.Quantity
		item.Price = &price
		item.Quantity = &qty
		order.Items = append(order.Items, item)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, buyer_id, buyer_name, buyer_email, delivery_time_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.Buyer.ID, order.Buyer.Name, order.Buyer.Email, order.DeliveryTimeMinutes, order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, crop_id, farmer_id, name, type, unit, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			order.ID, i, item.CropID, item.FarmerID, item.Name, item.Type, item.Unit, *item.Price, *item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

const orderColumns = `id, buyer_id, buyer_name, buyer_email, delivery_time_minutes, created_at, fulfilled, fulfilled_at`

// ListByFarmer returns, newest first, every order containing at least one
// item of farmerID. Items of other farmers are included; scoping is the
// formatter's job.
func (s *OrderService) ListByFarmer(ctx context.Context, farmerID string) ([]model.Order, error) {
	return s.loadOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE id IN (SELECT order_id FROM order_items WHERE farmer_id = $1)
		ORDER BY created_at DESC`, farmerID)
}

func (s *OrderService) ListByBuyer(ctx context.Context, buyerID string) ([]model.Order, error) {
	return s.loadOrders(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
}

func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	list, err := s.loadOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrOrderNotFound
	}
	return &list[0], nil
}

// Fulfill flips fulfilled/fulfilled_at in a single conditional update. When
// nothing changes it reports why: ErrOrderNotFound, ErrOrderAlreadyFulfilled
// or ErrOrderNotDue.
func (s *OrderService) Fulfill(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET fulfilled = TRUE, fulfilled_at = $2
		WHERE id::text = $1 AND fulfilled = FALSE
		  AND created_at + make_interval(mins => delivery_time_minutes) <= $2`,
		id, now.UTC())
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var o model.Order
	err = s.db.QueryRowContext(ctx,
		`SELECT fulfilled, created_at, delivery_time_minutes FROM orders WHERE id::text = $1`, id,
	).Scan(&o.Fulfilled, &o.CreatedAt, &o.DeliveryTimeMinutes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}
	if o.Fulfilled {
		return ErrOrderAlreadyFulfilled
	}
	return ErrOrderNotDue
}

// Cancel deletes a pending order placed by buyerID.
func (s *OrderService) Cancel(ctx context.Context, id, buyerID string, now time.Time) error {
	o, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if o.Buyer.ID == "" || o.Buyer.ID != buyerID {
		return ErrForbidden
	}
	if o.Fulfilled {
		return ErrOrderAlreadyFulfilled
	}
	if orders.IsCompleted(*o, now) {
		return ErrOrderCompleted
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM orders WHERE id::text = $1 AND fulfilled = FALSE`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderAlreadyFulfilled
	}
	return nil
}

func (s *OrderService) loadOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	list := []model.Order{}
	index := map[string]int{}
	for rows.Next() {
		var o model.Order
		var fulfilledAt sql.NullTime
		if err := rows.Scan(&o.ID, &o.Buyer.ID, &o.Buyer.Name, &o.Buyer.Email,
			&o.DeliveryTimeMinutes, &o.CreatedAt, &o.Fulfilled, &fulfilledAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if fulfilledAt.Valid {
			t := fulfilledAt.Time
			o.FulfilledAt = &t
		}
		index[o.ID] = len(list)
		list = append(list, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode ids: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT order_id, crop_id, farmer_id, name, type, unit, price, quantity
		FROM order_items
		WHERE order_id::text IN (SELECT jsonb_array_elements_text($1::jsonb))
		ORDER BY order_id, position`, string(idsJSON))
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var item model.OrderItem
		var price sql.NullFloat64
		var qty sql.NullInt64
		if err := itemRows.Scan(&orderID, &item.CropID, &item.FarmerID, &item.Name, &item.Type, &item.Unit, &price, &qty); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if price.Valid {
			p := price.Float64
			item.Price = &p
		}
		if qty.Valid {
			q := int(qty.Int64)
			item.Quantity = &q
		}
		if i, ok := index[orderID]; ok {
			list[i].Items = append(list[i].Items, item)
		}
	}
	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("item rows iteration failed: %w", err)
	}

	return list, nil
}
