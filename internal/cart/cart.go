package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cropcart/internal/kv"
	"cropcart/internal/model"
)

var ErrInvalidItem = errors.New("invalid cart item")

func CartKey(userID string) string        { return "cart_" + userID }
func MemberSinceKey(userID string) string { return "cropcartMemberSince_" + userID }

// Service keeps per-user state keyed by user ID so that several accounts on
// the same device never see each other's carts.
type Service struct {
	store kv.Store
}

func NewService(store kv.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, userID string) ([]model.CartItem, error) {
	var items []model.CartItem
	err := kv.GetJSON(ctx, s.store, CartKey(userID), &items)
	if errors.Is(err, kv.ErrNotFound) {
		return []model.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return items, nil
}

// Put replaces the cart. Entries for the same crop are merged.
func (s *Service) Put(ctx context.Context, userID string, items []model.CartItem) ([]model.CartItem, error) {
	merged := make([]model.CartItem, 0, len(items))
	index := map[string]int{}
	for _, it := range items {
		if it.CropID == "" || it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: crop %q quantity %d", ErrInvalidItem, it.CropID, it.Quantity)
		}
		if i, ok := index[it.CropID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.CropID] = len(merged)
		merged = append(merged, it)
	}

	if err := kv.SetJSON(ctx, s.store, CartKey(userID), merged, 0); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return merged, nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.store.Del(ctx, CartKey(userID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// MemberSince returns the first-seen timestamp of the user, recording now if
// none exists yet.
func (s *Service) MemberSince(ctx context.Context, userID string, now time.Time) (time.Time, error) {
	key := MemberSinceKey(userID)
	if _, err := s.store.SetNX(ctx, key, now.UTC().Format(time.RFC3339), 0); err != nil {
		return time.Time{}, fmt.Errorf("set member since: %w", err)
	}
	v, err := s.store.Get(ctx, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("get member since: %w", err)
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse member since: %w", err)
	}
	return t, nil
}
