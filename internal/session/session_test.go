package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"cropcart/internal/kv"
	"cropcart/internal/model"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewManager(kv.NewMemoryStore(), "default", 0)

	if _, err := m.Current(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("empty store: err = %v, want ErrNoSession", err)
	}

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	err := m.Set(ctx, Session{
		Token:      "tok",
		User:       &model.User{ID: "farmer-1", Name: "Ravi", Role: model.RoleFarmer},
		SignedInAt: now,
	})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	s, err := m.RequireRole(ctx, model.RoleFarmer)
	if err != nil {
		t.Fatalf("RequireRole: %v", err)
	}
	if s.Token != "tok" || s.User.ID != "farmer-1" || !s.SignedInAt.Equal(now) {
		t.Errorf("session = %+v", s)
	}

	if _, err := m.RequireRole(ctx, model.RoleBuyer); !errors.Is(err, ErrNoSession) {
		t.Errorf("wrong role: err = %v", err)
	}

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := m.Current(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("after clear: err = %v", err)
	}
}

func TestSetRejectsIncompleteSession(t *testing.T) {
	m := NewManager(kv.NewMemoryStore(), "default", 0)
	if err := m.Set(context.Background(), Session{Token: "tok"}); err == nil {
		t.Error("expected error for session without user")
	}
}

func TestProfilesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	a := NewManager(store, "a", 0)
	b := NewManager(store, "b", 0)

	if err := a.Set(ctx, Session{Token: "t", User: &model.User{ID: "u"}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := b.Current(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("profile b sees profile a session: %v", err)
	}
}
