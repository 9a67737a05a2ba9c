// Package session keeps the signed-in user of a client process. It is set
// at login, read before every protected call and cleared at logout.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cropcart/internal/kv"
	"cropcart/internal/model"
)

var ErrNoSession = errors.New("not signed in")

type Session struct {
	Token       string      `json:"token"`
	User        *model.User `json:"user"`
	MemberSince *time.Time  `json:"member_since,omitempty"`
	SignedInAt  time.Time   `json:"signed_in_at"`
}

// Manager persists one session under a fixed key. Use kv.MemoryStore in
// tests and a Redis store when the session must survive restarts.
type Manager struct {
	store kv.Store
	key   string
	ttl   time.Duration
}

func NewManager(store kv.Store, profile string, ttl time.Duration) *Manager {
	return &Manager{store: store, key: "cropcartSession_" + profile, ttl: ttl}
}

func (m *Manager) Set(ctx context.Context, s Session) error {
	if s.Token == "" || s.User == nil {
		return errors.New("set session: token and user required")
	}
	if err := kv.SetJSON(ctx, m.store, m.key, s, m.ttl); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Current returns the stored session or ErrNoSession.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	var s Session
	err := kv.GetJSON(ctx, m.store, m.key, &s)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &s, nil
}

// RequireRole returns the current session only if its user has role.
func (m *Manager) RequireRole(ctx context.Context, role string) (*Session, error) {
	s, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}
	if s.User.Role != role {
		return nil, fmt.Errorf("%w: %s account required", ErrNoSession, role)
	}
	return s, nil
}

func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Del(ctx, m.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
