package session

import (
	"context"
	"time"

	"github.com/library-fullstack/borrowcart/internal/app/store"
	"github.com/library-fullstack/borrowcart/internal/bus"
	"github.com/library-fullstack/borrowcart/pkg/logger"
)

// Topics the binder listens on. Producers (the host application, the notify
// listener) publish these to drive the engine without calling it directly.
const (
	TopicLogin           = "auth.login"
	TopicLogout          = "auth.logout"
	TopicCartInvalidated = "cart.invalidated"
)

const signalTimeout = 30 * time.Second

// Binder connects session signals to the cart store lifecycle: login starts
// the engine, logout tears it down, an invalidation push refetches.
type Binder struct {
	store  store.CartStore
	gate   Gate
	bus    bus.Bus
	unsubs []func()
}

// NewBinder wires store, gate and bus together. Call Bind to activate.
func NewBinder(s store.CartStore, g Gate, b bus.Bus) *Binder {
	return &Binder{store: s, gate: g, bus: b}
}

// Bind subscribes to the session topics and, when a session is already
// active, initializes the store immediately.
func (b *Binder) Bind(ctx context.Context) {
	b.unsubs = append(b.unsubs,
		b.bus.Subscribe(TopicLogin, func(interface{}) { b.onLogin(ctx) }),
		b.bus.Subscribe(TopicLogout, func(interface{}) { b.onLogout() }),
		b.bus.Subscribe(TopicCartInvalidated, func(interface{}) { b.onInvalidated(ctx) }),
	)

	if b.gate.Authenticated() {
		b.onLogin(ctx)
	}
}

// Close drops all subscriptions.
func (b *Binder) Close() {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
}

func (b *Binder) onLogin(ctx context.Context) {
	logger.Info("Session started, initializing cart store", nil)

	initCtx, cancel := context.WithTimeout(ctx, signalTimeout)
	defer cancel()

	if err := b.store.Initialize(initCtx); err != nil {
		logger.Warn("Cart initialization incomplete", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (b *Binder) onLogout() {
	logger.Info("Session ended, tearing down cart store", nil)
	b.store.Teardown()
}

func (b *Binder) onInvalidated(ctx context.Context) {
	refetchCtx, cancel := context.WithTimeout(ctx, signalTimeout)
	defer cancel()

	if _, err := b.store.Refetch(refetchCtx); err != nil {
		logger.Warn("Refetch after invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
