// Package bus is a minimal in-process pub/sub used to carry session and
// invalidation signals to the cart engine without coupling it to their
// producers.
package bus

import "sync"

// Handler receives a published payload.
type Handler func(payload interface{})

// Bus is the publish/subscribe surface the engine's collaborators share.
type Bus interface {
	Publish(topic string, payload interface{})
	// Subscribe registers handler for topic and returns an unsubscribe func.
	Subscribe(topic string, handler Handler) func()
}

type subscription struct {
	id      int
	handler Handler
}

type memoryBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

// New creates an in-process bus. Delivery is synchronous, in subscription
// order, on the publisher's goroutine.
func New() Bus {
	return &memoryBus{subs: make(map[string][]subscription)}
}

func (b *memoryBus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, sub := range b.subs[topic] {
		handlers = append(handlers, sub.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}

func (b *memoryBus) Subscribe(topic string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[topic]
		for i := range subs {
			if subs[i].id == id {
				b.subs[topic] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}
