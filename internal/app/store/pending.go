package store

import (
	"sync"

	"github.com/library-fullstack/borrowcart/internal/app/model"
)

type pendingCall struct {
	done chan struct{}
	cart *model.Cart
	err  error
}

// PendingRequestRegistry guarantees at most one in-flight mutation per book.
// A caller arriving while a call for the same book is running joins that call
// and receives its result instead of starting a second one. The key is
// removed once the call settles, success or failure; callers racing after
// settlement each trigger a new call (no queueing). Mutations for different
// books are not serialized against each other.
type PendingRequestRegistry struct {
	mu    sync.Mutex
	calls map[int64]*pendingCall
}

// NewPendingRequestRegistry creates an empty registry.
func NewPendingRequestRegistry() *PendingRequestRegistry {
	return &PendingRequestRegistry{
		calls: make(map[int64]*pendingCall),
	}
}

// Do runs fn exclusively for bookID. The second return value reports whether
// the caller joined an already-running call rather than executing fn itself.
func (r *PendingRequestRegistry) Do(bookID int64, fn func() (*model.Cart, error)) (*model.Cart, bool, error) {
	r.mu.Lock()
	if c, ok := r.calls[bookID]; ok {
		r.mu.Unlock()
		<-c.done
		return c.cart, true, c.err
	}

	c := &pendingCall{done: make(chan struct{})}
	r.calls[bookID] = c
	r.mu.Unlock()

	c.cart, c.err = fn()

	// Remove the key before signalling joiners so a caller arriving after
	// settlement always starts a fresh call.
	r.mu.Lock()
	delete(r.calls, bookID)
	r.mu.Unlock()
	close(c.done)

	return c.cart, false, c.err
}

// InFlight reports whether a mutation for bookID is currently running.
func (r *PendingRequestRegistry) InFlight(bookID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.calls[bookID]
	return ok
}
