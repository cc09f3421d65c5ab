// Package store owns the in-memory borrow cart. It applies mutations
// optimistically, deduplicates concurrent requests per book, reconciles with
// the server's canonical snapshot on success, and rolls back the affected
// entry on failure while mirroring every settled state to durable storage.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/library-fullstack/borrowcart/internal/app/model"
	"github.com/library-fullstack/borrowcart/internal/app/validator"
	"github.com/library-fullstack/borrowcart/internal/client"
	carterrors "github.com/library-fullstack/borrowcart/internal/errors"
	"github.com/library-fullstack/borrowcart/internal/mirror"
	"github.com/library-fullstack/borrowcart/pkg/logger"
)

// CartStore is the single writer for the cart aggregate. All mutation entry
// points pass through it; readers get snapshots via Cart.
type CartStore interface {
	// Cart returns a snapshot of the current cart.
	Cart() *model.Cart

	// AddItem adds item.Quantity copies of the item's book, or increments the
	// existing entry. Returns the settled cart.
	AddItem(ctx context.Context, item model.CartItem) (*model.Cart, error)

	// UpdateQuantity sets the entry for bookID to quantity. A quantity of zero
	// or less is equivalent to removal.
	UpdateQuantity(ctx context.Context, bookID int64, quantity int) (*model.Cart, error)

	// RemoveItem deletes the entry for bookID.
	RemoveItem(ctx context.Context, bookID int64) (*model.Cart, error)

	// ClearCart empties the cart locally and server-side.
	ClearCart(ctx context.Context) (*model.Cart, error)

	// Refetch unconditionally replaces local state with the server's current
	// canonical cart.
	Refetch(ctx context.Context) (*model.Cart, error)

	// Initialize rehydrates the cart from the mirror and then fetches the
	// canonical cart once. Called on session start.
	Initialize(ctx context.Context) error

	// Teardown empties the cart and erases the mirror. Called on logout.
	Teardown()
}

type cartStore struct {
	mu      sync.RWMutex
	cart    *model.Cart
	client  client.SyncClient
	mirror  mirror.PersistenceMirror
	pending *PendingRequestRegistry
}

// NewCartStore creates a cart store around the given sync client and mirror.
func NewCartStore(sc client.SyncClient, m mirror.PersistenceMirror) CartStore {
	return &cartStore{
		cart:    model.NewCart(),
		client:  sc,
		mirror:  m,
		pending: NewPendingRequestRegistry(),
	}
}

func (s *cartStore) Cart() *model.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *cartStore) AddItem(ctx context.Context, item model.CartItem) (*model.Cart, error) {
	opID := uuid.NewString()
	logger.Info("Adding book to cart", map[string]interface{}{
		"op_id":    opID,
		"book_id":  item.BookID,
		"quantity": item.Quantity,
	})

	s.mu.RLock()
	verdict := validator.ValidateAdd(item.BookID, item.Quantity, s.cart, item.AvailableCount)
	s.mu.RUnlock()
	if verdict != nil {
		logger.Warn("Add rejected before network call", map[string]interface{}{
			"op_id":           opID,
			"book_id":         item.BookID,
			"code":            verdict.Code,
			"requested":       verdict.Requested,
			"available":       verdict.Available,
			"current_in_cart": verdict.CurrentInCart,
		})
		return nil, verdict
	}

	cart, joined, err := s.pending.Do(item.BookID, func() (*model.Cart, error) {
		prev := s.applyOptimisticAdd(item)

		server, err := s.client.AddToCart(ctx, item.BookID, item.Quantity)
		if err != nil {
			ce := carterrors.AsCartError(err)
			s.rollbackEntry(item.BookID, prev)
			logger.Warn("Add rolled back after server failure", map[string]interface{}{
				"op_id":   opID,
				"book_id": item.BookID,
				"code":    ce.Code,
			})
			return nil, ce
		}

		s.reconcile(server)
		logger.Info("Cart add reconciled with server", map[string]interface{}{
			"op_id":       opID,
			"book_id":     item.BookID,
			"total_books": server.TotalBooks,
		})
		return server.Clone(), nil
	})

	if joined {
		logger.Debug("Joined in-flight mutation for book", map[string]interface{}{
			"op_id":   opID,
			"book_id": item.BookID,
		})
	}
	if err != nil {
		return nil, carterrors.AsCartError(err)
	}
	return cart, nil
}

func (s *cartStore) UpdateQuantity(ctx context.Context, bookID int64, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		logger.Debug("Quantity update of zero routed to removal", map[string]interface{}{
			"book_id": bookID,
		})
		return s.RemoveItem(ctx, bookID)
	}

	opID := uuid.NewString()
	logger.Info("Updating cart quantity", map[string]interface{}{
		"op_id":    opID,
		"book_id":  bookID,
		"quantity": quantity,
	})

	s.mu.RLock()
	verdict := validator.ValidateUpdate(bookID, quantity, s.cart)
	s.mu.RUnlock()
	if verdict != nil {
		logger.Warn("Update rejected before network call", map[string]interface{}{
			"op_id":   opID,
			"book_id": bookID,
			"code":    verdict.Code,
		})
		return nil, verdict
	}

	cart, joined, err := s.pending.Do(bookID, func() (*model.Cart, error) {
		prev := s.applyOptimisticQuantity(bookID, quantity)

		server, err := s.client.UpdateCartQuantity(ctx, bookID, quantity)
		if err != nil {
			ce := carterrors.AsCartError(err)
			s.rollbackEntry(bookID, prev)
			logger.Warn("Update rolled back after server failure", map[string]interface{}{
				"op_id":   opID,
				"book_id": bookID,
				"code":    ce.Code,
			})
			return nil, ce
		}

		s.reconcile(server)
		return server.Clone(), nil
	})

	if joined {
		logger.Debug("Joined in-flight mutation for book", map[string]interface{}{
			"op_id":   opID,
			"book_id": bookID,
		})
	}
	if err != nil {
		return nil, carterrors.AsCartError(err)
	}
	return cart, nil
}

func (s *cartStore) RemoveItem(ctx context.Context, bookID int64) (*model.Cart, error) {
	opID := uuid.NewString()
	logger.Info("Removing book from cart", map[string]interface{}{
		"op_id":   opID,
		"book_id": bookID,
	})

	s.mu.RLock()
	_, present := s.cart.Find(bookID)
	s.mu.RUnlock()
	if !present {
		// Nothing to remove; no network call needed.
		logger.Debug("Remove skipped, book not in cart", map[string]interface{}{
			"op_id":   opID,
			"book_id": bookID,
		})
		return s.Cart(), nil
	}

	cart, joined, err := s.pending.Do(bookID, func() (*model.Cart, error) {
		prev := s.applyOptimisticRemove(bookID)

		server, err := s.client.RemoveFromCart(ctx, bookID)
		if err != nil {
			ce := carterrors.AsCartError(err)
			s.rollbackEntry(bookID, prev)
			logger.Warn("Remove rolled back after server failure", map[string]interface{}{
				"op_id":   opID,
				"book_id": bookID,
				"code":    ce.Code,
			})
			return nil, ce
		}

		s.reconcile(server)
		return server.Clone(), nil
	})

	if joined {
		logger.Debug("Joined in-flight mutation for book", map[string]interface{}{
			"op_id":   opID,
			"book_id": bookID,
		})
	}
	if err != nil {
		return nil, carterrors.AsCartError(err)
	}
	return cart, nil
}

func (s *cartStore) ClearCart(ctx context.Context) (*model.Cart, error) {
	opID := uuid.NewString()
	logger.Info("Clearing cart", map[string]interface{}{"op_id": opID})

	s.mu.Lock()
	prior := s.cart
	s.cart = model.NewCart()
	s.persistLocked()
	s.mu.Unlock()

	if err := s.client.ClearCart(ctx); err != nil {
		ce := carterrors.AsCartError(err)
		// Clear touches every entry, so the whole prior snapshot comes back.
		s.mu.Lock()
		s.cart = prior
		s.persistLocked()
		s.mu.Unlock()
		logger.Warn("Clear rolled back after server failure", map[string]interface{}{
			"op_id": opID,
			"code":  ce.Code,
		})
		return nil, ce
	}

	logger.Info("Cart cleared", map[string]interface{}{"op_id": opID})
	return s.Cart(), nil
}

func (s *cartStore) Refetch(ctx context.Context) (*model.Cart, error) {
	logger.Debug("Refetching canonical cart", nil)

	server, err := s.client.GetCart(ctx)
	if err != nil {
		ce := carterrors.AsCartError(err)
		logger.Warn("Cart refetch failed", map[string]interface{}{"code": ce.Code})
		return nil, ce
	}

	s.reconcile(server)
	return server.Clone(), nil
}

func (s *cartStore) Initialize(ctx context.Context) error {
	stored, err := s.mirror.Load()
	if err == nil && stored != nil {
		s.mu.Lock()
		s.cart = stored.Clone()
		s.mu.Unlock()
		logger.Info("Cart rehydrated from mirror", map[string]interface{}{
			"total_books":  stored.TotalBooks,
			"total_copies": stored.TotalCopies,
		})
	}

	// One fresh fetch per session start; the mirror only bridges the gap
	// until the server answers.
	if _, err := s.Refetch(ctx); err != nil {
		return err
	}
	return nil
}

func (s *cartStore) Teardown() {
	s.mu.Lock()
	s.cart = model.NewCart()
	s.mu.Unlock()

	if err := s.mirror.Clear(); err != nil {
		logger.Warn("Failed to erase cart mirror on teardown", map[string]interface{}{
			"error": err.Error(),
		})
	}
	logger.Info("Cart store torn down", nil)
}

// applyOptimisticAdd inserts or increments the entry for item.BookID, never
// letting the optimistic quantity exceed the known availability. Returns the
// prior entry (nil if absent) for rollback.
func (s *cartStore) applyOptimisticAdd(item model.CartItem) *model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.priorEntryLocked(item.BookID)

	if existing, ok := s.cart.Find(item.BookID); ok {
		next := existing
		next.Quantity = existing.Quantity + item.Quantity
		if item.AvailableCount != nil {
			next.AvailableCount = item.AvailableCount
		}
		if item.CopiesCount != nil {
			next.CopiesCount = item.CopiesCount
		}
		if next.AvailableCount != nil && next.Quantity > *next.AvailableCount {
			next.Quantity = *next.AvailableCount
		}
		s.cart.Upsert(next)
	} else {
		next := item
		if next.AvailableCount != nil && next.Quantity > *next.AvailableCount {
			next.Quantity = *next.AvailableCount
		}
		s.cart.Upsert(next)
	}

	s.persistLocked()
	return prev
}

// applyOptimisticQuantity replaces the quantity of an existing entry.
func (s *cartStore) applyOptimisticQuantity(bookID int64, quantity int) *model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.priorEntryLocked(bookID)
	if existing, ok := s.cart.Find(bookID); ok {
		existing.Quantity = quantity
		s.cart.Upsert(existing)
	}

	s.persistLocked()
	return prev
}

// applyOptimisticRemove filters the entry out.
func (s *cartStore) applyOptimisticRemove(bookID int64) *model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.priorEntryLocked(bookID)
	s.cart.Remove(bookID)
	s.persistLocked()
	return prev
}

// rollbackEntry restores only the failed book's prior entry, merged into
// whatever the cart holds at settlement time. A successful concurrent
// mutation for another book therefore survives the rollback.
func (s *cartStore) rollbackEntry(bookID int64, prev *model.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev == nil {
		s.cart.Remove(bookID)
	} else {
		s.cart.Upsert(*prev)
	}
	s.persistLocked()
}

// reconcile replaces local state with the server's canonical snapshot.
func (s *cartStore) reconcile(server *model.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = server.Clone()
	s.persistLocked()
}

func (s *cartStore) priorEntryLocked(bookID int64) *model.CartItem {
	if existing, ok := s.cart.Find(bookID); ok {
		return &existing
	}
	return nil
}

// persistLocked mirrors the current cart, or erases the mirror when the cart
// is empty. Mirror failures are logged, never surfaced: the mirror exists to
// survive restarts and must not fail a cart operation.
func (s *cartStore) persistLocked() {
	var err error
	if s.cart.IsEmpty() {
		err = s.mirror.Clear()
	} else {
		err = s.mirror.Save(s.cart)
	}
	if err != nil {
		logger.Warn("Failed to persist cart mirror", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
