// Package client talks to the library service's cart endpoints and returns
// canonical cart snapshots.
package client

import (
	"context"

	"github.com/library-fullstack/borrowcart/internal/app/model"
)

// SyncClient performs the remote cart operations. Every mutation returns the
// server's canonical cart snapshot, which the store treats as the source of
// truth after a successful call. Failures carry a classified
// *errors.CartError.
type SyncClient interface {
	GetCart(ctx context.Context) (*model.Cart, error)
	AddToCart(ctx context.Context, bookID int64, quantity int) (*model.Cart, error)
	UpdateCartQuantity(ctx context.Context, bookID int64, quantity int) (*model.Cart, error)
	RemoveFromCart(ctx context.Context, bookID int64) (*model.Cart, error)
	ClearCart(ctx context.Context) error
}

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource around a fixed token string.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	return string(t), nil
}

// wire shapes for the cart endpoints.

type wireCartItem struct {
	BookID         int64   `json:"book_id"`
	Quantity       int     `json:"quantity"`
	Title          string  `json:"title"`
	AuthorNames    *string `json:"author_names,omitempty"`
	ThumbnailURL   *string `json:"thumbnail_url,omitempty"`
	AvailableCount *int    `json:"available_count,omitempty"`
	CopiesCount    *int    `json:"copies_count,omitempty"`
}

type wireCart struct {
	Items   []wireCartItem `json:"items"`
	Summary struct {
		TotalItems int `json:"total_items"`
		TotalBooks int `json:"total_books"`
	} `json:"summary"`
}

// toModel converts a wire cart to the aggregate. Totals are recomputed from
// the items rather than trusted from the summary block.
func (w *wireCart) toModel() *model.Cart {
	cart := model.NewCart()
	for _, wi := range w.Items {
		cart.Items = append(cart.Items, model.CartItem{
			BookID:         wi.BookID,
			Title:          wi.Title,
			AuthorNames:    wi.AuthorNames,
			ThumbnailURL:   wi.ThumbnailURL,
			Quantity:       wi.Quantity,
			AvailableCount: wi.AvailableCount,
			CopiesCount:    wi.CopiesCount,
		})
	}
	cart.Recompute()
	return cart
}
