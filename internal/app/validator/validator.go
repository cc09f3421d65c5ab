// Package validator holds the local admission checks that run before any
// network call. Pure and synchronous: same inputs, same verdict.
package validator

import (
	"fmt"

	"github.com/library-fullstack/borrowcart/internal/app/model"
	carterrors "github.com/library-fullstack/borrowcart/internal/errors"
)

// ValidateAdd decides whether requestedQty copies of bookID may be added to
// cart. knownAvailable is the caller's latest availability figure (nil when
// unknown); the cart's own record wins over it when the book is already in
// the cart, since that value was most recently confirmed by the server.
//
// Returns nil when the add may proceed.
func ValidateAdd(bookID int64, requestedQty int, cart *model.Cart, knownAvailable *int) *carterrors.CartError {
	if requestedQty < 1 {
		return &carterrors.CartError{
			Code:      carterrors.CodeInvalidQuantity,
			Message:   fmt.Sprintf("quantity must be at least 1, got %d", requestedQty),
			BookID:    bookID,
			Requested: requestedQty,
		}
	}

	currentInCart := 0
	effectiveAvailable := knownAvailable
	if existing, ok := cart.Find(bookID); ok {
		currentInCart = existing.Quantity
		if existing.AvailableCount != nil {
			effectiveAvailable = existing.AvailableCount
		}
	}

	if effectiveAvailable == nil {
		// Availability never observed for this book; let the server decide.
		return nil
	}
	available := *effectiveAvailable

	if available <= 0 {
		return &carterrors.CartError{
			Code:          carterrors.CodeOutOfStock,
			Message:       "no copies are currently available",
			BookID:        bookID,
			Requested:     requestedQty,
			Available:     available,
			CurrentInCart: currentInCart,
		}
	}

	if currentInCart+requestedQty > available {
		if currentInCart >= available {
			return &carterrors.CartError{
				Code:          carterrors.CodeAlreadyAtMax,
				Message:       "you already hold the maximum obtainable copies of this book",
				BookID:        bookID,
				Requested:     requestedQty,
				Available:     available,
				CurrentInCart: currentInCart,
			}
		}
		return &carterrors.CartError{
			Code:          carterrors.CodeInsufficientStock,
			Message:       fmt.Sprintf("only %d more copies can be added", available-currentInCart),
			BookID:        bookID,
			Requested:     requestedQty,
			Available:     available,
			CurrentInCart: currentInCart,
		}
	}

	return nil
}

// ValidateUpdate decides whether the cart entry for bookID may change to
// newQty. Quantities below 1 are never stored; callers must route zero to
// removal before validating.
func ValidateUpdate(bookID int64, newQty int, cart *model.Cart) *carterrors.CartError {
	if newQty < 1 {
		return &carterrors.CartError{
			Code:      carterrors.CodeInvalidQuantity,
			Message:   "quantity updates below 1 must go through removal",
			BookID:    bookID,
			Requested: newQty,
		}
	}

	existing, ok := cart.Find(bookID)
	if !ok {
		return &carterrors.CartError{
			Code:      carterrors.CodeItemNotFound,
			Message:   "book is not in the cart",
			BookID:    bookID,
			Requested: newQty,
		}
	}

	if existing.AvailableCount != nil && newQty > *existing.AvailableCount {
		return &carterrors.CartError{
			Code:          carterrors.CodeInsufficientStock,
			Message:       fmt.Sprintf("only %d copies are available", *existing.AvailableCount),
			BookID:        bookID,
			Requested:     newQty,
			Available:     *existing.AvailableCount,
			CurrentInCart: existing.Quantity,
		}
	}

	return nil
}
