package validator

import (
	"testing"

	"github.com/library-fullstack/borrowcart/internal/app/model"
	carterrors "github.com/library-fullstack/borrowcart/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func cartWith(items ...model.CartItem) *model.Cart {
	cart := model.NewCart()
	for _, item := range items {
		cart.Upsert(item)
	}
	return cart
}

func TestValidateAdd_EmptyCartOK(t *testing.T) {
	err := ValidateAdd(5, 1, model.NewCart(), intPtr(3))
	assert.Nil(t, err)
}

func TestValidateAdd_OutOfStock(t *testing.T) {
	err := ValidateAdd(9, 5, model.NewCart(), intPtr(0))
	require.NotNil(t, err)
	assert.Equal(t, carterrors.CodeOutOfStock, err.Code)
	assert.False(t, err.Retryable())
	assert.Equal(t, int64(9), err.BookID)
	assert.Equal(t, 5, err.Requested)
}

func TestValidateAdd_InsufficientStock_PartialRoom(t *testing.T) {
	cart := cartWith(model.CartItem{BookID: 5, Quantity: 2, AvailableCount: intPtr(3)})

	err := ValidateAdd(5, 5, cart, nil)
	require.NotNil(t, err)
	assert.Equal(t, carterrors.CodeInsufficientStock, err.Code)
	assert.True(t, err.Retryable())
	assert.Equal(t, 2, err.CurrentInCart)
	assert.Equal(t, 3, err.Available)
}

func TestValidateAdd_AlreadyAtMax(t *testing.T) {
	cart := cartWith(model.CartItem{BookID: 5, Quantity: 3, AvailableCount: intPtr(3)})

	err := ValidateAdd(5, 1, cart, nil)
	require.NotNil(t, err)
	assert.Equal(t, carterrors.CodeAlreadyAtMax, err.Code)
	assert.False(t, err.Retryable())
}

func TestValidateAdd_CartRecordTrustedOverCaller(t *testing.T) {
	// The cart says 3 copies; the caller supplies a stale 10.
	cart := cartWith(model.CartItem{BookID: 5, Quantity: 3, AvailableCount: intPtr(3)})

	err := ValidateAdd(5, 1, cart, intPtr(10))
	require.NotNil(t, err)
	assert.Equal(t, carterrors.CodeAlreadyAtMax, err.Code)
}

func TestValidateAdd_UnknownAvailabilityPasses(t *testing.T) {
	// No availability on record anywhere: the server gets the final say.
	err := ValidateAdd(5, 2, model.NewCart(), nil)
	assert.Nil(t, err)
}

func TestValidateAdd_NonPositiveQuantity(t *testing.T) {
	err := ValidateAdd(5, 0, model.NewCart(), intPtr(3))
	require.NotNil(t, err)
	assert.Equal(t, carterrors.CodeInvalidQuantity, err.Code)
}

func TestValidateUpdate_ItemNotFound(t *testing.T) {
	err := ValidateUpdate(42, 1, model.NewCart())
	require.NotNil(t, err)
	assert.Equal(t, carterrors.CodeItemNotFound, err.Code)
	assert.False(t, err.Retryable())
}

func TestValidateUpdate_ExceedsAvailability(t *testing.T) {
	cart := cartWith(model.CartItem{BookID: 5, Quantity: 2, AvailableCount: intPtr(3)})

	err := ValidateUpdate(5, 4, cart)
	require.NotNil(t, err)
	assert.Equal(t, carterrors.CodeInsufficientStock, err.Code)
}

func TestValidateUpdate_WithinAvailabilityOK(t *testing.T) {
	cart := cartWith(model.CartItem{BookID: 5, Quantity: 2, AvailableCount: intPtr(3)})

	assert.Nil(t, ValidateUpdate(5, 3, cart))
}

func TestValidateUpdate_ZeroRejected(t *testing.T) {
	cart := cartWith(model.CartItem{BookID: 5, Quantity: 2, AvailableCount: intPtr(3)})

	err := ValidateUpdate(5, 0, cart)
	require.NotNil(t, err)
	assert.Equal(t, carterrors.CodeInvalidQuantity, err.Code)
}
