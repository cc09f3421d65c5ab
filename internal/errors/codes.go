package errors

// Error code constants.
// Format: CATEGORY or CATEGORY_DETAIL.
// Callers branch on these codes rather than parsing messages.

const (
	// ==================== Stock / availability ====================
	CodeOutOfStock        = "OUT_OF_STOCK"       // zero copies loanable
	CodeInsufficientStock = "INSUFFICIENT_STOCK" // some copies left, fewer than requested
	CodeAlreadyAtMax      = "ALREADY_AT_MAX"     // user already holds the maximum obtainable

	// ==================== Cart state ====================
	CodeItemNotFound    = "ITEM_NOT_FOUND"   // update targeted a book not in the cart
	CodeInvalidQuantity = "INVALID_QUANTITY" // non-positive or malformed quantity

	// ==================== Remote ====================
	CodeConflict = "CONFLICT" // another borrower changed availability (HTTP 409)
	CodeUnknown  = "UNKNOWN"  // network, 5xx, malformed response
)

// Wire codes the backend emits inside a 400 body. EXCEEDS_AVAILABILITY is the
// server's name for what this engine reports as INSUFFICIENT_STOCK.
const (
	wireOutOfStock          = "OUT_OF_STOCK"
	wireExceedsAvailability = "EXCEEDS_AVAILABILITY"
)
