package errors

import "fmt"

// CartError is the structured error every cart operation surfaces. Callers
// branch on Code; Message is display text only.
type CartError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	BookID        int64  `json:"book_id,omitempty"`
	Requested     int    `json:"requested,omitempty"`
	Available     int    `json:"available,omitempty"`
	CurrentInCart int    `json:"current_in_cart,omitempty"`
}

func (e *CartError) Error() string {
	if e.BookID != 0 {
		return fmt.Sprintf("%s: %s (book_id=%d)", e.Code, e.Message, e.BookID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Retryable is advisory metadata for the caller's own backoff/UI decision.
// The engine never retries on its own.
//
//   - INSUFFICIENT_STOCK: retryable, the user may lower the quantity.
//   - CONFLICT: retryable after a short delay.
//   - UNKNOWN: retryable, caller should cap attempts.
//
// Everything else needs new information before a retry can succeed.
func (e *CartError) Retryable() bool {
	switch e.Code {
	case CodeInsufficientStock, CodeConflict, CodeUnknown:
		return true
	default:
		return false
	}
}

// New builds a CartError with just a code and message.
func New(code, message string) *CartError {
	return &CartError{Code: code, Message: message}
}

// AsCartError returns err as a *CartError, wrapping anything else as UNKNOWN
// so callers always receive the structured form.
func AsCartError(err error) *CartError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CartError); ok {
		return ce
	}
	return &CartError{Code: CodeUnknown, Message: err.Error()}
}
