package errors

import (
	"encoding/json"
	"net/http"
	"strings"
)

// backendBody is the error payload shape the library service returns.
type backendBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Classify maps an HTTP error response to a CartError.
//
//   - 400 with a machine-readable code: mapped directly.
//   - 400 without a code: legacy servers, classified from message text.
//   - 409: another borrower changed availability concurrently.
//   - anything else (or an unreadable body): UNKNOWN.
func Classify(status int, body []byte) *CartError {
	if status == http.StatusConflict {
		return &CartError{
			Code:    CodeConflict,
			Message: "another borrower changed availability, please retry",
		}
	}

	var parsed backendBody
	if len(body) > 0 {
		// A malformed body falls through to message/UNKNOWN handling.
		_ = json.Unmarshal(body, &parsed)
	}

	if status == http.StatusBadRequest {
		switch parsed.Code {
		case wireOutOfStock:
			return &CartError{Code: CodeOutOfStock, Message: messageOr(parsed.Message, "no copies available")}
		case wireExceedsAvailability:
			return &CartError{Code: CodeInsufficientStock, Message: messageOr(parsed.Message, "not enough copies available")}
		}
		if parsed.Message != "" {
			return classifyMessage(parsed.Message)
		}
	}

	return &CartError{
		Code:    CodeUnknown,
		Message: messageOr(parsed.Message, "cart request failed"),
	}
}

// classifyMessage infers an error kind from free-text server messages.
//
// Deprecated: compatibility shim for servers that do not yet emit a code.
// Best-effort only; delete once every deployed backend sends codes.
func classifyMessage(message string) *CartError {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "out of stock") || strings.Contains(lower, "no copies") {
		return &CartError{Code: CodeOutOfStock, Message: message}
	}
	if strings.Contains(lower, "exceed") || strings.Contains(lower, "not enough") ||
		strings.Contains(lower, "insufficient") {
		return &CartError{Code: CodeInsufficientStock, Message: message}
	}
	if strings.Contains(lower, "conflict") {
		return &CartError{Code: CodeConflict, Message: message}
	}

	return &CartError{Code: CodeUnknown, Message: message}
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
