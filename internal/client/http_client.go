package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/library-fullstack/borrowcart/internal/app/model"
	carterrors "github.com/library-fullstack/borrowcart/internal/errors"
	"github.com/library-fullstack/borrowcart/pkg/logger"
)

// Config holds the HTTP client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.Tokens == nil {
		return fmt.Errorf("token source is required")
	}
	return nil
}

// HTTPClient implements SyncClient over the library service's REST API.
type HTTPClient struct {
	config     Config
	httpClient *http.Client
}

// NewHTTPClient creates a SyncClient with the given configuration.
func NewHTTPClient(config Config) (*HTTPClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type addRequest struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

type updateRequest struct {
	Quantity int `json:"quantity"`
}

func (c *HTTPClient) GetCart(ctx context.Context) (*model.Cart, error) {
	return c.cartRequest(ctx, http.MethodGet, "/api/v1/cart", nil)
}

func (c *HTTPClient) AddToCart(ctx context.Context, bookID int64, quantity int) (*model.Cart, error) {
	return c.cartRequest(ctx, http.MethodPost, "/api/v1/cart/items", addRequest{BookID: bookID, Quantity: quantity})
}

func (c *HTTPClient) UpdateCartQuantity(ctx context.Context, bookID int64, quantity int) (*model.Cart, error) {
	path := fmt.Sprintf("/api/v1/cart/items/%d", bookID)
	return c.cartRequest(ctx, http.MethodPut, path, updateRequest{Quantity: quantity})
}

func (c *HTTPClient) RemoveFromCart(ctx context.Context, bookID int64) (*model.Cart, error) {
	path := fmt.Sprintf("/api/v1/cart/items/%d", bookID)
	return c.cartRequest(ctx, http.MethodDelete, path, nil)
}

// ClearCart has no reconciliation payload; the server responds with no body.
func (c *HTTPClient) ClearCart(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/api/v1/cart", nil)
	return err
}

// cartRequest performs a request and decodes the canonical cart response.
func (c *HTTPClient) cartRequest(ctx context.Context, method, path string, payload interface{}) (*model.Cart, error) {
	body, err := c.doRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	var wire wireCart
	if err := json.Unmarshal(body, &wire); err != nil {
		logger.Warn("Malformed cart response from server", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return nil, &carterrors.CartError{
			Code:    carterrors.CodeUnknown,
			Message: "server returned a malformed cart response",
		}
	}
	return wire.toModel(), nil
}

// doRequest performs an HTTP request against the cart API and returns the
// response body. Non-2xx responses come back as classified CartErrors.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.config.Tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &carterrors.CartError{
			Code:    carterrors.CodeUnknown,
			Message: fmt.Sprintf("cart request failed: %v", err),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &carterrors.CartError{
			Code:    carterrors.CodeUnknown,
			Message: fmt.Sprintf("failed to read cart response: %v", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ce := carterrors.Classify(resp.StatusCode, respBody)
		logger.Debug("Cart request rejected by server", map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
			"code":   ce.Code,
		})
		return nil, ce
	}

	return respBody, nil
}
