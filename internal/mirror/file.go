package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/library-fullstack/borrowcart/internal/app/model"
	"github.com/library-fullstack/borrowcart/pkg/logger"
)

// FileMirror stores the cart as one JSON file on disk.
type FileMirror struct {
	path string
}

// NewFileMirror creates a file-backed mirror at path. The parent directory is
// created on first save, not here.
func NewFileMirror(path string) *FileMirror {
	return &FileMirror{path: path}
}

// Load reads the stored cart. A missing or unparseable file yields (nil, nil):
// the stored mirror exists only to survive restarts, so bad data is treated
// as no data.
func (m *FileMirror) Load() (*model.Cart, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Cart mirror unreadable, treating as empty", map[string]interface{}{
				"path":  m.path,
				"error": err.Error(),
			})
		}
		return nil, nil
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		logger.Warn("Cart mirror corrupt, treating as empty", map[string]interface{}{
			"path":  m.path,
			"error": err.Error(),
		})
		return nil, nil
	}
	cart.Recompute()
	return &cart, nil
}

// Save writes the cart atomically via a temp file rename.
func (m *FileMirror) Save(cart *model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create mirror directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cart-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp mirror file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write mirror file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close mirror file: %w", err)
	}

	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace mirror file: %w", err)
	}
	return nil
}

// Clear removes the stored record. Clearing an already-absent record is fine.
func (m *FileMirror) Clear() error {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove mirror file: %w", err)
	}
	return nil
}
