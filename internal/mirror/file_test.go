package mirror

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/library-fullstack/borrowcart/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileMirror_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	m := NewFileMirror(path)

	cart := model.NewCart()
	cart.Upsert(model.CartItem{BookID: 5, Title: "Dune", Quantity: 2})

	require.NoError(t, m.Save(cart))

	loaded, err := m.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(5), loaded.Items[0].BookID)
	assert.Equal(t, 2, loaded.TotalBooks)
	assert.Equal(t, 1, loaded.TotalCopies)
}

func TestFileMirror_MissingIsEmpty(t *testing.T) {
	m := NewFileMirror(filepath.Join(t.TempDir(), "nothing.json"))

	loaded, err := m.Load()
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileMirror_CorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	loaded, err := NewFileMirror(path).Load()
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileMirror_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	m := NewFileMirror(path)

	require.NoError(t, m.Save(model.NewCart()))
	require.NoError(t, m.Clear())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing again is not an error.
	assert.NoError(t, m.Clear())
}

func TestFileMirror_TotalsRecomputedOnLoad(t *testing.T) {
	// Hand-patched totals on disk must not survive a load.
	path := filepath.Join(t.TempDir(), "cart.json")
	data := []byte(`{"items":[{"book_id":1,"title":"X","quantity":3}],"total_books":99,"total_copies":99}`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := NewFileMirror(path).Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 3, loaded.TotalBooks)
	assert.Equal(t, 1, loaded.TotalCopies)
}
