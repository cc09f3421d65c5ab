// Package mirror persists the cart as a single serialized record so it can
// be rehydrated across restarts. The mirror is never authoritative over a
// fresh server response; absent or corrupt data degrades to "no stored cart".
package mirror

import "github.com/library-fullstack/borrowcart/internal/app/model"

// PersistenceMirror is the durable key/value contract the cart store writes
// through. Load returns (nil, nil) when nothing usable is stored.
type PersistenceMirror interface {
	Load() (*model.Cart, error)
	Save(cart *model.Cart) error
	Clear() error
}
