package model

// CartItem is one book's entry in the borrow cart: the requested quantity
// plus the availability figures last confirmed by the server.
type CartItem struct {
	BookID         int64   `json:"book_id"`
	Title          string  `json:"title"`
	AuthorNames    *string `json:"author_names,omitempty"`
	ThumbnailURL   *string `json:"thumbnail_url,omitempty"`
	Quantity       int     `json:"quantity"`
	AvailableCount *int    `json:"available_count,omitempty"`
	CopiesCount    *int    `json:"copies_count,omitempty"`
}

// Cart is the aggregate root. TotalBooks and TotalCopies are derived from
// Items and must never be patched independently; every mutation goes through
// Recompute.
//
// Naming note: TotalBooks is the sum of all quantities and TotalCopies is the
// number of distinct titles. The consuming UI renders these fields under
// exactly these names, so the computation is kept as-is even though the names
// read inverted.
type Cart struct {
	Items       []CartItem `json:"items"`
	TotalBooks  int        `json:"total_books"`
	TotalCopies int        `json:"total_copies"`
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

// Recompute refreshes the derived totals from Items.
func (c *Cart) Recompute() {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	c.TotalBooks = total
	c.TotalCopies = len(c.Items)
}

// Find returns a copy of the item for bookID, if present.
func (c *Cart) Find(bookID int64) (CartItem, bool) {
	for _, item := range c.Items {
		if item.BookID == bookID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Upsert inserts the item or replaces the existing entry with the same
// BookID, preserving its position. Totals are recomputed.
func (c *Cart) Upsert(item CartItem) {
	for i := range c.Items {
		if c.Items[i].BookID == item.BookID {
			c.Items[i] = item
			c.Recompute()
			return
		}
	}
	c.Items = append(c.Items, item)
	c.Recompute()
}

// Remove deletes the entry for bookID. Returns false if it was not present.
func (c *Cart) Remove(bookID int64) bool {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recompute()
			return true
		}
	}
	return false
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy. Pointer fields are duplicated so a clone can be
// handed out without sharing mutable state.
func (c *Cart) Clone() *Cart {
	clone := &Cart{
		Items:       make([]CartItem, len(c.Items)),
		TotalBooks:  c.TotalBooks,
		TotalCopies: c.TotalCopies,
	}
	for i, item := range c.Items {
		clone.Items[i] = item.clone()
	}
	return clone
}

func (i CartItem) clone() CartItem {
	out := i
	if i.AuthorNames != nil {
		v := *i.AuthorNames
		out.AuthorNames = &v
	}
	if i.ThumbnailURL != nil {
		v := *i.ThumbnailURL
		out.ThumbnailURL = &v
	}
	if i.AvailableCount != nil {
		v := *i.AvailableCount
		out.AvailableCount = &v
	}
	if i.CopiesCount != nil {
		v := *i.CopiesCount
		out.CopiesCount = &v
	}
	return out
}
