// Package cart holds the in-memory shopping cart. The cart is process-local
// and deliberately not persisted: every fresh start begins empty.
package cart

import (
	"errors"
	"sync"

	"tokobuku/pkg/domain"
)

// ErrInvalidQuantity is returned when a non-positive quantity is added.
var ErrInvalidQuantity = errors.New("cart: quantity must be a positive integer")

// Cart accumulates selected books with quantities. Entries keep insertion
// order; at most one entry exists per book ID.
type Cart struct {
	mu    sync.RWMutex
	items []domain.CartItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add puts a book into the cart. Adding a book that is already present
// increases its quantity by the given amount instead of replacing it.
// Stock is not checked here; callers validate against their last-fetched
// snapshot before adding.
func (c *Cart) Add(book domain.Book, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == book.ID {
			c.items[i].Quantity += quantity
			return nil
		}
	}
	c.items = append(c.items, domain.CartItem{Book: book, Quantity: quantity})
	return nil
}

// Remove deletes the entry with the given book ID. Unknown IDs are a no-op.
func (c *Cart) Remove(bookID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == bookID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a copy of the cart entries in insertion order.
func (c *Cart) Items() []domain.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]domain.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of distinct entries.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// TotalItems sums all quantities; 0 for an empty cart.
func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice is the derived sum of price times quantity over all entries.
func (c *Cart) TotalPrice() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0.0
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}
