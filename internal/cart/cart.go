package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

// CatalogClient is the catalog lookup the cart needs when adding items.
type CatalogClient interface {
	Product(ctx context.Context, id int64) (domain.Product, error)
}

// Cart holds the line items of the current transaction. Items keep a frozen
// product copy; insertion order drives display indices and removal.
type Cart struct {
	catalog CatalogClient
	log     *zap.Logger

	mu       sync.Mutex
	items    []domain.LineItem
	subtotal float64
	total    float64
	locked   bool
}

func New(catalog CatalogClient, log *zap.Logger) *Cart {
	return &Cart{catalog: catalog, log: log}
}

// AddItem fetches the product and appends a line item. The catalog stock is
// checked but not decremented here; the decrement happens when the sale is
// recorded (single-terminal model).
func (c *Cart) AddItem(ctx context.Context, productID int64, quantity int) (domain.LineItem, error) {
	if quantity <= 0 {
		return domain.LineItem{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	locked := c.locked
	c.mu.Unlock()
	if locked {
		return domain.LineItem{}, domain.ErrCheckoutLocked
	}

	product, err := c.catalog.Product(ctx, productID)
	if err != nil {
		return domain.LineItem{}, err
	}
	if product.Price == 0 {
		return domain.LineItem{}, fmt.Errorf("%w: %q", domain.ErrMissingPrice, product.Name)
	}
	if product.Stock < quantity {
		return domain.LineItem{}, fmt.Errorf("%w: only %d units available", domain.ErrInsufficientStock, product.Stock)
	}

	item := domain.LineItem{Product: product, Quantity: quantity}

	c.mu.Lock()
	defer c.mu.Unlock()
	// The catalog call above released the lock; re-check.
	if c.locked {
		return domain.LineItem{}, domain.ErrCheckoutLocked
	}
	c.items = append(c.items, item)
	c.recompute()

	c.log.Info("item added",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int("quantity", quantity),
		zap.Float64("total", c.total))
	return item, nil
}

// RemoveItem removes the item at a 1-based display index.
func (c *Cart) RemoveItem(index int) (domain.LineItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return domain.LineItem{}, domain.ErrCheckoutLocked
	}
	if len(c.items) == 0 {
		return domain.LineItem{}, domain.ErrEmptyCart
	}
	if index < 1 || index > len(c.items) {
		return domain.LineItem{}, domain.ErrInvalidIndex
	}

	removed := c.items[index-1]
	c.items = append(c.items[:index-1], c.items[index:]...)
	c.recompute()

	c.log.Info("item removed",
		zap.Int64("product_id", removed.Product.ID),
		zap.String("name", removed.Product.Name))
	return removed, nil
}

// Items returns a copy of the current line items in insertion order.
func (c *Cart) Items() []domain.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]domain.LineItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotal
}

func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Cart) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// Lock freezes the cart once checkout is finalized. Idempotent.
func (c *Cart) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = true
}

// Clear empties the cart, zeroes totals and releases the checkout lock.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.subtotal = 0
	c.total = 0
	c.locked = false
}

// Snapshot captures the cart state for recording and events.
func (c *Cart) Snapshot() domain.CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]domain.LineItem, len(c.items))
	copy(items, c.items)
	return domain.CartSnapshot{
		Items:      items,
		Subtotal:   c.subtotal,
		Total:      c.total,
		CapturedAt: time.Now(),
	}
}

// recompute rebuilds subtotal and total from scratch. Caller holds the lock.
// Values stay at full precision; rounding is a boundary concern.
func (c *Cart) recompute() {
	c.subtotal = 0
	c.total = 0
	for _, item := range c.items {
		qty := float64(item.EffectiveQuantity())
		rates := CategoryRates(item.Product.Category)

		lineBase := item.Product.Price * qty
		discount := rates.Discount * item.Product.Price * qty
		tax := rates.Tax * item.Product.Price * qty

		c.subtotal += lineBase
		c.total += lineBase - discount + tax
	}
}
