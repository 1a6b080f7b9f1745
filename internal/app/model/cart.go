package model

import (
	"time"

	"github.com/mkim-dev/storefront-backend/pkg/catalog"
)

// LineItem is one product's entry in a cart. Title, price, discount and
// thumbnail are captured from the catalog product at insertion time and do
// not change if the catalog record later changes.
type LineItem struct {
	ProductID          int     `json:"product_id"`
	Title              string  `json:"title"`
	Price              float64 `json:"price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Thumbnail          string  `json:"thumbnail"`
	Quantity           int     `json:"quantity"`
	Total              float64 `json:"total"`
	DiscountedTotal    float64 `json:"discounted_total"`
}

// Cart is an insertion-ordered collection of line items, keyed by product
// identifier. TotalItems and TotalPrice are derived from the items and are
// recomputed on every mutation; they are never mutated independently.
type Cart struct {
	ID         string     `json:"id"`
	Items      []LineItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart with the given identifier.
func NewCart(id string) *Cart {
	return &Cart{
		ID:    id,
		Items: []LineItem{},
	}
}

// AddItem adds one unit of the product. If a line item for the product
// already exists its quantity is incremented by exactly 1; otherwise a new
// line item with quantity 1 is appended, snapshotting the product's title,
// price, discount and thumbnail.
func (c *Cart) AddItem(p *catalog.Product) {
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity++
			c.finishMutation()
			return
		}
	}

	c.Items = append(c.Items, LineItem{
		ProductID:          p.ID,
		Title:              p.Title,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Thumbnail:          p.Thumbnail,
		Quantity:           1,
	})
	c.finishMutation()
}

// RemoveItem removes the line item with the given product identifier.
// Removing an absent identifier is a no-op, not an error.
func (c *Cart) RemoveItem(productID int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.finishMutation()
			return
		}
	}
}

// UpdateQuantity sets the quantity of the line item with the given product
// identifier. A quantity of zero or less removes the item; an absent
// identifier is a no-op.
func (c *Cart) UpdateQuantity(productID, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.finishMutation()
			return
		}
	}
}

// Contains reports whether a line item with the given product identifier
// currently exists.
func (c *Cart) Contains(productID int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return true
		}
	}
	return false
}

// Clear empties the cart. A cleared cart is observably identical to a
// freshly created one.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.finishMutation()
}

// Recompute rederives every per-line total and the cart aggregates from the
// line item collection. It is called after every mutation and when a cart is
// restored from a persisted snapshot, so a stale snapshot cannot introduce
// aggregate drift.
func (c *Cart) Recompute() {
	totalItems := 0
	totalPrice := 0.0
	for i := range c.Items {
		item := &c.Items[i]
		item.Total = float64(item.Quantity) * item.Price
		item.DiscountedTotal = item.Total * (1 - item.DiscountPercentage/100)
		totalItems += item.Quantity
		totalPrice += item.DiscountedTotal
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
}

func (c *Cart) finishMutation() {
	c.Recompute()
	c.UpdatedAt = time.Now().UTC()
}
