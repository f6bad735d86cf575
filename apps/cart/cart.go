package cart

import (
	"errors"
	"fmt"

	"bulut3d/apps/product"
	"bulut3d/apps/product/model"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("cart: line quantity must be at least 1")
	ErrEmpty           = errors.New("cart: cart is empty")
)

// ItemID is the merge key of a cart line: product id plus the three variant axes.
func ItemID(productID uint, v model.VariantConfig) string {
	return fmt.Sprintf("%d-%s-%s-%s", productID, v.Material, v.Size, v.Color)
}

type Item struct {
	CartID   string              `json:"cartId"`
	Product  model.Product       `json:"product"`
	Variant  model.VariantConfig `json:"selectedVariant"`
	Quantity int                 `json:"quantity"`
}

func (i Item) UnitPrice() decimal.Decimal {
	return product.UnitPrice(i.Product, i.Variant)
}

func (i Item) LineTotal() decimal.Decimal {
	return product.LineTotal(i.Product, i.Variant, i.Quantity)
}

// Cart is an ordered list of lines with unique CartIDs. The zero value is an
// empty cart. It is not safe for concurrent use.
type Cart struct {
	items []Item
}

// Restore rebuilds a cart from previously persisted lines, merging duplicates.
func Restore(items []Item) *Cart {
	c := &Cart{}
	for _, it := range items {
		if i := c.index(it.CartID); i >= 0 {
			c.items[i].Quantity += it.Quantity
			continue
		}
		c.items = append(c.items, it)
	}
	return c
}

func (c *Cart) index(id string) int {
	for i := range c.items {
		if c.items[i].CartID == id {
			return i
		}
	}
	return -1
}

// Add merges quantity into the line for (p, v), creating it if needed.
// Quantities below 1 count as 1.
func (c *Cart) Add(p model.Product, v model.VariantConfig, quantity int) Item {
	if quantity < 1 {
		quantity = 1
	}
	id := ItemID(p.ID, v)
	if i := c.index(id); i >= 0 {
		c.items[i].Quantity += quantity
		c.items[i].Product = p
		return c.items[i]
	}
	it := Item{CartID: id, Product: p, Variant: v, Quantity: quantity}
	c.items = append(c.items, it)
	return it
}

// UpdateQuantityDelta adds delta to a line, never going below 1. It reports
// whether the line exists.
func (c *Cart) UpdateQuantityDelta(id string, delta int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	q := c.items[i].Quantity + delta
	if q < 1 {
		q = 1
	}
	c.items[i].Quantity = q
	return true
}

// SetQuantity sets an absolute quantity. Zero is kept as is while the
// customer is editing; negative values become 1.
func (c *Cart) SetQuantity(id string, quantity int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if quantity < 0 {
		quantity = 1
	}
	c.items[i].Quantity = quantity
	return true
}

func (c *Cart) Remove(id string) {
	if i := c.index(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Get(id string) (Item, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return Item{}, false
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Validate is the checkout gate: the cart must be non-empty and every line
// must hold at least one unit.
func (c *Cart) Validate() error {
	if len(c.items) == 0 {
		return ErrEmpty
	}
	for _, it := range c.items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: %s", ErrInvalidQuantity, it.CartID)
		}
	}
	return nil
}
