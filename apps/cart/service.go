package cart

import (
	"context"
	"errors"
	"time"

	"bulut3d/apps/product"
	"bulut3d/apps/product/model"

	"github.com/redis/go-redis/v9"
)

var (
	ErrProductNotFound = errors.New("cart: product not found")
	ErrItemNotFound    = errors.New("cart: line not found")
)

// ProductSource is the part of the catalog the cart needs.
type ProductSource interface {
	GetMany(ctx context.Context, ids []uint) (map[uint]model.Product, error)
}

type Service struct {
	repo     *Repository
	products ProductSource
	rules    product.PriceRules
}

func NewService(rdb *redis.Client, ttl time.Duration, products ProductSource, rules product.PriceRules) *Service {
	return &Service{repo: NewRepository(rdb, ttl), products: products, rules: rules}
}

// Get loads the owner's cart against the live catalog. Lines whose product
// no longer exists are dropped.
func (s *Service) Get(ctx context.Context, owner string) (*Cart, error) {
	lines, err := s.repo.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, lines)
}

func (s *Service) hydrate(ctx context.Context, lines []Line) (*Cart, error) {
	if len(lines) == 0 {
		return &Cart{}, nil
	}
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		v := model.VariantConfig{
			Material:      l.Material,
			Size:          l.Size,
			Color:         l.Color,
			PriceModifier: s.rules.ModifierFor(l.Material),
			Stock:         p.Stock,
		}
		items = append(items, Item{CartID: ItemID(p.ID, v), Product: p, Variant: v, Quantity: l.Quantity})
	}
	return Restore(items), nil
}

func (s *Service) Add(ctx context.Context, owner string, productID uint, material, size, color string, quantity int) (*Cart, error) {
	products, err := s.products.GetMany(ctx, []uint{productID})
	if err != nil {
		return nil, err
	}
	p, ok := products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	v, err := s.rules.Variant(p, material, size, color)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, owner, func(c *Cart) bool {
		c.Add(p, v, quantity)
		return true
	})
}

func (s *Service) UpdateDelta(ctx context.Context, owner, itemID string, delta int) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) bool {
		return c.UpdateQuantityDelta(itemID, delta)
	})
}

func (s *Service) SetQuantity(ctx context.Context, owner, itemID string, quantity int) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) bool {
		return c.SetQuantity(itemID, quantity)
	})
}

func (s *Service) Remove(ctx context.Context, owner, itemID string) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) bool {
		c.Remove(itemID)
		return true
	})
}

func (s *Service) Clear(ctx context.Context, owner string) error {
	return s.repo.Delete(ctx, owner)
}

// RemovePlaced takes the lines of an order out of the owner's cart. Lines
// added after placed was read, or quantities raised since, stay behind.
func (s *Service) RemovePlaced(ctx context.Context, owner string, placed *Cart) error {
	_, err := s.mutate(ctx, owner, func(c *Cart) bool {
		for _, p := range placed.Items() {
			cur, ok := c.Get(p.CartID)
			if !ok {
				continue
			}
			if left := cur.Quantity - p.Quantity; left > 0 {
				c.SetQuantity(p.CartID, left)
			} else {
				c.Remove(p.CartID)
			}
		}
		return true
	})
	return err
}

// mutate applies fn to the owner's cart atomically; concurrent requests on
// the same cart are serialised by the repository's WATCH loop.
func (s *Service) mutate(ctx context.Context, owner string, fn func(*Cart) bool) (*Cart, error) {
	var out *Cart
	err := s.repo.Update(ctx, owner, func(lines []Line) (*Cart, error) {
		c, err := s.hydrate(ctx, lines)
		if err != nil {
			return nil, err
		}
		if !fn(c) {
			return nil, ErrItemNotFound
		}
		out = c
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
