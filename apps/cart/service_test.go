package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"bulut3d/apps/product"
	"bulut3d/apps/product/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog map[uint]model.Product

func (c catalog) GetMany(_ context.Context, ids []uint) (map[uint]model.Product, error) {
	out := make(map[uint]model.Product)
	for _, id := range ids {
		if p, ok := c[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, catalog, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	products := catalog{1: productA(), 2: productB()}
	return NewService(rdb, time.Hour, products, product.DefaultPriceRules()), products, mr, rdb
}

func TestServicePersistsCart(t *testing.T) {
	s, _, mr, _ := newTestService(t)
	ctx := context.Background()
	owner := "user:7"

	_, err := s.Add(ctx, owner, 1, model.MaterialPLA, model.SizeMedium, "#ef4444", 2)
	require.NoError(t, err)
	_, err = s.Add(ctx, owner, 2, model.MaterialABS, model.SizeSmall, "#ffffff", 1)
	require.NoError(t, err)
	_, err = s.Add(ctx, owner, 1, model.MaterialPLA, model.SizeMedium, "#ef4444", 1)
	require.NoError(t, err)

	c, err := s.Get(ctx, owner)
	require.NoError(t, err)
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint(1), items[0].Product.ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "50", items[1].Variant.PriceModifier.String())
	assert.Equal(t, "1580", c.Total().String())

	assert.True(t, mr.Exists("cart:user:7"))
	assert.Greater(t, mr.TTL("cart:user:7"), time.Duration(0))
}

func TestServiceRejectsUnknownProductAndVariant(t *testing.T) {
	s, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "guest:x", 99, model.MaterialPLA, model.SizeMedium, "#ef4444", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = s.Add(ctx, "guest:x", 1, model.MaterialTPU, model.SizeMedium, "#ef4444", 1)
	assert.ErrorIs(t, err, product.ErrInvalidVariant)
}

func TestServiceQuantityOperations(t *testing.T) {
	s, _, _, _ := newTestService(t)
	ctx := context.Background()
	owner := "guest:abc"

	c, err := s.Add(ctx, owner, 1, model.MaterialPLA, model.SizeMedium, "#ef4444", 2)
	require.NoError(t, err)
	id := c.Items()[0].CartID

	c, err = s.UpdateDelta(ctx, owner, id, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Items()[0].Quantity)

	c, err = s.SetQuantity(ctx, owner, id, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items()[0].Quantity)

	_, err = s.SetQuantity(ctx, owner, "nope", 4)
	assert.ErrorIs(t, err, ErrItemNotFound)

	c, err = s.Remove(ctx, owner, id)
	require.NoError(t, err)
	assert.Zero(t, c.Len())
	_, err = s.Remove(ctx, owner, id)
	assert.NoError(t, err)
}

func TestServiceDropsDeletedProducts(t *testing.T) {
	s, products, _, _ := newTestService(t)
	ctx := context.Background()
	owner := "user:1"

	_, err := s.Add(ctx, owner, 1, model.MaterialPLA, model.SizeMedium, "#ef4444", 1)
	require.NoError(t, err)
	_, err = s.Add(ctx, owner, 2, model.MaterialPLA, model.SizeSmall, "#ffffff", 1)
	require.NoError(t, err)

	delete(products, 2)
	c, err := s.Get(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, uint(1), c.Items()[0].Product.ID)

	require.NoError(t, s.Clear(ctx, owner))
	c, err = s.Get(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestWishlistToggle(t *testing.T) {
	_, _, _, rdb := newTestService(t)
	w := NewWishlist(rdb)
	ctx := context.Background()

	on, err := w.Toggle(ctx, "user:1", 5)
	require.NoError(t, err)
	assert.True(t, on)
	_, err = w.Toggle(ctx, "user:1", 2)
	require.NoError(t, err)

	ids, err := w.List(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 5}, ids)

	on, err = w.Toggle(ctx, "user:1", 5)
	require.NoError(t, err)
	assert.False(t, on)
	ids, err = w.List(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ids)
}

func TestServiceConcurrentAddsAllLand(t *testing.T) {
	s, _, _, _ := newTestService(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(ctx, "user:1", 1, model.MaterialPLA, model.SizeMedium, "#ef4444", 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	c, err := s.Get(ctx, "user:1")
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, writers, c.ItemCount())
}

func TestServiceRemovePlacedKeepsLaterAdds(t *testing.T) {
	s, _, _, _ := newTestService(t)
	ctx := context.Background()
	owner := "guest:late"

	_, err := s.Add(ctx, owner, 1, model.MaterialPLA, model.SizeMedium, "#ef4444", 2)
	require.NoError(t, err)
	placed, err := s.Get(ctx, owner)
	require.NoError(t, err)

	// arrives while the order is being written
	_, err = s.Add(ctx, owner, 1, model.MaterialPLA, model.SizeMedium, "#ef4444", 1)
	require.NoError(t, err)
	_, err = s.Add(ctx, owner, 2, model.MaterialABS, model.SizeSmall, "#ffffff", 1)
	require.NoError(t, err)

	require.NoError(t, s.RemovePlaced(ctx, owner, placed))

	c, err := s.Get(ctx, owner)
	require.NoError(t, err)
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint(1), items[0].Product.ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, uint(2), items[1].Product.ID)

	require.NoError(t, s.RemovePlaced(ctx, owner, c))
	c, err = s.Get(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}
