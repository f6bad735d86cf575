package cart

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Wishlist is a Redis set of product ids per owner.
type Wishlist struct {
	rdb *redis.Client
}

func NewWishlist(rdb *redis.Client) *Wishlist {
	return &Wishlist{rdb: rdb}
}

func wishlistKey(owner string) string {
	return "wishlist:" + owner
}

// Toggle adds the product when absent and removes it otherwise. It returns
// whether the product is on the list afterwards.
func (w *Wishlist) Toggle(ctx context.Context, owner string, productID uint) (bool, error) {
	key := wishlistKey(owner)
	member := strconv.FormatUint(uint64(productID), 10)
	removed, err := w.rdb.SRem(ctx, key, member).Result()
	if err != nil {
		return false, fmt.Errorf("toggle wishlist: %w", err)
	}
	if removed > 0 {
		return false, nil
	}
	if err := w.rdb.SAdd(ctx, key, member).Err(); err != nil {
		return false, fmt.Errorf("toggle wishlist: %w", err)
	}
	return true, nil
}

func (w *Wishlist) List(ctx context.Context, owner string) ([]uint, error) {
	members, err := w.rdb.SMembers(ctx, wishlistKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
