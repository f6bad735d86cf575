package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// Line is the persisted form of a cart line. Product data is not stored;
// it is reloaded from the catalog on read.
type Line struct {
	Seq       int    `json:"seq"`
	ProductID uint   `json:"productId"`
	Material  string `json:"material"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// Repository keeps one Redis hash per owner: cart:<owner>, field = line id.
type Repository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRepository(rdb *redis.Client, ttl time.Duration) *Repository {
	return &Repository{rdb: rdb, ttl: ttl}
}

func cartKey(owner string) string {
	return "cart:" + owner
}

// ErrContended is returned when a cart kept changing under every attempt of
// an update.
var ErrContended = errors.New("cart: too many concurrent updates")

// updateAttempts bounds the WATCH retries of one Update. Each losing attempt
// means another writer committed, so this only runs out under heavy load.
const updateAttempts = 64

// Load returns the owner's lines in insertion order.
func (r *Repository) Load(ctx context.Context, owner string) ([]Line, error) {
	return r.load(ctx, r.rdb, owner)
}

func (r *Repository) load(ctx context.Context, rdb redis.Cmdable, owner string) ([]Line, error) {
	val, err := rdb.HGetAll(ctx, cartKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	lines := make([]Line, 0, len(val))
	for field, raw := range val {
		var l Line
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			log.Printf("[cart] dropping unreadable line %s of %s: %v", field, owner, err)
			continue
		}
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Seq < lines[j].Seq })
	return lines, nil
}

// write queues the full replacement of the owner's hash and its TTL.
func (r *Repository) write(ctx context.Context, pipe redis.Pipeliner, owner string, c *Cart) error {
	key := cartKey(owner)
	pipe.Del(ctx, key)
	for i, it := range c.Items() {
		raw, err := json.Marshal(Line{
			Seq:       i,
			ProductID: it.Product.ID,
			Material:  it.Variant.Material,
			Size:      it.Variant.Size,
			Color:     it.Variant.Color,
			Quantity:  it.Quantity,
		})
		if err != nil {
			return err
		}
		pipe.HSet(ctx, key, it.CartID, raw)
	}
	if c.Len() > 0 && r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	return nil
}

// Update reads the owner's lines, lets fn build the new cart and writes it
// back, all under WATCH on the cart key. When another writer commits in
// between, the whole read-modify-write runs again with fresh lines, so fn
// may be called more than once.
func (r *Repository) Update(ctx context.Context, owner string, fn func([]Line) (*Cart, error)) error {
	key := cartKey(owner)
	for attempt := 0; attempt < updateAttempts; attempt++ {
		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			lines, err := r.load(ctx, tx, owner)
			if err != nil {
				return err
			}
			c, err := fn(lines)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return r.write(ctx, pipe, owner, c)
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		return err
	}
	log.Printf("[cart] %s still contended after %d attempts", owner, updateAttempts)
	return ErrContended
}

func (r *Repository) Delete(ctx context.Context, owner string) error {
	if err := r.rdb.Del(ctx, cartKey(owner)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
