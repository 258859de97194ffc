package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

// Keys share the {cart} hash tag so every script touches a single slot.
const (
	cartItemKeyPrefix = "{cart}:item:"
	cartIDsKey        = "{cart}:ids"
)

var createCartItemScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end

redis.call('HSET', KEYS[1], 'content', ARGV[2], 'amount', ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[1])
return 1
`)

var updateCartAmountScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end

redis.call('HSET', KEYS[1], 'amount', ARGV[1])
return 1
`)

var deleteCartItemScript = redis.NewScript(`
if redis.call('DEL', KEYS[1]) == 0 then
	return 0
end

redis.call('ZREM', KEYS[2], ARGV[1])
return 1
`)

// RedisAdapter stores cart records as hashes indexed by a sorted set of ids.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func cartItemKey(id int) string {
	return cartItemKeyPrefix + strconv.Itoa(id)
}

func (r *RedisAdapter) ListCart(ctx context.Context) ([]domain.CartItem, error) {
	ids, err := r.client.ZRange(ctx, cartIDsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list cart ids: %w", err)
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, cartItemKeyPrefix+id)
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("read cart items: %w", err)
		}
	}

	items := make([]domain.CartItem, 0, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue
		}
		item, err := parseCartItem(id, fields)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *RedisAdapter) GetCartItem(ctx context.Context, id int) (*domain.CartItem, error) {
	fields, err := r.client.HGetAll(ctx, cartItemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("read cart item: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	item, err := parseCartItem(strconv.Itoa(id), fields)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *RedisAdapter) CreateCartItem(ctx context.Context, item domain.CartItem) (bool, error) {
	keys := []string{cartItemKey(item.ID), cartIDsKey}
	result, err := createCartItemScript.Run(ctx, r.client, keys, item.ID, item.Content, item.Amount).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func (r *RedisAdapter) UpdateCartAmount(ctx context.Context, id int, amount int) (bool, error) {
	result, err := updateCartAmountScript.Run(ctx, r.client, []string{cartItemKey(id)}, amount).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func (r *RedisAdapter) DeleteCartItem(ctx context.Context, id int) (bool, error) {
	keys := []string{cartItemKey(id), cartIDsKey}
	result, err := deleteCartItemScript.Run(ctx, r.client, keys, id).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func parseCartItem(id string, fields map[string]string) (domain.CartItem, error) {
	itemID, err := strconv.Atoi(id)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("parse cart id %q: %w", id, err)
	}
	amount, err := strconv.Atoi(fields["amount"])
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("parse amount of cart item %d: %w", itemID, err)
	}
	return domain.CartItem{ID: itemID, Content: fields["content"], Amount: amount}, nil
}
