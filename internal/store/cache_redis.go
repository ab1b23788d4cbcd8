package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"run-planner/internal/planner/address"
	"run-planner/internal/planner/model"
)

// CachedBook is a read-through Redis cache in front of an address book.
// Cache failures are logged and fall back to the source.
type CachedBook struct {
	next address.AddressBook
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

func NewCachedBook(next address.AddressBook, rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedBook {
	return &CachedBook{next: next, rdb: rdb, ttl: ttl, log: logger}
}

func bookKey(customerID string) string { return "addressbook:" + customerID }

func (c *CachedBook) ListCustomerAddresses(ctx context.Context, customerID string) ([]model.CustomerAddress, error) {
	key := bookKey(customerID)
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []model.CustomerAddress
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
		c.log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("address book cache read failed")
	}

	out, err := c.next.ListCustomerAddresses(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("address book cache write failed")
		}
	}
	return out, nil
}

// Invalidate drops the cached book of one customer.
func (c *CachedBook) Invalidate(ctx context.Context, customerID string) error {
	return c.rdb.Del(ctx, bookKey(customerID)).Err()
}
