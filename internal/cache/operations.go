// Package cache keeps a short-lived snapshot of the full operation journal in
// redis so that balance computations do not hit the record store on every
// request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fuelcards/internal/ledger"
)

const operationsKey = "operations:snapshot"

// ErrMiss means the snapshot is absent or expired.
var ErrMiss = errors.New("cache miss")

type Operations struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOperations(rdb *redis.Client, ttl time.Duration) *Operations {
	return &Operations{rdb: rdb, ttl: ttl}
}

func (c *Operations) Get(ctx context.Context) ([]ledger.Operation, error) {
	data, err := c.rdb.Get(ctx, operationsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var ops []ledger.Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		// Сломанный снимок равносилен его отсутствию.
		return nil, ErrMiss
	}
	return ops, nil
}

func (c *Operations) Set(ctx context.Context, ops []ledger.Operation) error {
	data, err := json.Marshal(ops)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, operationsKey, data, c.ttl).Err()
}

// Invalidate drops the snapshot. Called after every write that changes the
// journal so the next read refetches from the record store.
func (c *Operations) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, operationsKey).Err()
}
