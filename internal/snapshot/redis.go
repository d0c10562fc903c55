// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisEvaler abstracts the minimal surface needed from a Redis client.
type RedisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// RedisPersister writes shard snapshots idempotently using a Lua script:
//  1. SETNX marker:<shard>:<snapshot_id> 1
//  2. If set -> SET snapshot:<shard> <payload>
//  3. EXPIRE the marker for leak protection
//
// A retried PersistBatch call with a SnapshotID already applied is a
// no-op: the marker blocks the SET from re-firing.
type RedisPersister struct {
	client    RedisEvaler
	markerTTL time.Duration
}

// NewRedisPersister returns a persister with the given client and marker TTL.
func NewRedisPersister(client RedisEvaler, markerTTL time.Duration) *RedisPersister {
	if markerTTL <= 0 {
		markerTTL = 24 * time.Hour
	}
	return &RedisPersister{client: client, markerTTL: markerTTL}
}

const redisSnapshotScript = `
local snapshotKey = KEYS[1]
local markerKey = KEYS[2]
local watermark = ARGV[1]
local payload = ARGV[2]
local ttlSeconds = tonumber(ARGV[3])
local set = redis.call('SETNX', markerKey, 1)
if set == 1 then
  redis.call('SET', snapshotKey, payload)
  redis.call('HSET', snapshotKey .. ':meta', 'watermark_ms', watermark)
  if ttlSeconds and ttlSeconds > 0 then
    redis.call('EXPIRE', markerKey, ttlSeconds)
  end
  return 1
else
  return 0
end
`

// SnapshotKey and SnapshotMarkerKey are public so other components can
// locate a persisted snapshot without importing the Lua script itself.
func SnapshotKey(shard string) string { return fmt.Sprintf("uwheel:snapshot:%s", shard) }
func SnapshotMarkerKey(shard, snapshotID string) string {
	return fmt.Sprintf("uwheel:snapshot-marker:%s:%s", shard, snapshotID)
}

func (r *RedisPersister) PersistBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if e.SnapshotID == "" {
			return errors.New("snapshot.Entry.SnapshotID must be set")
		}
		keys := []string{SnapshotKey(e.ShardKey), SnapshotMarkerKey(e.ShardKey, e.SnapshotID)}
		args := []interface{}{e.WatermarkMs, e.Payload, int(r.markerTTL.Seconds())}
		if _, err := r.client.Eval(ctx, redisSnapshotScript, keys, args...); err != nil {
			return fmt.Errorf("redis eval shard=%s snapshot=%s: %w", e.ShardKey, e.SnapshotID, err)
		}
	}
	return nil
}

// LoggingRedisEvaler logs the Lua evaluation instead of talking to a
// real Redis server. Useful for running the demo without infrastructure.
// Not for production use.
type LoggingRedisEvaler struct{}

func (LoggingRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	fmt.Printf("[snapshot redis-demo] EVAL script(len=%d) KEYS=%v ARGS=%v\n", len(script), keys, args)
	return int64(1), nil
}

// GoRedisEvaler wraps a real github.com/redis/go-redis/v9 client.
type GoRedisEvaler struct{ c *redis.Client }

// NewGoRedisEvaler connects to addr (e.g. "127.0.0.1:6379").
func NewGoRedisEvaler(addr string) *GoRedisEvaler {
	return &GoRedisEvaler{c: redis.NewClient(&redis.Options{Addr: addr})}
}

func (g *GoRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return g.c.Eval(ctx, script, keys, args...).Result()
}
