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
	"fmt"
	"time"
)

// NopPersister discards snapshots. It is the default adapter so
// embedding this package costs nothing until a host opts into durable
// snapshots.
type NopPersister struct{}

func (NopPersister) PersistBatch(ctx context.Context, entries []Entry) error { return nil }

// Options configures BuildPersister's adapter selection.
type Options struct {
	RedisAddr      string        // non-empty selects a real go-redis client
	RedisMarkerTTL time.Duration // defaults to 24h
	KafkaTopic     string        // defaults to "uwheel-snapshots"
}

// BuildPersister constructs a Persister from a string selector:
//   - "", "nop": discards snapshots
//   - "redis": idempotent Redis adapter; real go-redis client if
//     opts.RedisAddr is set, otherwise a logging stand-in
//   - "kafka": idempotent Kafka adapter using a logging producer
//   - "postgres": not wired; returns an error to avoid hidden nil-DB use
func BuildPersister(adapter string, opts Options) (Persister, error) {
	switch adapter {
	case "", "nop":
		return NopPersister{}, nil
	case "redis":
		ttl := opts.RedisMarkerTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		var evaler RedisEvaler
		if opts.RedisAddr != "" {
			evaler = NewGoRedisEvaler(opts.RedisAddr)
		} else {
			evaler = LoggingRedisEvaler{}
		}
		return NewRedisPersister(evaler, ttl), nil
	case "kafka":
		topic := opts.KafkaTopic
		if topic == "" {
			topic = "uwheel-snapshots"
		}
		return NewKafkaPersister(LoggingKafkaProducer{}, topic), nil
	case "postgres":
		return nil, ErrPostgresNotWired
	default:
		return nil, fmt.Errorf("unknown snapshot adapter: %s", adapter)
	}
}
