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
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// KafkaProducer is a minimal abstraction over a Kafka client. Real
// implementations should enable an idempotent producer
// (enable.idempotence=true) and use SnapshotID as the message key so
// broker-side dedup preserves per-shard ordering.
type KafkaProducer interface {
	Produce(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error
}

// KafkaPersister publishes shard snapshots as Kafka messages rather
// than applying them locally; materialization is left to downstream
// consumers tracking the last-applied SnapshotID per shard.
type KafkaPersister struct {
	producer       KafkaProducer
	topic          string
	defaultTimeout time.Duration
}

func NewKafkaPersister(p KafkaProducer, topic string) *KafkaPersister {
	return &KafkaPersister{producer: p, topic: topic, defaultTimeout: 10 * time.Second}
}

// snapshotMessage is the serialized payload sent to Kafka.
type snapshotMessage struct {
	ShardKey    string `json:"shard_key"`
	WatermarkMs int64  `json:"watermark_ms"`
	SnapshotID  string `json:"snapshot_id"`
	Payload     []byte `json:"payload"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}

func (k *KafkaPersister) PersistBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && k.defaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.defaultTimeout)
		defer cancel()
	}
	nowMs := time.Now().UnixMilli()
	for _, e := range entries {
		if e.SnapshotID == "" {
			return errors.New("snapshot.Entry.SnapshotID must be set")
		}
		msg := snapshotMessage{
			ShardKey:    e.ShardKey,
			WatermarkMs: e.WatermarkMs,
			SnapshotID:  e.SnapshotID,
			Payload:     e.Payload,
			TsUnixMs:    nowMs,
		}
		b, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal kafka message: %w", err)
		}
		headers := map[string]string{"content-type": "application/json"}
		if err := k.producer.Produce(ctx, k.topic, []byte(e.SnapshotID), b, headers); err != nil {
			return fmt.Errorf("kafka produce shard=%s snapshot=%s: %w", e.ShardKey, e.SnapshotID, err)
		}
	}
	return nil
}

// LoggingKafkaProducer logs the produced message instead of talking to
// a real broker. Not for production use.
type LoggingKafkaProducer struct{}

func (LoggingKafkaProducer) Produce(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if headers == nil {
		headers = map[string]string{}
	}
	fmt.Printf("[snapshot kafka-demo] TOPIC=%s KEY=%s VALUE=%s HEADERS=%v\n", topic, string(key), truncate(string(value), 256), headers)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ErrPostgresNotWired is what BuildPersister returns for the "postgres"
// adapter: no Postgres persister is implemented, so the factory returns
// an error rather than silently dropping snapshots into a nil store.
var ErrPostgresNotWired = errors.New("snapshot: postgres adapter requires a real *sql.DB; not wired in this build")
