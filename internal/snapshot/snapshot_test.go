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
	"reflect"
	"testing"
	"time"
)

type fakeRedisEvaler struct {
	calls []struct {
		script string
		keys   []string
		args   []interface{}
	}
	returnErr error
}

func (f *fakeRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f.calls = append(f.calls, struct {
		script string
		keys   []string
		args   []interface{}
	}{script: script, keys: append([]string{}, keys...), args: append([]interface{}{}, args...)})
	return int64(1), nil
}

func TestSnapshotKeyHelpers(t *testing.T) {
	if got, want := SnapshotKey("shard-a"), "uwheel:snapshot:shard-a"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got, want := SnapshotMarkerKey("shard-a", "snap-1"), "uwheel:snapshot-marker:shard-a:snap-1"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestNewRedisPersisterDefaultTTL(t *testing.T) {
	r := NewRedisPersister(&fakeRedisEvaler{}, 0)
	if r.markerTTL != 24*time.Hour {
		t.Fatalf("expected default TTL 24h, got %v", r.markerTTL)
	}
}

func TestRedisPersisterPersistBatchEmpty(t *testing.T) {
	r := NewRedisPersister(&fakeRedisEvaler{}, time.Hour)
	if err := r.PersistBatch(context.Background(), nil); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestRedisPersisterPersistBatchSuccess(t *testing.T) {
	fake := &fakeRedisEvaler{}
	r := NewRedisPersister(fake, 0)
	entries := []Entry{{ShardKey: "shard-a", WatermarkMs: 1000, SnapshotID: "snap-1", Payload: []byte("data")}}
	if err := r.PersistBatch(context.Background(), entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.calls))
	}
	c := fake.calls[0]
	wantKeys := []string{SnapshotKey("shard-a"), SnapshotMarkerKey("shard-a", "snap-1")}
	if !reflect.DeepEqual(c.keys, wantKeys) {
		t.Fatalf("keys mismatch: got %v want %v", c.keys, wantKeys)
	}
	if len(c.args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(c.args))
	}
}

func TestRedisPersisterPersistBatchSnapshotIDRequired(t *testing.T) {
	r := NewRedisPersister(&fakeRedisEvaler{}, time.Second)
	err := r.PersistBatch(context.Background(), []Entry{{ShardKey: "shard-a"}})
	if err == nil || err.Error() != "snapshot.Entry.SnapshotID must be set" {
		t.Fatalf("expected snapshot id error, got: %v", err)
	}
}

func TestRedisPersisterPersistBatchContextCanceled(t *testing.T) {
	fake := &fakeRedisEvaler{}
	r := NewRedisPersister(fake, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.PersistBatch(ctx, []Entry{{ShardKey: "shard-a", SnapshotID: "snap-1"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRedisPersisterPersistBatchClientErrorPropagates(t *testing.T) {
	fake := &fakeRedisEvaler{returnErr: errors.New("boom")}
	r := NewRedisPersister(fake, time.Second)
	err := r.PersistBatch(context.Background(), []Entry{{ShardKey: "shard-a", SnapshotID: "snap-1"}})
	if err == nil {
		t.Fatalf("expected error")
	}
}

type fakeKafkaProducer struct {
	produced int
	lastKey  string
	returnErr error
}

func (f *fakeKafkaProducer) Produce(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error {
	if f.returnErr != nil {
		return f.returnErr
	}
	f.produced++
	f.lastKey = string(key)
	return nil
}

func TestKafkaPersisterPersistBatch(t *testing.T) {
	fake := &fakeKafkaProducer{}
	k := NewKafkaPersister(fake, "uwheel-snapshots")
	err := k.PersistBatch(context.Background(), []Entry{{ShardKey: "shard-a", SnapshotID: "snap-1", Payload: []byte("x")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.produced != 1 || fake.lastKey != "snap-1" {
		t.Fatalf("produced=%d lastKey=%q, want 1/snap-1", fake.produced, fake.lastKey)
	}
}

func TestKafkaPersisterSnapshotIDRequired(t *testing.T) {
	k := NewKafkaPersister(&fakeKafkaProducer{}, "t")
	err := k.PersistBatch(context.Background(), []Entry{{ShardKey: "shard-a"}})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildPersisterNop(t *testing.T) {
	p, err := BuildPersister("", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PersistBatch(context.Background(), []Entry{{ShardKey: "s", SnapshotID: "id"}}); err != nil {
		t.Fatalf("nop persister should not error: %v", err)
	}
}

func TestBuildPersisterRedisWithoutAddrUsesLoggingClient(t *testing.T) {
	p, err := BuildPersister("redis", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rp, ok := p.(*RedisPersister)
	if !ok {
		t.Fatalf("expected *RedisPersister, got %T", p)
	}
	if _, ok := rp.client.(LoggingRedisEvaler); !ok {
		t.Fatalf("expected LoggingRedisEvaler client, got %T", rp.client)
	}
}

func TestBuildPersisterRedisWithAddrUsesGoRedisClient(t *testing.T) {
	p, err := BuildPersister("redis", Options{RedisAddr: "127.0.0.1:6379"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rp, ok := p.(*RedisPersister)
	if !ok {
		t.Fatalf("expected *RedisPersister, got %T", p)
	}
	if _, ok := rp.client.(*GoRedisEvaler); !ok {
		t.Fatalf("expected *GoRedisEvaler client, got %T", rp.client)
	}
}

func TestBuildPersisterKafka(t *testing.T) {
	p, err := BuildPersister("kafka", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*KafkaPersister); !ok {
		t.Fatalf("expected *KafkaPersister, got %T", p)
	}
}

func TestBuildPersisterPostgresNotWired(t *testing.T) {
	_, err := BuildPersister("postgres", Options{})
	if !errors.Is(err, ErrPostgresNotWired) {
		t.Fatalf("expected ErrPostgresNotWired, got %v", err)
	}
}

func TestBuildPersisterUnknownAdapter(t *testing.T) {
	_, err := BuildPersister("carrier-pigeon", Options{})
	if err == nil {
		t.Fatalf("expected error for unknown adapter")
	}
}
