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

// Package snapshot persists periodic durable copies of wheel state so a
// host can restore a shard's landmark after a restart instead of
// rebuilding it from raw events. It deliberately stays generic-free:
// callers marshal a Wheel's landmark Partial (or any other snapshot
// payload) to bytes before handing it to a Persister, so this package
// never needs to know Input/Mutable/Partial/Aggregate type parameters.
package snapshot

import "context"

// Entry is one shard's durable snapshot, keyed for idempotent replay.
// SnapshotID must be unique per (ShardKey, WatermarkMs) pair a caller
// intends to persist exactly once; retried PersistBatch calls with the
// same SnapshotID are no-ops against adapters that dedupe on it.
type Entry struct {
	ShardKey    string
	WatermarkMs int64
	SnapshotID  string
	Payload     []byte
}

// Persister durably stores a batch of shard snapshots, applying each
// at most once regardless of retry.
type Persister interface {
	PersistBatch(ctx context.Context, entries []Entry) error
}
