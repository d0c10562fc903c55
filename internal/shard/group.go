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

// Package shard fans a keyspace out across many independent uwheel
// wheels, so a host embedding one engine per logical key (per device,
// per tenant, per sensor) doesn't serialize every insert through a
// single wheel's single-writer contract.
package shard

import (
	"hash/fnv"
	"sync"
	"time"

	rendezvous "github.com/dgryski/go-rendezvous"

	"uwheel/pkg/aggregator"
	"uwheel/pkg/uwheel"
)

// WheelGroup routes keys to one of a fixed set of named shards via
// rendezvous (highest random weight) hashing, lazily constructing a
// Wheel per shard on first use. Rendezvous hashing keeps key→shard
// affinity stable as shards are added or removed, unlike plain modulo
// hashing.
type WheelGroup[Input, Mutable, Partial, Aggregate any] struct {
	agg  aggregator.Aggregator[Input, Mutable, Partial, Aggregate]
	opts uwheel.Options

	rdv *rendezvous.Rendezvous

	mu               sync.RWMutex
	wheels           map[string]*uwheel.Wheel[Input, Mutable, Partial, Aggregate]
	currentWatermark int64 // new shards are constructed caught up to this
}

// NewWheelGroup constructs a group over the given fixed shard names,
// each wheel starting at watermarkMs with the given options.
func NewWheelGroup[Input, Mutable, Partial, Aggregate any](
	agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate],
	shardNames []string,
	watermarkMs int64,
	opts uwheel.Options,
) *WheelGroup[Input, Mutable, Partial, Aggregate] {
	return &WheelGroup[Input, Mutable, Partial, Aggregate]{
		agg:              agg,
		opts:             opts,
		rdv:              rendezvous.New(shardNames, hashKey),
		wheels:           make(map[string]*uwheel.Wheel[Input, Mutable, Partial, Aggregate]),
		currentWatermark: watermarkMs,
	}
}

func hashKey(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// ShardFor returns the shard name that key routes to.
func (g *WheelGroup[Input, Mutable, Partial, Aggregate]) ShardFor(key string) string {
	return g.rdv.Lookup(key)
}

// WheelFor returns the shard's Wheel for key, lazily constructing it
// the first time that shard is touched.
func (g *WheelGroup[Input, Mutable, Partial, Aggregate]) WheelFor(key string) *uwheel.Wheel[Input, Mutable, Partial, Aggregate] {
	shard := g.rdv.Lookup(key)

	g.mu.RLock()
	w, ok := g.wheels[shard]
	g.mu.RUnlock()
	if ok {
		return w
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if w, ok = g.wheels[shard]; ok {
		return w
	}
	w = uwheel.WithOptions(g.agg, g.currentWatermark, g.opts)
	g.wheels[shard] = w
	return w
}

// Insert routes e to the shard owning key.
func (g *WheelGroup[Input, Mutable, Partial, Aggregate]) Insert(key string, e uwheel.Entry[Input]) error {
	return g.WheelFor(key).Insert(e)
}

// AdvanceAll advances every constructed shard's wheel to watermarkMs.
// Shards never touched by Insert have no wheel yet and are skipped —
// they will start fresh at watermarkMs on first use.
func (g *WheelGroup[Input, Mutable, Partial, Aggregate]) AdvanceAll(watermarkMs int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.wheels {
		w.AdvanceTo(watermarkMs)
	}
	if watermarkMs > g.currentWatermark {
		g.currentWatermark = watermarkMs
	}
}

// Interval returns the lowered aggregate over the trailing d for the
// shard owning key, lazily constructing that shard's wheel if key has
// never been touched.
func (g *WheelGroup[Input, Mutable, Partial, Aggregate]) Interval(key string, d time.Duration) (Aggregate, bool) {
	return g.WheelFor(key).IntervalAndLower(d)
}

// Landmark returns the lowered landmark aggregate for the single shard
// owning key, lazily constructing that shard's wheel if key has never
// been touched. For the combined landmark across every constructed
// shard, see GroupLandmark.
func (g *WheelGroup[Input, Mutable, Partial, Aggregate]) Landmark(key string) (Aggregate, bool) {
	return g.WheelFor(key).LandmarkAndLower()
}

// ForEach iterates every shard that has been constructed so far.
func (g *WheelGroup[Input, Mutable, Partial, Aggregate]) ForEach(f func(shard string, w *uwheel.Wheel[Input, Mutable, Partial, Aggregate])) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for shard, w := range g.wheels {
		f(shard, w)
	}
}

// GroupLandmark combines the landmark of every constructed shard into
// one group-wide Partial, for callers that want a single cross-shard
// total rather than one shard's answer.
func (g *WheelGroup[Input, Mutable, Partial, Aggregate]) GroupLandmark() (Partial, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var acc Partial
	var ok bool
	for _, w := range g.wheels {
		p, pok := w.Landmark()
		if !pok {
			continue
		}
		if ok {
			acc = g.agg.Combine(acc, p)
		} else {
			acc = p
			ok = true
		}
	}
	return acc, ok
}
