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

// Package main measures Insert/AdvanceTo throughput and latency for a
// sharded group of wheels under concurrent load, reporting insert
// latency percentiles, throughput and memory statistics.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"uwheel/internal/shard"
	"uwheel/pkg/aggregator"
	"uwheel/pkg/uwheel"
)

func main() {
	var (
		opCount   = flag.Int("ops", 500_000, "total inserts across all goroutines")
		workers   = flag.Int("goroutines", 32, "concurrent workers")
		keysN     = flag.Int("keys", 64, "number of distinct keys")
		shardsN   = flag.Int("shards", 8, "number of wheel shards")
		seed      = flag.Int64("seed", 1, "PRNG seed")
		advEveryN = flag.Int("advance_every", 1000, "advance the group's watermark every N inserts per worker")
		advStepMs = flag.Int64("advance_step_ms", 1000, "watermark advance step, in milliseconds")
	)
	flag.Parse()

	shardNames := make([]string, *shardsN)
	for i := range shardNames {
		shardNames[i] = fmt.Sprintf("shard-%d", i)
	}
	keys := make([]string, *keysN)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	group := shard.NewWheelGroup[uint32, uint32, uint32, uint32](
		aggregator.Sum[uint32]{}, shardNames, 0, uwheel.DefaultOptions())

	opsPerWorker := *opCount / *workers
	latencies := make([][]time.Duration, *workers)

	var wg sync.WaitGroup
	var watermark atomic.Int64
	wg.Add(*workers)
	start := time.Now()
	for g := 0; g < *workers; g++ {
		go func(id int) {
			defer wg.Done()
			rnd := rand.New(rand.NewPCG(uint64(*seed), uint64(id)+1))
			loc := make([]time.Duration, 0, opsPerWorker)
			for i := 0; i < opsPerWorker; i++ {
				key := keys[rnd.IntN(len(keys))]
				ts := watermark.Load()
				t0 := time.Now()
				_ = group.Insert(key, uwheel.Entry[uint32]{Data: 1, TimestampMs: ts})
				loc = append(loc, time.Since(t0))
				if *advEveryN > 0 && (i+1)%*advEveryN == 0 {
					next := watermark.Add(*advStepMs)
					group.AdvanceAll(next)
				}
			}
			latencies[id] = loc
		}(g)
	}
	wg.Wait()
	group.AdvanceAll(watermark.Load() + *advStepMs)
	runDur := time.Since(start)

	var all []time.Duration
	for _, ls := range latencies {
		all = append(all, ls...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	p50 := percentile(all, 50)
	p95 := percentile(all, 95)
	p99 := percentile(all, 99)

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	n := 0
	group.ForEach(func(string, *uwheel.Wheel[uint32, uint32, uint32, uint32]) { n++ })

	fmt.Printf("Ops: %d  Goroutines: %d  Keys: %d  Shards constructed: %d/%d\n",
		*opCount, *workers, *keysN, n, *shardsN)
	fmt.Printf("Duration: %s  Ops/sec: %s\n", runDur.Round(time.Millisecond), humanRate(float64(*opCount)/runDur.Seconds()))
	fmt.Printf("Insert latency p50: %s  p95: %s  p99: %s\n", p50, p95, p99)
	fmt.Printf("Memory: Alloc=%s  TotalAlloc=%s  Sys=%s  NumGC=%d\n",
		humanBytes(ms.Alloc), humanBytes(ms.TotalAlloc), humanBytes(ms.Sys), ms.NumGC)

	if landmark, ok := group.GroupLandmark(); ok {
		fmt.Printf("Final group landmark (sum across constructed shards): %d\n", landmark)
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}

func humanRate(x float64) string {
	if x >= 1_000_000 {
		return fmt.Sprintf("%.1fM", x/1_000_000)
	}
	if x >= 1_000 {
		return fmt.Sprintf("%.1fk", x/1_000)
	}
	return fmt.Sprintf("%.0f", x)
}

func humanBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	d := float64(b)
	units := []string{"KiB", "MiB", "GiB", "TiB"}
	i := 0
	for d >= unit && i < len(units)-1 {
		d /= unit
		i++
	}
	return fmt.Sprintf("%.1f %s", d, units[i])
}
