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

package window

import (
	"testing"
	"time"

	"uwheel/pkg/aggregator"
	"uwheel/pkg/uwheel"
)

// S5: R=30s, S=10s, insert 1/sec for 100s with advance_to each second.
// First emitted window = 30, steady state = 30, 8 windows total.
func TestS5LazyEvenPairs(t *testing.T) {
	l := NewLazy[uint32, uint32, uint32, uint32](
		aggregator.Sum[uint32]{}, 0, 30_000, 10_000, uwheel.DefaultOptions())

	for i := 0; i < 100; i++ {
		if err := l.Insert(uwheel.Entry[uint32]{Data: 1, TimestampMs: int64(i) * 1000}); err != nil {
			t.Fatalf("Insert at %d: %v", i, err)
		}
		l.AdvanceTo(int64(i+1) * 1000)
	}

	results := l.Results()
	if len(results) != 8 {
		t.Fatalf("len(Results()) = %d, want 8", len(results))
	}
	for i, r := range results {
		if r != 30 {
			t.Fatalf("Results()[%d] = %d, want 30", i, r)
		}
	}
}

// Invariant 7: Lazy and Eager produce identical window sequences for
// an invertible aggregator on the same input.
func TestInvariant7LazyEagerAgree(t *testing.T) {
	const rangeMs, slideMs = 30_000, 10_000
	l := NewLazy[uint32, uint32, uint32, uint32](
		aggregator.Sum[uint32]{}, 0, rangeMs, slideMs, uwheel.DefaultOptions())
	sumAgg := aggregator.Sum[uint32]{}
	e := NewEager[uint32, uint32, uint32, uint32](
		sumAgg, sumAgg, 0, rangeMs, slideMs, uwheel.DefaultOptions())

	for i := 0; i < 100; i++ {
		v := uint32(i % 5)
		ts := int64(i) * 1000
		if err := l.Insert(uwheel.Entry[uint32]{Data: v, TimestampMs: ts}); err != nil {
			t.Fatalf("lazy Insert at %d: %v", i, err)
		}
		if err := e.Insert(uwheel.Entry[uint32]{Data: v, TimestampMs: ts}); err != nil {
			t.Fatalf("eager Insert at %d: %v", i, err)
		}
		l.AdvanceTo(int64(i+1) * 1000)
		e.AdvanceTo(int64(i+1) * 1000)
	}

	lr, er := l.Results(), e.Results()
	if len(lr) != len(er) {
		t.Fatalf("result count differs: lazy=%d eager=%d", len(lr), len(er))
	}
	for i := range lr {
		if lr[i] != er[i] {
			t.Fatalf("Results()[%d]: lazy=%d eager=%d, want equal", i, lr[i], er[i])
		}
	}
}

func TestUnevenPairGeometry(t *testing.T) {
	pr := newPairing(25_000, 10_000) // R mod S != 0
	if pr.typ != PairUneven {
		t.Fatalf("typ = %v, want Uneven", pr.typ)
	}
	if pr.p1 != 5_000 || pr.p2 != 5_000 {
		t.Fatalf("p1=%d p2=%d, want 5000/5000", pr.p1, pr.p2)
	}
	if pr.pairsPerWindow != 5 {
		t.Fatalf("pairsPerWindow = %d, want 5", pr.pairsPerWindow)
	}
}

func TestBuilderSelectsEagerForInvertibleAggregator(t *testing.T) {
	b := NewBuilder[uint32, uint32, uint32, uint32](aggregator.Sum[uint32]{}).
		WithRange(30 * time.Second).
		WithSlide(10 * time.Second).
		WithWatermark(0)
	eng := b.Build()
	if _, ok := eng.(*Eager[uint32, uint32, uint32, uint32]); !ok {
		t.Fatalf("Build() with Sum (invertible) should select Eager, got %T", eng)
	}
}

func TestBuilderFallsBackToLazyForNonInvertibleAggregator(t *testing.T) {
	b := NewBuilder[uint32, uint32, aggregator.AvgPartial, float64](nonInvertibleAvg{}).
		WithRange(30 * time.Second).
		WithSlide(10 * time.Second).
		WithWatermark(0)
	eng := b.Build()
	if _, ok := eng.(*Lazy[uint32, uint32, aggregator.AvgPartial, float64]); !ok {
		t.Fatalf("Build() with a non-invertible aggregator should select Lazy, got %T", eng)
	}
}

// nonInvertibleAvg averages the per-slot maxima and does not implement
// aggregator.Inverse; it is used only to verify the Builder's fallback path.
type nonInvertibleAvg struct{}

var _ aggregator.Aggregator[uint32, uint32, aggregator.AvgPartial, float64] = nonInvertibleAvg{}

func (nonInvertibleAvg) Lift(in uint32) uint32 { return in }
func (nonInvertibleAvg) CombineMutable(m *uint32, in uint32) {
	if in > *m {
		*m = in
	}
}
func (nonInvertibleAvg) Freeze(m uint32) aggregator.AvgPartial {
	return aggregator.AvgPartial{Count: 1, Sum: float64(m)}
}
func (nonInvertibleAvg) Combine(a, b aggregator.AvgPartial) aggregator.AvgPartial {
	return aggregator.AvgPartial{Count: a.Count + b.Count, Sum: a.Sum + b.Sum}
}
func (nonInvertibleAvg) Lower(p aggregator.AvgPartial) float64 {
	if p.Count == 0 {
		return 0
	}
	return p.Sum / float64(p.Count)
}
