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

// Package wheel implements a single-granularity Aggregation Wheel: a ring
// of partial aggregates that rotates once per logical capacity's worth of
// ticks, emitting a rolled-up partial to whatever wheel sits one level up.
package wheel

import "uwheel/pkg/aggregator"

// Opt is a present-or-absent value, standing in for the identity element
// a wheel never materializes explicitly: an empty slot has no partial,
// not a zero one.
type Opt[T any] struct {
	Value T
	Valid bool
}

func some[T any](v T) Opt[T] { return Opt[T]{Value: v, Valid: true} }

// RotationData is what a wheel hands to the level above it when a full
// logical rotation completes: the folded partial to insert, plus the raw
// per-slot breakdown that composed it (a receiving wheel without
// drill-down ignores the breakdown).
type RotationData[Partial any] struct {
	Folded    Opt[Partial]
	Breakdown []Opt[Partial] // len == logicalCap, oldest first
}

// Wheel is a ring of Partials for one granularity (seconds, minutes, ...).
type Wheel[Input, Mutable, Partial, Aggregate any] struct {
	agg        aggregator.Aggregator[Input, Mutable, Partial, Aggregate]
	logicalCap int

	slots []Opt[Partial] // physical ring, indexed by bitmask
	mask  int
	head  int // monotonically increasing tick counter

	rotationCount int
	total         Opt[Partial]

	drillDown  bool
	drillSlots [][]Opt[Partial] // same physical indexing as slots
}

// New constructs a wheel for the given logical capacity (e.g. 60 for
// seconds). Physical capacity is the next power of two at or above it.
func New[Input, Mutable, Partial, Aggregate any](agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate], logicalCap int, drillDown bool) *Wheel[Input, Mutable, Partial, Aggregate] {
	phys := nextPow2(logicalCap)
	w := &Wheel[Input, Mutable, Partial, Aggregate]{
		agg:        agg,
		logicalCap: logicalCap,
		slots:      make([]Opt[Partial], phys),
		mask:       phys - 1,
		drillDown:  drillDown,
	}
	if drillDown {
		w.drillSlots = make([][]Opt[Partial], phys)
	}
	return w
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (w *Wheel[Input, Mutable, Partial, Aggregate]) idx(i int) int { return i & w.mask }

// LogicalCap returns the logical (pre-rounding) capacity of this wheel.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) LogicalCap() int { return w.logicalCap }

// RotationCount returns the number of ticks since the last full rotation.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) RotationCount() int { return w.rotationCount }

// Len reports the number of ticks since the last rotation, capped at the
// logical capacity. Slots finalized before that rotation keep their data
// but are not counted.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Len() int {
	n := w.rotationCount
	if n > w.logicalCap {
		n = w.logicalCap
	}
	return n
}

// FastSkip advances head and rotation count by n ticks' worth without
// touching slot contents. It is only safe when the caller can guarantee
// the n skipped slots are already empty — e.g. because no inserts could
// possibly target them, as during the Advance fast-skip optimization.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) FastSkip(n int) {
	w.head += n
	w.rotationCount += n
}

// InsertHead folds p into the slot currently being filled.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) InsertHead(p Partial) {
	i := w.idx(w.head)
	cur := w.slots[i]
	if cur.Valid {
		w.slots[i] = some(w.agg.Combine(cur.Value, p))
	} else {
		w.slots[i] = some(p)
	}
	if w.total.Valid {
		w.total = some(w.agg.Combine(w.total.Value, p))
	} else {
		w.total = some(p)
	}
}

// Tick advances head by one logical position. It returns rotated=true and
// populated RotationData iff a full logical rotation completed.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Tick() (RotationData[Partial], bool) {
	w.head++
	w.rotationCount++

	var rd RotationData[Partial]
	rotated := w.rotationCount >= w.logicalCap
	if rotated {
		// fold before clearing the new head slot: when the logical capacity
		// equals the physical one, that slot holds the rotation's oldest data
		rd = RotationData[Partial]{Folded: w.foldRange(1, w.logicalCap), Breakdown: w.snapshotRange(w.logicalCap)}
		w.rotationCount = 0
		// the rotated content now lives in the parent wheel; keeping it in
		// total as well would count it twice in Landmark and IntervalOrTotal
		w.total = Opt[Partial]{}
	}

	// the freshly exposed head slot must be empty for the next InsertHead
	w.slots[w.idx(w.head)] = Opt[Partial]{}
	if w.drillDown {
		w.drillSlots[w.idx(w.head)] = nil
	}
	return rd, rotated
}

// foldRange combines the n most recently finalized slots, offsets counted
// backward from head (offset 1 = most recent). Mirrors Interval's
// addressing.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) foldRange(from, n int) Opt[Partial] {
	var acc Opt[Partial]
	for off := from; off < from+n; off++ {
		s := w.slots[w.idx(w.head-off)]
		if !s.Valid {
			continue
		}
		if acc.Valid {
			acc = some(w.agg.Combine(acc.Value, s.Value))
		} else {
			acc = some(s.Value)
		}
	}
	return acc
}

func (w *Wheel[Input, Mutable, Partial, Aggregate]) snapshotRange(n int) []Opt[Partial] {
	out := make([]Opt[Partial], n)
	for off := 1; off <= n; off++ {
		out[n-off] = w.slots[w.idx(w.head-off)]
	}
	return out
}

// Interval combines the last n finalized slots (offset 1..n from head).
// n must be in (0, logicalCap]; otherwise Interval returns an invalid Opt.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Interval(n int) Opt[Partial] {
	if n <= 0 || n > w.logicalCap {
		return Opt[Partial]{}
	}
	return w.foldRange(1, n)
}

// Total returns the running accumulator of every insert since the last
// completed rotation (or since creation or the last Clear).
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Total() Opt[Partial] { return w.total }

// IntervalOrTotal avoids double counting slots that have not yet rotated
// into existence: if the requested span reaches back further than what
// this wheel has actually rotation-completed, fall back to Total.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) IntervalOrTotal(n int) Opt[Partial] {
	if n >= w.rotationCount {
		return w.total
	}
	return w.Interval(n)
}

// DrillDown returns the per-child-slot breakdown recorded for the slot at
// the given offset (1 = most recently rotated slot), if drill-down is
// enabled and that slot has a recorded breakdown.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) DrillDown(offset int) ([]Opt[Partial], bool) {
	if !w.drillDown || offset <= 0 || offset > w.logicalCap {
		return nil, false
	}
	bd := w.drillSlots[w.idx(w.head-offset)]
	if bd == nil {
		return nil, false
	}
	return bd, true
}

// CombineDrillDownRange folds elements [lo, hi) of the breakdown vector
// recorded for the slot at the given offset (1 = most recent).
func (w *Wheel[Input, Mutable, Partial, Aggregate]) CombineDrillDownRange(offset, lo, hi int) Opt[Partial] {
	bd, ok := w.DrillDown(offset)
	if !ok || lo < 0 || hi > len(bd) || lo >= hi {
		return Opt[Partial]{}
	}
	var acc Opt[Partial]
	for _, s := range bd[lo:hi] {
		if !s.Valid {
			continue
		}
		if acc.Valid {
			acc = some(w.agg.Combine(acc.Value, s.Value))
		} else {
			acc = some(s.Value)
		}
	}
	return acc
}

// StoreDrillDown records the finer-grained breakdown vector for the slot
// currently being filled (the one InsertHead just wrote to), to be read
// back later via DrillDown/CombineDrillDownRange. Called by the owner of
// this wheel (typically the HAW) right after InsertHead, only when
// drill-down is enabled.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) StoreDrillDown(breakdown []Opt[Partial]) {
	if !w.drillDown {
		return
	}
	w.drillSlots[w.idx(w.head)] = breakdown
}

// Merge slot-wise combines other into w. Both wheels must share the same
// logical capacity and be at aligned head positions (the caller is
// responsible for advancing watermarks to match before merging).
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Merge(other *Wheel[Input, Mutable, Partial, Aggregate]) {
	for off := 1; off <= w.logicalCap; off++ {
		wi := w.idx(w.head - off)
		oi := other.idx(other.head - off)
		os := other.slots[oi]
		if !os.Valid {
			continue
		}
		ws := w.slots[wi]
		if ws.Valid {
			w.slots[wi] = some(w.agg.Combine(ws.Value, os.Value))
		} else {
			w.slots[wi] = some(os.Value)
		}
		if w.drillDown && other.drillSlots != nil {
			obd := other.drillSlots[oi]
			if obd != nil {
				wbd := w.drillSlots[wi]
				if wbd == nil {
					cp := make([]Opt[Partial], len(obd))
					copy(cp, obd)
					w.drillSlots[wi] = cp
				} else {
					for i := range wbd {
						if i >= len(obd) || !obd[i].Valid {
							continue
						}
						if wbd[i].Valid {
							wbd[i] = some(w.agg.Combine(wbd[i].Value, obd[i].Value))
						} else {
							wbd[i] = obd[i]
						}
					}
				}
			}
		}
	}
	if other.total.Valid {
		if w.total.Valid {
			w.total = some(w.agg.Combine(w.total.Value, other.total.Value))
		} else {
			w.total = other.total
		}
	}
	if other.rotationCount > w.rotationCount {
		w.rotationCount = other.rotationCount
	}
}

// Clear resets the wheel to its just-created state, wiping all slots,
// drill-down vectors, the running total and rotation count.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Clear() {
	for i := range w.slots {
		w.slots[i] = Opt[Partial]{}
	}
	if w.drillSlots != nil {
		for i := range w.drillSlots {
			w.drillSlots[i] = nil
		}
	}
	w.total = Opt[Partial]{}
	w.rotationCount = 0
	w.head = 0
}
