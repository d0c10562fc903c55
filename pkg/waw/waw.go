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

// Package waw implements the Write-Ahead Wheel: a bounded ring of
// in-progress mutable partials addressed by seconds-from-watermark, used
// to absorb out-of-order inserts within a future horizon before they are
// frozen and handed to the Hierarchical Aggregation Wheel.
package waw

import "fmt"

// LateError is returned when an entry's timestamp is behind the current
// watermark. The caller decides whether to drop it or route it elsewhere.
type LateError[Input any] struct {
	Entry     Input
	Timestamp int64
	Watermark int64
}

func (e *LateError[Input]) Error() string {
	return fmt.Sprintf("uwheel: entry at %dms is late (watermark %dms)", e.Timestamp, e.Watermark)
}

// OverflowError is returned when an entry's timestamp lands beyond the
// write-ahead horizon. MaxWriteAheadTimestamp is the latest timestamp
// that would have been accepted.
type OverflowError[Input any] struct {
	Entry                  Input
	Timestamp              int64
	MaxWriteAheadTimestamp int64
}

func (e *OverflowError[Input]) Error() string {
	return fmt.Sprintf("uwheel: entry at %dms overflows the write-ahead horizon (max %dms)", e.Timestamp, e.MaxWriteAheadTimestamp)
}

// Aggregator is the minimal capability the WAW needs: lift a raw input
// into a mutable builder, fold further inputs into one, and freeze it
// into the immutable partial the HAW consumes.
type Aggregator[Input, Mutable, Partial any] interface {
	Lift(in Input) Mutable
	CombineMutable(m *Mutable, in Input)
	Freeze(m Mutable) Partial
}

// Waw is the Write-Ahead Wheel. Capacity is always a power of two; the
// zero value is not usable, construct with New.
type Waw[Input, Mutable, Partial any] struct {
	agg      Aggregator[Input, Mutable, Partial]
	capacity int
	mask     int

	slots []Mutable
	set   []bool

	head, tail int // advance in lock-step every tick; kept distinct to
	// mirror insert addressing (head) vs. pop addressing (tail)
	occupied int

	watermark int64 // ms
}

// New constructs a Waw with the given write-ahead capacity (seconds,
// rounded up to a power of two) and starting watermark (ms).
func New[Input, Mutable, Partial any](agg Aggregator[Input, Mutable, Partial], capacity int, watermarkMs int64) *Waw[Input, Mutable, Partial] {
	phys := nextPow2(capacity)
	return &Waw[Input, Mutable, Partial]{
		agg:       agg,
		capacity:  phys,
		mask:      phys - 1,
		slots:     make([]Mutable, phys),
		set:       make([]bool, phys),
		watermark: watermarkMs,
	}
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

// Watermark returns the current watermark in milliseconds.
func (w *Waw[Input, Mutable, Partial]) Watermark() int64 { return w.watermark }

// Capacity returns the physical (power-of-two) capacity in seconds.
func (w *Waw[Input, Mutable, Partial]) Capacity() int { return w.capacity }

// WriteAheadLen is how many more seconds of future horizon can still
// absorb an insert.
func (w *Waw[Input, Mutable, Partial]) WriteAheadLen() int { return w.capacity - w.occupied }

func (w *Waw[Input, Mutable, Partial]) idx(i int) int { return i & w.mask }

// Insert places in at the slot addressed by its timestamp relative to the
// current watermark. Returns *LateError or *OverflowError on rejection.
func (w *Waw[Input, Mutable, Partial]) Insert(in Input, timestampMs int64) error {
	if timestampMs < w.watermark {
		return &LateError[Input]{Entry: in, Timestamp: timestampMs, Watermark: w.watermark}
	}
	deltaSeconds := int((timestampMs - w.watermark) / 1000)
	if deltaSeconds >= w.WriteAheadLen() {
		max := w.watermark + int64(w.WriteAheadLen())*1000 - 1
		return &OverflowError[Input]{Entry: in, Timestamp: timestampMs, MaxWriteAheadTimestamp: max}
	}
	i := w.idx(w.head + deltaSeconds)
	if w.set[i] {
		w.agg.CombineMutable(&w.slots[i], in)
	} else {
		w.slots[i] = w.agg.Lift(in)
		w.set[i] = true
		w.occupied++
	}
	return nil
}

// FastSkip advances the watermark and head/tail by n seconds without
// touching slot contents. Only safe when the caller can guarantee none
// of the n skipped slots hold pending data.
func (w *Waw[Input, Mutable, Partial]) FastSkip(n int) {
	w.watermark += int64(n) * 1000
	w.head += n
	w.tail += n
}

// Tick advances the watermark by one second and pops the slot at tail,
// freezing it into a Partial if one was present.
func (w *Waw[Input, Mutable, Partial]) Tick() (Partial, bool) {
	w.watermark += 1000
	var out Partial
	var ok bool
	ti := w.idx(w.tail)
	if w.set[ti] {
		out = w.agg.Freeze(w.slots[ti])
		ok = true
		var zero Mutable
		w.slots[ti] = zero
		w.set[ti] = false
		w.occupied--
	}
	w.tail++
	w.head++
	return out, ok
}
