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
	"time"

	"uwheel/pkg/aggregator"
	"uwheel/pkg/uwheel"
	"uwheel/pkg/wheel"
)

// Eager maintains a rolling window accumulator via inverse_combine: a
// completing pair is folded in, an expiring pair is folded out, and a
// window query just reads the accumulator — O(1) regardless of range.
// Requires an aggregator with an algebraic inverse (aggregator.Inverse).
type Eager[Input, Mutable, Partial, Aggregate any] struct {
	agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate]
	inv aggregator.Inverse[Partial]

	inner *uwheel.Wheel[Input, Mutable, Partial, Aggregate]
	pr    pairing
	pairs *pairsWheel[Partial]

	curPairLen    int64
	nextPairEnd   int64
	nextWindowEnd int64
	slideMs       int64

	acc     wheel.Opt[Partial]
	results []Partial
}

// NewEager constructs an Eager window engine. inv must be the same
// aggregator's Inverse implementation.
func NewEager[Input, Mutable, Partial, Aggregate any](
	agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate],
	inv aggregator.Inverse[Partial],
	watermarkMs, rangeMs, slideMs int64,
	opts uwheel.Options,
) *Eager[Input, Mutable, Partial, Aggregate] {
	pr := newPairing(rangeMs, slideMs)
	return &Eager[Input, Mutable, Partial, Aggregate]{
		agg:           agg,
		inv:           inv,
		inner:         uwheel.WithOptions(agg, watermarkMs, opts),
		pr:            pr,
		pairs:         newPairsWheel[Partial](pr.pairsPerWindow),
		curPairLen:    pr.firstLen(),
		nextPairEnd:   watermarkMs + pr.firstLen(),
		nextWindowEnd: watermarkMs + rangeMs,
		slideMs:       slideMs,
	}
}

// Insert propagates to the inner Wheel; Late/Overflow errors surface
// unchanged.
func (e *Eager[Input, Mutable, Partial, Aggregate]) Insert(entry uwheel.Entry[Input]) error {
	return e.inner.Insert(entry)
}

// AdvanceTo drives the inner wheel to watermarkMs, folding each
// completing pair into the accumulator and each expiring pair out of
// it, emitting the accumulator's current value at every window end.
func (e *Eager[Input, Mutable, Partial, Aggregate]) AdvanceTo(watermarkMs int64) {
	for watermarkMs >= e.nextPairEnd {
		e.inner.AdvanceTo(e.nextPairEnd)
		p, ok := e.inner.Interval(time.Duration(e.curPairLen) * time.Millisecond)
		if ok {
			e.pairs.push(wheel.Opt[Partial]{Value: p, Valid: true})
			if e.acc.Valid {
				e.acc = wheel.Opt[Partial]{Value: e.agg.Combine(e.acc.Value, p), Valid: true}
			} else {
				e.acc = wheel.Opt[Partial]{Value: p, Valid: true}
			}
		} else {
			e.pairs.push(wheel.Opt[Partial]{})
		}

		e.curPairLen = e.pr.next(e.curPairLen)
		e.nextPairEnd += e.curPairLen
	}
	for watermarkMs >= e.nextWindowEnd {
		e.inner.AdvanceTo(e.nextWindowEnd)
		var v Partial
		if e.acc.Valid {
			v = e.acc.Value
		}
		e.results = append(e.results, v)
		for i := 0; i < e.pr.popCount(); i++ {
			if v, ok := e.pairs.oldest(); ok && v.Valid && e.acc.Valid {
				e.acc = wheel.Opt[Partial]{Value: e.inv.InverseCombine(e.acc.Value, v.Value), Valid: true}
			}
			e.pairs.popOldest()
		}
		e.nextWindowEnd += e.slideMs
	}
	e.inner.AdvanceTo(watermarkMs)
}

// Results returns every window Partial emitted so far, oldest first.
func (e *Eager[Input, Mutable, Partial, Aggregate]) Results() []Partial { return e.results }
