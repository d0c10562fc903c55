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

// Lazy builds (range, slide) windows on demand from Pairs partials. It
// never requires an inverse: a window is recomputed by combining the
// pairsPerWindow most recent pair partials every time a window completes.
type Lazy[Input, Mutable, Partial, Aggregate any] struct {
	agg   aggregator.Aggregator[Input, Mutable, Partial, Aggregate]
	inner *uwheel.Wheel[Input, Mutable, Partial, Aggregate]
	pr    pairing
	pairs *pairsWheel[Partial]

	curPairLen    int64
	nextPairEnd   int64
	nextWindowEnd int64
	slideMs       int64

	results []Partial
}

// NewLazy constructs a Lazy window engine over a fresh inner Wheel.
func NewLazy[Input, Mutable, Partial, Aggregate any](
	agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate],
	watermarkMs, rangeMs, slideMs int64,
	opts uwheel.Options,
) *Lazy[Input, Mutable, Partial, Aggregate] {
	pr := newPairing(rangeMs, slideMs)
	return &Lazy[Input, Mutable, Partial, Aggregate]{
		agg:           agg,
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
func (l *Lazy[Input, Mutable, Partial, Aggregate]) Insert(e uwheel.Entry[Input]) error {
	return l.inner.Insert(e)
}

// AdvanceTo drives the inner wheel to watermarkMs, completing any
// pairs and windows whose boundary has now passed. Infallible: a
// target at or behind the current watermark is a no-op beyond the
// final AdvanceTo.
func (l *Lazy[Input, Mutable, Partial, Aggregate]) AdvanceTo(watermarkMs int64) {
	for watermarkMs >= l.nextPairEnd {
		l.inner.AdvanceTo(l.nextPairEnd)
		p, ok := l.inner.Interval(time.Duration(l.curPairLen) * time.Millisecond)
		l.pairs.push(wheel.Opt[Partial]{Value: p, Valid: ok})

		l.curPairLen = l.pr.next(l.curPairLen)
		l.nextPairEnd += l.curPairLen
	}
	for watermarkMs >= l.nextWindowEnd {
		l.inner.AdvanceTo(l.nextWindowEnd)
		combined := l.pairs.combineRecent(l.agg.Combine, l.pr.pairsPerWindow)
		for i := 0; i < l.pr.popCount(); i++ {
			l.pairs.popOldest()
		}
		var v Partial
		if combined.Valid {
			v = combined.Value
		}
		l.results = append(l.results, v)
		l.nextWindowEnd += l.slideMs
	}
	l.inner.AdvanceTo(watermarkMs)
}

// Results returns every window Partial emitted so far, oldest first.
func (l *Lazy[Input, Mutable, Partial, Aggregate]) Results() []Partial { return l.results }
