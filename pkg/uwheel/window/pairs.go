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

// Package window implements the Lazy and Eager sliding-window engines
// built on top of the Pairs decomposition (Krishnamurthy et al.): a
// stream sliced into pairs whose boundaries coincide exactly with
// window starts and ends, so windows are reconstructed from a handful
// of pair partials instead of being recomputed from scratch.
package window

import (
	"uwheel/pkg/ring"
	"uwheel/pkg/wheel"
)

// PairType distinguishes whether the range divides evenly by the
// slide, or alternates between two unequal pair lengths.
type PairType int

const (
	PairEven PairType = iota
	PairUneven
)

func (t PairType) String() string {
	if t == PairEven {
		return "even"
	}
	return "uneven"
}

// pairing holds the derived pair geometry for a given (range, slide).
type pairing struct {
	typ            PairType
	p1, p2         int64 // ms
	pairsPerWindow int
}

func newPairing(rangeMs, slideMs int64) pairing {
	if rangeMs%slideMs == 0 {
		return pairing{
			typ:            PairEven,
			p1:             slideMs,
			p2:             slideMs,
			pairsPerWindow: int(rangeMs / slideMs),
		}
	}
	p1 := rangeMs % slideMs
	p2 := slideMs - p1
	return pairing{
		typ:            PairUneven,
		p1:             p1,
		p2:             p2,
		pairsPerWindow: int(2*(rangeMs/slideMs)) + 1,
	}
}

// firstLen is the length (ms) of the very first pair.
func (pr pairing) firstLen() int64 { return pr.p1 }

// next returns the length (ms) of the pair that follows one of length cur.
func (pr pairing) next(cur int64) int64 {
	if pr.typ == PairEven || cur == pr.p2 {
		return pr.p1
	}
	return pr.p2
}

// popCount is how many oldest pairs retire per completed window.
func (pr pairing) popCount() int {
	if pr.typ == PairEven {
		return 1
	}
	return 2
}

// pairsWheel is a FIFO ring of per-pair Partials: push appends the
// newest pair, popOldest retires the oldest, combineRecent folds the
// n most-recently-pushed entries.
type pairsWheel[Partial any] struct {
	r          *ring.Ring[wheel.Opt[Partial]]
	head, tail int
	len        int
}

func newPairsWheel[Partial any](logicalCap int) *pairsWheel[Partial] {
	if logicalCap <= 0 {
		logicalCap = 1
	}
	return &pairsWheel[Partial]{r: ring.New[wheel.Opt[Partial]](logicalCap)}
}

func (pw *pairsWheel[Partial]) push(v wheel.Opt[Partial]) {
	pw.r.Set(pw.head, v)
	pw.head++
	pw.len++
}

func (pw *pairsWheel[Partial]) oldest() (wheel.Opt[Partial], bool) {
	if pw.len == 0 {
		return wheel.Opt[Partial]{}, false
	}
	v, _ := pw.r.Get(pw.tail)
	return v, true
}

func (pw *pairsWheel[Partial]) popOldest() {
	if pw.len == 0 {
		return
	}
	pw.r.Clear(pw.tail)
	pw.tail++
	pw.len--
}

// combineRecent folds the n most-recently-pushed entries (1 = the
// entry just pushed).
func (pw *pairsWheel[Partial]) combineRecent(combine func(a, b Partial) Partial, n int) wheel.Opt[Partial] {
	var acc wheel.Opt[Partial]
	for off := 1; off <= n && off <= pw.len; off++ {
		v, ok := pw.r.Get(pw.head - off)
		if !ok || !v.Valid {
			continue
		}
		if acc.Valid {
			acc = wheel.Opt[Partial]{Value: combine(acc.Value, v.Value), Valid: true}
		} else {
			acc = v
		}
	}
	return acc
}
