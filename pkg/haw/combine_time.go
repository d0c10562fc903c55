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

package haw

import (
	"time"

	"uwheel/pkg/wheel"
)

// level pairs a wheel with the portion of a decomposed duration it is
// responsible for.
type level[Input, Mutable, Partial, Aggregate any] struct {
	wheel *lvlWheel[Input, Mutable, Partial, Aggregate]
	n     int
}

// Interval decomposes dur into (year, week, day, hour, minute, second)
// components — each modulo its wheel's logical capacity — and combines
// the relevant wheels: the coarsest non-zero component queries its wheel
// with Interval, every finer component queries with IntervalOrTotal
// (capped at that wheel's own rotation count) to avoid double-counting
// data that has not yet rotated up into it. An all-zero decomposition
// (dur < 1s) returns an invalid Opt.
func (h *Haw[Input, Mutable, Partial, Aggregate]) Interval(dur time.Duration) wheel.Opt[Partial] {
	total := int64(dur / time.Second)
	if total <= 0 {
		return wheel.Opt[Partial]{}
	}

	year := (total / yearSecs) % Years
	rem := total % yearSecs
	week := rem / weekSecs
	rem %= weekSecs
	day := rem / daySecs
	rem %= daySecs
	hour := rem / hourSecs
	rem %= hourSecs
	minute := rem / minuteSecs
	rem %= minuteSecs
	second := rem

	var entries []level[Input, Mutable, Partial, Aggregate]
	if year > 0 {
		entries = append(entries, level[Input, Mutable, Partial, Aggregate]{h.years, int(year)})
	}
	if week > 0 {
		entries = append(entries, level[Input, Mutable, Partial, Aggregate]{h.weeks, int(week)})
	}
	if day > 0 {
		entries = append(entries, level[Input, Mutable, Partial, Aggregate]{h.days, int(day)})
	}
	if hour > 0 {
		entries = append(entries, level[Input, Mutable, Partial, Aggregate]{h.hours, int(hour)})
	}
	if minute > 0 {
		entries = append(entries, level[Input, Mutable, Partial, Aggregate]{h.minutes, int(minute)})
	}
	if second > 0 {
		entries = append(entries, level[Input, Mutable, Partial, Aggregate]{h.seconds, int(second)})
	}
	if len(entries) == 0 {
		return wheel.Opt[Partial]{}
	}

	top := entries[0]
	acc := top.wheel.Interval(top.n)
	for _, e := range entries[1:] {
		n := e.n
		if rc := e.wheel.RotationCount(); n > rc {
			n = rc
		}
		v := e.wheel.IntervalOrTotal(n)
		if !v.Valid {
			continue
		}
		if acc.Valid {
			acc = wheel.Opt[Partial]{Value: h.agg.Combine(acc.Value, v.Value), Valid: true}
		} else {
			acc = v
		}
	}
	return acc
}

// IntervalAndLower combines Interval and lowers the result to the
// user-facing Aggregate type.
func (h *Haw[Input, Mutable, Partial, Aggregate]) IntervalAndLower(dur time.Duration) (Aggregate, bool) {
	p := h.Interval(dur)
	if !p.Valid {
		var zero Aggregate
		return zero, false
	}
	return h.agg.Lower(p.Value), true
}
