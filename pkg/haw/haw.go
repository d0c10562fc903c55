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

// Package haw implements the Hierarchical Aggregation Wheel: six cascaded
// Aggregation Wheels (seconds through years) whose rotations propagate
// rolled-up partial aggregates upward, plus the cross-granularity
// interval, landmark and merge queries built on top of them.
package haw

import (
	"time"

	"uwheel/pkg/aggregator"
	"uwheel/pkg/waw"
	"uwheel/pkg/wheel"
)

// Logical capacities for each granularity.
const (
	Seconds = 60
	Minutes = 60
	Hours   = 24
	Days    = 7
	Weeks   = 52
	Years   = 10
)

const (
	secondAsMs = int64(1000)
	minuteSecs = int64(Seconds)
	hourSecs   = minuteSecs * Minutes
	daySecs    = hourSecs * Hours
	weekSecs   = daySecs * Days
	yearSecs   = weekSecs * Weeks

	// CycleLengthSecs is the full span the hierarchy can represent before
	// it must be cleared outright; one extra year forces a full rotation.
	CycleLengthSecs = yearSecs * (Years + 1)
	// TotalWheelSlots is the sum of every level's logical capacity.
	TotalWheelSlots = Seconds + Minutes + Hours + Days + Weeks + Years
)

type lvlWheel[Input, Mutable, Partial, Aggregate any] = wheel.Wheel[Input, Mutable, Partial, Aggregate]

// Haw is the Hierarchical Aggregation Wheel.
type Haw[Input, Mutable, Partial, Aggregate any] struct {
	agg       aggregator.Aggregator[Input, Mutable, Partial, Aggregate]
	watermark int64
	drillDown bool

	seconds *lvlWheel[Input, Mutable, Partial, Aggregate]
	minutes *lvlWheel[Input, Mutable, Partial, Aggregate]
	hours   *lvlWheel[Input, Mutable, Partial, Aggregate]
	days    *lvlWheel[Input, Mutable, Partial, Aggregate]
	weeks   *lvlWheel[Input, Mutable, Partial, Aggregate]
	years   *lvlWheel[Input, Mutable, Partial, Aggregate]

	levels []*lvlWheel[Input, Mutable, Partial, Aggregate] // minutes..years, cascade order
}

// New constructs a Haw at the given starting watermark (ms).
func New[Input, Mutable, Partial, Aggregate any](agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate], watermarkMs int64, drillDown bool) *Haw[Input, Mutable, Partial, Aggregate] {
	h := &Haw[Input, Mutable, Partial, Aggregate]{
		agg:       agg,
		watermark: watermarkMs,
		drillDown: drillDown,
		seconds:   wheel.New(agg, Seconds, drillDown),
		minutes:   wheel.New(agg, Minutes, drillDown),
		hours:     wheel.New(agg, Hours, drillDown),
		days:      wheel.New(agg, Days, drillDown),
		weeks:     wheel.New(agg, Weeks, drillDown),
		years:     wheel.New(agg, Years, drillDown),
	}
	h.levels = []*lvlWheel[Input, Mutable, Partial, Aggregate]{h.minutes, h.hours, h.days, h.weeks, h.years}
	return h
}

// Watermark returns the current watermark in milliseconds.
func (h *Haw[Input, Mutable, Partial, Aggregate]) Watermark() int64 { return h.watermark }

// Seconds, Minutes, Hours, Days, Weeks, Years expose the per-granularity
// wheels for direct interval/total/drill-down queries.
func (h *Haw[Input, Mutable, Partial, Aggregate]) Seconds() *lvlWheel[Input, Mutable, Partial, Aggregate] {
	return h.seconds
}
func (h *Haw[Input, Mutable, Partial, Aggregate]) Minutes() *lvlWheel[Input, Mutable, Partial, Aggregate] {
	return h.minutes
}
func (h *Haw[Input, Mutable, Partial, Aggregate]) Hours() *lvlWheel[Input, Mutable, Partial, Aggregate] {
	return h.hours
}
func (h *Haw[Input, Mutable, Partial, Aggregate]) Days() *lvlWheel[Input, Mutable, Partial, Aggregate] {
	return h.days
}
func (h *Haw[Input, Mutable, Partial, Aggregate]) Weeks() *lvlWheel[Input, Mutable, Partial, Aggregate] {
	return h.weeks
}
func (h *Haw[Input, Mutable, Partial, Aggregate]) Years() *lvlWheel[Input, Mutable, Partial, Aggregate] {
	return h.years
}

// Tick advances the watermark by one second, draining the Write-Ahead
// Wheel's due slot into the seconds wheel and cascading any rotation it
// triggers up through the hierarchy.
func (h *Haw[Input, Mutable, Partial, Aggregate]) Tick(w *waw.Waw[Input, Mutable, Partial]) {
	h.watermark += secondAsMs
	if p, ok := w.Tick(); ok {
		h.seconds.InsertHead(p)
	}
	rd, rotated := h.seconds.Tick()
	if rotated {
		h.cascade(0, rd)
	}
}

func (h *Haw[Input, Mutable, Partial, Aggregate]) cascade(level int, rd wheel.RotationData[Partial]) {
	parent := h.levels[level]
	if rd.Folded.Valid {
		parent.InsertHead(rd.Folded.Value)
	}
	parent.StoreDrillDown(rd.Breakdown)

	prd, rotated := parent.Tick()
	if rotated && level+1 < len(h.levels) {
		h.cascade(level+1, prd)
	}
	// years (the last level) simply discards its emission: nothing sits
	// above it to receive a further roll-up.
}

// Advance moves the watermark forward by duration, ticking the WAW in
// lock-step. Durations that exceed the full cycle length clear the
// hierarchy outright; durations within it use the fast-skip optimization
// for any span of whole seconds-rotations known to be empty.
func (h *Haw[Input, Mutable, Partial, Aggregate]) Advance(duration time.Duration, w *waw.Waw[Input, Mutable, Partial]) {
	ticks := int64(duration / time.Second)
	if ticks <= 0 {
		return
	}

	if ticks <= Seconds {
		h.tickN(ticks, w)
		return
	}
	if ticks > CycleLengthSecs {
		h.Clear()
		h.watermark += ticks * secondAsMs
		w.FastSkip(int(ticks)) // keep WAW's watermark in lock-step even on clear
		return
	}

	// Finish the in-flight seconds rotation with normal ticks first.
	remTicks := int64(Seconds - h.seconds.RotationCount())
	h.tickN(remTicks, w)
	ticks -= remTicks

	fastTicks := ticks / Seconds
	if fastTicks == 0 {
		h.tickN(ticks, w)
		return
	}
	fastTickMs := (Seconds - 1) * secondAsMs
	for i := int64(0); i < fastTicks; i++ {
		h.seconds.FastSkip(Seconds - 1)
		h.watermark += fastTickMs
		w.FastSkip(Seconds - 1)
		h.Tick(w)
		ticks -= Seconds
	}
	h.tickN(ticks, w)
}

func (h *Haw[Input, Mutable, Partial, Aggregate]) tickN(n int64, w *waw.Waw[Input, Mutable, Partial]) {
	for i := int64(0); i < n; i++ {
		h.Tick(w)
	}
}

// AdvanceTo advances to the given absolute watermark (ms). Targets at or
// behind the current watermark are a no-op.
func (h *Haw[Input, Mutable, Partial, Aggregate]) AdvanceTo(watermarkMs int64, w *waw.Waw[Input, Mutable, Partial]) {
	if watermarkMs <= h.watermark {
		return
	}
	h.Advance(time.Duration(watermarkMs-h.watermark)*time.Millisecond, w)
}

// Clear wipes every wheel in the hierarchy back to its just-created state.
func (h *Haw[Input, Mutable, Partial, Aggregate]) Clear() {
	h.seconds.Clear()
	h.minutes.Clear()
	h.hours.Clear()
	h.days.Clear()
	h.weeks.Clear()
	h.years.Clear()
}

// Landmark combines the running total of every wheel in the hierarchy,
// which together partition all events since the last full cycle clear.
func (h *Haw[Input, Mutable, Partial, Aggregate]) Landmark() wheel.Opt[Partial] {
	totals := []wheel.Opt[Partial]{
		h.seconds.Total(), h.minutes.Total(), h.hours.Total(),
		h.days.Total(), h.weeks.Total(), h.years.Total(),
	}
	return h.reduce(totals)
}

// LandmarkAndLower combines Landmark and lowers it to the user-facing
// Aggregate type.
func (h *Haw[Input, Mutable, Partial, Aggregate]) LandmarkAndLower() (Aggregate, bool) {
	p := h.Landmark()
	if !p.Valid {
		var zero Aggregate
		return zero, false
	}
	return h.agg.Lower(p.Value), true
}

func (h *Haw[Input, Mutable, Partial, Aggregate]) reduce(opts []wheel.Opt[Partial]) wheel.Opt[Partial] {
	var acc wheel.Opt[Partial]
	for _, o := range opts {
		if !o.Valid {
			continue
		}
		if acc.Valid {
			acc = wheel.Opt[Partial]{Value: h.agg.Combine(acc.Value, o.Value), Valid: true}
		} else {
			acc = o
		}
	}
	return acc
}

// Merge aligns other's watermark to h's (or vice versa, whichever is
// older) using an ephemeral empty WAW, then slot-wise merges every level.
func (h *Haw[Input, Mutable, Partial, Aggregate]) Merge(other *Haw[Input, Mutable, Partial, Aggregate]) {
	if other.watermark > h.watermark {
		scratch := waw.New[Input, Mutable, Partial](h.agg, 64, h.watermark)
		h.Advance(time.Duration(other.watermark-h.watermark)*time.Millisecond, scratch)
	} else if h.watermark > other.watermark {
		scratch := waw.New[Input, Mutable, Partial](other.agg, 64, other.watermark)
		other.Advance(time.Duration(h.watermark-other.watermark)*time.Millisecond, scratch)
	}
	h.seconds.Merge(other.seconds)
	h.minutes.Merge(other.minutes)
	h.hours.Merge(other.hours)
	h.days.Merge(other.days)
	h.weeks.Merge(other.weeks)
	h.years.Merge(other.years)
}
