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

// Package uwheel is the public Reader-Writer Wheel: it couples a
// Write-Ahead Wheel with a Hierarchical Aggregation Wheel and exposes
// the operations a host application drives its clock through.
package uwheel

import (
	"time"

	"uwheel/pkg/aggregator"
	"uwheel/pkg/haw"
	"uwheel/pkg/waw"
	"uwheel/pkg/wheel"
)

// Entry is one raw event: a value plus the timestamp (ms since the
// host's chosen epoch) it occurred at.
type Entry[Input any] struct {
	Data        Input
	TimestampMs int64
}

// Options configures a Wheel at construction time.
type Options struct {
	// DrillDown retains, per rotated slot, the finer-grained Partial
	// vector that produced it.
	DrillDown bool
	// WriteAheadCapacity is the WAW horizon in seconds, rounded up to
	// a power of two.
	WriteAheadCapacity int
}

// DefaultOptions matches the published defaults: no drill-down, a
// 64-second write-ahead horizon.
func DefaultOptions() Options {
	return Options{DrillDown: false, WriteAheadCapacity: 64}
}

// Wheel is the public, embeddable engine: insert events, advance its
// watermark, and query intervals/landmarks/windows against it.
type Wheel[Input, Mutable, Partial, Aggregate any] struct {
	agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate]
	waw *waw.Waw[Input, Mutable, Partial]
	haw *haw.Haw[Input, Mutable, Partial, Aggregate]
}

// New constructs a Wheel at the given starting watermark (ms) using
// DefaultOptions.
func New[Input, Mutable, Partial, Aggregate any](agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate], watermarkMs int64) *Wheel[Input, Mutable, Partial, Aggregate] {
	return WithOptions(agg, watermarkMs, DefaultOptions())
}

// WithOptions constructs a Wheel with explicit options.
func WithOptions[Input, Mutable, Partial, Aggregate any](agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate], watermarkMs int64, opts Options) *Wheel[Input, Mutable, Partial, Aggregate] {
	capacity := opts.WriteAheadCapacity
	if capacity <= 0 {
		capacity = 64
	}
	return &Wheel[Input, Mutable, Partial, Aggregate]{
		agg: agg,
		waw: waw.New[Input, Mutable, Partial](agg, capacity, watermarkMs),
		haw: haw.New[Input, Mutable, Partial, Aggregate](agg, watermarkMs, opts.DrillDown),
	}
}

// Insert places e into the write-ahead horizon. Returns a
// *waw.LateError or *waw.OverflowError on rejection.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Insert(e Entry[Input]) error {
	return w.waw.Insert(e.Data, e.TimestampMs)
}

// Advance moves the watermark forward by duration, ticking the WAW
// into the HAW in lock-step.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Advance(duration time.Duration) {
	w.haw.Advance(duration, w.waw)
}

// AdvanceTo advances to the given absolute watermark (ms); a no-op if
// it is at or behind the current one.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) AdvanceTo(watermarkMs int64) {
	w.haw.AdvanceTo(watermarkMs, w.waw)
}

// Watermark returns the current watermark in milliseconds. WAW and
// HAW watermarks are always equal after Insert/Advance/AdvanceTo.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Watermark() int64 { return w.haw.Watermark() }

// WriteAheadLen reports how many more seconds of future horizon can
// still absorb an insert.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) WriteAheadLen() int { return w.waw.WriteAheadLen() }

// Interval combines every Partial whose timestamp falls within the
// last dur of the current watermark.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Interval(dur time.Duration) (Partial, bool) {
	opt := w.haw.Interval(dur)
	return opt.Value, opt.Valid
}

// IntervalAndLower combines Interval and lowers the result to the
// user-facing Aggregate type.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) IntervalAndLower(dur time.Duration) (Aggregate, bool) {
	return w.haw.IntervalAndLower(dur)
}

// Landmark combines every wheel's running total: the aggregate over
// all events since the last full-cycle clear.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Landmark() (Partial, bool) {
	opt := w.haw.Landmark()
	return opt.Value, opt.Valid
}

// LandmarkAndLower combines Landmark and lowers it to Aggregate.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) LandmarkAndLower() (Aggregate, bool) {
	return w.haw.LandmarkAndLower()
}

// Merge aligns other's watermark to this wheel's (or vice versa) via
// an ephemeral empty WAW, then slot-wise merges every level of the
// HAW. The WAWs themselves are never merged — pending write-ahead
// entries are not carried across a merge.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Merge(other *Wheel[Input, Mutable, Partial, Aggregate]) {
	w.haw.Merge(other.haw)
}

// Seconds, Minutes, Hours, Days, Weeks, Years expose the per-granularity
// wheels for direct Interval/Total/DrillDown queries.
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Seconds() *wheel.Wheel[Input, Mutable, Partial, Aggregate] {
	return w.haw.Seconds()
}
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Minutes() *wheel.Wheel[Input, Mutable, Partial, Aggregate] {
	return w.haw.Minutes()
}
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Hours() *wheel.Wheel[Input, Mutable, Partial, Aggregate] {
	return w.haw.Hours()
}
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Days() *wheel.Wheel[Input, Mutable, Partial, Aggregate] {
	return w.haw.Days()
}
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Weeks() *wheel.Wheel[Input, Mutable, Partial, Aggregate] {
	return w.haw.Weeks()
}
func (w *Wheel[Input, Mutable, Partial, Aggregate]) Years() *wheel.Wheel[Input, Mutable, Partial, Aggregate] {
	return w.haw.Years()
}
