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
)

// Engine is the common surface both window strategies expose.
type Engine[Input, Partial any] interface {
	Insert(e uwheel.Entry[Input]) error
	AdvanceTo(watermarkMs int64)
	Results() []Partial
}

// Builder assembles a window engine from a (range, slide, watermark)
// triple, selecting the Eager strategy automatically when the
// aggregator supplies an Inverse and falling back to Lazy otherwise.
type Builder[Input, Mutable, Partial, Aggregate any] struct {
	agg         aggregator.Aggregator[Input, Mutable, Partial, Aggregate]
	rangeMs     int64
	slideMs     int64
	watermarkMs int64
	opts        uwheel.Options
}

// NewBuilder starts a Builder for the given aggregator, with
// uwheel.DefaultOptions().
func NewBuilder[Input, Mutable, Partial, Aggregate any](agg aggregator.Aggregator[Input, Mutable, Partial, Aggregate]) *Builder[Input, Mutable, Partial, Aggregate] {
	return &Builder[Input, Mutable, Partial, Aggregate]{agg: agg, opts: uwheel.DefaultOptions()}
}

// WithRange sets the window range.
func (b *Builder[Input, Mutable, Partial, Aggregate]) WithRange(d time.Duration) *Builder[Input, Mutable, Partial, Aggregate] {
	b.rangeMs = int64(d / time.Millisecond)
	return b
}

// WithSlide sets the window slide.
func (b *Builder[Input, Mutable, Partial, Aggregate]) WithSlide(d time.Duration) *Builder[Input, Mutable, Partial, Aggregate] {
	b.slideMs = int64(d / time.Millisecond)
	return b
}

// WithWatermark sets the starting watermark (ms).
func (b *Builder[Input, Mutable, Partial, Aggregate]) WithWatermark(watermarkMs int64) *Builder[Input, Mutable, Partial, Aggregate] {
	b.watermarkMs = watermarkMs
	return b
}

// WithOptions overrides the inner Wheel's options (drill-down,
// write-ahead capacity).
func (b *Builder[Input, Mutable, Partial, Aggregate]) WithOptions(opts uwheel.Options) *Builder[Input, Mutable, Partial, Aggregate] {
	b.opts = opts
	return b
}

// Build constructs the window engine. If the aggregator implements
// aggregator.Inverse[Partial], the Eager (O(1) query) strategy is
// used; otherwise Build falls back to Lazy.
func (b *Builder[Input, Mutable, Partial, Aggregate]) Build() Engine[Input, Partial] {
	if inv, ok := any(b.agg).(aggregator.Inverse[Partial]); ok {
		return NewEager[Input, Mutable, Partial, Aggregate](b.agg, inv, b.watermarkMs, b.rangeMs, b.slideMs, b.opts)
	}
	return NewLazy[Input, Mutable, Partial, Aggregate](b.agg, b.watermarkMs, b.rangeMs, b.slideMs, b.opts)
}

// BuildLazy forces the Lazy strategy regardless of aggregator
// capability.
func (b *Builder[Input, Mutable, Partial, Aggregate]) BuildLazy() *Lazy[Input, Mutable, Partial, Aggregate] {
	return NewLazy[Input, Mutable, Partial, Aggregate](b.agg, b.watermarkMs, b.rangeMs, b.slideMs, b.opts)
}
