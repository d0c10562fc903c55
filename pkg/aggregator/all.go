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

package aggregator

import "math"

// AllPartial bundles sum, min, max and count computed in a single pass,
// so a caller who wants several statistics does not pay for several
// parallel wheels.
type AllPartial struct {
	Sum   float64
	Min   float64
	Max   float64
	Count int64
}

// All computes sum/min/max/count together. Min and Max are not
// invertible, so All as a whole does not implement Inverse even though
// its Sum and Count components individually would be.
type All struct{}

func (All) Lift(in float64) AllPartial {
	return AllPartial{Sum: in, Min: in, Max: in, Count: 1}
}

func (All) CombineMutable(m *AllPartial, in float64) {
	m.Sum += in
	m.Count++
	if in < m.Min {
		m.Min = in
	}
	if in > m.Max {
		m.Max = in
	}
}

func (All) Freeze(m AllPartial) AllPartial { return m }

func (All) Combine(a, b AllPartial) AllPartial {
	if a.Count == 0 {
		return b
	}
	if b.Count == 0 {
		return a
	}
	return AllPartial{
		Sum:   a.Sum + b.Sum,
		Min:   math.Min(a.Min, b.Min),
		Max:   math.Max(a.Max, b.Max),
		Count: a.Count + b.Count,
	}
}

func (All) Lower(p AllPartial) AllPartial { return p }

var _ Aggregator[float64, AllPartial, AllPartial, AllPartial] = All{}
