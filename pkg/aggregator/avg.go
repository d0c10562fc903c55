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

// AvgPartial is the count/sum pair Avg accumulates as both its Mutable
// builder and its frozen Partial.
type AvgPartial struct {
	Count int64
	Sum   float64
}

// Avg computes a running mean. It is invertible: removing a sub-window's
// count/sum pair from a super-window's pair recovers the remainder.
type Avg struct{}

func (Avg) Lift(in float64) AvgPartial { return AvgPartial{Count: 1, Sum: in} }

func (Avg) CombineMutable(m *AvgPartial, in float64) {
	m.Count++
	m.Sum += in
}

func (Avg) Freeze(m AvgPartial) AvgPartial { return m }

func (Avg) Combine(a, b AvgPartial) AvgPartial {
	return AvgPartial{Count: a.Count + b.Count, Sum: a.Sum + b.Sum}
}

func (Avg) Lower(p AvgPartial) float64 {
	if p.Count == 0 {
		return 0
	}
	return p.Sum / float64(p.Count)
}

func (Avg) InverseCombine(a, b AvgPartial) AvgPartial {
	return AvgPartial{Count: a.Count - b.Count, Sum: a.Sum - b.Sum}
}

var (
	_ Aggregator[float64, AvgPartial, AvgPartial, float64] = Avg{}
	_ Inverse[AvgPartial]                                  = Avg{}
)
