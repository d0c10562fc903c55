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

// Package aggregator defines the algebraic contract every partial
// aggregate in uwheel must satisfy. A wheel never knows the shape of the
// values it stores; it only knows how to lift, combine, freeze and lower
// them through this interface.
package aggregator

// Aggregator is the capability set a caller supplies to a wheel. Input is
// the type of raw events, Mutable is the in-progress builder for a slot
// still being filled, Partial is the immutable combinable intermediate
// stored once a slot is frozen, and Aggregate is the user-facing result.
//
// Combine must be associative and have an identity element reachable by
// combining a partial with itself zero times (a wheel never materializes
// an explicit identity value; empty slots are represented as absence).
type Aggregator[Input any, Mutable any, Partial any, Aggregate any] interface {
	Lift(in Input) Mutable
	CombineMutable(m *Mutable, in Input)
	Freeze(m Mutable) Partial
	Combine(a, b Partial) Partial
	Lower(p Partial) Aggregate
}

// Inverse is an optional capability: an aggregator that can subtract a
// previously combined partial back out. Only aggregators implementing
// Inverse may back the Eager window engine.
type Inverse[Partial any] interface {
	InverseCombine(a, b Partial) Partial
}

// CombineSlice is an optional capability for batch-combining a slice of
// partials in one call, letting an aggregator vectorize the fold instead
// of relying on repeated pairwise Combine calls.
type CombineSlice[Partial any] interface {
	CombineSlice(ps []Partial) Partial
}
