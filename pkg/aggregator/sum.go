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

// Number is the set of types Sum can accumulate.
type Number interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Sum is a reference Aggregator: Input and Aggregate are the numeric type
// itself, Mutable and Partial both collapse to the same running total.
// Sum is invertible via plain subtraction, so it also satisfies Inverse
// and can back the Eager window engine.
type Sum[T Number] struct{}

func (Sum[T]) Lift(in T) T { return in }

func (Sum[T]) CombineMutable(m *T, in T) { *m += in }

func (Sum[T]) Freeze(m T) T { return m }

func (Sum[T]) Combine(a, b T) T { return a + b }

func (Sum[T]) Lower(p T) T { return p }

func (Sum[T]) InverseCombine(a, b T) T { return a - b }

var (
	_ Aggregator[int64, int64, int64, int64] = Sum[int64]{}
	_ Inverse[int64]                         = Sum[int64]{}
)
