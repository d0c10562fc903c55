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

// Ordered is the set of types Min and Max can compare.
type Ordered interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64 | ~string
}

// Max tracks the largest value seen. It has no inverse: removing the
// current maximum from a partial does not in general recover the next
// largest value, so Max deliberately does not implement Inverse.
type Max[T Ordered] struct{}

func (Max[T]) Lift(in T) T { return in }

func (Max[T]) CombineMutable(m *T, in T) {
	if in > *m {
		*m = in
	}
}

func (Max[T]) Freeze(m T) T { return m }

func (Max[T]) Combine(a, b T) T {
	if b > a {
		return b
	}
	return a
}

func (Max[T]) Lower(p T) T { return p }

// Min tracks the smallest value seen. Like Max, it has no inverse.
type Min[T Ordered] struct{}

func (Min[T]) Lift(in T) T { return in }

func (Min[T]) CombineMutable(m *T, in T) {
	if in < *m {
		*m = in
	}
}

func (Min[T]) Freeze(m T) T { return m }

func (Min[T]) Combine(a, b T) T {
	if b < a {
		return b
	}
	return a
}

func (Min[T]) Lower(p T) T { return p }

var (
	_ Aggregator[int64, int64, int64, int64] = Max[int64]{}
	_ Aggregator[int64, int64, int64, int64] = Min[int64]{}
)
