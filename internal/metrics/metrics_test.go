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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDisabledObserveIsNoop(t *testing.T) {
	Disable()
	before := testutil.ToFloat64(insertsTotal)
	ObserveInsert()
	after := testutil.ToFloat64(insertsTotal)
	if after != before {
		t.Fatalf("ObserveInsert while disabled changed counter: %v -> %v", before, after)
	}
}

func TestEnabledCountersIncrement(t *testing.T) {
	Enable()
	t.Cleanup(Disable)

	beforeInsert := testutil.ToFloat64(insertsTotal)
	ObserveInsert()
	if got := testutil.ToFloat64(insertsTotal); got-beforeInsert != 1 {
		t.Fatalf("insertsTotal delta = %v, want 1", got-beforeInsert)
	}

	beforeLate := testutil.ToFloat64(lateTotal)
	ObserveLate()
	if got := testutil.ToFloat64(lateTotal); got-beforeLate != 1 {
		t.Fatalf("lateTotal delta = %v, want 1", got-beforeLate)
	}

	beforeOverflow := testutil.ToFloat64(overflowTotal)
	ObserveOverflow()
	if got := testutil.ToFloat64(overflowTotal); got-beforeOverflow != 1 {
		t.Fatalf("overflowTotal delta = %v, want 1", got-beforeOverflow)
	}

	beforeTick := testutil.ToFloat64(ticksTotal)
	ObserveTick()
	if got := testutil.ToFloat64(ticksTotal); got-beforeTick != 1 {
		t.Fatalf("ticksTotal delta = %v, want 1", got-beforeTick)
	}

	beforeRotation := testutil.ToFloat64(rotationsTotal.WithLabelValues("minutes"))
	ObserveRotation("minutes")
	if got := testutil.ToFloat64(rotationsTotal.WithLabelValues("minutes")); got-beforeRotation != 1 {
		t.Fatalf("rotationsTotal{minutes} delta = %v, want 1", got-beforeRotation)
	}

	beforeWindow := testutil.ToFloat64(windowEmitsTotal)
	ObserveWindowEmit()
	if got := testutil.ToFloat64(windowEmitsTotal); got-beforeWindow != 1 {
		t.Fatalf("windowEmitsTotal delta = %v, want 1", got-beforeWindow)
	}

	SetShardsTracked(7)
	if got := testutil.ToFloat64(shardsTracked); got != 7 {
		t.Fatalf("shardsTracked = %v, want 7", got)
	}
}
