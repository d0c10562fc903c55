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

package wheel

import (
	"testing"

	"uwheel/pkg/aggregator"
)

func sumWheel(logicalCap int, drillDown bool) *Wheel[uint32, uint32, uint32, uint32] {
	return New[uint32, uint32, uint32, uint32](aggregator.Sum[uint32]{}, logicalCap, drillDown)
}

func TestInsertHeadAndInterval(t *testing.T) {
	w := sumWheel(5, false)
	w.InsertHead(3)
	w.Tick() // finalize the slot InsertHead just wrote
	if got := w.Interval(1); !got.Valid || got.Value != 3 {
		t.Fatalf("Interval(1) = %+v, want 3", got)
	}
	if got := w.Total(); !got.Valid || got.Value != 3 {
		t.Fatalf("Total() = %+v, want 3", got)
	}
}

func TestTickRotation(t *testing.T) {
	w := sumWheel(4, false)
	for i := 0; i < 4; i++ {
		w.InsertHead(uint32(i + 1)) // 1,2,3,4
		_, rotated := w.Tick()
		if i < 3 && rotated {
			t.Fatalf("rotated early at tick %d", i)
		}
		if i == 3 && !rotated {
			t.Fatalf("expected rotation on final tick")
		}
	}
	if w.RotationCount() != 0 {
		t.Fatalf("RotationCount after full rotation = %d, want 0", w.RotationCount())
	}
}

func TestIntervalOutOfRange(t *testing.T) {
	w := sumWheel(5, false)
	if got := w.Interval(6); got.Valid {
		t.Fatalf("Interval(6) on cap-5 wheel should be invalid, got %+v", got)
	}
}

func TestIntervalOrTotalFallsBackBeforeRotation(t *testing.T) {
	w := sumWheel(10, false)
	w.InsertHead(7)
	w.Tick() // rotationCount = 1
	got := w.IntervalOrTotal(5)
	// rotationCount is 1, below the requested 5, so IntervalOrTotal falls
	// back to the wheel's Total rather than Interval(5).
	if !got.Valid {
		t.Fatalf("expected a value")
	}
}

func TestDrillDownRecordsBreakdown(t *testing.T) {
	child := sumWheel(4, false)
	parent := sumWheel(4, true)

	for i := 0; i < 4; i++ {
		child.InsertHead(1)
		rd, rotated := child.Tick()
		if rotated {
			parent.InsertHead(rd.Folded.Value)
			parent.StoreDrillDown(rd.Breakdown)
			parent.Tick() // finalize the slot so DrillDown(1) can see it
		}
	}
	bd, ok := parent.DrillDown(1)
	if !ok {
		t.Fatalf("expected drill-down breakdown present")
	}
	var sum uint32
	for _, s := range bd {
		if s.Valid {
			sum += s.Value
		}
	}
	if sum != 4 {
		t.Fatalf("breakdown sum = %d, want 4", sum)
	}
}

func TestMergeSlotWise(t *testing.T) {
	a := sumWheel(4, false)
	b := sumWheel(4, false)
	a.InsertHead(1)
	a.Tick()
	b.InsertHead(2)
	b.Tick()
	a.Merge(b)
	got := a.Interval(1)
	if !got.Valid || got.Value != 3 {
		t.Fatalf("Interval(1) after merge = %+v, want 3", got)
	}
}
