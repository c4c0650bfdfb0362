// Package timing detects ordered checkpoint-gate crossings and maintains
// the lap counters. All counters are integer ticks; nothing here
// accumulates floating-point time.
package timing

import (
	"slipstream/internal/geom"
	"slipstream/internal/shared/types"
)

// GateCrossed reports whether the movement segment from prev to curr
// crosses the gate in its forward direction. Backward and parallel
// crossings do not count.
func GateCrossed(prev, curr types.Vec2, gate types.Checkpoint) bool {
	if curr.Sub(prev).Dot(gate.Direction) <= 0 {
		return false
	}
	_, ok := geom.SegmentIntersection(prev, curr, gate.Left, gate.Right)
	return ok
}

// Update advances the timing state by one tick. Only the single next
// expected gate is tested: out-of-order or skipped gates never advance
// progress. Crossing gate 0 again after the last gate closes the lap,
// updating the lap counter and the best-lap record. A fresh TimingState
// starts with LastCheckpointIndex = -1 so the opening crossing of gate 0
// arms the lap rather than completing one.
func Update(tm types.TimingState, prev, curr types.Vec2, gates []types.Checkpoint) types.TimingState {
	tm.CurrentLapTicks++
	tm.TotalRaceTicks++
	tm.LapComplete = false
	if len(gates) == 0 {
		return tm
	}

	next := tm.LastCheckpointIndex + 1
	closing := false
	if next >= len(gates) {
		next = 0
		closing = true
	}

	if !GateCrossed(prev, curr, gates[next]) {
		return tm
	}

	if closing {
		tm.CurrentLap++
		tm.LapComplete = true
		if tm.BestLapTicks == 0 || tm.CurrentLapTicks < tm.BestLapTicks {
			tm.BestLapTicks = tm.CurrentLapTicks
		}
		tm.CurrentLapTicks = 0
	}
	tm.LastCheckpointIndex = next
	return tm
}
