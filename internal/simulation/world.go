// Package simulation composes the track, physics, collision, and timing
// components into the single per-tick state transition the rest of the
// system calls. StepWorld is pure: it never reads a clock, performs I/O,
// or draws randomness, and it never mutates its arguments. Callers own all
// scheduling; one call advances exactly one tick of simulated time, so a
// fixed input sequence replayed from CreateWorld produces byte-identical
// state on every run.
package simulation

import (
	"slipstream/internal/collision"
	"slipstream/internal/physics"
	"slipstream/internal/shared/types"
	"slipstream/internal/timing"
	"slipstream/internal/track"
)

const (
	// TickRate is the fixed simulation frequency. Elapsed time is always
	// tick count times Dt, never accumulated dt.
	TickRate = 60
	Dt       = 1.0 / float64(TickRate)

	// CarRadius is the bounding circle used for wall collision.
	CarRadius = 8.0
)

// CreateWorld places the car at the track's start pose with zeroed
// dynamics and fresh timing. The track is shared by reference; it is
// immutable and may back any number of worlds concurrently.
func CreateWorld(tr *types.TrackState) types.WorldState {
	return types.WorldState{
		Car: types.CarState{
			Position: tr.StartPosition,
			Heading:  tr.StartHeading,
			Surface:  track.SurfaceAt(tr.StartPosition, tr),
		},
		Timing: types.TimingState{
			// -1 arms gate 0 as the first expected crossing.
			LastCheckpointIndex: -1,
		},
		Track: tr,
	}
}

// StepWorld advances the world by one tick in fixed order: classify the
// surface under the car, step the physics on it, detect and resolve wall
// contact, re-classify the surface at the resolved position, then update
// checkpoint timing from the movement segment. The returned state is a
// wholly new value with the track passed through unchanged.
func StepWorld(state types.WorldState, input types.Input) types.WorldState {
	tr := state.Track
	prevPos := state.Car.Position

	surface := track.SurfaceAt(prevPos, tr)
	car := physics.StepCar(state.Car, input, surface, Dt)

	hit := collision.DetectWall(car.Position, CarRadius, tr)
	car = collision.ResolveWall(car, hit)
	car.Surface = track.SurfaceAt(car.Position, tr)

	return types.WorldState{
		Tick:   state.Tick + 1,
		Car:    car,
		Timing: timing.Update(state.Timing, prevPos, car.Position, tr.Checkpoints),
		Track:  tr,
	}
}
