package simulation

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"slipstream/internal/geom"
	"slipstream/internal/shared/types"
	"slipstream/internal/track"
)

func newTestWorld(t *testing.T) types.WorldState {
	t.Helper()
	tr, err := track.DefaultDefinition().Build()
	if err != nil {
		t.Fatalf("build default track: %v", err)
	}
	return CreateWorld(tr)
}

func TestCreateWorldStartsAtStartPose(t *testing.T) {
	state := newTestWorld(t)

	if state.Car.Position != state.Track.StartPosition {
		t.Fatalf("car starts at %v, want %v", state.Car.Position, state.Track.StartPosition)
	}
	if state.Car.Heading != state.Track.StartHeading {
		t.Fatalf("car heading %f, want %f", state.Car.Heading, state.Track.StartHeading)
	}
	if state.Car.Speed != 0 {
		t.Fatalf("car should start at rest, got speed %f", state.Car.Speed)
	}
	if state.Car.Surface != types.SurfaceRoad {
		t.Fatalf("start position should be on road, got %v", state.Car.Surface)
	}
	if state.Timing.LastCheckpointIndex != -1 {
		t.Fatalf("fresh timing should expect gate 0, got last index %d", state.Timing.LastCheckpointIndex)
	}
}

// replayInput is a fixed, moderately aggressive input script used by the
// determinism tests.
func replayInput(tick int) types.Input {
	in := types.Input{
		Steer:    0.5 * math.Sin(float64(tick)*0.017),
		Throttle: 0.9,
	}
	if tick%300 < 20 {
		in.Throttle = 0
		in.Brake = 1
	}
	return in
}

func TestStepWorldDeterministicReplay(t *testing.T) {
	const ticks = 2000

	run := func() []byte {
		state := newTestWorld(t)
		for i := 0; i < ticks; i++ {
			state = StepWorld(state, replayInput(i))
		}
		snapshot, err := json.Marshal(state)
		if err != nil {
			t.Fatalf("marshal state: %v", err)
		}
		return snapshot
	}

	first := run()
	for i := 0; i < 4; i++ {
		if got := run(); !bytes.Equal(first, got) {
			t.Fatalf("replay %d diverged:\nfirst: %s\ngot:   %s", i, first, got)
		}
	}
}

func TestStepWorldIsPure(t *testing.T) {
	state := newTestWorld(t)
	for i := 0; i < 50; i++ {
		state = StepWorld(state, types.Input{Throttle: 1, Steer: 0.2})
	}

	input := types.Input{Throttle: 0.7, Steer: -0.4, Brake: 0.1}
	before, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}

	a := StepWorld(state, input)
	b := StepWorld(state, input)

	after, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("StepWorld mutated its argument:\nbefore: %s\nafter:  %s", before, after)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("equal arguments produced different results:\na: %+v\nb: %+v", a, b)
	}
	if a.Tick != state.Tick+1 {
		t.Fatalf("tick advanced by %d, want 1", a.Tick-state.Tick)
	}
}

func TestWorldsShareTrackIndependently(t *testing.T) {
	tr, err := track.DefaultDefinition().Build()
	if err != nil {
		t.Fatalf("build default track: %v", err)
	}

	a := CreateWorld(tr)
	b := CreateWorld(tr)
	for i := 0; i < 500; i++ {
		a = StepWorld(a, replayInput(i))
		b = StepWorld(b, replayInput(i))
	}

	snapA, _ := json.Marshal(a)
	snapB, _ := json.Marshal(b)
	if !bytes.Equal(snapA, snapB) {
		t.Fatalf("two worlds on one shared track diverged:\na: %s\nb: %s", snapA, snapB)
	}
	if a.Track != tr || b.Track != tr {
		t.Fatal("worlds should carry the same track pointer through stepping")
	}
}

// centerlineDriver is a simple proportional controller that follows the
// track: steer against heading error and lateral offset, modest throttle.
func centerlineDriver(state types.WorldState) types.Input {
	tr := state.Track
	dist, arc := track.DistanceToCenter(state.Car.Position, tr)
	tangent := track.TangentAt(tr, arc)

	headingErr := geom.WrapAngle(state.Car.Heading - math.Atan2(tangent.Y, tangent.X))

	// Signed offset: positive when the car is left of the centerline.
	side := 1.0
	if tangent.Cross(state.Car.Position.Sub(track.CenterAt(tr, arc))) < 0 {
		side = -1
	}

	return types.Input{
		Steer:    geom.Clamp(-1.8*headingErr-0.02*side*dist, -1, 1),
		Throttle: 0.35,
	}
}

func TestCarProgressesThroughGates(t *testing.T) {
	state := newTestWorld(t)

	lastIndex := -1
	for i := 0; i < 6000; i++ {
		state = StepWorld(state, centerlineDriver(state))
		if state.Timing.LastCheckpointIndex > lastIndex {
			lastIndex = state.Timing.LastCheckpointIndex
		}
	}

	if lastIndex < 1 {
		t.Fatalf("driver never progressed past gate 0 in 6000 ticks (last index %d, pos %v, speed %f)",
			state.Timing.LastCheckpointIndex, state.Car.Position, state.Car.Speed)
	}
	if state.Car.Surface == types.SurfaceRunoff {
		t.Fatalf("centerline driver ended up in the runoff at %v", state.Car.Position)
	}
}

func TestCarStaysWithinCourse(t *testing.T) {
	state := newTestWorld(t)

	// Deliberately bad driving: full throttle with a slow steering sweep,
	// guaranteed to hit walls. The car must stay inside the course and
	// the state must stay finite.
	for i := 0; i < 4000; i++ {
		in := types.Input{
			Steer:    math.Sin(float64(i) * 0.005),
			Throttle: 1,
		}
		state = StepWorld(state, in)

		p := state.Car.Position
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Fatalf("non-finite position at tick %d: %v", i, p)
		}
		if math.IsNaN(state.Car.Speed) {
			t.Fatalf("non-finite speed at tick %d", i)
		}

		dist, _ := track.DistanceToCenter(p, state.Track)
		maxDist := 40.0 + track.ShoulderWidth // widest authored half-width plus shoulder
		if dist > maxDist+CarRadius {
			t.Fatalf("car escaped the course at tick %d: dist %f, pos %v", i, dist, p)
		}
	}
}

func TestObservationLayoutAndBounds(t *testing.T) {
	state := newTestWorld(t)
	for i := 0; i < 200; i++ {
		state = StepWorld(state, types.Input{Throttle: 0.6, Steer: 0.1})
	}

	obs := BuildObservation(state)
	if len(obs) != ObservationSize {
		t.Fatalf("observation length %d, want %d", len(obs), ObservationSize)
	}
	for i := 0; i < NumRays; i++ {
		if obs[i] < 0 || obs[i] > 1 {
			t.Fatalf("ray %d out of range: %f", i, obs[i])
		}
	}
	if obs[NumRays] < 0 || obs[NumRays] > 1 {
		t.Fatalf("speed component out of range: %f", obs[NumRays])
	}
	if obs[NumRays+1] < -1 || obs[NumRays+1] > 1 {
		t.Fatalf("heading error out of range: %f", obs[NumRays+1])
	}
	if obs[NumRays+2] < -1 || obs[NumRays+2] > 1 {
		t.Fatalf("steer component out of range: %f", obs[NumRays+2])
	}
	if obs[NumRays+3] < 0 || obs[NumRays+3] > 1 {
		t.Fatalf("progress component out of range: %f", obs[NumRays+3])
	}
	if obs[NumRays+4] < 0 || obs[NumRays+4] > 1 {
		t.Fatalf("centerline offset out of range: %f", obs[NumRays+4])
	}
}

func TestCastRaysSeeWalls(t *testing.T) {
	state := newTestWorld(t)
	rays := CastRays(state.Car.Position, state.Car.Heading, state.Track)

	if len(rays) != NumRays {
		t.Fatalf("ray count %d, want %d", len(rays), NumRays)
	}

	// The side rays point across the track; with a 40-unit half-width both
	// must hit a wall well inside the 300-unit range.
	if rays[0] >= 1 || rays[NumRays-1] >= 1 {
		t.Fatalf("side rays should hit the walls: left %f, right %f", rays[0], rays[NumRays-1])
	}
}
