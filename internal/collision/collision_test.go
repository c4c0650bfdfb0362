package collision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slipstream/internal/shared/types"
	"slipstream/internal/track"
)

func testTrack(t *testing.T) *types.TrackState {
	t.Helper()
	tr, err := track.DefaultDefinition().Build()
	require.NoError(t, err)
	return tr
}

func TestDetectWallClearOnCenterline(t *testing.T) {
	tr := testTrack(t)
	sample := tr.Centerline[40]
	hit := DetectWall(sample.Point, 8, tr)
	assert.False(t, hit.Collided)
}

func TestDetectWallAtBoundary(t *testing.T) {
	tr := testTrack(t)
	sample := tr.Centerline[40]
	normal := sample.Tangent.PerpCCW()

	// Circle center 3 units from the wall with radius 8: 5 units deep.
	pos := sample.Point.Add(normal.Scale(sample.HalfWidth - 3))
	hit := DetectWall(pos, 8, tr)
	require.True(t, hit.Collided)
	assert.InDelta(t, 5, hit.Penetration, 0.3)

	// The normal points back toward the track interior.
	assert.Greater(t, hit.Normal.Dot(sample.Point.Sub(hit.ContactPoint)), 0.0)
}

func TestResolveWallNoContactIsIdentity(t *testing.T) {
	car := types.CarState{
		Position: types.Vec2{X: 5, Y: 5},
		Velocity: types.Vec2{X: 40, Y: -3},
		Heading:  0.2,
		YawRate:  0.4,
		Speed:    40.1,
	}
	assert.Equal(t, car, ResolveWall(car, Result{}))
}

func TestResolveWallMovingAwayUnchanged(t *testing.T) {
	car := types.CarState{
		Velocity: types.Vec2{X: 10, Y: 20},
		Speed:    math.Hypot(10, 20),
	}
	hit := Result{
		Collided:    true,
		Penetration: 2,
		Normal:      types.Vec2{Y: 1},
	}
	assert.Equal(t, car, ResolveWall(car, hit))
}

func TestResolveWallDropsNormalVelocity(t *testing.T) {
	car := types.CarState{
		Velocity: types.Vec2{X: 30, Y: -40},
		Speed:    50,
	}
	hit := Result{Collided: true, Penetration: 1.5, Normal: types.Vec2{Y: 1}}

	out := ResolveWall(car, hit)

	// The into-wall component is gone, the tangential one is scaled by
	// wall friction.
	assert.InDelta(t, 0, out.Velocity.Y, 1e-9)
	assert.InDelta(t, 30*WallFriction, out.Velocity.X, 1e-9)
	assert.InDelta(t, out.Velocity.Length(), out.Speed, 1e-9)

	// Push-out moves the car along the normal past the penetration depth.
	assert.InDelta(t, hit.Penetration+PushBuffer, out.Position.Y, 1e-9)
	assert.Equal(t, 0.0, out.Position.X)
}

func TestResolveWallSpeedLossGrowsWithImpactAngle(t *testing.T) {
	const speed = 60.0
	hit := Result{Collided: true, Penetration: 1, Normal: types.Vec2{Y: 1}}

	var speeds []float64
	for _, angleDeg := range []float64{10, 45, 80} {
		angle := angleDeg * math.Pi / 180
		car := types.CarState{
			Velocity: types.Vec2{X: speed * math.Cos(angle), Y: -speed * math.Sin(angle)},
			Speed:    speed,
		}
		out := ResolveWall(car, hit)
		assert.Less(t, out.Speed, speed, "angle %v", angleDeg)
		speeds = append(speeds, out.Speed)
	}

	// Steeper impacts lose strictly more speed.
	assert.Greater(t, speeds[0], speeds[1])
	assert.Greater(t, speeds[1], speeds[2])
}

func TestResolveWallDampsYawAndBlendsHeading(t *testing.T) {
	car := types.CarState{
		Velocity: types.Vec2{X: 20, Y: -30},
		Speed:    math.Hypot(20, 30),
		Heading:  -0.9,
		YawRate:  1.2,
	}
	hit := Result{Collided: true, Penetration: 1, Normal: types.Vec2{Y: 1}}

	out := ResolveWall(car, hit)

	assert.Less(t, math.Abs(out.YawRate), math.Abs(car.YawRate))
	// Heading rotates toward the wall tangent, which here is +X (0 rad).
	assert.Greater(t, out.Heading, car.Heading)
	assert.Less(t, out.Heading, 0.0)
}

func TestDetectThenResolveLeavesCarClear(t *testing.T) {
	tr := testTrack(t)
	sample := tr.Centerline[100]
	normal := sample.Tangent.PerpCCW()

	const radius = 8.0
	car := types.CarState{
		Position: sample.Point.Add(normal.Scale(sample.HalfWidth - 2)),
		Velocity: normal.Scale(50),
		Speed:    50,
	}

	hit := DetectWall(car.Position, radius, tr)
	require.True(t, hit.Collided)
	out := ResolveWall(car, hit)

	after := DetectWall(out.Position, radius, tr)
	assert.False(t, after.Collided, "car still penetrating after resolution: %+v", after)
}
