package simulation

import (
	"math"

	"slipstream/internal/geom"
	"slipstream/internal/physics"
	"slipstream/internal/shared/types"
	"slipstream/internal/track"
)

// ObservationSize is the length of the observation vector handed to the
// training client: NumRays normalized wall distances followed by speed,
// heading error, steer, lap progress, and centerline offset.
const ObservationSize = NumRays + 5

// BuildObservation derives the normalized observation vector from a world
// state. Layout:
//
//	[0..8]  ray distances, [0, 1]
//	[9]     speed / max speed, [0, 1]
//	[10]    heading error vs local track tangent, [-1, 1]
//	[11]    smoothed steer, [-1, 1]
//	[12]    lap progress by arc length, [0, 1]
//	[13]    centerline offset / local half-width, [0, 1]
func BuildObservation(state types.WorldState) []float64 {
	tr := state.Track
	car := state.Car

	obs := make([]float64, 0, ObservationSize)
	obs = append(obs, CastRays(car.Position, car.Heading, tr)...)

	obs = append(obs, geom.Clamp(car.Speed/physics.MaxSpeed, 0, 1))

	dist, arc := track.DistanceToCenter(car.Position, tr)
	tangent := track.TangentAt(tr, arc)
	headingErr := geom.WrapAngle(car.Heading - math.Atan2(tangent.Y, tangent.X))
	obs = append(obs, headingErr/math.Pi)

	obs = append(obs, car.PrevInput.Steer)
	obs = append(obs, arc/tr.TotalLength)

	halfWidth := track.HalfWidthAt(tr, arc)
	obs = append(obs, geom.Clamp(dist/halfWidth, 0, 1))
	return obs
}
