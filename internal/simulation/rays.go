package simulation

import (
	"math"

	"slipstream/internal/geom"
	"slipstream/internal/shared/types"
)

// rayAnglesDeg is the forward fan used for observations, relative to the
// car's heading.
var rayAnglesDeg = [...]float64{-90, -60, -35, -15, 0, 15, 35, 60, 90}

const (
	// NumRays is the number of wall-distance rays in an observation.
	NumRays = len(rayAnglesDeg)
	// MaxRayDistance caps and normalizes ray lengths.
	MaxRayDistance = 300.0
)

// CastRays casts the observation fan from pos against both boundary
// polylines and returns distances normalized by MaxRayDistance: values
// near 0 mean a wall is close, 1.0 means open road.
func CastRays(pos types.Vec2, heading float64, tr *types.TrackState) []float64 {
	out := make([]float64, NumRays)
	for i, deg := range rayAnglesDeg {
		angle := heading + deg*math.Pi/180
		sin, cos := math.Sincos(angle)
		end := pos.Add(types.Vec2{X: cos, Y: sin}.Scale(MaxRayDistance))

		nearest := MaxRayDistance
		nearest = nearestRayHit(pos, end, tr.InnerBoundary, nearest)
		nearest = nearestRayHit(pos, end, tr.OuterBoundary, nearest)
		out[i] = nearest / MaxRayDistance
	}
	return out
}

func nearestRayHit(origin, end types.Vec2, boundary []types.Vec2, nearest float64) float64 {
	for i := 0; i+1 < len(boundary); i++ {
		if hit, ok := geom.SegmentIntersection(origin, end, boundary[i], boundary[i+1]); ok {
			if d := origin.Distance(hit); d < nearest {
				nearest = d
			}
		}
	}
	return nearest
}
