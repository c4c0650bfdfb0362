package track

import (
	"math"

	"slipstream/internal/geom"
	"slipstream/internal/shared/types"
)

const (
	// ShoulderWidth is the band beyond the road edge classified as
	// shoulder. Everything past it is runoff; distance always resolves
	// to one of the three surfaces.
	ShoulderWidth = 6.0

	// ternaryIterations fixes the refinement cost of centerline queries.
	ternaryIterations = 16
)

// SurfaceAt classifies the ground under a world point by comparing its
// distance to the track centerline against the locally interpolated
// half-width plus the shoulder band.
func SurfaceAt(p types.Vec2, tr *types.TrackState) types.Surface {
	dist, arc := DistanceToCenter(p, tr)
	halfWidth := halfWidthAtArc(tr, arc)
	switch {
	case dist <= halfWidth:
		return types.SurfaceRoad
	case dist <= halfWidth+ShoulderWidth:
		return types.SurfaceShoulder
	default:
		return types.SurfaceRunoff
	}
}

// DistanceToCenter returns the distance from p to the nearest centerline
// point and that point's arc-length position. A coarse scan over the dense
// centerline samples finds the approximate nearest segment; a fixed-count
// ternary search over the local arc-length neighborhood then converges on
// the true nearest point. The coarse pass keeps the per-tick cost bounded
// and the narrow refinement window avoids the multiple local minima a
// full-loop precision search would face on a closed course.
func DistanceToCenter(p types.Vec2, tr *types.TrackState) (dist, arc float64) {
	samples := tr.Centerline
	bestIdx := 0
	bestSq := math.MaxFloat64
	for i := range samples {
		d := p.Sub(samples[i].Point).LengthSq()
		if d < bestSq {
			bestSq = d
			bestIdx = i
		}
	}

	spacing := tr.TotalLength / float64(len(samples))
	lo := samples[bestIdx].ArcLength - spacing
	hi := samples[bestIdx].ArcLength + spacing

	for i := 0; i < ternaryIterations; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if p.Distance(CenterAt(tr, m1)) < p.Distance(CenterAt(tr, m2)) {
			hi = m2
		} else {
			lo = m1
		}
	}

	arc = tr.ArcTable.WrapDistance((lo + hi) / 2)
	dist = p.Distance(CenterAt(tr, arc))
	return dist, arc
}

// CenterAt evaluates the centerline position at an arc-length distance,
// wrapping the distance onto the closed loop.
func CenterAt(tr *types.TrackState, arc float64) types.Vec2 {
	return geom.SplinePoint(tr.ControlPositions, tr.ArcTable.ParamAtDistance(arc))
}

// TangentAt evaluates the centerline unit tangent at an arc-length
// distance.
func TangentAt(tr *types.TrackState, arc float64) types.Vec2 {
	return geom.SplineTangent(tr.ControlPositions, tr.ArcTable.ParamAtDistance(arc))
}

// HalfWidthAt returns the interpolated road half-width at an arc-length
// distance.
func HalfWidthAt(tr *types.TrackState, arc float64) float64 {
	return halfWidthAtArc(tr, arc)
}

// BoundaryHit is the result of a nearest-boundary query.
type BoundaryHit struct {
	Point        types.Vec2
	Distance     float64
	SegmentIndex int
	// Normal is the unit vector from the boundary toward the query
	// point, which is the track-interior direction for points inside
	// the course.
	Normal types.Vec2
}

// NearestBoundaryPoint scans a closed boundary polyline and returns the
// nearest point on it to p. Degenerate zero-length segments resolve to
// their start point.
func NearestBoundaryPoint(p types.Vec2, boundary []types.Vec2) BoundaryHit {
	best := BoundaryHit{Distance: math.MaxFloat64}

	for i := 0; i+1 < len(boundary); i++ {
		a := boundary[i]
		b := boundary[i+1]
		seg := b.Sub(a)

		var candidate types.Vec2
		lenSq := seg.LengthSq()
		if lenSq <= 0 {
			candidate = a
		} else {
			t := geom.Clamp(p.Sub(a).Dot(seg)/lenSq, 0, 1)
			candidate = a.Add(seg.Scale(t))
		}

		d := p.Distance(candidate)
		if d < best.Distance {
			best = BoundaryHit{Point: candidate, Distance: d, SegmentIndex: i}
		}
	}

	normal := p.Sub(best.Point).Normalize()
	if normal == (types.Vec2{}) {
		// Query point exactly on the wall: fall back to the segment
		// perpendicular.
		a := boundary[best.SegmentIndex]
		b := boundary[best.SegmentIndex+1]
		normal = b.Sub(a).Normalize().PerpCCW()
	}
	best.Normal = normal
	return best
}
