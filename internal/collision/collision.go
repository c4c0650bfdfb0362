// Package collision detects penetration of the car's bounding circle into
// the track boundary polylines and computes the sliding response: the
// normal velocity component is discarded (no bounce), the tangential
// component is scaled by wall friction, heading and yaw rate are blended
// toward the wall by an amount that grows with impact severity, and the
// position is pushed back inside the course.
package collision

import (
	"math"

	"slipstream/internal/geom"
	"slipstream/internal/shared/types"
	"slipstream/internal/track"
)

const (
	// WallFriction scales the surviving tangential velocity.
	WallFriction = 0.85
	// PushBuffer is added to the penetration depth when moving the car
	// back inside, so the next tick does not start re-penetrated.
	PushBuffer = 0.5
	// HeadingBlendScale and MaxHeadingBlend control how strongly an
	// impact rotates the car toward the wall tangent.
	HeadingBlendScale = 1.2
	MaxHeadingBlend   = 0.35
	// YawDampScale and MaxYawDamp bleed off yaw rate on impact.
	YawDampScale = 2.0
	MaxYawDamp   = 0.9
)

// Result describes one wall contact. Produced and consumed within a single
// tick.
type Result struct {
	Collided     bool       `json:"collided"`
	Penetration  float64    `json:"penetration"`
	Normal       types.Vec2 `json:"normal"`
	ContactPoint types.Vec2 `json:"contact_point"`
}

// DetectWall tests the car's bounding circle against both boundary
// polylines and reports the deepest contact. The normal points from the
// wall into the track interior.
func DetectWall(pos types.Vec2, radius float64, tr *types.TrackState) Result {
	hit := track.NearestBoundaryPoint(pos, tr.InnerBoundary)
	if outer := track.NearestBoundaryPoint(pos, tr.OuterBoundary); outer.Distance < hit.Distance {
		hit = outer
	}

	penetration := radius - hit.Distance
	if penetration <= 0 {
		return Result{}
	}
	return Result{
		Collided:     true,
		Penetration:  penetration,
		Normal:       hit.Normal,
		ContactPoint: hit.Point,
	}
}

// ResolveWall applies the sliding response. The car is returned unchanged
// when there is no contact or when its velocity already points away from
// the wall. Speed loss is a continuous function of impact angle: the
// shallower the hit, the more tangential speed survives.
func ResolveWall(car types.CarState, hit Result) types.CarState {
	if !hit.Collided {
		return car
	}
	normalSpeed := car.Velocity.Dot(hit.Normal)
	if normalSpeed >= 0 {
		return car
	}

	tangential := car.Velocity.Sub(hit.Normal.Scale(normalSpeed))
	totalSpeed := car.Velocity.Length()

	// Impact severity from the tangential/total speed ratio: 0 for a
	// perfectly glancing hit, 1 for head-on.
	severity := 0.0
	if totalSpeed > 1e-9 {
		severity = 1 - tangential.Length()/totalSpeed
	}

	tangential = tangential.Scale(WallFriction)

	heading := car.Heading
	if tangential.LengthSq() > 1e-12 {
		wallHeading := math.Atan2(tangential.Y, tangential.X)
		blend := math.Min(severity*HeadingBlendScale, MaxHeadingBlend)
		heading = geom.LerpAngle(heading, wallHeading, blend)
	}

	yawRate := car.YawRate * (1 - math.Min(severity*YawDampScale, MaxYawDamp))
	position := car.Position.Add(hit.Normal.Scale(hit.Penetration + PushBuffer))

	out := car
	out.Position = position
	out.Velocity = tangential
	out.Speed = tangential.Length()
	out.Heading = heading
	out.YawRate = yawRate
	return out
}
