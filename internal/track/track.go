// Package track builds immutable track state from authored control points
// and answers geometric queries against it: surface classification,
// distance to the centerline, and nearest boundary points. The package
// follows the split used across the codebase: data structs live in
// shared/types, behavior lives here as functions over those structs.
package track

import (
	"errors"
	"fmt"
	"math"

	"slipstream/internal/geom"
	"slipstream/internal/shared/types"
)

// ErrInvalidTrackDefinition is returned for malformed authored input:
// fewer than 3 control points, non-positive widths, no checkpoints, or
// geometry so degenerate the boundary winding invariant cannot hold.
var ErrInvalidTrackDefinition = errors.New("invalid track definition")

const (
	// minCenterlineSamples bounds the dense sampling from below so short
	// tracks still get smooth boundaries.
	minCenterlineSamples = 200
	// samplesPerControlSegment scales dense sampling with track size.
	samplesPerControlSegment = 40
)

// Build constructs a TrackState from an ordered, implicitly closed control
// loop. The result is immutable: nothing in the simulation writes through
// it, so one track may back any number of concurrently stepped worlds.
func Build(controlPoints []types.ControlPoint, checkpointCount int) (*types.TrackState, error) {
	if len(controlPoints) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 control points, got %d",
			ErrInvalidTrackDefinition, len(controlPoints))
	}
	if checkpointCount < 1 {
		return nil, fmt.Errorf("%w: need at least 1 checkpoint, got %d",
			ErrInvalidTrackDefinition, checkpointCount)
	}
	for i, cp := range controlPoints {
		if cp.HalfWidth <= 0 {
			return nil, fmt.Errorf("%w: control point %d has non-positive half-width %g",
				ErrInvalidTrackDefinition, i, cp.HalfWidth)
		}
	}

	positions := make([]types.Vec2, len(controlPoints))
	for i, cp := range controlPoints {
		positions[i] = cp.Position
	}

	arcTable := geom.BuildArcLengthTable(positions, geom.DefaultArcSamplesPerSegment)
	if arcTable.Total <= 0 {
		return nil, fmt.Errorf("%w: control loop has zero length", ErrInvalidTrackDefinition)
	}

	// Arc length of each control point, for width interpolation. Control
	// point i sits at spline parameter i, which is table sample
	// i*samplesPerSegment.
	controlArcs := make([]float64, len(controlPoints))
	for i := range controlPoints {
		controlArcs[i] = arcTable.Cumulative[i*geom.DefaultArcSamplesPerSegment]
	}

	tr := &types.TrackState{
		ControlPoints:     controlPoints,
		ControlPositions:  positions,
		ControlArcLengths: controlArcs,
		ArcTable:          arcTable,
		TotalLength:       arcTable.Total,
	}

	sampleCount := len(controlPoints) * samplesPerControlSegment
	if sampleCount < minCenterlineSamples {
		sampleCount = minCenterlineSamples
	}

	tr.Centerline = make([]types.CenterSample, sampleCount)
	inner := make([]types.Vec2, 0, sampleCount+1)
	outer := make([]types.Vec2, 0, sampleCount+1)

	for i := 0; i < sampleCount; i++ {
		arc := arcTable.Total * float64(i) / float64(sampleCount)
		param := arcTable.ParamAtDistance(arc)
		point := geom.SplinePoint(positions, param)
		tangent := geom.SplineTangent(positions, param)
		halfWidth := halfWidthAtArc(tr, arc)
		normal := tangent.PerpCCW()

		tr.Centerline[i] = types.CenterSample{
			Point:     point,
			Tangent:   tangent,
			HalfWidth: halfWidth,
			ArcLength: arc,
		}
		outer = append(outer, point.Add(normal.Scale(halfWidth)))
		inner = append(inner, point.Sub(normal.Scale(halfWidth)))
	}

	// Close both polylines explicitly.
	inner = append(inner, inner[0])
	outer = append(outer, outer[0])

	// Winding normalization: the authored loop may run clockwise or
	// counterclockwise, which flips which offset side encloses more
	// area. The invariant "outer encloses the larger area" must hold
	// regardless, so swap if needed and verify.
	if math.Abs(signedArea(outer)) <= math.Abs(signedArea(inner)) {
		inner, outer = outer, inner
	}
	if math.Abs(signedArea(outer)) <= math.Abs(signedArea(inner)) {
		return nil, fmt.Errorf("%w: boundary areas do not separate (self-intersecting loop?)",
			ErrInvalidTrackDefinition)
	}
	tr.InnerBoundary = inner
	tr.OuterBoundary = outer

	tr.Checkpoints = make([]types.Checkpoint, checkpointCount)
	for k := 0; k < checkpointCount; k++ {
		arc := arcTable.Total * float64(k) / float64(checkpointCount)
		param := arcTable.ParamAtDistance(arc)
		center := geom.SplinePoint(positions, param)
		tangent := geom.SplineTangent(positions, param)
		halfWidth := halfWidthAtArc(tr, arc)
		normal := tangent.PerpCCW()

		tr.Checkpoints[k] = types.Checkpoint{
			Left:      center.Add(normal.Scale(halfWidth)),
			Right:     center.Sub(normal.Scale(halfWidth)),
			Center:    center,
			Direction: tangent,
			ArcLength: arc,
		}
	}

	startTangent := geom.SplineTangent(positions, 0)
	tr.StartPosition = geom.SplinePoint(positions, 0)
	tr.StartHeading = math.Atan2(startTangent.Y, startTangent.X)

	return tr, nil
}

// halfWidthAtArc interpolates the authored half-widths by arc-length
// fraction between the two neighboring control points.
func halfWidthAtArc(tr *types.TrackState, arc float64) float64 {
	arc = tr.ArcTable.WrapDistance(arc)
	n := len(tr.ControlArcLengths)

	// Last control point whose arc position is <= arc.
	idx := n - 1
	for i := 1; i < n; i++ {
		if tr.ControlArcLengths[i] > arc {
			idx = i - 1
			break
		}
	}

	next := geom.WrapIndex(idx+1, n)
	span := tr.ArcTable.Total - tr.ControlArcLengths[idx]
	if next > idx {
		span = tr.ControlArcLengths[next] - tr.ControlArcLengths[idx]
	}
	if span <= 0 {
		return tr.ControlPoints[idx].HalfWidth
	}
	frac := (arc - tr.ControlArcLengths[idx]) / span
	return geom.Lerp(tr.ControlPoints[idx].HalfWidth, tr.ControlPoints[next].HalfWidth, frac)
}

// signedArea returns the shoelace area of a closed polyline. Positive for
// counterclockwise winding.
func signedArea(poly []types.Vec2) float64 {
	area := 0.0
	for i := 0; i+1 < len(poly); i++ {
		area += poly[i].Cross(poly[i+1])
	}
	return area / 2
}
