package geom

import "math"

// knotEpsilon keeps centripetal knot intervals strictly positive when two
// control points coincide.
const knotEpsilon = 1e-6

// tangentStep is the parameter offset used for finite-difference tangents.
const tangentStep = 1e-4

// WrapIndex maps any integer onto [0, n) for closed-loop indexing. All
// spline and track code goes through this helper instead of repeating
// (i+1) % n arithmetic inline, which breaks for negative offsets.
func WrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// CatmullRom evaluates a centripetal (alpha = 0.5) Catmull-Rom segment
// between p1 and p2 at local parameter t in [0, 1], with p0 and p3 as the
// neighboring control points. The centripetal parameterization is used
// because uniform and chordal variants can produce cusps or
// self-intersections on sharp authored corners.
//
// Uses the Barry-Goldman pyramidal formulation.
func CatmullRom(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	t0 := 0.0
	t1 := t0 + centripetalKnot(p0, p1)
	t2 := t1 + centripetalKnot(p1, p2)
	t3 := t2 + centripetalKnot(p2, p3)

	u := Lerp(t1, t2, t)

	a1 := pyramidLerp(p0, p1, t0, t1, u)
	a2 := pyramidLerp(p1, p2, t1, t2, u)
	a3 := pyramidLerp(p2, p3, t2, t3, u)
	b1 := pyramidLerp(a1, a2, t0, t2, u)
	b2 := pyramidLerp(a2, a3, t1, t3, u)
	return pyramidLerp(b1, b2, t1, t2, u)
}

func centripetalKnot(a, b Vec2) float64 {
	d := math.Sqrt(a.Distance(b))
	if d < knotEpsilon {
		return knotEpsilon
	}
	return d
}

func pyramidLerp(a, b Vec2, ta, tb, u float64) Vec2 {
	if tb-ta < knotEpsilon {
		return a
	}
	w := (u - ta) / (tb - ta)
	return LerpVec(a, b, w)
}

// SplinePoint evaluates the closed Catmull-Rom loop through points at the
// given parameter. Parameter i.f lies on the segment from points[i] to
// points[i+1] at local fraction f; values outside [0, n) wrap around.
func SplinePoint(points []Vec2, param float64) Vec2 {
	n := len(points)
	seg := int(math.Floor(param))
	t := param - float64(seg)
	i := WrapIndex(seg, n)

	p0 := points[WrapIndex(i-1, n)]
	p1 := points[i]
	p2 := points[WrapIndex(i+1, n)]
	p3 := points[WrapIndex(i+2, n)]
	return CatmullRom(p0, p1, p2, p3, t)
}

// SplineTangent returns the unit tangent of the closed loop at param,
// computed by central finite difference. Returns the zero vector only for
// degenerate loops where neighboring samples coincide.
func SplineTangent(points []Vec2, param float64) Vec2 {
	ahead := SplinePoint(points, param+tangentStep)
	behind := SplinePoint(points, param-tangentStep)
	return ahead.Sub(behind).Normalize()
}
