package geom

// parallelEpsilon treats near-parallel segment pairs as non-intersecting.
const parallelEpsilon = 1e-12

// SegmentIntersection returns the intersection point of segments a1-a2 and
// b1-b2, solved in parametric form via the 2D cross product. Parallel or
// coincident segments report no intersection.
func SegmentIntersection(a1, a2, b1, b2 Vec2) (Vec2, bool) {
	da := a2.Sub(a1)
	db := b2.Sub(b1)

	denom := da.Cross(db)
	if denom > -parallelEpsilon && denom < parallelEpsilon {
		return Vec2{}, false
	}

	ab := b1.Sub(a1)
	t := ab.Cross(db) / denom
	s := ab.Cross(da) / denom
	if t < 0 || t > 1 || s < 0 || s > 1 {
		return Vec2{}, false
	}
	return a1.Add(da.Scale(t)), true
}
