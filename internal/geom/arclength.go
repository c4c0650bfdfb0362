package geom

import (
	"math"
	"sort"
)

// DefaultArcSamplesPerSegment is the documented sampling density used when
// building arc-length tables for track construction.
const DefaultArcSamplesPerSegment = 20

// ArcLengthTable maps distance traveled along a closed spline loop to
// spline parameter and back. Raw spline-parameter steps are not
// distance-uniform, so every "move N units along the track" query goes
// through this table. Built once per track, read-only afterwards.
type ArcLengthTable struct {
	// Cumulative[i] is the arc length at Params[i]. Monotonically
	// non-decreasing, starting at 0.
	Cumulative []float64 `json:"cumulative"`
	// Params[i] is the spline parameter of sample i.
	Params []float64 `json:"params"`
	// Total is the full loop length.
	Total float64 `json:"total"`
}

// BuildArcLengthTable samples the closed loop at samplesPerSegment points
// per control segment and accumulates Euclidean chord length.
func BuildArcLengthTable(points []Vec2, samplesPerSegment int) ArcLengthTable {
	if samplesPerSegment < 1 {
		samplesPerSegment = DefaultArcSamplesPerSegment
	}
	n := len(points)
	total := n * samplesPerSegment

	table := ArcLengthTable{
		Cumulative: make([]float64, 0, total+1),
		Params:     make([]float64, 0, total+1),
	}

	prev := SplinePoint(points, 0)
	length := 0.0
	table.Cumulative = append(table.Cumulative, 0)
	table.Params = append(table.Params, 0)

	for i := 1; i <= total; i++ {
		param := float64(i) / float64(samplesPerSegment)
		p := SplinePoint(points, param)
		length += prev.Distance(p)
		table.Cumulative = append(table.Cumulative, length)
		table.Params = append(table.Params, param)
		prev = p
	}
	table.Total = length
	return table
}

// WrapDistance maps any distance, including negative and overflowing
// values, into [0, Total) on the closed loop.
func (t ArcLengthTable) WrapDistance(d float64) float64 {
	if t.Total <= 0 {
		return 0
	}
	d = math.Mod(d, t.Total)
	if d < 0 {
		d += t.Total
	}
	return d
}

// ParamAtDistance returns the spline parameter at the given arc-length
// distance. The distance is wrapped into [0, Total); lookup is a binary
// search over the cumulative table with linear interpolation between the
// bracketing samples.
func (t ArcLengthTable) ParamAtDistance(d float64) float64 {
	d = t.WrapDistance(d)

	// First index with Cumulative[i] >= d.
	idx := sort.Search(len(t.Cumulative), func(i int) bool {
		return t.Cumulative[i] >= d
	})
	if idx <= 0 {
		return t.Params[0]
	}
	if idx >= len(t.Cumulative) {
		return t.Params[len(t.Params)-1]
	}

	lo, hi := t.Cumulative[idx-1], t.Cumulative[idx]
	span := hi - lo
	if span <= 0 {
		return t.Params[idx]
	}
	frac := (d - lo) / span
	return Lerp(t.Params[idx-1], t.Params[idx], frac)
}
