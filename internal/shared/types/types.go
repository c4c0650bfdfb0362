// Package types holds the state and wire structs shared between the
// simulation core, the bridge server, and the tools. State structs are
// JSON-tagged because the bridge replicates them to external clients and
// the determinism tests compare serialized snapshots byte for byte.
package types

import (
	"encoding/json"
	"fmt"

	"slipstream/internal/geom"
)

// Vec2 is the shared 2D vector type, re-exported from geom so wire structs
// and geometry code agree on one representation.
type Vec2 = geom.Vec2

// Surface classifies the ground beneath a point on the track.
type Surface uint8

const (
	SurfaceRoad Surface = iota
	SurfaceShoulder
	SurfaceRunoff
)

// GripMultiplier returns the tire grip scale for the surface.
func (s Surface) GripMultiplier() float64 {
	switch s {
	case SurfaceRoad:
		return 1.0
	case SurfaceShoulder:
		return 0.7
	case SurfaceRunoff:
		return 0.45
	default:
		return 1.0
	}
}

// String returns the wire name of the surface.
func (s Surface) String() string {
	switch s {
	case SurfaceRoad:
		return "road"
	case SurfaceShoulder:
		return "shoulder"
	case SurfaceRunoff:
		return "runoff"
	default:
		return "road"
	}
}

// MarshalJSON encodes the surface as its wire name.
func (s Surface) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a surface from its wire name.
func (s *Surface) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "road":
		*s = SurfaceRoad
	case "shoulder":
		*s = SurfaceShoulder
	case "runoff":
		*s = SurfaceRunoff
	default:
		return fmt.Errorf("unknown surface %q", name)
	}
	return nil
}

// Input is the raw per-tick control signal. Steer is -1..1, throttle and
// brake 0..1; out-of-range values are tolerated and clamped during
// smoothing.
type Input struct {
	Steer    float64 `json:"steer"`
	Throttle float64 `json:"throttle"`
	Brake    float64 `json:"brake"`
}

// SmoothedInput is the exponentially smoothed control state carried on the
// car, plus the derived speed-attenuated steering angle in radians.
type SmoothedInput struct {
	Steer      float64 `json:"steer"`
	Throttle   float64 `json:"throttle"`
	Brake      float64 `json:"brake"`
	SteerAngle float64 `json:"steer_angle"`
}

// CarState is the car's complete physical state. Each tick produces a
// wholly new value; nothing updates a CarState in place.
type CarState struct {
	Position          Vec2          `json:"position"`
	Velocity          Vec2          `json:"velocity"`
	Heading           float64       `json:"heading"`
	YawRate           float64       `json:"yaw_rate"`
	Speed             float64       `json:"speed"`
	PrevInput         SmoothedInput `json:"prev_input"`
	Surface           Surface       `json:"surface"`
	AccelLongitudinal float64       `json:"accel_longitudinal"`
}

// TimingState tracks checkpoint-gated lap progress. Counters are integer
// ticks only; elapsed time is always tick count times the fixed tick
// duration, never accumulated floating-point dt.
type TimingState struct {
	CurrentLapTicks     int  `json:"current_lap_ticks"`
	BestLapTicks        int  `json:"best_lap_ticks"`
	TotalRaceTicks      int  `json:"total_race_ticks"`
	CurrentLap          int  `json:"current_lap"`
	LastCheckpointIndex int  `json:"last_checkpoint_index"`
	LapComplete         bool `json:"lap_complete"`
}

// ControlPoint is one authored track sample: centerline position plus the
// half-width of the road at that point. The control loop is implicitly
// closed.
type ControlPoint struct {
	Position  Vec2    `json:"position"`
	HalfWidth float64 `json:"halfWidth"`
}

// Checkpoint is a gate segment spanning the track width, perpendicular to
// the direction of travel at its arc-length position.
type Checkpoint struct {
	Left      Vec2    `json:"left"`
	Right     Vec2    `json:"right"`
	Center    Vec2    `json:"center"`
	Direction Vec2    `json:"direction"`
	ArcLength float64 `json:"arc_length"`
}

// CenterSample is one dense centerline sample used for boundary offsetting
// and nearest-point queries.
type CenterSample struct {
	Point     Vec2    `json:"point"`
	Tangent   Vec2    `json:"tangent"`
	HalfWidth float64 `json:"half_width"`
	ArcLength float64 `json:"arc_length"`
}

// TrackState is the immutable built track. Constructed once, then shared
// read-only across every tick and across any number of concurrently
// stepped worlds.
type TrackState struct {
	ControlPoints []ControlPoint `json:"control_points"`
	// ControlPositions caches the control-point positions for spline
	// evaluation so per-tick queries allocate nothing.
	ControlPositions []Vec2 `json:"control_positions"`
	// ControlArcLengths[i] is the arc length of control point i's
	// centerline position, used to interpolate half-widths between
	// neighboring control points.
	ControlArcLengths []float64      `json:"control_arc_lengths"`
	Centerline        []CenterSample `json:"centerline"`
	// InnerBoundary and OuterBoundary are closed polylines (first point
	// repeated at the end). Outer always encloses the larger area.
	InnerBoundary []Vec2              `json:"inner_boundary"`
	OuterBoundary []Vec2              `json:"outer_boundary"`
	Checkpoints   []Checkpoint        `json:"checkpoints"`
	ArcTable      geom.ArcLengthTable `json:"arc_table"`
	TotalLength   float64             `json:"total_length"`
	StartPosition Vec2                `json:"start_position"`
	StartHeading  float64             `json:"start_heading"`
}

// WorldState is the entire observable simulation state and the unit
// exchanged with every external collaborator. The track is carried by
// reference and excluded from snapshot serialization; dynamic state is
// replaced wholesale each tick.
type WorldState struct {
	Tick   uint64      `json:"tick"`
	Car    CarState    `json:"car"`
	Timing TimingState `json:"timing"`
	Track  *TrackState `json:"-"`
}

// BridgeRequest is one client message on the training bridge. Exactly one
// request produces exactly one response; the bridge contract is strictly
// synchronous with no pipelining.
type BridgeRequest struct {
	Type    string          `json:"type"` // reset|step|close
	TrackID string          `json:"trackId,omitempty"`
	Config  json.RawMessage `json:"config,omitempty"`
	// Action is [steer, throttle, brake].
	Action []float64 `json:"action,omitempty"`
}

// BridgeInfo carries auxiliary episode data alongside each observation.
type BridgeInfo struct {
	EpisodeID    string `json:"episode_id"`
	Tick         uint64 `json:"tick"`
	Lap          int    `json:"lap"`
	BestLapTicks int    `json:"best_lap_ticks"`
	Surface      string `json:"surface"`
}

// BridgeResponse is the single reply to a BridgeRequest.
type BridgeResponse struct {
	Type        string      `json:"type"` // reset|step|closed|error
	Observation []float64   `json:"observation,omitempty"`
	Reward      float64     `json:"reward"`
	Terminated  bool        `json:"terminated"`
	Truncated   bool        `json:"truncated"`
	Info        *BridgeInfo `json:"info,omitempty"`
	Message     string      `json:"message,omitempty"`
}
