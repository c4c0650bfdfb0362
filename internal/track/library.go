package track

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"slipstream/internal/shared/types"
)

// Definition is the authoring format for a track: an ordered, implicitly
// closed loop of control points plus the desired checkpoint count. Tracks
// are stored as JSON files, one per track id.
type Definition struct {
	Name        string               `json:"name"`
	Checkpoints int                  `json:"checkpoints"`
	Points      []types.ControlPoint `json:"points"`
}

// ParseDefinition decodes a JSON track definition.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse track definition: %w", err)
	}
	return def, nil
}

// Build constructs the immutable track from the definition.
func (d Definition) Build() (*types.TrackState, error) {
	return Build(d.Points, d.Checkpoints)
}

// LoadFile reads, parses, and builds a track definition file.
func LoadFile(path string) (*types.TrackState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track file: %w", err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, err
	}
	return def.Build()
}

// LoadByID resolves a track id against a directory of definition files
// (<dir>/<id>.json). An empty id loads the built-in default track.
func LoadByID(dir, id string) (*types.TrackState, error) {
	if id == "" {
		return DefaultDefinition().Build()
	}
	return LoadFile(filepath.Join(dir, id+".json"))
}

// DefaultDefinition returns the built-in course: a counterclockwise
// rounded loop with a pinched back straight, wide enough for 12 gates.
func DefaultDefinition() Definition {
	// Control points around an ellipse with radial and width variation
	// so the course has genuine corners and a narrow section.
	const n = 12
	points := make([]types.ControlPoint, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / n
		radiusX := 420.0
		radiusY := 260.0
		// Pinch the far side inward to create a complex corner.
		if i >= 6 && i <= 8 {
			radiusY -= 70
		}
		halfWidth := 40.0
		if i == 7 {
			halfWidth = 30
		}
		points[i] = types.ControlPoint{
			Position: types.Vec2{
				X: radiusX * math.Cos(theta),
				Y: radiusY * math.Sin(theta),
			},
			HalfWidth: halfWidth,
		}
	}
	return Definition{
		Name:        "default",
		Checkpoints: 12,
		Points:      points,
	}
}
