package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceWireNames(t *testing.T) {
	for s, name := range map[Surface]string{
		SurfaceRoad:     "road",
		SurfaceShoulder: "shoulder",
		SurfaceRunoff:   "runoff",
	} {
		data, err := json.Marshal(s)
		require.NoError(t, err)
		assert.Equal(t, `"`+name+`"`, string(data))

		var back Surface
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, s, back)
	}

	var s Surface
	assert.Error(t, json.Unmarshal([]byte(`"gravel"`), &s))
}

func TestSurfaceGripOrdering(t *testing.T) {
	assert.Equal(t, 1.0, SurfaceRoad.GripMultiplier())
	assert.Greater(t, SurfaceRoad.GripMultiplier(), SurfaceShoulder.GripMultiplier())
	assert.Greater(t, SurfaceShoulder.GripMultiplier(), SurfaceRunoff.GripMultiplier())
}

func TestWorldStateSnapshotExcludesTrack(t *testing.T) {
	state := WorldState{Tick: 7, Track: &TrackState{TotalLength: 123}}
	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "total_length")
	assert.Contains(t, string(data), `"tick":7`)
}
