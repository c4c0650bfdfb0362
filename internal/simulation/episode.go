package simulation

import (
	"encoding/json"
	"fmt"

	"slipstream/internal/collision"
	"slipstream/internal/physics"
	"slipstream/internal/shared/types"
)

// EpisodeConfig holds the reward weights and termination limits for one
// training episode. All fields have working defaults; a bridge client may
// override any subset through the reset message.
type EpisodeConfig struct {
	MaxEpisodeTicks     int     `json:"max_episode_ticks"`
	StuckSpeedThreshold float64 `json:"stuck_speed_threshold"`
	StuckTickLimit      int     `json:"stuck_tick_limit"`
	StuckGraceTicks     int     `json:"stuck_grace_ticks"`
	RunoffTickLimit     int     `json:"runoff_tick_limit"`

	CheckpointReward float64 `json:"checkpoint_reward"`
	LapBonus         float64 `json:"lap_bonus"`
	SpeedRewardScale float64 `json:"speed_reward_scale"`
	WallPenalty      float64 `json:"wall_penalty"`
	TimePenalty      float64 `json:"time_penalty"`
}

// DefaultEpisodeConfig returns the standard training tunables.
func DefaultEpisodeConfig() EpisodeConfig {
	return EpisodeConfig{
		MaxEpisodeTicks:     6000,
		StuckSpeedThreshold: 5.0,
		StuckTickLimit:      180,
		StuckGraceTicks:     120,
		RunoffTickLimit:     240,

		CheckpointReward: 2.0,
		LapBonus:         20.0,
		SpeedRewardScale: 0.1,
		WallPenalty:      0.5,
		TimePenalty:      0.01,
	}
}

// ParseEpisodeConfig overlays a JSON config fragment onto the defaults, so
// clients only send the fields they want to change.
func ParseEpisodeConfig(raw json.RawMessage) (EpisodeConfig, error) {
	cfg := DefaultEpisodeConfig()
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return EpisodeConfig{}, fmt.Errorf("parse episode config: %w", err)
	}
	return cfg, nil
}

// StepResult is what one episode step reports back across the bridge.
type StepResult struct {
	Observation []float64
	Reward      float64
	Terminated  bool
	Truncated   bool
}

// Episode wraps a world with reward shaping and termination tracking. The
// world inside stays pure; the episode is the one mutable-by-replacement
// container the bridge owns per connection.
type Episode struct {
	World  types.WorldState
	Config EpisodeConfig

	stuckTicks  int
	runoffTicks int
}

// NewEpisode starts a fresh episode on the given track.
func NewEpisode(tr *types.TrackState, cfg EpisodeConfig) *Episode {
	return &Episode{
		World:  CreateWorld(tr),
		Config: cfg,
	}
}

// Observe returns the current observation without advancing time, used for
// the reset response.
func (e *Episode) Observe() []float64 {
	return BuildObservation(e.World)
}

// Step advances the episode by exactly one tick and computes the shaped
// reward: checkpoint and lap bonuses, a small speed reward, a wall contact
// penalty, and a constant time penalty that rules out sitting still.
func (e *Episode) Step(in types.Input) StepResult {
	prev := e.World
	e.World = StepWorld(prev, in)
	cfg := e.Config

	reward := -cfg.TimePenalty
	if e.World.Timing.LastCheckpointIndex != prev.Timing.LastCheckpointIndex {
		reward += cfg.CheckpointReward
	}
	if e.World.Timing.LapComplete {
		reward += cfg.LapBonus
	}
	reward += (e.World.Car.Speed / physics.MaxSpeed) * cfg.SpeedRewardScale

	// Wall contact probe: after resolution the car rests one push buffer
	// outside its radius, so probe slightly past that.
	probe := CarRadius + collision.PushBuffer + 0.25
	if collision.DetectWall(e.World.Car.Position, probe, e.World.Track).Collided {
		reward -= cfg.WallPenalty
	}

	if e.World.Tick > uint64(cfg.StuckGraceTicks) && e.World.Car.Speed < cfg.StuckSpeedThreshold {
		e.stuckTicks++
	} else {
		e.stuckTicks = 0
	}
	if e.World.Car.Surface == types.SurfaceRunoff {
		e.runoffTicks++
	} else {
		e.runoffTicks = 0
	}

	return StepResult{
		Observation: BuildObservation(e.World),
		Reward:      reward,
		Terminated:  e.stuckTicks >= cfg.StuckTickLimit || e.runoffTicks >= cfg.RunoffTickLimit,
		Truncated:   int(e.World.Tick) >= cfg.MaxEpisodeTicks,
	}
}
