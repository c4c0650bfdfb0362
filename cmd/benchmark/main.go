// Command benchmark drives the simulation headlessly with a scripted
// driver, reporting throughput in ticks per second and a checksum of the
// final state. Running it twice must print the same checksum; a mismatch
// means the determinism contract is broken.
package main

import (
	"encoding/json"
	"hash/fnv"
	"math"
	"os"
	"strconv"
	"time"

	"slipstream/internal/shared/logger"
	"slipstream/internal/shared/types"
	"slipstream/internal/simulation"
	"slipstream/internal/track"
)

func main() {
	log := logger.New("benchmark")
	ticks := getEnvInt("BENCH_TICKS", 100000)
	trackDir := getEnv("TRACK_DIR", "tracks")
	trackID := getEnv("BENCH_TRACK", "")

	tr, err := track.LoadByID(trackDir, trackID)
	if err != nil {
		log.Fatalf("load track: %v", err)
	}

	start := time.Now()
	state := run(tr, ticks)
	elapsed := time.Since(start)

	snapshot, err := json.Marshal(state)
	if err != nil {
		log.Fatalf("marshal final state: %v", err)
	}
	h := fnv.New64a()
	_, _ = h.Write(snapshot)

	perSec := float64(ticks) / elapsed.Seconds()
	log.Printf("ticks=%d elapsed=%s throughput=%.0f ticks/sec realtime=%.0fx",
		ticks, elapsed.Round(time.Millisecond), perSec, perSec/simulation.TickRate)
	log.Printf("final tick=%d laps=%d best_lap_ticks=%d checksum=%016x",
		state.Tick, state.Timing.CurrentLap, state.Timing.BestLapTicks, h.Sum64())
}

// run steps the world with the scripted driver. The script is a pure
// function of the tick index, so every run of the same length produces
// the same final state.
func run(tr *types.TrackState, ticks int) types.WorldState {
	state := simulation.CreateWorld(tr)
	for i := 0; i < ticks; i++ {
		state = simulation.StepWorld(state, scriptedInput(i))
	}
	return state
}

// scriptedInput is a deliberately messy driver: full throttle with a slow
// steering sweep and periodic brake stabs, enough to exercise cornering,
// wall contact, and surface transitions.
func scriptedInput(tick int) types.Input {
	in := types.Input{
		Steer:    0.4 * math.Sin(float64(tick)*0.013),
		Throttle: 1,
	}
	if tick%400 < 30 {
		in.Throttle = 0
		in.Brake = 0.8
	}
	return in
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
