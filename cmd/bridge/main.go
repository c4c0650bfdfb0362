// Command bridge serves the training boundary: a websocket endpoint where
// each request carries exactly one control input (or a reset) and receives
// exactly one observation in response. The exchange is strictly
// synchronous with no pipelining; one step request advances the simulation
// by exactly one tick. Requests on a connection are handled sequentially
// in arrival order, which is what preserves the determinism and staleness
// guarantees the physics assumes.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"slipstream/internal/shared/logger"
	"slipstream/internal/shared/types"
	"slipstream/internal/simulation"
	"slipstream/internal/track"
)

type server struct {
	log      *logger.Logger
	debug    *logger.Logger
	trackDir string
	upgrader websocket.Upgrader
}

// session is the per-connection state: at most one live episode. No mutex
// is needed because a connection's requests are served by one goroutine.
type session struct {
	episode   *simulation.Episode
	episodeID string
}

func main() {
	log := logger.New("bridge")
	addr := getEnv("BRIDGE_ADDR", ":9876")
	trackDir := getEnv("TRACK_DIR", "tracks")

	s := &server{
		log:      log,
		debug:    logger.NewDebug("bridge"),
		trackDir: trackDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleWS)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("training bridge listening on %s (tracks=%s)", addr, trackDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	s.log.Printf("client connected remote=%s", r.RemoteAddr)
	sess := &session{}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Printf("client disconnected remote=%s", r.RemoteAddr)
				return
			}
			s.log.Printf("read error remote=%s err=%v", r.RemoteAddr, err)
			return
		}

		var req types.BridgeRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.writeError(conn, "bad_payload")
			continue
		}

		resp, closeAfter := s.handleRequest(sess, req)
		if err := conn.WriteJSON(resp); err != nil {
			s.log.Printf("write error remote=%s err=%v", r.RemoteAddr, err)
			return
		}
		if closeAfter {
			s.log.Printf("client closed session remote=%s", r.RemoteAddr)
			return
		}
	}
}

// handleRequest produces exactly one response per request. The bool result
// reports whether the connection should close after the reply.
func (s *server) handleRequest(sess *session, req types.BridgeRequest) (types.BridgeResponse, bool) {
	switch req.Type {
	case "reset":
		return s.handleReset(sess, req), false
	case "step":
		return s.handleStep(sess, req), false
	case "close":
		sess.episode = nil
		return types.BridgeResponse{Type: "closed"}, true
	default:
		return types.BridgeResponse{
			Type:    "error",
			Message: fmt.Sprintf("unsupported message type %q", req.Type),
		}, false
	}
}

func (s *server) handleReset(sess *session, req types.BridgeRequest) types.BridgeResponse {
	cfg, err := simulation.ParseEpisodeConfig(req.Config)
	if err != nil {
		return types.BridgeResponse{Type: "error", Message: err.Error()}
	}
	tr, err := track.LoadByID(s.trackDir, req.TrackID)
	if err != nil {
		return types.BridgeResponse{Type: "error", Message: err.Error()}
	}

	sess.episode = simulation.NewEpisode(tr, cfg)
	sess.episodeID = uuid.NewString()
	s.debug.Printf("reset episode=%s track=%q", sess.episodeID, req.TrackID)

	return types.BridgeResponse{
		Type:        "reset",
		Observation: sess.episode.Observe(),
		Info:        s.info(sess),
	}
}

func (s *server) handleStep(sess *session, req types.BridgeRequest) types.BridgeResponse {
	if sess.episode == nil {
		return types.BridgeResponse{Type: "error", Message: "step before reset"}
	}
	if len(req.Action) != 3 {
		return types.BridgeResponse{
			Type:    "error",
			Message: fmt.Sprintf("action must be [steer, throttle, brake], got %d values", len(req.Action)),
		}
	}

	result := sess.episode.Step(types.Input{
		Steer:    req.Action[0],
		Throttle: req.Action[1],
		Brake:    req.Action[2],
	})

	return types.BridgeResponse{
		Type:        "step",
		Observation: result.Observation,
		Reward:      result.Reward,
		Terminated:  result.Terminated,
		Truncated:   result.Truncated,
		Info:        s.info(sess),
	}
}

func (s *server) info(sess *session) *types.BridgeInfo {
	w := sess.episode.World
	return &types.BridgeInfo{
		EpisodeID:    sess.episodeID,
		Tick:         w.Tick,
		Lap:          w.Timing.CurrentLap,
		BestLapTicks: w.Timing.BestLapTicks,
		Surface:      w.Car.Surface.String(),
	}
}

func (s *server) writeError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(types.BridgeResponse{Type: "error", Message: message})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
