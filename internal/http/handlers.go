package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dpetrov/elevator-cab/internal/constants"
	"github.com/dpetrov/elevator-cab/internal/domain"
	"github.com/dpetrov/elevator-cab/internal/engine"
	"github.com/dpetrov/elevator-cab/internal/infra/logging"
	"github.com/dpetrov/elevator-cab/internal/queue"
)

// V1Handlers serves the single cab's command-injection and status surface.
// A dispatcher (or an operator's curl) talks to a cab exclusively through
// this API; there is no multi-cab routing here, the cab id in a command is
// only ever checked against this process's own id.
type V1Handlers struct {
	eng    *engine.Engine
	cmds   *queue.CommandQueue
	logger *slog.Logger
}

func NewV1Handlers(eng *engine.Engine, cmds *queue.CommandQueue, logger *slog.Logger) *V1Handlers {
	return &V1Handlers{eng: eng, cmds: cmds, logger: logger}
}

// CommandRequest is the JSON shape accepted by POST /v1/command.
type CommandRequest struct {
	Type             string `json:"type"`
	Floor            int    `json:"floor"`
	TargetElevatorID *int   `json:"target_elevator_id,omitempty"`
}

var commandTypeByName = map[string]domain.CommandType{
	"call_to_floor_and_go_up":   domain.CommandCallToFloorAndGoUp,
	"call_to_floor_and_go_down": domain.CommandCallToFloorAndGoDown,
	"turn_on_light_up":          domain.CommandTurnOnLightUp,
	"turn_off_light_up":         domain.CommandTurnOffLightUp,
	"turn_on_light_down":        domain.CommandTurnOnLightDown,
	"turn_off_light_down":       domain.CommandTurnOffLightDown,
}

// CommandHandler handles POST /v1/command, translating a dispatcher's JSON
// request into a domain.Command and injecting it into the engine's inbound
// queue. It never blocks on a full queue: a saturated inbound queue means
// the tick loop is wedged, and the caller should see that as a failure
// rather than stall waiting for it to drain.
func (h *V1Handlers) CommandHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only POST method is supported")
		return
	}

	var body CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON,
			"Invalid JSON", "Request body contains invalid JSON")
		return
	}

	cmdType, ok := commandTypeByName[body.Type]
	if !ok {
		rw.WriteDomainError(domain.NewValidationError("unknown command type: "+body.Type, nil))
		return
	}

	targetID := domain.AnyElevatorID
	if body.TargetElevatorID != nil {
		targetID = *body.TargetElevatorID
	}

	cmd := domain.Command{
		TargetElevatorID: targetID,
		Type:             cmdType,
		TargetFloor:      body.Floor,
	}

	if !h.cmds.TryEnqueue(cmd) {
		h.logger.ErrorContext(r.Context(), "command queue full, rejecting command",
			slog.String("request_id", requestID),
			slog.String("command", cmdType.String()))
		rw.WriteError(http.StatusServiceUnavailable, ErrorCodeInternal,
			"Command queue full", "The cab is not draining commands fast enough")
		return
	}

	h.logger.InfoContext(r.Context(), "command accepted",
		slog.String("request_id", requestID),
		slog.String("command", cmdType.String()),
		slog.Int("floor", body.Floor),
		slog.String("component", constants.ComponentHTTPHandler))

	rw.WriteJSON(http.StatusAccepted, map[string]string{"message": "command accepted"})
}

// StatusHandler handles GET /v1/status, returning a snapshot of the cab's
// current state.
func (h *V1Handlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodGet {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only GET method is supported")
		return
	}

	state := h.eng.Snapshot()
	rw.WriteJSON(http.StatusOK, map[string]interface{}{
		"elevator_id":     state.ID,
		"last_floor":      state.LastFloor,
		"direction":       state.Direction.String(),
		"stopped":         state.Stopped,
		"door_open":       state.DoorOpen,
		"timestamp":       state.Timestamp,
		"circuit_breaker": h.eng.CircuitBreakerState().String(),
	})
}

// APIInfoHandler describes the endpoints this process serves (GET /v1).
func (h *V1Handlers) APIInfoHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodGet {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only GET method is supported")
		return
	}

	rw.WriteJSON(http.StatusOK, map[string]interface{}{
		"name":    "elevator cab control API",
		"version": "v1",
		"endpoints": map[string]string{
			"POST /v1/command": "inject a command into the cab's inbound queue",
			"GET /v1/status":   "read a snapshot of the cab's current state",
			"GET /healthz":     "liveness probe",
			"GET /readyz":      "readiness probe",
			"GET /metrics":     "Prometheus metrics",
			"WS /ws/status":    "real-time state change stream (session relay)",
		},
		"timestamp": time.Now(),
	})
}
