// -----------------------------------------------------------------------
// Request/reply API - commands, introspection and snapshots
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/common"
	"github.com/ternarybob/cursus/internal/models"
	"github.com/ternarybob/cursus/internal/services/scheduler"
)

// commandTimeout bounds how long a request waits for the main loop to
// process its command.
const commandTimeout = 30 * time.Second

// CommandRequest is the request/reply envelope for commands.
type CommandRequest struct {
	Command string                 `json:"command"`
	Args    map[string]interface{} `json:"args"`
	User    string                 `json:"user"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// CommandResponse is the reply envelope.
type CommandResponse struct {
	Data    interface{}   `json:"data,omitempty"`
	Error   *CommandError `json:"error,omitempty"`
	User    string        `json:"user"`
	Version string        `json:"version"`
}

// CommandError carries a client-visible failure.
type CommandError struct {
	Message string `json:"message"`
}

// APIHandler serves the request/reply channel.
type APIHandler struct {
	logger    arbor.ILogger
	scheduler *scheduler.Scheduler
}

// NewAPIHandler creates the command endpoint handler.
func NewAPIHandler(sched *scheduler.Scheduler, logger arbor.ILogger) *APIHandler {
	return &APIHandler{logger: logger, scheduler: sched}
}

// CommandHandler handles POST /api/command.
func (h *APIHandler) CommandHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeResponse(w, &CommandResponse{
			Error: &CommandError{Message: fmt.Sprintf("invalid request: %v", err)},
			User:  req.User,
		})
		return
	}
	if req.Command == "" {
		h.writeResponse(w, &CommandResponse{
			Error: &CommandError{Message: "no command given"},
			User:  req.User,
		})
		return
	}

	reply := make(chan models.CommandResult, 1)
	cmd := models.Command{
		ID:     uuid.New().String(),
		Name:   req.Command,
		Kwargs: req.Args,
		Reply:  reply,
	}
	if err := h.scheduler.EnqueueCommand(cmd); err != nil {
		h.writeResponse(w, &CommandResponse{
			Error: &CommandError{Message: err.Error()},
			User:  req.User,
		})
		return
	}

	select {
	case result := <-reply:
		resp := &CommandResponse{User: req.User}
		if result.Err != nil {
			resp.Error = &CommandError{Message: result.Err.Error()}
		} else {
			resp.Data = result.Data
			if resp.Data == nil {
				resp.Data = "ok"
			}
		}
		h.writeResponse(w, resp)
	case <-time.After(commandTimeout):
		h.writeResponse(w, &CommandResponse{
			Error: &CommandError{Message: "command timed out"},
			User:  req.User,
		})
	}
}

// WorkflowHandler handles GET /api/workflow: the entire store as a
// length-delimited binary frame.
func (h *APIHandler) WorkflowHandler(w http.ResponseWriter, r *http.Request) {
	batch := h.scheduler.Store().EntireSnapshot()
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(batch.Marshal()); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to write workflow snapshot")
	}
}

// StatusHandler handles GET /api/status.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	ticks := h.scheduler.TickDurations()
	tickMillis := make([]float64, len(ticks))
	for i, d := range ticks {
		tickMillis[i] = float64(d.Milliseconds())
	}
	payload := map[string]interface{}{
		"state":          h.scheduler.State(),
		"uuid":           h.scheduler.UUID(),
		"version":        common.GetVersion(),
		"tick_durations": tickMillis,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to write status")
	}
}

func (h *APIHandler) writeResponse(w http.ResponseWriter, resp *CommandResponse) {
	resp.Version = common.GetVersion()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to write command response")
	}
}
