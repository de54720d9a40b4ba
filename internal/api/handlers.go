package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-alarm/internal/codec"
	"github.com/nerrad567/gray-logic-alarm/internal/dispatch"
	"github.com/nerrad567/gray-logic-alarm/internal/history"
	"github.com/nerrad567/gray-logic-alarm/internal/router"
)

const healthCheckTimeout = 3 * time.Second

// Health status values.
const (
	healthOK       = "ok"
	healthDegraded = "degraded"
)

// StateResponse is the body of GET /api/v1/state.
type StateResponse struct {
	State     string `json:"state"`
	Armed     bool   `json:"armed"`
	Timestamp string `json:"timestamp"`
}

// CommandResponse is the body of an accepted POST /api/v1/command.
type CommandResponse struct {
	Accepted bool   `json:"accepted"`
	Command  string `json:"command"`
	Delay    int    `json:"delay"`
	State    string `json:"state"`
}

// handleHealth reports the server and component health. Any failing
// component turns the response into a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := healthOK
	components := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			components[name] = err.Error()
			status = healthDegraded
			continue
		}
		components[name] = healthOK
	}

	code := http.StatusOK
	if status != healthOK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"components": components,
	})
}

// handleGetState returns the current alarm state.
func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	st := s.state.State()
	writeJSON(w, http.StatusOK, StateResponse{
		State:     string(st),
		Armed:     st.IsArmed(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleListSubscriptions returns the inbound topics the router subscribes to.
func (s *Server) handleListSubscriptions(w http.ResponseWriter, _ *http.Request) {
	subs := s.subscriptions
	if subs == nil {
		subs = []router.Subscription{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscriptions": subs,
		"count":         len(subs),
	})
}

// handleListEvents returns paginated alarm history.
//
// Query parameters:
//   - kind: state, event, command or sensor
//   - name: state, event, command or sensor sub-kind
//   - since: RFC 3339 timestamp
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "history is not enabled")
		return
	}

	q := r.URL.Query()
	filter := history.Filter{
		Kind: q.Get("kind"),
		Name: q.Get("name"),
	}

	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = t
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list alarm history", "error", err)
		writeInternalError(w, "failed to list alarm history")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCommand accepts the same payload as the MQTT command topic from an
// authenticated panel.
//
// Responses: 202 accepted, 400 undecodable payload, 403 rejected by the
// dispatcher (with reason), 409 refused by the alarm core, 429 while the
// panel is locked out after repeated wrong codes.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	panel := panelID(r.Context())
	if retry, ok := s.codeThrottle.Allow(panel); !ok {
		writeTooManyRequests(w, retry, "too many invalid codes")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "failed to read request body")
		return
	}

	action, err := s.commands.Submit(body)
	if err != nil {
		var rej *dispatch.RejectedError
		switch {
		case errors.Is(err, codec.ErrDecode):
			writeBadRequest(w, err.Error())
		case errors.As(err, &rej):
			if rej.Reason == dispatch.ReasonInvalidCode && s.codeThrottle.Fail(panel) {
				s.logger.Warn("panel locked out after invalid codes", "panel", panel)
			}
			writeJSON(w, http.StatusForbidden, Error{
				Status:  http.StatusForbidden,
				Code:    ErrCodeRejected,
				Message: "command rejected",
				Reason:  string(rej.Reason),
			})
		default:
			writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
		}
		return
	}

	if cmd, err := codec.DecodeCommand(body); err == nil && cmd.Code != nil {
		s.codeThrottle.Reset(panel)
	}

	s.logger.Info("command accepted", "panel", panel, "command", action.Command)
	writeJSON(w, http.StatusAccepted, CommandResponse{
		Accepted: true,
		Command:  string(action.Command),
		Delay:    action.Delay,
		State:    string(s.state.State()),
	})
}
