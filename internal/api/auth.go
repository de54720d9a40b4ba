package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-alarm/internal/auth"
)

const (
	// ticketTTL is how long a WebSocket ticket is valid.
	ticketTTL = 60 * time.Second

	// ticketBytes is the number of random bytes in a WebSocket ticket.
	ticketBytes = 32

	bearerPrefix = "Bearer "
)

// tokenRequest is the body of POST /api/v1/auth/token.
type tokenRequest struct {
	PanelID string `json:"panel_id"`
	Secret  string `json:"secret"`
}

// tokenResponse is the body of a successful POST /api/v1/auth/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ticketStore holds single-use WebSocket tickets for authenticated panels.
type ticketStore struct {
	mu      sync.Mutex
	tickets map[string]ticketEntry
	now     func() time.Time
}

type ticketEntry struct {
	panel     string
	expiresAt time.Time
}

func newTicketStore() *ticketStore {
	return &ticketStore{tickets: make(map[string]ticketEntry), now: time.Now}
}

// issue creates a ticket for panel. Expired tickets are dropped first.
func (ts *ticketStore) issue(panel string) (string, error) {
	b := make([]byte, ticketBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	ticket := hex.EncodeToString(b)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now()
	for t, e := range ts.tickets {
		if now.After(e.expiresAt) {
			delete(ts.tickets, t)
		}
	}
	ts.tickets[ticket] = ticketEntry{panel: panel, expiresAt: now.Add(ticketTTL)}
	return ticket, nil
}

// consume validates and removes ticket, returning the panel it was issued to.
func (ts *ticketStore) consume(ticket string) (string, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	e, ok := ts.tickets[ticket]
	if !ok {
		return "", false
	}
	delete(ts.tickets, ticket)
	if ts.now().After(e.expiresAt) {
		return "", false
	}
	return e.panel, true
}

// handleToken exchanges a panel ID and secret for an access token.
// Failed attempts are throttled per client address.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	client := clientIP(r)
	if retry, ok := s.loginThrottle.Allow(client); !ok {
		writeTooManyRequests(w, retry, "too many failed logins")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.PanelID == "" || req.Secret == "" {
		writeBadRequest(w, "panel_id and secret are required")
		return
	}

	token, _, err := s.auth.Login(req.PanelID, req.Secret)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			if s.loginThrottle.Fail(client) {
				s.logger.Warn("panel login locked out", "client", client, "panel", req.PanelID)
			}
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("panel login failed", "panel", req.PanelID, "error", err)
		writeInternalError(w, "failed to authenticate panel")
		return
	}
	s.loginThrottle.Reset(client)

	s.logger.Info("panel authenticated", "panel", req.PanelID, "client", client)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   strings.TrimSpace(bearerPrefix),
		ExpiresIn:   int(s.auth.TTL().Seconds()),
	})
}

// handleWSTicket issues a single-use WebSocket ticket to an authenticated
// panel. Browsers cannot set headers on a WebSocket handshake, so the panel
// passes the ticket as ?ticket= instead of its bearer token.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := s.tickets.issue(panelID(r.Context()))
	if err != nil {
		writeInternalError(w, "failed to generate ticket")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(ticketTTL.Seconds()),
	})
}

// bearerPanel verifies the request's bearer token and returns its panel.
func (s *Server) bearerPanel(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) <= len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	claims, err := s.auth.Verify(strings.TrimSpace(h[len(bearerPrefix):]))
	if err != nil {
		s.logger.Debug("bearer token rejected", "error", err)
		return "", false
	}
	return claims.Panel(), true
}

func panelID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyPanel).(string)
	return id
}

// clientIP returns the host part of the request's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, retry time.Duration, message string) {
	secs := int(retry.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeError(w, http.StatusTooManyRequests, ErrCodeTooManyRequests, message)
}
