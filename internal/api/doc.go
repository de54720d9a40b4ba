// Package api implements the alarm panel's status HTTP API and WebSocket push.
//
// This package provides:
//   - REST endpoints for health, current state, subscriptions and history
//   - POST /api/v1/command, which runs a command payload through the same
//     decode and dispatch path as the MQTT command topic
//   - A WebSocket hub broadcasting state changes, panel events and panel
//     commands to wall-panel clients
//   - The Prometheus /metrics endpoint
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Panel Authentication
//
// Commands and the WebSocket are only served to registered panels. A panel
// trades its secret for a bearer token at POST /api/v1/auth/token and sends
// it on POST /api/v1/command. Browsers cannot set headers on a WebSocket
// handshake, so a panel may instead fetch a single-use ticket from
// POST /api/v1/auth/ws-ticket and connect with /api/v1/ws?ticket=.
//
// Requests carrying an Origin header other than the server's own host or a
// configured allowed origin are refused, and command bodies must be
// application/json. Repeated failed logins (per client address) and wrong
// alarm codes (per panel) lock the caller out for a while.
//
// # Graceful Degradation
//
// History and metrics are optional: /api/v1/events answers 503 when no
// history repository is configured and /metrics is not mounted without a
// metrics handler. Without panel authentication the token, command and
// WebSocket endpoints answer 503.
package api
