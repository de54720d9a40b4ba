// Package auth authenticates wall panels against the status API.
//
// Each panel is registered in configuration with an argon2id hash of its
// secret. A panel exchanges the secret for a short-lived HS256 JWT at
// POST /api/v1/auth/token and presents it as a bearer token on the command
// and WebSocket endpoints. Throttle locks out callers that keep failing
// logins or alarm code checks.
package auth
