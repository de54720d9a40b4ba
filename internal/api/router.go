package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/state", s.handleGetState)
		r.Get("/subscriptions", s.handleListSubscriptions)
		r.Get("/events", s.handleListEvents)

		// WebSocket auth (ticket or bearer) and origin are checked in the handler.
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.originMiddleware, s.requireAuthConfigured)

			r.With(s.jsonMiddleware).Post("/auth/token", s.handleToken)

			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)
				r.Post("/auth/ws-ticket", s.handleWSTicket)
				r.With(s.jsonMiddleware).Post("/command", s.handleCommand)
			})
		})
	})

	return r
}
