package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-kiosk/internal/web/middleware"
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	// Health check (no pairing required)
	s.router.Get("/api/v1/health", handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Pairing routes
		r.Post("/auth/pair", s.handlePair)
		r.Post("/auth/unpair", s.handleUnpair)
		r.Get("/auth/status", s.handleAuthStatus)

		// Everything else requires a paired display
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))

			// Screen state
			r.Get("/screen", s.handleScreen)
			r.Get("/screen/picture", s.handleScreenPicture)
			r.Get("/events", s.handleEvents)

			// User inputs
			r.Post("/input/answer", s.handleAnswer)
			r.Post("/input/ok", s.handleOK)
			r.Post("/input/text", s.handleText)
			r.Post("/input/select/profile", s.handleSelectProfile)
			r.Post("/input/select/image", s.handleSelectImage)
			r.Post("/input/new-picture", s.handleNewPicture)
			r.Post("/input/new-profile", s.handleNewProfile)
			r.Post("/input/logout", s.handleLogout)
			r.Post("/input/frame", s.handleFrame)
		})
	})
}
