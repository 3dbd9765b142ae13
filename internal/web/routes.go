package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-groups/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	identifyHandler := handlers.NewIdentifyHandler(deps.Identifier, deps.FetchImage, s.imageHosts, deps.GroupID, s.logger)
	verifyHandler := handlers.NewVerifyHandler(deps.Verifier, deps.VerifyStore, s.logger)
	trainingHandler := handlers.NewTrainingHandler(deps.Face)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Post("/identify", identifyHandler.Identify)
		r.Post("/verify", verifyHandler.Verify)
		r.Get("/groups/{id}/training", trainingHandler.Status)
	})
}
