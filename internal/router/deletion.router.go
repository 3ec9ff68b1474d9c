package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"user-deletion-service/internal/handler"
)

func SetupRoutes(r chi.Router, h *handler.DeletionHandler) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(handler.WithUserID)

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/deletion/health", h.Health)

		api.Delete("/account", h.HandleSelfDelete)

		api.Route("/admin/users/{userID}", func(admin chi.Router) {
			admin.Delete("/", h.HandleAdminDelete)
			admin.Get("/deletion-log", h.HandleDeletionLog)
		})
	})

	return r
}
