package routes

import (
	"net/http"

	"github.com/avdeenko/club-system/handlers"
	"github.com/avdeenko/club-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
	metricsHandler http.Handler,
	jwtSecret []byte,
	allowedOrigins []string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", metricsHandler)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", matchHandler.List)
		r.Get("/{matchID}", matchHandler.Get)

		// Player-initiated attendance
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{matchID}/confirm", matchHandler.Confirm)
		})

		// Club administration
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)

			r.Post("/", matchHandler.Create)
			r.Post("/{matchID}/cancel", matchHandler.Cancel)
			r.Post("/{matchID}/toggle-confirmation", matchHandler.ToggleConfirmation)
			r.Post("/{matchID}/assign-teams", matchHandler.AssignTeams)
			r.Post("/{matchID}/draw-teams", matchHandler.DrawTeams)
			r.Post("/{matchID}/update-stats", matchHandler.UpdateStats)
		})
	})

	router.Get("/standings", standingsHandler.Get)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Get("/{teamID}", teamHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireAdmin)
			r.Post("/{teamID}/crest", teamHandler.UploadCrest)
		})
	})

	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeMatch)
}
