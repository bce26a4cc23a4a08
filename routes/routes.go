package routes

import (
	"log/slog"
	"time"

	_ "github.com/Dosada05/fest-portal/docs"
	"github.com/Dosada05/fest-portal/handlers"
	"github.com/Dosada05/fest-portal/middleware"
	"github.com/Dosada05/fest-portal/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Team      *handlers.TeamHandler
	Candidate *handlers.CandidateHandler
	Event     *handlers.EventHandler
	Result    *handlers.ResultHandler
	Standings *handlers.StandingsHandler
	Dashboard *handlers.DashboardHandler
	WebSocket *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	if opts.Logger != nil {
		router.Use(middleware.RequestLogger(opts.Logger))
	}
	router.Use(chiMiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket без таймаута: соединение живёт долго
	router.Get("/ws/standings", h.WebSocket.ServeStandings)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/health", h.Dashboard.Health)
		r.Get("/stats", h.Dashboard.GetStats)
		r.Get("/standings", h.Standings.GetStandings)

		r.Get("/teams", h.Team.ListTeams)
		r.Get("/teams/{teamID}", h.Team.GetTeamByID)
		r.Get("/events", h.Event.ListEvents)

		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Get("/me", h.Auth.Me)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/standings/refresh", h.Standings.RecomputeStandings)

				r.Route("/teams", func(r chi.Router) {
					r.Post("/", h.Team.CreateTeam)
					r.Put("/{teamID}", h.Team.UpdateTeam)
					r.Delete("/{teamID}", h.Team.DeleteTeam)
					r.Post("/{teamID}/default", h.Team.MakeDefaultTeam)
					r.Post("/{teamID}/leaders/{slot}/photo", h.Team.UploadLeaderPhoto)
				})

				r.Route("/candidates", func(r chi.Router) {
					r.Get("/", h.Candidate.ListCandidates)
					r.Post("/", h.Candidate.CreateCandidate)
					r.Get("/{candidateID}", h.Candidate.GetCandidateByID)
					r.Put("/{candidateID}", h.Candidate.UpdateCandidate)
					r.Delete("/{candidateID}", h.Candidate.DeleteCandidate)
					r.Post("/{candidateID}/photo", h.Candidate.UploadPhoto)
				})

				r.Route("/events", func(r chi.Router) {
					r.Post("/", h.Event.CreateEvent)
					r.Put("/{eventID}", h.Event.UpdateEvent)
					r.Delete("/{eventID}", h.Event.DeleteEvent)
				})

				r.Route("/results", func(r chi.Router) {
					r.Get("/", h.Result.ListResults)
					r.Post("/", h.Result.CreateResult)
					r.Get("/{resultID}", h.Result.GetResultByID)
					r.Put("/{resultID}", h.Result.UpdateResult)
					r.Delete("/{resultID}", h.Result.DeleteResult)
				})
			})
		})
	})
}
