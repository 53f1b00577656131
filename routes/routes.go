package routes

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mwisniak/football-tournaments/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	dbConn *sql.DB,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	teamHandler *handlers.TeamHandler,
	playerHandler *handlers.PlayerHandler,
	refereeHandler *handlers.RefereeHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbConn.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.CreateTournamentHandler)
		r.Get("/", tournamentHandler.ListTournamentsHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetTournamentHandler)
			r.Delete("/", tournamentHandler.DeleteTournamentHandler)
			r.Post("/teams", tournamentHandler.AttachTeamsHandler)
			r.Post("/advance", tournamentHandler.AdvanceRoundHandler)
			r.Get("/standings", tournamentHandler.GetStandingsHandler)
			r.Post("/cancel", tournamentHandler.CancelTournamentHandler)
			r.Post("/finish", tournamentHandler.FinishTournamentHandler)
			r.Get("/matches", matchHandler.ListTournamentMatchesHandler)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatchHandler)
		r.Post("/referee", matchHandler.AssignRefereeHandler)
		r.Post("/result", matchHandler.FinishMatchHandler)
		r.Post("/events", matchHandler.RecordEventHandler)
		r.Get("/events", matchHandler.ListEventsHandler)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Post("/", teamHandler.RegisterTeamHandler)
		r.Get("/", teamHandler.ListTeamsHandler)

		r.Route("/{teamID}", func(r chi.Router) {
			r.Get("/", teamHandler.GetTeamHandler)
			r.Delete("/", teamHandler.DeleteTeamHandler)
			r.Post("/crest", teamHandler.UploadCrestHandler)
			r.Post("/players", teamHandler.AddPlayerHandler)
			r.Delete("/players/{playerID}", teamHandler.RemovePlayerHandler)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Post("/", playerHandler.CreatePlayerHandler)
		r.Get("/", playerHandler.ListPlayersHandler)
		r.Get("/{playerID}", playerHandler.GetPlayerHandler)
		r.Patch("/{playerID}/position", playerHandler.ChangePositionHandler)
	})

	router.Route("/referees", func(r chi.Router) {
		r.Post("/", refereeHandler.CreateRefereeHandler)
		r.Get("/", refereeHandler.ListRefereesHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
