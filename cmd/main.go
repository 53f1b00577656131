package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/mwisniak/football-tournaments/brackets"
	"github.com/mwisniak/football-tournaments/cache"
	"github.com/mwisniak/football-tournaments/config"
	"github.com/mwisniak/football-tournaments/db"
	"github.com/mwisniak/football-tournaments/handlers"
	"github.com/mwisniak/football-tournaments/repositories"
	api "github.com/mwisniak/football-tournaments/routes"
	"github.com/mwisniak/football-tournaments/services"
	"github.com/mwisniak/football-tournaments/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Optional pieces: redis ranking cache and R2 crest storage are
	// enabled only when configured.
	var rankingCache services.RankingCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", slog.Any("error", err))
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisClient.Close()
		rankingCache = cache.NewRankingCache(redisClient)
		logger.Info("ranking cache enabled")
	}

	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("crest storage enabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	coachRepo := repositories.NewPostgresCoachRepository(dbConn)
	refereeRepo := repositories.NewPostgresRefereeRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	eventRepo := repositories.NewPostgresMatchEventRepository(dbConn)

	eligibility := services.NewEligibilityChecker(services.DefaultRosterLimits())

	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		teamRepo,
		matchRepo,
		brackets.NewRoundRobinGenerator(),
		brackets.NewSingleEliminationGenerator(),
		wsHub,
		logger,
	)
	matchService := services.NewMatchService(
		dbConn, matchRepo, tournamentRepo, playerRepo, refereeRepo,
		rankingCache, wsHub, logger,
	)
	eventService := services.NewEventService(
		dbConn, eventRepo, matchRepo, playerRepo, tournamentRepo, logger,
	)
	standingsService := services.NewStandingsService(
		tournamentRepo, matchRepo, teamRepo, rankingCache, logger,
	)
	teamService := services.NewTeamService(
		dbConn, teamRepo, playerRepo, coachRepo, matchRepo,
		eligibility, uploader, logger,
	)
	playerService := services.NewPlayerService(playerRepo, teamRepo, eligibility, logger)
	refereeService := services.NewRefereeService(refereeRepo, logger)

	tournamentHandler := handlers.NewTournamentHandler(tournamentService, standingsService)
	matchHandler := handlers.NewMatchHandler(matchService, eventService)
	teamHandler := handlers.NewTeamHandler(teamService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	refereeHandler := handlers.NewRefereeHandler(refereeService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		dbConn,
		tournamentHandler,
		matchHandler,
		teamHandler,
		playerHandler,
		refereeHandler,
		webSocketHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
