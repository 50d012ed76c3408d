// @title           CozyLogic Backend API
// @version         1.0.0
// @description     Backend API for two-pass AI room redesigns: draft rooms from photos, run tidy and style passes, poll progress, and manage saved designs.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Supabase access token.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cozylogic-backend/internal/config"
	"cozylogic-backend/internal/database"
	"cozylogic-backend/internal/handlers"
	"cozylogic-backend/internal/logger"
	"cozylogic-backend/internal/middleware"
	"cozylogic-backend/internal/openai"
	"cozylogic-backend/internal/services"
	"cozylogic-backend/internal/supabase"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	log = log.WithSalt(cfg.LogHashSalt)
	defer log.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.DevBypassLimits {
		log.Warn("quota bypass enabled; generations are not counted")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := database.NewMigrator(db.DB(), log).Run(ctx)
	if err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	log.Info("migrations complete", "applied", len(applied))

	sb, err := supabase.NewClient(cfg)
	if err != nil {
		return err
	}

	ai := openai.NewClient(openai.Config{
		APIKey:            cfg.OpenAIAPIKey,
		BaseURL:           cfg.OpenAIBaseURL,
		MaxRetries:        cfg.OpenAIMaxRetries,
		RequestsPerSecond: cfg.OpenAIRequestsPerSecond,
	}, log)

	ledger := services.NewLedger(db, log, services.WithBypass(cfg.DevBypassLimits))
	retention := services.NewRetentionService(db, db, sb.Storage, cfg.OutputsBucket, cfg.PruneHardDelete, log)
	storage := services.NewStorageService(db, db, sb.Storage, retention, cfg.InputsBucket, cfg.OutputsBucket, cfg.SignedURLTTL, log)
	rooms := services.NewRoomService(db, sb.Storage, cfg.InputsBucket, log)
	generation := services.NewGenerationService(db, db, ledger, sb.Storage, ai, ai, retention, services.GenerationConfig{
		InputsBucket:  cfg.InputsBucket,
		OutputsBucket: cfg.OutputsBucket,
		ImageModel:    cfg.ImageModel,
		TextModel:     cfg.TextModel,
		CallTimeout:   cfg.ExternalCallTimeout,
	}, log)

	roomsHandler := handlers.NewRoomsHandler(rooms, storage, log)
	generateHandler := handlers.NewGenerateHandler(generation, log)
	statusHandler := handlers.NewStatusHandler(rooms, log)
	generationsHandler := handlers.NewGenerationsHandler(db, storage, log)
	imagesHandler := handlers.NewImagesHandler(storage, log)
	accountHandler := handlers.NewAccountHandler(ledger, retention, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.MaxMultipartMemory = services.MaxUploadBytes + 1<<20

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler(db))

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.SupabaseJWTSecret))

	api.POST("/rooms", roomsHandler.CreateRoom)
	api.PATCH("/rooms/:room_id", roomsHandler.UpdateRoom)
	api.DELETE("/rooms/:room_id", roomsHandler.DeleteRoom)
	api.POST("/rooms/:room_id/generate", generateHandler.Generate)
	api.GET("/rooms/:room_id/status", statusHandler.GetStatus)

	api.GET("/generations", generationsHandler.ListGenerations)
	api.DELETE("/generations/:generation_id", generationsHandler.DeleteGeneration)

	api.POST("/images/signed-url", imagesHandler.SignedURL)

	api.GET("/account", accountHandler.GetAccount)
	api.POST("/retention/prune", accountHandler.Prune)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	// Generations in flight get the full call timeout to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ExternalCallTimeout+10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
