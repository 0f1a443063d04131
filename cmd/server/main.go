// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stockcast/internal/api"
	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/drive"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/insight"
	"github.com/andresuchdata/stockcast/internal/planning"
	"github.com/andresuchdata/stockcast/internal/repository/postgres"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/andresuchdata/stockcast/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	planCache, err := cache.NewPlanCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Plan cache unavailable, continuing without caching")
		planCache = cache.NewNoopPlanCache()
	}

	engine := planning.NewEngine(planning.Config{
		HorizonDays: cfg.Planning.HorizonDays,
		Workers:     cfg.Planning.Workers,
		ForecastOptions: forecast.Options{
			IncludeTrend:       cfg.Planning.IncludeTrend,
			IncludeSeasonality: cfg.Planning.IncludeSeasonality,
			ConfidenceInterval: cfg.Planning.ConfidenceInterval,
		},
	})

	snapshotRepo := postgres.NewSnapshotRepository(db)
	planningService := service.NewPlanningService(snapshotRepo, planCache, engine, cfg.Planning.HorizonDays)

	var insightGen insight.Generator
	if cfg.Insight.Enabled && cfg.Insight.OpenAIKey != "" {
		insightGen = insight.NewOpenAIGenerator(cfg.Insight.OpenAIKey, cfg.Insight.Model)
	}
	insightService := insight.NewService(insightGen)

	router := api.NewRouter(&api.Services{
		PlanningService: planningService,
		InsightService:  insightService,
	}, cfg.Server.AllowedOrigins)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	ingestSrv := startIngestServer(cfg, db, planningService)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if ingestSrv != nil {
		if err := ingestSrv.Shutdown(ctx); err != nil {
			logger.Log.Error().Err(err).Msg("Ingest server forced to shutdown")
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// startIngestServer exposes the Drive ingestion endpoints on a separate port
// so they can be firewalled away from the dashboard API. Returns nil when
// Drive credentials are not configured.
func startIngestServer(cfg *config.Config, db *postgres.DB, planningService *service.PlanningService) *http.Server {
	if cfg.Drive.CredentialsJSON == "" {
		logger.Log.Info().Msg("Drive credentials not configured, ingest server disabled")
		return nil
	}

	driveService, err := drive.NewService(cfg.Drive.CredentialsJSON)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to initialize Drive service, ingest server disabled")
		return nil
	}

	ingestRepo := postgres.NewIngestRepository(db)
	ingestService := drive.NewIngestService(driveService, ingestRepo)
	ingestService.OnIngest(func(ctx context.Context) {
		if err := planningService.Invalidate(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to invalidate plan cache after ingest")
		}
	})

	router := mux.NewRouter()
	handler := drive.NewHandler(driveService, ingestService, cfg.Drive.DownloadDir)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.IngestPort,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.IngestPort).Msg("Starting ingest server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error().Err(err).Msg("Ingest server stopped")
		}
	}()

	return srv
}
