package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"postureai/adapters/postgres"
	"postureai/internal"
	"postureai/internal/api"
	"postureai/internal/config"
	"postureai/internal/container"
	"postureai/internal/migration"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	c := container.New(cfg, logger)
	if err := c.InitWithDatabase(db); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	router := api.NewRouter(
		api.NewCredentialHandler(c.Pool, c.LLMClient, cfg.AI.FallbackModel, logger),
		api.NewMetricsHandler(c.MetricsService, c.CacheService, cfg.AI.PromptVersion, logger),
		api.NewReportHandler(c.ReportService, c.ArtifactRepo, c.Renderer, c.Structure, logger),
		api.NewIntakeHandler(c.IntakeService, c.IntakeRepo, logger),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("listening on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown: %v", err)
	}
	if err := c.Shutdown(shutdownCtx); err != nil {
		logger.Error("container shutdown: %v", err)
	}
}
