package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cardshield-scoring/internal/config"
	"github.com/cardshield-scoring/internal/data/mongo"
	"github.com/cardshield-scoring/internal/data/postgres"
	"github.com/cardshield-scoring/internal/domain/card"
	"github.com/cardshield-scoring/internal/logger"
	"github.com/cardshield-scoring/internal/platform/persistence"
	"github.com/cardshield-scoring/internal/registry"
	"github.com/cardshield-scoring/internal/scoring/decision"
	"github.com/cardshield-scoring/internal/scoring/features"
	"github.com/cardshield-scoring/internal/scoring/model"
	"github.com/cardshield-scoring/internal/scoring/rules"
	"github.com/cardshield-scoring/internal/scoring/scaler"
	"github.com/cardshield-scoring/internal/scoring/service"
	"github.com/cardshield-scoring/internal/scoring_api"
	"github.com/cardshield-scoring/internal/scoring_api/handler"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("scoring_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Load model artifacts. The API cannot score without them, so any failure
	// here is fatal rather than degraded.
	sc, err := scaler.Load(log, cfg.Model.ScalerPath)
	if err != nil {
		log.Error("Failed to load scaler parameters", "path", cfg.Model.ScalerPath, "error", err)
		os.Exit(1)
	}

	classifier, err := model.Load(log, cfg.Model.ModelPath)
	if err != nil {
		log.Error("Failed to load fraud model", "path", cfg.Model.ModelPath, "error", err)
		os.Exit(1)
	}

	// Probe the classifier with a zero vector so a scaler/model dimension
	// mismatch fails at startup instead of on the first request.
	if _, err := classifier.PredictProbability(make([]float64, len(sc.ExpectedFeatures()))); err != nil {
		log.Error("Scaler and model artifacts are incompatible", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	cardRepo := postgres.NewCardRepository(log, postgresDB)
	verdictRepo := mongo.NewVerdictRepository(log, mongoDB.Database())

	// Seed the in-memory registries from the persisted card data
	registries := registry.NewStore()
	if err := seedRegistries(appCtx, registries, cardRepo); err != nil {
		log.Error("Failed to seed card registries", "error", err)
		os.Exit(1)
	}
	log.Info("Card registries seeded",
		"fraudulent", registries.FraudulentCount(),
		"stolen", registries.StolenCount(),
	)

	// Initialize the scoring pipeline
	builder := features.NewBuilder(log, features.HashedGeoRisk{})
	ruleEngine := rules.NewEngine(log, registries, &cfg.Rules)
	composer := decision.NewComposer(cfg.Rules.FraudThreshold, cfg.Rules.TopFactors)

	detectionService := service.NewDetectionService(
		log,
		cardRepo,
		verdictRepo,
		registries,
		builder,
		sc,
		classifier,
		ruleEngine,
		composer,
	)

	batchCoordinator, err := service.NewBatchCoordinator(
		detectionService,
		service.BatchCoordinatorConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize batch coordinator", "error", err)
		os.Exit(1)
	}

	// Initialize REST server
	server := scoring_api.NewServer(log, cfg, scoring_api.Handlers{
		Score:    handler.NewScoreHandler(log, detectionService, batchCoordinator),
		Registry: handler.NewRegistryHandler(log, cardRepo, registries),
		Card:     handler.NewCardHandler(log, cardRepo, verdictRepo),
		Model:    handler.NewModelHandler(log, sc.ExpectedFeatures(), classifier.FeatureImportances()),
	})
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new batches arrive
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Drain the batch worker pool
	batchCoordinator.Shutdown()

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}

// seedRegistries loads the known-fraudulent flags and stolen-card reports from
// PostgreSQL into the in-memory registry store.
func seedRegistries(ctx context.Context, registries *registry.Store, cards card.Repository) error {
	fraudulent, err := cards.ListKnownFraudulent(ctx)
	if err != nil {
		return fmt.Errorf("listing known-fraudulent cards: %w", err)
	}
	registries.AddFraudulent(fraudulent...)

	reports, err := cards.ListStolenReports(ctx)
	if err != nil {
		return fmt.Errorf("listing stolen reports: %w", err)
	}
	for _, r := range reports {
		registries.MarkStolen(r.CardID, r.ReportedBy, r.Reason, r.ReportedAt)
	}
	return nil
}
