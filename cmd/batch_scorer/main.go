package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cardshield-scoring/internal/batch_scorer/consumer"
	"github.com/cardshield-scoring/internal/config"
	"github.com/cardshield-scoring/internal/data/mongo"
	"github.com/cardshield-scoring/internal/data/postgres"
	"github.com/cardshield-scoring/internal/domain/card"
	"github.com/cardshield-scoring/internal/logger"
	"github.com/cardshield-scoring/internal/platform/messaging/consumers"
	"github.com/cardshield-scoring/internal/platform/messaging/producers"
	"github.com/cardshield-scoring/internal/platform/persistence"
	"github.com/cardshield-scoring/internal/registry"
	"github.com/cardshield-scoring/internal/scoring/decision"
	"github.com/cardshield-scoring/internal/scoring/features"
	"github.com/cardshield-scoring/internal/scoring/model"
	"github.com/cardshield-scoring/internal/scoring/rules"
	"github.com/cardshield-scoring/internal/scoring/scaler"
	"github.com/cardshield-scoring/internal/scoring/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("batch_scorer")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Batch Scorer",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	// Load model artifacts; the consumer cannot score anything without them
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

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka verdict producer
	verdictProducer, err := producers.NewVerdictMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize verdict Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Keep the
	// interface value nil in that case so the handler's nil check holds.
	var dlqPublisher producers.DeadLetterPublisher
	if dlqProducer != nil {
		dlqPublisher = dlqProducer
	}

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

	// Wrap the pipeline in a worker pool to bound concurrent scoring
	poolScorer, err := service.NewWorkerPoolScorer(
		detectionService,
		service.WorkerPoolScorerConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize score event handler
	scoreEventHandler := consumer.NewScoreEventHandler(
		log,
		poolScorer,
		verdictProducer,
		dlqPublisher,
	)

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.ScoreRequestTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.ScoreRequestTopic, cfg.Kafka.ConsumerGroup, scoreEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Drain the worker pool
	poolScorer.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close Kafka producers
	if err = verdictProducer.Close(); err != nil {
		log.Error("Error closing verdict Kafka producer", "error", err)
	}
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Batch Scorer shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Batch Scorer shutdown completed with errors")
	} else {
		log.Info("Batch Scorer shutdown completed successfully")
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
