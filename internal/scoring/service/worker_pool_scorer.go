package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/cardshield-scoring/internal/domain/transaction"
	"github.com/cardshield-scoring/internal/domain/verdict"
)

// WorkerPoolScorer implements the TransactionScorer interface over a shared
// worker pool, bounding the number of concurrent pipeline runs regardless of
// how fast messages arrive.
type WorkerPoolScorer struct {
	baseScorer TransactionScorer
	pool       *ants.Pool
	logger     *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan scoreResult
}

type scoreResult struct {
	verdict *verdict.Verdict
	err     error
}

type WorkerPoolScorerConfig struct {
	Size int
}

func NewWorkerPoolScorer(
	baseScorer TransactionScorer,
	config WorkerPoolScorerConfig,
	logger *slog.Logger,
) (*WorkerPoolScorer, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolScorer{
		baseScorer: baseScorer,
		pool:       pool,
		logger:     logger,
		results:    make(map[string]chan scoreResult),
	}, nil
}

// Score submits a transaction to the worker pool and waits for its verdict.
func (s *WorkerPoolScorer) Score(ctx context.Context, rec *transaction.Record) (*verdict.Verdict, error) {
	logger := s.logger
	if rec.CorrelationID != "" {
		logger = s.logger.With("correlation_id", rec.CorrelationID)
	}

	logger.Debug("Submitting transaction to worker pool",
		"transaction_id", rec.TransactionID,
		"card_id", rec.CardID,
	)

	// Create a channel to receive the scoring result
	resultChan := make(chan scoreResult, 1)

	transactionID := rec.TransactionID
	s.mu.Lock()
	s.results[transactionID] = resultChan
	s.mu.Unlock()

	// Create a copy of the record to avoid data races
	recCopy := *rec

	err := s.pool.Submit(func() {
		v, scoreErr := s.baseScorer.Score(ctx, &recCopy)

		resultChan <- scoreResult{verdict: v, err: scoreErr}

		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		// If we couldn't submit the task to the pool, remove the result channel
		s.mu.Lock()
		delete(s.results, transactionID)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit transaction to worker pool",
			"transaction_id", rec.TransactionID,
			"error", err,
		)
		return nil, err
	}

	// Wait for the result from the worker
	result := <-resultChan
	return result.verdict, result.err
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolScorer) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolScorer) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolScorer) Capacity() int {
	return s.pool.Cap()
}
