package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/cardshield-scoring/internal/domain/transaction"
)

// BatchCoordinator fans a batch out over a worker pool and collects results
// in input order. One bad transaction never sinks the batch: its failure is
// recorded at its index and the remaining items are scored normally.
type BatchCoordinator struct {
	scorer TransactionScorer
	pool   *ants.Pool
	logger *slog.Logger
}

type BatchCoordinatorConfig struct {
	Size int
}

func NewBatchCoordinator(
	scorer TransactionScorer,
	config BatchCoordinatorConfig,
	logger *slog.Logger,
) (*BatchCoordinator, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &BatchCoordinator{
		scorer: scorer,
		pool:   pool,
		logger: logger,
	}, nil
}

// ScoreBatch scores every record concurrently. Records without a transaction
// ID get a positional one so every result row is addressable.
func (c *BatchCoordinator) ScoreBatch(ctx context.Context, recs []*transaction.Record) (*BatchResult, error) {
	result := &BatchResult{
		Results: make([]ItemResult, len(recs)),
	}
	if len(recs) == 0 {
		return result, nil
	}

	c.logger.Info("Scoring batch", "size", len(recs))

	var wg sync.WaitGroup
	for i, rec := range recs {
		if rec.TransactionID == "" {
			rec.TransactionID = fmt.Sprintf("tx_%d", i)
		}

		i, rec := i, rec
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()

			v, err := c.scorer.Score(ctx, rec)
			if err != nil {
				result.Results[i] = ItemResult{
					Index:         i,
					TransactionID: rec.TransactionID,
					Error:         err.Error(),
				}
				return
			}
			result.Results[i] = ItemResult{
				Index:         i,
				TransactionID: rec.TransactionID,
				Verdict:       v,
			}
		})
		if err != nil {
			wg.Done()
			c.logger.Error("Failed to submit transaction to worker pool",
				"transaction_id", rec.TransactionID,
				"error", err)
			result.Results[i] = ItemResult{
				Index:         i,
				TransactionID: rec.TransactionID,
				Error:         err.Error(),
			}
		}
	}
	wg.Wait()

	for _, item := range result.Results {
		switch {
		case item.Error != "":
			result.Failed++
		case item.Verdict != nil && item.Verdict.IsFraud:
			result.Scored++
			result.Flagged++
		default:
			result.Scored++
		}
	}

	c.logger.Info("Batch scoring complete",
		"size", len(recs),
		"scored", result.Scored,
		"flagged", result.Flagged,
		"failed", result.Failed)

	return result, nil
}

// Shutdown gracefully shuts down the worker pool.
func (c *BatchCoordinator) Shutdown() {
	c.logger.Info("Shutting down batch worker pool", "running_workers", c.pool.Running())
	c.pool.Release()
}

// Running returns the number of running workers in the pool.
func (c *BatchCoordinator) Running() int {
	return c.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (c *BatchCoordinator) Capacity() int {
	return c.pool.Cap()
}
