package service

import (
	"context"

	"github.com/cardshield-scoring/internal/domain/transaction"
	"github.com/cardshield-scoring/internal/domain/verdict"
)

// TransactionScorer scores a single transaction end to end and returns the
// final verdict.
type TransactionScorer interface {
	Score(ctx context.Context, rec *transaction.Record) (*verdict.Verdict, error)
}

// BatchScorer scores a batch of transactions concurrently. Item failures are
// reported per item; the batch call itself only fails on submission errors.
type BatchScorer interface {
	ScoreBatch(ctx context.Context, recs []*transaction.Record) (*BatchResult, error)
}

// ItemResult is the outcome for one transaction in a batch, at the same index
// as its input.
type ItemResult struct {
	Index         int              `json:"index"`
	TransactionID string           `json:"transaction_id"`
	Verdict       *verdict.Verdict `json:"verdict,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// BatchResult aggregates a batch run.
type BatchResult struct {
	Results []ItemResult `json:"results"`
	Scored  int          `json:"scored"`
	Flagged int          `json:"flagged"`
	Failed  int          `json:"failed"`
}
