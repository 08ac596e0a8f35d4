// Package consumer handles score request messages arriving over Kafka.
// Undecodable messages and transactions the pipeline cannot score are routed
// to the dead letter queue instead of being retried forever.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cardshield-scoring/internal/domain/transaction"
	"github.com/cardshield-scoring/internal/platform/messaging/producers"
	"github.com/cardshield-scoring/internal/scoring/service"
)

// ScoreEventHandler handles incoming score request messages from Kafka
type ScoreEventHandler struct {
	scorer          service.TransactionScorer
	verdictProducer producers.MessagePublisher
	dlqProducer     producers.DeadLetterPublisher
	logger          *slog.Logger
}

// NewScoreEventHandler creates a new handler
func NewScoreEventHandler(
	logger *slog.Logger,
	scorer service.TransactionScorer,
	verdictProducer producers.MessagePublisher,
	dlqProducer producers.DeadLetterPublisher,
) *ScoreEventHandler {
	return &ScoreEventHandler{
		scorer:          scorer,
		verdictProducer: verdictProducer,
		dlqProducer:     dlqProducer,
		logger:          logger,
	}
}

// HandleMessage processes Kafka messages: decode the score request, run the
// pipeline, publish the verdict. Unscorable messages go to the DLQ so the
// partition keeps moving.
func (h *ScoreEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var rec transaction.Record
	if err := json.Unmarshal(value, &rec); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal score request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.dlqProducer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.dlqProducer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Successfully published undecodable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	if rec.TransactionID == "" {
		rec.TransactionID = string(key)
	}

	logger := h.logger
	if rec.CorrelationID != "" {
		logger = h.logger.With("correlation_id", rec.CorrelationID)
	}

	logger.Info("Received score request",
		"transaction_id", rec.TransactionID,
		"card_id", rec.CardID,
		"amount", rec.Amount,
	)

	v, err := h.scorer.Score(ctx, &rec)
	if err != nil {
		logger.Error("Failed to score transaction",
			"transaction_id", rec.TransactionID,
			"card_id", rec.CardID,
			"error", err,
		)

		// Validation and contract errors will fail identically on every
		// retry; park them in the DLQ instead of blocking the partition.
		if h.dlqProducer != nil {
			dlqReason := fmt.Sprintf("scoring failed: %s", err.Error())
			if dlqErr := h.dlqProducer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				logger.Error("Failed to publish message to DLQ after scoring error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				return nil
			}
		}
		return fmt.Errorf("scoring transaction %s failed: %w", rec.TransactionID, err)
	}

	if err := h.verdictProducer.Publish(ctx, v.TransactionID, v); err != nil {
		logger.Error("Failed to publish verdict",
			"transaction_id", v.TransactionID,
			"error", err,
		)
		return fmt.Errorf("publishing verdict for %s failed: %w", v.TransactionID, err)
	}

	logger.Info("Published verdict",
		"transaction_id", v.TransactionID,
		"is_fraud", v.IsFraud,
		"fraud_probability", v.FraudProbability,
	)
	return nil // Success, commit offset
}
