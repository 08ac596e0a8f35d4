package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cardshield-scoring/internal/config"
	"github.com/segmentio/kafka-go"
)

type VerdictMessageProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new verdict producer and ensures the verdict topic exists
func NewVerdictMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*VerdictMessageProducer, error) {
	if cfg.VerdictTopic == "" {
		return nil, fmt.Errorf("kafka verdict topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for verdict producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.VerdictTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure verdict topic %s exists for verdict producer: %w", cfg.VerdictTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.VerdictTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.VerdictTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.VerdictTopic, "count", len(messages))
			}
		},
	}

	return &VerdictMessageProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.VerdictTopic,
	}, nil
}

func (p *VerdictMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for verdict producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message via verdict producer",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s via verdict producer: %w", p.topic, err)
	}

	p.logger.Debug("Published message via verdict producer",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *VerdictMessageProducer) Close() error {
	p.logger.Info("Closing verdict Kafka message producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close verdict kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
