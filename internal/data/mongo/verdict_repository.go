// Package mongo stores the verdict audit trail. Every scored transaction
// leaves exactly one immutable verdict document here.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cardshield-scoring/internal/domain/verdict"
)

const (
	// VerdictCollectionName is the name of the verdict collection in MongoDB
	VerdictCollectionName = "verdicts"
)

// VerdictRepository implements the verdict.Repository interface for MongoDB
type VerdictRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewVerdictRepository creates a new MongoDB verdict repository
func NewVerdictRepository(logger *slog.Logger, db *mongo.Database) verdict.Repository {
	return &VerdictRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new verdict after checking for duplicates.
// Returns ErrDuplicateVerdict if a verdict for the transaction already exists.
func (r *VerdictRepository) Create(ctx context.Context, v *verdict.Verdict) error {
	collection := r.db.Collection(VerdictCollectionName)

	existing, err := r.GetByTransactionID(ctx, v.TransactionID)
	if err != nil && !errors.Is(err, verdict.ErrVerdictNotFound{}) {
		r.logger.Error("Failed to check for existing verdict",
			"transaction_id", v.TransactionID,
			"error", err)
		return fmt.Errorf("failed to check for existing verdict: %w", err)
	}

	if existing != nil {
		return verdict.ErrDuplicateVerdict{TransactionID: v.TransactionID}
	}

	_, err = collection.InsertOne(ctx, v)
	if err != nil {
		r.logger.Error("Failed to create verdict",
			"transaction_id", v.TransactionID,
			"error", err)
		return fmt.Errorf("failed to create verdict: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a verdict by its transaction ID.
// Returns ErrVerdictNotFound if no verdict exists for the given transaction.
func (r *VerdictRepository) GetByTransactionID(ctx context.Context, transactionID string) (*verdict.Verdict, error) {
	collection := r.db.Collection(VerdictCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	var v verdict.Verdict
	err := collection.FindOne(ctx, filter).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, verdict.ErrVerdictNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get verdict",
			"transaction_id", transactionID,
			"error", err)
		return nil, fmt.Errorf("failed to get verdict: %w", err)
	}

	return &v, nil
}

// GetByCardID retrieves paginated verdicts for a card.
// Results are sorted by creation time in descending order (newest first).
func (r *VerdictRepository) GetByCardID(ctx context.Context, cardID string, limit, offset int) ([]*verdict.Verdict, error) {
	collection := r.db.Collection(VerdictCollectionName)

	filter := bson.M{"card_id": cardID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get verdicts",
			"card_id", cardID,
			"error", err)
		return nil, fmt.Errorf("failed to get verdicts: %w", err)
	}
	defer cursor.Close(ctx)

	var verdicts []*verdict.Verdict
	if err := cursor.All(ctx, &verdicts); err != nil {
		r.logger.Error("Failed to decode verdicts",
			"card_id", cardID,
			"error", err)
		return nil, fmt.Errorf("failed to decode verdicts: %w", err)
	}

	return verdicts, nil
}

// CountByCardID counts the total number of verdicts for a card
func (r *VerdictRepository) CountByCardID(ctx context.Context, cardID string) (int64, error) {
	collection := r.db.Collection(VerdictCollectionName)

	filter := bson.M{"card_id": cardID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count verdicts",
			"card_id", cardID,
			"error", err)
		return 0, fmt.Errorf("failed to count verdicts: %w", err)
	}

	return count, nil
}
