package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cardshield-scoring/internal/domain/card"
	"github.com/cardshield-scoring/internal/domain/transaction"
	"github.com/cardshield-scoring/internal/domain/verdict"
	"github.com/cardshield-scoring/internal/registry"
	"github.com/cardshield-scoring/internal/scoring/decision"
	"github.com/cardshield-scoring/internal/scoring/features"
	"github.com/cardshield-scoring/internal/scoring/model"
	"github.com/cardshield-scoring/internal/scoring/rules"
	"github.com/cardshield-scoring/internal/scoring/scaler"
)

// DetectionService runs the full scoring pipeline for one transaction:
// registry short-circuits, feature construction, scaling, classification,
// the rule chain and verdict composition, with a best-effort audit write.
type DetectionService struct {
	cards      card.Repository
	verdicts   verdict.Repository
	registries *registry.Store
	builder    *features.Builder
	scaler     *scaler.Scaler
	classifier model.Classifier
	ruleEngine *rules.Engine
	composer   *decision.Composer
	logger     *slog.Logger
}

func NewDetectionService(
	logger *slog.Logger,
	cards card.Repository,
	verdicts verdict.Repository,
	registries *registry.Store,
	builder *features.Builder,
	sc *scaler.Scaler,
	classifier model.Classifier,
	ruleEngine *rules.Engine,
	composer *decision.Composer,
) *DetectionService {
	return &DetectionService{
		cards:      cards,
		verdicts:   verdicts,
		registries: registries,
		builder:    builder,
		scaler:     sc,
		classifier: classifier,
		ruleEngine: ruleEngine,
		composer:   composer,
		logger:     logger,
	}
}

// Score runs the pipeline for a single transaction. Validation errors and
// feature contract violations surface unchanged so callers can map them to
// client errors; internal faults come back as a ScoringError and never as a
// legitimate verdict.
func (s *DetectionService) Score(ctx context.Context, rec *transaction.Record) (*verdict.Verdict, error) {
	logger := s.logger
	if rec.CorrelationID != "" {
		logger = s.logger.With("correlation_id", rec.CorrelationID)
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	// Registry rules run before any model work and are terminal on a hit.
	if d := s.ruleEngine.CheckRegistries(rec.CardID); d != nil {
		v := s.composer.Compose(rec, *d, decision.Evidence{})
		s.auditVerdict(ctx, logger, v)
		return v, nil
	}

	profile := s.lookupProfile(ctx, logger, rec.CardID)

	raw := s.builder.Build(rec, profile)

	scaled, err := s.scaler.Transform(raw)
	if err != nil {
		var contractErr *scaler.FeatureContractError
		if errors.As(err, &contractErr) {
			return nil, err
		}
		return nil, &ScoringError{TransactionID: rec.TransactionID, Stage: "scaling", Err: err}
	}

	probability, err := s.classifier.PredictProbability(scaled)
	if err != nil {
		logger.Error("Classifier failed to score transaction",
			"transaction_id", rec.TransactionID,
			"card_id", rec.CardID,
			"error", err)
		return nil, &ScoringError{TransactionID: rec.TransactionID, Stage: "classification", Err: err}
	}

	d := s.ruleEngine.Apply(rules.Input{
		CardID:       rec.CardID,
		Amount:       rec.Amount,
		HourlyCount:  rec.HourlyCount,
		HourlyAmount: rec.HourlyAmount,
	}, probability)

	if d.IsFraud {
		count := s.registries.RecordSuspicion(rec.CardID)
		logger.Warn("Transaction flagged as fraudulent",
			"transaction_id", rec.TransactionID,
			"card_id", rec.CardID,
			"fraud_probability", probability,
			"suspicion_count", count)
	}

	v := s.composer.Compose(rec, d, decision.Evidence{
		Scaled:       scaled,
		FeatureNames: s.scaler.ExpectedFeatures(),
		Importances:  s.classifier.FeatureImportances(),
	})

	s.auditVerdict(ctx, logger, v)
	return v, nil
}

// lookupProfile fetches the card profile for feature enrichment. Unknown
// cards are expected and scoring proceeds without a profile; infrastructure
// failures are logged and likewise degrade to profile-less scoring rather
// than blocking the verdict.
func (s *DetectionService) lookupProfile(ctx context.Context, logger *slog.Logger, cardID string) *card.Profile {
	profile, err := s.cards.GetByCardID(ctx, cardID)
	if err != nil {
		if errors.Is(err, card.ErrCardNotFound{}) {
			logger.Debug("Card not on file, scoring without profile", "card_id", cardID)
		} else {
			logger.Error("Card lookup failed, scoring without profile", "card_id", cardID, "error", err)
		}
		return nil
	}
	return profile
}

// auditVerdict persists the verdict for the audit trail. The write is best
// effort: the caller already holds the verdict, so a storage failure is
// logged but never turns a scored transaction into an error.
func (s *DetectionService) auditVerdict(ctx context.Context, logger *slog.Logger, v *verdict.Verdict) {
	if s.verdicts == nil {
		return
	}
	if err := s.verdicts.Create(ctx, v); err != nil {
		logger.Error("Failed to persist verdict audit record",
			"verdict_id", v.VerdictID.String(),
			"transaction_id", v.TransactionID,
			"error", err)
	}
}
