// Package rules holds the business rule layer that sits around the model.
// Registry rules run before scoring and can short-circuit it entirely; the
// post-model chain turns a probability into the final fraud decision and
// annotates it with advisory findings.
package rules

import (
	"log/slog"

	"github.com/cardshield-scoring/internal/config"
	"github.com/cardshield-scoring/internal/domain/verdict"
	"github.com/cardshield-scoring/internal/registry"
)

// Input carries the transaction facts the rule chain evaluates.
type Input struct {
	CardID       string
	Amount       float64
	HourlyCount  int
	HourlyAmount float64
}

// Decision is the rule engine's output. Reason names the rule that decided
// the outcome; Reasons collects advisory findings from soft rules that never
// flip the decision on their own.
type Decision struct {
	IsFraud      bool
	Probability  float64
	Reason       string
	Reasons      []string
	ModelSkipped bool
}

// Engine evaluates registry short-circuits and the post-model rule chain.
type Engine struct {
	registries *registry.Store
	cfg        *config.RulesConfig
	logger     *slog.Logger
}

func NewEngine(logger *slog.Logger, registries *registry.Store, cfg *config.RulesConfig) *Engine {
	return &Engine{
		registries: registries,
		cfg:        cfg,
		logger:     logger,
	}
}

// CheckRegistries runs the pre-model registry rules. A hit returns a terminal
// fraud decision with probability 1.0 and the model is never consulted; a
// miss returns nil and scoring proceeds. Known-fraud outranks stolen when a
// card is in both registries.
func (e *Engine) CheckRegistries(cardID string) *Decision {
	if e.registries.IsFraudulent(cardID) {
		count := e.registries.RecordSuspicion(cardID)
		e.logger.Warn("Blocked transaction on pre-registered fraudulent card",
			"card_id", cardID,
			"suspicion_count", count)
		return &Decision{
			IsFraud:      true,
			Probability:  1.0,
			Reason:       verdict.ReasonKnownFraudulent,
			ModelSkipped: true,
		}
	}

	if e.registries.IsStolen(cardID) {
		e.logger.Warn("Blocked transaction on stolen card", "card_id", cardID)
		return &Decision{
			IsFraud:      true,
			Probability:  1.0,
			Reason:       verdict.ReasonReportedStolen,
			ModelSkipped: true,
		}
	}

	return nil
}

// Apply runs the post-model chain over the scored probability. The threshold
// rule alone decides fraud; the amount and velocity rules only append
// advisory reasons for downstream review.
func (e *Engine) Apply(in Input, probability float64) Decision {
	d := Decision{
		IsFraud:     probability >= e.cfg.FraudThreshold,
		Probability: probability,
		Reason:      verdict.ReasonWithinNormal,
	}
	if d.IsFraud {
		d.Reason = verdict.ReasonHighProbability
	}

	if in.Amount > e.cfg.AmountThreshold {
		d.Reasons = append(d.Reasons, verdict.ReasonAmountExceeded)
	}
	if in.HourlyAmount+in.Amount > e.cfg.HourlyLimit {
		d.Reasons = append(d.Reasons, verdict.ReasonHourlyExceeded)
	}

	if len(d.Reasons) > 0 && !d.IsFraud {
		e.logger.Info("Advisory rules fired on legitimate transaction",
			"card_id", in.CardID,
			"reasons", d.Reasons)
	}

	return d
}
