// Package decision assembles the final verdict from the rule engine's
// decision and the model's evidence: confidence labelling, top contributing
// factors and the audit fields.
package decision

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cardshield-scoring/internal/domain/transaction"
	"github.com/cardshield-scoring/internal/domain/verdict"
	"github.com/cardshield-scoring/internal/scoring/rules"
)

// Composer builds verdicts. The threshold is recorded on every verdict so
// historical records stay interpretable after a threshold change.
type Composer struct {
	threshold  float64
	topFactors int
}

func NewComposer(threshold float64, topFactors int) *Composer {
	return &Composer{
		threshold:  threshold,
		topFactors: topFactors,
	}
}

// Evidence is the model-side material the explanation is derived from. It is
// empty when a registry rule skipped the model.
type Evidence struct {
	Scaled       []float64
	FeatureNames []string
	Importances  []float64
}

// Compose turns a rule decision into the immutable verdict record.
func (c *Composer) Compose(rec *transaction.Record, d rules.Decision, ev Evidence) *verdict.Verdict {
	v := &verdict.Verdict{
		VerdictID:        uuid.New(),
		TransactionID:    rec.TransactionID,
		CardID:           rec.CardID,
		IsFraud:          d.IsFraud,
		FraudProbability: verdict.RoundProbability(d.Probability),
		Reason:           d.Reason,
		Reasons:          d.Reasons,
		ModelConfidence:  verdict.ConfidenceFor(d.Probability),
		Threshold:        c.threshold,
		ModelSkipped:     d.ModelSkipped,
		CorrelationID:    rec.CorrelationID,
		CreatedAt:        time.Now().UTC(),
	}

	if !d.ModelSkipped {
		v.TopFactors = c.topContributors(ev)
	}

	return v
}

// topContributors ranks features by |scaled value| times global importance
// and keeps the top N. Ties preserve training order. No explanation is
// produced when the artifact ships no importances.
func (c *Composer) topContributors(ev Evidence) []verdict.Factor {
	n := len(ev.Scaled)
	if n == 0 || len(ev.Importances) != n || len(ev.FeatureNames) != n {
		return nil
	}

	factors := make([]verdict.Factor, n)
	for i := 0; i < n; i++ {
		contribution := abs(ev.Scaled[i]) * ev.Importances[i]
		factors[i] = verdict.Factor{
			Feature:      ev.FeatureNames[i],
			Value:        ev.Scaled[i],
			Contribution: contribution,
		}
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Contribution > factors[j].Contribution
	})

	if len(factors) > c.topFactors {
		factors = factors[:c.topFactors]
	}
	return factors
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
