package verdict

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Confidence is a coarse distance-from-decision-boundary label, not a
// calibrated probability.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Canonical reasons attached to verdicts by the rule engine.
const (
	ReasonKnownFraudulent = "Pre-registered fraudulent card"
	ReasonReportedStolen  = "Card reported stolen"
	ReasonHighProbability = "High probability"
	ReasonWithinNormal    = "Within normal parameters"
	ReasonAmountExceeded  = "Amount exceeds configured threshold"
	ReasonHourlyExceeded  = "Hourly spending limit exceeded"
)

// ScoringResult is the model-only output: the fraud probability and the
// model-internal prediction at the 0.5 cut. The prediction feeds the final
// verdict but never substitutes for it.
type ScoringResult struct {
	FraudProbability float64 `json:"fraud_probability" bson:"fraud_probability"`
	Prediction       bool    `json:"prediction" bson:"prediction"`
}

// Factor is a single contributing feature ranked by the explanation heuristic.
type Factor struct {
	Feature      string  `json:"feature" bson:"feature"`
	Value        float64 `json:"value" bson:"value"` // scaled feature value
	Contribution float64 `json:"contribution" bson:"contribution"`
}

// Verdict is the terminal artifact of the scoring pipeline: the accept/block
// decision with its explanation. Produced exactly once per transaction and
// never mutated after creation.
type Verdict struct {
	VerdictID        uuid.UUID  `json:"verdict_id" bson:"verdict_id"`
	TransactionID    string     `json:"transaction_id" bson:"transaction_id"`
	CardID           string     `json:"card_id" bson:"card_id"`
	IsFraud          bool       `json:"is_fraud" bson:"is_fraud"`
	FraudProbability float64    `json:"fraud_probability" bson:"fraud_probability"` // echoed from the model or forced by a short-circuit rule
	Reason           string     `json:"reason" bson:"reason"`                       // authoritative reason from the deciding rule
	Reasons          []string   `json:"reasons,omitempty" bson:"reasons,omitempty"` // advisory reasons appended by soft rules
	TopFactors       []Factor   `json:"top_factors,omitempty" bson:"top_factors,omitempty"`
	ModelConfidence  Confidence `json:"model_confidence" bson:"model_confidence"`
	Threshold        float64    `json:"threshold" bson:"threshold"`
	ModelSkipped     bool       `json:"model_skipped,omitempty" bson:"model_skipped,omitempty"` // true when a registry rule short-circuited scoring
	CorrelationID    string     `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
}

// Label returns the human-readable verdict string.
func (v *Verdict) Label() string {
	if v.IsFraud {
		return "Fraudulent"
	}
	return "Legitimate"
}

// ConfidenceFor maps a probability to the coarse confidence label:
// High when |p-0.5| > 0.4, Medium when > 0.2, else Low.
func ConfidenceFor(probability float64) Confidence {
	distance := math.Abs(probability - 0.5)
	switch {
	case distance > 0.4:
		return ConfidenceHigh
	case distance > 0.2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// RoundProbability rounds to 4 decimals for display and audit records.
func RoundProbability(p float64) float64 {
	return math.Round(p*10000) / 10000
}
