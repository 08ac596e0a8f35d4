package decision

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardshield-scoring/internal/domain/transaction"
	"github.com/cardshield-scoring/internal/domain/verdict"
	"github.com/cardshield-scoring/internal/scoring/rules"
)

func testEvidence() Evidence {
	return Evidence{
		Scaled:       []float64{-2.0, 0.5, 1.0, 0.1},
		FeatureNames: []string{"Amount", "V1", "V2", "V3"},
		Importances:  []float64{0.4, 0.4, 0.4, 0.9},
	}
}

func TestComposer_Compose(t *testing.T) {
	c := NewComposer(0.85, 3)

	rec := &transaction.Record{
		TransactionID: "tx_9",
		CardID:        "card_a",
		Amount:        100,
		CorrelationID: "corr-1",
	}
	d := rules.Decision{
		IsFraud:     true,
		Probability: 0.91234567,
		Reason:      verdict.ReasonHighProbability,
		Reasons:     []string{verdict.ReasonAmountExceeded},
	}

	v := c.Compose(rec, d, testEvidence())

	assert.NotEqual(t, uuid.Nil, v.VerdictID)
	assert.Equal(t, "tx_9", v.TransactionID)
	assert.Equal(t, "card_a", v.CardID)
	assert.True(t, v.IsFraud)
	assert.Equal(t, 0.9123, v.FraudProbability)
	assert.Equal(t, verdict.ReasonHighProbability, v.Reason)
	assert.Equal(t, []string{verdict.ReasonAmountExceeded}, v.Reasons)
	assert.Equal(t, verdict.ConfidenceHigh, v.ModelConfidence)
	assert.Equal(t, 0.85, v.Threshold)
	assert.Equal(t, "corr-1", v.CorrelationID)
	assert.False(t, v.CreatedAt.IsZero())
	assert.Equal(t, "Fraudulent", v.Label())

	// |-2|*0.4=0.8, |1|*0.4=0.4, |0.5|*0.4=0.2, |0.1|*0.9=0.09
	require.Len(t, v.TopFactors, 3)
	assert.Equal(t, "Amount", v.TopFactors[0].Feature)
	assert.Equal(t, "V2", v.TopFactors[1].Feature)
	assert.Equal(t, "V1", v.TopFactors[2].Feature)
	assert.InDelta(t, 0.8, v.TopFactors[0].Contribution, 1e-12)
	assert.Equal(t, -2.0, v.TopFactors[0].Value)
}

func TestComposer_Compose_TiesPreserveTrainingOrder(t *testing.T) {
	c := NewComposer(0.85, 2)

	ev := Evidence{
		Scaled:       []float64{1, 1, 1},
		FeatureNames: []string{"a", "b", "c"},
		Importances:  []float64{0.5, 0.5, 0.5},
	}
	v := c.Compose(&transaction.Record{CardID: "card_a"}, rules.Decision{Probability: 0.1}, ev)

	require.Len(t, v.TopFactors, 2)
	assert.Equal(t, "a", v.TopFactors[0].Feature)
	assert.Equal(t, "b", v.TopFactors[1].Feature)
}

func TestComposer_Compose_ModelSkipped(t *testing.T) {
	c := NewComposer(0.85, 3)

	d := rules.Decision{
		IsFraud:      true,
		Probability:  1.0,
		Reason:       verdict.ReasonKnownFraudulent,
		ModelSkipped: true,
	}
	v := c.Compose(&transaction.Record{CardID: "card_bad"}, d, testEvidence())

	assert.True(t, v.ModelSkipped)
	assert.Empty(t, v.TopFactors)
	assert.Equal(t, 1.0, v.FraudProbability)
	assert.Equal(t, verdict.ConfidenceHigh, v.ModelConfidence)
}

func TestComposer_Compose_NoImportances(t *testing.T) {
	c := NewComposer(0.85, 3)

	ev := Evidence{
		Scaled:       []float64{1, 2},
		FeatureNames: []string{"a", "b"},
	}
	v := c.Compose(&transaction.Record{CardID: "card_a"}, rules.Decision{Probability: 0.4}, ev)

	assert.Empty(t, v.TopFactors)
	assert.Equal(t, verdict.ConfidenceLow, v.ModelConfidence)
}
