package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		name        string
		probability float64
		want        Confidence
	}{
		{"certain fraud", 1.0, ConfidenceHigh},
		{"certain legitimate", 0.02, ConfidenceHigh},
		{"clearly above boundary", 0.95, ConfidenceHigh},
		{"moderately above boundary", 0.75, ConfidenceMedium},
		{"moderately below boundary", 0.25, ConfidenceMedium},
		{"near boundary", 0.55, ConfidenceLow},
		{"exactly at boundary", 0.5, ConfidenceLow},
		{"at the high edge", 0.9, ConfidenceLow}, // |0.9-0.5| == 0.4 is not > 0.4
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfidenceFor(tt.probability))
		})
	}
}

func TestRoundProbability(t *testing.T) {
	assert.Equal(t, 0.1235, RoundProbability(0.123456))
	assert.Equal(t, 1.0, RoundProbability(1.0))
	assert.Equal(t, 0.0, RoundProbability(0.00004))
}

func TestVerdict_Label(t *testing.T) {
	assert.Equal(t, "Fraudulent", (&Verdict{IsFraud: true}).Label())
	assert.Equal(t, "Legitimate", (&Verdict{}).Label())
}

func TestErrVerdictNotFound_Is(t *testing.T) {
	err := ErrVerdictNotFound{TransactionID: "tx_1"}

	assert.ErrorIs(t, err, ErrVerdictNotFound{})
	assert.ErrorIs(t, err, ErrVerdictNotFound{TransactionID: "tx_1"})
	assert.NotErrorIs(t, err, ErrVerdictNotFound{TransactionID: "tx_2"})
}
