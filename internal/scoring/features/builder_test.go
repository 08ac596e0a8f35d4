package features

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cardshield-scoring/internal/domain/card"
	"github.com/cardshield-scoring/internal/domain/transaction"
)

type fixedGeoRisk struct{ risk float64 }

func (f fixedGeoRisk) RiskFor(string) float64 { return f.risk }

func testBuilder(risk float64) *Builder {
	return NewBuilder(slog.Default(), fixedGeoRisk{risk: risk})
}

func TestBuilder_Build_WithProfile(t *testing.T) {
	b := testBuilder(0.3)

	rec := &transaction.Record{
		CardID:       "card_a",
		Amount:       500,
		Timestamp:    time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		CVV:          "123",
		HourlyCount:  4,
		HourlyAmount: 900,
		Signals:      map[string]float64{"V1": -1.2, "V7": 0.5},
	}
	profile := &card.Profile{
		CardID:      "card_a",
		Expiry:      "12/27",
		CVV:         "999",
		CreditLimit: 10000,
	}

	got := b.Build(rec, profile)

	assert.Equal(t, 500.0, got["Amount"])
	assert.Equal(t, 0.05, got["amount_ratio"])
	assert.Equal(t, 1.0, got["cvv_mismatch"])
	assert.Greater(t, got["card_age_days"], 0.0)
	assert.Equal(t, 0.3, got["geo_risk"])
	assert.Equal(t, 4.0, got["hourly_count"])
	assert.Equal(t, -1.2, got["V1"])
	assert.Equal(t, 0.5, got["V7"])
	assert.Equal(t, 0.0, got["V2"]) // absent signals default to 0
	assert.Len(t, got, 6+transaction.SignalFieldCount)
}

func TestBuilder_Build_MatchingCVV(t *testing.T) {
	b := testBuilder(0)

	rec := &transaction.Record{CardID: "card_a", Amount: 10, CVV: "123"}
	profile := &card.Profile{CardID: "card_a", CVV: "123", CreditLimit: 100}

	got := b.Build(rec, profile)
	assert.Equal(t, 0.0, got["cvv_mismatch"])
}

func TestBuilder_Build_UnknownCard(t *testing.T) {
	b := testBuilder(0.7)

	rec := &transaction.Record{
		CardID: "card_unknown",
		Amount: 250,
		CVV:    "123",
	}

	got := b.Build(rec, nil)

	// Profile-derived features fall back to neutral values
	assert.Equal(t, 0.0, got["amount_ratio"])
	assert.Equal(t, 0.0, got["cvv_mismatch"])
	assert.Equal(t, 0.0, got["card_age_days"])
	assert.Equal(t, 250.0, got["Amount"])
	assert.Equal(t, 0.7, got["geo_risk"])
}

func TestBuilder_Build_UnparseableExpiry(t *testing.T) {
	b := testBuilder(0)

	rec := &transaction.Record{CardID: "card_a", Amount: 10, Timestamp: time.Now()}
	profile := &card.Profile{CardID: "card_a", Expiry: "garbage", CreditLimit: 100}

	got := b.Build(rec, profile)
	assert.Equal(t, 0.0, got["card_age_days"])
}

func TestHashedGeoRisk_Deterministic(t *testing.T) {
	g := HashedGeoRisk{}

	a := g.RiskFor("Lisbon, PT")
	assert.Equal(t, a, g.RiskFor("Lisbon, PT"))
	assert.GreaterOrEqual(t, a, 0.0)
	assert.Less(t, a, 1.0)
	assert.Equal(t, 0.0, g.RiskFor(""))
}
