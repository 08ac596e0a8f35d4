// Package features assembles the raw feature map consumed by the scaler. The
// builder merges the transaction record with the card profile (when one
// exists) and the geo risk provider into named features; ordering and
// normalization are the scaler's job.
package features

import (
	"log/slog"

	"github.com/cardshield-scoring/internal/domain/card"
	"github.com/cardshield-scoring/internal/domain/transaction"
)

// Builder turns a transaction record into the named feature map.
type Builder struct {
	geoRisk GeoRiskProvider
	logger  *slog.Logger
}

func NewBuilder(logger *slog.Logger, geoRisk GeoRiskProvider) *Builder {
	return &Builder{
		geoRisk: geoRisk,
		logger:  logger,
	}
}

// Build produces the raw feature map for a validated record. The profile is
// optional: profile-derived features fall back to neutral values when the
// card is unknown, so scoring still proceeds.
func (b *Builder) Build(rec *transaction.Record, profile *card.Profile) map[string]float64 {
	out := make(map[string]float64, 6+transaction.SignalFieldCount)

	out["Amount"] = rec.Amount
	out["amount_ratio"] = amountRatio(rec, profile)
	out["cvv_mismatch"] = cvvMismatch(rec, profile)
	out["card_age_days"] = cardAgeDays(b.logger, rec, profile)
	out["geo_risk"] = b.geoRisk.RiskFor(rec.MerchantLocation)
	out["hourly_count"] = float64(rec.HourlyCount)

	for i := 1; i <= transaction.SignalFieldCount; i++ {
		name := transaction.SignalFieldName(i)
		out[name] = rec.Signal(name)
	}

	return out
}

// amountRatio is the transaction amount relative to the card's credit limit.
// Zero when the card is unknown or carries no usable limit.
func amountRatio(rec *transaction.Record, profile *card.Profile) float64 {
	if profile == nil || profile.CreditLimit <= 0 {
		return 0
	}
	return rec.Amount / profile.CreditLimit
}

// cvvMismatch is 1 when a CVV was entered and differs from the card of
// record. No comparison is possible without both sides.
func cvvMismatch(rec *transaction.Record, profile *card.Profile) float64 {
	if profile == nil || rec.CVV == "" || profile.CVV == "" {
		return 0
	}
	if rec.CVV != profile.CVV {
		return 1
	}
	return 0
}

// cardAgeDays is the days until the card expires relative to the transaction
// time. Negative for expired cards, zero when the expiry cannot be parsed.
func cardAgeDays(logger *slog.Logger, rec *transaction.Record, profile *card.Profile) float64 {
	if profile == nil {
		return 0
	}
	days, ok := profile.DaysUntilExpiry(rec.Timestamp)
	if !ok {
		logger.Warn("Unparseable card expiry, defaulting card_age_days to 0",
			"card_id", profile.CardID,
			"expiry", profile.Expiry)
		return 0
	}
	return days
}
