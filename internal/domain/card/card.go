package card

import (
	"strconv"
	"strings"
	"time"
)

// Profile is a card record owned by the external card registry. The scoring
// core only reads profiles; issuing, limits, and KYC live elsewhere.
type Profile struct {
	CardID          string    `json:"card_id"`
	HolderName      string    `json:"holder_name"`
	Expiry          string    `json:"expiry"` // MM/YY or MM/YYYY
	CVV             string    `json:"cvv"`    // CVV of record, compared against the submitted one
	Network         string    `json:"network"`
	CreditLimit     float64   `json:"credit_limit"`
	KnownFraudulent bool      `json:"known_fraudulent"`
	BillingAddress  string    `json:"billing_address"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StolenReport records a cardholder's stolen-card declaration. A reported card
// is blocked unconditionally by the rule engine.
type StolenReport struct {
	CardID     string    `json:"card_id"`
	ReportedBy string    `json:"reported_by"`
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reported_at"`
}

// DaysUntilExpiry parses the profile's MM/YY (or MM/YYYY) expiry string and
// returns the number of days between ref and the end of the expiry month.
// A negative value means the card is already expired, which is intentional
// signal for the model, not an error. Returns ok=false on an unparseable
// expiry string.
func (p *Profile) DaysUntilExpiry(ref time.Time) (days float64, ok bool) {
	parts := strings.Split(strings.TrimSpace(p.Expiry), "/")
	if len(parts) != 2 {
		return 0, false
	}

	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || month < 1 || month > 12 {
		return 0, false
	}

	yearPart := strings.TrimSpace(parts[1])
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return 0, false
	}
	if len(yearPart) == 2 {
		year += 2000
	}

	// Cards are valid through the last instant of the expiry month.
	expiresAt := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return expiresAt.Sub(ref).Hours() / 24, true
}
