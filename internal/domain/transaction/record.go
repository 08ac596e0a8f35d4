package transaction

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingCardID  = errors.New("card id is required")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrInvalidCVV     = errors.New("cvv must be 3 or 4 digits")
	ErrNegativeCounts = errors.New("hourly count and hourly amount must not be negative")
)

// SignalFieldCount is the number of anonymized signal fields (V1..V28)
// the trained model consumes.
const SignalFieldCount = 28

// SignalFieldName returns the canonical name of the i-th signal field (1-based).
func SignalFieldName(i int) string {
	return fmt.Sprintf("V%d", i)
}

// Record is a single transaction submitted for fraud scoring. It is built once
// per incoming request, is immutable after construction, and is consumed
// exactly once by the scoring pipeline.
type Record struct {
	TransactionID    string             `json:"transaction_id,omitempty"`
	CardID           string             `json:"card_id"`
	Amount           float64            `json:"amount"`
	Timestamp        time.Time          `json:"timestamp"`
	MerchantCategory string             `json:"merchant_category,omitempty"`
	MerchantLocation string             `json:"merchant_location,omitempty"`
	CVV              string             `json:"cvv,omitempty"`           // CVV entered at checkout, not the card of record
	HourlyCount      int                `json:"hourly_count,omitempty"`  // Transactions seen on this card in the last hour
	HourlyAmount     float64            `json:"hourly_amount,omitempty"` // Amount already spent on this card in the last hour
	CorrelationID    string             `json:"correlation_id,omitempty"`
	Signals          map[string]float64 `json:"signals,omitempty"` // Anonymized V1..V28 fields; missing entries default to 0
}

// Validate checks the record's shape before it reaches the feature builder.
// Malformed records are rejected here so feature construction can assume
// well-formed input.
func (r *Record) Validate() error {
	if r.CardID == "" {
		return ErrMissingCardID
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if r.CVV != "" && (len(r.CVV) < 3 || len(r.CVV) > 4) {
		return ErrInvalidCVV
	}
	if r.HourlyCount < 0 || r.HourlyAmount < 0 {
		return ErrNegativeCounts
	}
	return nil
}

// Signal returns the named signal field value, defaulting to 0 when absent.
// Absence is expected for synthetic and demo inputs, not an error.
func (r *Record) Signal(name string) float64 {
	if r.Signals == nil {
		return 0
	}
	return r.Signals[name]
}
