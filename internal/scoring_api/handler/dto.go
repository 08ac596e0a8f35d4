package handler

// ScoreTransactionRequest represents a single transaction submitted for scoring
type ScoreTransactionRequest struct {
	TransactionID    string             `json:"transaction_id,omitempty"`
	CardID           string             `json:"card_id" binding:"required"`
	Amount           float64            `json:"amount" binding:"required,gt=0"`
	Timestamp        string             `json:"timestamp,omitempty"`
	MerchantCategory string             `json:"merchant_category,omitempty"`
	MerchantLocation string             `json:"merchant_location,omitempty"`
	CVV              string             `json:"cvv,omitempty"`
	HourlyCount      int                `json:"hourly_count,omitempty" binding:"min=0"`
	HourlyAmount     float64            `json:"hourly_amount,omitempty" binding:"min=0"`
	Signals          map[string]float64 `json:"signals,omitempty"`
}

// ScoreBatchRequest represents a batch of transactions submitted for scoring
type ScoreBatchRequest struct {
	Transactions []ScoreTransactionRequest `json:"transactions" binding:"required,min=1,dive"`
}

// VerdictResponse represents a fraud verdict in API responses
type VerdictResponse struct {
	VerdictID        string           `json:"verdict_id"`
	TransactionID    string           `json:"transaction_id"`
	CardID           string           `json:"card_id"`
	IsFraud          bool             `json:"is_fraud"`
	Verdict          string           `json:"verdict"`
	FraudProbability float64          `json:"fraud_probability"`
	Reason           string           `json:"reason"`
	Reasons          []string         `json:"reasons,omitempty"`
	TopFactors       []FactorResponse `json:"top_factors,omitempty"`
	ModelConfidence  string           `json:"model_confidence"`
	Threshold        float64          `json:"threshold"`
	ModelSkipped     bool             `json:"model_skipped,omitempty"`
	Timestamp        string           `json:"timestamp"`
}

// FactorResponse represents one contributing factor in API responses
type FactorResponse struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// BatchVerdictResponse represents a batch scoring outcome in API responses
type BatchVerdictResponse struct {
	Results []BatchItemResponse `json:"results"`
	Scored  int                 `json:"scored"`
	Flagged int                 `json:"flagged"`
	Failed  int                 `json:"failed"`
}

// BatchItemResponse represents one batch item outcome at its input index
type BatchItemResponse struct {
	Index         int              `json:"index"`
	TransactionID string           `json:"transaction_id"`
	Verdict       *VerdictResponse `json:"verdict,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// UpdateFraudListRequest represents a request to flag cards as fraudulent
type UpdateFraudListRequest struct {
	CardIDs []string `json:"card_ids" binding:"required,min=1"`
}

// ReportStolenRequest represents a stolen-card report
type ReportStolenRequest struct {
	CardID     string `json:"card_id" binding:"required"`
	ReportedBy string `json:"reported_by" binding:"required"`
	Reason     string `json:"reason,omitempty"`
}

// CardResponse represents a card profile in API responses. The CVV of record
// is never exposed.
type CardResponse struct {
	CardID          string  `json:"card_id"`
	HolderName      string  `json:"holder_name"`
	Expiry          string  `json:"expiry"`
	Network         string  `json:"network"`
	CreditLimit     float64 `json:"credit_limit"`
	KnownFraudulent bool    `json:"known_fraudulent"`
	BillingAddress  string  `json:"billing_address"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// ImportanceResponse represents one global feature importance
type ImportanceResponse struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
