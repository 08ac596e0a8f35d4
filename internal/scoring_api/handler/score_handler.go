package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cardshield-scoring/internal/domain/transaction"
	"github.com/cardshield-scoring/internal/domain/verdict"
	"github.com/cardshield-scoring/internal/scoring/scaler"
	"github.com/cardshield-scoring/internal/scoring/service"
	"github.com/cardshield-scoring/internal/scoring_api/middleware"
)

// ScoreHandler handles HTTP requests for transaction scoring
type ScoreHandler struct {
	scorer      service.TransactionScorer
	batchScorer service.BatchScorer
	logger      *slog.Logger
}

// NewScoreHandler creates a new scoring handler
func NewScoreHandler(logger *slog.Logger, scorer service.TransactionScorer, batchScorer service.BatchScorer) *ScoreHandler {
	return &ScoreHandler{
		scorer:      scorer,
		batchScorer: batchScorer,
		logger:      logger,
	}
}

// Score scores a single transaction synchronously
func (h *ScoreHandler) Score(c *gin.Context) {
	var req ScoreTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	rec, err := mapRequestToRecord(&req, middleware.GetCorrelationID(c))
	if err != nil {
		h.logger.Error("Invalid transaction timestamp", "timestamp", req.Timestamp, "error", err)
		RespondBadRequest(c, "Invalid timestamp, expected RFC 3339")
		return
	}
	// A missing transaction ID gets a fresh UUID so the verdict is always
	// addressable
	if rec.TransactionID == "" {
		rec.TransactionID = uuid.New().String()
	}

	v, err := h.scorer.Score(c.Request.Context(), rec)
	if err != nil {
		h.respondScoringError(c, rec.TransactionID, err)
		return
	}

	RespondOK(c, mapVerdictToResponse(v))
}

// ScoreBatch scores a batch of transactions, returning one result per input
// in input order. A malformed item becomes an error entry at its index; it
// never rejects the rest of the batch.
func (h *ScoreHandler) ScoreBatch(c *gin.Context) {
	var req ScoreBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	recs := make([]*transaction.Record, 0, len(req.Transactions))
	positions := make([]int, 0, len(req.Transactions))
	parseErrors := make(map[int]string)
	for i, item := range req.Transactions {
		rec, err := mapRequestToRecord(&item, correlationID)
		if err != nil {
			h.logger.Warn("Batch item has an invalid timestamp", "index", i, "error", err)
			parseErrors[i] = "invalid timestamp, expected RFC 3339"
			continue
		}
		recs = append(recs, rec)
		positions = append(positions, i)
	}

	result, err := h.batchScorer.ScoreBatch(c.Request.Context(), recs)
	if err != nil {
		h.logger.Error("Batch scoring failed", "size", len(recs), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mergeBatchResponse(req.Transactions, result, positions, parseErrors))
}

// respondScoringError maps pipeline errors onto HTTP statuses: malformed
// input is the client's fault, contract violations are unprocessable, and
// everything else is an internal fault that must stay visible.
func (h *ScoreHandler) respondScoringError(c *gin.Context, transactionID string, err error) {
	switch {
	case errors.Is(err, transaction.ErrMissingCardID),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidCVV),
		errors.Is(err, transaction.ErrNegativeCounts):
		RespondBadRequest(c, err.Error())
	default:
		var contractErr *scaler.FeatureContractError
		if errors.As(err, &contractErr) {
			RespondUnprocessable(c, contractErr.Error())
			return
		}
		h.logger.Error("Failed to score transaction", "transaction_id", transactionID, "error", err)
		RespondInternalError(c)
	}
}

// mapRequestToRecord maps a scoring request DTO to the domain record. A
// missing timestamp defaults to now. The transaction ID is passed through as
// given: the single-score path assigns a UUID and the batch coordinator
// synthesizes positional IDs for items without one.
func mapRequestToRecord(req *ScoreTransactionRequest, correlationID string) (*transaction.Record, error) {
	ts := time.Now().UTC()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return nil, err
		}
		ts = parsed
	}

	return &transaction.Record{
		TransactionID:    req.TransactionID,
		CardID:           req.CardID,
		Amount:           req.Amount,
		Timestamp:        ts,
		MerchantCategory: req.MerchantCategory,
		MerchantLocation: req.MerchantLocation,
		CVV:              req.CVV,
		HourlyCount:      req.HourlyCount,
		HourlyAmount:     req.HourlyAmount,
		CorrelationID:    correlationID,
		Signals:          req.Signals,
	}, nil
}

// mapVerdictToResponse maps a verdict to its response DTO
func mapVerdictToResponse(v *verdict.Verdict) *VerdictResponse {
	resp := &VerdictResponse{
		VerdictID:        v.VerdictID.String(),
		TransactionID:    v.TransactionID,
		CardID:           v.CardID,
		IsFraud:          v.IsFraud,
		Verdict:          v.Label(),
		FraudProbability: v.FraudProbability,
		Reason:           v.Reason,
		Reasons:          v.Reasons,
		ModelConfidence:  string(v.ModelConfidence),
		Threshold:        v.Threshold,
		ModelSkipped:     v.ModelSkipped,
		Timestamp:        v.CreatedAt.Format(time.RFC3339),
	}
	for _, f := range v.TopFactors {
		resp.TopFactors = append(resp.TopFactors, FactorResponse{
			Feature:      f.Feature,
			Value:        f.Value,
			Contribution: f.Contribution,
		})
	}
	return resp
}

// mergeBatchResponse interleaves coordinator results with items rejected at
// the mapping stage, restoring the caller's input order. positions[j] is the
// original index of the j-th record handed to the coordinator.
func mergeBatchResponse(items []ScoreTransactionRequest, result *service.BatchResult, positions []int, parseErrors map[int]string) *BatchVerdictResponse {
	resp := &BatchVerdictResponse{
		Results: make([]BatchItemResponse, len(items)),
		Scored:  result.Scored,
		Flagged: result.Flagged,
		Failed:  result.Failed + len(parseErrors),
	}
	for j, item := range result.Results {
		out := BatchItemResponse{
			Index:         positions[j],
			TransactionID: item.TransactionID,
			Error:         item.Error,
		}
		if item.Verdict != nil {
			out.Verdict = mapVerdictToResponse(item.Verdict)
		}
		resp.Results[positions[j]] = out
	}
	for i, msg := range parseErrors {
		resp.Results[i] = BatchItemResponse{
			Index:         i,
			TransactionID: items[i].TransactionID,
			Error:         msg,
		}
	}
	return resp
}
