package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardshield-scoring/internal/domain/card"
	"github.com/cardshield-scoring/internal/registry"
)

// RegistryHandler handles HTTP requests for fraud registry administration
type RegistryHandler struct {
	cards      card.Repository
	registries *registry.Store
	logger     *slog.Logger
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(logger *slog.Logger, cards card.Repository, registries *registry.Store) *RegistryHandler {
	return &RegistryHandler{
		cards:      cards,
		registries: registries,
		logger:     logger,
	}
}

// UpdateFraudList flags cards as known-fraudulent. The call is idempotent:
// cards already on the list are counted as skipped, not errors.
func (h *RegistryHandler) UpdateFraudList(c *gin.Context) {
	var req UpdateFraudListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	flagged, err := h.cards.MarkFraudulent(c.Request.Context(), req.CardIDs)
	if err != nil {
		h.logger.Error("Failed to persist fraud list update", "error", err)
		RespondInternalError(c)
		return
	}

	// IDs the card store does not know still block in memory, but the flag
	// dies with the process; surface them so the caller can follow up.
	persisted := make(map[string]struct{}, len(flagged))
	for _, id := range flagged {
		persisted[id] = struct{}{}
	}
	notPersisted := make([]string, 0)
	for _, id := range req.CardIDs {
		if _, ok := persisted[id]; !ok {
			notPersisted = append(notPersisted, id)
		}
	}

	added := h.registries.AddFraudulent(req.CardIDs...)
	if len(notPersisted) > 0 {
		h.logger.Warn("Fraud flags for cards not on file are in-memory only",
			"card_ids", notPersisted)
	}
	h.logger.Info("Fraud list updated",
		"requested", len(req.CardIDs),
		"added", added,
		"persisted", len(flagged),
		"total", h.registries.FraudulentCount())

	RespondOK(c, gin.H{
		"added":         added,
		"skipped":       len(req.CardIDs) - added,
		"not_persisted": notPersisted,
		"total":         h.registries.FraudulentCount(),
	})
}

// ReportStolen records a stolen-card report. The card is blocked for scoring
// immediately; a second report for the same card is a conflict.
func (h *RegistryHandler) ReportStolen(c *gin.Context) {
	var req ReportStolenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	report := &card.StolenReport{
		CardID:     req.CardID,
		ReportedBy: req.ReportedBy,
		Reason:     req.Reason,
		ReportedAt: time.Now().UTC(),
	}

	if err := h.cards.CreateStolenReport(c.Request.Context(), report); err != nil {
		if errors.Is(err, card.ErrDuplicateStolenReport{}) {
			RespondConflict(c, "Card already reported stolen")
			return
		}
		h.logger.Error("Failed to persist stolen report", "card_id", req.CardID, "error", err)
		RespondInternalError(c)
		return
	}

	h.registries.MarkStolen(report.CardID, report.ReportedBy, report.Reason, report.ReportedAt)
	h.logger.Warn("Card reported stolen", "card_id", req.CardID, "reported_by", req.ReportedBy)

	RespondCreated(c, gin.H{
		"card_id":     report.CardID,
		"reported_at": report.ReportedAt.Format(time.RFC3339),
	})
}

// ListSuspects returns the per-card suspicion counters accumulated from fraud
// verdicts
func (h *RegistryHandler) ListSuspects(c *gin.Context) {
	RespondOK(c, gin.H{"suspects": h.registries.Suspects()})
}
