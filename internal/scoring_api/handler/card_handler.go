package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardshield-scoring/internal/domain/card"
	"github.com/cardshield-scoring/internal/domain/verdict"
)

// CardHandler handles HTTP requests for card profile and verdict history
// lookups
type CardHandler struct {
	cards    card.Repository
	verdicts verdict.Repository
	logger   *slog.Logger
}

// NewCardHandler creates a new card handler
func NewCardHandler(logger *slog.Logger, cards card.Repository, verdicts verdict.Repository) *CardHandler {
	return &CardHandler{
		cards:    cards,
		verdicts: verdicts,
		logger:   logger,
	}
}

// GetByID retrieves a card profile by its card ID, returning 404 if not found
func (h *CardHandler) GetByID(c *gin.Context) {
	cardID := c.Param("id")

	profile, err := h.cards.GetByCardID(c.Request.Context(), cardID)
	if err != nil {
		if errors.Is(err, card.ErrCardNotFound{}) {
			RespondNotFound(c, "Card not found")
			return
		}
		h.logger.Error("Failed to get card", "card_id", cardID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapCardToResponse(profile))
}

// GetVerdicts retrieves the paginated verdict history for a card
func (h *CardHandler) GetVerdicts(c *gin.Context) {
	cardID := c.Param("id")

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	offset := (pagination.Page - 1) * pagination.PerPage
	verdicts, err := h.verdicts.GetByCardID(c.Request.Context(), cardID, pagination.PerPage, offset)
	if err != nil {
		h.logger.Error("Failed to get verdicts", "card_id", cardID, "error", err)
		RespondInternalError(c)
		return
	}

	total, err := h.verdicts.CountByCardID(c.Request.Context(), cardID)
	if err != nil {
		h.logger.Error("Failed to count verdicts", "card_id", cardID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]*VerdictResponse, 0, len(verdicts))
	for _, v := range verdicts {
		responses = append(responses, mapVerdictToResponse(v))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// GetVerdictByTransactionID retrieves a single audit verdict by transaction ID
func (h *CardHandler) GetVerdictByTransactionID(c *gin.Context) {
	transactionID := c.Param("id")

	v, err := h.verdicts.GetByTransactionID(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, verdict.ErrVerdictNotFound{}) {
			RespondNotFound(c, "Verdict not found")
			return
		}
		h.logger.Error("Failed to get verdict", "transaction_id", transactionID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapVerdictToResponse(v))
}

// mapCardToResponse maps a card profile to its response DTO. The CVV of
// record is deliberately omitted.
func mapCardToResponse(p *card.Profile) CardResponse {
	return CardResponse{
		CardID:          p.CardID,
		HolderName:      p.HolderName,
		Expiry:          p.Expiry,
		Network:         p.Network,
		CreditLimit:     p.CreditLimit,
		KnownFraudulent: p.KnownFraudulent,
		BillingAddress:  p.BillingAddress,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}
