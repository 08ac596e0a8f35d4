// Package postgres provides PostgreSQL implementations of the domain
// repositories. Card profiles and stolen-card reports are the system of
// record here; the in-memory registries are seeded from these tables at
// startup.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cardshield-scoring/internal/domain/card"
	"github.com/cardshield-scoring/internal/platform/persistence"
)

// CardRepository implements the card.Repository interface for PostgreSQL
type CardRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewCardRepository creates a new PostgreSQL card repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewCardRepository(logger *slog.Logger, db *persistence.PostgresDB) card.Repository {
	return &CardRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *CardRepository) WithTx(tx pgx.Tx) card.Repository {
	return &CardRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByCardID retrieves a card profile by its card ID
func (r *CardRepository) GetByCardID(ctx context.Context, cardID string) (*card.Profile, error) {
	query := `
		SELECT card_id, holder_name, expiry, cvv, network, credit_limit, known_fraudulent, billing_address, created_at, updated_at
		FROM cards
		WHERE card_id = $1
	`

	var p card.Profile
	err := r.querier.QueryRow(ctx, query, cardID).Scan(
		&p.CardID,
		&p.HolderName,
		&p.Expiry,
		&p.CVV,
		&p.Network,
		&p.CreditLimit,
		&p.KnownFraudulent,
		&p.BillingAddress,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, card.ErrCardNotFound{CardID: cardID}
		}
		r.logger.Error("Failed to get card", "card_id", cardID, "error", err)
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return &p, nil
}

// ListKnownFraudulent returns the IDs of all cards flagged as fraudulent
func (r *CardRepository) ListKnownFraudulent(ctx context.Context) ([]string, error) {
	query := `
		SELECT card_id
		FROM cards
		WHERE known_fraudulent = TRUE
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list known fraudulent cards", "error", err)
		return nil, fmt.Errorf("failed to list known fraudulent cards: %w", err)
	}
	defer rows.Close()

	var cardIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan fraudulent card id: %w", err)
		}
		cardIDs = append(cardIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fraudulent card ids: %w", err)
	}

	return cardIDs, nil
}

// MarkFraudulent flags the given cards as known-fraudulent and returns the
// IDs of the cards actually on file. Callers can diff the result against the
// request to find flags that exist in memory only.
func (r *CardRepository) MarkFraudulent(ctx context.Context, cardIDs []string) ([]string, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}

	query := `
		UPDATE cards
		SET known_fraudulent = TRUE, updated_at = NOW()
		WHERE card_id = ANY($1)
		RETURNING card_id
	`

	rows, err := r.querier.Query(ctx, query, cardIDs)
	if err != nil {
		r.logger.Error("Failed to mark cards fraudulent", "error", err)
		return nil, fmt.Errorf("failed to mark cards fraudulent: %w", err)
	}
	defer rows.Close()

	var flagged []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan flagged card id: %w", err)
		}
		flagged = append(flagged, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flagged card ids: %w", err)
	}

	r.logger.Info("Marked cards as fraudulent",
		"requested", len(cardIDs),
		"persisted", len(flagged))
	return flagged, nil
}

// CreateStolenReport stores a stolen-card report. Returns
// ErrDuplicateStolenReport when the card was already reported.
func (r *CardRepository) CreateStolenReport(ctx context.Context, report *card.StolenReport) error {
	query := `
		INSERT INTO stolen_reports (card_id, reported_by, reason, reported_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.querier.Exec(ctx, query,
		report.CardID,
		report.ReportedBy,
		report.Reason,
		report.ReportedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return card.ErrDuplicateStolenReport{CardID: report.CardID}
		}
		r.logger.Error("Failed to create stolen report", "card_id", report.CardID, "error", err)
		return fmt.Errorf("failed to create stolen report: %w", err)
	}

	return nil
}

// ListStolenReports returns all stolen-card reports, newest first
func (r *CardRepository) ListStolenReports(ctx context.Context) ([]*card.StolenReport, error) {
	query := `
		SELECT card_id, reported_by, reason, reported_at
		FROM stolen_reports
		ORDER BY reported_at DESC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list stolen reports", "error", err)
		return nil, fmt.Errorf("failed to list stolen reports: %w", err)
	}
	defer rows.Close()

	var reports []*card.StolenReport
	for rows.Next() {
		var rep card.StolenReport
		if err := rows.Scan(&rep.CardID, &rep.ReportedBy, &rep.Reason, &rep.ReportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stolen report: %w", err)
		}
		reports = append(reports, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stolen reports: %w", err)
	}

	return reports, nil
}
