package card

import (
	"context"
)

// Repository defines card registry read operations plus the two mutations the
// fraud surface is allowed to make: flagging cards as fraudulent and recording
// stolen-card reports.
type Repository interface {
	GetByCardID(ctx context.Context, cardID string) (*Profile, error)

	// ListKnownFraudulent returns the card IDs carrying the known-fraud flag,
	// used to seed the in-memory registry at startup.
	ListKnownFraudulent(ctx context.Context) ([]string, error)

	// MarkFraudulent flags the given cards as known-fraudulent and returns the
	// IDs that were actually persisted. Re-flagging an already-flagged card is
	// harmless; IDs missing from the returned slice are not on file and their
	// flag would not survive a restart.
	MarkFraudulent(ctx context.Context, cardIDs []string) ([]string, error)

	CreateStolenReport(ctx context.Context, report *StolenReport) error
	ListStolenReports(ctx context.Context) ([]*StolenReport, error)
}

// ErrCardNotFound indicates a missing card profile
type ErrCardNotFound struct {
	CardID string
}

func (e ErrCardNotFound) Error() string {
	return "card not found: " + e.CardID
}

// Is implements the errors.Is interface for ErrCardNotFound
func (e ErrCardNotFound) Is(target error) bool {
	t, ok := target.(ErrCardNotFound)
	if !ok {
		return false
	}
	// An empty target CardID matches any ErrCardNotFound
	if t.CardID == "" {
		return true
	}
	return e.CardID == t.CardID
}

// ErrDuplicateStolenReport indicates the card was already reported stolen
type ErrDuplicateStolenReport struct {
	CardID string
}

func (e ErrDuplicateStolenReport) Error() string {
	return "card already reported stolen: " + e.CardID
}

// Is implements the errors.Is interface for ErrDuplicateStolenReport
func (e ErrDuplicateStolenReport) Is(target error) bool {
	t, ok := target.(ErrDuplicateStolenReport)
	if !ok {
		return false
	}
	if t.CardID == "" {
		return true
	}
	return e.CardID == t.CardID
}
