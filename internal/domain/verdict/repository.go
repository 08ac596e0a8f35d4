package verdict

import (
	"context"
)

// Repository manages the verdict audit trail with pagination support
type Repository interface {
	Create(ctx context.Context, v *Verdict) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Verdict, error)
	GetByCardID(ctx context.Context, cardID string, limit, offset int) ([]*Verdict, error)
	CountByCardID(ctx context.Context, cardID string) (int64, error)
}

// ErrVerdictNotFound indicates no audit record exists for a transaction
type ErrVerdictNotFound struct {
	TransactionID string
}

func (e ErrVerdictNotFound) Error() string {
	return "verdict not found for transaction: " + e.TransactionID
}

// Is implements the errors.Is interface for ErrVerdictNotFound
func (e ErrVerdictNotFound) Is(target error) bool {
	t, ok := target.(ErrVerdictNotFound)
	if !ok {
		return false
	}
	// An empty target TransactionID matches any ErrVerdictNotFound
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrDuplicateVerdict indicates a second verdict write for the same transaction
type ErrDuplicateVerdict struct {
	TransactionID string
}

func (e ErrDuplicateVerdict) Error() string {
	return "duplicate verdict for transaction: " + e.TransactionID
}

// Is implements the errors.Is interface for ErrDuplicateVerdict
func (e ErrDuplicateVerdict) Is(target error) bool {
	t, ok := target.(ErrDuplicateVerdict)
	if !ok {
		return false
	}
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID
}
