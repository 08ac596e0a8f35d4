package service

import "fmt"

// ScoringError marks a pipeline fault while scoring a transaction. It is
// never converted into a legitimate verdict: a transaction the pipeline could
// not score stays unscored and visible.
type ScoringError struct {
	TransactionID string
	Stage         string
	Err           error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed at %s stage for transaction %s: %v", e.Stage, e.TransactionID, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}
