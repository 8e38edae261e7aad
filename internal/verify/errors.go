package verify

import (
	"errors"
	"fmt"
)

// MinApproveScore is the hard gate for approval: an achievement may only
// be approved when its verification score is at least this value.
const MinApproveScore = 50

var (
	ErrNotFound       = errors.New("achievement not found")
	ErrAlreadyDecided = errors.New("achievement already has a final decision")
)

// ScoreTooLowError refuses an approval below the threshold. The message
// names the failed precondition so callers can surface it verbatim.
type ScoreTooLowError struct {
	Score     int
	Threshold int
}

func (e *ScoreTooLowError) Error() string {
	return fmt.Sprintf("verification score %d is below the approval threshold %d", e.Score, e.Threshold)
}

// NotScoredError refuses an approval before the scorer has run at all.
type NotScoredError struct{}

func (e *NotScoredError) Error() string {
	return "achievement has no verification score yet; run verification before approving"
}

// ValidationError marks bad caller input, surfaced before any external
// call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
