package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrScoringFailure = errors.New("scoring failure")
	ErrInvalidResult  = errors.New("invalid scoring result")
)
