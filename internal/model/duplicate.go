package model

// DuplicateTier identifies which detection tier matched.
type DuplicateTier string

// Duplicate tier constants, ordered from highest to lowest precision.
const (
	TierExactHash      DuplicateTier = "EXACT_HASH"
	TierReferenceMatch DuplicateTier = "REFERENCE_MATCH"
	TierFuzzyMatch     DuplicateTier = "FUZZY_MATCH"
)

// DuplicateCheckResult is the transient outcome of a duplicate check.
// It is never persisted.
type DuplicateCheckResult struct {
	MatchedTransactionID *int64
	Tier                 DuplicateTier
	Reason               string
	Confidence           float64
	IsDuplicate          bool
}
