// Package dedup implements the three-tier duplicate detection
// waterfall for incoming transactions.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niharm/paisatrail/internal/model"
)

// Detection constants. Thresholds are deliberately conservative: a
// false-positive duplicate silently drops a real transaction, which is
// worse than a false negative that merely leaves a duplicate for
// manual cleanup.
const (
	exactHashConfidence = 0.999
	referenceConfidence = 0.95

	fuzzyBaseConfidence = 0.40
	fuzzyMerchantBonus  = 0.30
	fuzzyAccountBonus   = 0.25
	fuzzyFloor          = 0.70

	fuzzyWindow = 15 * time.Minute
)

// Store is the read-only query surface the detector needs over stored
// transactions. All queries exclude soft-deleted rows.
type Store interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	ExistsByReferenceAndAmount(ctx context.Context, referenceNo string, amountPaisa int64) (bool, error)
	FindCandidatesByAmountAndTimeWindow(ctx context.Context, amountPaisa int64, start, end time.Time) ([]model.TransactionSnapshot, error)
}

// Detector decides whether a prospective transaction repeats something
// already stored. It is a stateless pre-check; the UNIQUE constraint on
// the transaction hash at the persistence layer remains the final
// authority against check-then-insert races.
type Detector struct {
	store Store
}

// NewDetector creates a duplicate detector over the given store.
func NewDetector(store Store) *Detector {
	return &Detector{store: store}
}

// CheckInput carries the identity fields of a prospective transaction.
// ReferenceNo, MerchantName and AccountLast4 are optional; a blank
// value skips the tiers that need it.
type CheckInput struct {
	Date         time.Time
	Hash         string
	ReferenceNo  string
	MerchantName string
	AccountLast4 string
	AmountPaisa  int64
}

// Check runs the detection waterfall, short-circuiting at the first
// matching tier. Tier order matters: earlier tiers are strictly higher
// precision.
func (d *Detector) Check(ctx context.Context, in CheckInput) (model.DuplicateCheckResult, error) {
	// Tier 1: exact hash. Catches byte-identical re-delivered SMS.
	if strings.TrimSpace(in.Hash) != "" {
		exists, err := d.store.ExistsByHash(ctx, in.Hash)
		if err != nil {
			return model.DuplicateCheckResult{}, fmt.Errorf("hash lookup failed: %w", err)
		}
		if exists {
			return model.DuplicateCheckResult{
				IsDuplicate: true,
				Tier:        model.TierExactHash,
				Confidence:  exactHashConfidence,
				Reason:      "identical message hash already stored",
			}, nil
		}
	}

	// Tier 2: bank reference + amount. Catches wording variants of the
	// same transaction that share the bank-issued reference/RRN.
	if strings.TrimSpace(in.ReferenceNo) != "" {
		exists, err := d.store.ExistsByReferenceAndAmount(ctx, in.ReferenceNo, in.AmountPaisa)
		if err != nil {
			return model.DuplicateCheckResult{}, fmt.Errorf("reference lookup failed: %w", err)
		}
		if exists {
			return model.DuplicateCheckResult{
				IsDuplicate: true,
				Tier:        model.TierReferenceMatch,
				Confidence:  referenceConfidence,
				Reason: fmt.Sprintf("reference %s with amount %d paisa already stored",
					in.ReferenceNo, in.AmountPaisa),
			}, nil
		}
	}

	// Tier 3: fuzzy amount + time window with context bonuses.
	return d.checkFuzzy(ctx, in)
}

func (d *Detector) checkFuzzy(ctx context.Context, in CheckInput) (model.DuplicateCheckResult, error) {
	start := in.Date.Add(-fuzzyWindow)
	end := in.Date.Add(fuzzyWindow)

	candidates, err := d.store.FindCandidatesByAmountAndTimeWindow(ctx, in.AmountPaisa, start, end)
	if err != nil {
		return model.DuplicateCheckResult{}, fmt.Errorf("fuzzy candidate query failed: %w", err)
	}

	// The first candidate in query order to cross the floor wins, not
	// the highest scorer across the window.
	for _, cand := range candidates {
		confidence := fuzzyBaseConfidence
		signals := []string{}

		if merchantsMatch(in.MerchantName, cand.MerchantName) {
			confidence += fuzzyMerchantBonus
			signals = append(signals, "merchant matched")
		}
		if in.AccountLast4 != "" && in.AccountLast4 == cand.AccountLast4 {
			confidence += fuzzyAccountBonus
			signals = append(signals, "account matched")
		}

		if confidence < fuzzyFloor {
			continue
		}

		deltaMinutes := in.Date.Sub(cand.Date).Minutes()
		if deltaMinutes < 0 {
			deltaMinutes = -deltaMinutes
		}
		reason := fmt.Sprintf("same amount %d paisa within %.0f minute(s)", in.AmountPaisa, deltaMinutes)
		if len(signals) > 0 {
			reason += "; " + strings.Join(signals, "; ")
		}

		matchedID := cand.ID
		slog.Debug("Fuzzy duplicate match",
			"matched_id", matchedID,
			"confidence", confidence,
			"delta_minutes", deltaMinutes)

		return model.DuplicateCheckResult{
			IsDuplicate:          true,
			Tier:                 model.TierFuzzyMatch,
			Confidence:           confidence,
			Reason:               reason,
			MatchedTransactionID: &matchedID,
		}, nil
	}

	return model.DuplicateCheckResult{}, nil
}

// merchantsMatch compares merchant names case-insensitively, also
// accepting one name containing the other ("UBER EATS" vs "Uber").
func merchantsMatch(a, b string) bool {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
