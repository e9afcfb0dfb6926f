// Package memory implements the merchant memory learning system: a
// soft, count-based auto-locking of merchant → category mappings with a
// user-confirmation override.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niharm/paisatrail/internal/model"
)

// AutoLockThreshold is the occurrence count at which a mapping locks
// and becomes authoritative for auto-classification.
const AutoLockThreshold = 3

// Store is the persistence surface the manager needs. GetMerchantMemory
// returns nil (not an error) for unseen merchants.
type Store interface {
	GetMerchantMemory(ctx context.Context, normalizedName string) (*model.MerchantMemory, error)
	UpsertMerchantMemory(ctx context.Context, mem *model.MerchantMemory) error
}

// Manager records merchant sightings and exposes locked mappings back
// to the resolver. It performs no internal locking; the caller
// serializes writes per merchant key.
type Manager struct {
	store Store
}

// NewManager creates a merchant memory manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Normalize canonicalizes a merchant name for use as a memory key.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// GetLearnedCategory looks up the learned mapping for a merchant.
// Absence is the expected cold-start case and returns nil, nil; callers
// fall back to other classification strategies.
func (m *Manager) GetLearnedCategory(ctx context.Context, merchantName string) (*model.MerchantMemory, error) {
	normalized := Normalize(merchantName)
	if normalized == "" {
		return nil, nil
	}
	mem, err := m.store.GetMerchantMemory(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("merchant memory lookup failed: %w", err)
	}
	return mem, nil
}

// RecordOccurrence registers one sighting of a merchant with the
// category and type it was classified under. The first sighting creates
// an unlocked row; later sightings only bump the count and refresh the
// last-seen timestamp, never mutate the stored category. Reaching
// AutoLockThreshold flips the locked flag in the same update.
func (m *Manager) RecordOccurrence(ctx context.Context, merchantName string, categoryID int, txType model.TransactionType, at time.Time) (*model.MerchantMemory, error) {
	normalized := Normalize(merchantName)
	if normalized == "" {
		return nil, nil
	}

	mem, err := m.store.GetMerchantMemory(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("merchant memory lookup failed: %w", err)
	}

	if mem == nil {
		mem = &model.MerchantMemory{
			NormalizedName:  normalized,
			CategoryID:      categoryID,
			Type:            txType,
			OccurrenceCount: 1,
			FirstSeen:       at,
			LastSeen:        at,
		}
	} else {
		mem.OccurrenceCount++
		mem.LastSeen = at
		if mem.OccurrenceCount >= AutoLockThreshold {
			mem.Locked = true
		}
	}

	if err := m.store.UpsertMerchantMemory(ctx, mem); err != nil {
		return nil, fmt.Errorf("merchant memory save failed: %w", err)
	}

	if mem.Locked && mem.OccurrenceCount == AutoLockThreshold {
		slog.Info("Merchant mapping auto-locked",
			"merchant", normalized,
			"category_id", mem.CategoryID,
			"occurrences", mem.OccurrenceCount)
	}

	return mem, nil
}

// ConfirmMapping applies an explicit user decision: the mapping is
// overwritten and locked immediately, bypassing the occurrence
// threshold. Only a future ConfirmMapping call can change a
// user-confirmed mapping.
func (m *Manager) ConfirmMapping(ctx context.Context, merchantName string, categoryID int, txType model.TransactionType, at time.Time) (*model.MerchantMemory, error) {
	normalized := Normalize(merchantName)
	if normalized == "" {
		return nil, fmt.Errorf("cannot confirm mapping for blank merchant name")
	}

	mem, err := m.store.GetMerchantMemory(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("merchant memory lookup failed: %w", err)
	}

	if mem == nil {
		mem = &model.MerchantMemory{
			NormalizedName:  normalized,
			OccurrenceCount: 1,
			FirstSeen:       at,
		}
	}

	mem.CategoryID = categoryID
	mem.Type = txType
	mem.LastSeen = at
	mem.Locked = true
	mem.UserConfirmed = true

	if err := m.store.UpsertMerchantMemory(ctx, mem); err != nil {
		return nil, fmt.Errorf("merchant memory save failed: %w", err)
	}

	slog.Info("Merchant mapping confirmed by user",
		"merchant", normalized,
		"category_id", categoryID)

	return mem, nil
}
