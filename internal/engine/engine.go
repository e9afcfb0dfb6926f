// Package engine composes the classification core: every incoming
// message passes duplicate detection, then type resolution, then
// merchant memory, then persistence.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niharm/paisatrail/internal/common"
	"github.com/niharm/paisatrail/internal/dedup"
	"github.com/niharm/paisatrail/internal/memory"
	"github.com/niharm/paisatrail/internal/model"
	"github.com/niharm/paisatrail/internal/rules"
	"github.com/niharm/paisatrail/internal/service"
)

// defaultCategoryName receives transactions no strategy could place.
const defaultCategoryName = "Uncategorized"

// Engine is the ingestion orchestrator.
type Engine struct {
	storage    service.Storage
	detector   *dedup.Detector
	memory     *memory.Manager
	classifier Classifier
}

// New creates an ingestion engine. The classifier is optional; without
// it unrecognized merchants land in the default category.
func New(storage service.Storage, detector *dedup.Detector, mem *memory.Manager, classifier Classifier) *Engine {
	return &Engine{
		storage:    storage,
		detector:   detector,
		memory:     mem,
		classifier: classifier,
	}
}

// Result reports what happened to one processed message.
type Result struct {
	Transaction *model.Transaction
	Duplicate   *model.DuplicateCheckResult
	Source      model.ClassificationSource
}

// ProcessMessage runs one parsed SMS bundle through the full pipeline.
// Duplicates are reported, never stored; a hash conflict slipping past
// the pre-check is absorbed as a benign no-op.
func (e *Engine) ProcessMessage(ctx context.Context, msg model.ParsedMessage) (*Result, error) {
	if msg.AmountPaisa <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", common.ErrInvalidMessage)
	}
	if strings.TrimSpace(msg.Hash) == "" {
		return nil, fmt.Errorf("%w: missing dedup hash", common.ErrInvalidMessage)
	}

	dup, err := e.detector.Check(ctx, dedup.CheckInput{
		Hash:         msg.Hash,
		ReferenceNo:  msg.ReferenceNo,
		AmountPaisa:  msg.AmountPaisa,
		Date:         msg.Date,
		MerchantName: msg.MerchantName,
		AccountLast4: msg.AccountLast4,
	})
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}
	if dup.IsDuplicate {
		slog.Info("Skipping duplicate message",
			"tier", dup.Tier,
			"confidence", dup.Confidence,
			"reason", dup.Reason)
		return &Result{Duplicate: &dup}, nil
	}

	category, source, confidence, err := e.pickCategory(ctx, msg)
	if err != nil {
		return nil, err
	}

	txType := rules.ResolveTransactionType(rules.ResolveInput{
		Category:         category,
		IsDebit:          msg.IsDebit,
		UPIID:            msg.UPIID,
		CounterpartyType: msg.CounterpartyType,
		IsSelfTransfer:   msg.IsSelfTransfer,
		IsUntrustedP2P:   msg.IsUntrustedP2P,
	})

	// Validation is advisory on ingest. The invariant corrections
	// (credit is never an expense, promotional credits are cashback)
	// deliberately step outside the category's allowed list, so a
	// mismatch here is flagged for review, never reverted.
	if v := rules.ValidateCategoryType(txType, category); !v.Valid {
		slog.Warn("Resolved type outside category's allowed list",
			"type", txType,
			"category", category.Name,
			"reason", v.Reason)
	}

	txn := &model.Transaction{
		Date:         msg.Date,
		Hash:         msg.Hash,
		ReferenceNo:  msg.ReferenceNo,
		MerchantName: msg.MerchantName,
		UPIID:        msg.UPIID,
		AccountLast4: msg.AccountLast4,
		AmountPaisa:  msg.AmountPaisa,
		CategoryID:   category.ID,
		Type:         txType,
		Status:       statusFor(txType),
		Confidence:   confidence,
		Notes:        msg.RawText,
	}

	id, err := e.storage.InsertTransactionIgnoringConflict(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}
	if id == -1 {
		// Two near-simultaneous identical messages can both pass the
		// pre-check; the hash UNIQUE constraint is the final authority.
		conflict := model.DuplicateCheckResult{
			IsDuplicate: true,
			Tier:        model.TierExactHash,
			Confidence:  1.0,
			Reason:      "hash conflict on insert",
		}
		slog.Debug("Insert ignored by hash constraint", "hash", msg.Hash)
		return &Result{Duplicate: &conflict}, nil
	}

	if err := e.storage.SaveClassificationRecord(ctx, &model.ClassificationRecord{
		TransactionID: id,
		CategoryID:    category.ID,
		Type:          txType,
		Source:        source,
		Confidence:    confidence,
		ClassifiedAt:  time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to record classification: %w", err)
	}

	if shouldLearnMerchant(msg.MerchantName, txType) {
		if _, err := e.memory.RecordOccurrence(ctx, msg.MerchantName, category.ID, txType, msg.Date); err != nil {
			return nil, fmt.Errorf("failed to update merchant memory: %w", err)
		}
	}

	return &Result{Transaction: txn, Source: source}, nil
}

// pickCategory chooses a category in strategy order: locked merchant
// memory, then the fallback classifier, then the default category.
func (e *Engine) pickCategory(ctx context.Context, msg model.ParsedMessage) (*model.Category, model.ClassificationSource, int, error) {
	if msg.MerchantName != "" {
		mem, err := e.memory.GetLearnedCategory(ctx, msg.MerchantName)
		if err != nil {
			return nil, "", 0, err
		}
		if mem != nil && mem.Locked {
			cat, err := e.storage.GetCategoryByID(ctx, mem.CategoryID)
			if err != nil {
				return nil, "", 0, fmt.Errorf("learned category %d missing: %w", mem.CategoryID, err)
			}
			return cat, model.SourceMemory, 95, nil
		}
	}

	if e.classifier != nil {
		categories, err := e.storage.GetCategories(ctx)
		if err != nil {
			return nil, "", 0, fmt.Errorf("failed to load categories: %w", err)
		}
		// The classifier may be a remote model; transient failures get
		// a couple of retries before falling back to the default.
		var name string
		var confidence float64
		err = common.WithRetry(ctx, func() error {
			name, confidence, err = e.classifier.SuggestCategory(ctx, msg, categories)
			return err
		}, common.RetryOptions{MaxAttempts: 2, InitialDelay: 50 * time.Millisecond})
		if err != nil {
			slog.Warn("Classifier failed, using default category", "error", err)
		} else if name != "" {
			for i := range categories {
				if categories[i].Name == name {
					return &categories[i], model.SourceClassifier, int(confidence * 100), nil
				}
			}
		}
	}

	cat, err := e.storage.GetCategoryByName(ctx, defaultCategoryName)
	if err != nil {
		return nil, "", 0, fmt.Errorf("default category missing: %w", err)
	}
	return cat, model.SourceRule, 50, nil
}

// statusFor maps a resolved type onto the lifecycle: bill-due style
// messages stay provisional, everything else lands completed.
func statusFor(t model.TransactionType) model.TransactionStatus {
	if t == model.TypePending {
		return model.StatusPending
	}
	return model.StatusCompleted
}

// shouldLearnMerchant filters out sightings that carry no signal worth
// learning: blank merchants and non-financial notification types.
func shouldLearnMerchant(merchantName string, t model.TransactionType) bool {
	if strings.TrimSpace(merchantName) == "" {
		return false
	}
	switch t {
	case model.TypeStatement, model.TypeIgnore, model.TypePending:
		return false
	default:
		return true
	}
}

// ConfirmMerchant applies an explicit user decision about a merchant's
// category and type, force-locking the mapping. An empty type defaults
// to the category's resolved type.
func (e *Engine) ConfirmMerchant(ctx context.Context, merchantName string, categoryID int, txType model.TransactionType) (*model.MerchantMemory, error) {
	cat, err := e.storage.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("category %d not found: %w", categoryID, err)
	}
	if txType == "" {
		txType = rules.ResolveTransactionType(rules.ResolveInput{Category: cat})
	}
	return e.memory.ConfirmMapping(ctx, merchantName, categoryID, txType, time.Now())
}
