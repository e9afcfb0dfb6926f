package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/niharm/paisatrail/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidMemory      = errors.New("invalid merchant memory")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction validates a single transaction before insert.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Hash == "" {
		return fmt.Errorf("%w: missing hash", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AmountPaisa <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	return nil
}

// validateMemory validates a merchant memory row before upsert.
func validateMemory(mem *model.MerchantMemory) error {
	if mem == nil {
		return fmt.Errorf("%w: memory", ErrNilParameter)
	}
	if mem.NormalizedName == "" {
		return fmt.Errorf("%w: missing normalized name", ErrInvalidMemory)
	}
	if mem.OccurrenceCount < 1 {
		return fmt.Errorf("%w: occurrence count must be at least 1", ErrInvalidMemory)
	}
	return nil
}
