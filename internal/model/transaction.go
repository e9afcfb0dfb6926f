// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionStatus tracks the lifecycle of a transaction.
// INTENT and PENDING rows are provisional; only COMPLETED rows
// participate in balance and spend aggregates.
type TransactionStatus string

// Transaction status constants.
const (
	StatusIntent    TransactionStatus = "INTENT"
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction represents a single financial event extracted from an SMS
// or entered by the user. Amounts are stored in paisa (minor currency
// units) to keep all financial math in integers.
type Transaction struct {
	Date                 time.Time
	DeletedAt            *time.Time
	Hash                 string
	ReferenceNo          string
	MerchantName         string
	UPIID                string
	AccountLast4         string
	ManualClassification string
	Notes                string
	Type                 TransactionType
	Status               TransactionStatus
	ID                   int64
	AmountPaisa          int64
	CategoryID           int
	Confidence           int
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%d:%d:%s:%s",
		t.Date.UnixMilli(),
		t.AmountPaisa,
		t.MerchantName,
		t.AccountLast4)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsDeleted reports whether the transaction carries a soft-delete tombstone.
func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// TransactionSnapshot is the minimal projection of a stored transaction
// used by the duplicate detector's fuzzy tier.
type TransactionSnapshot struct {
	Date         time.Time
	MerchantName string
	AccountLast4 string
	ID           int64
}
