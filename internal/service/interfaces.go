// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/niharm/paisatrail/internal/model"
)

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Transaction operations
	InsertTransactionIgnoringConflict(ctx context.Context, txn *model.Transaction) (int64, error)
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	ExistsByReferenceAndAmount(ctx context.Context, referenceNo string, amountPaisa int64) (bool, error)
	FindCandidatesByAmountAndTimeWindow(ctx context.Context, amountPaisa int64, start, end time.Time) ([]model.TransactionSnapshot, error)
	UpdateTransactionType(ctx context.Context, id int64, categoryID int, txType model.TransactionType) error
	UpdateTransactionStatus(ctx context.Context, id int64, status model.TransactionStatus) error
	UpdateTransactionCategoriesByID(ctx context.Context, fromCategoryID, toCategoryID int) error
	SoftDeleteTransaction(ctx context.Context, id int64, at time.Time) error

	// Merchant memory operations
	GetMerchantMemory(ctx context.Context, normalizedName string) (*model.MerchantMemory, error)
	UpsertMerchantMemory(ctx context.Context, mem *model.MerchantMemory) error
	GetAllMerchantMemories(ctx context.Context) ([]model.MerchantMemory, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error)

	// Audit trail
	SaveClassificationRecord(ctx context.Context, rec *model.ClassificationRecord) error

	// Reporting
	GetCategorySummary(ctx context.Context, start, end time.Time) (map[string]int64, error)
	GetMerchantSummary(ctx context.Context, start, end time.Time) (map[string]int64, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
