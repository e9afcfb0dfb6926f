package storage

import (
	"context"
	"testing"
	"time"

	"github.com/niharm/paisatrail/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)

	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleTransaction(hash string) *model.Transaction {
	return &model.Transaction{
		Date:         time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC),
		Hash:         hash,
		AmountPaisa:  50000,
		ReferenceNo:  "REF1",
		MerchantName: "SWIGGY",
		AccountLast4: "1234",
		CategoryID:   1,
		Type:         model.TypeExpense,
		Status:       model.StatusCompleted,
	}
}

func TestMigrate_SeedsDefaultCategories(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	byName := make(map[string]model.Category)
	for _, cat := range categories {
		byName[cat.Name] = cat
	}

	assert.Equal(t, model.CategoryTypeIncome, byName["Salary"].Type)
	assert.Equal(t, model.CategoryTypeLiability, byName["Credit Card Payment"].Type)
	assert.Equal(t, model.CategoryTypeTransfer, byName["Transfer"].Type)
	assert.Contains(t, byName, "Uncategorized")
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestInsertTransactionIgnoringConflict(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.InsertTransactionIgnoringConflict(ctx, sampleTransaction("h1"))
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	// Same hash again: ignored, sentinel -1.
	again, err := store.InsertTransactionIgnoringConflict(ctx, sampleTransaction("h1"))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), again)

	txn, err := store.GetTransactionByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "h1", txn.Hash)
	assert.Equal(t, int64(50000), txn.AmountPaisa)
	assert.Equal(t, model.TypeExpense, txn.Type)
	assert.False(t, txn.IsDeleted())
}

func TestInsertTransaction_RejectsNonPositiveAmount(t *testing.T) {
	store := setupStore(t)

	txn := sampleTransaction("h1")
	txn.AmountPaisa = 0
	_, err := store.InsertTransactionIgnoringConflict(context.Background(), txn)
	assert.Error(t, err)
}

func TestExistsByHash_IgnoresSoftDeleted(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.InsertTransactionIgnoringConflict(ctx, sampleTransaction("h1"))
	require.NoError(t, err)

	exists, err := store.ExistsByHash(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.SoftDeleteTransaction(ctx, id, time.Now()))

	exists, err = store.ExistsByHash(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, exists)

	// Soft-deleted rows stay readable by id.
	txn, err := store.GetTransactionByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, txn.IsDeleted())
}

func TestExistsByReferenceAndAmount(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.InsertTransactionIgnoringConflict(ctx, sampleTransaction("h1"))
	require.NoError(t, err)

	exists, err := store.ExistsByReferenceAndAmount(ctx, "REF1", 50000)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsByReferenceAndAmount(ctx, "REF1", 60000)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.ExistsByReferenceAndAmount(ctx, "REF2", 50000)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFindCandidatesByAmountAndTimeWindow(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)

	inside := sampleTransaction("h-inside")
	inside.Date = base.Add(-5 * time.Minute)
	inside.ReferenceNo = ""
	_, err := store.InsertTransactionIgnoringConflict(ctx, inside)
	require.NoError(t, err)

	outside := sampleTransaction("h-outside")
	outside.Date = base.Add(-20 * time.Minute)
	outside.ReferenceNo = ""
	_, err = store.InsertTransactionIgnoringConflict(ctx, outside)
	require.NoError(t, err)

	wrongAmount := sampleTransaction("h-amount")
	wrongAmount.Date = base
	wrongAmount.AmountPaisa = 99900
	wrongAmount.ReferenceNo = ""
	_, err = store.InsertTransactionIgnoringConflict(ctx, wrongAmount)
	require.NoError(t, err)

	candidates, err := store.FindCandidatesByAmountAndTimeWindow(
		ctx, 50000, base.Add(-15*time.Minute), base.Add(15*time.Minute))
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "SWIGGY", candidates[0].MerchantName)
	assert.Equal(t, "1234", candidates[0].AccountLast4)
}

func TestUpdateTransactionCategoriesByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := sampleTransaction("h1")
	first.CategoryID = 1
	id1, err := store.InsertTransactionIgnoringConflict(ctx, first)
	require.NoError(t, err)

	second := sampleTransaction("h2")
	second.CategoryID = 1
	id2, err := store.InsertTransactionIgnoringConflict(ctx, second)
	require.NoError(t, err)

	require.NoError(t, store.UpdateTransactionCategoriesByID(ctx, 1, 2))

	for _, id := range []int64{id1, id2} {
		txn, err := store.GetTransactionByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, txn.CategoryID)
	}
}

func TestUpdateTransactionStatus(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	txn := sampleTransaction("h1")
	txn.Status = model.StatusPending
	id, err := store.InsertTransactionIgnoringConflict(ctx, txn)
	require.NoError(t, err)

	require.NoError(t, store.UpdateTransactionStatus(ctx, id, model.StatusCompleted))

	got, err := store.GetTransactionByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
}

func TestMerchantMemoryRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)

	missing, err := store.GetMerchantMemory(ctx, "UNSEEN")
	require.NoError(t, err)
	assert.Nil(t, missing)

	mem := &model.MerchantMemory{
		NormalizedName:  "SWIGGY",
		CategoryID:      5,
		Type:            model.TypeExpense,
		OccurrenceCount: 1,
		FirstSeen:       now,
		LastSeen:        now,
	}
	require.NoError(t, store.UpsertMerchantMemory(ctx, mem))

	got, err := store.GetMerchantMemory(ctx, "SWIGGY")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.CategoryID)
	assert.Equal(t, model.TypeExpense, got.Type)
	assert.False(t, got.Locked)

	mem.OccurrenceCount = 3
	mem.Locked = true
	require.NoError(t, store.UpsertMerchantMemory(ctx, mem))

	got, err = store.GetMerchantMemory(ctx, "SWIGGY")
	require.NoError(t, err)
	assert.True(t, got.Locked)
	assert.Equal(t, 3, got.OccurrenceCount)

	all, err := store.GetAllMerchantMemories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetCategorySummary_CompletedOnly(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)

	food, err := store.GetCategoryByName(ctx, "Food & Dining")
	require.NoError(t, err)

	completed := sampleTransaction("h-completed")
	completed.CategoryID = food.ID
	completed.Date = base
	_, err = store.InsertTransactionIgnoringConflict(ctx, completed)
	require.NoError(t, err)

	pending := sampleTransaction("h-pending")
	pending.CategoryID = food.ID
	pending.Date = base
	pending.Status = model.StatusPending
	_, err = store.InsertTransactionIgnoringConflict(ctx, pending)
	require.NoError(t, err)

	deleted := sampleTransaction("h-deleted")
	deleted.CategoryID = food.ID
	deleted.Date = base
	deletedID, err := store.InsertTransactionIgnoringConflict(ctx, deleted)
	require.NoError(t, err)
	require.NoError(t, store.SoftDeleteTransaction(ctx, deletedID, base.Add(time.Hour)))

	summary, err := store.GetCategorySummary(ctx, base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(50000), summary["Food & Dining"])
}

func TestCreateCategory(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Pet Care", "Vet and supplies", model.CategoryTypeVariableExpense)
	require.NoError(t, err)
	assert.Greater(t, cat.ID, 0)
	assert.Equal(t, model.CategoryTypeVariableExpense, cat.Type)

	// Duplicate names are rejected by the UNIQUE constraint.
	_, err = store.CreateCategory(ctx, "Pet Care", "", model.CategoryTypeVariableExpense)
	assert.Error(t, err)
}

func TestSaveClassificationRecord(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.InsertTransactionIgnoringConflict(ctx, sampleTransaction("h1"))
	require.NoError(t, err)

	err = store.SaveClassificationRecord(ctx, &model.ClassificationRecord{
		TransactionID: id,
		CategoryID:    1,
		Type:          model.TypeExpense,
		Source:        model.SourceRule,
		Confidence:    50,
	})
	require.NoError(t, err)
}
