package memory

import (
	"context"
	"testing"
	"time"

	"github.com/niharm/paisatrail/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for manager tests.
type fakeStore struct {
	rows map[string]model.MerchantMemory
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]model.MerchantMemory)}
}

func (f *fakeStore) GetMerchantMemory(_ context.Context, normalizedName string) (*model.MerchantMemory, error) {
	if mem, ok := f.rows[normalizedName]; ok {
		copied := mem
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) UpsertMerchantMemory(_ context.Context, mem *model.MerchantMemory) error {
	f.rows[mem.NormalizedName] = *mem
	return nil
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "SWIGGY", Normalize("  swiggy "))
	assert.Equal(t, "UBER EATS", Normalize("Uber Eats"))
	assert.Equal(t, "", Normalize("   "))
}

func TestManager_AutoLockAtThreshold(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newFakeStore())
	at := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < AutoLockThreshold; i++ {
		_, err := manager.RecordOccurrence(ctx, "Swiggy", 5, model.TypeExpense, at.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	mem, err := manager.GetLearnedCategory(ctx, "SWIGGY")
	require.NoError(t, err)
	require.NotNil(t, mem)

	assert.True(t, mem.Locked)
	assert.Equal(t, AutoLockThreshold, mem.OccurrenceCount)
	assert.Equal(t, 5, mem.CategoryID)
	assert.False(t, mem.UserConfirmed)
}

func TestManager_UnlockedBelowThreshold(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newFakeStore())
	at := time.Now()

	_, err := manager.RecordOccurrence(ctx, "Zomato", 3, model.TypeExpense, at)
	require.NoError(t, err)
	_, err = manager.RecordOccurrence(ctx, "Zomato", 3, model.TypeExpense, at)
	require.NoError(t, err)

	mem, err := manager.GetLearnedCategory(ctx, "zomato")
	require.NoError(t, err)
	require.NotNil(t, mem)

	assert.False(t, mem.Locked)
	assert.Equal(t, 2, mem.OccurrenceCount)
}

func TestManager_LockIsMonotonic(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newFakeStore())
	at := time.Now()

	for i := 0; i < 10; i++ {
		mem, err := manager.RecordOccurrence(ctx, "Swiggy", 5, model.TypeExpense, at)
		require.NoError(t, err)
		if i >= AutoLockThreshold-1 {
			assert.True(t, mem.Locked, "occurrence %d", i+1)
		}
	}
}

func TestManager_OccurrenceNeverMutatesCategory(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newFakeStore())
	at := time.Now()

	_, err := manager.RecordOccurrence(ctx, "Swiggy", 5, model.TypeExpense, at)
	require.NoError(t, err)

	// Later sightings carry a different category; the stored mapping
	// must keep the original.
	mem, err := manager.RecordOccurrence(ctx, "Swiggy", 9, model.TypeTransfer, at.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 5, mem.CategoryID)
	assert.Equal(t, model.TypeExpense, mem.Type)
	assert.Equal(t, 2, mem.OccurrenceCount)
	assert.Equal(t, at.Add(time.Hour), mem.LastSeen)
}

func TestManager_ConfirmMappingLocksImmediately(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newFakeStore())

	mem, err := manager.ConfirmMapping(ctx, "New Merchant", 7, model.TypeExpense, time.Now())
	require.NoError(t, err)

	assert.True(t, mem.Locked)
	assert.True(t, mem.UserConfirmed)
	assert.Equal(t, 7, mem.CategoryID)
	assert.Equal(t, 1, mem.OccurrenceCount)
}

func TestManager_ConfirmOverridesExisting(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newFakeStore())
	at := time.Now()

	_, err := manager.RecordOccurrence(ctx, "Swiggy", 5, model.TypeExpense, at)
	require.NoError(t, err)

	mem, err := manager.ConfirmMapping(ctx, "Swiggy", 9, model.TypeTransfer, at.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, mem.Locked)
	assert.True(t, mem.UserConfirmed)
	assert.Equal(t, 9, mem.CategoryID)
	assert.Equal(t, model.TypeTransfer, mem.Type)
}

func TestManager_OccurrenceNeverOverwritesConfirmed(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newFakeStore())
	at := time.Now()

	_, err := manager.ConfirmMapping(ctx, "Swiggy", 9, model.TypeTransfer, at)
	require.NoError(t, err)

	mem, err := manager.RecordOccurrence(ctx, "Swiggy", 5, model.TypeExpense, at.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, mem.UserConfirmed)
	assert.True(t, mem.Locked)
	assert.Equal(t, 9, mem.CategoryID)
	assert.Equal(t, model.TypeTransfer, mem.Type)
}

func TestManager_UnseenMerchantReturnsAbsence(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newFakeStore())

	mem, err := manager.GetLearnedCategory(ctx, "never seen")
	require.NoError(t, err)
	assert.Nil(t, mem)
}

func TestManager_BlankMerchantIsNoop(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(newFakeStore())

	mem, err := manager.RecordOccurrence(ctx, "   ", 5, model.TypeExpense, time.Now())
	require.NoError(t, err)
	assert.Nil(t, mem)

	_, err = manager.ConfirmMapping(ctx, "", 5, model.TypeExpense, time.Now())
	assert.Error(t, err)
}
