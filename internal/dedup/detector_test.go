package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/niharm/paisatrail/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for detector tests.
type fakeStore struct {
	hashes     map[string]bool
	references map[string]int64
	candidates []model.TransactionSnapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hashes:     make(map[string]bool),
		references: make(map[string]int64),
	}
}

func (f *fakeStore) ExistsByHash(_ context.Context, hash string) (bool, error) {
	return f.hashes[hash], nil
}

func (f *fakeStore) ExistsByReferenceAndAmount(_ context.Context, referenceNo string, amountPaisa int64) (bool, error) {
	amount, ok := f.references[referenceNo]
	return ok && amount == amountPaisa, nil
}

func (f *fakeStore) FindCandidatesByAmountAndTimeWindow(_ context.Context, _ int64, start, end time.Time) ([]model.TransactionSnapshot, error) {
	var inWindow []model.TransactionSnapshot
	for _, c := range f.candidates {
		if !c.Date.Before(start) && !c.Date.After(end) {
			inWindow = append(inWindow, c)
		}
	}
	return inWindow, nil
}

func TestDetector_ExactHash(t *testing.T) {
	store := newFakeStore()
	store.hashes["h1"] = true
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:        "h1",
		AmountPaisa: 10000,
		Date:        time.Now(),
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, model.TierExactHash, result.Tier)
	assert.InDelta(t, 0.999, result.Confidence, 0.0001)
}

func TestDetector_TierOrdering(t *testing.T) {
	// When both tier 1 and tier 2 would match, tier 1 wins.
	store := newFakeStore()
	store.hashes["h1"] = true
	store.references["REF1"] = 50000
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:        "h1",
		ReferenceNo: "REF1",
		AmountPaisa: 50000,
		Date:        time.Now(),
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, model.TierExactHash, result.Tier)
}

func TestDetector_ReferenceMatch(t *testing.T) {
	store := newFakeStore()
	store.references["REF1"] = 50000
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:        "new-hash",
		ReferenceNo: "REF1",
		AmountPaisa: 50000,
		Date:        time.Now(),
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, model.TierReferenceMatch, result.Tier)
	assert.InDelta(t, 0.95, result.Confidence, 0.0001)
}

func TestDetector_ReferenceRequiresAmountMatch(t *testing.T) {
	store := newFakeStore()
	store.references["REF1"] = 50000
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:        "new-hash",
		ReferenceNo: "REF1",
		AmountPaisa: 60000,
		Date:        time.Now(),
	})
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
}

func TestDetector_BlankReferenceSkipsTier(t *testing.T) {
	store := newFakeStore()
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:        "h1",
		ReferenceNo: "   ",
		AmountPaisa: 10000,
		Date:        time.Now(),
	})
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
}

func TestDetector_FuzzyMerchantMatch(t *testing.T) {
	now := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.candidates = []model.TransactionSnapshot{
		{ID: 42, Date: now.Add(-time.Minute), MerchantName: "UBER EATS"},
	}
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:         "new-hash",
		AmountPaisa:  50000,
		Date:         now,
		MerchantName: "Uber Eats",
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, model.TierFuzzyMatch, result.Tier)
	assert.GreaterOrEqual(t, result.Confidence, 0.70)
	require.NotNil(t, result.MatchedTransactionID)
	assert.Equal(t, int64(42), *result.MatchedTransactionID)
	assert.Contains(t, result.Reason, "50000")
	assert.Contains(t, result.Reason, "minute")
	assert.Contains(t, result.Reason, "merchant matched")
}

func TestDetector_FuzzyContainmentMatch(t *testing.T) {
	now := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.candidates = []model.TransactionSnapshot{
		{ID: 7, Date: now.Add(5 * time.Minute), MerchantName: "SWIGGY INSTAMART"},
	}
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:         "new-hash",
		AmountPaisa:  19900,
		Date:         now,
		MerchantName: "Swiggy",
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, model.TierFuzzyMatch, result.Tier)
}

func TestDetector_FuzzyFloor(t *testing.T) {
	// Amount plus time proximity alone scores 0.40 and must never be
	// reported as a duplicate.
	now := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.candidates = []model.TransactionSnapshot{
		{ID: 1, Date: now.Add(-2 * time.Minute), MerchantName: "SOMEONE ELSE"},
	}
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:         "new-hash",
		AmountPaisa:  50000,
		Date:         now,
		MerchantName: "Uber",
	})
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
	assert.Zero(t, result.Confidence)
}

func TestDetector_FuzzyAccountBonus(t *testing.T) {
	// Merchant mismatch but matching account last4 still stays under
	// the floor (0.40 + 0.25); both signals together cross it.
	now := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.candidates = []model.TransactionSnapshot{
		{ID: 1, Date: now, MerchantName: "OTHER", AccountLast4: "1234"},
		{ID: 2, Date: now, MerchantName: "ZOMATO", AccountLast4: "1234"},
	}
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:         "new-hash",
		AmountPaisa:  30000,
		Date:         now,
		MerchantName: "Zomato",
		AccountLast4: "1234",
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	require.NotNil(t, result.MatchedTransactionID)
	assert.Equal(t, int64(2), *result.MatchedTransactionID)
	assert.InDelta(t, 0.95, result.Confidence, 0.0001)
	assert.Contains(t, result.Reason, "account matched")
}

func TestDetector_FuzzyFirstCrossingWins(t *testing.T) {
	// The first candidate over the floor is returned even when a later
	// candidate would score higher.
	now := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.candidates = []model.TransactionSnapshot{
		{ID: 1, Date: now.Add(-10 * time.Minute), MerchantName: "ZOMATO"},
		{ID: 2, Date: now.Add(-1 * time.Minute), MerchantName: "ZOMATO", AccountLast4: "1234"},
	}
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:         "new-hash",
		AmountPaisa:  30000,
		Date:         now,
		MerchantName: "Zomato",
		AccountLast4: "1234",
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	require.NotNil(t, result.MatchedTransactionID)
	assert.Equal(t, int64(1), *result.MatchedTransactionID)
}

func TestDetector_OutsideTimeWindow(t *testing.T) {
	now := time.Date(2026, 7, 14, 12, 0, 0, 0, time.UTC)

	store := newFakeStore()
	store.candidates = []model.TransactionSnapshot{
		{ID: 1, Date: now.Add(-16 * time.Minute), MerchantName: "ZOMATO"},
	}
	detector := NewDetector(store)

	result, err := detector.Check(context.Background(), CheckInput{
		Hash:         "new-hash",
		AmountPaisa:  30000,
		Date:         now,
		MerchantName: "Zomato",
	})
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
}
