package rules

import "strings"

// Legacy category-name overrides. Categories created by early app
// versions encode their behavior in the name rather than in the
// category type; a category renamed away from one of these substrings
// silently changes behavior, so the list lives here in one place
// instead of being folded into the type table.
var nameOverrides = []struct {
	contains string
	forces   string
}{
	{"statement", "STATEMENT"},
	{"credit bill", "LIABILITY_PAYMENT"},
	{"credit card", "LIABILITY_PAYMENT"},
	{"cashback", "CASHBACK"},
}

// cashbackKeywords mark a category as holding promotional credits.
var cashbackKeywords = []string{"cashback", "cash back", "reward"}

// knownCashbackVPAs are payment addresses that banks and wallets use to
// pay out promotional credits.
var knownCashbackVPAs = map[string]struct{}{
	"cashback@upi":          {},
	"gpay-cashback@okicici": {},
	"phonepe.rewards@ybl":   {},
	"amazonpay-cb@apl":      {},
	"paytm-cashback@paytm":  {},
}

// p2pCategoryKeywords mark a category as person-to-person money movement.
var p2pCategoryKeywords = []string{"transfer", "p2p", "friends", "family"}

func nameContainsAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsCashbackVPA reports whether the given UPI id is a known cashback
// payout address.
func IsCashbackVPA(upiID string) bool {
	_, ok := knownCashbackVPAs[strings.ToLower(strings.TrimSpace(upiID))]
	return ok
}
