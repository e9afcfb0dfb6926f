// Package classification provides the fallback keyword classifier used
// when no learned merchant mapping exists. The externally trained
// merchant model plugs in through the same engine.Classifier interface.
package classification

import (
	"context"
	"strings"

	"github.com/niharm/paisatrail/internal/model"
)

// keywordRule maps merchant-name substrings to a category guess.
type keywordRule struct {
	category   string
	keywords   []string
	confidence float64
}

// Rules are checked in order; the keyword tables come from the most
// common Indian bank/UPI senders in the training corpus.
var keywordRules = []keywordRule{
	{"Food & Dining", []string{"zomato", "swiggy", "dominos", "mcdonald"}, 0.85},
	{"Transport", []string{"uber", "ola", "rapido", "irctc", "redbus"}, 0.85},
	{"Groceries", []string{"bigbasket", "blinkit", "zepto", "dmart"}, 0.80},
	{"Recharge", []string{"jio", "airtel", "vi recharge", "bsnl"}, 0.80},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "ajio"}, 0.80},
	{"Investment", []string{"zerodha", "upstox", "groww", "mutual fund", "sip"}, 0.85},
	{"Fuel", []string{"petrol", "hpcl", "bpcl", "indian oil"}, 0.75},
	{"Salary", []string{"salary", "payroll"}, 0.90},
}

// KeywordClassifier suggests categories from merchant-name substrings.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the keyword fallback classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// SuggestCategory returns a category guess and confidence for the
// message's merchant, or ("", 0) when nothing matches. Absence of a
// suggestion is not an error; the caller falls through to the default
// category.
func (c *KeywordClassifier) SuggestCategory(_ context.Context, msg model.ParsedMessage, categories []model.Category) (string, float64, error) {
	haystack := strings.ToLower(msg.MerchantName)
	if haystack == "" {
		haystack = strings.ToLower(msg.RawText)
	}
	if haystack == "" {
		return "", 0, nil
	}

	known := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		known[cat.Name] = struct{}{}
	}

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if !strings.Contains(haystack, kw) {
				continue
			}
			// Only suggest categories that actually exist.
			if _, ok := known[rule.category]; !ok {
				continue
			}
			return rule.category, rule.confidence, nil
		}
	}

	return "", 0, nil
}
