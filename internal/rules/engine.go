// Package rules implements the transaction type resolution and
// validation rule engine. It is pure: every function is a total
// decision over its inputs with no storage access and no side effects
// beyond warning logs.
package rules

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/niharm/paisatrail/internal/model"
)

// ResolveInput carries everything the resolver may consult. Category
// and IsDebit are optional; a nil IsDebit means no SMS direction
// context exists and the correction stage is skipped entirely.
type ResolveInput struct {
	Category             *model.Category
	IsDebit              *bool
	ManualClassification string
	UPIID                string
	CounterpartyType     model.CounterpartyType
	IsSelfTransfer       bool
	IsUntrustedP2P       bool
}

// ResolveTransactionType resolves the canonical transaction type.
//
// Resolution runs in four stages: the self-transfer override, explicit
// manual classification, the category-derived default, and finally the
// direction/cashback/P2P corrections. The first two stages fully
// determine the type; corrections only ever adjust a category-derived
// default, since a manual choice represents explicit user intent.
func ResolveTransactionType(in ResolveInput) model.TransactionType {
	// Money moved between the user's own accounts is a transfer no
	// matter what the category or message says.
	if in.IsSelfTransfer {
		return model.TypeTransfer
	}

	if strings.TrimSpace(in.ManualClassification) != "" {
		t, ok := model.ParseTransactionType(in.ManualClassification)
		if !ok {
			slog.Warn("Unrecognized manual classification, defaulting to expense",
				"classification", in.ManualClassification)
		}
		return t
	}

	t := defaultTypeForCategory(in.Category)
	return applyCorrections(t, in)
}

// defaultTypeForCategory derives a type from the category alone. Legacy
// name-substring overrides run before the type table.
func defaultTypeForCategory(c *model.Category) model.TransactionType {
	if c == nil {
		return model.TypeExpense
	}

	lower := strings.ToLower(c.Name)
	for _, rule := range nameOverrides {
		if strings.Contains(lower, rule.contains) {
			return model.TransactionType(rule.forces)
		}
	}

	switch c.Type {
	case model.CategoryTypeIncome:
		return model.TypeIncome
	case model.CategoryTypeFixedExpense, model.CategoryTypeVariableExpense, model.CategoryTypeVehicle:
		return model.TypeExpense
	case model.CategoryTypeInvestment:
		return model.TypeInvestmentOutflow
	case model.CategoryTypeIgnore:
		return model.TypeIgnore
	case model.CategoryTypeStatement:
		return model.TypeStatement
	case model.CategoryTypeLiability:
		return model.TypeLiabilityPayment
	case model.CategoryTypeTransfer:
		return model.TypeTransfer
	default:
		return model.TypeExpense
	}
}

// applyCorrections enforces the financial invariants that category
// defaults cannot express. It requires SMS direction context; without
// it (manual entry) the candidate type passes through untouched.
func applyCorrections(t model.TransactionType, in ResolveInput) model.TransactionType {
	if in.IsDebit == nil {
		return t
	}
	isCredit := !*in.IsDebit

	// Credit is never an expense: category defaults are
	// direction-agnostic, a refund landing in a spending category
	// must not count as spend.
	if isCredit && t == model.TypeExpense {
		t = model.TypeIncome
	}

	// Promotional credits are cashback, not income.
	if isCredit && isCashbackContext(in) {
		t = model.TypeCashback
	}

	// Trusted person-to-person movement is a transfer. It moves money
	// without representing consumption, so counting it as expense or
	// income would distort budgeting totals.
	if isTrustedP2P(in) && t != model.TypeCashback && t != model.TypeTransfer {
		t = model.TypeTransfer
	}

	return t
}

func isCashbackContext(in ResolveInput) bool {
	if in.Category != nil && nameContainsAny(in.Category.Name, cashbackKeywords) {
		return true
	}
	return IsCashbackVPA(in.UPIID)
}

func isTrustedP2P(in ResolveInput) bool {
	if in.IsUntrustedP2P {
		return false
	}
	if in.CounterpartyType == model.CounterpartyPerson {
		return true
	}
	return in.Category != nil && nameContainsAny(in.Category.Name, p2pCategoryKeywords)
}

// allowedTypes maps each category type to the full set of transaction
// types it may legally hold. The first entry is the default fallback.
var allowedTypes = map[model.CategoryType][]model.TransactionType{
	model.CategoryTypeIncome: {
		model.TypeIncome, model.TypeRefund, model.TypeCashback,
	},
	model.CategoryTypeFixedExpense: {
		model.TypeExpense, model.TypeLiabilityPayment, model.TypeTransfer,
	},
	model.CategoryTypeVariableExpense: {
		model.TypeExpense, model.TypeLiabilityPayment, model.TypeTransfer,
	},
	model.CategoryTypeVehicle: {
		model.TypeExpense, model.TypeLiabilityPayment, model.TypeTransfer,
	},
	model.CategoryTypeInvestment: {
		model.TypeInvestmentOutflow, model.TypeExpense,
		model.TypeInvestmentContribution, model.TypePension, model.TypeTransfer,
	},
	model.CategoryTypeIgnore:    {model.TypeIgnore},
	model.CategoryTypeStatement: {model.TypeStatement},
	model.CategoryTypeLiability: {model.TypeLiabilityPayment},
	model.CategoryTypeTransfer:  {model.TypeTransfer},
}

// AllowedTypes returns the transaction types a category may legally
// hold, in preference order. Callers use the first entry as the safe
// fallback when resolution produced an invalid combination. A nil
// category places no restriction.
func AllowedTypes(c *model.Category) []model.TransactionType {
	if c == nil {
		return append([]model.TransactionType(nil), model.AllTransactionTypes...)
	}
	if types, ok := allowedTypes[c.Type]; ok {
		return append([]model.TransactionType(nil), types...)
	}
	return append([]model.TransactionType(nil), model.AllTransactionTypes...)
}

// Validation is the typed outcome of a category/type compatibility
// check. Invalid combinations are advisory, never errors.
type Validation struct {
	Reason string
	Valid  bool
}

// ValidateCategoryType checks whether a transaction type is legal for a
// category. It is total over every category type × transaction type
// combination and never fails.
func ValidateCategoryType(t model.TransactionType, c *model.Category) Validation {
	for _, allowed := range AllowedTypes(c) {
		if allowed == t {
			return Validation{Valid: true}
		}
	}
	return Validation{
		Valid: false,
		Reason: fmt.Sprintf("type %s is not allowed for %s category %q",
			t, c.Type, c.Name),
	}
}
