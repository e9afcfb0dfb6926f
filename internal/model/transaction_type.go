package model

import "strings"

// TransactionType is the authoritative classification of a money movement.
// All financial aggregates key off this value, never off the category alone.
type TransactionType string

// Transaction type constants.
const (
	TypeIncome                 TransactionType = "INCOME"
	TypeExpense                TransactionType = "EXPENSE"
	TypeTransfer               TransactionType = "TRANSFER"
	TypeLiabilityPayment       TransactionType = "LIABILITY_PAYMENT"
	TypeCashback               TransactionType = "CASHBACK"
	TypeRefund                 TransactionType = "REFUND"
	TypeInvestmentOutflow      TransactionType = "INVESTMENT_OUTFLOW"
	TypeInvestmentContribution TransactionType = "INVESTMENT_CONTRIBUTION"
	TypePension                TransactionType = "PENSION"
	TypeStatement              TransactionType = "STATEMENT"
	TypePending                TransactionType = "PENDING"
	TypeIgnore                 TransactionType = "IGNORE"
)

// AllTransactionTypes lists every valid transaction type.
var AllTransactionTypes = []TransactionType{
	TypeIncome,
	TypeExpense,
	TypeTransfer,
	TypeLiabilityPayment,
	TypeCashback,
	TypeRefund,
	TypeInvestmentOutflow,
	TypeInvestmentContribution,
	TypePension,
	TypeStatement,
	TypePending,
	TypeIgnore,
}

// ParseTransactionType maps a user-supplied classification string to a
// transaction type. It is total: the second return reports whether the
// string was recognized, it never fails. Legacy synonyms from older app
// versions are accepted ("NEUTRAL" for transfers, bare "INVESTMENT" for
// investment outflows).
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NEUTRAL", "TRANSFER":
		return TypeTransfer, true
	case "INVESTMENT", "INVESTMENT_OUTFLOW":
		return TypeInvestmentOutflow, true
	case "INVESTMENT_CONTRIBUTION":
		return TypeInvestmentContribution, true
	case "INCOME":
		return TypeIncome, true
	case "EXPENSE":
		return TypeExpense, true
	case "LIABILITY_PAYMENT":
		return TypeLiabilityPayment, true
	case "CASHBACK":
		return TypeCashback, true
	case "REFUND":
		return TypeRefund, true
	case "PENSION":
		return TypePension, true
	case "STATEMENT":
		return TypeStatement, true
	case "PENDING":
		return TypePending, true
	case "IGNORE":
		return TypeIgnore, true
	default:
		return TypeExpense, false
	}
}
