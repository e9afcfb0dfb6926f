package model

import "time"

// CategoryType constrains which transaction types a category may produce.
type CategoryType string

// Category type constants.
const (
	CategoryTypeIncome          CategoryType = "INCOME"
	CategoryTypeFixedExpense    CategoryType = "FIXED_EXPENSE"
	CategoryTypeVariableExpense CategoryType = "VARIABLE_EXPENSE"
	CategoryTypeInvestment      CategoryType = "INVESTMENT"
	CategoryTypeVehicle         CategoryType = "VEHICLE"
	CategoryTypeIgnore          CategoryType = "IGNORE"
	CategoryTypeStatement       CategoryType = "STATEMENT"
	CategoryTypeLiability       CategoryType = "LIABILITY"
	CategoryTypeTransfer        CategoryType = "TRANSFER"
)

// AllCategoryTypes lists every valid category type.
var AllCategoryTypes = []CategoryType{
	CategoryTypeIncome,
	CategoryTypeFixedExpense,
	CategoryTypeVariableExpense,
	CategoryTypeInvestment,
	CategoryTypeVehicle,
	CategoryTypeIgnore,
	CategoryTypeStatement,
	CategoryTypeLiability,
	CategoryTypeTransfer,
}

// Category represents a named spending bucket.
type Category struct {
	CreatedAt   time.Time
	Name        string
	Description string
	Type        CategoryType
	ID          int
	IsActive    bool
}
