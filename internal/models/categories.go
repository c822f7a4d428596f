package models

// ExpenseCategories are the categories an expense can be filed under.
var ExpenseCategories = []string{
	"Housing",
	"Transportation",
	"Food",
	"Utilities",
	"Insurance",
	"Healthcare",
	"Savings",
	"Personal",
	"Entertainment",
	"Miscellaneous",
}

// IncomeSources are the categories an income can be filed under.
var IncomeSources = []string{
	"Salary",
	"Freelance",
	"Investments",
	"Gift",
	"Rental",
	"Other",
}

// CategoriesFor returns the category list allowed for the transaction type.
func CategoriesFor(t TransactionType) []string {
	switch t {
	case Income:
		return IncomeSources
	case Expense:
		return ExpenseCategories
	}
	return nil
}

// IsValidCategory reports whether category belongs to the list for t.
func IsValidCategory(t TransactionType, category string) bool {
	for _, c := range CategoriesFor(t) {
		if c == category {
			return true
		}
	}
	return false
}
