package model

// AccountType identifies the kind of bank account.
type AccountType string

const (
	// AccountTypeChecking is a regular checking account (conta corrente).
	AccountTypeChecking AccountType = "checking"
	// AccountTypeSavings is a savings account (poupança).
	AccountTypeSavings AccountType = "savings"
	// AccountTypeSalary is a salary-only account (conta salário).
	AccountTypeSalary AccountType = "salary"
	// AccountTypeInvestment is an investment account.
	AccountTypeInvestment AccountType = "investment"
)

// Account represents a user's bank account. Balance is only ever mutated
// through ledger postings; user input sets it at creation time only.
type Account struct {
	Description string
	Type        AccountType
	ID          int64
	UserID      int64
	Balance     float64
	Active      bool
}

// ValidAccountType reports whether t is one of the supported account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeSalary, AccountTypeInvestment:
		return true
	}
	return false
}
