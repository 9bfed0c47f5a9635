package model

import "time"

// TransactionKind distinguishes income from expense transactions.
type TransactionKind string

const (
	// KindIncome marks a transaction as income (receita).
	KindIncome TransactionKind = "income"
	// KindExpense marks a transaction as expense (despesa).
	KindExpense TransactionKind = "expense"
)

// Transaction is a single financial posting (lançamento). Amount is always
// positive; the sign of its effect on a bank account comes from Kind.
//
// A transaction is paid if and only if it carries both a payment date and a
// bank account. Installment groups are one level deep: children reference the
// first installment through ParentID.
type Transaction struct {
	AccrualDate   time.Time
	DueDate       time.Time
	PaymentDate   *time.Time
	Description   string
	ExternalID    string
	ImportBatchID string
	Kind          TransactionKind
	Installments  []Installment
	ID            int64
	AccountID     int64
	CategoryID    int64
	PersonID      int64
	UserID        int64
	ParentID      int64
	Amount        float64
	Paid          bool
}

// Installment is one slice of a multi-installment transaction request.
// Number orders the installments; zero means "unnumbered", which sorts last.
type Installment struct {
	AccrualDate time.Time
	DueDate     time.Time
	PaymentDate *time.Time
	Number      int
	Amount      float64
}

// SignedAmount returns the amount with the sign of its effect on a bank
// account balance: positive for income, negative for expense.
func (t *Transaction) SignedAmount() float64 {
	if t.Kind == KindExpense {
		return -t.Amount
	}
	return t.Amount
}

// Parcelado reports whether the request carries an installment plan.
func (t *Transaction) Parcelado() bool {
	return len(t.Installments) > 0
}
