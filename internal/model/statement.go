package model

import "time"

// StatementRecord is one normalized transaction decoded from a bank
// statement file. Amount is signed decimal currency (statement minor units
// already scaled); negative means expense.
type StatementRecord struct {
	Date            time.Time
	ExternalID      string
	Description     string
	Type            string
	CategoryID      int64
	Amount          float64
	AlreadyImported bool
}

// Kind derives the transaction kind from the record's amount sign.
// Zero-amount records count as income, matching the non-negative rule used
// by the bulk-import category checks.
func (r *StatementRecord) Kind() TransactionKind {
	if r.Amount < 0 {
		return KindExpense
	}
	return KindIncome
}
