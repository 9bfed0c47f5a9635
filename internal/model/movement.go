package model

import "time"

// MovementDirection is the side of a ledger entry.
type MovementDirection string

const (
	// DirectionCredit increases the account balance.
	DirectionCredit MovementDirection = "credit"
	// DirectionDebit decreases the account balance.
	DirectionDebit MovementDirection = "debit"
)

// BankMovement is an immutable ledger entry against a bank account. Every
// paid transaction is paired with exactly one movement created in the same
// atomic unit of work. TransactionID is zero when the originating
// transaction no longer exists.
type BankMovement struct {
	Date          time.Time
	Direction     MovementDirection
	Memo          string
	ID            int64
	AccountID     int64
	TransactionID int64
	UserID        int64
	Amount        float64
}

// SignedAmount returns the movement's effect on the account balance.
func (m *BankMovement) SignedAmount() float64 {
	if m.Direction == DirectionDebit {
		return -m.Amount
	}
	return m.Amount
}
