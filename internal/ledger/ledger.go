// Package ledger creates bank movements and keeps account balances
// consistent with paid transactions.
package ledger

import (
	"context"
	"fmt"

	"github.com/rodsouza/minhasfinancas/internal/model"
	"github.com/rodsouza/minhasfinancas/internal/service"
)

// Direction returns the ledger side for a transaction kind: income credits
// the account, expense debits it.
func Direction(kind model.TransactionKind) model.MovementDirection {
	if kind == model.KindExpense {
		return model.DirectionDebit
	}
	return model.DirectionCredit
}

// MovementFor derives the single ledger entry that pairs with a paid
// transaction. The movement's signed amount equals the transaction's signed
// amount and its date is the payment date.
func MovementFor(txn *model.Transaction, memo string) (*model.BankMovement, error) {
	if !txn.Paid {
		return nil, fmt.Errorf("transaction %d is not paid", txn.ID)
	}
	if txn.AccountID <= 0 {
		return nil, fmt.Errorf("transaction %d has no bank account", txn.ID)
	}
	if txn.PaymentDate == nil {
		return nil, fmt.Errorf("transaction %d has no payment date", txn.ID)
	}

	return &model.BankMovement{
		Date:          *txn.PaymentDate,
		Direction:     Direction(txn.Kind),
		Amount:        txn.Amount,
		Memo:          memo,
		AccountID:     txn.AccountID,
		TransactionID: txn.ID,
		UserID:        txn.UserID,
	}, nil
}

// PostPayment records the ledger entry for a paid transaction and applies
// the signed delta to the account balance, all within the supplied database
// transaction. It must only be called inside the same atomic unit of work
// that inserted the transaction row.
func PostPayment(ctx context.Context, tx service.Transaction, txn *model.Transaction) (*model.BankMovement, error) {
	movement, err := MovementFor(txn, txn.Description)
	if err != nil {
		return nil, err
	}

	if err := tx.SaveMovement(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to save movement: %w", err)
	}

	if err := tx.AdjustAccountBalance(ctx, txn.AccountID, txn.UserID, txn.SignedAmount()); err != nil {
		return nil, fmt.Errorf("failed to adjust account balance: %w", err)
	}

	return movement, nil
}
