package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodsouza/minhasfinancas/internal/model"
	"github.com/rodsouza/minhasfinancas/internal/testutil"
)

func paidTransaction(f *testutil.Fixture, kind model.TransactionKind, amount float64) *model.Transaction {
	payment := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return &model.Transaction{
		Kind:        kind,
		Amount:      amount,
		Description: "Conta de luz",
		AccrualDate: payment,
		DueDate:     payment,
		PaymentDate: &payment,
		Paid:        true,
		AccountID:   f.Account.ID,
		CategoryID:  f.ExpenseCategory.ID,
		PersonID:    f.Person.ID,
		UserID:      f.UserID,
	}
}

func TestDirection(t *testing.T) {
	assert.Equal(t, model.DirectionDebit, Direction(model.KindExpense))
	assert.Equal(t, model.DirectionCredit, Direction(model.KindIncome))
}

func TestMovementFor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := db.SeedFixture(1)

	txn := paidTransaction(f, model.KindExpense, 150.00)
	txn.ID = 42

	movement, err := MovementFor(txn, "Conta de luz")
	require.NoError(t, err)

	assert.Equal(t, model.DirectionDebit, movement.Direction)
	assert.InDelta(t, 150.00, movement.Amount, 0.001)
	assert.InDelta(t, -150.00, movement.SignedAmount(), 0.001)
	assert.Equal(t, *txn.PaymentDate, movement.Date)
	assert.Equal(t, txn.AccountID, movement.AccountID)
	assert.Equal(t, int64(42), movement.TransactionID)
	assert.Equal(t, "Conta de luz", movement.Memo)
}

func TestMovementFor_Preconditions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := db.SeedFixture(1)

	unpaid := paidTransaction(f, model.KindExpense, 10.00)
	unpaid.Paid = false
	_, err := MovementFor(unpaid, "x")
	assert.ErrorContains(t, err, "not paid")

	noAccount := paidTransaction(f, model.KindExpense, 10.00)
	noAccount.AccountID = 0
	_, err = MovementFor(noAccount, "x")
	assert.ErrorContains(t, err, "no bank account")

	noDate := paidTransaction(f, model.KindExpense, 10.00)
	noDate.PaymentDate = nil
	_, err = MovementFor(noDate, "x")
	assert.ErrorContains(t, err, "no payment date")
}

func TestPostPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := db.SeedFixture(1)
	ctx := context.Background()

	tx, err := db.Storage.BeginTx(ctx)
	require.NoError(t, err)

	txn := paidTransaction(f, model.KindExpense, 75.50)
	require.NoError(t, tx.SaveTransaction(ctx, txn))

	movement, err := PostPayment(ctx, tx, txn)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.NotZero(t, movement.ID)

	movements, err := db.Storage.ListMovements(ctx, f.Account.ID, f.UserID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, txn.ID, movements[0].TransactionID)
	assert.Equal(t, model.DirectionDebit, movements[0].Direction)

	account := db.MustGetAccount(f.Account.ID, f.UserID)
	assert.InDelta(t, -75.50, account.Balance, 0.001)
}

func TestPostPayment_IncomeCredits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := db.SeedFixture(1)
	ctx := context.Background()

	tx, err := db.Storage.BeginTx(ctx)
	require.NoError(t, err)

	txn := paidTransaction(f, model.KindIncome, 1200.00)
	txn.CategoryID = f.IncomeCategory.ID
	require.NoError(t, tx.SaveTransaction(ctx, txn))

	_, err = PostPayment(ctx, tx, txn)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	account := db.MustGetAccount(f.Account.ID, f.UserID)
	assert.InDelta(t, 1200.00, account.Balance, 0.001)
}
