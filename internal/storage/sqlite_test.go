package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/model"
	"github.com/rodsouza/minhasfinancas/internal/service"
)

const testUser = int64(1)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedAccount(t *testing.T, store *SQLiteStorage) *model.Account {
	t.Helper()
	account := &model.Account{
		Description: "Conta Corrente",
		Type:        model.AccountTypeChecking,
		Active:      true,
		UserID:      testUser,
	}
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}

func seedCategory(t *testing.T, store *SQLiteStorage, description string, parentID int64) *model.Category {
	t.Helper()
	category := &model.Category{
		Description: description,
		Kind:        model.CategoryKindExpense,
		ParentID:    parentID,
		UserID:      testUser,
	}
	require.NoError(t, store.CreateCategory(context.Background(), category))
	return category
}

func seedPerson(t *testing.T, store *SQLiteStorage) *model.Person {
	t.Helper()
	person := &model.Person{Name: "Fulano", UserID: testUser}
	require.NoError(t, store.CreatePerson(context.Background(), person))
	return person
}

func testTransaction(account *model.Account, category *model.Category, person *model.Person, externalID string) *model.Transaction {
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	return &model.Transaction{
		Kind:        model.KindExpense,
		Amount:      45.90,
		Description: "Mercado",
		AccrualDate: due,
		DueDate:     due,
		ExternalID:  externalID,
		AccountID:   account.ID,
		CategoryID:  category.ID,
		PersonID:    person.ID,
		UserID:      testUser,
	}
}

func TestMigrate_SchemaVersion(t *testing.T) {
	store := newTestStorage(t)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Re-running is a no-op
	require.NoError(t, store.Migrate(context.Background()))
}

func TestAccounts_CreateGetList(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	account := seedAccount(t, store)
	assert.NotZero(t, account.ID)

	got, err := store.GetAccount(ctx, account.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, account.Description, got.Description)
	assert.Equal(t, model.AccountTypeChecking, got.Type)
	assert.True(t, got.Active)

	_, err = store.GetAccount(ctx, account.ID, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)

	accounts, err := store.ListAccounts(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestAdjustAccountBalance(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	account := seedAccount(t, store)

	require.NoError(t, store.AdjustAccountBalance(ctx, account.ID, testUser, -50.00))
	require.NoError(t, store.AdjustAccountBalance(ctx, account.ID, testUser, 120.75))

	got, err := store.GetAccount(ctx, account.ID, testUser)
	require.NoError(t, err)
	assert.InDelta(t, 70.75, got.Balance, 0.001)

	err = store.AdjustAccountBalance(ctx, 9999, testUser, 10.00)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.AdjustAccountBalance(ctx, account.ID, 99, 10.00)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategories_CountChildren(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	parent := seedCategory(t, store, "Moradia", 0)
	seedCategory(t, store, "Aluguel", parent.ID)
	seedCategory(t, store, "Condomínio", parent.ID)
	leaf := seedCategory(t, store, "Mercado", 0)

	count, err := store.CountChildCategories(ctx, parent.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.CountChildCategories(ctx, leaf.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	categories, err := store.ListCategories(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}

func TestPersons_CreateGet(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	person := seedPerson(t, store)
	got, err := store.GetPerson(ctx, person.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, "Fulano", got.Name)

	_, err = store.GetPerson(ctx, 9999, testUser)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactions_SaveAndGet(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	account := seedAccount(t, store)
	category := seedCategory(t, store, "Mercado", 0)
	person := seedPerson(t, store)

	txn := testTransaction(account, category, person, "EXT-1")
	require.NoError(t, store.SaveTransaction(ctx, txn))
	require.NotZero(t, txn.ID)

	got, err := store.GetTransaction(ctx, txn.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, model.KindExpense, got.Kind)
	assert.InDelta(t, 45.90, got.Amount, 0.001)
	assert.Equal(t, "EXT-1", got.ExternalID)
	assert.Nil(t, got.PaymentDate)
	assert.False(t, got.Paid)

	_, err = store.GetTransaction(ctx, txn.ID, 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTransactions_ListFilter(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	account := seedAccount(t, store)
	category := seedCategory(t, store, "Mercado", 0)
	person := seedPerson(t, store)

	for _, day := range []int{10, 20, 30} {
		txn := testTransaction(account, category, person, "")
		txn.DueDate = time.Date(2024, 4, day, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.SaveTransaction(ctx, txn))
	}

	all, err := store.ListTransactions(ctx, testUser, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest due date first
	assert.Equal(t, 30, all[0].DueDate.Day())
	assert.Equal(t, 10, all[2].DueDate.Day())

	start := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 25, 0, 0, 0, 0, time.UTC)
	window, err := store.ListTransactions(ctx, testUser, service.TransactionFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, 20, window[0].DueDate.Day())

	limited, err := store.ListTransactions(ctx, testUser, service.TransactionFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestTransactions_ExternalIDUniquePerUser(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	account := seedAccount(t, store)
	category := seedCategory(t, store, "Mercado", 0)
	person := seedPerson(t, store)

	first := testTransaction(account, category, person, "DUP-1")
	require.NoError(t, store.SaveTransaction(ctx, first))

	second := testTransaction(account, category, person, "DUP-1")
	assert.Error(t, store.SaveTransaction(ctx, second))

	// Blank external ids are stored as NULL and never collide
	blankA := testTransaction(account, category, person, "")
	blankB := testTransaction(account, category, person, "")
	require.NoError(t, store.SaveTransaction(ctx, blankA))
	require.NoError(t, store.SaveTransaction(ctx, blankB))
}

func TestGetRecordedExternalIDs(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	account := seedAccount(t, store)
	category := seedCategory(t, store, "Mercado", 0)
	person := seedPerson(t, store)

	require.NoError(t, store.SaveTransaction(ctx, testTransaction(account, category, person, "K1")))
	require.NoError(t, store.SaveTransaction(ctx, testTransaction(account, category, person, "K2")))

	recorded, err := store.GetRecordedExternalIDs(ctx, testUser, []string{"K1", "K2", "K3"})
	require.NoError(t, err)
	assert.True(t, recorded["K1"])
	assert.True(t, recorded["K2"])
	assert.False(t, recorded["K3"])

	// Other users never see these ids
	recorded, err = store.GetRecordedExternalIDs(ctx, 99, []string{"K1"})
	require.NoError(t, err)
	assert.Empty(t, recorded)

	recorded, err = store.GetRecordedExternalIDs(ctx, testUser, nil)
	require.NoError(t, err)
	assert.Empty(t, recorded)
}

func TestMovements_SaveAndList(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	account := seedAccount(t, store)

	older := &model.BankMovement{
		Date:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Direction: model.DirectionDebit,
		Amount:    30.00,
		Memo:      "PGTO: farmacia",
		AccountID: account.ID,
		UserID:    testUser,
	}
	newer := &model.BankMovement{
		Date:      time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
		Direction: model.DirectionCredit,
		Amount:    500.00,
		Memo:      "PGTO: salario",
		AccountID: account.ID,
		UserID:    testUser,
	}
	require.NoError(t, store.SaveMovement(ctx, older))
	require.NoError(t, store.SaveMovement(ctx, newer))

	movements, err := store.ListMovements(ctx, account.ID, testUser)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, "PGTO: salario", movements[0].Memo)
	assert.Equal(t, "PGTO: farmacia", movements[1].Memo)
	assert.InDelta(t, -30.00, movements[1].SignedAmount(), 0.001)
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	account := seedAccount(t, store)
	category := seedCategory(t, store, "Mercado", 0)
	person := seedPerson(t, store)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	txn := testTransaction(account, category, person, "ROLL-1")
	require.NoError(t, tx.SaveTransaction(ctx, txn))
	require.NoError(t, tx.AdjustAccountBalance(ctx, account.ID, testUser, -45.90))
	require.NoError(t, tx.Rollback())

	// Nothing from the aborted unit of work is visible
	_, err = store.GetTransaction(ctx, txn.ID, testUser)
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := store.GetAccount(ctx, account.ID, testUser)
	require.NoError(t, err)
	assert.InDelta(t, 0.00, got.Balance, 0.001)
}

func TestValidation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	err := store.CreateAccount(ctx, &model.Account{Type: model.AccountTypeChecking, UserID: testUser})
	assert.Error(t, err)

	err = store.CreateCategory(ctx, &model.Category{Description: "x", Kind: "weird", UserID: testUser})
	assert.Error(t, err)

	err = store.CreatePerson(ctx, &model.Person{UserID: testUser})
	assert.Error(t, err)

	//nolint:staticcheck // exercising the nil-context guard
	err = store.CreateAccount(nil, &model.Account{Description: "x", Type: model.AccountTypeChecking, UserID: testUser})
	assert.ErrorIs(t, err, ErrNilContext)
}
