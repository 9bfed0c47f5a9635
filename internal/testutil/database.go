// Package testutil provides test utilities for minhasfinancas: in-memory
// databases with migrations applied and pre-seeded domain fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/rodsouza/minhasfinancas/internal/model"
	"github.com/rodsouza/minhasfinancas/internal/service"
	"github.com/rodsouza/minhasfinancas/internal/storage"
)

// TestDB represents a test database with associated fixtures.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. It automatically
// handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// Fixture is a seeded user universe: one account, a leaf income and a leaf
// expense category, one parent category with a child, and one person.
type Fixture struct {
	Account         *model.Account
	IncomeCategory  *model.Category
	ExpenseCategory *model.Category
	ParentCategory  *model.Category
	ChildCategory   *model.Category
	Person          *model.Person
	UserID          int64
}

// SeedFixture populates the database with a standard fixture for the given
// user and returns the created entities.
func (db *TestDB) SeedFixture(userID int64) *Fixture {
	db.t.Helper()
	ctx := context.Background()

	fixture := &Fixture{UserID: userID}

	fixture.Account = &model.Account{
		Description: "Conta Corrente",
		Type:        model.AccountTypeChecking,
		Active:      true,
		UserID:      userID,
	}
	if err := db.Storage.CreateAccount(ctx, fixture.Account); err != nil {
		db.t.Fatalf("failed to seed account: %v", err)
	}

	fixture.IncomeCategory = &model.Category{
		Description: "Salário",
		Kind:        model.CategoryKindIncome,
		UserID:      userID,
	}
	if err := db.Storage.CreateCategory(ctx, fixture.IncomeCategory); err != nil {
		db.t.Fatalf("failed to seed income category: %v", err)
	}

	fixture.ExpenseCategory = &model.Category{
		Description: "Mercado",
		Kind:        model.CategoryKindExpense,
		UserID:      userID,
	}
	if err := db.Storage.CreateCategory(ctx, fixture.ExpenseCategory); err != nil {
		db.t.Fatalf("failed to seed expense category: %v", err)
	}

	fixture.ParentCategory = &model.Category{
		Description: "Moradia",
		Kind:        model.CategoryKindExpense,
		UserID:      userID,
	}
	if err := db.Storage.CreateCategory(ctx, fixture.ParentCategory); err != nil {
		db.t.Fatalf("failed to seed parent category: %v", err)
	}

	fixture.ChildCategory = &model.Category{
		Description: "Aluguel",
		Kind:        model.CategoryKindExpense,
		ParentID:    fixture.ParentCategory.ID,
		UserID:      userID,
	}
	if err := db.Storage.CreateCategory(ctx, fixture.ChildCategory); err != nil {
		db.t.Fatalf("failed to seed child category: %v", err)
	}

	fixture.Person = &model.Person{
		Name:   "Fulano",
		UserID: userID,
	}
	if err := db.Storage.CreatePerson(ctx, fixture.Person); err != nil {
		db.t.Fatalf("failed to seed person: %v", err)
	}

	return fixture
}

// MustGetAccount re-reads the fixture account, failing the test on error.
func (db *TestDB) MustGetAccount(id, userID int64) *model.Account {
	db.t.Helper()
	account, err := db.Storage.GetAccount(context.Background(), id, userID)
	if err != nil {
		db.t.Fatalf("failed to get account %d: %v", id, err)
	}
	return account
}
