// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/rodsouza/minhasfinancas/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// Storage defines the contract for the persistence layer. Every method is
// scoped to an owning user; rows belonging to other users are invisible.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id, userID int64) (*model.Account, error)
	ListAccounts(ctx context.Context, userID int64) ([]model.Account, error)
	// AdjustAccountBalance applies a signed delta to the account balance as a
	// single atomic increment. Balance changes must never be expressed as a
	// read-then-write pair.
	AdjustAccountBalance(ctx context.Context, accountID, userID int64, delta float64) error

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id, userID int64) (*model.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]model.Category, error)
	CountChildCategories(ctx context.Context, id, userID int64) (int, error)

	// Person operations
	CreatePerson(ctx context.Context, person *model.Person) error
	GetPerson(ctx context.Context, id, userID int64) (*model.Person, error)

	// Transaction operations
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, id, userID int64) (*model.Transaction, error)
	ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]model.Transaction, error)
	GetRecordedExternalIDs(ctx context.Context, userID int64, externalIDs []string) (map[string]bool, error)

	// Movement operations
	SaveMovement(ctx context.Context, movement *model.BankMovement) error
	ListMovements(ctx context.Context, accountID, userID int64) ([]model.BankMovement, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction. All Storage methods invoked
// through it share one atomic unit of work: either every write becomes
// visible on Commit or none does.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
