package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/model"
)

// CreateAccount persists a new bank account and fills in its ID.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	return s.createAccountTx(ctx, s.db, account)
}

func (s *SQLiteStorage) createAccountTx(ctx context.Context, q queryable, account *model.Account) error {
	result, err := q.ExecContext(ctx, `
		INSERT INTO accounts (description, type, balance, active, user_id)
		VALUES (?, ?, ?, ?, ?)
	`, account.Description, string(account.Type), account.Balance, account.Active, account.UserID)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account ID: %w", err)
	}
	account.ID = id
	return nil
}

// GetAccount retrieves an account by ID, scoped to its owner.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id, userID int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccountTx(ctx, s.db, id, userID)
}

func (s *SQLiteStorage) getAccountTx(ctx context.Context, q queryable, id, userID int64) (*model.Account, error) {
	var account model.Account
	var accountType string

	err := q.QueryRowContext(ctx, `
		SELECT id, description, type, balance, active, user_id
		FROM accounts
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(
		&account.ID,
		&account.Description,
		&accountType,
		&account.Balance,
		&account.Active,
		&account.UserID,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.Type = model.AccountType(accountType)
	return &account, nil
}

// ListAccounts returns all of a user's accounts ordered by description.
func (s *SQLiteStorage) ListAccounts(ctx context.Context, userID int64) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listAccountsTx(ctx, s.db, userID)
}

func (s *SQLiteStorage) listAccountsTx(ctx context.Context, q queryable, userID int64) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, description, type, balance, active, user_id
		FROM accounts
		WHERE user_id = ?
		ORDER BY description
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		var accountType string
		if err := rows.Scan(
			&account.ID,
			&account.Description,
			&accountType,
			&account.Balance,
			&account.Active,
			&account.UserID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.Type = model.AccountType(accountType)
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// AdjustAccountBalance applies a signed delta to the account balance. The
// update is a single atomic increment so concurrent commits never lose an
// update, regardless of isolation level.
func (s *SQLiteStorage) AdjustAccountBalance(ctx context.Context, accountID, userID int64, delta float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.adjustAccountBalanceTx(ctx, s.db, accountID, userID, delta)
}

func (s *SQLiteStorage) adjustAccountBalanceTx(ctx context.Context, q queryable, accountID, userID int64, delta float64) error {
	result, err := q.ExecContext(ctx, `
		UPDATE accounts
		SET balance = ROUND(balance + ?, 2)
		WHERE id = ? AND user_id = ?
	`, delta, accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to adjust balance of account %d: %w", accountID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check balance update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %d: %w", accountID, common.ErrNotFound)
	}
	return nil
}
