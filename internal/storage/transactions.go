package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/model"
	"github.com/rodsouza/minhasfinancas/internal/service"
)

const transactionColumns = `id, kind, amount, description, accrual_date, due_date,
	payment_date, paid, external_id, import_batch_id, account_id, category_id,
	person_id, user_id, parent_id`

// SaveTransaction persists a transaction row and fills in its ID.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return s.saveTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) saveTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	var externalID, batchID, accountID, parentID any
	if txn.ExternalID != "" {
		externalID = txn.ExternalID
	}
	if txn.ImportBatchID != "" {
		batchID = txn.ImportBatchID
	}
	if txn.AccountID > 0 {
		accountID = txn.AccountID
	}
	if txn.ParentID > 0 {
		parentID = txn.ParentID
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO transactions (
			kind, amount, description, accrual_date, due_date, payment_date,
			paid, external_id, import_batch_id, account_id, category_id,
			person_id, user_id, parent_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(txn.Kind),
		txn.Amount,
		txn.Description,
		txn.AccrualDate,
		txn.DueDate,
		txn.PaymentDate,
		txn.Paid,
		externalID,
		batchID,
		accountID,
		txn.CategoryID,
		txn.PersonID,
		txn.UserID,
		parentID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction ID: %w", err)
	}
	txn.ID = id
	return nil
}

// GetTransaction retrieves a transaction by ID, scoped to its owner.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id, userID int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionTx(ctx, s.db, id, userID)
}

func (s *SQLiteStorage) getTransactionTx(ctx context.Context, q queryable, id, userID int64) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND user_id = ?
	`, id, userID)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions returns a user's transactions, optionally filtered by
// due-date period, newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, userID int64, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listTransactionsTx(ctx, s.db, userID, filter)
}

func (s *SQLiteStorage) listTransactionsTx(ctx context.Context, q queryable, userID int64, filter service.TransactionFilter) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if filter.StartDate != nil {
		query += " AND due_date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND due_date <= ?"
		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY due_date DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	return transactions, rows.Err()
}

// GetRecordedExternalIDs returns, as a set, which of the given bank statement
// identifiers are already recorded for the user. The lookup spans the user's
// entire history, never a date window; this is the authoritative duplicate
// check for imports.
func (s *SQLiteStorage) GetRecordedExternalIDs(ctx context.Context, userID int64, externalIDs []string) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getRecordedExternalIDsTx(ctx, s.db, userID, externalIDs)
}

func (s *SQLiteStorage) getRecordedExternalIDsTx(ctx context.Context, q queryable, userID int64, externalIDs []string) (map[string]bool, error) {
	recorded := make(map[string]bool)
	if len(externalIDs) == 0 {
		return recorded, nil
	}

	placeholders := strings.Repeat("?,", len(externalIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(externalIDs)+1)
	args = append(args, userID)
	for _, id := range externalIDs {
		args = append(args, id)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT external_id FROM transactions
		WHERE user_id = ? AND external_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query external IDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan external ID: %w", err)
		}
		recorded[id] = true
	}

	return recorded, rows.Err()
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*model.Transaction, error) {
	var txn model.Transaction
	var kind string
	var paymentDate sql.NullTime
	var externalID, batchID sql.NullString
	var accountID, parentID sql.NullInt64

	err := s.Scan(
		&txn.ID,
		&kind,
		&txn.Amount,
		&txn.Description,
		&txn.AccrualDate,
		&txn.DueDate,
		&paymentDate,
		&txn.Paid,
		&externalID,
		&batchID,
		&accountID,
		&txn.CategoryID,
		&txn.PersonID,
		&txn.UserID,
		&parentID,
	)
	if err != nil {
		return nil, err
	}

	txn.Kind = model.TransactionKind(kind)
	if paymentDate.Valid {
		t := paymentDate.Time
		txn.PaymentDate = &t
	}
	if externalID.Valid {
		txn.ExternalID = externalID.String
	}
	if batchID.Valid {
		txn.ImportBatchID = batchID.String
	}
	if accountID.Valid {
		txn.AccountID = accountID.Int64
	}
	if parentID.Valid {
		txn.ParentID = parentID.Int64
	}
	return &txn, nil
}
