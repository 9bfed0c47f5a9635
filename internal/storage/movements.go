package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rodsouza/minhasfinancas/internal/model"
)

// SaveMovement persists a ledger entry and fills in its ID. Movements are
// immutable after creation; there is deliberately no update path.
func (s *SQLiteStorage) SaveMovement(ctx context.Context, movement *model.BankMovement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMovement(movement); err != nil {
		return err
	}
	return s.saveMovementTx(ctx, s.db, movement)
}

func (s *SQLiteStorage) saveMovementTx(ctx context.Context, q queryable, movement *model.BankMovement) error {
	var transactionID any
	if movement.TransactionID > 0 {
		transactionID = movement.TransactionID
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO movements (date, direction, amount, memo, account_id, transaction_id, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		movement.Date,
		string(movement.Direction),
		movement.Amount,
		movement.Memo,
		movement.AccountID,
		transactionID,
		movement.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get movement ID: %w", err)
	}
	movement.ID = id
	return nil
}

// ListMovements returns the ledger entries of an account, newest first.
func (s *SQLiteStorage) ListMovements(ctx context.Context, accountID, userID int64) ([]model.BankMovement, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listMovementsTx(ctx, s.db, accountID, userID)
}

func (s *SQLiteStorage) listMovementsTx(ctx context.Context, q queryable, accountID, userID int64) ([]model.BankMovement, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, date, direction, amount, memo, account_id, transaction_id, user_id
		FROM movements
		WHERE account_id = ? AND user_id = ?
		ORDER BY date DESC, id DESC
	`, accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var movements []model.BankMovement
	for rows.Next() {
		var movement model.BankMovement
		var direction string
		var transactionID sql.NullInt64
		if err := rows.Scan(
			&movement.ID,
			&movement.Date,
			&direction,
			&movement.Amount,
			&movement.Memo,
			&movement.AccountID,
			&transactionID,
			&movement.UserID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movement.Direction = model.MovementDirection(direction)
		if transactionID.Valid {
			movement.TransactionID = transactionID.Int64
		}
		movements = append(movements, movement)
	}

	return movements, rows.Err()
}
