package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/model"
)

// CreatePerson persists a new person and fills in its ID.
func (s *SQLiteStorage) CreatePerson(ctx context.Context, person *model.Person) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePerson(person); err != nil {
		return err
	}
	return s.createPersonTx(ctx, s.db, person)
}

func (s *SQLiteStorage) createPersonTx(ctx context.Context, q queryable, person *model.Person) error {
	result, err := q.ExecContext(ctx, `
		INSERT INTO persons (name, user_id) VALUES (?, ?)
	`, person.Name, person.UserID)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get person ID: %w", err)
	}
	person.ID = id
	return nil
}

// GetPerson retrieves a person by ID, scoped to its owner.
func (s *SQLiteStorage) GetPerson(ctx context.Context, id, userID int64) (*model.Person, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getPersonTx(ctx, s.db, id, userID)
}

func (s *SQLiteStorage) getPersonTx(ctx context.Context, q queryable, id, userID int64) (*model.Person, error) {
	var person model.Person

	err := q.QueryRowContext(ctx, `
		SELECT id, name, user_id FROM persons
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&person.ID, &person.Name, &person.UserID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("person %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &person, nil
}
