package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/model"
)

// CreateCategory persists a new chart-of-accounts node and fills in its ID.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	return s.createCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, q queryable, category *model.Category) error {
	var parent any
	if category.ParentID > 0 {
		parent = category.ParentID
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO categories (description, kind, parent_id, user_id)
		VALUES (?, ?, ?, ?)
	`, category.Description, string(category.Kind), parent, category.UserID)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category ID: %w", err)
	}
	category.ID = id
	return nil
}

// GetCategory retrieves a category by ID, scoped to its owner.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id, userID int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryTx(ctx, s.db, id, userID)
}

func (s *SQLiteStorage) getCategoryTx(ctx context.Context, q queryable, id, userID int64) (*model.Category, error) {
	var category model.Category
	var kind string
	var parent sql.NullInt64

	err := q.QueryRowContext(ctx, `
		SELECT id, description, kind, parent_id, user_id
		FROM categories
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(
		&category.ID,
		&category.Description,
		&kind,
		&parent,
		&category.UserID,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category.Kind = model.CategoryKind(kind)
	if parent.Valid {
		category.ParentID = parent.Int64
	}
	return &category, nil
}

// ListCategories returns all of a user's categories ordered by description.
func (s *SQLiteStorage) ListCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listCategoriesTx(ctx, s.db, userID)
}

func (s *SQLiteStorage) listCategoriesTx(ctx context.Context, q queryable, userID int64) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, description, kind, parent_id, user_id
		FROM categories
		WHERE user_id = ?
		ORDER BY description
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var category model.Category
		var kind string
		var parent sql.NullInt64
		if err := rows.Scan(
			&category.ID,
			&category.Description,
			&kind,
			&parent,
			&category.UserID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		category.Kind = model.CategoryKind(kind)
		if parent.Valid {
			category.ParentID = parent.Int64
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// CountChildCategories returns how many categories reference id as parent.
// A category may only receive postings when this count is zero.
func (s *SQLiteStorage) CountChildCategories(ctx context.Context, id, userID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.countChildCategoriesTx(ctx, s.db, id, userID)
}

func (s *SQLiteStorage) countChildCategoriesTx(ctx context.Context, q queryable, id, userID int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM categories
		WHERE parent_id = ? AND user_id = ?
	`, id, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count child categories: %w", err)
	}
	return count, nil
}
