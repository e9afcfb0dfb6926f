package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niharm/paisatrail/internal/common"
	"github.com/niharm/paisatrail/internal/model"
)

// GetCategories returns all active categories.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, type, is_active, created_at
		FROM categories
		WHERE is_active = 1
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var description sql.NullString
		var typeStr string
		if err := rows.Scan(&cat.ID, &cat.Name, &description, &typeStr, &cat.IsActive, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Description = description.String
		cat.Type = model.CategoryType(typeStr)
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("Retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns a category by its name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var cat model.Category
	var description sql.NullString
	var typeStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, is_active, created_at
		FROM categories
		WHERE name = ? AND is_active = 1
	`, name).Scan(&cat.ID, &cat.Name, &description, &typeStr, &cat.IsActive, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	cat.Description = description.String
	cat.Type = model.CategoryType(typeStr)

	return &cat, nil
}

// GetCategoryByID returns a category by its id.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var cat model.Category
	var description sql.NullString
	var typeStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, is_active, created_at
		FROM categories
		WHERE id = ?
	`, id).Scan(&cat.ID, &cat.Name, &description, &typeStr, &cat.IsActive, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	cat.Description = description.String
	cat.Type = model.CategoryType(typeStr)

	return &cat, nil
}

// CreateCategory creates a new active category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, description, type)
		VALUES (?, ?, ?)
	`, name, description, string(categoryType))
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read category id: %w", err)
	}

	slog.Info("Created category", "name", name, "type", categoryType)
	return s.GetCategoryByID(ctx, int(id))
}
