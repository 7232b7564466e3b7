package database

import (
	"context"
	"fmt"

	"neighborly/internal/models"
)

// CreateCategory inserts a category, ignoring duplicates.
func (db *DB) CreateCategory(ctx context.Context, category models.Category) error {
	query := `INSERT INTO categories (type) VALUES (?) ON CONFLICT(type) DO NOTHING`
	if _, err := db.ExecContext(ctx, query, category.Type); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// ListCategories returns all categories in insertion order.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT type FROM categories ORDER BY id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.Type); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}
