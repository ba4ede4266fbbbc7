package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carteira/carteira-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// ListByType retrieves a namespace's subcategories in insertion order
func (r *CategoryRepository) ListByType(userID uuid.UUID, entryType domain.EntryType) ([]*domain.Subcategory, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT label, value
		FROM categories
		WHERE user_id = $1 AND entry_type = $2
		ORDER BY created_at`,
		userID, string(entryType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Subcategory
	for rows.Next() {
		var c domain.Subcategory
		if err := rows.Scan(&c.Label, &c.Value); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// Add inserts a subcategory into a namespace
func (r *CategoryRepository) Add(userID uuid.UUID, entryType domain.EntryType, category *domain.Subcategory) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (user_id, entry_type, label, value)
		VALUES ($1, $2, $3, $4)`,
		userID, string(entryType), category.Label, category.Value)
	return err
}

// Remove deletes a subcategory by value. Absent values are a no-op.
func (r *CategoryRepository) Remove(userID uuid.UUID, entryType domain.EntryType, value string) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		DELETE FROM categories
		WHERE user_id = $1 AND entry_type = $2 AND value = $3`,
		userID, string(entryType), value)
	return err
}
