package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carteira/carteira-backend/internal/domain"
)

// ReceiptRepository implements domain.ReceiptRepository using PostgreSQL
type ReceiptRepository struct {
	pool *pgxpool.Pool
}

// NewReceiptRepository creates a new ReceiptRepository
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

// Save upserts the receipt record for an entry
func (r *ReceiptRepository) Save(receipt *domain.Receipt) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO receipts (entry_id, user_id, original_path, thumbnail_path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (entry_id) DO UPDATE SET
			original_path = EXCLUDED.original_path,
			thumbnail_path = EXCLUDED.thumbnail_path`,
		receipt.EntryID, receipt.UserID, receipt.OriginalPath, receipt.ThumbnailPath)
	return err
}

// GetByEntry retrieves the receipt record for an entry
func (r *ReceiptRepository) GetByEntry(userID, entryID uuid.UUID) (*domain.Receipt, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT entry_id, user_id, original_path, thumbnail_path, created_at
		FROM receipts
		WHERE user_id = $1 AND entry_id = $2`,
		userID, entryID)

	var receipt domain.Receipt
	err := row.Scan(&receipt.EntryID, &receipt.UserID, &receipt.OriginalPath,
		&receipt.ThumbnailPath, &receipt.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// Delete removes the receipt record for an entry
func (r *ReceiptRepository) Delete(userID, entryID uuid.UUID) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM receipts WHERE user_id = $1 AND entry_id = $2`, userID, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReceiptNotFound
	}
	return nil
}
