package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carteira/carteira-backend/internal/domain"
)

// EntryRepository implements domain.EntryRepository using PostgreSQL
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `id, user_id, description, amount, date, categories, is_paid, is_fixed,
	location, entry_type, payment_method, is_validated, bank, bank_account_id, created_at, updated_at`

// Create inserts a new entry
func (r *EntryRepository) Create(entry *domain.Entry) (*domain.Entry, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(entry.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO entries (user_id, description, amount, date, categories, is_paid, is_fixed,
			location, entry_type, payment_method, is_validated, bank, bank_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+entryColumns,
		entry.UserID, entry.Description, amount, entry.Date, entry.Categories,
		entry.IsPaid, entry.IsFixed, entry.Location, string(entry.Type),
		string(entry.PaymentMethod), entry.IsValidated, entry.Bank, entry.BankAccountID)

	return scanEntry(row)
}

// GetByID retrieves an entry by its ID for a user
func (r *EntryRepository) GetByID(userID, id uuid.UUID) (*domain.Entry, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE user_id = $1 AND id = $2`,
		userID, id)

	entry, err := scanEntry(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// GetAllByUser retrieves a user's entries, newest first, narrowed by filters
func (r *EntryRepository) GetAllByUser(userID uuid.UUID, filters *domain.EntryFilters) ([]*domain.Entry, error) {
	ctx := context.Background()

	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = $1`
	args := []any{userID}

	if filters != nil {
		var conditions []string
		add := func(condition string, value any) {
			args = append(args, value)
			conditions = append(conditions, fmt.Sprintf(condition, len(args)))
		}

		if filters.Type != nil {
			add("entry_type = $%d", string(*filters.Type))
		}
		if filters.PaymentMethod != nil {
			add("payment_method = $%d", string(*filters.PaymentMethod))
		}
		if filters.BankAccountID != nil {
			add("bank_account_id = $%d", *filters.BankAccountID)
		}
		if filters.StartDate != nil {
			add("date >= $%d", *filters.StartDate)
		}
		if filters.EndDate != nil {
			add("date < $%d", *filters.EndDate)
		}
		if filters.ValidatedOnly {
			conditions = append(conditions, "is_validated = TRUE")
		}
		if filters.FixedOnly {
			conditions = append(conditions, "is_fixed = TRUE")
		}
		if len(conditions) > 0 {
			query += " AND " + strings.Join(conditions, " AND ")
		}
	}
	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Update updates an entry's mutable fields
func (r *EntryRepository) Update(entry *domain.Entry) (*domain.Entry, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(entry.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE entries
		SET description = $3, amount = $4, date = $5, categories = $6, is_paid = $7,
			is_fixed = $8, location = $9, entry_type = $10, payment_method = $11,
			is_validated = $12, bank = $13, bank_account_id = $14, updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING `+entryColumns,
		entry.UserID, entry.ID, entry.Description, amount, entry.Date, entry.Categories,
		entry.IsPaid, entry.IsFixed, entry.Location, string(entry.Type),
		string(entry.PaymentMethod), entry.IsValidated, entry.Bank, entry.BankAccountID)

	updated, err := scanEntry(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes an entry
func (r *EntryRepository) Delete(userID, id uuid.UUID) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM entries WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// DeleteByBankAccount removes every entry linked to a bank account
func (r *EntryRepository) DeleteByBankAccount(userID, bankAccountID uuid.UUID) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx,
		`DELETE FROM entries WHERE user_id = $1 AND bank_account_id = $2`,
		userID, bankAccountID)
	return err
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		entry         domain.Entry
		amount        pgtype.Numeric
		entryType     string
		paymentMethod string
	)
	err := row.Scan(&entry.ID, &entry.UserID, &entry.Description, &amount, &entry.Date,
		&entry.Categories, &entry.IsPaid, &entry.IsFixed, &entry.Location, &entryType,
		&paymentMethod, &entry.IsValidated, &entry.Bank, &entry.BankAccountID,
		&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	entry.Amount = pgNumericToDecimal(amount)
	entry.Type = domain.EntryType(entryType)
	entry.PaymentMethod = domain.PaymentMethod(paymentMethod)
	return &entry, nil
}
