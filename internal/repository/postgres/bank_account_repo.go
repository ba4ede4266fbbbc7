package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carteira/carteira-backend/internal/domain"
)

// BankAccountRepository implements domain.BankAccountRepository using PostgreSQL
type BankAccountRepository struct {
	pool *pgxpool.Pool
}

// NewBankAccountRepository creates a new BankAccountRepository
func NewBankAccountRepository(pool *pgxpool.Pool) *BankAccountRepository {
	return &BankAccountRepository{pool: pool}
}

const bankAccountColumns = `id, user_id, name, icon, account_type, debit_balance,
	credit_limit, credit_used, billing_day, payment_day, created_at, updated_at`

// Create inserts a new bank account
func (r *BankAccountRepository) Create(account *domain.BankAccount) (*domain.BankAccount, error) {
	ctx := context.Background()
	debit, creditLimit, creditUsed, err := accountNumerics(account)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO bank_accounts (user_id, name, icon, account_type, debit_balance,
			credit_limit, credit_used, billing_day, payment_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+bankAccountColumns,
		account.UserID, account.Name, account.Icon, string(account.Type),
		debit, creditLimit, creditUsed, account.BillingDay, account.PaymentDay)

	return scanBankAccount(row)
}

// GetByID retrieves a bank account by its ID for a user
func (r *BankAccountRepository) GetByID(userID, id uuid.UUID) (*domain.BankAccount, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+bankAccountColumns+`
		FROM bank_accounts
		WHERE user_id = $1 AND id = $2`,
		userID, id)

	account, err := scanBankAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAllByUser retrieves all bank accounts for a user in creation order
func (r *BankAccountRepository) GetAllByUser(userID uuid.UUID) ([]*domain.BankAccount, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+bankAccountColumns+`
		FROM bank_accounts
		WHERE user_id = $1
		ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.BankAccount
	for rows.Next() {
		account, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Update updates a bank account
func (r *BankAccountRepository) Update(account *domain.BankAccount) (*domain.BankAccount, error) {
	ctx := context.Background()
	debit, creditLimit, creditUsed, err := accountNumerics(account)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE bank_accounts
		SET name = $3, icon = $4, account_type = $5, debit_balance = $6,
			credit_limit = $7, credit_used = $8, billing_day = $9, payment_day = $10,
			updated_at = NOW()
		WHERE user_id = $1 AND id = $2
		RETURNING `+bankAccountColumns,
		account.UserID, account.ID, account.Name, account.Icon, string(account.Type),
		debit, creditLimit, creditUsed, account.BillingDay, account.PaymentDay)

	updated, err := scanBankAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes a bank account
func (r *BankAccountRepository) Delete(userID, id uuid.UUID) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM bank_accounts WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func accountNumerics(account *domain.BankAccount) (debit, creditLimit, creditUsed pgtype.Numeric, err error) {
	if debit, err = decimalToPgNumeric(account.DebitBalance); err != nil {
		err = fmt.Errorf("invalid debit balance: %w", err)
		return
	}
	if creditLimit, err = decimalToPgNumeric(account.CreditLimit); err != nil {
		err = fmt.Errorf("invalid credit limit: %w", err)
		return
	}
	if creditUsed, err = decimalToPgNumeric(account.CreditUsed); err != nil {
		err = fmt.Errorf("invalid credit used: %w", err)
	}
	return
}

func scanBankAccount(row pgx.Row) (*domain.BankAccount, error) {
	var (
		account     domain.BankAccount
		accountType string
		debit       pgtype.Numeric
		creditLimit pgtype.Numeric
		creditUsed  pgtype.Numeric
	)
	err := row.Scan(&account.ID, &account.UserID, &account.Name, &account.Icon,
		&accountType, &debit, &creditLimit, &creditUsed,
		&account.BillingDay, &account.PaymentDay, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	account.Type = domain.BankAccountType(accountType)
	account.DebitBalance = pgNumericToDecimal(debit)
	account.CreditLimit = pgNumericToDecimal(creditLimit)
	account.CreditUsed = pgNumericToDecimal(creditUsed)
	return &account, nil
}
