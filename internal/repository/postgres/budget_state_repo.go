package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/carteira/carteira-backend/internal/domain"
)

// BudgetStateRepository implements domain.BudgetStateRepository using PostgreSQL
type BudgetStateRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetStateRepository creates a new BudgetStateRepository
func NewBudgetStateRepository(pool *pgxpool.Pool) *BudgetStateRepository {
	return &BudgetStateRepository{pool: pool}
}

// Get retrieves the budget state row for a user
func (r *BudgetStateRepository) Get(userID uuid.UUID) (*domain.BudgetState, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, debit_allocation_pct, credit_allocation_pct, allocated_debit,
			allocated_credit, allocation_set, original_budget, adjusted_budget,
			excess, budget_date, last_fixed_month, updated_at
		FROM budget_states
		WHERE user_id = $1`,
		userID)

	var (
		state                                        domain.BudgetState
		debitPct, creditPct, allocDebit, allocCredit pgtype.Numeric
		originalBudget, adjustedBudget, excess       pgtype.Numeric
	)
	err := row.Scan(&state.UserID, &debitPct, &creditPct, &allocDebit, &allocCredit,
		&state.AllocationSet, &originalBudget, &adjustedBudget, &excess,
		&state.BudgetDate, &state.LastFixedMonth, &state.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetStateNotFound
		}
		return nil, err
	}

	state.DebitAllocationPct = pgNumericToDecimal(debitPct)
	state.CreditAllocationPct = pgNumericToDecimal(creditPct)
	state.AllocatedDebit = pgNumericToDecimal(allocDebit)
	state.AllocatedCredit = pgNumericToDecimal(allocCredit)
	state.OriginalBudget = pgNumericToDecimal(originalBudget)
	state.AdjustedBudget = pgNumericToDecimal(adjustedBudget)
	state.Excess = pgNumericToDecimal(excess)
	return &state, nil
}

// Save upserts the budget state row for a user
func (r *BudgetStateRepository) Save(state *domain.BudgetState) error {
	ctx := context.Background()

	numerics := make([]pgtype.Numeric, 7)
	for i, d := range []decimal.Decimal{
		state.DebitAllocationPct, state.CreditAllocationPct, state.AllocatedDebit,
		state.AllocatedCredit, state.OriginalBudget, state.AdjustedBudget, state.Excess,
	} {
		num, err := decimalToPgNumeric(d)
		if err != nil {
			return fmt.Errorf("invalid budget state value: %w", err)
		}
		numerics[i] = num
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO budget_states (user_id, debit_allocation_pct, credit_allocation_pct,
			allocated_debit, allocated_credit, allocation_set, original_budget,
			adjusted_budget, excess, budget_date, last_fixed_month)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			debit_allocation_pct = EXCLUDED.debit_allocation_pct,
			credit_allocation_pct = EXCLUDED.credit_allocation_pct,
			allocated_debit = EXCLUDED.allocated_debit,
			allocated_credit = EXCLUDED.allocated_credit,
			allocation_set = EXCLUDED.allocation_set,
			original_budget = EXCLUDED.original_budget,
			adjusted_budget = EXCLUDED.adjusted_budget,
			excess = EXCLUDED.excess,
			budget_date = EXCLUDED.budget_date,
			last_fixed_month = EXCLUDED.last_fixed_month,
			updated_at = NOW()`,
		state.UserID, numerics[0], numerics[1], numerics[2], numerics[3],
		state.AllocationSet, numerics[4], numerics[5], numerics[6],
		state.BudgetDate, state.LastFixedMonth)
	return err
}
