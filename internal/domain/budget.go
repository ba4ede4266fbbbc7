package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NetAmount holds the per-payment-method net allocatable amount:
// income minus all expense types, floored at zero.
type NetAmount struct {
	Debito  decimal.Decimal `json:"debito"`
	Credito decimal.Decimal `json:"credito"`
}

// AllocatedFunds is the user-chosen slice of available funds committed to the
// current month; the remainder stays in reserve.
type AllocatedFunds struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
	Total  decimal.Decimal `json:"total"`
}

// BankTotal accumulates validated income per bank label, split by payment method.
type BankTotal struct {
	Debito  decimal.Decimal `json:"debito"`
	Credito decimal.Decimal `json:"credito"`
}

// PeriodBudget holds derived daily/weekly/monthly budget figures.
type PeriodBudget struct {
	Daily   decimal.Decimal `json:"daily"`
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
}

// BudgetState is the per-user mutable budget record: the spending allocation
// split, the allocated funds, the daily-budget snapshot used for excess
// carry-over, and the last-processed markers for the calendar boundary jobs.
// One row per user, persisted like any other entity.
type BudgetState struct {
	UserID              uuid.UUID       `json:"userId"`
	DebitAllocationPct  decimal.Decimal `json:"debitAllocationPct"`
	CreditAllocationPct decimal.Decimal `json:"creditAllocationPct"`
	AllocatedDebit      decimal.Decimal `json:"allocatedDebit"`
	AllocatedCredit     decimal.Decimal `json:"allocatedCredit"`
	// AllocationSet records whether the user ever chose an explicit split.
	// Until then sync keeps pushing derived values into the allocation.
	AllocationSet bool `json:"allocationSet"`
	// OriginalBudget, AdjustedBudget, Excess and BudgetDate together form the
	// daily-budget snapshot: the budget that applied as of BudgetDate.
	// AdjustedBudget is the only derived figure allowed to go negative, as a
	// deficit signal.
	OriginalBudget decimal.Decimal `json:"originalBudget"`
	AdjustedBudget decimal.Decimal `json:"adjustedBudget"`
	Excess         decimal.Decimal `json:"excess"`
	BudgetDate     time.Time       `json:"budgetDate"`
	// LastFixedMonth is the "YYYY-MM" marker guarding monthly regeneration of
	// fixed entries.
	LastFixedMonth string    `json:"lastFixedMonth"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DefaultAllocationPct is the initial debit/credit split.
var DefaultAllocationPct = decimal.NewFromInt(50)

// NewBudgetState returns a zero-valued state with the default 50/50 split.
func NewBudgetState(userID uuid.UUID) *BudgetState {
	return &BudgetState{
		UserID:              userID,
		DebitAllocationPct:  DefaultAllocationPct,
		CreditAllocationPct: DefaultAllocationPct,
		AllocatedDebit:      decimal.Zero,
		AllocatedCredit:     decimal.Zero,
		OriginalBudget:      decimal.Zero,
		AdjustedBudget:      decimal.Zero,
		Excess:              decimal.Zero,
	}
}

type BudgetStateRepository interface {
	// Get returns the state for the user, or ErrBudgetStateNotFound.
	Get(userID uuid.UUID) (*BudgetState, error)
	// Save upserts the state.
	Save(state *BudgetState) error
}
