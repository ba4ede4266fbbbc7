package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BankAccountType string

const (
	BankAccountTypeDebit  BankAccountType = "debit"
	BankAccountTypeCredit BankAccountType = "credit"
	BankAccountTypeBoth   BankAccountType = "both"
)

// IsValidBankAccountType reports whether t is a known account type.
func IsValidBankAccountType(t BankAccountType) bool {
	return t == BankAccountTypeDebit || t == BankAccountTypeCredit || t == BankAccountTypeBoth
}

// BankAccount is a user's bank account. All monetary fields are required
// non-negative decimals that default to zero at construction; clamping to
// zero happens here rather than at call sites.
type BankAccount struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	Name         string          `json:"name"`
	Icon         string          `json:"icon"`
	Type         BankAccountType `json:"type"`
	DebitBalance decimal.Decimal `json:"debitBalance"`
	CreditLimit  decimal.Decimal `json:"creditLimit"`
	CreditUsed   decimal.Decimal `json:"creditUsed"`
	BillingDay   int             `json:"billingDay"`
	PaymentDay   int             `json:"paymentDay"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// HasDebit reports whether the account holds a debit balance.
func (a *BankAccount) HasDebit() bool {
	return a.Type == BankAccountTypeDebit || a.Type == BankAccountTypeBoth
}

// HasCredit reports whether the account has a credit line.
func (a *BankAccount) HasCredit() bool {
	return a.Type == BankAccountTypeCredit || a.Type == BankAccountTypeBoth
}

// AvailableCredit returns max(0, creditLimit - creditUsed). Debit-only
// accounts have no credit line and always return zero.
func (a *BankAccount) AvailableCredit() decimal.Decimal {
	if !a.HasCredit() {
		return decimal.Zero
	}
	available := a.CreditLimit.Sub(a.CreditUsed)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// FundsSummary aggregates available funds across accounts.
type FundsSummary struct {
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	TotalAvailable decimal.Decimal `json:"totalAvailable"`
}

// TotalAvailable sums debit balances and available credit over all accounts.
func TotalAvailable(accounts []*BankAccount) *FundsSummary {
	summary := &FundsSummary{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, account := range accounts {
		if account.HasDebit() {
			summary.TotalDebit = summary.TotalDebit.Add(account.DebitBalance)
		}
		if account.HasCredit() {
			summary.TotalCredit = summary.TotalCredit.Add(account.AvailableCredit())
		}
	}
	summary.TotalAvailable = summary.TotalDebit.Add(summary.TotalCredit)
	return summary
}

// DaysUntilBilling returns the number of days (ceiling) until the next
// occurrence of the account's billing day. If the billing day has already
// passed this month the next occurrence is next month, rolling over
// December into January.
func (a *BankAccount) DaysUntilBilling(today time.Time) int {
	if a.BillingDay == 0 {
		return 0
	}

	year, month, day := today.Date()
	billing := time.Date(year, month, a.BillingDay, 0, 0, 0, 0, today.Location())
	if day > a.BillingDay {
		billing = time.Date(year, month+1, a.BillingDay, 0, 0, 0, 0, today.Location())
	}

	diff := billing.Sub(today)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	if days < 0 {
		days = 0
	}
	return days
}

// BillingCyclePeriod formats the current statement window as "DD/MM - DD/MM".
// On or after the billing day the cycle runs from this month's billing day to
// the day before next month's; before it, from the previous month's billing
// day to the day before this month's. Month and year rollover are handled in
// both directions.
func (a *BankAccount) BillingCyclePeriod(today time.Time) string {
	if a.BillingDay == 0 {
		return "N/A"
	}

	year, month, _ := today.Date()
	var cycleStart, cycleEnd time.Time
	if today.Day() >= a.BillingDay {
		cycleStart = time.Date(year, month, a.BillingDay, 0, 0, 0, 0, today.Location())
		cycleEnd = time.Date(year, month+1, a.BillingDay-1, 0, 0, 0, 0, today.Location())
	} else {
		cycleStart = time.Date(year, month-1, a.BillingDay, 0, 0, 0, 0, today.Location())
		cycleEnd = time.Date(year, month, a.BillingDay-1, 0, 0, 0, 0, today.Location())
	}

	return fmt.Sprintf("%02d/%02d - %02d/%02d",
		cycleStart.Day(), int(cycleStart.Month()),
		cycleEnd.Day(), int(cycleEnd.Month()))
}

// DaysInCurrentMonth returns the number of days in today's month.
func DaysInCurrentMonth(today time.Time) int {
	year, month, _ := today.Date()
	return time.Date(year, month+1, 0, 0, 0, 0, 0, today.Location()).Day()
}

// RemainingDaysInMonth returns the days left in today's month, including today.
func RemainingDaysInMonth(today time.Time) int {
	return DaysInCurrentMonth(today) - today.Day() + 1
}

type BankAccountRepository interface {
	Create(account *BankAccount) (*BankAccount, error)
	GetByID(userID, id uuid.UUID) (*BankAccount, error)
	GetAllByUser(userID uuid.UUID) ([]*BankAccount, error)
	Update(account *BankAccount) (*BankAccount, error)
	Delete(userID, id uuid.UUID) error
}
