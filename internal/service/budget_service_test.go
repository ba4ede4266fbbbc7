package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/testutil"
)

type budgetFixture struct {
	svc         *BudgetService
	entryRepo   *testutil.MockEntryRepository
	accountRepo *testutil.MockBankAccountRepository
	stateRepo   *testutil.MockBudgetStateRepository
	publisher   *testutil.MockPublisher
	userID      uuid.UUID
}

func newBudgetFixture() *budgetFixture {
	entryRepo := testutil.NewMockEntryRepository()
	accountRepo := testutil.NewMockBankAccountRepository()
	stateRepo := testutil.NewMockBudgetStateRepository()
	publisher := testutil.NewMockPublisher()
	svc := NewBudgetService(entryRepo, accountRepo, stateRepo, publisher)
	return &budgetFixture{
		svc:         svc,
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		stateRepo:   stateRepo,
		publisher:   publisher,
		userID:      uuid.New(),
	}
}

func (f *budgetFixture) addEntry(entryType domain.EntryType, method domain.PaymentMethod, amount int64, validated bool) *domain.Entry {
	return f.entryRepo.AddEntry(&domain.Entry{
		UserID:        f.userID,
		Description:   "test entry",
		Amount:        decimal.NewFromInt(amount),
		Date:          time.Now(),
		Type:          entryType,
		PaymentMethod: method,
		IsValidated:   validated,
	})
}

func TestTotalByType_OnlyCountsValidated(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 1000, true)
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 500, false)

	total, err := f.svc.TotalByType(f.userID, domain.EntryTypeGanhos, nil)
	if err != nil {
		t.Fatalf("TotalByType failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected 1000, got %s", total)
	}
}

func TestTotalByType_FiltersByPaymentMethod(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 1000, true)
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodCredito, 400, true)

	credito := domain.PaymentMethodCredito
	total, err := f.svc.TotalByType(f.userID, domain.EntryTypeGanhos, &credito)
	if err != nil {
		t.Fatalf("TotalByType failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected 400, got %s", total)
	}
}

func TestEntriesByType_IncludesUnvalidated(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGastos, domain.PaymentMethodDebito, 50, true)
	f.addEntry(domain.EntryTypeGastos, domain.PaymentMethodDebito, 25, false)
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 1000, true)

	entries, err := f.svc.EntriesByType(f.userID, domain.EntryTypeGastos)
	if err != nil {
		t.Fatalf("EntriesByType failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both gastos entries listed, got %d", len(entries))
	}
}

func TestTotalByType_RejectsUnknownType(t *testing.T) {
	f := newBudgetFixture()
	_, err := f.svc.TotalByType(f.userID, domain.EntryType("bogus"), nil)
	if err != domain.ErrInvalidEntryType {
		t.Errorf("expected ErrInvalidEntryType, got %v", err)
	}
}

func TestNetAmount_SplitsByPaymentMethod(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 1000, true)
	f.addEntry(domain.EntryTypeCustoFixo, domain.PaymentMethodDebito, 300, true)
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodCredito, 500, true)
	f.addEntry(domain.EntryTypeGastos, domain.PaymentMethodCredito, 100, true)

	net, err := f.svc.NetAmount(f.userID)
	if err != nil {
		t.Fatalf("NetAmount failed: %v", err)
	}
	if !net.Debito.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected debito 700, got %s", net.Debito)
	}
	if !net.Credito.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected credito 400, got %s", net.Credito)
	}
}

func TestNetAmount_FlooredAtZero(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 100, true)
	f.addEntry(domain.EntryTypeGastos, domain.PaymentMethodDebito, 300, true)

	net, err := f.svc.NetAmount(f.userID)
	if err != nil {
		t.Fatalf("NetAmount failed: %v", err)
	}
	if !net.Debito.IsZero() {
		t.Errorf("expected debito floored to zero, got %s", net.Debito)
	}
}

func TestAllocatedFunds_InitializesToHalf(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 1000, true)
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodCredito, 400, true)

	allocated, err := f.svc.AllocatedFunds(f.userID)
	if err != nil {
		t.Fatalf("AllocatedFunds failed: %v", err)
	}
	if !allocated.Debit.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected debit 500, got %s", allocated.Debit)
	}
	if !allocated.Credit.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected credit 200, got %s", allocated.Credit)
	}
	if !allocated.Total.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected total 700, got %s", allocated.Total)
	}

	state, err := f.stateRepo.Get(f.userID)
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if state.AllocationSet {
		t.Error("derived allocation should not mark AllocationSet")
	}
}

func TestAllocatedFunds_ClampsStaleAllocation(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 1000, true)

	if _, err := f.svc.SetAllocatedFunds(f.userID, decimal.NewFromInt(800), decimal.Zero); err != nil {
		t.Fatalf("SetAllocatedFunds failed: %v", err)
	}

	// Income shrinks below the stored allocation
	f.addEntry(domain.EntryTypeGastos, domain.PaymentMethodDebito, 500, true)

	allocated, err := f.svc.AllocatedFunds(f.userID)
	if err != nil {
		t.Fatalf("AllocatedFunds failed: %v", err)
	}
	if !allocated.Debit.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected allocation clamped to 500, got %s", allocated.Debit)
	}
}

func TestSetAllocatedFunds_RejectsNegative(t *testing.T) {
	f := newBudgetFixture()
	_, err := f.svc.SetAllocatedFunds(f.userID, decimal.NewFromInt(-1), decimal.Zero)
	if err != domain.ErrNegativeAmount {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestSetAllocatedFunds_ClampsToAvailability(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 300, true)

	allocated, err := f.svc.SetAllocatedFunds(f.userID, decimal.NewFromInt(1000), decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("SetAllocatedFunds failed: %v", err)
	}
	if !allocated.Debit.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected debit clamped to 300, got %s", allocated.Debit)
	}
	if !allocated.Credit.IsZero() {
		t.Errorf("expected credit clamped to 0, got %s", allocated.Credit)
	}

	state, _ := f.stateRepo.Get(f.userID)
	if !state.AllocationSet {
		t.Error("explicit allocation should mark AllocationSet")
	}
}

func TestSetSpendingAllocation_RequiresSumOfHundred(t *testing.T) {
	f := newBudgetFixture()
	_, err := f.svc.SetSpendingAllocation(f.userID, decimal.NewFromInt(60), decimal.NewFromInt(50))
	if err != domain.ErrInvalidAllocation {
		t.Errorf("expected ErrInvalidAllocation, got %v", err)
	}
	_, err = f.svc.SetSpendingAllocation(f.userID, decimal.NewFromInt(120), decimal.NewFromInt(-20))
	if err != domain.ErrInvalidAllocation {
		t.Errorf("expected ErrInvalidAllocation for negative pct, got %v", err)
	}
}

func TestSetSpendingAllocation_RederivesAllocation(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 1000, true)
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodCredito, 1000, true)

	if _, err := f.svc.SetSpendingAllocation(f.userID, decimal.NewFromInt(70), decimal.NewFromInt(30)); err != nil {
		t.Fatalf("SetSpendingAllocation failed: %v", err)
	}

	state, _ := f.stateRepo.Get(f.userID)
	if !state.AllocatedDebit.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected allocated debit 700, got %s", state.AllocatedDebit)
	}
	if !state.AllocatedCredit.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected allocated credit 300, got %s", state.AllocatedCredit)
	}
}

func TestBankTotals_GroupsByLabel(t *testing.T) {
	f := newBudgetFixture()
	nubank := f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 1000, true)
	nubank.Bank = "nubank"
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodCredito, 400, true)
	f.addEntry(domain.EntryTypeGastos, domain.PaymentMethodDebito, 50, true)

	totals, err := f.svc.BankTotals(f.userID)
	if err != nil {
		t.Fatalf("BankTotals failed: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 bank groups, got %d", len(totals))
	}
	if !totals["nubank"].Debito.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected nubank debito 1000, got %s", totals["nubank"].Debito)
	}
	if !totals[domain.DefaultBankLabel].Credito.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected default credito 400, got %s", totals[domain.DefaultBankLabel].Credito)
	}
}

func TestDailyBudget_SpreadsOverWindow(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 3000, true)

	daily, err := f.svc.DailyBudget(f.userID)
	if err != nil {
		t.Fatalf("DailyBudget failed: %v", err)
	}
	// 50% of 3000 over 30 days
	if !daily.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected daily 50, got %s", daily)
	}
}

func TestDailyBudget_IgnoresExplicitAllocation(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 3000, true)

	if _, err := f.svc.SetAllocatedFunds(f.userID, decimal.NewFromInt(300), decimal.Zero); err != nil {
		t.Fatalf("SetAllocatedFunds failed: %v", err)
	}

	daily, err := f.svc.DailyBudget(f.userID)
	if err != nil {
		t.Fatalf("DailyBudget failed: %v", err)
	}
	// The baseline stays on the percentage split of the nets
	if !daily.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected daily 50, got %s", daily)
	}
}

func TestPeriodBudgets(t *testing.T) {
	f := newBudgetFixture()
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 3000, true)

	budgets, err := f.svc.PeriodBudgets(f.userID)
	if err != nil {
		t.Fatalf("PeriodBudgets failed: %v", err)
	}
	if !budgets.Daily.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected daily 50, got %s", budgets.Daily)
	}
	if !budgets.Weekly.Equal(decimal.NewFromInt(350)) {
		t.Errorf("expected weekly 350, got %s", budgets.Weekly)
	}
	if !budgets.Monthly.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected monthly 1500, got %s", budgets.Monthly)
	}
}

func TestBankBasedBudget_SpreadsAllocatedFunds(t *testing.T) {
	f := newBudgetFixture()
	// 30 days remain in December including the 2nd
	f.svc.now = func() time.Time { return time.Date(2026, 12, 2, 12, 0, 0, 0, time.UTC) }

	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 3000, true)
	f.accountRepo.AddAccount(&domain.BankAccount{
		UserID:       f.userID,
		Name:         "Conta",
		Type:         domain.BankAccountTypeDebit,
		DebitBalance: decimal.NewFromInt(3000),
	})
	if _, err := f.svc.SetAllocatedFunds(f.userID, decimal.NewFromInt(300), decimal.Zero); err != nil {
		t.Fatalf("SetAllocatedFunds failed: %v", err)
	}

	budget, err := f.svc.BankBasedBudget(f.userID)
	if err != nil {
		t.Fatalf("BankBasedBudget failed: %v", err)
	}
	// Allocated total, not the account funds, drives the spread
	if !budget.Daily.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected daily 10, got %s", budget.Daily)
	}
	if !budget.Weekly.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected weekly 70, got %s", budget.Weekly)
	}
	if !budget.Monthly.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected monthly 300, got %s", budget.Monthly)
	}
}

func TestBankBasedBudget_FallsBackToAccountFunds(t *testing.T) {
	f := newBudgetFixture()
	f.svc.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }

	f.accountRepo.AddAccount(&domain.BankAccount{
		UserID:       f.userID,
		Name:         "Conta",
		Type:         domain.BankAccountTypeDebit,
		DebitBalance: decimal.NewFromInt(1700),
	})

	// Nothing allocated; 17 days remain in January including the 15th
	budget, err := f.svc.BankBasedBudget(f.userID)
	if err != nil {
		t.Fatalf("BankBasedBudget failed: %v", err)
	}
	if !budget.Daily.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected daily 100, got %s", budget.Daily)
	}
	if !budget.Monthly.Equal(decimal.NewFromInt(1700)) {
		t.Errorf("expected monthly 1700, got %s", budget.Monthly)
	}
}

func TestBankBasedBudget_LastDayGetsEverything(t *testing.T) {
	f := newBudgetFixture()
	f.svc.now = func() time.Time { return time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC) }

	f.accountRepo.AddAccount(&domain.BankAccount{
		UserID:       f.userID,
		Name:         "Conta",
		Type:         domain.BankAccountTypeDebit,
		DebitBalance: decimal.NewFromInt(420),
	})

	budget, err := f.svc.BankBasedBudget(f.userID)
	if err != nil {
		t.Fatalf("BankBasedBudget failed: %v", err)
	}
	if !budget.Daily.Equal(decimal.NewFromInt(420)) {
		t.Errorf("expected full 420 on last day, got %s", budget.Daily)
	}
	// Fewer than 7 days remain, so the weekly figure is the monthly one
	if !budget.Weekly.Equal(decimal.NewFromInt(420)) {
		t.Errorf("expected weekly 420, got %s", budget.Weekly)
	}
}

// addSpendOn records validated spending on the credit method so the debit
// allocation base (and with it the daily budget) stays put across days
func (f *budgetFixture) addSpendOn(day time.Time, amount int64) {
	f.entryRepo.AddEntry(&domain.Entry{
		UserID:        f.userID,
		Description:   "spend",
		Amount:        decimal.NewFromInt(amount),
		Date:          day,
		Type:          domain.EntryTypeGastos,
		PaymentMethod: domain.PaymentMethodCredito,
		IsValidated:   true,
	})
}

func TestRolloverDailyExcess_SameDayIsNoOp(t *testing.T) {
	f := newBudgetFixture()
	today := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return today }

	state := domain.NewBudgetState(f.userID)
	state.BudgetDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	state.Excess = decimal.NewFromInt(25)
	if err := f.stateRepo.Save(state); err != nil {
		t.Fatal(err)
	}

	f.addSpendOn(today.AddDate(0, 0, -1), 9999)

	result, err := f.svc.RolloverDailyExcess(f.userID)
	if err != nil {
		t.Fatalf("RolloverDailyExcess failed: %v", err)
	}
	if !result.Excess.Equal(decimal.NewFromInt(25)) {
		t.Errorf("same-day rollover must not change excess, got %s", result.Excess)
	}
}

func TestRolloverDailyExcess_AccumulatesOverspend(t *testing.T) {
	f := newBudgetFixture()
	today := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return today }

	// Daily budget of 50 from 3000 income at the default 50% split
	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 3000, true)

	state := domain.NewBudgetState(f.userID)
	state.BudgetDate = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	state.OriginalBudget = decimal.NewFromInt(50)
	if err := f.stateRepo.Save(state); err != nil {
		t.Fatal(err)
	}

	f.addSpendOn(today.AddDate(0, 0, -1), 80)

	result, err := f.svc.RolloverDailyExcess(f.userID)
	if err != nil {
		t.Fatalf("RolloverDailyExcess failed: %v", err)
	}
	if !result.Excess.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected excess 30, got %s", result.Excess)
	}
	if !result.OriginalBudget.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected original budget 50, got %s", result.OriginalBudget)
	}
	if !result.AdjustedBudget.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected adjusted budget 20, got %s", result.AdjustedBudget)
	}
	if !result.BudgetDate.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected budget date advanced to today, got %s", result.BudgetDate)
	}
}

func TestRolloverDailyExcess_ClearsWithinEpsilon(t *testing.T) {
	f := newBudgetFixture()
	today := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return today }

	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 3000, true)

	state := domain.NewBudgetState(f.userID)
	state.BudgetDate = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	state.OriginalBudget = decimal.NewFromInt(50)
	state.Excess = decimal.NewFromInt(30)
	if err := f.stateRepo.Save(state); err != nil {
		t.Fatal(err)
	}

	// Adjusted budget yesterday was 20; spending exactly 20 clears the excess
	f.addSpendOn(today.AddDate(0, 0, -1), 20)

	result, err := f.svc.RolloverDailyExcess(f.userID)
	if err != nil {
		t.Fatalf("RolloverDailyExcess failed: %v", err)
	}
	if !result.Excess.IsZero() {
		t.Errorf("expected excess cleared, got %s", result.Excess)
	}
	if !result.AdjustedBudget.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected adjusted budget back to 50, got %s", result.AdjustedBudget)
	}
}

func TestRolloverDailyExcess_UnderspendKeepsExcess(t *testing.T) {
	f := newBudgetFixture()
	today := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return today }

	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 3000, true)

	state := domain.NewBudgetState(f.userID)
	state.BudgetDate = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	state.OriginalBudget = decimal.NewFromInt(50)
	state.Excess = decimal.NewFromInt(30)
	if err := f.stateRepo.Save(state); err != nil {
		t.Fatal(err)
	}

	// Spending 5 against an adjusted budget of 20 neither clears nor grows excess
	f.addSpendOn(today.AddDate(0, 0, -1), 5)

	result, err := f.svc.RolloverDailyExcess(f.userID)
	if err != nil {
		t.Fatalf("RolloverDailyExcess failed: %v", err)
	}
	if !result.Excess.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected excess kept at 30, got %s", result.Excess)
	}
}

func TestSyncAllocatedFunds_ReconcilesAccounts(t *testing.T) {
	f := newBudgetFixture()

	account := f.accountRepo.AddAccount(&domain.BankAccount{
		UserID:       f.userID,
		Name:         "Conta",
		Type:         domain.BankAccountTypeBoth,
		DebitBalance: decimal.NewFromInt(100),
		CreditLimit:  decimal.NewFromInt(500),
	})

	accountID := account.ID
	f.entryRepo.AddEntry(&domain.Entry{
		UserID:        f.userID,
		Description:   "Saldo Conta",
		Amount:        decimal.NewFromInt(250),
		Date:          time.Now(),
		Categories:    []string{domain.CategorySaldoConta},
		Type:          domain.EntryTypeGanhos,
		PaymentMethod: domain.PaymentMethodDebito,
		IsValidated:   true,
		BankAccountID: &accountID,
	})
	f.entryRepo.AddEntry(&domain.Entry{
		UserID:        f.userID,
		Description:   "Fatura Conta",
		Amount:        decimal.NewFromInt(75),
		Date:          time.Now(),
		Categories:    []string{domain.CategoryCreditoUtilizado},
		Type:          domain.EntryTypeCustoVariado,
		PaymentMethod: domain.PaymentMethodCredito,
		IsValidated:   true,
		BankAccountID: &accountID,
	})

	if err := f.svc.SyncAllocatedFunds(f.userID); err != nil {
		t.Fatalf("SyncAllocatedFunds failed: %v", err)
	}

	updated, err := f.accountRepo.GetByID(f.userID, accountID)
	if err != nil {
		t.Fatal(err)
	}
	if !updated.DebitBalance.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected debit balance 250, got %s", updated.DebitBalance)
	}
	if !updated.CreditUsed.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected credit used 75, got %s", updated.CreditUsed)
	}
	// No credito-disponivel entry, so the limit resyncs to zero
	if !updated.CreditLimit.IsZero() {
		t.Errorf("expected credit limit 0, got %s", updated.CreditLimit)
	}
}

// TestBudgetLifecycle walks the engine through two day boundaries: overspend
// on day one accumulates excess, then landing exactly on the shrunken budget
// clears it the next morning.
func TestBudgetLifecycle(t *testing.T) {
	f := newBudgetFixture()
	current := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return current }

	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 3000, true)
	if err := f.svc.SyncAllocatedFunds(f.userID); err != nil {
		t.Fatalf("SyncAllocatedFunds failed: %v", err)
	}

	daily, err := f.svc.DailyBudget(f.userID)
	if err != nil {
		t.Fatal(err)
	}
	if !daily.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected daily budget 50, got %s", daily)
	}

	// Day 1: spend 80 against a budget of 50
	f.addSpendOn(current, 80)

	// Day 2 morning
	current = current.AddDate(0, 0, 1)
	state, err := f.svc.RolloverDailyExcess(f.userID)
	if err != nil {
		t.Fatalf("rollover failed: %v", err)
	}
	if !state.Excess.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected excess 30 after overspend, got %s", state.Excess)
	}

	adjusted, err := f.svc.AdjustedDailyBudget(f.userID)
	if err != nil {
		t.Fatal(err)
	}
	if !adjusted.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected adjusted budget 20, got %s", adjusted)
	}

	// Running the rollover again the same day must change nothing
	again, err := f.svc.RolloverDailyExcess(f.userID)
	if err != nil {
		t.Fatal(err)
	}
	if !again.Excess.Equal(state.Excess) {
		t.Fatal("second same-day rollover changed state")
	}

	// Day 2: spend exactly the adjusted budget
	f.addSpendOn(current, 20)

	// Day 3 morning
	current = current.AddDate(0, 0, 1)
	state, err = f.svc.RolloverDailyExcess(f.userID)
	if err != nil {
		t.Fatalf("rollover failed: %v", err)
	}
	if !state.Excess.IsZero() {
		t.Errorf("expected excess cleared after on-budget day, got %s", state.Excess)
	}
	if !state.AdjustedBudget.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected adjusted budget restored to 50, got %s", state.AdjustedBudget)
	}
}

func TestSummary(t *testing.T) {
	f := newBudgetFixture()
	f.svc.now = func() time.Time { return time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC) }

	f.addEntry(domain.EntryTypeGanhos, domain.PaymentMethodDebito, 3000, true)
	f.entryRepo.AddEntry(&domain.Entry{
		UserID:        f.userID,
		Description:   "almoço",
		Amount:        decimal.NewFromInt(40),
		Date:          time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
		Type:          domain.EntryTypeGastos,
		PaymentMethod: domain.PaymentMethodDebito,
		IsValidated:   true,
	})

	summary, err := f.svc.Summary(f.userID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !summary.Available.Equal(decimal.NewFromInt(2960)) {
		t.Errorf("expected available 2960, got %s", summary.Available)
	}
	if !summary.TodayTotal.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected today total 40, got %s", summary.TodayTotal)
	}
	if !summary.WeekTotal.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected week total 40, got %s", summary.WeekTotal)
	}
	if !summary.MonthTotal.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected month total 40, got %s", summary.MonthTotal)
	}
	if summary.Allocated == nil || summary.Budgets == nil || summary.Net == nil {
		t.Fatal("summary missing sections")
	}
}
