package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/util"
	"github.com/carteira/carteira-backend/internal/websocket"
)

// budgetWindowDays is the fixed month approximation used for the canonical
// daily budget. Calendar-aware numbers come from BankBasedBudget instead.
const budgetWindowDays = 30

// excessEpsilon is the tolerance for treating yesterday's spend as on-budget
var excessEpsilon = decimal.NewFromFloat(0.01)

// BudgetService derives budgets from validated entries and keeps the per-user
// allocation state in step with them
type BudgetService struct {
	entryRepo   domain.EntryRepository
	accountRepo domain.BankAccountRepository
	stateRepo   domain.BudgetStateRepository
	publisher   websocket.EventPublisher
	now         func() time.Time
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	entryRepo domain.EntryRepository,
	accountRepo domain.BankAccountRepository,
	stateRepo domain.BudgetStateRepository,
	publisher websocket.EventPublisher,
) *BudgetService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &BudgetService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		stateRepo:   stateRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// getState loads the user's budget state, creating the default row on first use
func (s *BudgetService) getState(userID uuid.UUID) (*domain.BudgetState, error) {
	state, err := s.stateRepo.Get(userID)
	if err == domain.ErrBudgetStateNotFound {
		state = domain.NewBudgetState(userID)
		state.BudgetDate = util.StartOfDay(s.now())
		if err := s.stateRepo.Save(state); err != nil {
			return nil, err
		}
		return state, nil
	}
	return state, err
}

func (s *BudgetService) saveState(state *domain.BudgetState) error {
	if err := s.stateRepo.Save(state); err != nil {
		return err
	}
	s.publisher.Publish(state.UserID, websocket.BudgetStateUpdated(state))
	return nil
}

// validatedEntries returns the user's validated entries, optionally narrowed
// to one type
func (s *BudgetService) validatedEntries(userID uuid.UUID, entryType *domain.EntryType) ([]*domain.Entry, error) {
	return s.entryRepo.GetAllByUser(userID, &domain.EntryFilters{
		Type:          entryType,
		ValidatedOnly: true,
	})
}

// TotalByType sums validated entries of one type, optionally narrowed to a
// payment method
func (s *BudgetService) TotalByType(userID uuid.UUID, entryType domain.EntryType, method *domain.PaymentMethod) (decimal.Decimal, error) {
	if !domain.IsValidEntryType(entryType) {
		return decimal.Zero, domain.ErrInvalidEntryType
	}

	entries, err := s.validatedEntries(userID, &entryType)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range entries {
		if method != nil && e.PaymentMethod != *method {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total, nil
}

// EntriesByType lists the user's entries of one type, validated or not. This
// is the listing/editing surface, so unvalidated entries stay visible.
func (s *BudgetService) EntriesByType(userID uuid.UUID, entryType domain.EntryType) ([]*domain.Entry, error) {
	if !domain.IsValidEntryType(entryType) {
		return nil, domain.ErrInvalidEntryType
	}
	return s.entryRepo.GetAllByUser(userID, &domain.EntryFilters{Type: &entryType})
}

// NetAmount computes income minus all expenses per payment method, floored
// at zero
func (s *BudgetService) NetAmount(userID uuid.UUID) (*domain.NetAmount, error) {
	entries, err := s.validatedEntries(userID, nil)
	if err != nil {
		return nil, err
	}
	return netFromEntries(entries), nil
}

func netFromEntries(entries []*domain.Entry) *domain.NetAmount {
	debito := decimal.Zero
	credito := decimal.Zero
	for _, e := range entries {
		amount := e.Amount
		if e.Type != domain.EntryTypeGanhos {
			amount = amount.Neg()
		}
		if e.PaymentMethod == domain.PaymentMethodCredito {
			credito = credito.Add(amount)
		} else {
			debito = debito.Add(amount)
		}
	}
	if debito.IsNegative() {
		debito = decimal.Zero
	}
	if credito.IsNegative() {
		credito = decimal.Zero
	}
	return &domain.NetAmount{Debito: debito, Credito: credito}
}

// AvailableFunds is the total available across the user's bank accounts:
// debit balances plus unspent credit.
func (s *BudgetService) AvailableFunds(userID uuid.UUID) (decimal.Decimal, error) {
	accounts, err := s.accountRepo.GetAllByUser(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.TotalAvailable(accounts).TotalAvailable, nil
}

// AllocatedFunds returns the user's allocated funds. On first read the
// allocation is initialized to half of each net amount and persisted; stored
// values are always clamped to current availability so stale allocations never
// exceed what exists.
func (s *BudgetService) AllocatedFunds(userID uuid.UUID) (*domain.AllocatedFunds, error) {
	state, err := s.getState(userID)
	if err != nil {
		return nil, err
	}
	net, err := s.NetAmount(userID)
	if err != nil {
		return nil, err
	}

	changed := false
	if !state.AllocationSet {
		debit := net.Debito.Mul(state.DebitAllocationPct).Div(decimal.NewFromInt(100))
		credit := net.Credito.Mul(state.CreditAllocationPct).Div(decimal.NewFromInt(100))
		if !state.AllocatedDebit.Equal(debit) || !state.AllocatedCredit.Equal(credit) {
			state.AllocatedDebit = debit
			state.AllocatedCredit = credit
			changed = true
		}
	}

	if state.AllocatedDebit.GreaterThan(net.Debito) {
		state.AllocatedDebit = net.Debito
		changed = true
	}
	if state.AllocatedCredit.GreaterThan(net.Credito) {
		state.AllocatedCredit = net.Credito
		changed = true
	}

	if changed {
		if err := s.saveState(state); err != nil {
			return nil, err
		}
	}

	return &domain.AllocatedFunds{
		Debit:  state.AllocatedDebit,
		Credit: state.AllocatedCredit,
		Total:  state.AllocatedDebit.Add(state.AllocatedCredit),
	}, nil
}

// SetAllocatedFunds stores an explicit allocation, clamped to availability
func (s *BudgetService) SetAllocatedFunds(userID uuid.UUID, debit, credit decimal.Decimal) (*domain.AllocatedFunds, error) {
	if debit.IsNegative() || credit.IsNegative() {
		return nil, domain.ErrNegativeAmount
	}

	state, err := s.getState(userID)
	if err != nil {
		return nil, err
	}
	net, err := s.NetAmount(userID)
	if err != nil {
		return nil, err
	}

	if debit.GreaterThan(net.Debito) {
		debit = net.Debito
	}
	if credit.GreaterThan(net.Credito) {
		credit = net.Credito
	}

	state.AllocatedDebit = debit
	state.AllocatedCredit = credit
	state.AllocationSet = true
	if err := s.saveState(state); err != nil {
		return nil, err
	}

	return &domain.AllocatedFunds{
		Debit:  debit,
		Credit: credit,
		Total:  debit.Add(credit),
	}, nil
}

// SpendingAllocation is the percentage split between debit and credit funds
type SpendingAllocation struct {
	DebitPct  decimal.Decimal `json:"debitPct"`
	CreditPct decimal.Decimal `json:"creditPct"`
}

// GetSpendingAllocation returns the current percentage split
func (s *BudgetService) GetSpendingAllocation(userID uuid.UUID) (*SpendingAllocation, error) {
	state, err := s.getState(userID)
	if err != nil {
		return nil, err
	}
	return &SpendingAllocation{
		DebitPct:  state.DebitAllocationPct,
		CreditPct: state.CreditAllocationPct,
	}, nil
}

// SetSpendingAllocation stores a new percentage split. The percentages must
// be non-negative and sum to 100.
func (s *BudgetService) SetSpendingAllocation(userID uuid.UUID, debitPct, creditPct decimal.Decimal) (*SpendingAllocation, error) {
	if debitPct.IsNegative() || creditPct.IsNegative() {
		return nil, domain.ErrInvalidAllocation
	}
	if !debitPct.Add(creditPct).Equal(decimal.NewFromInt(100)) {
		return nil, domain.ErrInvalidAllocation
	}

	state, err := s.getState(userID)
	if err != nil {
		return nil, err
	}

	state.DebitAllocationPct = debitPct
	state.CreditAllocationPct = creditPct
	if !state.AllocationSet {
		// Re-derive allocated funds from the new split
		net, err := s.NetAmount(userID)
		if err != nil {
			return nil, err
		}
		state.AllocatedDebit = net.Debito.Mul(debitPct).Div(decimal.NewFromInt(100))
		state.AllocatedCredit = net.Credito.Mul(creditPct).Div(decimal.NewFromInt(100))
	}
	if err := s.saveState(state); err != nil {
		return nil, err
	}

	return &SpendingAllocation{DebitPct: debitPct, CreditPct: creditPct}, nil
}

// BankTotals groups validated income by bank label, split by payment method.
// Entries without a bank label group under "default".
func (s *BudgetService) BankTotals(userID uuid.UUID) (map[string]*domain.BankTotal, error) {
	ganhos := domain.EntryTypeGanhos
	entries, err := s.validatedEntries(userID, &ganhos)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*domain.BankTotal)
	for _, e := range entries {
		label := e.BankLabel()
		bt, ok := totals[label]
		if !ok {
			bt = &domain.BankTotal{Debito: decimal.Zero, Credito: decimal.Zero}
			totals[label] = bt
		}
		if e.PaymentMethod == domain.PaymentMethodCredito {
			bt.Credito = bt.Credito.Add(e.Amount)
		} else {
			bt.Debito = bt.Debito.Add(e.Amount)
		}
	}
	return totals, nil
}

// spendBetween sums validated gastos entries with start <= date < end
func (s *BudgetService) spendBetween(userID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	gastos := domain.EntryTypeGastos
	entries, err := s.entryRepo.GetAllByUser(userID, &domain.EntryFilters{
		Type:          &gastos,
		ValidatedOnly: true,
		StartDate:     &start,
		EndDate:       &end,
	})
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total, nil
}

// TodayTotal sums today's validated spending
func (s *BudgetService) TodayTotal(userID uuid.UUID) (decimal.Decimal, error) {
	start := util.StartOfDay(s.now())
	return s.spendBetween(userID, start, start.AddDate(0, 0, 1))
}

// WeekTotal sums validated spending over the trailing 7 days including today
func (s *BudgetService) WeekTotal(userID uuid.UUID) (decimal.Decimal, error) {
	end := util.StartOfDay(s.now()).AddDate(0, 0, 1)
	return s.spendBetween(userID, end.AddDate(0, 0, -7), end)
}

// MonthTotal sums validated spending in the current calendar month
func (s *BudgetService) MonthTotal(userID uuid.UUID) (decimal.Decimal, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.spendBetween(userID, start, start.AddDate(0, 1, 0))
}

// DailyBudget applies the allocation percentages to the per-method nets and
// spreads the result over the 30-day window. It is deliberately independent
// of any explicitly allocated funds so the baseline stays stable.
func (s *BudgetService) DailyBudget(userID uuid.UUID) (decimal.Decimal, error) {
	state, err := s.getState(userID)
	if err != nil {
		return decimal.Zero, err
	}
	net, err := s.NetAmount(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return dailyBudgetFromNet(net, state), nil
}

func dailyBudgetFromNet(net *domain.NetAmount, state *domain.BudgetState) decimal.Decimal {
	base := net.Debito.Mul(state.DebitAllocationPct).
		Add(net.Credito.Mul(state.CreditAllocationPct)).
		Div(decimal.NewFromInt(100))
	return base.Div(decimal.NewFromInt(budgetWindowDays))
}

// AdjustedDailyBudget is the daily budget minus accumulated excess. It is the
// only budget figure allowed to go negative.
func (s *BudgetService) AdjustedDailyBudget(userID uuid.UUID) (decimal.Decimal, error) {
	daily, err := s.DailyBudget(userID)
	if err != nil {
		return decimal.Zero, err
	}
	state, err := s.getState(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return daily.Sub(state.Excess), nil
}

// PeriodBudgets derives daily, weekly and monthly budgets from the adjusted
// daily figure
func (s *BudgetService) PeriodBudgets(userID uuid.UUID) (*domain.PeriodBudget, error) {
	adjusted, err := s.AdjustedDailyBudget(userID)
	if err != nil {
		return nil, err
	}
	return &domain.PeriodBudget{
		Daily:   adjusted,
		Weekly:  adjusted.Mul(decimal.NewFromInt(7)),
		Monthly: adjusted.Mul(decimal.NewFromInt(budgetWindowDays)),
	}, nil
}

// BankBasedBudget spreads the allocated funds over the remaining days of the
// calendar month instead of the 30-day approximation. With nothing allocated
// yet it falls back to the funds available across bank accounts. When one day
// or less remains, the whole amount is today's budget; the weekly figure
// collapses to the monthly one once fewer than seven days remain.
func (s *BudgetService) BankBasedBudget(userID uuid.UUID) (*domain.PeriodBudget, error) {
	allocated, err := s.AllocatedFunds(userID)
	if err != nil {
		return nil, err
	}

	total := allocated.Total
	if total.IsZero() {
		total, err = s.AvailableFunds(userID)
		if err != nil {
			return nil, err
		}
	}

	remaining := domain.RemainingDaysInMonth(s.now())
	daily := total
	if remaining > 1 {
		daily = total.Div(decimal.NewFromInt(int64(remaining)))
	}
	weekly := total
	if remaining >= 7 {
		weekly = daily.Mul(decimal.NewFromInt(7))
	}

	return &domain.PeriodBudget{Daily: daily, Weekly: weekly, Monthly: total}, nil
}

// RolloverDailyExcess runs the once-per-day excess carry-over. Overspending
// yesterday beyond the adjusted budget accumulates into Excess; landing
// within a cent of the budget clears it. Calling it again on the same day is
// a no-op.
func (s *BudgetService) RolloverDailyExcess(userID uuid.UUID) (*domain.BudgetState, error) {
	state, err := s.getState(userID)
	if err != nil {
		return nil, err
	}

	today := util.StartOfDay(s.now())
	if util.SameDay(state.BudgetDate, today) {
		return state, nil
	}

	yesterday := today.AddDate(0, 0, -1)
	spend, err := s.spendBetween(userID, yesterday, today)
	if err != nil {
		return nil, err
	}

	yesterdayAdjusted := state.OriginalBudget.Sub(state.Excess)
	diff := spend.Sub(yesterdayAdjusted)

	if diff.Abs().LessThan(excessEpsilon) {
		state.Excess = decimal.Zero
	} else if diff.IsPositive() {
		state.Excess = state.Excess.Add(diff)
	}

	daily, err := s.DailyBudget(userID)
	if err != nil {
		return nil, err
	}
	state.OriginalBudget = daily
	state.AdjustedBudget = daily.Sub(state.Excess)
	state.BudgetDate = today

	if err := s.saveState(state); err != nil {
		return nil, err
	}
	return state, nil
}

// SyncAllocatedFunds reconciles bank accounts from their synthetic balance
// entries and refreshes the allocation after any entry mutation. Accounts are
// written back only when a balance actually moved.
func (s *BudgetService) SyncAllocatedFunds(userID uuid.UUID) error {
	accounts, err := s.accountRepo.GetAllByUser(userID)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		linked, err := s.entryRepo.GetAllByUser(userID, &domain.EntryFilters{
			BankAccountID: &account.ID,
			ValidatedOnly: true,
		})
		if err != nil {
			return err
		}

		debit := decimal.Zero
		creditLimit := decimal.Zero
		creditUsed := decimal.Zero
		for _, e := range linked {
			switch {
			case e.Type == domain.EntryTypeGanhos && e.PaymentMethod == domain.PaymentMethodDebito:
				debit = debit.Add(e.Amount)
			case e.Type == domain.EntryTypeGanhos && e.PaymentMethod == domain.PaymentMethodCredito:
				creditLimit = creditLimit.Add(e.Amount)
			case e.Type == domain.EntryTypeCustoVariado && e.PaymentMethod == domain.PaymentMethodCredito:
				creditUsed = creditUsed.Add(e.Amount)
			}
		}

		changed := false
		if account.HasDebit() && !account.DebitBalance.Equal(debit) {
			account.DebitBalance = debit
			changed = true
		}
		if account.HasCredit() && !account.CreditLimit.Equal(creditLimit) {
			account.CreditLimit = creditLimit
			changed = true
		}
		if account.HasCredit() && !account.CreditUsed.Equal(creditUsed) {
			account.CreditUsed = creditUsed
			changed = true
		}
		if changed {
			if _, err := s.accountRepo.Update(account); err != nil {
				return err
			}
			s.publisher.Publish(userID, websocket.BankAccountUpdated(account))
		}
	}

	// Refresh the allocation against the new entry set
	state, err := s.getState(userID)
	if err != nil {
		return err
	}
	net, err := s.NetAmount(userID)
	if err != nil {
		return err
	}

	if !state.AllocationSet {
		state.AllocatedDebit = net.Debito.Mul(state.DebitAllocationPct).Div(decimal.NewFromInt(100))
		state.AllocatedCredit = net.Credito.Mul(state.CreditAllocationPct).Div(decimal.NewFromInt(100))
	} else {
		if state.AllocatedDebit.GreaterThan(net.Debito) {
			state.AllocatedDebit = net.Debito
		}
		if state.AllocatedCredit.GreaterThan(net.Credito) {
			state.AllocatedCredit = net.Credito
		}
	}

	// Keep the daily snapshot's base in step without touching Excess
	state.OriginalBudget = dailyBudgetFromNet(net, state)
	state.AdjustedBudget = state.OriginalBudget.Sub(state.Excess)

	return s.saveState(state)
}

// Summary bundles the derived budget figures for the API
type BudgetSummary struct {
	Net           *domain.NetAmount            `json:"net"`
	Available     decimal.Decimal              `json:"available"`
	Allocated     *domain.AllocatedFunds       `json:"allocated"`
	BankTotals    map[string]*domain.BankTotal `json:"bankTotals"`
	TodayTotal    decimal.Decimal              `json:"todayTotal"`
	WeekTotal     decimal.Decimal              `json:"weekTotal"`
	MonthTotal    decimal.Decimal              `json:"monthTotal"`
	Budgets       *domain.PeriodBudget         `json:"budgets"`
	OriginalDaily decimal.Decimal              `json:"originalDaily"`
	Excess        decimal.Decimal              `json:"excess"`
}

// Summary assembles the full budget overview
func (s *BudgetService) Summary(userID uuid.UUID) (*BudgetSummary, error) {
	net, err := s.NetAmount(userID)
	if err != nil {
		return nil, err
	}
	allocated, err := s.AllocatedFunds(userID)
	if err != nil {
		return nil, err
	}
	bankTotals, err := s.BankTotals(userID)
	if err != nil {
		return nil, err
	}
	today, err := s.TodayTotal(userID)
	if err != nil {
		return nil, err
	}
	week, err := s.WeekTotal(userID)
	if err != nil {
		return nil, err
	}
	month, err := s.MonthTotal(userID)
	if err != nil {
		return nil, err
	}
	budgets, err := s.PeriodBudgets(userID)
	if err != nil {
		return nil, err
	}
	state, err := s.getState(userID)
	if err != nil {
		return nil, err
	}

	return &BudgetSummary{
		Net:           net,
		Available:     net.Debito.Add(net.Credito),
		Allocated:     allocated,
		BankTotals:    bankTotals,
		TodayTotal:    today,
		WeekTotal:     week,
		MonthTotal:    month,
		Budgets:       budgets,
		OriginalDaily: state.OriginalBudget,
		Excess:        state.Excess,
	}, nil
}
