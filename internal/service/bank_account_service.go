package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/websocket"
)

// BankAccountService handles bank account business logic. Account balances
// are mirrored into synthetic balance entries so the budget engine sees them
// as regular income and credit usage.
type BankAccountService struct {
	accountRepo domain.BankAccountRepository
	entryRepo   domain.EntryRepository
	publisher   websocket.EventPublisher
	now         func() time.Time
}

// NewBankAccountService creates a new BankAccountService
func NewBankAccountService(
	accountRepo domain.BankAccountRepository,
	entryRepo domain.EntryRepository,
	publisher websocket.EventPublisher,
) *BankAccountService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &BankAccountService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// BillingInfo describes the current statement window of a credit account
type BillingInfo struct {
	DaysUntilBilling int    `json:"daysUntilBilling"`
	CyclePeriod      string `json:"cyclePeriod"`
}

// Create validates and creates a bank account, seeding synthetic balance
// entries for any non-zero balance fields
func (s *BankAccountService) Create(account *domain.BankAccount) (*domain.BankAccount, error) {
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	created, err := s.accountRepo.Create(account)
	if err != nil {
		return nil, err
	}

	if err := s.syncBalanceEntries(created); err != nil {
		return nil, err
	}

	s.publisher.Publish(created.UserID, websocket.BankAccountInserted(created))
	return created, nil
}

// GetByID retrieves a bank account
func (s *BankAccountService) GetByID(userID, id uuid.UUID) (*domain.BankAccount, error) {
	return s.accountRepo.GetByID(userID, id)
}

// GetAll retrieves all of a user's bank accounts
func (s *BankAccountService) GetAll(userID uuid.UUID) ([]*domain.BankAccount, error) {
	return s.accountRepo.GetAllByUser(userID)
}

// FundsSummary aggregates available funds across all of a user's accounts
func (s *BankAccountService) FundsSummary(userID uuid.UUID) (*domain.FundsSummary, error) {
	accounts, err := s.accountRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}
	return domain.TotalAvailable(accounts), nil
}

// Update validates and updates a bank account, keeping its synthetic balance
// entries in step with the new amounts
func (s *BankAccountService) Update(account *domain.BankAccount) (*domain.BankAccount, error) {
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	updated, err := s.accountRepo.Update(account)
	if err != nil {
		return nil, err
	}

	if err := s.syncBalanceEntries(updated); err != nil {
		return nil, err
	}

	s.publisher.Publish(updated.UserID, websocket.BankAccountUpdated(updated))
	return updated, nil
}

// Delete removes a bank account and every entry linked to it
func (s *BankAccountService) Delete(userID, id uuid.UUID) error {
	account, err := s.accountRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.entryRepo.DeleteByBankAccount(userID, id); err != nil {
		return err
	}
	if err := s.accountRepo.Delete(userID, id); err != nil {
		return err
	}

	s.publisher.Publish(userID, websocket.BankAccountDeleted(account))
	return nil
}

// Billing returns the statement window info of an account as of today
func (s *BankAccountService) Billing(userID, id uuid.UUID) (*BillingInfo, error) {
	account, err := s.accountRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	today := s.now()
	return &BillingInfo{
		DaysUntilBilling: account.DaysUntilBilling(today),
		CyclePeriod:      account.BillingCyclePeriod(today),
	}, nil
}

func validateAccount(account *domain.BankAccount) error {
	account.Name = strings.TrimSpace(account.Name)
	if account.Name == "" {
		return domain.ErrNameRequired
	}
	if len(account.Name) > domain.MaxAccountNameLength {
		return domain.ErrNameTooLong
	}
	if !domain.IsValidBankAccountType(account.Type) {
		return domain.ErrInvalidAccountType
	}
	if account.DebitBalance.IsNegative() || account.CreditLimit.IsNegative() || account.CreditUsed.IsNegative() {
		return domain.ErrNegativeAmount
	}
	if account.HasCredit() {
		if account.BillingDay < 1 || account.BillingDay > 31 {
			return domain.ErrInvalidBillingDay
		}
		if account.PaymentDay < 1 || account.PaymentDay > 31 {
			return domain.ErrInvalidBillingDay
		}
	}
	return nil
}

// balanceEntrySpec maps one account field to its synthetic entry shape
type balanceEntrySpec struct {
	category    string
	entryType   domain.EntryType
	method      domain.PaymentMethod
	amount      decimal.Decimal
	description string
}

func (s *BankAccountService) balanceSpecs(account *domain.BankAccount) []balanceEntrySpec {
	var specs []balanceEntrySpec
	if account.HasDebit() {
		specs = append(specs, balanceEntrySpec{
			category:    domain.CategorySaldoConta,
			entryType:   domain.EntryTypeGanhos,
			method:      domain.PaymentMethodDebito,
			amount:      account.DebitBalance,
			description: "Saldo " + account.Name,
		})
	}
	if account.HasCredit() {
		specs = append(specs,
			balanceEntrySpec{
				category:    domain.CategoryCreditoDisponivel,
				entryType:   domain.EntryTypeGanhos,
				method:      domain.PaymentMethodCredito,
				amount:      account.CreditLimit,
				description: "Limite " + account.Name,
			},
			balanceEntrySpec{
				category:    domain.CategoryCreditoUtilizado,
				entryType:   domain.EntryTypeCustoVariado,
				method:      domain.PaymentMethodCredito,
				amount:      account.CreditUsed,
				description: "Fatura " + account.Name,
			})
	}
	return specs
}

// syncBalanceEntries upserts the account's synthetic balance entries so that
// exactly one validated entry per marker category mirrors each balance field.
// Zero amounts remove the mirror entry.
func (s *BankAccountService) syncBalanceEntries(account *domain.BankAccount) error {
	linked, err := s.entryRepo.GetAllByUser(account.UserID, &domain.EntryFilters{
		BankAccountID: &account.ID,
	})
	if err != nil {
		return err
	}

	for _, spec := range s.balanceSpecs(account) {
		var existing *domain.Entry
		for _, e := range linked {
			if e.HasCategory(spec.category) && e.PaymentMethod == spec.method && e.Type == spec.entryType {
				existing = e
				break
			}
		}

		switch {
		case existing == nil && spec.amount.IsPositive():
			accountID := account.ID
			_, err = s.entryRepo.Create(&domain.Entry{
				UserID:        account.UserID,
				Description:   spec.description,
				Amount:        spec.amount,
				Date:          s.now(),
				Categories:    []string{spec.category},
				IsPaid:        true,
				Type:          spec.entryType,
				PaymentMethod: spec.method,
				IsValidated:   true,
				Bank:          account.Name,
				BankAccountID: &accountID,
			})
		case existing != nil && spec.amount.IsZero():
			err = s.entryRepo.Delete(account.UserID, existing.ID)
		case existing != nil && !existing.Amount.Equal(spec.amount):
			existing.Amount = spec.amount
			_, err = s.entryRepo.Update(existing)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
