package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/util"
	"github.com/carteira/carteira-backend/internal/websocket"
)

// EntryService handles entry business logic. Every mutation re-syncs the
// budget allocation and publishes a change-feed event.
type EntryService struct {
	entryRepo domain.EntryRepository
	stateRepo domain.BudgetStateRepository
	budget    *BudgetService
	publisher websocket.EventPublisher
	now       func() time.Time
}

// NewEntryService creates a new EntryService
func NewEntryService(
	entryRepo domain.EntryRepository,
	stateRepo domain.BudgetStateRepository,
	budget *BudgetService,
	publisher websocket.EventPublisher,
) *EntryService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &EntryService{
		entryRepo: entryRepo,
		stateRepo: stateRepo,
		budget:    budget,
		publisher: publisher,
		now:       time.Now,
	}
}

func validateEntry(entry *domain.Entry) error {
	entry.Description = strings.TrimSpace(entry.Description)
	if entry.Description == "" {
		return domain.ErrDescriptionRequired
	}
	if len(entry.Description) > domain.MaxDescriptionLength {
		return domain.ErrNameTooLong
	}
	if entry.Amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	if !domain.IsValidEntryType(entry.Type) {
		return domain.ErrInvalidEntryType
	}
	if !domain.IsValidPaymentMethod(entry.PaymentMethod) {
		return domain.ErrInvalidPayment
	}
	return nil
}

// isBalanceMarker reports whether the entry mirrors a bank account balance
// field rather than recording a one-off event
func isBalanceMarker(entry *domain.Entry) bool {
	if entry.BankAccountID == nil || entry.Type != domain.EntryTypeGanhos {
		return false
	}
	return entry.HasCategory(domain.CategorySaldoConta) ||
		entry.HasCategory(domain.CategoryCreditoDisponivel)
}

// AddEntry creates an entry. Income carrying a balance marker category for a
// linked account merges into the existing balance entry instead of creating a
// second one, so each account keeps a single running-balance row.
func (s *EntryService) AddEntry(entry *domain.Entry) (*domain.Entry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	if entry.Date.IsZero() {
		entry.Date = s.now()
	}

	if isBalanceMarker(entry) {
		merged, err := s.mergeBalanceEntry(entry)
		if err != nil {
			return nil, err
		}
		if merged != nil {
			if err := s.budget.SyncAllocatedFunds(entry.UserID); err != nil {
				return nil, err
			}
			s.publisher.Publish(entry.UserID, websocket.EntryUpdated(merged))
			return merged, nil
		}
	}

	created, err := s.entryRepo.Create(entry)
	if err != nil {
		return nil, err
	}

	if err := s.budget.SyncAllocatedFunds(created.UserID); err != nil {
		return nil, err
	}
	s.publisher.Publish(created.UserID, websocket.EntryInserted(created))
	return created, nil
}

// mergeBalanceEntry finds an existing balance entry with the same account,
// marker category and payment method and adds the new amount to it. Returns
// nil when no counterpart exists.
func (s *EntryService) mergeBalanceEntry(entry *domain.Entry) (*domain.Entry, error) {
	linked, err := s.entryRepo.GetAllByUser(entry.UserID, &domain.EntryFilters{
		BankAccountID: entry.BankAccountID,
	})
	if err != nil {
		return nil, err
	}

	marker := domain.CategorySaldoConta
	if entry.HasCategory(domain.CategoryCreditoDisponivel) {
		marker = domain.CategoryCreditoDisponivel
	}

	for _, existing := range linked {
		if existing.Type == domain.EntryTypeGanhos &&
			existing.PaymentMethod == entry.PaymentMethod &&
			existing.HasCategory(marker) {
			existing.Amount = existing.Amount.Add(entry.Amount)
			return s.entryRepo.Update(existing)
		}
	}
	return nil, nil
}

// GetByID retrieves an entry
func (s *EntryService) GetByID(userID, id uuid.UUID) (*domain.Entry, error) {
	return s.entryRepo.GetByID(userID, id)
}

// List retrieves a user's entries narrowed by filters
func (s *EntryService) List(userID uuid.UUID, filters *domain.EntryFilters) ([]*domain.Entry, error) {
	return s.entryRepo.GetAllByUser(userID, filters)
}

// UpdateEntry validates and updates an entry
func (s *EntryService) UpdateEntry(entry *domain.Entry) (*domain.Entry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	if _, err := s.entryRepo.GetByID(entry.UserID, entry.ID); err != nil {
		return nil, err
	}

	updated, err := s.entryRepo.Update(entry)
	if err != nil {
		return nil, err
	}

	if err := s.budget.SyncAllocatedFunds(updated.UserID); err != nil {
		return nil, err
	}
	s.publisher.Publish(updated.UserID, websocket.EntryUpdated(updated))
	return updated, nil
}

// RemoveEntry deletes an entry
func (s *EntryService) RemoveEntry(userID, id uuid.UUID) error {
	entry, err := s.entryRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.entryRepo.Delete(userID, id); err != nil {
		return err
	}

	if err := s.budget.SyncAllocatedFunds(userID); err != nil {
		return err
	}
	s.publisher.Publish(userID, websocket.EntryDeleted(entry))
	return nil
}

// ToggleValidation flips an entry's validated flag
func (s *EntryService) ToggleValidation(userID, id uuid.UUID) (*domain.Entry, error) {
	entry, err := s.entryRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	entry.IsValidated = !entry.IsValidated
	updated, err := s.entryRepo.Update(entry)
	if err != nil {
		return nil, err
	}

	if err := s.budget.SyncAllocatedFunds(userID); err != nil {
		return nil, err
	}
	s.publisher.Publish(userID, websocket.EntryUpdated(updated))
	return updated, nil
}

// ProcessMonthlyFixedEntries clones fixed entries into the current month,
// at most once per month per user. Clones start unpaid; expense clones are
// validated immediately while income clones wait for confirmation.
func (s *EntryService) ProcessMonthlyFixedEntries(userID uuid.UUID) ([]*domain.Entry, error) {
	state, err := s.stateRepo.Get(userID)
	if err != nil && err != domain.ErrBudgetStateNotFound {
		return nil, err
	}
	if state == nil {
		state = domain.NewBudgetState(userID)
	}

	now := s.now()
	monthKey := util.MonthKey(now)
	if state.LastFixedMonth == monthKey {
		return nil, nil
	}

	fixed, err := s.entryRepo.GetAllByUser(userID, &domain.EntryFilters{FixedOnly: true})
	if err != nil {
		return nil, err
	}

	var created []*domain.Entry
	for _, e := range fixed {
		if util.SameMonth(e.Date, now) {
			continue
		}
		if hasFixedCounterpart(fixed, e, now) {
			continue
		}

		clone := &domain.Entry{
			UserID:        e.UserID,
			Description:   e.Description,
			Amount:        e.Amount,
			Date:          util.CalculateActualDate(now.Year(), now.Month(), e.Date.Day()),
			Categories:    append([]string(nil), e.Categories...),
			IsPaid:        false,
			IsFixed:       true,
			Location:      e.Location,
			Type:          e.Type,
			PaymentMethod: e.PaymentMethod,
			IsValidated:   e.Type != domain.EntryTypeGanhos,
			Bank:          e.Bank,
			BankAccountID: e.BankAccountID,
		}
		saved, err := s.entryRepo.Create(clone)
		if err != nil {
			return nil, err
		}
		created = append(created, saved)
		s.publisher.Publish(userID, websocket.EntryInserted(saved))
	}

	state.LastFixedMonth = monthKey
	if err := s.stateRepo.Save(state); err != nil {
		return nil, err
	}

	if len(created) > 0 {
		if err := s.budget.SyncAllocatedFunds(userID); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// hasFixedCounterpart reports whether a fixed entry already has a clone in
// the given month, matched by description and type
func hasFixedCounterpart(fixed []*domain.Entry, entry *domain.Entry, month time.Time) bool {
	for _, other := range fixed {
		if other.ID == entry.ID {
			continue
		}
		if util.SameMonth(other.Date, month) &&
			other.Description == entry.Description &&
			other.Type == entry.Type {
			return true
		}
	}
	return false
}
