package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/websocket"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	ByEmail  map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(user *domain.User) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		ByEmail: make(map[string]*domain.User),
		ByID:    make(map[uuid.UUID]*domain.User),
	}
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	if _, ok := m.ByEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	m.ByEmail[user.Email] = user
	m.ByID[user.ID] = user
	return user, nil
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	if user, ok := m.ByEmail[email]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.ByEmail[user.Email] = user
	m.ByID[user.ID] = user
}

// MockEntryRepository is a mock implementation of domain.EntryRepository
type MockEntryRepository struct {
	Entries  map[uuid.UUID]*domain.Entry
	CreateFn func(entry *domain.Entry) (*domain.Entry, error)
	UpdateFn func(entry *domain.Entry) (*domain.Entry, error)
	DeleteFn func(userID, id uuid.UUID) error
}

// NewMockEntryRepository creates a new MockEntryRepository
func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		Entries: make(map[uuid.UUID]*domain.Entry),
	}
}

// Create creates a new entry
func (m *MockEntryRepository) Create(entry *domain.Entry) (*domain.Entry, error) {
	if m.CreateFn != nil {
		return m.CreateFn(entry)
	}
	clone := *entry
	clone.ID = uuid.New()
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	m.Entries[clone.ID] = &clone
	return &clone, nil
}

// GetByID retrieves an entry by ID
func (m *MockEntryRepository) GetByID(userID, id uuid.UUID) (*domain.Entry, error) {
	entry, ok := m.Entries[id]
	if !ok || entry.UserID != userID {
		return nil, domain.ErrEntryNotFound
	}
	clone := *entry
	return &clone, nil
}

// GetAllByUser retrieves a user's entries narrowed by filters
func (m *MockEntryRepository) GetAllByUser(userID uuid.UUID, filters *domain.EntryFilters) ([]*domain.Entry, error) {
	var result []*domain.Entry
	for _, entry := range m.Entries {
		if entry.UserID != userID {
			continue
		}
		if !matchesFilters(entry, filters) {
			continue
		}
		clone := *entry
		result = append(result, &clone)
	}
	return result, nil
}

func matchesFilters(entry *domain.Entry, filters *domain.EntryFilters) bool {
	if filters == nil {
		return true
	}
	if filters.Type != nil && entry.Type != *filters.Type {
		return false
	}
	if filters.PaymentMethod != nil && entry.PaymentMethod != *filters.PaymentMethod {
		return false
	}
	if filters.BankAccountID != nil {
		if entry.BankAccountID == nil || *entry.BankAccountID != *filters.BankAccountID {
			return false
		}
	}
	if filters.ValidatedOnly && !entry.IsValidated {
		return false
	}
	if filters.FixedOnly && !entry.IsFixed {
		return false
	}
	if filters.StartDate != nil && entry.Date.Before(*filters.StartDate) {
		return false
	}
	if filters.EndDate != nil && !entry.Date.Before(*filters.EndDate) {
		return false
	}
	return true
}

// Update updates an entry
func (m *MockEntryRepository) Update(entry *domain.Entry) (*domain.Entry, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(entry)
	}
	existing, ok := m.Entries[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return nil, domain.ErrEntryNotFound
	}
	clone := *entry
	clone.UpdatedAt = time.Now()
	m.Entries[entry.ID] = &clone
	result := clone
	return &result, nil
}

// Delete removes an entry
func (m *MockEntryRepository) Delete(userID, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(userID, id)
	}
	entry, ok := m.Entries[id]
	if !ok || entry.UserID != userID {
		return domain.ErrEntryNotFound
	}
	delete(m.Entries, id)
	return nil
}

// DeleteByBankAccount removes every entry linked to a bank account
func (m *MockEntryRepository) DeleteByBankAccount(userID, bankAccountID uuid.UUID) error {
	for id, entry := range m.Entries {
		if entry.UserID == userID && entry.BankAccountID != nil && *entry.BankAccountID == bankAccountID {
			delete(m.Entries, id)
		}
	}
	return nil
}

// AddEntry adds an entry directly to the mock (helper for tests)
func (m *MockEntryRepository) AddEntry(entry *domain.Entry) *domain.Entry {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	m.Entries[entry.ID] = entry
	return entry
}

// MockBankAccountRepository is a mock implementation of domain.BankAccountRepository
type MockBankAccountRepository struct {
	Accounts map[uuid.UUID]*domain.BankAccount
	CreateFn func(account *domain.BankAccount) (*domain.BankAccount, error)
	UpdateFn func(account *domain.BankAccount) (*domain.BankAccount, error)
}

// NewMockBankAccountRepository creates a new MockBankAccountRepository
func NewMockBankAccountRepository() *MockBankAccountRepository {
	return &MockBankAccountRepository{
		Accounts: make(map[uuid.UUID]*domain.BankAccount),
	}
}

// Create creates a new bank account
func (m *MockBankAccountRepository) Create(account *domain.BankAccount) (*domain.BankAccount, error) {
	if m.CreateFn != nil {
		return m.CreateFn(account)
	}
	clone := *account
	clone.ID = uuid.New()
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	m.Accounts[clone.ID] = &clone
	return &clone, nil
}

// GetByID retrieves a bank account by ID
func (m *MockBankAccountRepository) GetByID(userID, id uuid.UUID) (*domain.BankAccount, error) {
	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	clone := *account
	return &clone, nil
}

// GetAllByUser retrieves all bank accounts for a user
func (m *MockBankAccountRepository) GetAllByUser(userID uuid.UUID) ([]*domain.BankAccount, error) {
	var result []*domain.BankAccount
	for _, account := range m.Accounts {
		if account.UserID == userID {
			clone := *account
			result = append(result, &clone)
		}
	}
	return result, nil
}

// Update updates a bank account
func (m *MockBankAccountRepository) Update(account *domain.BankAccount) (*domain.BankAccount, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(account)
	}
	existing, ok := m.Accounts[account.ID]
	if !ok || existing.UserID != account.UserID {
		return nil, domain.ErrAccountNotFound
	}
	clone := *account
	clone.UpdatedAt = time.Now()
	m.Accounts[account.ID] = &clone
	result := clone
	return &result, nil
}

// Delete removes a bank account
func (m *MockBankAccountRepository) Delete(userID, id uuid.UUID) error {
	account, ok := m.Accounts[id]
	if !ok || account.UserID != userID {
		return domain.ErrAccountNotFound
	}
	delete(m.Accounts, id)
	return nil
}

// AddAccount adds an account directly to the mock (helper for tests)
func (m *MockBankAccountRepository) AddAccount(account *domain.BankAccount) *domain.BankAccount {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	m.Accounts[account.ID] = account
	return account
}

// categoryKey scopes a namespace to one user
type categoryKey struct {
	UserID    uuid.UUID
	EntryType domain.EntryType
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[categoryKey][]*domain.Subcategory
	AddFn      func(userID uuid.UUID, entryType domain.EntryType, category *domain.Subcategory) error
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[categoryKey][]*domain.Subcategory),
	}
}

// ListByType returns the subcategories of one namespace
func (m *MockCategoryRepository) ListByType(userID uuid.UUID, entryType domain.EntryType) ([]*domain.Subcategory, error) {
	return m.Categories[categoryKey{userID, entryType}], nil
}

// Add appends a subcategory to a namespace
func (m *MockCategoryRepository) Add(userID uuid.UUID, entryType domain.EntryType, category *domain.Subcategory) error {
	if m.AddFn != nil {
		return m.AddFn(userID, entryType, category)
	}
	key := categoryKey{userID, entryType}
	m.Categories[key] = append(m.Categories[key], category)
	return nil
}

// Remove deletes a subcategory by value
func (m *MockCategoryRepository) Remove(userID uuid.UUID, entryType domain.EntryType, value string) error {
	key := categoryKey{userID, entryType}
	categories := m.Categories[key]
	for i, c := range categories {
		if c.Value == value {
			m.Categories[key] = append(categories[:i], categories[i+1:]...)
			return nil
		}
	}
	return nil
}

// MockBudgetStateRepository is a mock implementation of domain.BudgetStateRepository
type MockBudgetStateRepository struct {
	States map[uuid.UUID]*domain.BudgetState
	SaveFn func(state *domain.BudgetState) error
}

// NewMockBudgetStateRepository creates a new MockBudgetStateRepository
func NewMockBudgetStateRepository() *MockBudgetStateRepository {
	return &MockBudgetStateRepository{
		States: make(map[uuid.UUID]*domain.BudgetState),
	}
}

// Get retrieves the budget state for a user
func (m *MockBudgetStateRepository) Get(userID uuid.UUID) (*domain.BudgetState, error) {
	if state, ok := m.States[userID]; ok {
		clone := *state
		return &clone, nil
	}
	return nil, domain.ErrBudgetStateNotFound
}

// Save upserts the budget state
func (m *MockBudgetStateRepository) Save(state *domain.BudgetState) error {
	if m.SaveFn != nil {
		return m.SaveFn(state)
	}
	clone := *state
	clone.UpdatedAt = time.Now()
	m.States[state.UserID] = &clone
	return nil
}

// MockReceiptRepository is a mock implementation of domain.ReceiptRepository
type MockReceiptRepository struct {
	Receipts map[uuid.UUID]*domain.Receipt
}

// NewMockReceiptRepository creates a new MockReceiptRepository
func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{
		Receipts: make(map[uuid.UUID]*domain.Receipt),
	}
}

// Save upserts a receipt record
func (m *MockReceiptRepository) Save(receipt *domain.Receipt) error {
	clone := *receipt
	clone.CreatedAt = time.Now()
	m.Receipts[receipt.EntryID] = &clone
	return nil
}

// GetByEntry retrieves a receipt by entry ID
func (m *MockReceiptRepository) GetByEntry(userID, entryID uuid.UUID) (*domain.Receipt, error) {
	receipt, ok := m.Receipts[entryID]
	if !ok || receipt.UserID != userID {
		return nil, domain.ErrReceiptNotFound
	}
	clone := *receipt
	return &clone, nil
}

// Delete removes a receipt record
func (m *MockReceiptRepository) Delete(userID, entryID uuid.UUID) error {
	receipt, ok := m.Receipts[entryID]
	if !ok || receipt.UserID != userID {
		return domain.ErrReceiptNotFound
	}
	delete(m.Receipts, entryID)
	return nil
}

// MockObjectStore is an in-memory implementation of storage.ReceiptRepository
type MockObjectStore struct {
	Objects  map[string][]byte
	UploadFn func(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
}

// NewMockObjectStore creates a new MockObjectStore
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Objects: make(map[string][]byte),
	}
}

// Upload stores the object in memory
func (m *MockObjectStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadFn != nil {
		return m.UploadFn(ctx, objectPath, data, contentType, size)
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.Objects[objectPath] = buf
	return objectPath, nil
}

// Delete removes an object
func (m *MockObjectStore) Delete(ctx context.Context, objectPath string) error {
	delete(m.Objects, objectPath)
	return nil
}

// GeneratePresignedURL returns a fake presigned URL
func (m *MockObjectStore) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if _, ok := m.Objects[objectPath]; !ok {
		return "", fmt.Errorf("object not found: %s", objectPath)
	}
	return "https://storage.test/" + objectPath + "?signed=1", nil
}

// MockPublisher records published events for assertions
type MockPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent pairs an event with the user it was sent to
type PublishedEvent struct {
	UserID uuid.UUID
	Event  websocket.Event
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the event
func (m *MockPublisher) Publish(userID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}

// EventsFor returns the events published to a user
func (m *MockPublisher) EventsFor(userID uuid.UUID) []websocket.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []websocket.Event
	for _, pe := range m.Events {
		if pe.UserID == userID {
			result = append(result, pe.Event)
		}
	}
	return result
}
