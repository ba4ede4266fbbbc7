package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeGanhos       EntryType = "ganhos"
	EntryTypeCustoFixo    EntryType = "custo-fixo"
	EntryTypeCustoVariado EntryType = "custo-variado"
	EntryTypeParcela      EntryType = "parcela"
	EntryTypeGastos       EntryType = "gastos"
)

// ExpenseEntryTypes lists the entry types that count as spending when
// computing net amounts (everything except income).
var ExpenseEntryTypes = []EntryType{
	EntryTypeCustoFixo,
	EntryTypeCustoVariado,
	EntryTypeParcela,
	EntryTypeGastos,
}

// AllEntryTypes lists every entry type; each one is also a subcategory namespace.
var AllEntryTypes = []EntryType{
	EntryTypeGanhos,
	EntryTypeCustoFixo,
	EntryTypeCustoVariado,
	EntryTypeParcela,
	EntryTypeGastos,
}

// IsValidEntryType reports whether t is one of the known entry types.
func IsValidEntryType(t EntryType) bool {
	for _, known := range AllEntryTypes {
		if t == known {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodDebito  PaymentMethod = "debito"
	PaymentMethodCredito PaymentMethod = "credito"
)

// IsValidPaymentMethod reports whether m is a known payment method.
func IsValidPaymentMethod(m PaymentMethod) bool {
	return m == PaymentMethodDebito || m == PaymentMethodCredito
}

// Marker categories for synthetic bank-account balance entries. An income
// entry carrying one of these, linked to a bank account, represents that
// account's running balance (or available credit) rather than a one-off event.
const (
	CategorySaldoConta        = "saldo-conta"
	CategoryCreditoDisponivel = "credito-disponivel"
	CategoryCreditoUtilizado  = "credito"
	DefaultBankLabel          = "default"
)

// Entry is a single recorded financial event. Amount is always non-negative;
// direction is implied by Type.
type Entry struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Categories    []string        `json:"categories"`
	IsPaid        bool            `json:"isPaid"`
	IsFixed       bool            `json:"isFixed"`
	Location      string          `json:"location"`
	Type          EntryType       `json:"type"`
	PaymentMethod PaymentMethod   `json:"paymentType"`
	IsValidated   bool            `json:"isValidated"`
	Bank          string          `json:"bank"`
	BankAccountID *uuid.UUID      `json:"bankAccountId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PrimaryCategory returns the first category, used as the grouping key.
func (e *Entry) PrimaryCategory() string {
	if len(e.Categories) == 0 {
		return ""
	}
	return e.Categories[0]
}

// HasCategory reports whether the entry carries the given category value.
func (e *Entry) HasCategory(value string) bool {
	for _, c := range e.Categories {
		if c == value {
			return true
		}
	}
	return false
}

// BankLabel returns the entry's bank label, falling back to DefaultBankLabel.
func (e *Entry) BankLabel() string {
	if e.Bank == "" {
		return DefaultBankLabel
	}
	return e.Bank
}

// EntryFilters narrows EntryRepository list queries. Nil fields are ignored.
type EntryFilters struct {
	Type          *EntryType
	PaymentMethod *PaymentMethod
	BankAccountID *uuid.UUID
	ValidatedOnly bool
	FixedOnly     bool
	StartDate     *time.Time
	EndDate       *time.Time
}

type EntryRepository interface {
	Create(entry *Entry) (*Entry, error)
	GetByID(userID, id uuid.UUID) (*Entry, error)
	GetAllByUser(userID uuid.UUID, filters *EntryFilters) ([]*Entry, error)
	Update(entry *Entry) (*Entry, error)
	Delete(userID, id uuid.UUID) error
	DeleteByBankAccount(userID, bankAccountID uuid.UUID) error
}
