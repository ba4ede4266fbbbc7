package websocket

import (
	"encoding/json"
	"time"
)

// Operation represents the kind of row change carried by a feed event
type Operation string

const (
	OperationInsert Operation = "insert"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Table identifies the collection a feed event is about
type Table string

const (
	TableEntries      Table = "entries"
	TableBankAccounts Table = "bank_accounts"
	TableCategories   Table = "categories"
	TableBudgetStates Table = "budget_states"
)

// Event is a change-feed message sent to clients.
// Format: { table, operation, row, timestamp }
type Event struct {
	Table     Table       `json:"table"`
	Operation Operation   `json:"operation"`
	Row       interface{} `json:"row"` // Full row data; the deleted row for deletes
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new feed event
func NewEvent(table Table, operation Operation, row interface{}) Event {
	return Event{
		Table:     table,
		Operation: operation,
		Row:       row,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntryInserted creates an entries insert event
func EntryInserted(row interface{}) Event {
	return NewEvent(TableEntries, OperationInsert, row)
}

// EntryUpdated creates an entries update event
func EntryUpdated(row interface{}) Event {
	return NewEvent(TableEntries, OperationUpdate, row)
}

// EntryDeleted creates an entries delete event
func EntryDeleted(row interface{}) Event {
	return NewEvent(TableEntries, OperationDelete, row)
}

// BankAccountInserted creates a bank_accounts insert event
func BankAccountInserted(row interface{}) Event {
	return NewEvent(TableBankAccounts, OperationInsert, row)
}

// BankAccountUpdated creates a bank_accounts update event
func BankAccountUpdated(row interface{}) Event {
	return NewEvent(TableBankAccounts, OperationUpdate, row)
}

// BankAccountDeleted creates a bank_accounts delete event
func BankAccountDeleted(row interface{}) Event {
	return NewEvent(TableBankAccounts, OperationDelete, row)
}

// CategoryInserted creates a categories insert event
func CategoryInserted(row interface{}) Event {
	return NewEvent(TableCategories, OperationInsert, row)
}

// CategoryDeleted creates a categories delete event
func CategoryDeleted(row interface{}) Event {
	return NewEvent(TableCategories, OperationDelete, row)
}

// BudgetStateUpdated creates a budget_states update event
func BudgetStateUpdated(row interface{}) Event {
	return NewEvent(TableBudgetStates, OperationUpdate, row)
}
