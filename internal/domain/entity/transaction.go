package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionSale     TransactionType = "sale"
	TransactionPurchase TransactionType = "purchase"
	TransactionExpense  TransactionType = "expense"
)

// Transaction is one entry in a shopkeeper's digital khata. Item carries the
// human-readable label shown back in summaries, e.g. "चीनी (1 kg)".
type Transaction struct {
	ID        string
	ActorID   string
	Type      TransactionType
	Amount    decimal.Decimal
	Item      string
	CreatedAt time.Time
}

// IsOutflow reports whether the entry reduces the khata balance.
func (t *Transaction) IsOutflow() bool {
	return t.Type == TransactionPurchase || t.Type == TransactionExpense
}
