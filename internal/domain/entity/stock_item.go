package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem is one catalog row of a shopkeeper's inventory. The quantity is
// stored in the unit the shopkeeper first used for the item; conversions
// happen at the edges, never in storage.
type StockItem struct {
	ID                   string
	ActorID              string
	ItemName             string
	Unit                 string
	Quantity             decimal.Decimal
	CostPricePerUnit     decimal.Decimal
	MinQuantityThreshold decimal.Decimal
	LastUpdated          time.Time
}

// IsLow reports whether the item has fallen to or below its reorder
// threshold. The threshold defaults to zero, so a fully depleted item
// always alerts.
func (s *StockItem) IsLow() bool {
	return s.Quantity.LessThanOrEqual(s.MinQuantityThreshold)
}
