package entity

import "github.com/shopspring/decimal"

// SupplierItem is one line of a supplier's price list.
type SupplierItem struct {
	ItemName     string
	Unit         string
	PricePerUnit decimal.Decimal
}

// Supplier is a wholesaler the shop can reorder from over a phone call.
type Supplier struct {
	Name  string
	Phone string
	Items []SupplierItem
}
