package dto

import (
	"github.com/shopspring/decimal"
)

// DraftType discriminates an extracted transaction draft.
type DraftType string

const (
	DraftSale              DraftType = "sale"
	DraftPurchase          DraftType = "purchase"
	DraftExpense           DraftType = "expense"
	DraftOrderConfirmation DraftType = "order_confirmation"
	DraftBalanceInquiry    DraftType = "balance_inquiry"
	DraftEarningsSummary   DraftType = "earnings_summary"
)

// DraftItem is one line item of an extracted draft. Numeric fields are
// pointers so a missing field can be told apart from zero; drafts come from
// an LLM and arrive unvalidated.
type DraftItem struct {
	ItemName         string           `json:"item_name"`
	Quantity         *decimal.Decimal `json:"quantity"`
	Unit             string           `json:"unit"`
	SellingAmount    *decimal.Decimal `json:"selling_amount"`
	CostPricePerUnit *decimal.Decimal `json:"cost_price_per_unit"`
}

// EffectiveUnit returns the extractor-supplied unit or the "pcs" default.
func (i *DraftItem) EffectiveUnit() string {
	if i.Unit == "" {
		return "pcs"
	}
	return i.Unit
}

// ValidForSale reports whether the line has everything a sale needs.
func (i *DraftItem) ValidForSale() bool {
	return i.ItemName != "" && i.Quantity != nil && i.SellingAmount != nil
}

// ValidForPurchase reports whether the line has everything a purchase needs.
func (i *DraftItem) ValidForPurchase() bool {
	return i.ItemName != "" && i.Quantity != nil && i.CostPricePerUnit != nil
}

// ValidForOrder reports whether the line can be placed in a supplier order.
func (i *DraftItem) ValidForOrder() bool {
	return i.ItemName != "" && i.Quantity != nil
}

// TransactionDraft is a discriminated union over the transaction types the
// extractor can produce. Only the fields of the active type are populated.
type TransactionDraft struct {
	Type           DraftType        `json:"type"`
	ItemsSold      []DraftItem      `json:"items_sold"`
	ItemsPurchased []DraftItem      `json:"items_purchased"`
	ItemsToOrder   []DraftItem      `json:"items_to_order"`
	Amount         *decimal.Decimal `json:"amount"`
	Description    string           `json:"description"`
	SupplierName   string           `json:"supplier_name"`
	Language       string           `json:"language"`
}
