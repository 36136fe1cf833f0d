// Package ledger drives extracted transaction drafts against the stock
// catalog and the khata, and builds the localized replies sent back to the
// shopkeeper.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
	"github.com/gupta-labs/khata-sahayak/internal/application/stock"
	"github.com/gupta-labs/khata-sahayak/internal/application/supplier"
	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
	"github.com/gupta-labs/khata-sahayak/internal/domain/repository"
	"github.com/gupta-labs/khata-sahayak/pkg/i18n"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// profitKeywords gate profit visibility: the figure is shown only when the
// shopkeeper asked about profit in the source message.
var profitKeywords = []string{"profit", "profitability", "labh", "munafa", "मुनाफा", "लाभ", "फायदा"}

// Reconciler applies one draft to stock and ledger and composes the reply.
type Reconciler struct {
	matcher    *stock.Matcher
	catalog    *stock.Catalog
	txRepo     repository.TransactionRepository
	prices     *supplier.PriceIndex
	dispatcher ports.CallDispatcher
	log        *logger.Logger
}

func NewReconciler(matcher *stock.Matcher, catalog *stock.Catalog, txRepo repository.TransactionRepository, prices *supplier.PriceIndex, dispatcher ports.CallDispatcher, log *logger.Logger) *Reconciler {
	return &Reconciler{
		matcher:    matcher,
		catalog:    catalog,
		txRepo:     txRepo,
		prices:     prices,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Process dispatches a draft by type. originalText and englishText are the
// raw transcript and its translation; they drive presentation policy only.
func (r *Reconciler) Process(ctx context.Context, actorID string, draft *dto.TransactionDraft, lang string, originalText, englishText string, refDate time.Time) (*dto.Reply, error) {
	showProfit := containsAny(originalText, profitKeywords) || containsAny(englishText, profitKeywords)

	switch draft.Type {
	case dto.DraftSale:
		return r.processSale(ctx, actorID, draft, lang, showProfit, refDate)
	case dto.DraftPurchase:
		return r.processPurchase(ctx, actorID, draft, lang, refDate)
	case dto.DraftExpense:
		return r.processExpense(ctx, actorID, draft, lang, refDate)
	case dto.DraftOrderConfirmation:
		return r.processOrderConfirmation(ctx, actorID, draft, lang)
	default:
		return extractFail(lang), nil
	}
}

func (r *Reconciler) processSale(ctx context.Context, actorID string, draft *dto.TransactionDraft, lang string, showProfit bool, refDate time.Time) (*dto.Reply, error) {
	if len(draft.ItemsSold) == 0 {
		return extractFail(lang), nil
	}

	var (
		saleLines   []string
		failedLines []string
		totalSales  = decimal.Zero
		totalProfit = decimal.Zero
	)

	for _, item := range draft.ItemsSold {
		if !item.ValidForSale() {
			continue
		}

		res, err := r.matcher.Resolve(ctx, actorID, item.ItemName, item.EffectiveUnit(), lang)
		if err != nil {
			return nil, err
		}
		if res.Entry == nil {
			failedLines = append(failedLines, i18n.T(lang, "item_not_in_stock", map[string]string{"item_name": item.ItemName}))
			continue
		}

		// cost price before the delta; a sale never changes it
		costPrice := res.Entry.CostPricePerUnit
		hasCost := !costPrice.IsZero()

		if _, err := r.catalog.ApplyDelta(ctx, actorID, res.Name, item.Quantity.Neg(), res.Unit, nil); err != nil {
			return nil, err
		}

		// the ledger label keeps the unit the shopkeeper actually said
		label := fmt.Sprintf("%s (%s %s)", res.Name, item.Quantity.String(), item.EffectiveUnit())
		if err := r.record(ctx, actorID, entity.TransactionSale, *item.SellingAmount, label, refDate); err != nil {
			return nil, err
		}

		totalSales = totalSales.Add(*item.SellingAmount)

		if hasCost {
			profit := item.SellingAmount.Sub(item.Quantity.Mul(costPrice))
			totalProfit = totalProfit.Add(profit)
			if showProfit {
				saleLines = append(saleLines, fmt.Sprintf("%s: ₹%s (Profit: ₹%s)", res.Name, item.SellingAmount.StringFixed(2), profit.StringFixed(2)))
				continue
			}
		}
		saleLines = append(saleLines, fmt.Sprintf("%s: ₹%s", res.Name, item.SellingAmount.StringFixed(2)))
	}

	// with zero resolved items the whole draft reads as a failed
	// extraction; the per-line breakdown is shown only alongside at
	// least one success
	if len(saleLines) == 0 {
		return extractFail(lang), nil
	}

	reply := &dto.Reply{}
	details := strings.Join(saleLines, "\n")
	if showProfit && totalProfit.IsPositive() {
		details = fmt.Sprintf("Total Profit: ₹%s\n%s", totalProfit.StringFixed(2), details)
	}
	reply.Add(i18n.T(lang, "sale_success", map[string]string{
		"amount":       totalSales.StringFixed(2),
		"item_details": details,
	}))
	if len(failedLines) > 0 {
		reply.Add(i18n.T(lang, "unprocessed_items", map[string]string{"items": strings.Join(failedLines, "\n")}))
	}
	return reply, nil
}

func (r *Reconciler) processPurchase(ctx context.Context, actorID string, draft *dto.TransactionDraft, lang string, refDate time.Time) (*dto.Reply, error) {
	if len(draft.ItemsPurchased) == 0 {
		return extractFail(lang), nil
	}

	var (
		lines []string
		total = decimal.Zero
	)
	for _, item := range draft.ItemsPurchased {
		if !item.ValidForPurchase() {
			continue
		}
		if _, err := r.catalog.ApplyDelta(ctx, actorID, item.ItemName, *item.Quantity, item.EffectiveUnit(), item.CostPricePerUnit); err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%s: %s %s @ ₹%s/%s",
			item.ItemName, item.Quantity.String(), item.EffectiveUnit(),
			item.CostPricePerUnit.StringFixed(2), item.EffectiveUnit()))
		total = total.Add(item.Quantity.Mul(*item.CostPricePerUnit))
	}

	if len(lines) == 0 {
		return extractFail(lang), nil
	}

	// one aggregate expense entry for the whole purchase, not one per item
	if total.IsPositive() {
		label := fmt.Sprintf("Stock purchase (%d items)", len(lines))
		if err := r.record(ctx, actorID, entity.TransactionExpense, total, label, refDate); err != nil {
			return nil, err
		}
		lines = append(lines, i18n.T(lang, "total_expense_recorded", map[string]string{"amount": total.StringFixed(2)}))
	}

	reply := &dto.Reply{}
	reply.Add(i18n.T(lang, "stock_update_success", map[string]string{"updates": strings.Join(lines, "\n")}))
	return reply, nil
}

func (r *Reconciler) processExpense(ctx context.Context, actorID string, draft *dto.TransactionDraft, lang string, refDate time.Time) (*dto.Reply, error) {
	if draft.Amount == nil {
		return extractFail(lang), nil
	}
	if err := r.record(ctx, actorID, entity.TransactionExpense, *draft.Amount, draft.Description, refDate); err != nil {
		return nil, err
	}

	reply := &dto.Reply{}
	if draft.Description != "" {
		reply.Add(i18n.T(lang, "expense_success", map[string]string{
			"amount": draft.Amount.StringFixed(2),
			"item":   draft.Description,
		}))
	} else {
		reply.Add(i18n.T(lang, "expense_success_no_item", map[string]string{"amount": draft.Amount.StringFixed(2)}))
	}
	return reply, nil
}

// processOrderConfirmation hands the order off to the call dispatcher. Stock
// and ledger are not touched here; they change only when the call completes
// and the post-call continuation records the purchase.
func (r *Reconciler) processOrderConfirmation(ctx context.Context, actorID string, draft *dto.TransactionDraft, lang string) (*dto.Reply, error) {
	if len(draft.ItemsToOrder) == 0 || draft.SupplierName == "" {
		return extractFail(lang), nil
	}

	sup := r.prices.FindSupplier(draft.SupplierName)
	reply := &dto.Reply{}
	if sup == nil {
		reply.Add(i18n.T(lang, "supplier_not_found", map[string]string{"supplier_name": draft.SupplierName}))
		return reply, nil
	}

	var orderLines []string
	for _, item := range draft.ItemsToOrder {
		if !item.ValidForOrder() {
			continue
		}
		orderLines = append(orderLines, fmt.Sprintf("%s %s %s", item.Quantity.String(), item.EffectiveUnit(), item.ItemName))
	}
	orderDetails := strings.Join(orderLines, ", ")

	if err := r.dispatcher.Initiate(ctx, sup.Phone, orderDetails, draft.SupplierName, actorID); err != nil {
		r.log.Error().Err(err).Str("supplier", draft.SupplierName).Msg("outbound order call failed to start")
		reply.Add(i18n.T(lang, "order_failed", map[string]string{
			"item_name":     fmt.Sprintf("%d items", len(orderLines)),
			"supplier_name": draft.SupplierName,
			"reason":        "Failed to initiate call.",
		}))
		return reply, nil
	}

	reply.Add(i18n.T(lang, "order_calling", map[string]string{
		"supplier_name": draft.SupplierName,
		"order_details": orderDetails,
	}))
	return reply, nil
}

func (r *Reconciler) record(ctx context.Context, actorID string, txType entity.TransactionType, amount decimal.Decimal, item string, refDate time.Time) error {
	return r.txRepo.Create(ctx, &entity.Transaction{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Type:      txType,
		Amount:    amount,
		Item:      item,
		CreatedAt: refDate,
	})
}

func extractFail(lang string) *dto.Reply {
	reply := &dto.Reply{}
	reply.Add(i18n.T(lang, "extract_fail", nil))
	return reply
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
