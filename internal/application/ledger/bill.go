package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
	"github.com/gupta-labs/khata-sahayak/pkg/i18n"
)

// ProcessBill applies an extracted bill photo to stock. Only purchase bills
// are accepted; a bill of unknown type is classified by which price field
// its lines carry. Sales via image are rejected with a pointer to the voice
// and text paths, where quantities can be checked conversationally.
func (r *Reconciler) ProcessBill(ctx context.Context, actorID string, bill *dto.BillExtraction, lang string, refDate time.Time) (*dto.Reply, error) {
	if len(bill.Items) == 0 {
		return billFail(lang, "Could not extract any items from the image."), nil
	}

	billType := bill.BillType
	if billType != "purchase" && billType != "sale" {
		switch {
		case anyItem(bill.Items, func(i dto.DraftItem) bool { return i.CostPricePerUnit != nil }):
			billType = "purchase"
		case anyItem(bill.Items, func(i dto.DraftItem) bool { return i.SellingAmount != nil }):
			billType = "sale"
		default:
			return billFail(lang, "Could not extract any valid items or clear pricing information from the image to determine bill type."), nil
		}
	}
	if billType == "sale" {
		return billFail(lang, "Sales bills cannot be processed via image. Please send sales information via voice note or text (item name, quantity, selling price)."), nil
	}

	var (
		lines []string
		total = decimal.Zero
	)
	for _, item := range bill.Items {
		if !item.ValidForPurchase() {
			continue
		}
		if _, err := r.catalog.ApplyDelta(ctx, actorID, item.ItemName, *item.Quantity, item.EffectiveUnit(), item.CostPricePerUnit); err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%s: %s %s", item.ItemName, item.Quantity.String(), item.EffectiveUnit()))
		total = total.Add(item.Quantity.Mul(*item.CostPricePerUnit))
	}

	if len(lines) == 0 {
		return billFail(lang, "Could not extract any valid items with cost prices from the purchase bill."), nil
	}

	if total.IsPositive() {
		label := fmt.Sprintf("Stock purchase via bill (%d items)", len(lines))
		if err := r.record(ctx, actorID, entity.TransactionExpense, total, label, refDate); err != nil {
			return nil, err
		}
		lines = append(lines, i18n.T(lang, "total_expense_recorded", map[string]string{"amount": total.StringFixed(2)}))
	}

	reply := &dto.Reply{}
	reply.Add(i18n.T(lang, "stock_update_success", map[string]string{"updates": strings.Join(lines, "\n")}))
	return reply, nil
}

func billFail(lang, reason string) *dto.Reply {
	reply := &dto.Reply{}
	reply.Add(i18n.T(lang, "stock_update_fail", map[string]string{"error_msg": reason}))
	return reply
}

func anyItem(items []dto.DraftItem, pred func(dto.DraftItem) bool) bool {
	for _, it := range items {
		if pred(it) {
			return true
		}
	}
	return false
}
