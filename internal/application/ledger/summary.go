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

// recentTransactionLimit caps the balance-inquiry listing.
const recentTransactionLimit = 5

var balanceKeywords = []string{
	"balance", "account", "kitna", "total", "shilak", "rupai", "money",
	"खाता", "कितने पैसे हैं", "how much money", "kitni rakam hai", "शिल्लक", "रक्कम",
}

var earningsKeywords = []string{
	"kamai", "earnings", "profit", "aaj kii", "today's",
	"कितनी कमाई हुई", "आज की कमाई", "फायदा", "कमई",
	"how much did you earn today", "how much you earn today",
	"total sales today", "total earned today", "आज कमई",
	"aaj ki kamai", "how much today earnings",
}

// DetectInquiry checks whether the message is a khata question rather than
// a transaction. Earnings wins when both keyword sets fire.
func DetectInquiry(originalText, englishText string) (dto.DraftType, bool) {
	if containsAny(originalText, earningsKeywords) || containsAny(englishText, earningsKeywords) {
		return dto.DraftEarningsSummary, true
	}
	if containsAny(originalText, balanceKeywords) || containsAny(englishText, balanceKeywords) {
		return dto.DraftBalanceInquiry, true
	}
	return "", false
}

// EarningsSummary composes the today's-sales reply.
func (r *Reconciler) EarningsSummary(ctx context.Context, actorID, lang string, day time.Time) (*dto.Reply, error) {
	sales, err := r.txRepo.SalesByActorAndDate(ctx, actorID, day)
	if err != nil {
		return nil, err
	}

	total := decimalSum(sales)
	var details string
	if len(sales) == 0 {
		details = i18n.T(lang, "no_sales_found_today", nil)
	} else {
		lines := make([]string, 0, len(sales))
		for _, tx := range sales {
			lines = append(lines, fmt.Sprintf("• %s: ₹%s", tx.Item, tx.Amount.StringFixed(2)))
		}
		details = strings.Join(lines, "\n")
	}

	reply := &dto.Reply{}
	reply.Add(i18n.T(lang, "earnings_summary", map[string]string{
		"total_sales":   total.StringFixed(2),
		"sales_details": details,
	}))
	return reply, nil
}

// BalanceSummary composes the khata-balance reply: lifetime sales minus
// outflows, plus the most recent entries.
func (r *Reconciler) BalanceSummary(ctx context.Context, actorID, lang string) (*dto.Reply, error) {
	sales, outflows, err := r.txRepo.SumByActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	balance := sales.Sub(outflows)

	recent, err := r.txRepo.ListByActor(ctx, actorID, recentTransactionLimit)
	if err != nil {
		return nil, err
	}

	var summary string
	if len(recent) == 0 {
		summary = i18n.T(lang, "no_transactions_found", nil)
	} else {
		lines := make([]string, 0, len(recent))
		for _, tx := range recent {
			line := fmt.Sprintf("• Date: %s, Type: %s, Amount: ₹%s",
				tx.CreatedAt.Format("2006-01-02"), titleCase(string(tx.Type)), tx.Amount.StringFixed(2))
			if tx.Item != "" {
				line += fmt.Sprintf(" (%s)", tx.Item)
			}
			lines = append(lines, line)
		}
		summary = strings.Join(lines, "\n")
	}

	reply := &dto.Reply{}
	reply.Add(i18n.T(lang, "balance_inquiry", map[string]string{
		"balance":              balance.StringFixed(2),
		"transactions_summary": summary,
	}))
	return reply, nil
}

func decimalSum(txs []entity.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
