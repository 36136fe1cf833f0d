package ledger

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/application/stock"
	"github.com/gupta-labs/khata-sahayak/internal/application/supplier"
	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
	"github.com/gupta-labs/khata-sahayak/internal/domain/units"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// -------------------- fakes --------------------

type memStockRepo struct {
	items []entity.StockItem
}

func (m *memStockRepo) ListByActor(_ context.Context, actorID string) ([]entity.StockItem, error) {
	out := []entity.StockItem{}
	for _, it := range m.items {
		if it.ActorID == actorID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemName < out[j].ItemName })
	return out, nil
}

func (m *memStockRepo) FindByActorAndName(_ context.Context, actorID, name string) ([]entity.StockItem, error) {
	out := []entity.StockItem{}
	for _, it := range m.items {
		if it.ActorID == actorID && it.ItemName == name {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memStockRepo) Upsert(_ context.Context, item *entity.StockItem) error {
	for i := range m.items {
		if m.items[i].ActorID == item.ActorID && m.items[i].ItemName == item.ItemName &&
			units.Normalize(m.items[i].Unit) == units.Normalize(item.Unit) {
			m.items[i] = *item
			return nil
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	m.items = append(m.items, *item)
	return nil
}

func (m *memStockRepo) ActorsWithStock(_ context.Context) ([]string, error) { return nil, nil }

type memTxRepo struct {
	txs []entity.Transaction
}

func (m *memTxRepo) Create(_ context.Context, tx *entity.Transaction) error {
	m.txs = append(m.txs, *tx)
	return nil
}

func (m *memTxRepo) ListByActor(_ context.Context, actorID string, limit int) ([]entity.Transaction, error) {
	out := []entity.Transaction{}
	for i := len(m.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.txs[i].ActorID == actorID {
			out = append(out, m.txs[i])
		}
	}
	return out, nil
}

func (m *memTxRepo) SalesByActorAndDate(_ context.Context, actorID string, day time.Time) ([]entity.Transaction, error) {
	out := []entity.Transaction{}
	for _, tx := range m.txs {
		if tx.ActorID == actorID && tx.Type == entity.TransactionSale &&
			tx.CreatedAt.Format("2006-01-02") == day.Format("2006-01-02") {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *memTxRepo) SumByActor(_ context.Context, actorID string) (decimal.Decimal, decimal.Decimal, error) {
	sales, outflows := decimal.Zero, decimal.Zero
	for _, tx := range m.txs {
		if tx.ActorID != actorID {
			continue
		}
		if tx.Type == entity.TransactionSale {
			sales = sales.Add(tx.Amount)
		} else {
			outflows = outflows.Add(tx.Amount)
		}
	}
	return sales, outflows, nil
}

type noopTranslator struct{}

func (noopTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

type stubDispatcher struct {
	err   error
	calls []string
}

func (s *stubDispatcher) Initiate(_ context.Context, phone, orderPayload, supplierName, _ string) error {
	s.calls = append(s.calls, phone+"|"+orderPayload+"|"+supplierName)
	return s.err
}

type fixture struct {
	reconciler *Reconciler
	stockRepo  *memStockRepo
	txRepo     *memTxRepo
	dispatcher *stubDispatcher
}

func newFixture(seed ...entity.StockItem) *fixture {
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	stockRepo := &memStockRepo{items: seed}
	txRepo := &memTxRepo{}
	dispatcher := &stubDispatcher{}
	catalog := stock.NewCatalog(stockRepo, log, false)
	matcher := stock.NewMatcher(catalog, noopTranslator{}, "hi", log)
	prices := supplier.NewPriceIndex(supplier.DefaultSuppliers(), "+919971129359")
	return &fixture{
		reconciler: NewReconciler(matcher, catalog, txRepo, prices, dispatcher, log),
		stockRepo:  stockRepo,
		txRepo:     txRepo,
		dispatcher: dispatcher,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var refDate = time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC)

// -------------------- sale --------------------

func TestSaleDecrementsStockAndRecordsLedger(t *testing.T) {
	f := newFixture(entity.StockItem{
		ID: "1", ActorID: "shop", ItemName: "चावल", Unit: "kg",
		Quantity: dec("10"), CostPricePerUnit: dec("40"),
	})
	draft := &dto.TransactionDraft{
		Type: dto.DraftSale,
		ItemsSold: []dto.DraftItem{
			{ItemName: "चावल", Quantity: decPtr("2"), Unit: "kg", SellingAmount: decPtr("100")},
		},
	}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "hi", "2 किलो चावल बेचा", "sold 2 kg rice", refDate)
	require.NoError(t, err)

	rows, _ := f.stockRepo.FindByActorAndName(context.Background(), "shop", "चावल")
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Quantity.Equal(dec("8")), "quantity = %s", rows[0].Quantity)

	require.Len(t, f.txRepo.txs, 1)
	tx := f.txRepo.txs[0]
	assert.Equal(t, entity.TransactionSale, tx.Type)
	assert.True(t, tx.Amount.Equal(dec("100")))
	assert.Equal(t, "चावल (2 kg)", tx.Item)

	text := joined(reply)
	assert.Contains(t, text, "₹100.00")
	// no profit keyword in the message, so the figure stays hidden
	assert.NotContains(t, text, "Profit")
}

func TestSaleShowsProfitOnlyWhenAsked(t *testing.T) {
	f := newFixture(entity.StockItem{
		ID: "1", ActorID: "shop", ItemName: "चावल", Unit: "kg",
		Quantity: dec("10"), CostPricePerUnit: dec("40"),
	})
	draft := &dto.TransactionDraft{
		Type: dto.DraftSale,
		ItemsSold: []dto.DraftItem{
			{ItemName: "चावल", Quantity: decPtr("2"), Unit: "kg", SellingAmount: decPtr("100")},
		},
	}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "hi", "", "sold rice, what is my profit", refDate)
	require.NoError(t, err)

	text := joined(reply)
	assert.Contains(t, text, "Total Profit: ₹20.00")
}

func TestSaleUnknownItemListedWithSuccesses(t *testing.T) {
	f := newFixture(entity.StockItem{
		ID: "1", ActorID: "shop", ItemName: "चावल", Unit: "kg",
		Quantity: dec("10"), CostPricePerUnit: dec("40"),
	})
	draft := &dto.TransactionDraft{
		Type: dto.DraftSale,
		ItemsSold: []dto.DraftItem{
			{ItemName: "चावल", Quantity: decPtr("1"), Unit: "kg", SellingAmount: decPtr("50")},
			{ItemName: "pencil", Quantity: decPtr("2"), Unit: "pcs", SellingAmount: decPtr("10")},
		},
	}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "hi", "", "", refDate)
	require.NoError(t, err)

	text := joined(reply)
	assert.Contains(t, text, "चावल")
	assert.Contains(t, text, "pencil")
	// only the resolved item reached the ledger
	require.Len(t, f.txRepo.txs, 1)
}

func TestSaleAllItemsUnresolvedGivesGenericFailure(t *testing.T) {
	f := newFixture(entity.StockItem{
		ID: "1", ActorID: "shop", ItemName: "चावल", Unit: "kg", Quantity: dec("10"),
	})
	draft := &dto.TransactionDraft{
		Type: dto.DraftSale,
		ItemsSold: []dto.DraftItem{
			{ItemName: "pencil", Quantity: decPtr("2"), Unit: "pcs", SellingAmount: decPtr("10")},
		},
	}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "en", "", "", refDate)
	require.NoError(t, err)

	text := joined(reply)
	assert.Contains(t, text, "Could not extract")
	assert.NotContains(t, text, "pencil")
	assert.Empty(t, f.txRepo.txs)
}

// -------------------- purchase --------------------

func TestPurchaseAggregateExpenseSkipsInvalidLines(t *testing.T) {
	f := newFixture()
	draft := &dto.TransactionDraft{
		Type: dto.DraftPurchase,
		ItemsPurchased: []dto.DraftItem{
			{ItemName: "आटा", Quantity: decPtr("5"), Unit: "kg", CostPricePerUnit: decPtr("30")},
			{ItemName: "चीनी", Quantity: decPtr("3"), Unit: "kg"}, // no cost price
		},
	}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "en", "", "", refDate)
	require.NoError(t, err)

	rows, _ := f.stockRepo.FindByActorAndName(context.Background(), "shop", "आटा")
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Quantity.Equal(dec("5")))
	assert.True(t, rows[0].CostPricePerUnit.Equal(dec("30")))

	missing, _ := f.stockRepo.FindByActorAndName(context.Background(), "shop", "चीनी")
	assert.Empty(t, missing)

	require.Len(t, f.txRepo.txs, 1)
	tx := f.txRepo.txs[0]
	assert.Equal(t, entity.TransactionExpense, tx.Type)
	assert.True(t, tx.Amount.Equal(dec("150")))
	assert.Equal(t, "Stock purchase (1 items)", tx.Item)

	text := joined(reply)
	assert.Contains(t, text, "आटा")
	assert.NotContains(t, text, "चीनी")
}

// -------------------- expense --------------------

func TestExpenseRecordsSingleEntry(t *testing.T) {
	f := newFixture()
	draft := &dto.TransactionDraft{
		Type:        dto.DraftExpense,
		Amount:      decPtr("200"),
		Description: "electricity bill",
	}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "en", "", "", refDate)
	require.NoError(t, err)

	require.Len(t, f.txRepo.txs, 1)
	assert.Equal(t, entity.TransactionExpense, f.txRepo.txs[0].Type)
	assert.Contains(t, joined(reply), "electricity bill")
}

func TestExpenseWithoutAmountFails(t *testing.T) {
	f := newFixture()
	draft := &dto.TransactionDraft{Type: dto.DraftExpense, Description: "something"}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "en", "", "", refDate)
	require.NoError(t, err)
	assert.Contains(t, joined(reply), "Could not extract")
	assert.Empty(t, f.txRepo.txs)
}

// -------------------- order confirmation --------------------

func TestOrderConfirmationDispatchesCallWithoutStockChanges(t *testing.T) {
	f := newFixture(entity.StockItem{
		ID: "1", ActorID: "shop", ItemName: "चावल", Unit: "kg", Quantity: dec("1"),
	})
	draft := &dto.TransactionDraft{
		Type:         dto.DraftOrderConfirmation,
		SupplierName: "Suppliar A",
		ItemsToOrder: []dto.DraftItem{
			{ItemName: "चावल", Quantity: decPtr("10"), Unit: "kg"},
		},
	}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "en", "", "", refDate)
	require.NoError(t, err)

	require.Len(t, f.dispatcher.calls, 1)
	assert.Contains(t, f.dispatcher.calls[0], "+919971129359")
	assert.Contains(t, f.dispatcher.calls[0], "10 kg चावल")

	// no synchronous stock or ledger mutation
	rows, _ := f.stockRepo.FindByActorAndName(context.Background(), "shop", "चावल")
	assert.True(t, rows[0].Quantity.Equal(dec("1")))
	assert.Empty(t, f.txRepo.txs)

	assert.Contains(t, joined(reply), "Suppliar A")
}

func TestOrderConfirmationUnknownSupplier(t *testing.T) {
	f := newFixture()
	draft := &dto.TransactionDraft{
		Type:         dto.DraftOrderConfirmation,
		SupplierName: "Mehta Traders",
		ItemsToOrder: []dto.DraftItem{{ItemName: "चावल", Quantity: decPtr("10"), Unit: "kg"}},
	}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "en", "", "", refDate)
	require.NoError(t, err)
	assert.Empty(t, f.dispatcher.calls)
	assert.Contains(t, joined(reply), "Mehta Traders")
}

func TestOrderConfirmationDispatchFailure(t *testing.T) {
	f := newFixture()
	f.dispatcher.err = errors.New("provider down")
	draft := &dto.TransactionDraft{
		Type:         dto.DraftOrderConfirmation,
		SupplierName: "Supplier B",
		ItemsToOrder: []dto.DraftItem{{ItemName: "आटा", Quantity: decPtr("5"), Unit: "kg"}},
	}

	reply, err := f.reconciler.Process(context.Background(), "shop", draft, "en", "", "", refDate)
	require.NoError(t, err)
	assert.Contains(t, joined(reply), "Failed to confirm order")
}

// -------------------- unknown type --------------------

func TestUnknownDraftType(t *testing.T) {
	f := newFixture()
	reply, err := f.reconciler.Process(context.Background(), "shop", &dto.TransactionDraft{Type: "refund"}, "en", "", "", refDate)
	require.NoError(t, err)
	assert.Contains(t, joined(reply), "Could not extract")
}

func joined(r *dto.Reply) string {
	out := ""
	for _, f := range r.Fragments {
		out += f + "\n\n"
	}
	return out
}
