package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
	"github.com/gupta-labs/khata-sahayak/internal/domain/repository"
)

const defaultTransactionLimit = 50

// DashboardHandler serves the read-only khata views behind JWT auth. All
// writes happen through the WhatsApp channel; this API only mirrors what
// the shopkeeper already recorded.
type DashboardHandler struct {
	stockRepo repository.StockRepository
	txRepo    repository.TransactionRepository
}

func NewDashboardHandler(stockRepo repository.StockRepository, txRepo repository.TransactionRepository) *DashboardHandler {
	return &DashboardHandler{stockRepo: stockRepo, txRepo: txRepo}
}

type stockItemResponse struct {
	ItemName             string    `json:"item_name"`
	Unit                 string    `json:"unit"`
	Quantity             string    `json:"quantity"`
	CostPricePerUnit     string    `json:"cost_price_per_unit"`
	MinQuantityThreshold string    `json:"min_quantity_threshold"`
	LowStock             bool      `json:"low_stock"`
	LastUpdated          time.Time `json:"last_updated"`
}

type transactionResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"`
	Item      string    `json:"item"`
	CreatedAt time.Time `json:"created_at"`
}

// GetStock returns the actor's current catalog.
// GET /api/stock
func (h *DashboardHandler) GetStock(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: "UNAUTHORIZED", Message: "actor_id not found in token",
		})
	}

	items, err := h.stockRepo.ListByActor(c.Context(), actorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}

	out := make([]stockItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toStockResponse(it))
	}
	return c.JSON(fiber.Map{"items": out})
}

// GetTransactions returns the actor's newest ledger entries.
// GET /api/transactions?limit=50
func (h *DashboardHandler) GetTransactions(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code: "UNAUTHORIZED", Message: "actor_id not found in token",
		})
	}

	limit := c.QueryInt("limit", defaultTransactionLimit)
	if limit <= 0 || limit > 500 {
		limit = defaultTransactionLimit
	}

	txs, err := h.txRepo.ListByActor(c.Context(), actorID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionResponse{
			ID:        tx.ID,
			Type:      string(tx.Type),
			Amount:    tx.Amount.StringFixed(2),
			Item:      tx.Item,
			CreatedAt: tx.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"transactions": out})
}

func toStockResponse(it entity.StockItem) stockItemResponse {
	return stockItemResponse{
		ItemName:             it.ItemName,
		Unit:                 it.Unit,
		Quantity:             it.Quantity.String(),
		CostPricePerUnit:     it.CostPricePerUnit.StringFixed(2),
		MinQuantityThreshold: it.MinQuantityThreshold.String(),
		LowStock:             it.IsLow(),
		LastUpdated:          it.LastUpdated,
	}
}
