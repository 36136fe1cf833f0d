package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gupta-labs/khata-sahayak/internal/application/calls"
	"github.com/gupta-labs/khata-sahayak/internal/application/ledger"
	"github.com/gupta-labs/khata-sahayak/internal/domain/repository"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// RouterDeps wires the handlers.
type RouterDeps struct {
	Inbound     *ledger.InboundProcessor
	CallService *calls.Service
	StockRepo   repository.StockRepository
	TxRepo      repository.TransactionRepository
	JWTSecret   string
	Log         *logger.Logger
}

// Router registers the API routes. The webhook endpoints are public (Twilio
// and the voice provider cannot carry our JWT); the dashboard is protected.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	webhooks := app.Group("/webhook")
	webhookHandler := NewWebhookHandler(deps.Inbound, deps.Log)
	webhooks.Post("/whatsapp", webhookHandler.Receive)
	callbackHandler := NewCallbackHandler(deps.CallService, deps.Log)
	webhooks.Post("/call-status", callbackHandler.Receive)

	// Read-only dashboard (requires Bearer token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	dashboardHandler := NewDashboardHandler(deps.StockRepo, deps.TxRepo)
	api.Get("/stock", dashboardHandler.GetStock)
	api.Get("/transactions", dashboardHandler.GetTransactions)
}
