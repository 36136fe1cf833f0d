package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/gupta-labs/khata-sahayak/internal/application/calls"
	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/domain"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// CallbackHandler receives the voice provider's post-call webhook and closes
// out the order session it belongs to.
type CallbackHandler struct {
	callService *calls.Service
	log         *logger.Logger
}

func NewCallbackHandler(callService *calls.Service, log *logger.Logger) *CallbackHandler {
	return &CallbackHandler{callService: callService, log: log}
}

// postCallPayload is the provider's webhook body. Only the extracted order
// outcome matters here; summaries and transcripts are logged and dropped.
type postCallPayload struct {
	RequestID            string `json:"requestId"`
	CallSummary          string `json:"callSummary"`
	ExtractedInformation struct {
		OrderConfirmed bool   `json:"order_confirmed"`
		Reason         string `json:"reason"`
		Items          []struct {
			ItemName string           `json:"item_name"`
			Quantity *decimal.Decimal `json:"quantity"`
			Unit     string           `json:"unit"`
		} `json:"items"`
	} `json:"extractedInformation"`
}

// Receive handles POST /webhook/call-status.
func (h *CallbackHandler) Receive(c *fiber.Ctx) error {
	var payload postCallPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PAYLOAD", Message: err.Error()})
	}
	if payload.RequestID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_CALL_ID", Message: "requestId is required"})
	}

	h.log.Info().
		Str("call_id", payload.RequestID).
		Bool("confirmed", payload.ExtractedInformation.OrderConfirmed).
		Str("summary", payload.CallSummary).
		Msg("post-call webhook received")

	items := make([]dto.DraftItem, 0, len(payload.ExtractedInformation.Items))
	for _, it := range payload.ExtractedInformation.Items {
		items = append(items, dto.DraftItem{
			ItemName: it.ItemName,
			Quantity: it.Quantity,
			Unit:     it.Unit,
		})
	}

	err := h.callService.Complete(c.Context(), payload.RequestID,
		payload.ExtractedInformation.OrderConfirmed, items, payload.ExtractedInformation.Reason)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"status": "success", "message": "Post-call data received"})
	case errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired):
		// Unknown or expired session: acknowledge so the provider stops
		// retrying a call nobody is waiting on.
		h.log.Warn().Err(err).Str("call_id", payload.RequestID).Msg("post-call webhook for unknown session")
		return c.JSON(fiber.Map{"status": "ignored", "message": "no session for call"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
