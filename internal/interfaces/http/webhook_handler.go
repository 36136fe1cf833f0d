package http

import (
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/gofiber/fiber/v2"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/application/ledger"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// WebhookHandler receives the inbound WhatsApp webhook from Twilio and
// answers with TwiML.
type WebhookHandler struct {
	processor *ledger.InboundProcessor
	log       *logger.Logger
}

func NewWebhookHandler(processor *ledger.InboundProcessor, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{processor: processor, log: log}
}

// Receive handles POST /webhook/whatsapp.
//
// Twilio posts application/x-www-form-urlencoded with From, Body and, for
// media messages, MediaUrl0 / MediaContentType0. The reply rides back in
// the TwiML response body.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	msg := dto.InboundMessage{
		ActorID:          c.FormValue("From"),
		Body:             c.FormValue("Body"),
		MediaURL:         c.FormValue("MediaUrl0"),
		MediaContentType: c.FormValue("MediaContentType0"),
	}

	h.log.Info().
		Str("from", msg.ActorID).
		Str("media_type", msg.MediaContentType).
		Msg("inbound whatsapp message")

	reply := h.processor.ProcessInbound(c.Context(), msg, time.Now())

	xml, err := twiml(reply)
	if err != nil {
		h.log.Error().Err(err).Msg("twiml serialization failed")
		return c.Status(fiber.StatusInternalServerError).SendString("")
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.SendString(xml)
}

// twiml renders the reply fragments as a MessagingResponse document. An
// empty reply yields an empty <Response/> so Twilio sends nothing.
func twiml(reply *dto.Reply) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	response := doc.CreateElement("Response")
	if reply != nil && !reply.Empty() {
		message := response.CreateElement("Message")
		message.SetText(strings.Join(reply.Fragments, "\n\n"))
	}
	return doc.WriteToString()
}
