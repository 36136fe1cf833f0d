// Package twilio implements outbound WhatsApp delivery and webhook media
// download against the Twilio REST API.
package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

var _ ports.NotificationTransport = (*WhatsAppSender)(nil)

// WhatsAppSender delivers outbound messages through the Twilio Messages API.
type WhatsAppSender struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
	log        *logger.Logger
}

// NewWhatsAppSender builds the transport. fromNumber carries the
// "whatsapp:+14155238886" form Twilio expects.
func NewWhatsAppSender(accountSID, authToken, fromNumber string, log *logger.Logger) *WhatsAppSender {
	return &WhatsAppSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// Send posts one message. Sends addressed to the bot's own number are
// silently dropped to avoid echo loops.
func (s *WhatsAppSender) Send(ctx context.Context, actorID, text string) error {
	if actorID == s.fromNumber {
		s.log.Debug().Str("to", actorID).Msg("skipping message to self")
		return nil
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.accountSID)
	form := url.Values{}
	form.Set("To", actorID)
	form.Set("From", s.fromNumber)
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: build request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("twilio: send message HTTP %d: %s", resp.StatusCode, string(body))
	}

	s.log.Debug().Str("to", actorID).Msg("whatsapp message sent")
	return nil
}
