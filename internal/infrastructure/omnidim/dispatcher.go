// Package omnidim places outbound supplier calls through the OmniDimension
// voice-agent API.
package omnidim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/application/calls"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

var _ calls.Dialer = (*Dispatcher)(nil)

const dispatchURL = "https://backend.omnidim.io/api/v1/calls/dispatch"

// Dispatcher dispatches an agent-handled voice call carrying the order as
// call context so the agent can read it back to the supplier.
type Dispatcher struct {
	apiKey       string
	agentID      int
	fromNumberID int
	httpClient   *http.Client
	log          *logger.Logger
}

func NewDispatcher(apiKey string, agentID, fromNumberID int, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		apiKey:       apiKey,
		agentID:      agentID,
		fromNumberID: fromNumberID,
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		log:          log,
	}
}

type dispatchRequest struct {
	AgentID      int         `json:"agent_id"`
	ToNumber     string      `json:"to_number"`
	FromNumberID int         `json:"from_number_id"`
	CallContext  callContext `json:"call_context"`
}

type callContext struct {
	OrderDetails string `json:"order_details"`
	SupplierName string `json:"supplier_name"`
	UserID       string `json:"user_id"`
}

type dispatchResponse struct {
	JSON struct {
		Success   bool   `json:"success"`
		RequestID string `json:"requestId"`
	} `json:"json"`
	Error string `json:"error"`
}

// Dispatch places the call and returns the provider's request ID, which keys
// the call session until the post-call webhook lands.
func (d *Dispatcher) Dispatch(ctx context.Context, phone, orderDetails, supplierName, actorID string) (string, error) {
	if d.apiKey == "" || d.agentID == 0 || d.fromNumberID == 0 {
		return "", fmt.Errorf("omnidim: missing OMNIDIM_API_KEY, OMNIDIM_AGENT_ID or OMNIDIM_FROM_NUMBER_ID")
	}

	payload := dispatchRequest{
		AgentID:      d.agentID,
		ToNumber:     phone,
		FromNumberID: d.fromNumberID,
		CallContext: callContext{
			OrderDetails: orderDetails,
			SupplierName: supplierName,
			UserID:       actorID,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("omnidim: serialize dispatch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dispatchURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("omnidim: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("omnidim: dispatch call: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("omnidim: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("omnidim: dispatch HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var dispatchResp dispatchResponse
	if err := json.Unmarshal(rawBody, &dispatchResp); err != nil {
		return "", fmt.Errorf("omnidim: deserialize response: %w", err)
	}
	if !dispatchResp.JSON.Success {
		return "", fmt.Errorf("omnidim: dispatch rejected: %s", dispatchResp.Error)
	}

	d.log.Info().
		Str("request_id", dispatchResp.JSON.RequestID).
		Str("supplier", supplierName).
		Msg("outbound supplier call dispatched")
	return dispatchResp.JSON.RequestID, nil
}
