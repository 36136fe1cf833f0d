package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
)

var _ ports.ExtractionService = (*Extractor)(nil)

// Extractor turns message text, bill photos and voice notes into structured
// drafts using the chat, vision and Whisper endpoints.
type Extractor struct {
	client          *Client
	extractionModel string
	whisperModel    string
}

// NewExtractor builds the adapter. extractionModel is typically "gpt-4o",
// whisperModel "whisper-1".
func NewExtractor(client *Client, extractionModel, whisperModel string) *Extractor {
	return &Extractor{
		client:          client,
		extractionModel: extractionModel,
		whisperModel:    whisperModel,
	}
}

const extractionSystemPrompt = "You are a helpful assistant designed to extract structured transaction data from text. " +
	"Pay extreme attention to extracting the exact numerical values for quantities and prices. " +
	"Double-check all numbers against the input text."

// extractionPrompt asks for one of the four draft shapes. The numeric rules
// are deliberately repetitive: spelled-out amounts ("eighty-five", "पचासी")
// must come back as exact digits, and units must never be converted.
const extractionPrompt = `From the following text, extract the transaction details.
If a date is not explicitly mentioned, use today's date, which is %s.
Determine the 'type' as either 'sale', 'purchase', 'expense', or 'order_confirmation'. If ambiguous, default to 'expense'.

For all numerical extractions (quantity, selling_amount, cost_price_per_unit), you MUST extract the EXACT numerical value as provided in the input text. DO NOT perform any rounding, approximation, or alteration. If the input is "eighty-five" or "पचासी", the extracted value MUST be 85.0. VERIFY ALL NUMBERS TWICE.

For 'sale' transactions:
Extract 'items_sold', a list of objects. Each object has 'item_name' (string, in the language of the input text), 'quantity' (numeric, the EXACT quantity as spoken; 'half a kilo' is 0.5, 'two hundred fifty grams' is 250.0), 'unit' (string, English ONLY and EXACTLY as spoken, e.g. 'kg', 'g', 'pcs', 'packet', 'dozen', 'litre', 'ml'; do NOT convert units and NEVER use local-language units like 'किलो'), and 'selling_amount' (numeric, the EXACT monetary value with spelled-out numbers converted to digits).
If the unit is not explicitly mentioned, default to 'pcs'.
Example: {"date": "YYYY-MM-DD", "type": "sale", "items_sold": [{"item_name": "Item A", "quantity": 2.0, "unit": "kg", "selling_amount": 100.0}]}

For 'purchase' transactions:
Extract 'items_purchased', a list of objects with 'item_name', 'quantity', 'unit' (same rules as above) and 'cost_price_per_unit' (numeric, the EXACT monetary value).
If the unit is not explicitly mentioned, default to 'pcs'.
Example: {"date": "YYYY-MM-DD", "type": "purchase", "items_purchased": [{"item_name": "Item C", "quantity": 5.0, "unit": "kg", "cost_price_per_unit": 200.0}]}

For 'expense' transactions:
Extract the total 'amount' (numeric) and a brief 'description' (string) of the expense.
Example: {"date": "YYYY-MM-DD", "type": "expense", "amount": 50.00, "description": "Groceries"}

For 'order_confirmation' transactions:
Extract 'item_name' (string, in the language of the input text), 'quantity' (numeric, EXACT), 'unit' (string, English ONLY), and 'supplier_name' (string).
If the unit is not explicitly mentioned, default to 'pcs'.
Example: {"date": "YYYY-MM-DD", "type": "order_confirmation", "item_name": "Basmati Rice", "quantity": 10.0, "unit": "kg", "supplier_name": "Supplier A"}

Return the data as a JSON object in the matching shape above.

Text: "%s"`

// draftWire is the raw LLM shape. order_confirmation carries its single item
// at the top level, unlike the list-shaped sale and purchase drafts.
type draftWire struct {
	Type           string           `json:"type"`
	ItemsSold      []dto.DraftItem  `json:"items_sold"`
	ItemsPurchased []dto.DraftItem  `json:"items_purchased"`
	Amount         *decimal.Decimal `json:"amount"`
	Description    string           `json:"description"`
	ItemName       string           `json:"item_name"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Unit           string           `json:"unit"`
	SupplierName   string           `json:"supplier_name"`
}

func (e *Extractor) ParseText(ctx context.Context, text string, referenceDate time.Time) (*dto.TransactionDraft, error) {
	zero := 0.0
	content, err := e.client.chat(ctx, chatRequest{
		Model: e.extractionModel,
		Messages: []chatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(extractionPrompt, referenceDate.Format("2006-01-02"), text)},
		},
		Temperature:    &zero,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	cleanJSON := extractJSON(content)
	if cleanJSON == "" {
		return nil, fmt.Errorf("openai: no JSON object in extraction response: %s", content)
	}

	var wire draftWire
	if err := json.Unmarshal([]byte(cleanJSON), &wire); err != nil {
		return nil, fmt.Errorf("openai: parse extraction JSON: %w", err)
	}

	draft := &dto.TransactionDraft{
		Type:           dto.DraftType(wire.Type),
		ItemsSold:      wire.ItemsSold,
		ItemsPurchased: wire.ItemsPurchased,
		Amount:         wire.Amount,
		Description:    wire.Description,
		SupplierName:   wire.SupplierName,
	}
	if wire.ItemName != "" {
		draft.ItemsToOrder = []dto.DraftItem{{
			ItemName: wire.ItemName,
			Quantity: wire.Quantity,
			Unit:     wire.Unit,
		}}
	}
	return draft, nil
}

const billPromptFmt = `From this bill photo, first determine the primary language of the text on the bill, returning its ISO 639-1 code (e.g. 'en', 'hi', 'pa', 'gu', 'ta', 'te', 'bn', 'mr'); default to 'en' when ambiguous. Then determine whether it is a 'purchase' invoice (from a supplier) or a 'sale' receipt (to a customer); categorize as 'unknown' when ambiguous. Keywords like "invoice", "purchase", "supplier" indicate a purchase; "receipt", "sale", "customer" indicate a sale. If there is a price column on the far right and the items are typical shop inventory, interpret those prices as 'cost_price_per_unit' and classify the bill as a purchase. Extract each item's name, its precise quantity (fractional values like 0.5 allowed), its unit (e.g. kg, g, dozen, pcs, packet), the cost price per unit (purchase invoices) and the selling price per unit (sale receipts). If a total price covers a quantity (e.g. '500 g Rajma, ₹80'), divide to get the per-unit price (0.16 per gram in that example). Prefer the quantity and unit written next to the item name. When a field is missing assume quantity 1, unit "pcs", and null prices. Omit unclear items entirely. Respond strictly as a JSON object with top-level keys 'detected_language' (string), 'bill_type' ("purchase", "sale" or "unknown") and 'items', an array of objects with 'item_name' (string), 'quantity' (numeric), 'unit' (string), 'cost_price_per_unit' (numeric or null) and 'selling_price_per_unit' (numeric or null).`

// billItemWire uses the vision prompt's field names; selling prices arrive
// as selling_price_per_unit rather than the draft's selling_amount.
type billItemWire struct {
	ItemName            string           `json:"item_name"`
	Quantity            *decimal.Decimal `json:"quantity"`
	Unit                string           `json:"unit"`
	CostPricePerUnit    *decimal.Decimal `json:"cost_price_per_unit"`
	SellingPricePerUnit *decimal.Decimal `json:"selling_price_per_unit"`
}

type billWire struct {
	BillType         string         `json:"bill_type"`
	Items            []billItemWire `json:"items"`
	DetectedLanguage string         `json:"detected_language"`
}

func (e *Extractor) ParseBillImage(ctx context.Context, image []byte, mimeType string) (*dto.BillExtraction, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	content, err := e.client.chat(ctx, chatRequest{
		Model: e.extractionModel,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []map[string]any{
					{"type": "text", "text": billPromptFmt},
					{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
				},
			},
		},
		MaxTokens: 1000,
	})
	if err != nil {
		return nil, err
	}

	cleanJSON := extractJSON(content)
	if cleanJSON == "" {
		return nil, fmt.Errorf("openai: no JSON object in bill response: %s", content)
	}

	var wire billWire
	if err := json.Unmarshal([]byte(cleanJSON), &wire); err != nil {
		return nil, fmt.Errorf("openai: parse bill JSON: %w", err)
	}

	out := &dto.BillExtraction{
		BillType:         wire.BillType,
		DetectedLanguage: wire.DetectedLanguage,
	}
	for _, it := range wire.Items {
		out.Items = append(out.Items, dto.DraftItem{
			ItemName:         it.ItemName,
			Quantity:         it.Quantity,
			Unit:             it.Unit,
			CostPricePerUnit: it.CostPricePerUnit,
			SellingAmount:    it.SellingPricePerUnit,
		})
	}
	return out, nil
}

// verboseTranscription is the Whisper verbose_json response subset we use.
type verboseTranscription struct {
	Language string `json:"language"`
	Text     string `json:"text"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e *Extractor) TranscribeAudio(ctx context.Context, audio []byte, filename string) (*dto.Transcription, error) {
	if e.client.apiKey == "" {
		return nil, fmt.Errorf("openai: OPENAI_API_KEY not configured")
	}

	// First pass transcribes in the spoken language and reports what that
	// language is; the second pass translates the same audio to English.
	raw, err := e.postAudio(ctx, transcriptionsURL, audio, filename, "verbose_json")
	if err != nil {
		return nil, fmt.Errorf("openai: transcribe: %w", err)
	}
	var verbose verboseTranscription
	if err := json.Unmarshal(raw, &verbose); err != nil {
		return nil, fmt.Errorf("openai: parse transcription: %w", err)
	}
	if verbose.Error != nil {
		return nil, fmt.Errorf("openai: transcription error: %s", verbose.Error.Message)
	}

	english, err := e.postAudio(ctx, translationsURL, audio, filename, "text")
	if err != nil {
		return nil, fmt.Errorf("openai: translate audio: %w", err)
	}

	return &dto.Transcription{
		DetectedLanguage:   verbose.Language,
		OriginalText:       verbose.Text,
		EnglishTranslation: string(bytes.TrimSpace(english)),
	}, nil
}

// postAudio uploads the audio as multipart form data to a Whisper endpoint.
func (e *Extractor) postAudio(ctx context.Context, url string, audio []byte, filename, responseFmt string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("write audio: %w", err)
	}
	if err := w.WriteField("model", e.whisperModel); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	if err := w.WriteField("response_format", responseFmt); err != nil {
		return nil, fmt.Errorf("write response_format field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("build HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.client.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := e.client.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("timeout or cancellation: %w", ctx.Err())
		}
		return nil, fmt.Errorf("HTTP call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
