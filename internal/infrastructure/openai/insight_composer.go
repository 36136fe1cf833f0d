package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
)

var _ ports.InsightComposer = (*InsightComposer)(nil)

// InsightComposer writes the daily demand advice for a shopkeeper in Hindi,
// combining the weather forecast, upcoming festivals and current stock into
// one model call.
type InsightComposer struct {
	client *Client
	model  string
}

// NewInsightComposer builds the adapter. model is typically "gpt-4o-mini".
func NewInsightComposer(client *Client, model string) *InsightComposer {
	return &InsightComposer{client: client, model: model}
}

const insightSystemPrompt = "You are an expert for Indian grocery stores. You MUST reply with a valid JSON object " +
	"where all string values are in Hindi, except for 'action' and 'potential'."

const insightPromptFmt = `You are a Retail Expert for Indian kirana stores. Your goal is to provide actionable advice in HINDI.

**Data Provided:**
1.  **14-Day Weather Forecast:** %s
2.  **Upcoming Festivals:** %s
3.  **Current Inventory:** %s

**Your Tasks (in Hindi):**
1.  **Opportunities:** Identify 2 key sales opportunities, one for weather and one for festivals.
2.  **Recommendations:** Provide two separate lists of recommendations:
    - A list named 'weather_recommendations' with 2 products based ONLY on the weather.
    - A list named 'festival_recommendations' with 2-3 products based ONLY on the festivals.

**Output Format:**
Respond ONLY with a valid JSON object. The root object MUST have three keys: "opportunities", "weather_recommendations", and "festival_recommendations".
All string values MUST BE IN HINDI, except for "potential" and "action".
Each recommendation object has "action" ("Promote" or "Procure"), "item", "reason" and "potential" ("High", "Medium" or "Low").`

type insightRecommendation struct {
	Action    string `json:"action"`
	Item      string `json:"item"`
	Reason    string `json:"reason"`
	Potential string `json:"potential"`
}

type insightWire struct {
	Opportunities           []string                `json:"opportunities"`
	WeatherRecommendations  []insightRecommendation `json:"weather_recommendations"`
	FestivalRecommendations []insightRecommendation `json:"festival_recommendations"`
}

func (c *InsightComposer) Compose(ctx context.Context, input *dto.InsightInput) (string, error) {
	weatherSummary := input.WeatherSummary
	if weatherSummary == "" {
		weatherSummary = "मौसम का पूर्वानुमान अभी उपलब्ध नहीं है।"
	}

	festivalSummary := "अगले 90 दिनों में कोई बड़े त्योहार नहीं हैं।"
	if len(input.Festivals) > 0 {
		names := make([]string, 0, len(input.Festivals))
		for _, f := range input.Festivals {
			names = append(names, fmt.Sprintf("%s (%s)", f.Name, f.Date.Format("2006-01-02")))
		}
		festivalSummary = "आगामी प्रमुख त्योहार: " + strings.Join(names, ", ")
	}

	stockSummary := input.StockSummary
	if stockSummary == "" {
		stockSummary = "कोई आइटम स्टॉक में नहीं है।"
	}

	temp := 0.5
	content, err := c.client.chat(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: insightSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(insightPromptFmt, weatherSummary, festivalSummary, stockSummary)},
		},
		Temperature:    &temp,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	cleanJSON := extractJSON(content)
	if cleanJSON == "" {
		return "", fmt.Errorf("openai: no JSON object in insight response: %s", content)
	}
	var wire insightWire
	if err := json.Unmarshal([]byte(cleanJSON), &wire); err != nil {
		return "", fmt.Errorf("openai: parse insight JSON: %w", err)
	}

	var parts []string
	if len(wire.Opportunities) > 0 {
		parts = append(parts, "📈 **बिक्री के अवसर**")
		for _, opp := range wire.Opportunities {
			parts = append(parts, "• "+opp)
		}
	}
	if len(wire.WeatherRecommendations) > 0 {
		parts = append(parts, "\n🌦️ **मौसम आधारित सिफारिशें**")
		for _, rec := range wire.WeatherRecommendations {
			parts = append(parts, formatRecommendation(rec))
		}
	}
	if len(wire.FestivalRecommendations) > 0 {
		parts = append(parts, "\n🎉 **त्योहार आधारित सिफारिशें**")
		for _, rec := range wire.FestivalRecommendations {
			parts = append(parts, formatRecommendation(rec))
		}
	}
	return strings.Join(parts, "\n"), nil
}

func formatRecommendation(rec insightRecommendation) string {
	actionText := "📦 खरीदें"
	if rec.Action == "Promote" {
		actionText = "🟢 प्रचार करें"
	}
	return fmt.Sprintf("• **%s: %s** (संभावना: %s)\n  - *कारण: %s*", actionText, rec.Item, rec.Potential, rec.Reason)
}
