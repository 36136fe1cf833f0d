package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
)

var _ ports.TranslationService = (*Translator)(nil)

// Translator translates item names into the catalog language.
type Translator struct {
	client *Client
	model  string
}

// NewTranslator builds the adapter. model is typically "gpt-3.5-turbo-0125".
func NewTranslator(client *Client, model string) *Translator {
	return &Translator{client: client, model: model}
}

// languageNames spells out the target for the prompt; the model follows a
// language name more reliably than a bare ISO code.
var languageNames = map[string]string{
	"hi": "Hindi",
	"en": "English",
	"gu": "Gujarati",
	"te": "Telugu",
	"bn": "Bengali",
	"mr": "Marathi",
	"pa": "Punjabi",
	"ta": "Tamil",
}

func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	target := languageNames[targetLanguage]
	if target == "" {
		target = targetLanguage
	}

	zero := 0.0
	prompt := fmt.Sprintf("Translate the following text into %s. Respond only with the translated text.\n\nText: %s", target, text)
	content, err := t.client.chat(ctx, chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant that translates text."},
			{Role: "user", Content: prompt},
		},
		Temperature: &zero,
		MaxTokens:   100,
	})
	if err != nil {
		return "", err
	}
	translated := strings.TrimSpace(content)
	if translated == "" {
		return "", fmt.Errorf("openai: empty translation for %q", text)
	}
	return translated, nil
}
