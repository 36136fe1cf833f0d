// Package ports declares the outbound interfaces the application layer
// depends on. Infrastructure adapters implement them.
package ports

import (
	"context"
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
)

// ExtractionService turns raw message content into structured drafts.
type ExtractionService interface {
	ParseText(ctx context.Context, text string, referenceDate time.Time) (*dto.TransactionDraft, error)
	ParseBillImage(ctx context.Context, image []byte, mimeType string) (*dto.BillExtraction, error)
	TranscribeAudio(ctx context.Context, audio []byte, filename string) (*dto.Transcription, error)
}

// TranslationService translates free text into a target language code.
type TranslationService interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// NotificationTransport delivers an outbound message to an actor.
// Best effort; callers log failures and move on.
type NotificationTransport interface {
	Send(ctx context.Context, actorID, text string) error
}

// CallDispatcher places an outbound voice call to a supplier with an order.
type CallDispatcher interface {
	Initiate(ctx context.Context, phone, orderPayload, supplierName, actorID string) error
}

// InsightComposer writes the daily advisory message from assembled inputs.
type InsightComposer interface {
	Compose(ctx context.Context, input *dto.InsightInput) (string, error)
}

// WeatherService summarizes the forecast for the shop's location.
type WeatherService interface {
	ForecastSummary(ctx context.Context, latitude, longitude float64) (string, error)
}

// FestivalCalendar lists festivals within the planning horizon.
type FestivalCalendar interface {
	Upcoming(now time.Time, horizonDays int) []dto.Festival
}

// MediaFetcher downloads webhook media (voice notes, bill photos).
// Implementations retry transient failures before giving up.
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) (content []byte, contentType string, err error)
}
