// Package insights builds the daily advisory message each shopkeeper gets:
// LLM-composed demand advice from weather and festivals, plus a low-stock
// alert with reorder suggestions from the supplier price list.
package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
	"github.com/gupta-labs/khata-sahayak/internal/application/stock"
	"github.com/gupta-labs/khata-sahayak/internal/application/supplier"
	"github.com/gupta-labs/khata-sahayak/internal/domain/repository"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// festivalHorizonDays is how far ahead festival demand is planned.
const festivalHorizonDays = 90

// Config locates the shop for the weather forecast.
type Config struct {
	Latitude  float64
	Longitude float64
	Disabled  bool
}

// Pass runs one insight sweep over every shopkeeper with stock.
type Pass struct {
	stockRepo repository.StockRepository
	catalog   *stock.Catalog
	prices    *supplier.PriceIndex
	composer  ports.InsightComposer
	weather   ports.WeatherService
	festivals ports.FestivalCalendar
	notifier  ports.NotificationTransport
	cfg       Config
	log       *logger.Logger
}

func NewPass(stockRepo repository.StockRepository, catalog *stock.Catalog, prices *supplier.PriceIndex, composer ports.InsightComposer, weather ports.WeatherService, festivals ports.FestivalCalendar, notifier ports.NotificationTransport, cfg Config, log *logger.Logger) *Pass {
	return &Pass{
		stockRepo: stockRepo,
		catalog:   catalog,
		prices:    prices,
		composer:  composer,
		weather:   weather,
		festivals: festivals,
		notifier:  notifier,
		cfg:       cfg,
		log:       log,
	}
}

// Run iterates all actors with stock. One actor's failure is logged and
// never blocks the rest of the sweep.
func (p *Pass) Run(ctx context.Context) {
	if p.cfg.Disabled {
		p.log.Info().Msg("insight pass disabled by configuration")
		return
	}

	actors, err := p.stockRepo.ActorsWithStock(ctx)
	if err != nil {
		p.log.Error().Err(err).Msg("insight pass could not list actors")
		return
	}

	// global inputs are fetched once per sweep, not per actor
	weatherSummary, err := p.weather.ForecastSummary(ctx, p.cfg.Latitude, p.cfg.Longitude)
	if err != nil {
		p.log.Warn().Err(err).Msg("weather forecast unavailable for insight pass")
		weatherSummary = ""
	}
	festivals := p.festivals.Upcoming(time.Now(), festivalHorizonDays)

	for _, actorID := range actors {
		if err := p.runForActor(ctx, actorID, weatherSummary, festivals); err != nil {
			p.log.Error().Err(err).Str("actor_id", actorID).Msg("insight generation failed for actor")
		}
	}
}

func (p *Pass) runForActor(ctx context.Context, actorID, weatherSummary string, festivals []dto.Festival) error {
	items, err := p.catalog.Lookup(ctx, actorID)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, strings.ToLower(it.ItemName))
	}

	low, err := p.catalog.LowStock(ctx, actorID)
	if err != nil {
		return err
	}

	var lowLines, reorderLines []string
	for _, it := range low {
		lowLines = append(lowLines, fmt.Sprintf("• **%s**: केवल %s %s बचा है।", it.ItemName, it.Quantity.String(), it.Unit))
		if q := p.prices.Cheapest(it.ItemName, it.Unit); q != nil {
			reorderLines = append(reorderLines, fmt.Sprintf("• %s: %s @ ₹%s/%s", it.ItemName, q.SupplierName, q.PricePerUnit.StringFixed(2), q.Unit))
		}
	}

	input := &dto.InsightInput{
		ActorID:        actorID,
		StockSummary:   strings.Join(names, ", "),
		LowStockLines:  lowLines,
		ReorderLines:   reorderLines,
		WeatherSummary: weatherSummary,
		Festivals:      festivals,
	}

	advice, err := p.composer.Compose(ctx, input)
	if err != nil {
		p.log.Warn().Err(err).Str("actor_id", actorID).Msg("insight composition failed, sending stock alerts only")
		advice = ""
	}

	var parts []string
	if advice != "" {
		parts = append(parts, advice)
	}
	if len(lowLines) > 0 {
		section := []string{"\n⚠️ **कम स्टॉक की चेतावनी!**"}
		section = append(section, lowLines...)
		if len(reorderLines) > 0 {
			section = append(section, "\n📞 **सबसे सस्ते आपूर्तिकर्ता**")
			section = append(section, reorderLines...)
		}
		section = append(section, "*इन वस्तुओं को जल्द ही फिर से ऑर्डर करने पर विचार करें।*")
		parts = append(parts, strings.Join(section, "\n"))
	}

	if len(parts) == 0 {
		p.log.Debug().Str("actor_id", actorID).Msg("no actionable insights for actor")
		return nil
	}
	return p.notifier.Send(ctx, actorID, strings.Join(parts, "\n"))
}
