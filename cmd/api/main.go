package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/gupta-labs/khata-sahayak/internal/application/calls"
	"github.com/gupta-labs/khata-sahayak/internal/application/insights"
	"github.com/gupta-labs/khata-sahayak/internal/application/ledger"
	"github.com/gupta-labs/khata-sahayak/internal/application/stock"
	"github.com/gupta-labs/khata-sahayak/internal/application/supplier"
	"github.com/gupta-labs/khata-sahayak/internal/infrastructure/omnidim"
	infraopenai "github.com/gupta-labs/khata-sahayak/internal/infrastructure/openai"
	"github.com/gupta-labs/khata-sahayak/internal/infrastructure/postgres"
	infratwilio "github.com/gupta-labs/khata-sahayak/internal/infrastructure/twilio"
	"github.com/gupta-labs/khata-sahayak/internal/infrastructure/weather"
	httpRouter "github.com/gupta-labs/khata-sahayak/internal/interfaces/http"
	"github.com/gupta-labs/khata-sahayak/pkg/config"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// callSessionTTL bounds how long an unanswered supplier call stays open.
const callSessionTTL = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	stockRepo := postgres.NewStockRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)

	// outbound adapters
	openaiClient := infraopenai.NewClient(cfg.OpenAI.APIKey)
	extractor := infraopenai.NewExtractor(openaiClient, cfg.OpenAI.ExtractionModel, cfg.OpenAI.WhisperModel)
	translator := infraopenai.NewTranslator(openaiClient, cfg.OpenAI.TranslationModel)
	composer := infraopenai.NewInsightComposer(openaiClient, cfg.OpenAI.InsightModel)
	notifier := infratwilio.NewWhatsAppSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppNumber, log)
	fetcher := infratwilio.NewMediaFetcher(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, log)
	dialer := omnidim.NewDispatcher(cfg.OmniDim.APIKey, cfg.OmniDim.AgentID, cfg.OmniDim.FromNumberID, log)
	forecaster := weather.NewOpenMeteo()
	festivals := weather.NewStaticFestivals()

	// application core
	catalog := stock.NewCatalog(stockRepo, log, cfg.Stock.RejectOversell)
	matcher := stock.NewMatcher(catalog, translator, cfg.Shop.CatalogLanguage, log)
	prices := supplier.NewPriceIndex(supplier.DefaultSuppliers(), cfg.Suppliers.PrimaryPhone)

	// the call service both consumes the reconciler (post-call purchases)
	// and serves it as dispatcher, so the reconciler is rebuilt once the
	// service exists; both share the same catalog and repositories
	sessionStore := calls.NewStore(callSessionTTL, log)
	baseReconciler := ledger.NewReconciler(matcher, catalog, txRepo, prices, nil, log)
	callService := calls.NewService(dialer, sessionStore, baseReconciler, prices, notifier, log)
	reconciler := ledger.NewReconciler(matcher, catalog, txRepo, prices, callService, log)

	inbound := ledger.NewInboundProcessor(reconciler, extractor, fetcher, notifier, log)

	insightPass := insights.NewPass(stockRepo, catalog, prices, composer, forecaster, festivals, notifier, insights.Config{
		Latitude:  cfg.Shop.Latitude,
		Longitude: cfg.Shop.Longitude,
		Disabled:  cfg.Insights.Disabled,
	}, log)

	go sessionStore.RunJanitor(ctx, time.Minute)

	// daily insight sweep, seconds-resolution cron in the shop's timezone
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.UTC
	}
	scheduler := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
	if _, err := scheduler.AddFunc(cfg.Insights.Cron, func() { insightPass.Run(ctx) }); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Insights.Cron).Msg("schedule insight pass")
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Inbound:     inbound,
		CallService: callService,
		StockRepo:   stockRepo,
		TxRepo:      txRepo,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
