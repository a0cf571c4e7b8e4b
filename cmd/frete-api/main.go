// README: Entry point; loads config, builds the tariff table, wires services and starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"frete/internal/ai"
	"frete/internal/config"
	httptransport "frete/internal/http"
	"frete/internal/infra"
	"frete/internal/maps"
	"frete/internal/memo"
	"frete/internal/modules/pricing"
	"frete/internal/modules/session"
	"frete/internal/modules/tariff"
	"frete/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := loadTable(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("tariff table", zap.Error(err))
	}
	logger.Info("tariff table loaded",
		zap.String("source", cfg.Tariff.Source),
		zap.Int("entries", table.Len()),
		zap.Strings("skipped", table.Skipped()),
		zap.Times("collisions", table.Collisions()),
	)

	var (
		sessionStore session.Store
		routeStore   memo.Store
	)
	if cfg.Redis.Enabled {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		sessionStore = session.NewRedisStore(redisClient, cfg.Session.TTL)
		routeStore = memo.NewRedisStore(redisClient)
	} else {
		sessionStore = session.NewMemoryStore(cfg.Session.TTL)
		routeStore = memo.NewMemoryStore()
	}

	var provider maps.Provider
	if cfg.Maps.APIKey != "" {
		google, err := maps.NewGoogleProvider(cfg.Maps.APIKey, cfg.Maps.QPS, maps.WithTimeout(cfg.Maps.Timeout))
		if err != nil {
			logger.Fatal("maps provider", zap.Error(err))
		}
		provider = google
	} else {
		logger.Warn("FRETE_MAPS_API_KEY not set; quotes will carry the fixed fee only")
	}

	pricingSvc := pricing.NewService(decimal.NewFromFloat(cfg.Pricing.VehicleCapacityKg))
	quoteSvc := service.NewQuoteService(table, provider, pricingSvc, routeStore, cfg.Memo.RouteTTL, logger)
	quoteSvc.SetRouteTimeout(cfg.HTTP.Timeout)

	var textQuoter *service.TextQuoter
	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			logger.Fatal("gemini provider", zap.Error(err))
		}
		defer gemini.Close()
		textQuoter, err = service.NewTextQuoter(gemini, quoteSvc)
		if err != nil {
			logger.Fatal("text quoter", zap.Error(err))
		}
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Quotes:   quoteSvc,
		Text:     textQuoter,
		Sessions: sessionStore,
		Timeout:  cfg.HTTP.Timeout,
		Logger:   logger,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, logger)
	if err := server.Run(ctx); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

func loadTable(ctx context.Context, cfg config.Config, logger *zap.Logger) (*tariff.Table, error) {
	if cfg.Tariff.Source != tariff.SourcePostgres {
		return tariff.Load(ctx, cfg.Tariff.Source, nil)
	}

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	store := tariff.NewStore(db)
	if cfg.Tariff.Seed {
		n, err := store.SeedDefaults(ctx, tariff.DefaultRows())
		if err != nil {
			return nil, err
		}
		logger.Info("tariff rows seeded", zap.Int("inserted", n))
	}
	return tariff.Load(ctx, tariff.SourcePostgres, store)
}
