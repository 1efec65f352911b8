package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	_ "github.com/lib/pq"

	"github.com/robux-town/order-bot/internal/bot"
	"github.com/robux-town/order-bot/internal/database"
	"github.com/robux-town/order-bot/internal/domain"
	"github.com/robux-town/order-bot/internal/health"
	"github.com/robux-town/order-bot/internal/idempotency"
	"github.com/robux-town/order-bot/internal/lifecycle"
	"github.com/robux-town/order-bot/internal/middleware"
	"github.com/robux-town/order-bot/internal/ratelimit"
	"github.com/robux-town/order-bot/internal/repository"
	"github.com/robux-town/order-bot/internal/user"
	"github.com/robux-town/order-bot/internal/usercache"
	"github.com/robux-town/order-bot/internal/wizard"
	"github.com/robux-town/order-bot/pkg/config"
	"github.com/robux-town/order-bot/pkg/graceful"
	"github.com/robux-town/order-bot/pkg/logger"
	"github.com/robux-town/order-bot/pkg/metrics"
	pkgredis "github.com/robux-town/order-bot/pkg/redis"
)

const migrationsDir = "migrations"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)

	log.Info("starting order bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("http_port", cfg.Server.Port),
	)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			log.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := sqlx.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	migrator := database.NewMigrator(db.DB, log)
	if err := migrator.ApplyDir(ctx, migrationsDir); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := pkgredis.New(ctx, pkgredis.Config{
		Addr:            cfg.Redis.Addr,
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		IdleTimeout:     cfg.Redis.IdleTimeout,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
	})
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}

	orderRepo := repository.NewOrderRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	userCache := usercache.NewCache(redisClient.Client)
	userService := user.NewService(userRepo, userCache, log)

	wizardCfg := buildWizardConfig(cfg.Commerce)
	sessionStorage := wizard.NewRedisStorage(redisClient.Client, log, cfg.Commerce.SessionTTL*2)
	engine := wizard.NewEngine(wizardCfg, sessionStorage, orderRepo, log, redisClient.Client)

	idempotencyStore := idempotency.NewRedisStore(redisClient.Client, log)
	idempotencyManager := idempotency.NewManager(idempotencyStore, log)

	rules := ratelimit.NewRules(cfg.RateLimit)
	limiter := ratelimit.NewRedisLimiter(redisClient.Client, log)
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, rules, log)

	b, err := bot.New(*cfg, log, engine, orderRepo, userService, idempotencyManager, rateLimitMw)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		os.Exit(1)
	}

	cleaner := wizard.NewCleaner(sessionStorage, b, log, cfg.Commerce.SessionTTL, cfg.Commerce.CleanupInterval)
	go cleaner.Run(ctx)

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))

	opsServer := newOpsServer(ctx, cfg, log, checker, sessionStorage)

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram-bot", func(ctx context.Context) error {
		b.Stop()
		return nil
	})
	shutdown.Register("database", func(ctx context.Context) error {
		return db.Close()
	})
	shutdown.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	go b.Start()

	if err := opsServer.ListenAndServe(ctx); err != nil {
		log.Error("ops server stopped with error", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("order bot stopped")
}

func buildWizardConfig(commerce config.CommerceConfig) *wizard.Config {
	return &wizard.Config{
		MinAmount:            commerce.MinAmount,
		Rate:                 decimal.NewFromFloat(commerce.RatePerThousand),
		EnebaLink:            commerce.EnebaLink,
		G2ALink:              commerce.G2ALink,
		GiftcardInstructions: commerce.GiftcardInstructions,
		CoinAddresses: map[domain.Coin]string{
			domain.CoinBitcoin:  commerce.Crypto.BTC,
			domain.CoinLitecoin: commerce.Crypto.LTC,
			domain.CoinEthereum: commerce.Crypto.ETH,
			domain.CoinSolana:   commerce.Crypto.SOL,
			domain.CoinTether:   commerce.Crypto.USDT,
		},
	}
}

func newOpsServer(ctx context.Context, cfg *config.Config, log *slog.Logger, checker *health.Checker, storage wizard.Storage) *graceful.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, result := range results {
			if result != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				if err := metrics.UpdateActiveSessions(refreshCtx, storage); err != nil {
					log.Warn("failed to refresh session gauge", slog.Any("error", err))
				}
				cancel()
			}
		}
	}()

	handler := logger.Middleware(middleware.New(log)(mux))

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: handler,
	}

	return graceful.NewServer(log, srv, cfg.Server.ShutdownTimeout)
}
