package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront/internal/coordinator/sagalog/sqlite"
	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/storefront/config"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/service"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/session"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx"
	"github.com/jcmexdev/storefront/internal/storefront/infra/httpx/middlewares"
)

const limiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerOptions{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.OTLPEndpoint,
			Environment: cfg.Environment,
			SampleRatio: cfg.SampleRatio,
		})
		if err != nil {
			slog.Error("failed to initialise tracer", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	sweeper := cron.New()

	var store cache.Cache
	if cfg.RedisAddr != "" {
		store = cache.NewRedisCache(cache.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.ServiceName,
		})
		if err := cache.Ping(ctx, store); err != nil {
			slog.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(store); err != nil {
				slog.Error("redis close error", "error", err)
			}
		}()
	} else {
		mem := cache.NewMemoryCache(cfg.ServiceName)
		store = mem
		if _, err := sweeper.AddFunc("@every 1m", func() {
			if n := mem.Sweep(); n > 0 {
				slog.Debug("expired sessions swept", "count", n)
			}
		}); err != nil {
			slog.Error("failed to schedule cache sweep", "error", err)
			os.Exit(1)
		}
		slog.Warn("REDIS_ADDR not set, sessions are kept in memory")
	}

	runs, closeRuns := openRunLog(cfg.CheckoutLogPath)
	defer closeRuns()

	services, err := backendServices(ctx, cfg, runs)
	if err != nil {
		slog.Error("failed to configure backend", "error", err)
		os.Exit(1)
	}

	limiter := middlewares.NewRateLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst)
	if _, err := sweeper.AddFunc("@every 1m", func() {
		limiter.Sweep(limiterIdle)
	}); err != nil {
		slog.Error("failed to schedule limiter sweep", "error", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	handler := httpx.NewHandler(services, cfg.ToastTTL)
	router := httpx.NewRouter(handler, httpx.RouterDeps{
		Sessions:          middlewares.NewSessions(session.NewCacheStore(store, cfg.SessionTTL), cfg.SessionTTL, cfg.CookieSecure),
		Metrics:           middlewares.NewMetrics(),
		AuthLimiter:       limiter,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(router, "storefront"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("storefront running", "addr", srv.Addr, "backend", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	slog.Info("storefront stopped")
}

// openRunLog opens the SQLite checkout log, or returns a nil repository when
// path is empty or the file cannot be opened.
func openRunLog(path string) (sagalog.Repository, func()) {
	if path == "" {
		slog.Warn("CHECKOUT_LOG_PATH empty, checkout runs are not recorded")
		return nil, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Error("checkout log directory unavailable, runs are not recorded", "path", path, "error", err)
		return nil, func() {}
	}
	repo, err := sqlite.Open(path)
	if err != nil {
		slog.Error("checkout log unavailable, runs are not recorded", "path", path, "error", err)
		return nil, func() {}
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			slog.Error("checkout log close error", "error", err)
		}
	}
}

func backendServices(ctx context.Context, cfg *config.Config, runs sagalog.Repository) (httpx.Services, error) {
	if cfg.MemoryBackend() {
		m := service.NewSeededMemoryBackend()
		m.PaymentLimit = cfg.PaymentLimitAmount()
		slog.Warn("using the in-memory backend with demo data")
		return httpx.Services{
			Products: m, Carts: m, Orders: m, Payments: m, Coupons: m, Accounts: m, Runs: runs,
		}, nil
	}

	client, err := service.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	if err != nil {
		return httpx.Services{}, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		slog.Warn("backend not reachable yet", "url", cfg.BackendURL, "error", err)
	}
	return httpx.Services{
		Products: service.NewProductClient(client),
		Carts:    service.NewCartClient(client),
		Orders:   service.NewOrderClient(client),
		Payments: service.NewPaymentClient(client),
		Coupons:  service.NewCouponClient(client),
		Accounts: service.NewAccountClient(client),
		Runs:     runs,
	}, nil
}
