package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/nexstore/storefront/internal/apiclient"
	"github.com/nexstore/storefront/internal/cache"
	"github.com/nexstore/storefront/internal/config"
	h "github.com/nexstore/storefront/internal/http"
	"github.com/nexstore/storefront/internal/mutation"
	"github.com/nexstore/storefront/internal/service"
	"github.com/nexstore/storefront/pkg/logger"
	"github.com/nexstore/storefront/pkg/tracing"
)

const serviceName = "storefront"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Env: cfg.Env})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(ctx, tracing.Config{
			ServiceName: serviceName,
			Env:         cfg.Env,
			Endpoint:    cfg.Tracing.Endpoint,
		})
		if err != nil {
			zl.Fatal("failed to init tracer", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				zl.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	var cartCache cache.CartViewCache = cache.NopCache{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			zl.Warn("redis unavailable, cart views will not be cached", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			cartCache = cache.NewRedisCache(rdb, cfg.Redis.TTL)
		}
		cancel()
	}

	api := apiclient.NewClient(apiclient.Config{
		BaseURL: cfg.API.URL,
		Timeout: cfg.API.Timeout,
	}, zl.Named("apiclient"))

	tracker := mutation.NewTracker()
	cartService := service.NewCartService(api, api, cartCache, tracker, zl.Named("cart"))
	orderService := service.NewOrderService(api, zl.Named("orders"))
	authService := service.NewAuthService(api, tracker, zl.Named("auth"))

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		CookieSecure:   cfg.Cookie.Secure,
	}, cartService, orderService, authService, zl.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("storefront starting", zap.String("port", cfg.HTTP.Port), zap.String("api_url", cfg.API.URL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	zl.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}
