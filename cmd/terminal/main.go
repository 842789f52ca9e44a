package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/api"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/cart"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/catalog"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/clock"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/config"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/events"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/logging"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/metrics"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/payment"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/recorder"
	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New("pos-terminal", cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logging.Sync(logger)

	m := metrics.New(prometheus.DefaultRegisterer)
	clk := clock.NewSystem()

	// Session registry: redis when configured, in-memory otherwise.
	var registry session.Registry
	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store := session.NewRedisStore(client, cfg.PublicURL, clk, logger)
		defer store.Close()
		registry = store
		logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
	default:
		store := session.NewMemoryStore(cfg.PublicURL, clk, logger)
		defer store.Close()
		registry = store
	}

	catalogClient := catalog.NewClient(cfg.BackendURL, cfg.RequestTimeout, logger)
	posCart := cart.New(catalogClient, logger)
	rec := recorder.New(cfg.BackendURL, cfg.RequestTimeout, cfg.SaleNIT, cfg.SaleUserID, logger)

	var publisher payment.SalePublisher
	if len(cfg.KafkaBrokers) > 0 {
		p := events.NewPublisher(cfg.KafkaBrokers, cfg.Currency, logger)
		defer p.Close()
		publisher = p
		logger.Info("sale events enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	orch := payment.NewOrchestrator(
		posCart,
		registry,
		rec,
		payment.NewSimulatedAuthorizer(cfg.CardApproveRate),
		publisher,
		m,
		payment.Config{
			PollInterval: cfg.PollInterval,
			SessionTTL:   cfg.SessionTTL,
			Currency:     cfg.Currency,
		},
		logger,
	)

	router := api.NewRouter(api.Handlers{
		Cart:     api.NewCartHandler(posCart, cfg.RequestTimeout, logger),
		Products: api.NewProductHandler(catalogClient, cfg.RequestTimeout, logger),
		Checkout: api.NewCheckoutHandler(orch, cfg.RequestTimeout, logger),
		QR:       api.NewQRHandler(registry, cfg.RequestTimeout, cfg.Currency, cfg.SessionTTL, logger),
	}, m, logger)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("terminal listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("backend", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	// Abandon any in-flight QR polling before the server stops.
	orch.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
