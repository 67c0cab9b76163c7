package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Priya8975/keyword-pager/internal/api"
	"github.com/Priya8975/keyword-pager/internal/config"
	"github.com/Priya8975/keyword-pager/internal/engine"
	"github.com/Priya8975/keyword-pager/internal/gateway"
	"github.com/Priya8975/keyword-pager/internal/metrics"
	"github.com/Priya8975/keyword-pager/internal/store"
	ws "github.com/Priya8975/keyword-pager/internal/websocket"
	"github.com/Priya8975/keyword-pager/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireSlack(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	keywords, err := store.Open(ctx, store.Options{
		Backend:     cfg.StoreBackend,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		KeyPrefix:   cfg.RedisKeyPrefix,
	})
	if err != nil {
		logger.Error("failed to open keyword store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer keywords.Close()
	logger.Info("keyword store ready", "backend", cfg.StoreBackend)

	slackGateway := gateway.NewSlack(gateway.Options{
		Token:       cfg.SlackBotToken,
		APIURL:      cfg.SlackAPIURL,
		MaxAttempts: cfg.NotifyMaxAttempts,
		BaseBackoff: cfg.NotifyBaseBackoff,
	}, logger)

	hub := ws.NewHub(cfg.WSOrigin, logger)

	// The gauge reads the pool lazily, so it can be built before the pool.
	var pool *worker.Pool
	promMetrics := metrics.New(func() int { return pool.QueueDepth() })

	sink := engine.MultiSink{hub, promMetrics}
	subscriptions := engine.NewSubscriptionManager(keywords, sink, logger)
	notifier := engine.NewNotifier(keywords, slackGateway, sink, logger)
	handler := engine.NewEventHandler(subscriptions, notifier, slackGateway, sink, logger)

	pool = worker.NewPool(cfg.NumWorkers, cfg.QueueSize, cfg.EventTimeout, handler, logger)
	// Workers outlive the signal context so queued events drain on shutdown.
	pool.Start(context.WithoutCancel(ctx))

	router := api.NewRouter(api.Deps{
		SigningSecret: cfg.SlackSigningSecret,
		StoreBackend:  cfg.StoreBackend,
		Keywords:      keywords,
		Queue:         pool,
		QueueDepth:    pool.QueueDepth,
		WebSocket:     hub.HandleWebSocket,
		WSClients:     hub.ClientCount,
		Metrics:       promMetrics.Handler(),
		Logger:        logger,
	})
	if cfg.SlackSigningSecret == "" {
		logger.Warn("SLACK_SIGNING_SECRET not set, request signatures are not verified")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		pool.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
