package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alert-bridge/internal/broker"
	"alert-bridge/internal/config"
	"alert-bridge/internal/health"
	"alert-bridge/internal/httpserver"
	"alert-bridge/internal/logging"
	"alert-bridge/internal/orders"

	"github.com/rs/zerolog"
)

// shutdownTimeout leaves room for an order call that is already in flight.
const shutdownTimeout = broker.DefaultTimeout + 5*time.Second

func main() {
	startedAt := time.Now()
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(logging.Config{})
		bootLog.Fatal().Err(err).Msg("config")
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, FilePath: cfg.LogFile})

	baseURL := cfg.BybitBaseURL
	if baseURL == "" {
		baseURL = broker.BaseURLFor(cfg.BybitTestnet)
	}
	var adapter broker.Adapter
	if cfg.ExchangeDisabled {
		adapter = broker.NewDisabledAdapter()
		log.Warn().Msg("exchange disabled, alerts will be rejected")
	} else {
		adapter = broker.NewBybit(
			broker.Credentials{APIKey: cfg.BybitAPIKey, APISecret: cfg.BybitAPISecret, BaseURL: baseURL},
			broker.WithLogger(log.With().Str("component", "bybit").Logger()),
		)
	}

	orderSvc := orders.NewService(adapter, log.With().Str("component", "orders").Logger())
	router := httpserver.NewRouter(httpserver.RouterDeps{
		OrderHandler:     orders.NewHandler(orderSvc),
		HealthHandler:    health.NewHandler(adapter, startedAt, cfg.HTTPAddr, baseURL, !cfg.ExchangeDisabled),
		WebhookTokenHash: cfg.WebhookTokenHash,
		Logger:           log,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      broker.DefaultTimeout + 5*time.Second,
	}

	if cfg.WebhookTokenHash == "" {
		log.Warn().Msg("WEBHOOK_TOKEN_HASH not set, webhook is unauthenticated")
	}
	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("exchange", baseURL).
		Bool("testnet", cfg.BybitTestnet).
		Msg("server listening")

	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, srv, ln, log); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
	log.Info().Msg("server stopped")
}

// serve runs srv on ln until ctx is done, then waits for in-flight requests
// to finish before returning.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, log zerolog.Logger) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down, draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
