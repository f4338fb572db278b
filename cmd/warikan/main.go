package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"warikan/internal/backend"
	"warikan/internal/bot"
	"warikan/internal/cli"
	"warikan/internal/config"
	apphttp "warikan/internal/http"
	"warikan/internal/line"
	applog "warikan/internal/log"
	"warikan/internal/services"
	"warikan/internal/zaim"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentApp)
	loc := cfg.Location()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}
	}()

	payments := services.NewAdvancePaymentService(result.Backend, services.WithLocation(loc))

	dispatcherOpts := []bot.Option{
		bot.WithWebAppURL(cfg.WebAppURL),
		bot.WithLocation(loc),
	}
	settler := newSettler(cfg, logger)
	if settler != nil {
		dispatcherOpts = append(dispatcherOpts, bot.WithSettler(settler))
	}

	opts := apphttp.Options{
		Addr:           ":" + cfg.Port,
		Dispatcher:     bot.NewDispatcher(payments, dispatcherOpts...),
		ChannelSecret:  cfg.LineChannelSecret,
		Payments:       payments,
		Logger:         logger.WithComponent(applog.ComponentHTTP),
		TrustedProxies: cfg.TrustedProxies,
	}
	if settler != nil {
		opts.Settler = settler
	}
	if p, ok := result.Backend.(pinger); ok {
		opts.Ready = p.Ping
	}

	replier, err := line.NewClient(cfg.LineAPIBaseURL, cfg.LineChannelAccessToken,
		line.WithHTTPClient(&http.Client{Timeout: cfg.HTTPClientTimeout}))
	if err != nil {
		logger.Warn("Chat replies disabled", applog.FieldError, err)
	} else {
		opts.Replier = replier
	}
	if cfg.LineChannelSecret == "" {
		logger.Warn("LINE_CHANNEL_SECRET not set, webhook signatures are not verified")
	}

	srv := apphttp.NewServer(opts)
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting warikan server", "port", cfg.Port, "backend", cfg.DataBackend, "ledger_enabled", settler != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// newSettler wires the Zaim ledger, or returns nil when credentials are
// missing so card queries answer with an error instead.
func newSettler(cfg *config.Config, logger *applog.Logger) *services.CardSettlementService {
	if !cfg.ZaimConfigured() {
		logger.Warn("Zaim credentials not configured, card settlement disabled")
		return nil
	}
	client, err := zaim.NewClient(cfg.ZaimBaseURL, zaim.Credentials{
		ConsumerKey:       cfg.ZaimConsumerKey,
		ConsumerSecret:    cfg.ZaimConsumerSecret,
		AccessToken:       cfg.ZaimAccessToken,
		AccessTokenSecret: cfg.ZaimAccessTokenSecret,
	}, zaim.WithHTTPClient(&http.Client{Timeout: cfg.HTTPClientTimeout}))
	if err != nil {
		logger.Error("Failed to initialize Zaim client", applog.FieldError, err)
		return nil
	}
	resolver := services.NewCreditCardResolver(client, cfg.CardNameKeywords)
	return services.NewCardSettlementService(services.NewCachingAmounter(resolver, 6*time.Hour, cfg.Location()))
}
