// Package http serves the chat webhook, the companion app JSON API and
// the operational endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"warikan/internal/bot"
	"warikan/internal/core"
	applog "warikan/internal/log"
	"warikan/internal/metrics"
	"warikan/internal/middleware/ratelimit"
	"warikan/internal/middleware/security"
	"warikan/internal/middleware/trace"
)

type (
	// Dispatcher answers one chat message.
	Dispatcher interface {
		Dispatch(ctx context.Context, text string) (bot.Reply, error)
	}

	// Replier sends a text reply on the chat platform.
	Replier interface {
		Reply(ctx context.Context, replyToken, text string) error
	}

	// PaymentLedger is the advance-payment surface used by the JSON API.
	PaymentLedger interface {
		Add(ctx context.Context, date time.Time, payer core.Payer, amount int64, memo string) (core.AdvancePayment, error)
		Delete(ctx context.Context, id string) error
		FindByYearMonth(ctx context.Context, year, month int) ([]core.AdvancePayment, error)
		Today() time.Time
	}
)

// Options wires the server's collaborators. Dispatcher and Payments are
// required; a nil Replier disables chat replies and a nil Settler leaves
// card totals out of the settlement endpoint.
type Options struct {
	Addr          string
	Dispatcher    Dispatcher
	Replier       Replier
	ChannelSecret string
	Payments      PaymentLedger
	Settler       bot.Settler
	// Ready reports backend readiness for /readyz.
	Ready     func(ctx context.Context) error
	Logger    *applog.Logger
	RateLimit ratelimit.Config
	// TrustedProxies are CIDRs, besides loopback and private ranges, whose
	// forwarding headers are honoured.
	TrustedProxies []string
}

type Server struct {
	http.Server
	dispatcher    Dispatcher
	replier       Replier
	channelSecret string
	payments      PaymentLedger
	settler       bot.Settler
	ready         func(ctx context.Context) error

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}
	if opts.RateLimit.RequestsPerMinute == 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}

	s := &Server{
		dispatcher:    opts.Dispatcher,
		replier:       opts.Replier,
		channelSecret: opts.ChannelSecret,
		payments:      opts.Payments,
		settler:       opts.Settler,
		ready:         opts.Ready,
		limiter:       ratelimit.NewLimiter(opts.RateLimit),
		detector:      security.NewDetector(),
	}

	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			opts.Logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	// Webhook calls all arrive from the platform's few addresses, so only
	// the companion API is throttled per client.
	mux.HandleFunc("POST /webhook", s.handleWebhook)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/advance-payments", s.handleListPayments)
	api.HandleFunc("POST /api/advance-payments", s.handleCreatePayment)
	api.HandleFunc("DELETE /api/advance-payments/{id}", s.handleDeletePayment)
	api.HandleFunc("GET /api/settlement", s.handleSettlement)
	mux.Handle("/api/", s.limiter.Middleware(s.detector.ExtractClientIP, nil)(api))

	var handler http.Handler = mux
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and the limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			slog.WarnContext(ctx, "Readiness check failed", "error", err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
