package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"spendtrend/internal/ingest"
	"spendtrend/internal/log"
	"spendtrend/internal/middleware/ratelimit"
	"spendtrend/internal/middleware/security"
	"spendtrend/internal/middleware/trace"
	"spendtrend/internal/services"
	"spendtrend/internal/session"
)

const defaultMaxUploadBytes = 10 << 20

// Options configures a Server.
type Options struct {
	Addr           string
	MaxUploadBytes int64
	DefaultBudget  decimal.Decimal
	DefaultHorizon int
	Aliases        ingest.Aliases
	RateLimit      ratelimit.Config
	// TrustedProxies are CIDRs whose X-Forwarded-For headers are honored.
	TrustedProxies []string
	Logger         *log.Logger
}

type Server struct {
	http.Server

	sessions       *session.Store
	reports        *services.ReportService
	aliases        ingest.Aliases
	defaults       ParamDefaults
	maxUploadBytes int64

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	logger  *log.Logger

	stopCleanup  context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer wires the JSON API. The rate limiter's idle-client sweep runs
// until Shutdown.
func NewServer(opts Options, sessions *session.Store, reports *services.ReportService) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.Aliases == nil {
		opts.Aliases = ingest.DefaultAliases()
	}
	if opts.RateLimit.RequestsPerSecond <= 0 {
		opts.RateLimit = ratelimit.DefaultConfig()
	}

	resolver := security.NewClientIPResolver()
	for _, cidr := range opts.TrustedProxies {
		if err := resolver.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		sessions: sessions,
		reports:  reports,
		aliases:  opts.Aliases,
		defaults: ParamDefaults{
			Threshold: opts.DefaultBudget,
			Horizon:   opts.DefaultHorizon,
		},
		maxUploadBytes: opts.MaxUploadBytes,
		limiter:        ratelimit.NewLimiter(opts.RateLimit),
		tracer:         trace.NewMiddleware(logger, resolver.ExtractClientIP),
		logger:         logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/ledgers", s.handleUpload)
	mux.HandleFunc("GET /api/ledgers/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/ledgers/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/ledgers/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/ledgers/{id}/categories", s.handleCategories)
	mux.HandleFunc("GET /api/ledgers/{id}/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/ledgers/{id}/daily", s.handleDaily)
	mux.HandleFunc("GET /api/ledgers/{id}/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/ledgers/{id}/budget", s.handleBudget)
	mux.HandleFunc("GET /api/ledgers/{id}/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/ledgers/{id}/report", s.handleReport)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(resolver.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, please try again later").Write(w)
	})

	// trace -> rate limit -> security headers -> routes
	s.Handler = s.tracer.Middleware(limit(headers.Middleware(mux)))

	ctx, cancel := context.WithCancel(context.Background())
	s.stopCleanup = cancel
	go s.limiter.Run(ctx, 5*time.Minute)

	return s, nil
}

// Limiter exposes the rate limiter for introspection.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Metrics returns the request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.stopCleanup()
		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.InfoContext(ctx, "HTTP server stopped",
			log.FieldOperation, log.OpShutdown,
			"rate_limited", s.limiter.Rejected())
	})

	return shutdownErr
}
