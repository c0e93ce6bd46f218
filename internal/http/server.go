package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/recovery"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// maxRecentLimit bounds ?limit= on the recent list.
const maxRecentLimit = 100

// Options configures a Server.
type Options struct {
	Addr               string
	AllowedOrigins     []string
	TrustedProxies     []string // CIDRs whose X-Forwarded-For is honoured
	RateLimitPerMinute int
	ResponseEnvelope   bool
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	svc      *services.TransactionService
	logger   *applog.Logger
	envelope bool
	started  time.Time

	detector *security.Detector
	limiter  *ratelimit.Limiter
	trace    *trace.Middleware
	recovery *recovery.Middleware

	static    fs.FS
	indexHTML []byte

	transactionsCreated int64
	shutdownOnce        sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(svc *services.TransactionService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		svc:      svc,
		logger:   logger,
		envelope: opts.ResponseEnvelope,
		started:  time.Now(),
		detector: security.NewDetector(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	s.trace = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.recovery = recovery.New(func(w http.ResponseWriter, _ *http.Request) {
		InternalServerError().Write(w)
	})
	s.loadFrontend()

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.buildHandler(s.routes(), opts.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/recent", s.handleRecentTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	if s.svc.BudgetsEnabled() {
		api.HandleFunc("/budgets", s.handleGetBudgets).Methods(http.MethodGet)
		api.HandleFunc("/budgets", s.handleUpdateBudgets).Methods(http.MethodPut)
		api.HandleFunc("/budgets/comparison", s.handleBudgetComparison).Methods(http.MethodGet)
	}

	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/summary/monthly", s.handleMonthlySummary).Methods(http.MethodGet)
	api.HandleFunc("/summary/categories", s.handleCategorySummary).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		NotFoundError("Not found", "route_not_found").Write(w)
	})
	api.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		MethodNotAllowedError().Write(w)
	})

	if s.static != nil {
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(
			http.StripPrefix("/static/", http.FileServer(http.FS(s.static)))))
	}
	r.PathPrefix("/").HandlerFunc(s.handleFrontend).Methods(http.MethodGet, http.MethodHead)

	return r
}

// buildHandler wraps the router, outermost first: CORS, tracing, panic
// recovery, security headers, suspicious-request detection, rate limiting.
func (s *Server) buildHandler(router http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutatingMethods,
		func(w http.ResponseWriter, _ *http.Request) { TooManyRequestsError().Write(w) })(router)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.recovery.Middleware(h)
	h = s.trace.Middleware(h)

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", trace.RequestIDHeader},
		ExposedHeaders: []string{trace.RequestIDHeader, "Retry-After"},
		MaxAge:         600,
	}).Handler(h)
}

func (s *Server) loadFrontend() {
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
		return
	}
	s.static = sub

	index, err := fs.ReadFile(sub, "index.html")
	if err != nil {
		s.logger.Warn("Front-end document missing", applog.FieldError, err)
		return
	}
	s.indexHTML = index
}

// respond writes a success body, enveloped when configured.
func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	NewJSONResponse().Status(status).Data(data).Envelope(s.envelope).Write(w)
}

// Shutdown stops background work and gracefully shuts the listener down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) recordCreated() {
	atomic.AddInt64(&s.transactionsCreated, 1)
}
