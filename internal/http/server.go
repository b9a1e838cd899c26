// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/middleware/ratelimit"
	"saldo/internal/middleware/security"
	"saldo/internal/middleware/trace"
	"saldo/internal/services"
)

// Options tune the surrounding middleware.
type Options struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	TrustedProxies     []string
	// Publishing is reported by /readyz.
	Publishing bool
}

type Server struct {
	http.Server
	svc      *services.LedgerService
	validate *validator.Validate
	opts     Options
	started  time.Time

	ipResolver *security.ClientIPResolver
	limiter    *ratelimit.Limiter
	tracer     *trace.Middleware

	// monthly income by year, dropped on any payment write
	incomeCache *cache.LRUCache[[]core.MonthTotal]
	caches      *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around svc.
func NewServer(addr string, svc *services.LedgerService, opts Options) (*Server, error) {
	resolver := security.NewClientIPResolver()
	for _, cidr := range opts.TrustedProxies {
		if err := resolver.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	s := &Server{
		svc:         svc,
		validate:    newValidator(),
		opts:        opts,
		started:     time.Now(),
		ipResolver:  resolver,
		limiter:     ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		incomeCache: cache.NewLRUCache[[]core.MonthTotal](20, 10*time.Minute),
		caches:      cache.NewManager(),
	}
	s.tracer = trace.NewMiddleware(resolver.ExtractClientIP)
	s.caches.Register(s.incomeCache)
	s.caches.StartCleanup(10 * time.Minute)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Code: "not_found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "method_not_allowed"})
	})
	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(trace.GetRequestID))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/readyz", s.handleReady).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.Middleware(resolver.ExtractClientIP, s.rateLimited))

	api.HandleFunc("/clientes", s.handleListClients).Methods("GET")
	api.HandleFunc("/clientes", s.handleCreateClient).Methods("POST")
	api.HandleFunc("/clientes/orden", s.handleReorderClients).Methods("PUT")
	api.HandleFunc("/clientes/{id:[0-9]+}", s.handleGetClient).Methods("GET")
	api.HandleFunc("/clientes/{id:[0-9]+}", s.handleUpdateClient).Methods("PUT")
	api.HandleFunc("/clientes/{id:[0-9]+}", s.handleDeleteClient).Methods("DELETE")

	api.HandleFunc("/trabajos", s.handleListWorkItems).Methods("GET")
	api.HandleFunc("/trabajos", s.handleCreateWorkItem).Methods("POST")
	api.HandleFunc("/trabajos/{id:[0-9]+}", s.handleUpdateWorkItem).Methods("PUT")
	api.HandleFunc("/trabajos/{id:[0-9]+}", s.handleDeleteWorkItem).Methods("DELETE")

	api.HandleFunc("/materiales", s.handleListMaterials).Methods("GET")
	api.HandleFunc("/materiales", s.handleCreateMaterial).Methods("POST")
	api.HandleFunc("/materiales/{id:[0-9]+}", s.handleUpdateMaterial).Methods("PUT")
	api.HandleFunc("/materiales/{id:[0-9]+}", s.handleDeleteMaterial).Methods("DELETE")

	api.HandleFunc("/pagos", s.handleListPayments).Methods("GET")
	api.HandleFunc("/pagos", s.handleCreatePayment).Methods("POST")
	api.HandleFunc("/pagos/{id:[0-9]+}", s.handleUpdatePayment).Methods("PUT")
	api.HandleFunc("/pagos/{id:[0-9]+}", s.handleDeletePayment).Methods("DELETE")

	api.HandleFunc("/asignaciones", s.handleAllocate).Methods("POST")
	api.HandleFunc("/asignaciones/{clienteId:[0-9]+}", s.handleListAllocations).Methods("GET")
	api.HandleFunc("/asignaciones/{clienteId:[0-9]+}/candidatos", s.handleCandidates).Methods("GET")
	api.HandleFunc("/asignaciones/{clienteId:[0-9]+}/propuesta", s.handleProposal).Methods("GET")

	api.HandleFunc("/deuda-real", s.handleAllDebts).Methods("GET")
	api.HandleFunc("/deuda/{id:[0-9]+}", s.handleClientDebt).Methods("GET")
	api.HandleFunc("/deuda/{id:[0-9]+}/pendientes", s.handlePendingItems).Methods("GET")
	api.HandleFunc("/evolucion", s.handleIncome).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", trace.RequestIDHeader},
		ExposedHeaders:   []string{trace.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           600,
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorResponse{
		Error:     "rate limit exceeded, try again later",
		Code:      "rate_limited",
		RequestID: trace.GetRequestID(r.Context()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks that the record store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"store": "ok"}
	if _, err := s.svc.Store().ListClients(ctx); err != nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		checks["store"] = "failed: " + err.Error()
	}
	if s.opts.Publishing {
		checks["events"] = "amqp"
	} else {
		checks["events"] = "disabled"
	}

	hits, misses := s.incomeCache.Stats()
	m := s.tracer.GetMetrics()
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": checks,
		"metrics": map[string]string{
			"requests":            strconv.FormatInt(m.TotalRequests, 10),
			"rate_limited":        strconv.FormatInt(s.limiter.Rejected(), 10),
			"rate_limit_clients":  strconv.Itoa(s.limiter.ActiveClients()),
			"income_cache_hits":   strconv.FormatInt(hits, 10),
			"income_cache_misses": strconv.FormatInt(misses, 10),
		},
	})
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Close stops background goroutines without a listener, as in tests.
func (s *Server) Close() error {
	return s.Shutdown(context.Background())
}
