// Package http exposes the JSON API over the stores, the dashboard
// aggregations and the identity session.
package http

import (
	"container/list"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentledger/internal/identity"
	"rentledger/internal/log"
	"rentledger/internal/middleware/ratelimit"
	"rentledger/internal/middleware/trace"
	"rentledger/internal/store"
)

// LRU cache with TTL and size-based eviction
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// Publisher queues raw import rows for asynchronous processing.
type Publisher interface {
	PublishImport(ctx context.Context, rows []store.SeedRow) error
}

// Options configures a Server.
type Options struct {
	Addr    string
	Stores  store.Stores
	Session *identity.Session
	// Publisher is optional; without it POST /api/expenses/import
	// reports the queue as unavailable.
	Publisher Publisher
	// MonthlyIncome is the default income for dashboard aggregations,
	// overridable per request with the income query parameter.
	MonthlyIncome float64
	// Logger is attached to every request context. Defaults to a text
	// logger on stdout.
	Logger *log.Logger
}

type Server struct {
	http.Server
	stores    store.Stores
	session   *identity.Session
	publisher Publisher
	income    float64

	limiter   *ratelimit.Limiter
	dashCache *lruCache[dashboardSummary]

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		stores:    opts.Stores,
		session:   opts.Session,
		publisher: opts.Publisher,
		income:    opts.MonthlyIncome,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		dashCache: newLRUCache[dashboardSummary](16, time.Minute),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/auth/", s.handleAuth)

	mux.HandleFunc("/api/expenses", s.requireAuth(s.handleExpenses))
	mux.HandleFunc("/api/expenses/", s.requireAuth(s.handleExpenseByID))
	mux.HandleFunc("/api/expenses/seed", s.requireAuth(s.handleExpenseSeed))
	mux.HandleFunc("/api/expenses/import", s.requireAuth(s.handleExpenseImport))

	mux.HandleFunc("/api/dashboard", s.requireAuth(s.handleDashboard))

	mux.HandleFunc("/api/expense-types", s.requireAuth(s.handleTypes))
	mux.HandleFunc("/api/expense-types/", s.requireAuth(s.handleTypeByID))
	mux.HandleFunc("/api/expense-types/seed", s.requireAuth(s.handleTypeSeed))

	mux.HandleFunc("/api/profile", s.requireAuth(s.handleProfile))

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	traceMw := trace.NewMiddleware(nil)
	limited := s.limiter.Middleware(trace.ClientIP, nil)

	var handler http.Handler = mux
	handler = limited(handler)
	handler = metricsMiddleware(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = log.Middleware(logger.WithComponent(log.ComponentHTTP))(handler)
	handler = traceMw.Middleware(handler)
	handler = recoverMiddleware(handler)
	s.Server.Handler = handler

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// recoverMiddleware turns a handler panic into a 500 instead of tearing
// down the connection.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(r.Context(), "Panic recovered",
					"panic", rec, "path", r.URL.Path, "method", r.Method)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady probes the store with a minimal list call.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	_, err := s.stores.List(r.Context(), store.ListOptions{Page: 1, PageSize: 1})
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
