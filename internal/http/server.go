// Package http exposes the transaction store, the overview and the chat
// assistant as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"spendlog/internal/assistant"
	"spendlog/internal/cache"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/middleware/ratelimit"
	"spendlog/internal/middleware/security"
	"spendlog/internal/middleware/trace"
	"spendlog/internal/services"
)

const (
	maxBodyBytes     = 64 << 10
	overviewCacheTTL = 5 * time.Minute
	overviewCacheMax = 16
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Transactions *services.TransactionService
	Chat         *assistant.Session

	// ChatRequestsPerMinute limits POST /api/chat per client IP.
	ChatRequestsPerMinute int

	// TrustedProxies are CIDRs added to the default trusted proxy ranges.
	TrustedProxies []string

	// Ready reports whether the backends can serve traffic. Nil means always ready.
	Ready func(ctx context.Context) error

	// Logger is placed in every request context. Nil uses slog's default.
	Logger *applog.Logger
}

type Server struct {
	http.Server

	svc   *services.TransactionService
	chat  *assistant.Session
	ready func(ctx context.Context) error

	overviewCache *cache.LRUCache[core.Summary]
	cacheManager  *cache.Manager
	chatLimiter   *ratelimit.Limiter
	clientIP      *security.ClientIPResolver
	tracer        *trace.Middleware
	startedAt     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		svc:           deps.Transactions,
		chat:          deps.Chat,
		ready:         deps.Ready,
		overviewCache: cache.NewLRUCache[core.Summary](overviewCacheMax, overviewCacheTTL),
		cacheManager:  cache.NewManager(),
		chatLimiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.ChatRequestsPerMinute}),
		clientIP:      security.NewClientIPResolver(),
		startedAt:     time.Now(),
	}
	for _, cidr := range deps.TrustedProxies {
		if err := s.clientIP.AddTrustedProxy(cidr); err != nil {
			slog.Warn("Ignoring trusted proxy", applog.FieldComponent, applog.ComponentHTTP, applog.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(s.clientIP.ClientIP)
	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/overview", s.handleOverview)

	mux.HandleFunc("GET /api/chat", s.handleChatTranscript)
	limit := s.chatLimiter.Middleware(s.clientIP.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})
	mux.Handle("POST /api/chat", limit(http.HandlerFunc(s.handleChatSend)))

	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export.xlsx", s.handleExportXLSX)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = s.tracer.Middleware(headers.Middleware(mux))
	if deps.Logger != nil {
		handler = applog.Middleware(deps.Logger)(handler)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops accepting requests and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.chatLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func revisionKey(rev uint64) string {
	return strconv.FormatUint(rev, 10)
}

// overview returns the summary for the current revision. A result is only
// cached when no mutation happened while it was being computed.
func (s *Server) overview() (core.Summary, uint64, bool) {
	rev := s.svc.Revision()
	sum, hit := s.overviewCache.GetOrLoad(revisionKey(rev), func() (core.Summary, bool) {
		sum := s.svc.Summary()
		return sum, s.svc.Revision() == rev
	})
	return sum, rev, hit
}
