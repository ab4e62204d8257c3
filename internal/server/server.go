package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/career-assistant/internal/config"
	"github.com/jonathan/career-assistant/internal/ingestion"
	"github.com/jonathan/career-assistant/internal/server/middleware"
	"github.com/jonathan/career-assistant/internal/server/ratelimit"
	"github.com/jonathan/career-assistant/internal/session"
	"github.com/jonathan/career-assistant/internal/workflow"
)

// DefaultMaxUploadBytes caps CV uploads.
const DefaultMaxUploadBytes = 10 << 20

// sweepInterval is how often idle sessions and stale fetched postings are dropped.
const sweepInterval = 5 * time.Minute

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	handler        http.Handler
	sessions       *session.Store
	runner         *workflow.Runner
	jobOptions     *ingestion.JobOptions
	defaultAPIKey  string
	maxUploadBytes int64
	rateLimiter    *ratelimit.Limiter
	jwtService     *JWTService
	verbose        bool
	stopSweeper    context.CancelFunc
}

// Config holds server configuration
type Config struct {
	Port int
	// APIKey is given to new sessions that do not supply their own.
	APIKey     string
	SessionTTL time.Duration
	// JWT defaults to config.NewJWTConfig().
	JWT *config.JWTConfig
	// RateLimit defaults to ratelimit.LoadConfig().
	RateLimit      *ratelimit.Config
	Runner         *workflow.Runner
	JobOptions     *ingestion.JobOptions
	MaxUploadBytes int64
	Verbose        bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil || cfg.Runner.NewClient == nil {
		return nil, fmt.Errorf("server requires a workflow runner with an AI client factory")
	}

	jwtConfig := cfg.JWT
	if jwtConfig == nil {
		var err error
		jwtConfig, err = config.NewJWTConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
	}
	if jwtConfig.Ephemeral {
		log.Printf("JWT_SECRET not set; session tokens will not survive a restart")
	}

	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.LoadConfig()
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	jobOptions := cfg.JobOptions
	if jobOptions == nil {
		jobOptions = &ingestion.JobOptions{}
	}

	s := &Server{
		sessions:       session.NewStore(cfg.SessionTTL),
		runner:         cfg.Runner,
		jobOptions:     jobOptions,
		defaultAPIKey:  cfg.APIKey,
		maxUploadBytes: maxUpload,
		rateLimiter:    ratelimit.NewLimiter(rateConfig),
		jwtService:     NewJWTService(jwtConfig),
		verbose:        cfg.Verbose,
	}

	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	authed := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)

	// Session state
	mux.Handle("DELETE /session", authed(s.handleDeleteSession))
	mux.Handle("PUT /session/api-key", authed(s.handleSetAPIKey))
	mux.Handle("GET /session/cv", authed(s.handleGetCV))
	mux.Handle("PUT /session/cv", authed(s.handleSetCV))
	mux.Handle("POST /session/cv/upload", authed(s.handleUploadCV))
	mux.Handle("GET /session/history", authed(s.handleHistory))

	// Job acquisition and analysis
	mux.Handle("POST /jobs/fetch", authed(s.handleFetchJob))
	mux.Handle("POST /analyze", authed(s.handleAnalyze))
	mux.Handle("POST /analyze/stream", authed(s.handleAnalyzeStream))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Two concurrent AI calls plus a scrape
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Sessions returns the in-memory session store.
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	sweepCtx, cancel := context.WithCancel(context.Background())
	s.stopSweeper = cancel
	go s.runSweeper(sweepCtx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.Close()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("Server stopped")
	return nil
}

// runSweeper calls sweep every interval until ctx is done.
func (s *Server) runSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep drops idle sessions and expired postings from the shared fetch cache.
func (s *Server) sweep() {
	if n := s.sessions.Prune(); n > 0 {
		log.Printf("[session] pruned %d idle sessions", n)
	}
	if n := s.jobOptions.Cache.Prune(); n > 0 {
		log.Printf("[fetch] pruned %d cached postings", n)
	}
}

// Close stops background goroutines.
func (s *Server) Close() {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging. Query strings are not logged.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFor writes err with the status and kind it maps to.
func (s *Server) errorFor(w http.ResponseWriter, err error) {
	status, kind := classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}
	s.jsonResponse(w, status, map[string]string{
		"error":      err.Error(),
		"error_kind": kind,
	})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
