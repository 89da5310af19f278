package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/interview-conductor/internal/interview"
	"github.com/jonathan/interview-conductor/internal/llm"
	"github.com/jonathan/interview-conductor/internal/ratelimit"
	"github.com/jonathan/interview-conductor/internal/scoring"
	"github.com/jonathan/interview-conductor/internal/store"
)

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	store        store.Store
	llmClient    llm.Client
	limiter      *ratelimit.Limiter
	orchestrator *interview.Orchestrator
	scorer       *scoring.Pipeline
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string

	// Budgets controls the interview turn allowances. The zero value
	// means interview.DefaultBudgets().
	Budgets interview.Budgets
}

// New creates a new server instance
func New(ctx context.Context, cfg Config) (*Server, error) {
	resultStore, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		resultStore.Close()
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	return NewWithDeps(resultStore, client, ratelimit.NewLimiter(nil), cfg.Port, cfg.Budgets), nil
}

// NewWithDeps wires a server from already-constructed dependencies.
// Tests use this with a MemoryStore and a mock generation client.
func NewWithDeps(resultStore store.Store, client llm.Client, limiter *ratelimit.Limiter, port int, budgets interview.Budgets) *Server {
	s := &Server{
		store:     resultStore,
		llmClient: client,
		limiter:   limiter,
	}

	if budgets == (interview.Budgets{}) {
		budgets = interview.DefaultBudgets()
	}
	s.orchestrator = interview.NewOrchestrator(client, limiter, nil, budgets)

	// The default rubric is validated at startup; a bad rubric is a
	// deployment error, not a per-request one.
	scorer, err := scoring.NewPipeline(client, limiter, nil)
	if err != nil {
		panic(fmt.Sprintf("default rubric invalid: %v", err))
	}
	s.scorer = scorer

	mux := http.NewServeMux()
	mux.HandleFunc("POST /interviews/{id}/turn", s.handleNextTurn)
	mux.HandleFunc("POST /interviews/{id}/transcripts", s.handleAppendTranscript)
	mux.HandleFunc("GET /interviews/{id}/transcripts", s.handleGetTranscript)
	mux.HandleFunc("POST /interviews/{id}/score", s.handleScore)
	mux.HandleFunc("GET /interviews/{id}/report", s.handleReport)
	mux.HandleFunc("PATCH /interview-scores/{id}", s.handleOverride)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // scoring fans out many model calls
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the configured HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			log.Printf("Error closing generation client: %v", err)
		}
	}
	s.store.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
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
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
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

// domainError maps a typed domain error onto the response, including a
// Retry-After header for throttled operations.
func (s *Server) domainError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusTooManyRequests {
		var throttled *ratelimit.ThrottledError
		if errors.As(err, &throttled) && throttled.RetryAfter > 0 {
			seconds := int(throttled.RetryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
		}
	}
	s.errorResponse(w, status, err.Error())
}
