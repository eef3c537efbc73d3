package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/speedrun-hq/intentscope/pkg/chainclient"
	"github.com/speedrun-hq/intentscope/pkg/circuitbreaker"
	"github.com/speedrun-hq/intentscope/pkg/logger"
	"github.com/speedrun-hq/intentscope/pkg/models"
)

const chainCheckTimeout = 5 * time.Second

// IntentFetcher returns normalized intents for a query
type IntentFetcher interface {
	FetchIntents(ctx context.Context, params models.FetchOrdersParams) ([]models.Intent, error)
}

// ChainClient is the per-chain RPC access used by the server
type ChainClient interface {
	TransactionByHash(ctx context.Context, txHash string) (*chainclient.Transaction, error)
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
}

// Server serves normalized intents, transactions, health checks and metrics
type Server struct {
	port          string
	metricsAPIKey string
	intents       IntentFetcher
	chains        map[int]ChainClient
	breaker       *circuitbreaker.CircuitBreaker
	logger        logger.Logger
	httpServer    *http.Server
}

// NewServer creates a new server, breaker may be nil
func NewServer(
	port string,
	metricsAPIKey string,
	intents IntentFetcher,
	chains map[int]ChainClient,
	breaker *circuitbreaker.CircuitBreaker,
	logger logger.Logger,
) *Server {
	s := &Server{
		port:          port,
		metricsAPIKey: metricsAPIKey,
		intents:       intents,
		chains:        chains,
		breaker:       breaker,
		logger:        logger,
	}

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in the request middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /circuit/reset", s.handleCircuitReset)
	mux.Handle("GET /metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	mux.HandleFunc("GET /api/intents", s.handleIntents)
	mux.HandleFunc("GET /api/tx/{hash}", s.handleTransaction)

	return s.requestMiddleware(mux)
}

// Start starts the server and blocks until it is shut down
func (s *Server) Start() error {
	s.logger.Info("Starting API and metrics server on port %s", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleReady checks that every chain client answers
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for _, chainID := range s.chainIDs() {
		ctx, cancel := context.WithTimeout(r.Context(), chainCheckTimeout)
		_, err := s.chains[chainID].GetLatestBlockNumber(ctx)
		cancel()
		if err != nil {
			s.logger.ErrorWithChain(chainID, "Readiness check failed: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("Chain %d client not connected", chainID)))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ready"))
}

// handleStatus reports per-chain connectivity and the circuit state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]interface{})

	for _, chainID := range s.chainIDs() {
		chainStatus := map[string]interface{}{"connected": false}

		ctx, cancel := context.WithTimeout(r.Context(), chainCheckTimeout)
		blockNumber, err := s.chains[chainID].GetLatestBlockNumber(ctx)
		cancel()
		if err == nil {
			chainStatus["connected"] = true
			chainStatus["latest_block"] = blockNumber
		}

		status[fmt.Sprintf("chain_%d", chainID)] = chainStatus
	}

	if s.breaker != nil {
		status["circuit"] = s.breaker.Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("Error encoding status JSON: %v", err)
	}
}

// handleCircuitReset closes the order-book circuit breaker
func (s *Server) handleCircuitReset(w http.ResponseWriter, r *http.Request) {
	if s.breaker == nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("No circuit breaker configured"))
		return
	}

	s.breaker.Reset()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(fmt.Sprintf("Circuit breaker %s reset", s.breaker.Name())))
}

func (s *Server) chainIDs() []int {
	ids := make([]int, 0, len(s.chains))
	for chainID := range s.chains {
		ids = append(ids, chainID)
	}
	sort.Ints(ids)
	return ids
}
