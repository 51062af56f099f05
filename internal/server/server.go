// Package server exposes practice, history and live sessions over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/verte-zerg/speedtype/internal/leaderboard"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/recorder"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/textsource"
)

const (
	defaultListLimit   = 20
	maxListLimit       = 500
	defaultBoardLimit  = 10
	maxRequestBodySize = 1 << 20
)

// Store is the persistence the server reads and writes.
type Store interface {
	recorder.Persistence
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	ListResults(ctx context.Context, user model.User, limit int) ([]model.Result, error)
}

// Options configures a Server.
type Options struct {
	Store Store
	// Quotes is the primary passage source; failures fall back to built-in passages.
	Quotes textsource.Source
	// Board is optional; without it the leaderboard is always empty.
	Board         leaderboard.Board
	AllowedOrigin string
	Session       session.Options
	Logger        *log.Logger
}

// Server holds HTTP handlers and the live connections they own.
type Server struct {
	opts     Options
	quotes   textsource.Source
	recorder *recorder.Recorder
	metrics  *serverMetrics
	logger   *log.Logger

	liveMu sync.Mutex
	live   map[string]*liveConn
	wg     sync.WaitGroup
}

// New builds a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	}
	s := &Server{
		opts:    opts,
		metrics: newServerMetrics(),
		logger:  logger,
		live:    make(map[string]*liveConn),
	}
	s.quotes = textsource.NewFallback(opts.Quotes, textsource.OnFallback(func(err error) {
		s.metrics.quoteFallbacks.Inc()
		s.logger.Printf("quote source failed, using fallback passage: %v", err)
	}))
	var board recorder.Leaderboard
	if opts.Board != nil {
		board = opts.Board
	}
	var persistence recorder.Persistence
	if opts.Store != nil {
		persistence = opts.Store
	}
	s.recorder = recorder.New(persistence, board)
	s.recorder.OnLeaderboardError = func(err error) {
		s.logger.Printf("leaderboard submit failed: %v", err)
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.handler())
	mux.HandleFunc("GET /api/quote", s.handleQuote)
	mux.HandleFunc("POST /api/text", s.handleCustomText)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users/{username}/tests", s.handleListTests)
	mux.HandleFunc("POST /api/users/{username}/tests", s.handleSaveTest)
	mux.HandleFunc("GET /api/users/{username}/best", s.handleBest)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /ws/practice", s.handleLive)
	return s.instrument(s.cors(mux))
}

// Close disconnects live sessions and waits for their handlers to finish.
func (s *Server) Close() {
	s.liveMu.Lock()
	conns := make([]*liveConn, 0, len(s.live))
	for _, lc := range s.live {
		conns = append(conns, lc)
	}
	s.liveMu.Unlock()
	for _, lc := range conns {
		lc.shutdown()
	}
	s.wg.Wait()
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("failed to write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
