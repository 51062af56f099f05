package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/recorder"
	"github.com/verte-zerg/speedtype/internal/store"
	"github.com/verte-zerg/speedtype/internal/textsource"
)

var (
	errBadRequest      = errors.New("bad request")
	errInvalidMetrics  = errors.New("invalid metrics")
	errStoreDisabled   = errors.New("storage is not configured")
	errInvalidLimitArg = errors.New("limit must be a positive integer")
)

type textRequest struct {
	Text string `json:"text"`
}

type userRequest struct {
	Username string `json:"username"`
}

type testRequest struct {
	metrics.Metrics
	TextLength int    `json:"textLength"`
	Source     string `json:"source"`
	Author     string `json:"author"`
}

type recordResponse struct {
	Result       model.Result `json:"result"`
	PersonalBest bool         `json:"personalBest"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.FetchRandomText(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleCustomText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	q, err := textsource.Custom(req.Text)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errStoreDisabled)
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := s.opts.Store.CreateOrFetchUser(r.Context(), req.Username)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListTests(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultListLimit, maxListLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}
	results, err := s.opts.Store.ListResults(r.Context(), user, limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if results == nil {
		results = []model.Result{}
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleSaveTest(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errStoreDisabled)
		return
	}
	username, err := store.NormalizeUsername(r.PathValue("username"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var req testRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateAttempt(req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	source := req.Source
	if source == "" {
		source = model.SourceCustom
	}
	out, err := s.recorder.Record(r.Context(), recorder.Attempt{
		Username:   username,
		Metrics:    req.Metrics,
		TextLength: req.TextLength,
		Source:     source,
		Author:     req.Author,
	})
	s.metrics.recordResult(out.Persisted, err)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, recordResponse{Result: out.Result, PersonalBest: out.PersonalBest})
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}
	best, err := s.opts.Store.BestResult(r.Context(), user)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, best)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultBoardLimit, maxListLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	entries := []model.LeaderboardEntry{}
	if s.opts.Board != nil {
		top, err := s.opts.Board.Top(r.Context(), limit)
		if err != nil {
			s.logger.Printf("leaderboard read failed: %v", err)
			s.writeError(w, http.StatusBadGateway, err)
			return
		}
		entries = append(entries, top...)
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) lookupUser(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	if s.opts.Store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errStoreDisabled)
		return model.User{}, false
	}
	user, err := s.opts.Store.GetUserByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		s.writeStoreError(w, err)
		return model.User{}, false
	}
	return user, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidUsername):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
	default:
		s.logger.Printf("storage error: %v", err)
		s.writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func parseLimit(r *http.Request, def, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errInvalidLimitArg
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}

func validateAttempt(req testRequest) error {
	m := req.Metrics
	switch {
	case m.WPM < 0:
		return fmt.Errorf("%w: wpm must be non-negative", errInvalidMetrics)
	case m.Accuracy < 0 || m.Accuracy > 100:
		return fmt.Errorf("%w: accuracy must be within 0-100", errInvalidMetrics)
	case m.ElapsedMs < 0:
		return fmt.Errorf("%w: timeElapsed must be non-negative", errInvalidMetrics)
	case m.TotalCharacters < 0 || m.CorrectCharacters < 0 || m.Errors < 0:
		return fmt.Errorf("%w: counts must be non-negative", errInvalidMetrics)
	case m.CorrectCharacters > m.TotalCharacters:
		return fmt.Errorf("%w: correctCharacters exceeds totalCharacters", errInvalidMetrics)
	case m.CorrectCharacters != m.TotalCharacters-m.Errors:
		return fmt.Errorf("%w: correctCharacters must equal totalCharacters minus errors", errInvalidMetrics)
	case m.Accuracy != metrics.ComputeAccuracy(m.CorrectCharacters, m.TotalCharacters):
		return fmt.Errorf("%w: accuracy does not match character counts", errInvalidMetrics)
	case req.TextLength < 0:
		return fmt.Errorf("%w: textLength must be non-negative", errInvalidMetrics)
	}
	return nil
}
