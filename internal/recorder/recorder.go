// Package recorder turns finished sessions into stored results.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/store"
)

// Persistence is the subset of the store the recorder needs.
type Persistence interface {
	CreateOrFetchUser(ctx context.Context, username string) (model.User, error)
	SaveResult(ctx context.Context, user model.User, result model.Result) (model.Result, error)
	BestResult(ctx context.Context, user model.User) (model.Result, error)
}

// Leaderboard receives saved scores.
type Leaderboard interface {
	Submit(ctx context.Context, username string, wpm float64) error
}

// Attempt describes a finished session to record.
type Attempt struct {
	Username   string
	Metrics    metrics.Metrics
	TextLength int
	Source     string
	Author     string
}

// Outcome is the result of recording an attempt.
type Outcome struct {
	Result       model.Result `json:"result"`
	Persisted    bool         `json:"persisted"`
	PersonalBest bool         `json:"personalBest"`
}

// Recorder persists attempts. A nil Persistence or empty username records nothing.
type Recorder struct {
	store Persistence
	board Leaderboard
	now   func() time.Time
	// OnLeaderboardError is called when a leaderboard submit fails; the result is still saved.
	OnLeaderboardError func(error)
}

// New builds a Recorder. board may be nil.
func New(p Persistence, board Leaderboard) *Recorder {
	return &Recorder{store: p, board: board, now: time.Now}
}

// Record saves the attempt for its user and reports whether it beat their previous best.
func (r *Recorder) Record(ctx context.Context, a Attempt) (Outcome, error) {
	result := model.Result{
		ID:                uuid.NewString(),
		WPM:               float64(a.Metrics.WPM),
		Accuracy:          float64(a.Metrics.Accuracy),
		ElapsedMs:         a.Metrics.ElapsedMs,
		TotalCharacters:   a.Metrics.TotalCharacters,
		CorrectCharacters: a.Metrics.CorrectCharacters,
		Errors:            a.Metrics.Errors,
		TextLength:        a.TextLength,
		Source:            a.Source,
		Author:            a.Author,
		CreatedAt:         r.now().UTC(),
	}
	if r.store == nil || a.Username == "" {
		return Outcome{Result: result}, nil
	}

	user, err := r.store.CreateOrFetchUser(ctx, a.Username)
	if err != nil {
		return Outcome{Result: result}, fmt.Errorf("failed to resolve user: %w", err)
	}
	prev, err := r.store.BestResult(ctx, user)
	hadBest := true
	if errors.Is(err, store.ErrNotFound) {
		hadBest = false
	} else if err != nil {
		return Outcome{Result: result}, fmt.Errorf("failed to load best result: %w", err)
	}

	saved, err := r.store.SaveResult(ctx, user, result)
	if err != nil {
		return Outcome{Result: result}, fmt.Errorf("failed to save result: %w", err)
	}
	out := Outcome{
		Result:       saved,
		Persisted:    true,
		PersonalBest: !hadBest || saved.WPM > prev.WPM,
	}
	if r.board != nil {
		if err := r.board.Submit(ctx, user.Username, saved.WPM); err != nil && r.OnLeaderboardError != nil {
			r.OnLeaderboardError(err)
		}
	}
	return out, nil
}
