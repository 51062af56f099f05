package stats

import (
	"context"
	"errors"
	"io"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/store"
)

// History is the read side of the store used for reports.
type History interface {
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	ListResults(ctx context.Context, user model.User, limit int) ([]model.Result, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	User    model.User
	Summary Summary
	// Results are newest first, limited to the configured count.
	Results []model.Result
	// Trend holds every result oldest first.
	Trend []model.Result
}

// BuildReport loads a user's history. An unknown user yields an empty report.
func BuildReport(ctx context.Context, h History, cfg model.StatsConfig) (Report, error) {
	user, err := h.GetUserByUsername(ctx, cfg.Username)
	if errors.Is(err, store.ErrNotFound) {
		return Report{User: model.User{Username: cfg.Username}}, nil
	}
	if err != nil {
		return Report{}, err
	}
	all, err := h.ListResults(ctx, user, 0)
	if err != nil {
		return Report{}, err
	}
	recent := all
	if cfg.Last > 0 && len(recent) > cfg.Last {
		recent = recent[:cfg.Last]
	}
	trend := make([]model.Result, len(all))
	for i, r := range all {
		trend[len(all)-1-i] = r
	}
	return Report{
		User:    user,
		Summary: Summarize(all),
		Results: recent,
		Trend:   trend,
	}, nil
}

// Render writes the full report.
func (r Report) Render(w io.Writer, window, trendWidth int) error {
	if err := RenderSummary(w, r.User.Username, r.Summary); err != nil {
		return err
	}
	if err := RenderTrend(w, r.Trend, window, trendWidth); err != nil {
		return err
	}
	return RenderResults(w, r.Results)
}
