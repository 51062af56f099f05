package leaderboard

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/speedtype/internal/model"
)

func setupMiniredis(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	board := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:board")
	t.Cleanup(func() {
		_ = board.Close()
	})
	return board
}

func exerciseBoard(t *testing.T, board Board) {
	ctx := context.Background()
	require.NoError(t, board.Submit(ctx, "ada", 60))
	require.NoError(t, board.Submit(ctx, "bob", 75))
	require.NoError(t, board.Submit(ctx, "cy", 40))
	// Lower scores never replace a best.
	require.NoError(t, board.Submit(ctx, "bob", 50))
	require.NoError(t, board.Submit(ctx, "ada", 81))

	top, err := board.Top(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []model.LeaderboardEntry{
		{Username: "ada", WPM: 81},
		{Username: "bob", WPM: 75},
	}, top)

	all, err := board.Top(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := board.Top(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRedisBoard(t *testing.T) {
	exerciseBoard(t, setupMiniredis(t))
}

func TestMemoryBoard(t *testing.T) {
	exerciseBoard(t, NewMemory())
}

func TestNewRedisRequiresAddr(t *testing.T) {
	_, err := NewRedis("")
	require.Error(t, err)
}

func TestNewRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)
	board, err := NewRedis(mr.Addr())
	require.NoError(t, err)
	defer func() { _ = board.Close() }()
	require.NoError(t, board.Submit(context.Background(), "ada", 10))
}
