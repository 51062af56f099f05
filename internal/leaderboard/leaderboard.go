// Package leaderboard ranks users by their best WPM.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/speedtype/internal/model"
)

const defaultKey = "speedtype:leaderboard"

// Board stores per-user best scores.
type Board interface {
	Submit(ctx context.Context, username string, wpm float64) error
	Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

// Redis keeps the leaderboard in a sorted set so several servers can share it.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(addr string) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisFromClient(client, ""), nil
}

// NewRedisFromClient wraps an existing client. An empty key uses the default.
func NewRedisFromClient(client *redis.Client, key string) *Redis {
	if key == "" {
		key = defaultKey
	}
	return &Redis{client: client, key: key}
}

// Submit records wpm only if it beats the stored score.
func (r *Redis) Submit(ctx context.Context, username string, wpm float64) error {
	err := r.client.ZAddArgs(ctx, r.key, redis.ZAddArgs{
		GT:      true,
		Members: []redis.Z{{Score: wpm, Member: username}},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to submit score: %w", err)
	}
	return nil
}

// Top returns the highest scores first.
func (r *Redis) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	zs, err := r.client.ZRevRangeWithScores(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	out := make([]model.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		name, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, model.LeaderboardEntry{Username: name, WPM: z.Score})
	}
	return out, nil
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Memory is a process-local Board.
type Memory struct {
	mu     sync.Mutex
	scores map[string]float64
}

// NewMemory returns an empty in-memory board.
func NewMemory() *Memory {
	return &Memory{scores: make(map[string]float64)}
}

// Submit implements Board.
func (m *Memory) Submit(ctx context.Context, username string, wpm float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.scores[username]; !ok || wpm > cur {
		m.scores[username] = wpm
	}
	return nil
}

// Top implements Board. Equal scores are ordered by username descending, like ZREVRANGE.
func (m *Memory) Top(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	m.mu.Lock()
	out := make([]model.LeaderboardEntry, 0, len(m.scores))
	for name, wpm := range m.scores {
		out = append(out, model.LeaderboardEntry{Username: name, WPM: wpm})
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].WPM != out[j].WPM {
			return out[i].WPM > out[j].WPM
		}
		return out[i].Username > out[j].Username
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
