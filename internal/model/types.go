// Package model defines shared data structures.
package model

import "time"

// Text source tags.
const (
	SourceQuote    = "quote"
	SourceFallback = "fallback"
	SourceCustom   = "custom"
	SourceWords    = "words"
)

// Config defines practice settings.
type Config struct {
	Username     string
	Source       string
	TextFile     string
	WordListPath string
	Words        int
	CapsPct      float64
	PunctPct     float64
	PunctSet     string
	TickInterval time.Duration
	QuoteURL     string
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Addr          string
	AllowedOrigin string
	QuoteURL      string
	QuoteRate     float64
	RedisAddr     string
	TickInterval  time.Duration
}

// StatsConfig defines filters and options for history output.
type StatsConfig struct {
	Username    string
	Last        int
	CurveWindow int
}

// Quote is a passage to type.
type Quote struct {
	Content string `json:"content"`
	Author  string `json:"author"`
	Length  int    `json:"length"`
	Source  string `json:"source"`
}

// User is a registered typist.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result is a completed typing attempt.
type Result struct {
	ID                string    `json:"id"`
	UserID            int64     `json:"userId,omitempty"`
	WPM               float64   `json:"wpm"`
	Accuracy          float64   `json:"accuracy"`
	ElapsedMs         int64     `json:"timeElapsed"`
	TotalCharacters   int       `json:"totalCharacters"`
	CorrectCharacters int       `json:"correctCharacters"`
	Errors            int       `json:"errors"`
	TextLength        int       `json:"textLength"`
	Source            string    `json:"source"`
	Author            string    `json:"author,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// LeaderboardEntry is a user's best WPM.
type LeaderboardEntry struct {
	Username string  `json:"username"`
	WPM      float64 `json:"wpm"`
}
