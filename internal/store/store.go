// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// MaxUsernameLen bounds stored usernames.
const MaxUsernameLen = 32

// Fixed-width UTC timestamps keep lexical and chronological order equal.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrNotFound is returned when a user or result does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidUsername is returned for empty or malformed usernames.
	ErrInvalidUsername = errors.New("invalid username")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store wraps SQLite access for users and results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS typing_tests (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			time_elapsed_ms INTEGER NOT NULL,
			total_characters INTEGER NOT NULL,
			correct_characters INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			text_length INTEGER NOT NULL,
			source TEXT NOT NULL,
			author TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_typing_tests_user_created ON typing_tests(user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_typing_tests_user_wpm ON typing_tests(user_id, wpm);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeUsername trims and validates a username.
func NormalizeUsername(username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" || len(name) > MaxUsernameLen || !usernamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return name, nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername returns a user by name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return model.User{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE username = ?`, name)
	return scanUser(row)
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, username string) (model.User, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return model.User{}, err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?)`,
		name, now.Format(timeLayout))
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: id, Username: name, CreatedAt: now}, nil
}

// CreateOrFetchUser returns the named user, creating it on first use.
func (s *Store) CreateOrFetchUser(ctx context.Context, username string) (model.User, error) {
	name, err := NormalizeUsername(username)
	if err != nil {
		return model.User{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?) ON CONFLICT(username) DO NOTHING`,
		name, time.Now().UTC().Format(timeLayout)); err != nil {
		return model.User{}, err
	}
	return s.GetUserByUsername(ctx, name)
}

// SaveResult stores a completed attempt for user. WPM and accuracy keep two decimals.
func (s *Store) SaveResult(ctx context.Context, user model.User, result model.Result) (model.Result, error) {
	if result.ID == "" {
		return model.Result{}, fmt.Errorf("result id is empty")
	}
	result.UserID = user.ID
	result.WPM = round2(result.WPM)
	result.Accuracy = round2(result.Accuracy)
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO typing_tests (id, user_id, wpm, accuracy, time_elapsed_ms, total_characters, correct_characters, errors, text_length, source, author, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.UserID,
		result.WPM,
		result.Accuracy,
		result.ElapsedMs,
		result.TotalCharacters,
		result.CorrectCharacters,
		result.Errors,
		result.TextLength,
		result.Source,
		result.Author,
		result.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return model.Result{}, err
	}
	return result, nil
}

// ListResults returns the user's results, newest first. limit <= 0 means all.
func (s *Store) ListResults(ctx context.Context, user model.User, limit int) ([]model.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM typing_tests WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []any{user.ID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// BestResult returns the user's highest-WPM result; ties go to the earliest.
func (s *Store) BestResult(ctx context.Context, user model.User) (model.Result, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM typing_tests WHERE user_id = ? ORDER BY wpm DESC, created_at ASC LIMIT 1`,
		user.ID)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Result{}, ErrNotFound
	}
	return r, err
}

const resultColumns = `id, user_id, wpm, accuracy, time_elapsed_ms, total_characters, correct_characters, errors, text_length, source, author, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (model.User, error) {
	var u model.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.User{}, err
	}
	u.CreatedAt = parsed
	return u, nil
}

func scanResult(row scanner) (model.Result, error) {
	var r model.Result
	var createdAt string
	if err := row.Scan(&r.ID, &r.UserID, &r.WPM, &r.Accuracy, &r.ElapsedMs, &r.TotalCharacters,
		&r.CorrectCharacters, &r.Errors, &r.TextLength, &r.Source, &r.Author, &createdAt); err != nil {
		return model.Result{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.Result{}, err
	}
	r.CreatedAt = parsed
	return r, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
