package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the sqlx handle and provides access to the KV repository
// and the LLM request log.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at dsn, applies recommended
// pragmas, and creates the schema if missing.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying sqlx handle for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// KV returns the key-value repository backed by this store.
func (s *Store) KV() KV {
	return &sqliteKV{db: s.db}
}

// RequestLog returns the LLM request log backed by this store.
func (s *Store) RequestLog() *RequestLog {
	return &RequestLog{db: s.db}
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func createSchema(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS llm_requests (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     DATETIME NOT NULL,
			provider      TEXT NOT NULL,
			model         TEXT NOT NULL,
			purpose       TEXT NOT NULL,
			latency_ms    INTEGER NOT NULL,
			success       BOOLEAN NOT NULL,
			input_tokens  INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT '',
			request_body  TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// sqliteKV implements KV over the kv table.
type sqliteKV struct {
	db *sqlx.DB
}

func (s *sqliteKV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM kv WHERE key = ?`, key)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *sqliteKV) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *sqliteKV) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// RequestLogEntry records one LLM round trip for diagnostics.
type RequestLogEntry struct {
	Timestamp    time.Time `db:"timestamp"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Purpose      string    `db:"purpose"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	ErrorMessage string    `db:"error_message"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
}

// RequestLog is an append-only log of LLM requests.
type RequestLog struct {
	db *sqlx.DB
}

// Append inserts one entry. A zero Timestamp is filled with now.
func (l *RequestLog) Append(ctx context.Context, e RequestLogEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	_, err := l.db.NamedExecContext(ctx,
		`INSERT INTO llm_requests
			(timestamp, provider, model, purpose, latency_ms, success,
			 input_tokens, output_tokens, error_message, request_body, response_body)
		 VALUES
			(:timestamp, :provider, :model, :purpose, :latency_ms, :success,
			 :input_tokens, :output_tokens, :error_message, :request_body, :response_body)`,
		e,
	)
	if err != nil {
		return fmt.Errorf("append llm request: %w", err)
	}
	return nil
}

// Recent returns the most recent n entries, newest first.
func (l *RequestLog) Recent(ctx context.Context, n int) ([]RequestLogEntry, error) {
	var entries []RequestLogEntry
	err := l.db.SelectContext(ctx, &entries,
		`SELECT timestamp, provider, model, purpose, latency_ms, success,
		        input_tokens, output_tokens, error_message, request_body, response_body
		 FROM llm_requests ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query llm requests: %w", err)
	}
	return entries, nil
}

func isNoRows(err error) bool {
	return err != nil && err.Error() == "sql: no rows in result set"
}

// DefaultDBPath resolves the database file path in priority order:
// 1. TOEFLSIM_DB environment variable
// 2. $XDG_DATA_HOME/toeflsim/toeflsim.db
// 3. ~/.local/share/toeflsim/toeflsim.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("TOEFLSIM_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "toeflsim", "toeflsim.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
