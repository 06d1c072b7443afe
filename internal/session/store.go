// Package session binds browser sessions to platform bearer tokens. The
// token is the only piece of local state the dashboard keeps; user data
// is never persisted.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound means the session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store is a sqlite-backed session repository. Sessions expire after the
// configured TTL; expired rows read as absent and are swept periodically.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

func NewStore(dbPath string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, ttl: ttl}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Create stores the token under a fresh session id and returns the id.
func (s *Store) Create(ctx context.Context, token string) (string, error) {
	id := uuid.NewString()
	now := time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		id, token, now.Unix(), now.Add(s.ttl).Unix())
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	slog.InfoContext(ctx, "Session created", "session_id", id, "expires_in", s.ttl.String())
	return id, nil
}

// Token returns the credential bound to the session, or ErrNotFound when
// the session is unknown or past its expiry.
func (s *Store) Token(ctx context.Context, sessionID string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM sessions WHERE id = ? AND expires_at > ?`,
		sessionID, time.Now().Unix()).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select session: %w", err)
	}
	return token, nil
}

// Delete removes the session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry and reports how
// many were dropped.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Sweep runs the expiry cleanup on the given interval until ctx is done.
func (s *Store) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "Session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "Expired sessions swept", "removed", n)
			}
		}
	}
}
