// Package repository provides the SQLite-backed user store.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

// SQLiteUserStore persists users and API keys in a local SQLite file.
type SQLiteUserStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteUserStore opens (or creates) the database and runs migrations.
func NewSQLiteUserStore(path string, log *logger.Logger) (*SQLiteUserStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so token verification reads do not block registrations.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteUserStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("user store opened", logger.String("path", path))
	return s, nil
}

func (s *SQLiteUserStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			tier          TEXT NOT NULL DEFAULT 'free',
			is_active     INTEGER NOT NULL DEFAULT 1,
			created_at    INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS api_keys (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name         TEXT NOT NULL,
			prefix       TEXT NOT NULL,
			key_hash     TEXT NOT NULL,
			is_active    INTEGER NOT NULL DEFAULT 1,
			created_at   INTEGER NOT NULL,
			last_used_at INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_api_keys_prefix ON api_keys(prefix)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// CreateUser inserts a new user and fills in its id. A username or email
// collision maps to the USER_EXISTS domain error.
func (s *SQLiteUserStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, tier, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, string(u.Tier), boolToInt(u.IsActive), u.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewDomainErrorf(models.ErrCodeUserExists,
				"username or email already registered")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	return nil
}

func (s *SQLiteUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, username, email, password_hash, tier, is_active, created_at
		FROM users WHERE username = ?`, username)
}

func (s *SQLiteUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, username, email, password_hash, tier, is_active, created_at
		FROM users WHERE id = ?`, id)
}

func (s *SQLiteUserStore) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var (
		u         models.User
		tier      string
		active    int
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &tier, &active, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewDomainError(models.ErrCodeInvalidCredentials, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Tier = models.Tier(tier)
	u.IsActive = active != 0
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

func (s *SQLiteUserStore) CreateAPIKey(ctx context.Context, k *models.APIKey) error {
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (user_id, name, prefix, key_hash, is_active, created_at, last_used_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		k.UserID, k.Name, k.Prefix, k.Hash, boolToInt(k.IsActive), k.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	k.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("api key id: %w", err)
	}
	return nil
}

// GetAPIKeysByPrefix returns all active keys sharing a lookup prefix.
// Prefixes are random so the result is almost always zero or one row, but
// the caller still bcrypt-compares against each candidate.
func (s *SQLiteUserStore) GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	return s.queryAPIKeys(ctx,
		`SELECT id, user_id, name, prefix, key_hash, is_active, created_at, last_used_at
		 FROM api_keys WHERE prefix = ? AND is_active = 1`, prefix)
}

// GetAPIKeysByUser returns all active keys a user owns, newest first.
func (s *SQLiteUserStore) GetAPIKeysByUser(ctx context.Context, userID int64) ([]*models.APIKey, error) {
	return s.queryAPIKeys(ctx,
		`SELECT id, user_id, name, prefix, key_hash, is_active, created_at, last_used_at
		 FROM api_keys WHERE user_id = ? AND is_active = 1 ORDER BY created_at DESC, id DESC`, userID)
}

func (s *SQLiteUserStore) queryAPIKeys(ctx context.Context, query string, arg interface{}) ([]*models.APIKey, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var (
			k          models.APIKey
			active     int
			createdAt  int64
			lastUsedAt int64
		)
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.Prefix, &k.Hash, &active, &createdAt, &lastUsedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		k.IsActive = active != 0
		k.CreatedAt = time.Unix(createdAt, 0).UTC()
		if lastUsedAt > 0 {
			k.LastUsedAt = time.Unix(lastUsedAt, 0).UTC()
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *SQLiteUserStore) TouchAPIKey(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}

func (s *SQLiteUserStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
