package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// Dialect selects placeholder syntax and driver
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Connection pool settings
const (
	PostgresMaxOpenConns = 10
	PostgresMaxIdleConns = 2
	SQLiteBusyTimeoutMS  = 5000
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS bot_sessions (
		owner_id BIGINT PRIMARY KEY,
		source_url TEXT NOT NULL,
		item_url TEXT NOT NULL DEFAULT '',
		platform TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bot_sessions_created_at ON bot_sessions(created_at)`,
}

const (
	upsertSQL = `INSERT INTO bot_sessions (owner_id, source_url, item_url, platform, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			source_url = excluded.source_url,
			item_url = excluded.item_url,
			platform = excluded.platform,
			created_at = excluded.created_at`

	takeSQL = `DELETE FROM bot_sessions WHERE owner_id = ?
		RETURNING source_url, item_url, platform, created_at`

	sweepSQL = `DELETE FROM bot_sessions WHERE created_at <= ?`
)

// SQLStore is a Store backed by a SQL database. Take relies on
// DELETE ... RETURNING so only one caller can receive a row.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	ttl     time.Duration
	now     func() time.Time
}

// OpenSQLite opens (creating if needed) a SQLite session database at path
func OpenSQLite(path string, ttl time.Duration) (*SQLStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, SQLiteBusyTimeoutMS)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer keeps take serialized without SQLITE_BUSY retries
	db.SetMaxOpenConns(1)

	return NewSQLStore(db, DialectSQLite, ttl)
}

// OpenPostgres connects to a PostgreSQL session database
func OpenPostgres(dsn string, ttl time.Duration) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(PostgresMaxOpenConns)
	db.SetMaxIdleConns(PostgresMaxIdleConns)

	return NewSQLStore(db, DialectPostgres, ttl)
}

// NewSQLStore wraps db and runs migrations
func NewSQLStore(db *sql.DB, dialect Dialect, ttl time.Duration) (*SQLStore, error) {
	s := &SQLStore{
		db:      db,
		dialect: dialect,
		ttl:     ttl,
		now:     time.Now,
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Put upserts the session of s.OwnerID
func (s *SQLStore) Put(ctx context.Context, sess model.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(upsertSQL),
		sess.OwnerID, sess.SourceURL, sess.ItemURL, sess.Platform, sess.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Take deletes and returns the live session of ownerID
func (s *SQLStore) Take(ctx context.Context, ownerID int64) (*model.Session, error) {
	var (
		sess      = model.Session{OwnerID: ownerID}
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(takeSQL), ownerID).
		Scan(&sess.SourceURL, &sess.ItemURL, &sess.Platform, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take session: %w", err)
	}

	sess.CreatedAt = time.Unix(0, createdAt)
	if sess.Expired(s.now(), s.ttl) {
		return nil, nil
	}
	return &sess, nil
}

// Sweep deletes sessions older than the ttl
func (s *SQLStore) Sweep(ctx context.Context) (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.ttl).UnixNano()
	res, err := s.db.ExecContext(ctx, s.rebind(sweepSQL), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $n for PostgreSQL
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
