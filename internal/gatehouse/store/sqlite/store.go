// Package sqlite provides the durable KV driver. A single SQLite file is
// plenty for this service's write rate and gives revocations and lockouts
// persistence across restarts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at dsn.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// WAL keeps readers from blocking the write path; busy_timeout retries
	// briefly instead of failing on a locked database.
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Store{
		db:  db,
		dsn: dsn,
		now: time.Now,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// expiresAt converts a ttl into a nullable unix-seconds expiry column value.
func (s *Store) expiresAt(ttl time.Duration) sql.NullInt64 {
	if ttl <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: s.now().Add(ttl).Unix(), Valid: true}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value     string
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv_entries WHERE key = ?1`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if expiresAt.Valid && expiresAt.Int64 <= s.now().Unix() {
		return "", false, nil
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, expires_at)
		VALUES (?1, ?2, ?3)
		ON CONFLICT (key) DO UPDATE SET
			value      = excluded.value,
			expires_at = excluded.expires_at`,
		key, value, s.expiresAt(ttl))
	return err
}

// Incr relies on a single UPSERT so concurrent callers serialize inside
// SQLite rather than racing a read-modify-write. An expired row is treated
// as absent: the counter restarts at 1 and a fresh window begins.
func (s *Store) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO kv_entries (key, value, expires_at)
		VALUES (?1, '1', ?2)
		ON CONFLICT (key) DO UPDATE SET
			value = CASE
				WHEN kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= ?3
					THEN '1'
				ELSE CAST(CAST(kv_entries.value AS INTEGER) + 1 AS TEXT)
			END,
			expires_at = CASE
				WHEN kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= ?3
					THEN ?2
				ELSE kv_entries.expires_at
			END
		RETURNING CAST(value AS INTEGER)`,
		key, s.expiresAt(ttl), s.now().Unix(),
	).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?1`, key)
	return err
}

// DeleteExpired removes rows whose expiry has passed. Expired rows are
// already invisible to Get and Incr; this just reclaims the space.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= ?1`,
		s.now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
