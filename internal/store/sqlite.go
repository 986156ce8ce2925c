package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS rooms (
  id         TEXT PRIMARY KEY,
  version    INTEGER NOT NULL,
  payload    BLOB NOT NULL,
  updated_at INTEGER NOT NULL
)`

// SQLiteStore persists room documents in a single SQLite table.
type SQLiteStore struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create rooms table: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, doc *Document) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	b, err := encodePayload(doc)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO rooms (id, version, payload, updated_at) VALUES (?, 1, ?, ?)`,
		doc.RoomID, b, toMillis(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("create room %s: %w", doc.RoomID, err)
	}
	return decodePayload(doc.RoomID, 1, fromMillis(toMillis(now)), b)
}

func (s *SQLiteStore) Get(ctx context.Context, roomID string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		version int64
		b       []byte
		updated int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT version, payload, updated_at FROM rooms WHERE id = ?`, roomID,
	).Scan(&version, &b, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", roomID, err)
	}
	return decodePayload(roomID, version, fromMillis(updated), b)
}

func (s *SQLiteStore) CompareAndSwap(ctx context.Context, doc *Document) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	b, err := encodePayload(doc)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE rooms SET version = version + 1, payload = ?, updated_at = ? WHERE id = ? AND version = ?`,
		b, toMillis(now), doc.RoomID, doc.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("update room %s: %w", doc.RoomID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update room %s: %w", doc.RoomID, err)
	}
	if n == 0 {
		return nil, s.missOrConflict(ctx, doc.RoomID)
	}
	return decodePayload(doc.RoomID, doc.Version+1, fromMillis(toMillis(now)), b)
}

func (s *SQLiteStore) missOrConflict(ctx context.Context, roomID string) error {
	var one int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, roomID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check room %s: %w", roomID, err)
	}
	return ErrVersionConflict
}

func (s *SQLiteStore) Delete(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, roomID)
	if err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
