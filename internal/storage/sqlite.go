package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// BackupStore is the independent durable store the ActivityGuard writes its
// secondary backup into. The sqlite implementation is the analog of a
// durable object store: a separate engine with its own eviction rules.
type BackupStore interface {
	Put(ctx context.Context, key, value string) error
	Latest(ctx context.Context, key string) (string, bool, error)
	Close() error
}

type sqliteBackupStore struct {
	db *sql.DB
}

// OpenBackupStore opens (creating if needed) the sqlite backup database at
// dir/backup.sqlite.
func OpenBackupStore(ctx context.Context, dir string) (BackupStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, "backup.sqlite"))
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backups (
			k TEXT NOT NULL,
			v TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_backups_key ON backups(k, created_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &sqliteBackupStore{db: db}, nil
}

func (s *sqliteBackupStore) Put(ctx context.Context, key, value string) error {
	nowMs := unixMilliNow()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO backups(k, v, created_at_unixms) VALUES(?, ?, ?)`, key, value, nowMs); err != nil {
		return err
	}
	// Keep only the newest few generations per key.
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM backups WHERE k = ? AND rowid NOT IN (
			SELECT rowid FROM backups WHERE k = ? ORDER BY created_at_unixms DESC, rowid DESC LIMIT 5
		)`, key, key)
	return err
}

func (s *sqliteBackupStore) Latest(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM backups WHERE k = ? ORDER BY created_at_unixms DESC, rowid DESC LIMIT 1`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *sqliteBackupStore) Close() error {
	return s.db.Close()
}

func unixMilliNow() int64 {
	return time.Now().UTC().UnixMilli()
}
